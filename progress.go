package des

import (
	"time"

	"github.com/joeycumines/go-catrate"

	"github.com/PetrichorIT/des/vtime"
)

// progressCategory is the sole category passed to the catrate limiter:
// the progress diagnostic has exactly one rate to throttle.
const progressCategory = "progress"

// progressLogger throttles the dispatch loop's Debug progress line to at
// most once per interval, using go-catrate's sliding-window limiter
// instead of a hand-rolled ticker.
type progressLogger struct {
	limiter *catrate.Limiter
}

func newProgressLogger(interval time.Duration) *progressLogger {
	if interval <= 0 {
		return &progressLogger{}
	}
	return &progressLogger{
		limiter: catrate.NewLimiter(map[time.Duration]int{interval: 1}),
	}
}

// allow reports whether the caller may emit a progress log line now.
func (p *progressLogger) allow() bool {
	if p == nil || p.limiter == nil {
		return false
	}
	_, ok := p.limiter.Allow(progressCategory)
	return ok
}

func (rt *Runtime[A]) logProgress(itr int, now vtime.Instant) {
	if rt.progress == nil || !rt.progress.allow() {
		return
	}
	rt.logger.Debug().
		Int("dispatched", itr).
		Str("now", now.String()).
		Int("pending", rt.queue.Len()).
		Log("dispatch progress")
}
