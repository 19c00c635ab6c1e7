package des

import (
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/PetrichorIT/des/limit"
	"github.com/PetrichorIT/des/vtime"
)

// defaultBuckets and defaultWidth are this implementation's chosen
// defaults: spec §6 explicitly leaves the default for both buckets and
// width to the implementation ("default chosen by caller (no hard-coded
// default)" just means the spec itself doesn't mandate one).
const (
	defaultBuckets = 1024
)

var defaultWidth = vtime.FromDuration(time.Millisecond)

// defaultProgressInterval caps how often Run emits a throttled Debug
// progress log, regardless of dispatch rate; see progress.go.
const defaultProgressInterval = time.Second

type config[A any] struct {
	buckets          int
	width            vtime.Duration
	start            vtime.Instant
	limit            limit.Limit
	quiet            bool
	debugAssert      bool
	logger           *logiface.Logger[*stumpy.Event]
	progressInterval time.Duration
	atSimStart       func(*Runtime[A])
	atSimEnd         func(*Runtime[A])
}

func defaultConfig[A any]() *config[A] {
	return &config[A]{
		buckets:          defaultBuckets,
		width:            defaultWidth,
		start:            vtime.Zero,
		limit:            limit.None(),
		progressInterval: defaultProgressInterval,
		logger:           logiface.New[*stumpy.Event](),
	}
}

// Option configures a Runtime at construction, following the functional
// options shape eventloop.LoopOption uses for Loop.
type Option[A any] func(*config[A])

// WithBuckets sets the calendar queue's ring size N. Must be >= 1.
func WithBuckets[A any](n int) Option[A] {
	return func(c *config[A]) { c.buckets = n }
}

// WithWidth sets the calendar queue's bucket width W. Must be > 0.
func WithWidth[A any](w vtime.Duration) Option[A] {
	return func(c *config[A]) { c.width = w }
}

// WithLimit sets the dispatch loop's termination condition.
func WithLimit[A any](l limit.Limit) Option[A] {
	return func(c *config[A]) { c.limit = l }
}

// WithQuiet suppresses the start/end banner log lines.
func WithQuiet[A any](quiet bool) Option[A] {
	return func(c *config[A]) { c.quiet = quiet }
}

// WithStartTime sets the initial virtual time (default Zero).
func WithStartTime[A any](t vtime.Instant) Option[A] {
	return func(c *config[A]) { c.start = t }
}

// WithLogger overrides the structured logger used for the start/end
// banners, the progress diagnostic, and contract-violation reports. The
// default is a disabled logiface.Logger (no output).
func WithLogger[A any](l *logiface.Logger[*stumpy.Event]) Option[A] {
	return func(c *config[A]) { c.logger = l }
}

// WithProgressInterval overrides how often (in real wall-clock time) the
// throttled Debug progress log may fire during Run. Zero disables it.
func WithProgressInterval[A any](d time.Duration) Option[A] {
	return func(c *config[A]) { c.progressInterval = d }
}

// WithDebugAssertions enables a CheckInvariants walk of the calendar
// queue after every dispatch. It is orders of magnitude slower than
// normal operation and is intended for tests, not production runs.
func WithDebugAssertions[A any](enabled bool) Option[A] {
	return func(c *config[A]) { c.debugAssert = enabled }
}

// WithAtSimStart registers the hook run exactly once before the first
// Step of Run.
func WithAtSimStart[A any](f func(*Runtime[A])) Option[A] {
	return func(c *config[A]) { c.atSimStart = f }
}

// WithAtSimEnd registers the hook run exactly once after the last Step
// of Run, including when Run returns an Empty outcome.
func WithAtSimEnd[A any](f func(*Runtime[A])) Option[A] {
	return func(c *config[A]) { c.atSimEnd = f }
}

func resolveOptions[A any](opts []Option[A]) *config[A] {
	c := defaultConfig[A]()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.buckets < 1 {
		panic("des: WithBuckets must be >= 1")
	}
	if c.width <= 0 {
		panic("des: WithWidth must be > 0")
	}
	if c.logger == nil {
		c.logger = logiface.New[*stumpy.Event]()
	}
	return c
}
