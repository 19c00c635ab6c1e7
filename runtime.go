package des

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/PetrichorIT/des/internal/cqueue"
	"github.com/PetrichorIT/des/limit"
	"github.com/PetrichorIT/des/vtime"
)

// Payload is the capability every scheduled event must implement: the
// behaviour that runs when the runtime's clock reaches the event's time.
type Payload[A any] interface {
	// Handle is invoked by the dispatch loop once this event's time has
	// arrived. rt is the runtime that owns it, giving the handler
	// access to the application value and the ability to schedule
	// further events.
	Handle(rt *Runtime[A])
}

// PayloadFunc adapts a plain function to Payload, the same shortcut
// logiface.WriterFunc and friends use for single-method interfaces.
type PayloadFunc[A any] func(rt *Runtime[A])

func (f PayloadFunc[A]) Handle(rt *Runtime[A]) { f(rt) }

// Handle identifies a single scheduled event, returned by ScheduleAt and
// ScheduleIn. It is only ever valid for the Runtime that issued it;
// using it against a different Runtime is a contract violation.
type Handle struct {
	inner cqueue.Handle
	owner *runtimeIdentity
}

// IsZero reports whether h is the zero Handle (never returned by a
// successful schedule call).
func (h Handle) IsZero() bool { return h.inner.IsZero() }

// runtimeIdentity is a unique, comparable token minted once per Runtime,
// used to detect a Handle crossing into a Runtime that didn't issue it.
// It is not zero-sized, since pointers to distinct zero-size values may
// compare equal.
type runtimeIdentity struct{ _ byte }

// Runtime drives a single simulation: a calendar-queue scheduler plus
// the application value A that event handlers mutate as they run.
type Runtime[A any] struct {
	App A

	queue    *cqueue.Queue[Payload[A]]
	limit    limit.Limit
	quiet    bool
	debug    bool
	logger   *logiface.Logger[*stumpy.Event]
	progress *progressLogger

	atSimStart func(*Runtime[A])
	atSimEnd   func(*Runtime[A])

	identity *runtimeIdentity
	itr      int
	running  bool
}

// New constructs a Runtime with the given initial application value and
// options.
func New[A any](app A, opts ...Option[A]) *Runtime[A] {
	c := resolveOptions(opts)

	rt := &Runtime[A]{
		App:        app,
		queue:      cqueue.New[Payload[A]](c.buckets, c.width, c.start),
		limit:      c.limit,
		quiet:      c.quiet,
		debug:      c.debugAssert,
		logger:     c.logger,
		progress:   newProgressLogger(c.progressInterval),
		atSimStart: c.atSimStart,
		atSimEnd:   c.atSimEnd,
		identity:   new(runtimeIdentity),
	}
	return rt
}

// Now returns the runtime's current virtual time.
func (rt *Runtime[A]) Now() vtime.Instant { return rt.queue.Now() }

// Pending returns the number of events currently scheduled.
func (rt *Runtime[A]) Pending() int { return rt.queue.Len() }

// Dispatched returns the number of events dispatched so far across all
// Run/Step calls made against this Runtime.
func (rt *Runtime[A]) Dispatched() int { return rt.itr }

// ScheduleAt schedules p to run at the absolute virtual time t. It
// panics with a *ContractViolation if t is before the runtime's current
// time.
func (rt *Runtime[A]) ScheduleAt(t vtime.Instant, p Payload[A]) Handle {
	h, err := rt.queue.Schedule(t, p)
	if err != nil {
		rt.abortContractViolation("schedule-in-past", err.Error())
	}
	return Handle{inner: h, owner: rt.identity}
}

// ScheduleIn schedules p to run d after the runtime's current time. A
// negative d is a contract violation, the same as ScheduleAt with a past
// time.
func (rt *Runtime[A]) ScheduleIn(d vtime.Duration, p Payload[A]) Handle {
	return rt.ScheduleAt(rt.Now().Add(d), p)
}

// Cancel removes a previously scheduled event. It returns false if the
// event already fired or was already cancelled. Using a Handle minted by
// a different Runtime is a contract violation.
func (rt *Runtime[A]) Cancel(h Handle) bool {
	if h.IsZero() {
		return false
	}
	if h.owner != rt.identity {
		rt.abortContractViolation("foreign-handle", "Cancel called with a Handle from a different Runtime")
	}
	return rt.queue.Cancel(h.inner)
}

// Step dispatches exactly one event, if one is due and the limit has not
// already fired. ok is false if the queue was empty or the limit
// prevented dispatch.
func (rt *Runtime[A]) Step() (ok bool) {
	if rt.running {
		panic(ErrReentrantRun)
	}

	_, at, has := rt.queue.Peek()
	if !has {
		return false
	}
	if rt.limit.Applies(rt.itr+1, at) {
		return false
	}

	payload, at, has := rt.queue.FetchNext()
	if !has {
		return false
	}

	rt.itr++
	rt.running = true
	payload.Handle(rt)
	rt.running = false

	if rt.debug {
		if err := rt.queue.CheckInvariants(); err != nil {
			rt.abortContractViolation("invariant-check", err.Error())
		}
	}

	rt.logProgress(rt.itr, at)
	return true
}

// Run dispatches events until the queue drains or the configured Limit
// fires, whichever comes first.
func (rt *Runtime[A]) Run() Outcome[A] {
	if rt.running {
		panic(ErrReentrantRun)
	}

	startItr := rt.itr
	if rt.atSimStart != nil {
		rt.atSimStart(rt)
	}
	if !rt.quiet {
		rt.logger.Info().
			Int("buckets", rt.queue.NumBuckets()).
			Str("width", rt.queue.Width().String()).
			Str("start_time", rt.Now().String()).
			Log("simulation starting")
	}

	if rt.queue.IsEmpty() {
		return rt.finish(OutcomeEmpty, startItr)
	}

	for rt.Step() {
	}

	kind := OutcomeFinished
	if !rt.queue.IsEmpty() {
		kind = OutcomePrematureAbort
	}
	return rt.finish(kind, startItr)
}

// Drive is a convenience wrapper around Run that additionally applies an
// EventCount limit on top of whatever limit is already configured, for
// callers that want "run at most k more events" without reconfiguring
// the runtime.
func (rt *Runtime[A]) Drive(maxEvents int) Outcome[A] {
	outer := rt.limit
	rt.limit = limit.Or(outer, limit.EventCount(rt.itr+maxEvents))
	defer func() { rt.limit = outer }()
	return rt.Run()
}

func (rt *Runtime[A]) finish(kind OutcomeKind, startItr int) Outcome[A] {
	if rt.atSimEnd != nil {
		rt.atSimEnd(rt)
	}
	if !rt.quiet {
		rt.logger.Info().
			Str("now", rt.Now().String()).
			Int("dispatched", rt.itr-startItr).
			Str("outcome", kind.String()).
			Log("simulation stopped")
	}
	return Outcome[A]{
		Kind:       kind,
		App:        rt.App,
		Time:       rt.Now(),
		Dispatched: rt.itr - startItr,
		Remaining:  rt.queue.Len(),
	}
}
