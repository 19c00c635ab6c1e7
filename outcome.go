package des

import "github.com/PetrichorIT/des/vtime"

// OutcomeKind classifies why Run stopped.
type OutcomeKind int8

const (
	// OutcomeEmpty means the queue was empty once the at-sim-start hook
	// had run: this Run call dispatched no event.
	OutcomeEmpty OutcomeKind = iota
	// OutcomeFinished means the queue drained naturally: every
	// scheduled event was dispatched and none remained.
	OutcomeFinished
	// OutcomePrematureAbort means a Limit stopped the loop while
	// events still remained in the queue.
	OutcomePrematureAbort
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmpty:
		return "Empty"
	case OutcomeFinished:
		return "Finished"
	case OutcomePrematureAbort:
		return "PrematureAbort"
	default:
		return "OutcomeKind(?)"
	}
}

// Outcome reports how a Run call ended.
type Outcome[A any] struct {
	Kind OutcomeKind
	// App is the runtime's application value, returned for convenience
	// so callers can chain Run directly into assertions on it.
	App A
	// Time is the virtual clock's value when the loop stopped.
	Time vtime.Instant
	// Dispatched is the number of events dispatched during this Run
	// call.
	Dispatched int
	// Remaining is the number of events still pending in the queue
	// when the loop stopped. It is always 0 for OutcomeFinished and
	// OutcomeEmpty.
	Remaining int
}
