// Package limit implements the runtime's termination conditions: a small
// closed set of variants (spec §4.D), built as constructor functions
// over a single concrete type rather than an interface hierarchy, per
// spec §9's "closed enum of variants" guidance for a single capability
// with statically-known variants.
package limit

import (
	"fmt"

	"github.com/PetrichorIT/des/vtime"
)

type kind int8

const (
	kindNone kind = iota
	kindEventCount
	kindSimTime
	kindAnd
	kindOr
)

// Limit is a termination condition for a runtime's dispatch loop. The
// zero value is None: run until the queue drains.
type Limit struct {
	kind  kind
	count int
	at    vtime.Instant
	lhs   *Limit
	rhs   *Limit
}

// None runs the simulation until the queue drains with no bound.
func None() Limit { return Limit{kind: kindNone} }

// EventCount stops the loop such that the (k+1)-th dispatch never
// occurs: at most k events are dispatched.
func EventCount(k int) Limit {
	if k < 0 {
		panic(fmt.Sprintf("limit: EventCount must be >= 0, got %d", k))
	}
	return Limit{kind: kindEventCount, count: k}
}

// SimTime stops the loop once the next event's time would exceed t.
func SimTime(t vtime.Instant) Limit {
	return Limit{kind: kindSimTime, at: t}
}

// And stops only once both a and b would stop.
func And(a, b Limit) Limit {
	return Limit{kind: kindAnd, lhs: &a, rhs: &b}
}

// Or stops as soon as either a or b would stop.
func Or(a, b Limit) Limit {
	return Limit{kind: kindOr, lhs: &a, rhs: &b}
}

// Applies reports whether the limit fires given the iteration number of
// the dispatch about to occur (1-based: itr is "this would be the itr-th
// dispatch") and the time of the event that dispatch would deliver.
func (l Limit) Applies(itr int, next vtime.Instant) bool {
	switch l.kind {
	case kindNone:
		return false
	case kindEventCount:
		return itr > l.count
	case kindSimTime:
		return next.After(l.at)
	case kindAnd:
		return l.lhs.Applies(itr, next) && l.rhs.Applies(itr, next)
	case kindOr:
		return l.lhs.Applies(itr, next) || l.rhs.Applies(itr, next)
	default:
		return false
	}
}

func (l Limit) String() string {
	switch l.kind {
	case kindNone:
		return "None"
	case kindEventCount:
		return fmt.Sprintf("EventCount(%d)", l.count)
	case kindSimTime:
		return fmt.Sprintf("SimTime(%s)", l.at)
	case kindAnd:
		return fmt.Sprintf("%s and %s", l.lhs, l.rhs)
	case kindOr:
		return fmt.Sprintf("%s or %s", l.lhs, l.rhs)
	default:
		return "Limit(?)"
	}
}
