// Package cqueue implements the calendar queue: a priority queue over
// timestamped payloads ordered by (time, insertion sequence), offering
// amortised O(1) schedule/cancel/dispatch via a ring of time-ordered
// bucket lists, a zero bucket, and an overflow heap for events beyond
// one full rotation.
package cqueue

import (
	"github.com/PetrichorIT/des/internal/arena"
	"github.com/PetrichorIT/des/vtime"
)

// node is the intrusive list slot stored in the arena: an event record
// (time, seq, payload) plus prev/next links for whichever bucket list it
// currently lives in.
type node[P any] struct {
	time    vtime.Instant
	seq     uint64
	payload P
	prev    arena.Ref
	next    arena.Ref
	linked  bool      // true while inside a bucketList (Linked state); false when Detached
	cont    container // which container (zero/bucket i/overflow) currently holds this node
}

// Handle identifies exactly one scheduled event, returned by Schedule and
// consumed (or safely ignored) by Cancel. It is a thin wrapper over an
// arena.Ref: the arena's own generation counter is what makes repeated or
// late cancellation a safe no-op rather than a use-after-free.
type Handle struct {
	ref arena.Ref
}

// IsZero reports whether h is the zero Handle, which never refers to a
// live event.
func (h Handle) IsZero() bool { return h.ref.IsZero() }
