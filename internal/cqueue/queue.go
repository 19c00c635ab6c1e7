package cqueue

import (
	"errors"
	"fmt"

	"github.com/PetrichorIT/des/internal/arena"
	"github.com/PetrichorIT/des/vtime"
)

// ErrPastSchedule is returned by Schedule when asked to place an event
// strictly before the queue's current time. Per spec this is a contract
// violation; cqueue itself stays side-effect-free and returns an error so
// callers (the des runtime) can decide how loudly to fail.
var ErrPastSchedule = errors.New("cqueue: schedule time is before now")

// container tags which structure currently holds a node, so Cancel knows
// where to unlink from without a linear search. Values >= bucketBase name
// a rotating bucket index.
type container int32

const (
	containerNone container = iota
	containerZero
	containerOverflow
	bucketBase
)

func bucketContainer(i int) container { return bucketBase + container(i) }

func (c container) bucketIndex() (int, bool) {
	if c < bucketBase {
		return 0, false
	}
	return int(c - bucketBase), true
}

// Queue is the calendar queue of spec §4.C: an array of N rotating
// buckets indexed by virtual time modulo N*W, a zero bucket for events at
// exactly the current time, and an overflow heap for events beyond one
// full rotation.
type Queue[P any] struct {
	arena    *arena.Arena[node[P]]
	buckets  []bucketList[P]
	zero     bucketList[P]
	overflow overflowHeap

	n          int
	width      vtime.Duration
	now        vtime.Instant
	headBucket int
	baseOfHead vtime.Instant
	seqNext    uint64
}

// New constructs a calendar queue with N rotating buckets of width W,
// starting at virtual time start. N must be >= 1 and W must be > 0: both
// are contract violations (construction-time panics) otherwise, per
// spec §4.C and §9 ("unknown options ... never silently ignored").
func New[P any](n int, width vtime.Duration, start vtime.Instant, opts ...arena.Option) *Queue[P] {
	if n < 1 {
		panic(fmt.Sprintf("cqueue: num_buckets must be >= 1, got %d", n))
	}
	if width <= 0 {
		panic(fmt.Sprintf("cqueue: width must be > 0, got %d", width))
	}

	return &Queue[P]{
		arena:      arena.New[node[P]](opts...),
		buckets:    make([]bucketList[P], n),
		n:          n,
		width:      width,
		now:        start,
		headBucket: 0,
		baseOfHead: floorToWidth(start, width),
	}
}

func floorToWidth(t vtime.Instant, w vtime.Duration) vtime.Instant {
	wn := w.Nanos()
	if wn <= 0 {
		return t
	}
	ns := t.Nanos()
	return vtime.InstantFromNanos((ns / wn) * wn)
}

// Len returns the total number of live (scheduled, undispatched,
// uncancelled) events, I4.
func (q *Queue[P]) Len() int { return q.arena.Len() }

// IsEmpty reports whether no events are currently scheduled.
func (q *Queue[P]) IsEmpty() bool { return q.arena.Len() == 0 }

// LenZero returns the number of events whose time equals Now, at the
// moment of the call — never stale residue from a past now (I1).
func (q *Queue[P]) LenZero() int { return q.zero.len() }

// Now returns the queue's current virtual time.
func (q *Queue[P]) Now() vtime.Instant { return q.now }

// NumBuckets and Width expose the queue's fixed tuning knobs.
func (q *Queue[P]) NumBuckets() int        { return q.n }
func (q *Queue[P]) Width() vtime.Duration { return q.width }

// Schedule places payload at time, returning a Handle for later
// cancellation. Pre: time >= Now(). A violation returns ErrPastSchedule
// without mutating the queue.
func (q *Queue[P]) Schedule(time vtime.Instant, payload P) (Handle, error) {
	if time.Before(q.now) {
		return Handle{}, ErrPastSchedule
	}

	seq := q.seqNext
	q.seqNext++

	ref, n, err := q.arena.Allocate()
	if err != nil {
		return Handle{}, err
	}
	n.time = time
	n.seq = seq
	n.payload = payload
	n.linked = false

	q.route(ref, n, time)

	return Handle{ref: ref}, nil
}

// route assigns ref to the container mandated by I2 for its time,
// relative to the queue's current now/baseOfHead grid.
func (q *Queue[P]) route(ref arena.Ref, n *node[P], time vtime.Instant) {
	if time == q.now {
		q.zero.push(q.arena, ref)
		n.cont = containerZero
		return
	}

	delta := time.Sub(q.baseOfHead)
	rotationSpan := vtime.Duration(q.n) * q.width
	if delta < rotationSpan {
		idx := int(delta.Nanos() / q.width.Nanos())
		bi := (q.headBucket + idx) % q.n
		q.buckets[bi].push(q.arena, ref)
		n.cont = bucketContainer(bi)
		return
	}

	q.overflow.push(overflowItem{time: time, seq: n.seq, ref: ref})
	n.cont = containerOverflow
}

// Cancel unlinks the event identified by h, if it is still live.
// Idempotent: cancelling an already-fired or already-cancelled handle is
// a safe no-op reported via the false return (P5, R2).
func (q *Queue[P]) Cancel(h Handle) bool {
	n := q.arena.Get(h.ref)
	if n == nil {
		return false
	}

	switch {
	case n.cont == containerOverflow:
		q.overflow.remove(h.ref)
	case n.cont == containerZero:
		q.zero.unlink(q.arena, h.ref)
	default:
		bi, isBucket := n.cont.bucketIndex()
		if !isBucket {
			return false
		}
		q.buckets[bi].unlink(q.arena, h.ref)
	}

	n.cont = containerNone
	q.arena.Release(h.ref)
	return true
}

// FetchNext locates, detaches and returns the earliest event, advancing
// Now to its time. ok is false only when the queue is empty.
func (q *Queue[P]) FetchNext() (payload P, at vtime.Instant, ok bool) {
	if q.arena.Len() == 0 {
		var zero P
		return zero, 0, false
	}

	if ref, found := q.zero.popFront(q.arena); found {
		return q.finishPop(ref)
	}

	// Keep walking past N buckets while the rotating buckets still hold
	// events (the zero bucket is empty here), e.g. ones just drained.
	for i := 0; i < q.n || q.arena.Len() > len(q.overflow); i++ {
		b := &q.buckets[q.headBucket]
		if !b.isEmpty() {
			frontRef, _ := b.front()
			frontNode := q.arena.Get(frontRef)
			boundary := q.baseOfHead.Add(q.width)
			if frontNode.time.Before(boundary) {
				ref, _ := b.popFront(q.arena)
				payload, at, ok = q.finishPop(ref)
				// Events left at the new Now move to the zero bucket, ahead
				// of any that handlers schedule at Now from here on.
				for next, more := b.front(); more && q.arena.Get(next).time == q.now; next, more = b.front() {
					b.popFront(q.arena)
					q.zero.push(q.arena, next)
					q.arena.Get(next).cont = containerZero
				}
				return payload, at, ok
			}
		}

		q.headBucket = (q.headBucket + 1) % q.n
		q.baseOfHead = q.baseOfHead.Add(q.width)
		q.drainOverflow()
	}

	// Only overflow entries remain: pop directly and realign the grid.
	item, found := q.overflow.popMin()
	if !found {
		var zero P
		return zero, 0, false
	}
	q.baseOfHead = floorToWidth(item.time, q.width)
	q.headBucket = 0
	payload, at, ok = q.finishPop(item.ref)
	q.drainOverflow()
	return payload, at, ok
}

// Peek reports the earliest event's payload and time without dispatching
// it: Now, the set of live events and the bucket-walk position are all
// unchanged.
func (q *Queue[P]) Peek() (payload P, at vtime.Instant, ok bool) {
	if q.arena.Len() == 0 {
		var zero P
		return zero, 0, false
	}

	if ref, found := q.zero.front(); found {
		n := q.arena.Get(ref)
		return n.payload, n.time, true
	}

	// Bucket headBucket+i holds only the window [base+i*W, base+(i+1)*W),
	// and every overflow entry lies beyond the ring, so the first
	// non-empty bucket from the head holds the earliest event.
	for i := 0; i < q.n; i++ {
		b := &q.buckets[(q.headBucket+i)%q.n]
		if frontRef, found := b.front(); found {
			frontNode := q.arena.Get(frontRef)
			return frontNode.payload, frontNode.time, true
		}
	}

	item, found := q.overflow.peek()
	if !found {
		var zero P
		return zero, 0, false
	}
	n := q.arena.Get(item.ref)
	return n.payload, n.time, true
}

func (q *Queue[P]) finishPop(ref arena.Ref) (P, vtime.Instant, bool) {
	n := q.arena.Get(ref)
	payload, at := n.payload, n.time
	q.now = at
	n.cont = containerNone
	q.arena.Release(ref)
	return payload, at, true
}

// drainOverflow re-routes every overflow entry that now falls within one
// rotation of the (just-advanced) baseOfHead, so it lands in a rotating
// bucket instead of waiting for the next direct overflow pop.
func (q *Queue[P]) drainOverflow() {
	boundary := q.baseOfHead.Add(vtime.Duration(q.n) * q.width)
	for {
		item, found := q.overflow.peek()
		if !found || !item.time.Before(boundary) {
			return
		}
		q.overflow.popMin()
		n := q.arena.Get(item.ref)
		q.route(item.ref, n, item.time)
	}
}
