package cqueue

import "github.com/PetrichorIT/des/internal/arena"

// bucketList is the time-ordered list, §4.B: an intrusive doubly-linked
// list of nodes, sorted ascending by (time, seq), supporting O(k)
// insertion (k = count of strictly-smaller elements ahead of the
// insertion point), O(1) pop-front, and O(1) unlink given a node
// reference.
//
// Bucket lists are expected to stay short in steady state (a handful of
// elements per bucket); insertion scans linearly from the head, which is
// the right tradeoff at that scale.
type bucketList[P any] struct {
	head, tail arena.Ref
	length     int
}

func (b *bucketList[P]) isEmpty() bool { return b.length == 0 }

func (b *bucketList[P]) len() int { return b.length }

// less reports whether node a sorts strictly before node b, per the
// (time, seq) ascending tie-break rule: for equal time, the earlier
// arrival (smaller seq) sorts first.
func less[P any](a, b *node[P]) bool {
	if a.time != b.time {
		return a.time < b.time
	}
	return a.seq < b.seq
}

// push links ref into its sorted position. ref must name a Detached node
// (not already linked into any list).
func (b *bucketList[P]) push(a *arena.Arena[node[P]], ref arena.Ref) {
	n := a.Get(ref)
	if n == nil {
		panic("cqueue: push of a stale or released node")
	}
	if n.linked {
		panic("cqueue: push of a node that is already linked")
	}

	if b.length == 0 {
		n.prev, n.next = arena.Ref{}, arena.Ref{}
		b.head, b.tail = ref, ref
		n.linked = true
		b.length++
		return
	}

	// Scan from the head for the first element that must sort after the
	// new node; insert immediately before it. If none is found, append
	// at the tail.
	cur := b.head
	for !cur.IsZero() {
		curNode := a.Get(cur)
		if less(n, curNode) {
			break
		}
		cur = curNode.next
	}

	if cur.IsZero() {
		// Append at tail.
		tailNode := a.Get(b.tail)
		tailNode.next = ref
		n.prev = b.tail
		n.next = arena.Ref{}
		b.tail = ref
	} else {
		curNode := a.Get(cur)
		prev := curNode.prev
		n.next = cur
		n.prev = prev
		curNode.prev = ref
		if prev.IsZero() {
			b.head = ref
		} else {
			a.Get(prev).next = ref
		}
	}

	n.linked = true
	b.length++
}

// popFront removes and returns the minimum element, or the zero Ref and
// false if the list is empty.
func (b *bucketList[P]) popFront(a *arena.Arena[node[P]]) (arena.Ref, bool) {
	if b.length == 0 {
		return arena.Ref{}, false
	}
	ref := b.head
	b.unlink(a, ref)
	return ref, true
}

// front returns the minimum element without removing it.
func (b *bucketList[P]) front() (arena.Ref, bool) {
	if b.length == 0 {
		return arena.Ref{}, false
	}
	return b.head, true
}

// unlink detaches ref from the list in O(1), transitioning it from
// Linked to Detached. ref must currently be linked into this list.
func (b *bucketList[P]) unlink(a *arena.Arena[node[P]], ref arena.Ref) {
	n := a.Get(ref)
	if n == nil || !n.linked {
		panic("cqueue: unlink of a node that isn't linked")
	}

	if n.prev.IsZero() {
		b.head = n.next
	} else {
		a.Get(n.prev).next = n.next
	}
	if n.next.IsZero() {
		b.tail = n.prev
	} else {
		a.Get(n.next).prev = n.prev
	}

	n.prev, n.next = arena.Ref{}, arena.Ref{}
	n.linked = false
	b.length--
}
