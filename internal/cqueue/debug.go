package cqueue

import "fmt"

// CheckInvariants walks every container and asserts I1 (no live node is
// before now), the container-tag part of I2 (each node is tagged with the
// container it is found in; the container is not recomputed from the
// node's time), I3 (each list is sorted strictly ascending), and I4 (Len
// equals the sum of container sizes). It is intended for tests and for
// an opt-in debug-assert path in the runtime, not the hot dispatch loop.
func (q *Queue[P]) CheckInvariants() error {
	total := 0

	total += q.zero.len()
	if err := q.checkList(&q.zero, containerZero); err != nil {
		return err
	}

	for i := range q.buckets {
		total += q.buckets[i].len()
		if err := q.checkList(&q.buckets[i], bucketContainer(i)); err != nil {
			return err
		}
	}

	total += len(q.overflow)
	for _, item := range q.overflow {
		n := q.arena.Get(item.ref)
		if n == nil {
			return fmt.Errorf("cqueue: I5 violated: overflow references a released node")
		}
		if n.time.Before(q.now) {
			return fmt.Errorf("cqueue: I1 violated: overflow node time %s before now %s", n.time, q.now)
		}
		if n.cont != containerOverflow {
			return fmt.Errorf("cqueue: I2 violated: node in overflow tagged %d", n.cont)
		}
	}

	if total != q.arena.Len() {
		return fmt.Errorf("cqueue: I4 violated: arena.Len()=%d but container sum=%d", q.arena.Len(), total)
	}

	return nil
}

func (q *Queue[P]) checkList(b *bucketList[P], want container) error {
	ref := b.head
	var prev *node[P]
	count := 0
	for !ref.IsZero() {
		n := q.arena.Get(ref)
		if n == nil {
			return fmt.Errorf("cqueue: I5 violated: list references a released node")
		}
		if n.time.Before(q.now) {
			return fmt.Errorf("cqueue: I1 violated: node time %s before now %s", n.time, q.now)
		}
		if n.cont != want {
			return fmt.Errorf("cqueue: I2 violated: node tagged %d, expected %d", n.cont, want)
		}
		if prev != nil && !less(prev, n) {
			return fmt.Errorf("cqueue: I3 violated: list not strictly ascending at seq %d", n.seq)
		}
		prev = n
		ref = n.next
		count++
	}
	if count != b.len() {
		return fmt.Errorf("cqueue: list length field %d disagrees with walked count %d", b.len(), count)
	}
	return nil
}
