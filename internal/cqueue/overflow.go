package cqueue

import (
	"container/heap"

	"github.com/PetrichorIT/des/internal/arena"
	"github.com/PetrichorIT/des/vtime"
)

// overflowItem is a compact (time, seq, ref) triple: the key fields are
// duplicated out of the arena-resident node so the heap can compare
// without a pointer chase on every sift, exactly as eventloop's timerHeap
// compares on a plain time.Time field rather than dereferencing into the
// scheduled closure.
type overflowItem struct {
	time vtime.Instant
	seq  uint64
	ref  arena.Ref
}

// overflowHeap is a binary min-heap of nodes whose time exceeds one full
// rotation ahead of now, keyed on (time, seq) ascending. It implements
// heap.Interface exactly as eventloop.timerHeap does for its timer heap.
type overflowHeap []overflowItem

func (h overflowHeap) Len() int { return len(h) }

func (h overflowHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h overflowHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *overflowHeap) Push(x any) {
	*h = append(*h, x.(overflowItem))
}

func (h *overflowHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h overflowHeap) peek() (overflowItem, bool) {
	if len(h) == 0 {
		return overflowItem{}, false
	}
	return h[0], true
}

func (h *overflowHeap) push(item overflowItem) {
	heap.Push(h, item)
}

func (h *overflowHeap) popMin() (overflowItem, bool) {
	if len(*h) == 0 {
		return overflowItem{}, false
	}
	return heap.Pop(h).(overflowItem), true
}

// remove deletes the heap entry for ref, if present, in O(n) (cancellation
// of an overflow entry is expected to be rare relative to rotating-bucket
// cancellation, since it implies a handle scheduled far in the future).
func (h *overflowHeap) remove(ref arena.Ref) bool {
	for i, it := range *h {
		if it.ref == ref {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
