// Package arena implements the paged allocator backing the calendar
// queue's intrusive list nodes: fixed-size pages carved into reusable
// slots, with amortised O(1) allocate/release and no per-allocation
// syscalls.
//
// Unlike a byte-oriented allocator, Arena is generic over the element
// type it stores. The calendar queue only ever allocates one shape of
// node, so the "segregated free lists by slot size class" rule of the
// design this package implements degenerates, correctly, to exactly one
// free list per page: there is only one size class.
package arena

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrOutOfPage is returned by Allocate when a single element of T does not
// fit within one page. It is the only domain error this package produces;
// system memory exhaustion during a page allocation propagates as a
// regular Go allocation failure (fatal, unrecoverable), per spec.
var ErrOutOfPage = errors.New("arena: element exceeds page size")

// fallbackPageSize is used on platforms where the OS page size isn't
// queried (see pagesize_unix.go / pagesize_other.go).
const fallbackPageSize = 4096

// Ref is a stable, O(1)-dereferenceable reference to a slot. It embeds a
// generation counter so that a Ref surviving past its slot's Release (and
// the slot's possible reuse) can be detected as stale rather than
// silently aliasing whatever now occupies that slot.
type Ref struct {
	page  uint32
	index uint32
	gen   uint32
}

// IsZero reports whether r is the zero Ref, which never refers to a live
// slot.
func (r Ref) IsZero() bool { return r == Ref{} }

type slot[T any] struct {
	value T
	gen   uint32
	// free is true when this slot is on the page's free list, to guard
	// against double-release corrupting the list.
	free bool
}

type page[T any] struct {
	slots []slot[T]
	free  []uint32 // LIFO stack of indices available for reuse
	bump  int      // count of slots ever carved from this page
	cap   int      // page capacity in element count
}

// Arena allocates and releases fixed-shape slots of type T from a
// sequence of lazily-created, never-freed pages.
type Arena[T any] struct {
	pageBytes int
	elemSize  int
	pages     []*page[T]
	len       int
}

// Option configures an Arena at construction.
type Option func(*config)

type config struct {
	pageBytes int
}

// WithPageSize overrides the default (OS-page-sized) page in bytes.
func WithPageSize(bytes int) Option {
	return func(c *config) {
		if bytes <= 0 {
			panic(fmt.Sprintf("arena: invalid page size %d", bytes))
		}
		c.pageBytes = bytes
	}
}

// New creates an Arena for elements of type T.
func New[T any](opts ...Option) *Arena[T] {
	cfg := config{pageBytes: defaultPageSize()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		elemSize = 1
	}

	return &Arena[T]{
		pageBytes: cfg.pageBytes,
		elemSize:  elemSize,
	}
}

func (a *Arena[T]) pageCapacity() int {
	cap := a.pageBytes / a.elemSize
	if cap < 1 {
		return 0
	}
	return cap
}

// Allocate returns a Ref to a fresh, zero-valued T slot, plus a pointer
// to it for initialisation. Pages never move once created, so the
// pointer remains valid until this slot itself is released.
func (a *Arena[T]) Allocate() (Ref, *T, error) {
	cap := a.pageCapacity()
	if cap == 0 {
		return Ref{}, nil, ErrOutOfPage
	}

	if len(a.pages) == 0 {
		a.pages = append(a.pages, newPage[T](cap))
	}
	pageIdx := len(a.pages) - 1
	p := a.pages[pageIdx]

	// Free-list reuse takes priority over bump.
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		s := &p.slots[idx]
		s.free = false
		s.value = *new(T)
		a.len++
		return Ref{page: uint32(pageIdx), index: idx, gen: s.gen}, &s.value, nil
	}

	if p.bump < p.cap {
		idx := uint32(p.bump)
		p.bump++
		s := &p.slots[idx]
		a.len++
		return Ref{page: uint32(pageIdx), index: idx, gen: s.gen}, &s.value, nil
	}

	// Current page is full: a new page becomes current, and allocation
	// proceeds from it.
	a.pages = append(a.pages, newPage[T](cap))
	pageIdx = len(a.pages) - 1
	p = a.pages[pageIdx]
	idx := uint32(0)
	p.bump = 1
	s := &p.slots[idx]
	a.len++
	return Ref{page: uint32(pageIdx), index: idx, gen: s.gen}, &s.value, nil
}

func newPage[T any](cap int) *page[T] {
	p := &page[T]{
		slots: make([]slot[T], cap),
		cap:   cap,
	}
	// Generations start at 1, so no Ref to a live slot equals the zero Ref.
	for i := range p.slots {
		p.slots[i].gen = 1
	}
	return p
}

// Get dereferences a Ref, returning nil if it is stale (released, or its
// slot has since been reused under a new generation).
func (a *Arena[T]) Get(r Ref) *T {
	if int(r.page) >= len(a.pages) {
		return nil
	}
	p := a.pages[r.page]
	if int(r.index) >= len(p.slots) {
		return nil
	}
	s := &p.slots[r.index]
	if s.free || s.gen != r.gen {
		return nil
	}
	return &s.value
}

// Release returns a previously allocated slot to its page's free list.
// Releasing an already-released or otherwise stale Ref is a safe no-op,
// reported via the boolean return (true if a live slot was released).
func (a *Arena[T]) Release(r Ref) bool {
	if int(r.page) >= len(a.pages) {
		return false
	}
	p := a.pages[r.page]
	if int(r.index) >= len(p.slots) {
		return false
	}
	s := &p.slots[r.index]
	if s.free || s.gen != r.gen {
		return false
	}
	s.free = true
	s.gen++
	s.value = *new(T)
	p.free = append(p.free, r.index)
	a.len--
	return true
}

// Len returns the number of currently live (allocated, un-released)
// slots across all pages.
func (a *Arena[T]) Len() int { return a.len }

// IsEmpty reports whether no slots are currently live.
func (a *Arena[T]) IsEmpty() bool { return a.len == 0 }

// PageCount returns the number of pages the arena has created so far.
// Pages are never freed back until the arena itself is discarded.
func (a *Arena[T]) PageCount() int { return len(a.pages) }

// AllocatedBytes returns the approximate number of bytes currently held
// by live slots (debug introspection only; excludes free-list and page
// bookkeeping overhead).
func (a *Arena[T]) AllocatedBytes() int64 {
	return int64(a.len) * int64(a.elemSize)
}
