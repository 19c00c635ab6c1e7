package arena

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

type node struct {
	value int
	prev  Ref
	next  Ref
}

func TestArena_AllocateInitZero(t *testing.T) {
	a := New[node]()
	ref, n, err := a.Allocate()
	require.NoError(t, err)
	require.False(t, ref.IsZero())
	require.Equal(t, 0, n.value)
	require.Equal(t, 1, a.Len())
}

func TestArena_ReleaseThenReuseIsFreeListFirst(t *testing.T) {
	a := New[node](WithPageSize(64 * 1024))
	r1, n1, err := a.Allocate()
	require.NoError(t, err)
	n1.value = 1

	r2, _, err := a.Allocate()
	require.NoError(t, err)

	require.True(t, a.Release(r1))
	require.Equal(t, 1, a.Len())

	// P6/R3: bytes allocated returns to its pre-allocation baseline after
	// allocate-then-release of the same multiset.
	r3, n3, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, 0, n3.value, "reused slot must come back zeroed")
	require.Equal(t, r1.index, r3.index, "free list reuse should prefer the most recently released slot")
	require.NotEqual(t, r1.gen, r3.gen, "reused slot must carry a bumped generation")

	require.True(t, a.Release(r2))
	require.True(t, a.Release(r3))
	require.True(t, a.IsEmpty())
	require.Equal(t, int64(0), a.AllocatedBytes())
}

func TestArena_DoubleReleaseIsNoOp(t *testing.T) {
	a := New[node]()
	r, _, err := a.Allocate()
	require.NoError(t, err)

	require.True(t, a.Release(r))
	require.False(t, a.Release(r), "second release of the same ref must be a safe no-op")
	require.Equal(t, 0, a.Len())
}

func TestArena_GetStaleRefAfterReuse(t *testing.T) {
	a := New[node](WithPageSize(64 * 1024))
	r1, _, err := a.Allocate()
	require.NoError(t, err)
	require.True(t, a.Release(r1))

	r2, _, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, r1.index, r2.index)

	require.Nil(t, a.Get(r1), "a stale ref into a reused slot must never alias the new occupant")
	require.NotNil(t, a.Get(r2))
}

func TestArena_PagesGrowWhenCurrentPageFull(t *testing.T) {
	const perPage = 4
	a := New[node](WithPageSize(perPage * int(unsafe.Sizeof(node{}))))

	var refs []Ref
	for i := 0; i < perPage+1; i++ {
		r, _, err := a.Allocate()
		require.NoError(t, err)
		refs = append(refs, r)
	}

	require.Equal(t, 2, a.PageCount())
	require.Equal(t, perPage+1, a.Len())
}

func TestArena_OutOfPageWhenElementExceedsPageSize(t *testing.T) {
	a := New[node](WithPageSize(1))
	_, _, err := a.Allocate()
	require.ErrorIs(t, err, ErrOutOfPage)
}

func TestArena_Neutrality(t *testing.T) {
	a := New[node]()
	var refs []Ref
	for i := 0; i < 37; i++ {
		r, _, err := a.Allocate()
		require.NoError(t, err)
		refs = append(refs, r)
	}
	for _, r := range refs {
		require.True(t, a.Release(r))
	}
	require.True(t, a.IsEmpty())
	require.Equal(t, int64(0), a.AllocatedBytes())
}
