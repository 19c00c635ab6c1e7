package limit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PetrichorIT/des/vtime"
)

func TestLimit_None(t *testing.T) {
	l := None()
	require.False(t, l.Applies(1, vtime.Zero))
	require.False(t, l.Applies(1_000_000, vtime.InstantFromNanos(1e18)))
}

func TestLimit_EventCount(t *testing.T) {
	l := EventCount(3)
	require.False(t, l.Applies(1, vtime.Zero))
	require.False(t, l.Applies(3, vtime.Zero))
	require.True(t, l.Applies(4, vtime.Zero))
}

func TestLimit_SimTime(t *testing.T) {
	l := SimTime(vtime.InstantFromNanos(10))
	require.False(t, l.Applies(1, vtime.InstantFromNanos(10)))
	require.True(t, l.Applies(1, vtime.InstantFromNanos(11)))
}

func TestLimit_AndOr(t *testing.T) {
	a := EventCount(2)
	b := SimTime(vtime.InstantFromNanos(10))

	and := And(a, b)
	require.False(t, and.Applies(5, vtime.InstantFromNanos(5)), "count fires, time doesn't")
	require.False(t, and.Applies(1, vtime.InstantFromNanos(20)), "time fires, count doesn't")
	require.True(t, and.Applies(5, vtime.InstantFromNanos(20)), "both fire")

	or := Or(a, b)
	require.True(t, or.Applies(5, vtime.InstantFromNanos(5)))
	require.True(t, or.Applies(1, vtime.InstantFromNanos(20)))
	require.False(t, or.Applies(1, vtime.InstantFromNanos(5)))
}
