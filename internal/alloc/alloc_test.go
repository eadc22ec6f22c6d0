package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveReusesLowestFree(t *testing.T) {
	a := New()
	for i := uint32(0); i < lowCells; i++ {
		require.Equal(t, i, a.Reserve())
	}
	next := a.Reserve()
	require.Equal(t, uint32(lowCells), next)

	a.Free(5)
	require.Equal(t, uint32(5), a.Reserve())
}

func TestReserveRangePrefersContiguousHole(t *testing.T) {
	a := New()
	for i := uint32(0); i < lowCells; i++ {
		a.Reserve()
	}
	a.Free(10)
	a.Free(11)
	a.Free(12)
	require.Equal(t, uint32(10), a.ReserveRange(3))
}

func TestReserveRangeAppendsWhenNoHoleFits(t *testing.T) {
	a := New()
	for i := uint32(0); i < lowCells; i++ {
		a.Reserve()
	}
	a.Free(10)
	start := a.ReserveRange(5)
	require.Equal(t, uint32(lowCells), start)
}

func TestReserveArrayAlwaysAppendsAboveHighWaterMark(t *testing.T) {
	a := New()
	a.Reserve()
	a.Reserve()
	a.Free(0)

	loc := a.ReserveArray(3)
	require.GreaterOrEqual(t, loc, uint32(lowCells))

	// a second array must land strictly above the first, extra cells included
	loc2 := a.ReserveArray(2)
	require.Greater(t, loc2, loc)
}

func TestFreeArrayReturnsAllReservedCells(t *testing.T) {
	a := New()
	loc := a.ReserveArray(3)
	a.FreeArray(loc, 3)
	for i := uint32(0); i < lowCells; i++ {
		a.Reserve()
	}
	// the freed array cells should be reusable now that low cells are exhausted
	require.Contains(t, []uint32{loc, loc + 1, loc + 2, loc + 3, loc + 4, loc + 5, loc + 6}, a.Reserve())
}

func TestFreeOfUnreservedCellPanics(t *testing.T) {
	a := New()
	require.Panics(t, func() { a.Free(0) })
}

func TestAssertEmptyPanicsWhenCellsOutstanding(t *testing.T) {
	a := New()
	a.Reserve()
	require.Panics(t, func() { a.AssertEmpty() })
}

func TestAssertEmptyOKWhenDrained(t *testing.T) {
	a := New()
	v := a.Reserve()
	a.Free(v)
	require.NotPanics(t, func() { a.AssertEmpty() })
}
