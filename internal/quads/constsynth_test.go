package quads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptimizedConstantZero(t *testing.T) {
	code, size := OptimizedConstant(0)
	require.Equal(t, "", code)
	require.Equal(t, uint32(1), size)
}

func TestOptimizedConstantNeverLongerThanUnary(t *testing.T) {
	for i := uint32(1); i < 300; i++ {
		code, _ := OptimizedConstant(i)
		require.LessOrEqual(t, len(code), int(i))
	}
}

func TestProductFactorsMultiplyToTarget(t *testing.T) {
	for i := uint32(1); i < 300; i++ {
		code, size := product{}.forNum(i)
		require.Equal(t, uint32(2), size)
		require.NotEmpty(t, code)

		// `>` outer×`+` `[<` inner×`+` `>-]<`: the two counts multiply to i.
		open := strings.Index(code, "[")
		outer := strings.Count(code[:open], "+")
		inner := strings.Count(code[open:], "+")
		require.Equal(t, int(i), outer*inner)
	}
}

func TestNearestPerfectSquareAppendsRemainder(t *testing.T) {
	code, size := nearestPerfectSquare{}.forNum(10)
	require.Equal(t, uint32(2), size)
	require.NotEmpty(t, code)
	// product code for 9 (3×3) followed by one '+' for the remainder 1.
	require.Equal(t, ">+++[<+++>-]<+", code)
}
