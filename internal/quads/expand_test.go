package quads

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func onlyKinds(t *testing.T, qs []Quad, allowed ...Kind) {
	t.Helper()
	allow := make(map[Kind]bool)
	for _, k := range allowed {
		allow[k] = true
	}
	for _, q := range qs {
		require.True(t, allow[q.Kind], "unexpected kind %d in fully expanded stream", q.Kind)
	}
}

func TestExpandZeroReachesTerminalKinds(t *testing.T) {
	out := Expand(Zero(5), false, false)
	onlyKinds(t, out, KTo, KRawBF, KRawBFStr, KComment)
}

func TestExpandConstantProducesNPluses(t *testing.T) {
	out := Expand(Constant(4), false, false)
	count := 0
	for _, q := range out {
		if q.Kind == KRawBF && q.Str == "+" {
			count++
		}
	}
	require.Equal(t, 4, count)
}

func TestExpandDivRequiresContiguousCells(t *testing.T) {
	require.Panics(t, func() {
		emitStep(Div(0, 1, 2, 3, 4, 5, 100), false)
	})
}

func TestExpandSetArrayReachesTerminalKinds(t *testing.T) {
	out := Expand(SetArray(10, 20, 21), false, false)
	onlyKinds(t, out, KTo, KRawBF, KRawBFStr, KComment)
}

func TestExpandWithSemanticCommentsKeepsComments(t *testing.T) {
	out := Expand(Comment("hi"), false, true)
	require.Len(t, out, 1)
	require.Equal(t, KComment, out[0].Kind)
}

func TestExpandWithoutSemanticCommentsDropsComments(t *testing.T) {
	out := Expand(Comment("hi"), false, false)
	require.Empty(t, out)
}

func TestExpandWithQuadCommentsWrapsWithLabel(t *testing.T) {
	out := Expand(Zero(0), true, false)
	require.Equal(t, KRawBF, out[0].Kind)
	require.Equal(t, "zero: ", out[0].Str)
}
