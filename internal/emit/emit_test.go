package emit

import (
	"testing"

	"github.com/RyanMarcus/basicaf/internal/quads"
	"github.com/stretchr/testify/require"
)

func TestResolveAndSerializeZero(t *testing.T) {
	resolved, err := Resolve([]quads.Quad{quads.Zero(3)}, false, false)
	require.NoError(t, err)

	out, err := Serialize(resolved)
	require.NoError(t, err)
	require.Equal(t, ">>>[-]", out)
}

func TestResolveThreadsHeadAcrossMultipleQuads(t *testing.T) {
	resolved, err := Resolve([]quads.Quad{quads.Zero(0), quads.Zero(2)}, false, false)
	require.NoError(t, err)

	out, err := Serialize(resolved)
	require.NoError(t, err)
	require.Equal(t, "[-]>>[-]", out)
}

func TestSerializeRejectsCommentWithInstructionChars(t *testing.T) {
	_, err := Serialize([]quads.Quad{quads.Comment("has a [ bracket")})
	require.Error(t, err)
}

func TestSerializeRejectsNonTerminalQuad(t *testing.T) {
	_, err := Serialize([]quads.Quad{quads.Zero(0)})
	require.Error(t, err)
}

func TestLinearizeRejectsUnexpandedQuad(t *testing.T) {
	_, err := Linearize([]quads.Quad{quads.Move(1, 2)})
	require.Error(t, err)
}
