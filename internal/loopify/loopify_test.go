package loopify

import (
	"testing"

	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/parser"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

// requireLoopShape fails with a structural %# dump of the loop block on
// mismatch, instead of testify's default one-line diff, which is hard to
// read once LoopNodes/LoopExits get non-trivial.
func requireLoopShape(t *testing.T, b *blockgen.Block, wantExits, wantOut int) {
	t.Helper()
	if len(b.LoopExits) != wantExits || len(b.OutBlocks) != wantOut {
		t.Fatalf("unexpected loop block shape:\n%s", pretty.Sprint(b))
	}
}

func toBlocks(t *testing.T, src string) []*blockgen.Block {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	blocks, err := blockgen.ToBlocks(prog)
	require.NoError(t, err)
	return blocks
}

func TestEliminateGotosRecoversAGotoInducedLoop(t *testing.T) {
	src := "" +
		"0  LET X = 0\n" +
		"10 LET X = X + 1\n" +
		"20 IF X < 5 THEN 10\n" +
		"30 END\n"

	blocks := toBlocks(t, src)
	out, err := EliminateGotos(blocks)
	require.NoError(t, err)

	var loopBlocks []*blockgen.Block
	for _, b := range out {
		if b.IsLoop {
			loopBlocks = append(loopBlocks, b)
		}
	}
	require.Len(t, loopBlocks, 1)
	requireLoopShape(t, loopBlocks[0], 1, 1)
}

func TestEliminateGotosNoLoopIsANoop(t *testing.T) {
	src := "" +
		"0 LET X = 1\n" +
		"10 PRINT X\n" +
		"20 END\n"

	blocks := toBlocks(t, src)
	out, err := EliminateGotos(blocks)
	require.NoError(t, err)
	for _, b := range out {
		require.False(t, b.IsLoop)
	}
}

func TestEliminateGotosRejectsIrreducibleFlow(t *testing.T) {
	// two loop headers (10 and 20) each reachable from the other's body
	// without a single dominating entry -- a classic irreducible graph.
	src := "" +
		"0  IF 1 = 1 THEN 20\n" +
		"10 LET X = 1\n" +
		"15 IF X = 1 THEN 20\n" +
		"16 GOTO 30\n" +
		"20 LET Y = 1\n" +
		"25 IF Y = 1 THEN 10\n" +
		"26 GOTO 30\n" +
		"30 END\n"

	blocks := toBlocks(t, src)
	_, err := EliminateGotos(blocks)
	require.Error(t, err)
}
