package irgen

import (
	"testing"

	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/emit"
	"github.com/RyanMarcus/basicaf/internal/loopify"
	"github.com/RyanMarcus/basicaf/internal/parser"
	"github.com/RyanMarcus/basicaf/internal/quads"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

// requireQuadKindCount fails with a full %# dump of the quad stream on
// mismatch -- a plain count assertion gives no way to see which quads
// were actually emitted when it fails.
func requireQuadKindCount(t *testing.T, ir []quads.Quad, kind quads.Kind, want int) {
	t.Helper()
	got := 0
	for _, q := range ir {
		if q.Kind == kind {
			got++
		}
	}
	if got != want {
		t.Fatalf("expected %d quads of kind %d, got %d:\n%s", want, kind, got, pretty.Sprint(ir))
	}
}

func compileToBlocks(t *testing.T, src string) []*blockgen.Block {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	blocks, err := blockgen.ToBlocks(prog)
	require.NoError(t, err)
	blocks, err = loopify.EliminateGotos(blocks)
	require.NoError(t, err)
	return blocks
}

func TestGenerateSimpleProgramProducesBalancedBrackets(t *testing.T) {
	src := "" +
		"0  LET Y = 5\n" +
		"1  PRINT \"hi\"\n" +
		"2  LET Y = 7 * 8\n" +
		"3  FOR X = 1 TO Y\n" +
		"4  PRINT \"!\"\n" +
		"5  NEXT X\n" +
		"70 END\n"

	blocks := compileToBlocks(t, src)
	ir, err := Generate(blocks, false)
	require.NoError(t, err)

	resolved, err := emit.Resolve(ir, false, false)
	require.NoError(t, err)
	src2, err := emit.Serialize(resolved)
	require.NoError(t, err)

	depth := 0
	for _, c := range src2 {
		if c == '[' {
			depth++
		}
		if c == ']' {
			depth--
			require.GreaterOrEqual(t, depth, 0)
		}
	}
	require.Equal(t, 0, depth)
}

func TestGeneratePrintStringEmitsOneDotPerCharacter(t *testing.T) {
	src := "0 PRINT \"ab\"\n1 END\n"
	blocks := compileToBlocks(t, src)
	ir, err := Generate(blocks, false)
	require.NoError(t, err)

	dots := 0
	for _, q := range ir {
		if q.Kind == quads.KRawBF && q.Str == "." {
			dots++
		}
	}
	if dots != 2 {
		t.Fatalf("expected 2 dot-print instructions, got %d:\n%s", dots, pretty.Sprint(ir))
	}
}

func TestGenerateRejectsUndefinedVariable(t *testing.T) {
	src := "0 LET Y = X + 1\n1 END\n"
	blocks := compileToBlocks(t, src)
	_, err := Generate(blocks, false)
	require.Error(t, err)
}

func TestGenerateRejectsArrayUseBeforeDim(t *testing.T) {
	src := "0 LET X(0) = 1\n1 END\n"
	blocks := compileToBlocks(t, src)
	_, err := Generate(blocks, false)
	require.Error(t, err)
}

func TestGenerateRejectsDimAfterArrayUse(t *testing.T) {
	src := "" +
		"0 DIM X(3)\n" +
		"1 LET X(0) = 1\n" +
		"2 DIM Y(3)\n" +
		"3 END\n"
	blocks := compileToBlocks(t, src)
	_, err := Generate(blocks, false)
	require.Error(t, err)
}

func TestGenerateRejectsNonLiteralDimSize(t *testing.T) {
	src := "" +
		"0 LET N = 3\n" +
		"1 DIM X(N)\n" +
		"2 END\n"
	blocks := compileToBlocks(t, src)
	_, err := Generate(blocks, false)
	require.Error(t, err)
}

func TestGenerateArrayRoundTripUsesSetAndGetArray(t *testing.T) {
	src := "" +
		"0 DIM X(5)\n" +
		"1 LET X(2) = 9\n" +
		"2 LET Y = X(2)\n" +
		"3 END\n"
	blocks := compileToBlocks(t, src)
	ir, err := Generate(blocks, false)
	require.NoError(t, err)

	var sawSet, sawGet bool
	for _, q := range ir {
		if q.Kind == quads.KSetArray {
			sawSet = true
		}
		if q.Kind == quads.KGetArray {
			sawGet = true
		}
	}
	require.True(t, sawSet)
	require.True(t, sawGet)
}

func TestGenerateWithOptimizedConstantsStillResolves(t *testing.T) {
	src := "0 LET Y = 100\n1 PRINT Y\n2 END\n"
	blocks := compileToBlocks(t, src)
	ir, err := Generate(blocks, true)
	require.NoError(t, err)

	resolved, err := emit.Resolve(ir, false, false)
	require.NoError(t, err)
	_, err = emit.Serialize(resolved)
	require.NoError(t, err)
}

func TestGenerateLoopWithIfExitProducesOneLoopExitDispatch(t *testing.T) {
	src := "" +
		"0  LET X = 0\n" +
		"10 LET X = X + 1\n" +
		"20 IF X < 5 THEN 10\n" +
		"30 END\n"
	blocks := compileToBlocks(t, src)
	ir, err := Generate(blocks, false)
	require.NoError(t, err)

	requireQuadKindCount(t, ir, quads.KEqual, 1)
}
