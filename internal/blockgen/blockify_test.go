package blockgen

import (
	"testing"

	"github.com/RyanMarcus/basicaf/internal/parser"
	"github.com/stretchr/testify/require"
)

func TestToBlocksRejectsDeadCode(t *testing.T) {
	src := "" +
		"10 PRINT \"test\"\n" +
		"15 GOTO 35\n" +
		"20 LET X = 40 * 3\n" +
		"30 PRINT X\n" +
		"35 FOR I = 0 TO 40\n" +
		"40 PRINT I\n" +
		"50 NEXT I\n" +
		"70 END\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = ToBlocks(prog)
	require.Error(t, err)
}

func TestToBlocksAllStatementKinds(t *testing.T) {
	src := "" +
		"0  LET Y = 5\n" +
		"1  GOTO 10\n" +
		"2  LET X = 5*Y\n" +
		"3  RETURN\n" +
		"10 PRINT \"test\"\n" +
		"15 GOTO 35\n" +
		"35 FOR I = 0 TO 40\n" +
		"40 PRINT I\n" +
		"50 NEXT I\n" +
		"60 GOSUB 2\n" +
		"65 IF X > 20 THEN 70\n" +
		"67 PRINT X\n" +
		"70 END\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	blocks, err := ToBlocks(prog)
	require.NoError(t, err)
	require.NotEmpty(t, blocks)
}

func TestIfBlockOutEdgeOrderIsFallthroughThenTarget(t *testing.T) {
	src := "" +
		"10 IF 1 = 1 THEN 30\n" +
		"20 PRINT \"skip\"\n" +
		"30 END\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	blocks, err := ToBlocks(prog)
	require.NoError(t, err)

	var ifBlock *Block
	for _, b := range blocks {
		if b.lastCmd().Line == 10 {
			ifBlock = b
		}
	}
	require.NotNil(t, ifBlock)
	require.Len(t, ifBlock.OutBlocks, 2)

	fallthroughIdx := ifBlock.OutBlocks[0]
	targetIdx := ifBlock.OutBlocks[1]
	require.Equal(t, 20, blocks[fallthroughIdx].firstCmd().Line)
	require.Equal(t, 30, blocks[targetIdx].firstCmd().Line)
}

func TestGosubSecondCallClonesCalleeSpan(t *testing.T) {
	src := "" +
		"0  GOSUB 100\n" +
		"1  GOSUB 100\n" +
		"2  END\n" +
		"100 PRINT \"hi\"\n" +
		"101 RETURN\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	blocks, err := ToBlocks(prog)
	require.NoError(t, err)

	// the second GOSUB must have spliced in a clone, growing the block list
	// past what a naive linear blockification would produce.
	require.Greater(t, len(blocks), 5)
}

func TestMissingReturnForGosubIsStructuralError(t *testing.T) {
	src := "" +
		"0  GOSUB 10\n" +
		"1  END\n" +
		"10 PRINT \"no return\"\n" +
		"11 END\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = ToBlocks(prog)
	require.Error(t, err)
}

func TestDataReadBinding(t *testing.T) {
	src := "" +
		"0 DATA 1, 2, 3\n" +
		"1 READ X, Y\n" +
		"2 READ Z\n" +
		"3 END\n"

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	_, err = ToBlocks(prog)
	require.NoError(t, err)

	require.Equal(t, []int{1, 2}, prog.Commands[1].Data)
	require.Equal(t, []int{3}, prog.Commands[2].Data)
}
