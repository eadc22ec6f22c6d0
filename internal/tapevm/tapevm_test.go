package tapevm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteSimpleIncrementsAndMoves(t *testing.T) {
	e := New()
	_, err := e.Execute("+++>++>+")
	require.NoError(t, err)
	require.Equal(t, uint32(3), e.DataAt(0))
	require.Equal(t, uint32(2), e.DataAt(1))
	require.Equal(t, uint32(1), e.DataAt(2))
}

func TestExecuteLoopMovesValueOver(t *testing.T) {
	e := New()
	_, err := e.Execute("+++[>++<-]")
	require.NoError(t, err)
	require.Equal(t, uint32(0), e.DataAt(0))
	require.Equal(t, uint32(6), e.DataAt(1))
}

func TestExecuteNestedLoopsComputePower(t *testing.T) {
	e := New()
	// 2 * (3 * 4)^5
	_, err := e.Execute("++>>+++++[<<[>+++<-]>[<++++>-]>-]<<")
	require.NoError(t, err)
	require.Equal(t, uint32(497664), e.DataAt(0))
	require.Equal(t, uint32(0), e.DataAt(1))
	require.Equal(t, uint32(0), e.DataAt(2))
}

func TestExecutePrintsCellsAsCharacters(t *testing.T) {
	e := New()
	out, err := e.Execute("++++++++++++++++++++++++++++++++++++++++++++++++.")
	require.NoError(t, err)
	require.Equal(t, "0", out)
}

func TestExecuteRejectsMovingLeftOfZeroCell(t *testing.T) {
	e := New()
	_, err := e.Execute("<")
	require.Error(t, err)
}

func TestExecuteRejectsDecrementBelowZero(t *testing.T) {
	e := New()
	_, err := e.Execute("-")
	require.Error(t, err)
}

func TestExecuteRejectsUnmatchedBrackets(t *testing.T) {
	e := New()
	_, err := e.Execute("[+")
	require.Error(t, err)
}

func TestExecuteRespectsMaxCellValue(t *testing.T) {
	e := New()
	e.MaxCellValue = 2
	_, err := e.Execute("+++")
	require.Error(t, err)
}

func TestExecuteMaxCellValueUncheckedByDefault(t *testing.T) {
	e := New()
	_, err := e.Execute("++++++++++")
	require.NoError(t, err)
	require.Equal(t, uint32(10), e.DataAt(0))
}
