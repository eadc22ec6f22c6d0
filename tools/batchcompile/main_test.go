package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileAllWritesBFFilesForEverySource(t *testing.T) {
	dir := t.TempDir()

	for i, src := range []string{
		"10 PRINT \"a\"\n20 END\n",
		"10 PRINT \"b\"\n20 END\n",
	} {
		name := filepath.Join(dir, "prog"+string(rune('0'+i))+".bas")
		require.NoError(t, os.WriteFile(name, []byte(src), 0o644))
	}

	require.NoError(t, compileAll(context.Background(), dir))

	matches, err := filepath.Glob(filepath.Join(dir, "*.bf"))
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestCompileAllFailsFastOnBadSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.bas"), []byte("10 LET X = \n20 END\n"), 0o644))

	err := compileAll(context.Background(), dir)
	require.Error(t, err)
}
