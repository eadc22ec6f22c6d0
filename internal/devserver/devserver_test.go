package devserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RyanMarcus/basicaf/internal/compile"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "prog.bas")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRecompileReturnsOutputOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "10 PRINT \"hi\"\n20 END\n")

	s := New(path, compile.DefaultOptions(), time.Millisecond)
	result := s.Recompile()
	require.Empty(t, result.Err)
	require.NotEmpty(t, result.Output)
	require.NotEmpty(t, result.BuildID)
}

func TestRecompileReturnsErrOnBadSource(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "10 LET X = \n20 END\n")

	s := New(path, compile.DefaultOptions(), time.Millisecond)
	result := s.Recompile()
	require.NotEmpty(t, result.Err)
	require.Empty(t, result.Output)
}

func TestBroadcastWithNoClientsIsANoop(t *testing.T) {
	s := New("unused.bas", compile.DefaultOptions(), time.Second)
	err := s.Broadcast(Result{BuildID: "x", Output: "+"})
	require.NoError(t, err)
}

func TestWatchStopsOnSignal(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "10 END\n")

	s := New(path, compile.DefaultOptions(), time.Millisecond)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.Watch(stop) }()

	close(stop)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after stop was closed")
	}
}
