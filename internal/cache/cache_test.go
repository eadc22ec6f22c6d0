package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func openMemCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := openMemCache(t)

	fp := Fingerprint(false, false, true)
	hash := Key("10 END\n", fp)

	_, ok, err := c.Get(hash)
	require.NoError(t, err)
	require.False(t, ok)

	buildID, err := c.Put(hash, "++++.")
	require.NoError(t, err)
	require.NotEmpty(t, buildID)

	entry, ok, err := c.Get(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "++++.", entry.Output)
	require.False(t, entry.CreatedAt.IsZero())
}

func TestKeyDiffersByOptionsFingerprint(t *testing.T) {
	a := Key("10 END\n", Fingerprint(false, false, true))
	b := Key("10 END\n", Fingerprint(true, false, true))
	require.NotEqual(t, a, b)
}

func TestDriverForRejectsUnknownScheme(t *testing.T) {
	_, err := Open("redis://localhost")
	require.Error(t, err)
}
