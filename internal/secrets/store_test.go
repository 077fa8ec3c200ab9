package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Get("http://cnc.local")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("http://CNC.local/", "tok-1"))
	got, err := s.Get("http://cnc.local")
	require.NoError(t, err)
	require.Equal(t, "tok-1", got)

	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "tok-1")

	info, err := os.Stat(filepath.Join(dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Delete("http://cnc.local"))
	_, err = s.Get("http://cnc.local")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRejectsEmptyURL(t *testing.T) {
	s := NewStore(t.TempDir())
	require.Error(t, s.Put(" ", "x"))
	_, err := s.Get("")
	require.Error(t, err)
}
