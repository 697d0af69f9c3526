package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskStore_RoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(ref, ".txt"))

	f, err := store.Open(ref)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove(ref))
	_, err = store.Open(ref)
	require.Error(t, err)

	// Removing twice is fine.
	require.NoError(t, store.Remove(ref))
}
