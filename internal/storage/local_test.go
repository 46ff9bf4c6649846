package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("a", "1"))
	value, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1", value)

	require.NoError(t, store.Remove("a"))
	_, ok, err = store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreQuota(t *testing.T) {
	store := NewMemoryStore(10)

	require.NoError(t, store.Set("k", "12345"))

	err := store.Set("other", "123456789")
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// Overwriting an existing key only counts the new value.
	require.NoError(t, store.Set("k", "123456789"))

	value, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123456789", value)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))

	require.NoError(t, store.Clear())
	assert.Equal(t, 0, store.Len())
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, store.Set("chatHistory::anonymous", `{"a":1}`))

	value, ok, err := store.Get("chatHistory::anonymous")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, value)

	require.NoError(t, store.Remove("chatHistory::anonymous"))
	_, ok, err = store.Get("chatHistory::anonymous")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remove("chatHistory::anonymous"))
}

func TestFileStoreQuota(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 8)
	require.NoError(t, err)

	require.NoError(t, store.Set("a", "1234"))
	assert.ErrorIs(t, store.Set("b", "123456"), ErrQuotaExceeded)

	// The failed write must not clobber existing data.
	value, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1234", value)
}

func TestFileStoreClear(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Clear())

	_, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}
