package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mentor-backend/internal/storage"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, GetMigrator(db).Migrate())
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(newTestDB(t), 0)

	_, ok, err := store.Get("chatHistory::anonymous")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("chatHistory::anonymous", `{"conversations":[]}`))
	require.NoError(t, store.Set("chatHistory::anonymous", `{"conversations":[{"id":"a"}]}`))

	value, ok, err := store.Get("chatHistory::anonymous")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"conversations":[{"id":"a"}]}`, value)

	require.NoError(t, store.Remove("chatHistory::anonymous"))
	_, ok, err = store.Get("chatHistory::anonymous")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreQuota(t *testing.T) {
	store := NewStore(newTestDB(t), 24)

	require.NoError(t, store.Set("a", `{"v":"0123456789"}`))

	err := store.Set("b", `{"v":"0123456789"}`)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)

	// Replacing the same key is measured against the new value only.
	require.NoError(t, store.Set("a", `{"v":"01234567890123"}`))
}

func TestStoreClear(t *testing.T) {
	store := NewStore(newTestDB(t), 0)
	require.NoError(t, store.Set("a", `"1"`))
	require.NoError(t, store.Set("b", `"2"`))

	require.NoError(t, store.Clear())

	_, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get("b")
	require.NoError(t, err)
	assert.False(t, ok)
}
