package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mentor-backend/internal/storage"
)

// Store adapts the sqlite kv_entries table to the storage.KVStore interface.
// The byte quota makes the embedded file behave like the bounded local
// storage medium the conversation store is written against.
type Store struct {
	// SQLite only supports one writer at a time, so writes are serialized.
	mu       sync.Mutex
	db       *gorm.DB
	maxBytes int64
}

// NewStore wraps db. A maxBytes of 0 means unbounded.
func NewStore(db *gorm.DB, maxBytes int64) *Store {
	return &Store{db: db, maxBytes: maxBytes}
}

func (s *Store) Get(key string) (string, bool, error) {
	var entry KVEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading key %q: %w", key, err)
	}
	return string(entry.Value), true, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 {
		var usage int64
		err := s.db.Model(&KVEntry{}).
			Where("key <> ?", key).
			Select("COALESCE(SUM(LENGTH(value)), 0)").
			Scan(&usage).Error
		if err != nil {
			return fmt.Errorf("error computing storage usage: %w", err)
		}
		if usage+int64(len(value)) > s.maxBytes {
			return storage.ErrQuotaExceeded
		}
	}

	entry := KVEntry{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("error writing key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(&KVEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("error removing key %q: %w", key, err)
	}
	return nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Where("1 = 1").Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("error clearing storage: %w", err)
	}
	return nil
}
