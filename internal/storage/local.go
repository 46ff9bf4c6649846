package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore is a KVStore keeping one file per key under a base directory.
// It is the no-dependency production option for per-device persistence; the
// quota emulates the capacity bound of browser local storage.
type FileStore struct {
	dir      string
	maxBytes int64
}

// NewFileStore creates the base directory if needed. A maxBytes of 0 means
// unbounded.
func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create storage directory", "dir", dir, "error", err)
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *FileStore) keyToPath(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.keyToPath(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStore) Set(key, value string) error {
	if s.maxBytes > 0 {
		usage, err := s.usageExcluding(key)
		if err != nil {
			return err
		}
		if usage+int64(len(value)) > s.maxBytes {
			return ErrQuotaExceeded
		}
	}

	path := s.keyToPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.keyToPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list storage directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear storage: %w", err)
		}
	}
	return nil
}

func (s *FileStore) usageExcluding(key string) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list storage directory: %w", err)
	}
	skip := url.QueryEscape(key) + ".json"
	var usage int64
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == skip || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		usage += info.Size()
	}
	return usage, nil
}
