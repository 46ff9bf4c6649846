package storage

import "sync"

// MemoryStore is an in-process KVStore with the same quota semantics as the
// durable stores. Used in tests and as a fallback when no data directory is
// configured.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string]string
	maxBytes int
}

// NewMemoryStore returns an empty store. A maxBytes of 0 means unbounded;
// usage counts key and value bytes.
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{data: make(map[string]string), maxBytes: maxBytes}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 {
		usage := 0
		for k, v := range s.data {
			if k == key {
				continue
			}
			usage += len(k) + len(v)
		}
		if usage+len(key)+len(value) > s.maxBytes {
			return ErrQuotaExceeded
		}
	}

	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
