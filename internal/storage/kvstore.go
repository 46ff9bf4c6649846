// Package storage provides the bounded key-value medium conversation
// history persists into, plus a blob store for generated media files.
package storage

import "errors"

// ErrQuotaExceeded is returned by Set when a write would push the medium
// past its capacity. Callers degrade their payload and retry.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KVStore is a flat string-to-string store with a capacity bound.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
}
