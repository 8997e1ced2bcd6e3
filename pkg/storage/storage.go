// Package storage provides the string key-value backends that persist UI
// state: in-memory, a JSON or gob document on disk, and SQLite.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage closed")

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
	// Close releases the backend.
	Close() error
}

// Open returns the backend named by backend. path is ignored by the memory
// backend and required by the others.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		f, err := OpenFile(path)
		if err != nil {
			return nil, err
		}

		return f, nil
	case BackendSQLite:
		db, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}

		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
