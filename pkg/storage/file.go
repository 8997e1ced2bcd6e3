package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	dirPerm  = 0o755
	filePerm = 0o600
)

// ErrEmptyPath is returned when a file-backed store has no path.
var ErrEmptyPath = errors.New("storage path is empty")

// File keeps the whole key-value document in memory and rewrites it on
// every Set through a temp file and rename, so readers never see a torn
// document.
type File struct {
	mu     sync.Mutex
	path   string
	codec  Codec
	values map[string]string
	closed bool
}

// OpenFile loads the document at path, or starts empty when it does not
// exist yet. The codec is chosen from the extension.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f := &File{path: path, codec: CodecFor(path), values: make(map[string]string)}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	doc, decodeErr := f.codec.Decode(file)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode state file %s: %w", path, decodeErr)
	}

	// A document of "null" decodes to a nil map.
	if doc != nil {
		f.values = doc
	}

	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return "", false, ErrClosed
	}

	v, ok := f.values[key]

	return v, ok, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	prev, had := f.values[key]
	f.values[key] = value

	err := f.flush()
	if err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}

		return err
	}

	return nil
}

// Close implements Store.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

func (f *File) flush() error {
	dir := filepath.Dir(f.path)

	mkErr := os.MkdirAll(dir, dirPerm)
	if mkErr != nil {
		return fmt.Errorf("create state dir: %w", mkErr)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tmpName := tmp.Name()

	encodeErr := f.codec.Encode(tmp, f.values)
	closeErr := tmp.Close()

	if encodeErr == nil {
		encodeErr = closeErr
	}

	if encodeErr == nil {
		encodeErr = os.Chmod(tmpName, filePerm)
	}

	if encodeErr != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("write state file: %w", encodeErr)
	}

	renameErr := os.Rename(tmpName, f.path)
	if renameErr != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace state file: %w", renameErr)
	}

	return nil
}
