// Package storage implements the flat-file persistence layer. Each
// collection is a single JSON document read and written as a whole; the
// mutex-guarded wrappers in this package serialize the load-mutate-save
// cycles that the data layout otherwise leaves unguarded.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Backend abstracts where collection documents live. This allows
// swapping the data directory for an in-memory map in tests.
type Backend interface {
	// Read returns the raw document bytes. Absence is reported via
	// os.ErrNotExist so callers can treat it as an empty collection.
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
}

// FileBackend stores collection documents as files under a base directory.
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates a filesystem-backed storage backend.
func NewFileBackend(baseDir string) *FileBackend {
	return &FileBackend{baseDir: baseDir}
}

// EnsureDir creates the data directory if it doesn't exist.
func (b *FileBackend) EnsureDir() error {
	if err := os.MkdirAll(b.baseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", b.baseDir, err)
	}
	return nil
}

func (b *FileBackend) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(b.baseDir, name))
}

// Write replaces the document via a temp file and rename, so readers
// never observe a half-written collection.
func (b *FileBackend) Write(name string, data []byte) error {
	target := filepath.Join(b.baseDir, name)
	tmp, err := os.CreateTemp(b.baseDir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// MemoryBackend keeps documents in a map. Used by tests.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Read(name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.docs[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (b *MemoryBackend) Write(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	b.docs[name] = stored
	return nil
}
