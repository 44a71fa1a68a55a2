package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Collection is a named JSON array document holding records of type T.
// Load never fails the caller: an absent or undecodable document reads
// as an empty collection. All mutation must go through Update so the
// read-modify-write cycle runs under the collection mutex.
type Collection[T any] struct {
	name    string
	backend Backend
	mu      sync.Mutex
}

// NewCollection binds a collection name (e.g. "users.json") to a backend.
func NewCollection[T any](backend Backend, name string) *Collection[T] {
	return &Collection[T]{name: name, backend: backend}
}

// Name returns the document name of the collection.
func (c *Collection[T]) Name() string { return c.name }

// Load returns every record in the collection.
func (c *Collection[T]) Load() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

// Save replaces the whole collection with the given records.
func (c *Collection[T]) Save(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(records)
}

// Update runs fn on the current records inside the collection's critical
// section and persists whatever fn returns. fn returning an error aborts
// without writing.
func (c *Collection[T]) Update(fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := fn(c.load())
	if err != nil {
		return err
	}
	return c.save(updated)
}

func (c *Collection[T]) load() []T {
	data, err := c.backend.Read(c.name)
	if err != nil {
		return nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

func (c *Collection[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.name, err)
	}
	return c.backend.Write(c.name, data)
}

// Document is a single-object JSON collection (the counters file).
// Access follows the same contract as Collection.
type Document[T any] struct {
	name    string
	backend Backend
	mu      sync.Mutex
}

// NewDocument binds a single-object document name to a backend.
func NewDocument[T any](backend Backend, name string) *Document[T] {
	return &Document[T]{name: name, backend: backend}
}

// Name returns the document name.
func (d *Document[T]) Name() string { return d.name }

// Load returns the stored object, or fallback when the document is
// absent or undecodable.
func (d *Document[T]) Load(fallback T) T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(fallback)
}

// Update runs fn on the current object inside the critical section and
// persists the result. fallback seeds a missing document.
func (d *Document[T]) Update(fallback T, fn func(current T) (T, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	updated, err := fn(d.load(fallback))
	if err != nil {
		return err
	}
	return d.save(updated)
}

func (d *Document[T]) load(fallback T) T {
	data, err := d.backend.Read(d.name)
	if err != nil {
		return fallback
	}
	var obj T
	if err := json.Unmarshal(data, &obj); err != nil {
		return fallback
	}
	return obj
}

func (d *Document[T]) save(obj T) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.name, err)
	}
	return d.backend.Write(d.name, data)
}
