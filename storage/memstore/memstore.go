// Package memstore is an in-memory storage.Provider test double used only
// by this module's own tests. It is not a production storage backend —
// spec §1 places persistence, ids and bulk load/dump outside the core's
// scope — but the executor and analyzer need *something* concrete to read
// schema_of/rows_of from when exercised end-to-end, the same role the
// teacher's memory package plays for its own enginetest harness.
package memstore

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// Store holds named collections behind a registry RWMutex, and each
// collection behind its own RWMutex, following spec §5's "read/write lock
// around each collection and around the collection registry".
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	mu     sync.RWMutex
	schema *value.Schema
	rows   []*value.Object
}

// New returns an empty store.
func New() *Store {
	return &Store{collections: map[string]*collection{}}
}

// Create registers an empty collection, or is a no-op if it already
// exists.
func (s *Store) Create(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return
	}
	s.collections[name] = &collection{schema: value.NewSchema()}
}

// Insert appends a document and folds it into the collection's inferred
// schema.
func (s *Store) Insert(name string, doc *value.Object) {
	s.mu.Lock()
	c, ok := s.collections[name]
	if !ok {
		c = &collection{schema: value.NewSchema()}
		s.collections[name] = c
	}
	s.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.schema.Observe(doc)
	c.rows = append(c.rows, doc)
}

// Clear removes all rows but keeps the inferred schema, reproducing the
// original_source executor test fixture used to validate left-join null
// extension against a schema-only, zero-row collection (spec §8 S6).
func (s *Store) Clear(name string) {
	s.mu.RLock()
	c, ok := s.collections[name]
	s.mu.RUnlock()
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
}

// SchemaOf implements storage.SchemaProvider.
func (s *Store) SchemaOf(_ context.Context, backing string) (*value.Schema, bool) {
	s.mu.RLock()
	c, ok := s.collections[backing]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.schema.Clone(), true
}

// RowsOf implements storage.RowProvider.
func (s *Store) RowsOf(_ context.Context, backing string) (storage.RowIter, error) {
	s.mu.RLock()
	c, ok := s.collections[backing]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := append([]*value.Object(nil), c.rows...)
	return &sliceIter{rows: snapshot}, nil
}

type sliceIter struct {
	rows []*value.Object
	pos  int
}

func (it *sliceIter) Next(_ context.Context) (*value.Object, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	r := it.rows[it.pos]
	it.pos++
	return r, nil
}

func (it *sliceIter) Close(_ context.Context) error { return nil }

// IDGen is the default uuid-backed storage.IDGenerator implementation.
type IDGen struct{}

func (IDGen) NextID() string { return uuid.NewString() }

var _ storage.Provider = (*Store)(nil)
var _ storage.IDGenerator = IDGen{}
