// Package storage defines the minimal interface contracts the query core
// consumes from the document storage layer. Storage itself — persistence,
// id generation, reference/expansion metadata, bulk load/dump — is
// explicitly out of the core's scope (spec §1); this package states only
// the two read contracts the analyzer and executor actually call, plus a
// small id-generator contract named by spec §1 ("an id-generator") and an
// in-memory test double used by this module's own tests.
package storage

import (
	"context"
	"errors"

	"github.com/jsonql-db/jsonql/value"
)

// SchemaProvider is consumed by the analyzer: schema_of(backing) -> Schema?.
type SchemaProvider interface {
	// SchemaOf returns the current inferred schema for a backing
	// collection, preserving field order, and whether it exists.
	SchemaOf(ctx context.Context, backing string) (*value.Schema, bool)
}

// RowIter yields stored documents. Next returns io.EOF when exhausted. The
// core does not require stability across iterations (spec §6).
type RowIter interface {
	Next(ctx context.Context) (*value.Object, error)
	Close(ctx context.Context) error
}

// RowProvider is consumed by the executor: rows_of(backing) -> iterator.
type RowProvider interface {
	RowsOf(ctx context.Context, backing string) (RowIter, error)
}

// Provider is the full external collaborator contract the core depends on.
type Provider interface {
	SchemaProvider
	RowProvider
}

// IDGenerator is the id-generator contract named by spec §1's description
// of the storage layer ("a mapping from string ids to JSON objects, with
// an id-generator"). The core itself never calls this — it belongs to the
// storage layer, stated here only as the shape a storage implementation
// must satisfy.
type IDGenerator interface {
	NextID() string
}

// ErrNotFound is returned by a RowProvider when asked for an unknown
// backing collection.
var ErrNotFound = errors.New("storage: unknown backing collection")
