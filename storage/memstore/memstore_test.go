package memstore_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/storage/memstore"
	"github.com/jsonql-db/jsonql/value"
)

func doc(fields map[string]value.JSON) *value.Object {
	o := value.NewObject()
	for _, k := range []string{"name", "age", "email"} {
		if v, ok := fields[k]; ok {
			o.Set(k, v)
		}
	}
	return o
}

func TestSchemaOfUnknownCollection(t *testing.T) {
	require := require.New(t)

	s := memstore.New()
	_, ok := s.SchemaOf(context.Background(), "missing")
	require.False(ok)
}

func TestRowsOfUnknownCollectionReturnsErrNotFound(t *testing.T) {
	require := require.New(t)

	s := memstore.New()
	_, err := s.RowsOf(context.Background(), "missing")
	require.ErrorIs(err, storage.ErrNotFound)
}

func TestInsertTracksSchemaAndRows(t *testing.T) {
	require := require.New(t)

	s := memstore.New()
	s.Insert("users", doc(map[string]value.JSON{"name": value.String("a"), "age": value.Int(1)}))
	s.Insert("users", doc(map[string]value.JSON{"name": value.String("b")}))

	schema, ok := s.SchemaOf(context.Background(), "users")
	require.True(ok)
	require.Equal([]string{"name", "age"}, schema.Fields())

	ageInfo, _ := schema.Get("age")
	require.True(ageInfo.Nullable, "age wasn't present on the second doc, so it must be marked nullable")

	iter, err := s.RowsOf(context.Background(), "users")
	require.NoError(err)
	defer iter.Close(context.Background())

	var rows []*value.Object
	for {
		r, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(err)
		rows = append(rows, r)
	}
	require.Len(rows, 2)
}

func TestClearKeepsSchemaDropsRows(t *testing.T) {
	require := require.New(t)

	s := memstore.New()
	s.Insert("users", doc(map[string]value.JSON{"name": value.String("a")}))
	s.Clear("users")

	schema, ok := s.SchemaOf(context.Background(), "users")
	require.True(ok)
	require.Equal(1, schema.Len())

	iter, err := s.RowsOf(context.Background(), "users")
	require.NoError(err)
	_, err = iter.Next(context.Background())
	require.ErrorIs(err, io.EOF)
}

func TestRowsOfSnapshotsAgainstLaterInserts(t *testing.T) {
	require := require.New(t)

	s := memstore.New()
	s.Insert("users", doc(map[string]value.JSON{"name": value.String("a")}))

	iter, err := s.RowsOf(context.Background(), "users")
	require.NoError(err)

	s.Insert("users", doc(map[string]value.JSON{"name": value.String("b")}))

	var count int
	for {
		_, err := iter.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(err)
		count++
	}
	require.Equal(1, count, "iterator must not observe inserts that happen after RowsOf was called")
}

func TestIDGenProducesNonEmptyDistinctIDs(t *testing.T) {
	require := require.New(t)

	gen := memstore.IDGen{}
	a, b := gen.NextID(), gen.NextID()
	require.NotEmpty(a)
	require.NotEqual(a, b)
}
