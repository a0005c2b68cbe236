package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/value"
)

func TestMergeFieldInfoPromotesType(t *testing.T) {
	require := require.New(t)

	fi := value.FieldInfo{Type: value.PInt}
	fi = value.MergeFieldInfo(fi, value.MustFloat(1.5))
	require.Equal(value.PFloat, fi.Type)
	require.False(fi.Nullable)
}

func TestMergeFieldInfoNullableIsSticky(t *testing.T) {
	require := require.New(t)

	fi := value.FieldInfo{Type: value.PString, Nullable: true}
	fi = value.MergeFieldInfo(fi, value.String("x"))
	require.True(fi.Nullable, "nullable must stay true once any observation was null")
}

func TestSchemaObserveTracksInsertionOrder(t *testing.T) {
	require := require.New(t)

	s := value.NewSchema()
	doc1 := value.NewObject()
	doc1.Set("name", value.String("a"))
	doc1.Set("age", value.Int(1))
	s.Observe(doc1)

	doc2 := value.NewObject()
	doc2.Set("age", value.Null())
	doc2.Set("email", value.String("x@example.com"))
	s.Observe(doc2)

	require.Equal([]string{"name", "age", "email"}, s.Fields())

	ageInfo, ok := s.Get("age")
	require.True(ok)
	require.Equal(value.PInt, ageInfo.Type)
	require.True(ageInfo.Nullable)

	nameInfo, ok := s.Get("name")
	require.True(ok)
	require.False(nameInfo.Nullable)
}

func TestSchemaCloneIsIndependent(t *testing.T) {
	require := require.New(t)

	s := value.NewSchema()
	s.Set("a", value.FieldInfo{Type: value.PInt})
	clone := s.Clone()
	clone.Set("b", value.FieldInfo{Type: value.PString})

	require.Equal(1, s.Len())
	require.Equal(2, clone.Len())
}
