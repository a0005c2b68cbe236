package value_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/value"
)

func TestPromote(t *testing.T) {
	require := require.New(t)

	require.Equal(value.PInt, value.Promote(value.PInt, value.PInt))
	require.Equal(value.PFloat, value.Promote(value.PInt, value.PFloat))
	require.Equal(value.PFloat, value.Promote(value.PFloat, value.PInt))
	require.Equal(value.PString, value.Promote(value.PNull, value.PString))
	require.Equal(value.PString, value.Promote(value.PString, value.PNull))
	require.Equal(value.PBool, value.Promote(value.PBool, value.PBool))
}

func TestEqualIsKindExact(t *testing.T) {
	require := require.New(t)

	require.True(value.Equal(value.Int(1), value.Int(1)))
	require.False(value.Equal(value.Int(1), value.MustFloat(1.0)))
	require.True(value.Equal(value.Null(), value.Null()))
}

func TestCanonicalIsStableAndOrderSensitive(t *testing.T) {
	require := require.New(t)

	o1 := value.NewObject()
	o1.Set("a", value.Int(1))
	o1.Set("b", value.Int(2))

	o2 := value.NewObject()
	o2.Set("b", value.Int(2))
	o2.Set("a", value.Int(1))

	require.Equal(value.Canonical(value.Obj(o1)), value.Canonical(value.Obj(o1)))
	require.NotEqual(value.Canonical(value.Obj(o1)), value.Canonical(value.Obj(o2)))
}

func TestCompareCrossKindRank(t *testing.T) {
	require := require.New(t)

	require.Equal(-1, value.Compare(value.Null(), value.Bool(false)))
	require.Equal(-1, value.Compare(value.Bool(true), value.Int(0)))
	require.Equal(-1, value.Compare(value.Int(1), value.String("a")))
	require.Equal(0, value.Compare(value.Int(1), value.MustFloat(1.0)))
}

func TestFloatConstructorRejectsNaN(t *testing.T) {
	require := require.New(t)

	// Compare operates on plain floats pulled from already-constructed JSON
	// values; NaN can only reach it via ToFloat64, not via the Float
	// constructor, so we exercise the comparator directly against a value
	// whose AsFloat happens to be NaN is not reachable through the public
	// API. Instead confirm the constructor-level guard that keeps NaN out.
	_, err := value.Float(math.NaN())
	require.Error(err)
}

func TestMergeOverwritesCollisions(t *testing.T) {
	require := require.New(t)

	l := value.NewObject()
	l.Set("a", value.Int(1))
	l.Set("b", value.Int(2))

	r := value.NewObject()
	r.Set("b", value.Int(99))
	r.Set("c", value.Int(3))

	merged := value.Merge(l, r)
	bv, _ := merged.Get("b")
	require.Equal(value.Int(99), bv)
	require.Equal([]string{"a", "b", "c"}, merged.Keys())
}

func TestCanonicalTupleDiffersOnOrder(t *testing.T) {
	require := require.New(t)

	a := value.CanonicalTuple([]value.JSON{value.Int(1), value.String("x")})
	b := value.CanonicalTuple([]value.JSON{value.String("x"), value.Int(1)})
	require.NotEqual(a, b)
}

func TestObjectGetOrDefaultsToNull(t *testing.T) {
	require := require.New(t)

	o := value.NewObject()
	require.True(o.GetOr("missing").IsNull())
}
