package aggregation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/value"
)

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	_, ok := r.Lookup("COUNT")
	require.True(ok)
	_, ok = r.Lookup("Count")
	require.True(ok)
	_, ok = r.Lookup("bogus")
	require.False(ok)
}

func TestCountIgnoresNull(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("count")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.Int(1)}))
	require.NoError(acc.Update([]value.JSON{value.Null()}))
	require.NoError(acc.Update([]value.JSON{value.String("x")}))
	require.Equal(value.Int(2), acc.Finalize())
}

func TestSumErrorsOnFloatIntoIntSeededSum(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("sum")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.Int(1)}))
	err := acc.Update([]value.JSON{value.MustFloat(2.5)})
	require.Error(err)
}

func TestSumPromotesWhenSeededAsFloat(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("sum")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.MustFloat(1.5)}))
	require.NoError(acc.Update([]value.JSON{value.Int(2)}))
	require.Equal(value.MustFloat(3.5), acc.Finalize())
}

func TestSumFinalizesNullWhenNoRowsSeen(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("sum")
	acc := fn.NewAccumulator()
	require.True(acc.Finalize().IsNull())
}

func TestAvgIgnoresNullAndDividesByContributingCount(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("avg")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.Int(2)}))
	require.NoError(acc.Update([]value.JSON{value.Null()}))
	require.NoError(acc.Update([]value.JSON{value.Int(4)}))
	require.Equal(value.MustFloat(3), acc.Finalize())
}

func TestMinMaxErrorOnMixedTypes(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("min")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.Int(1)}))
	err := acc.Update([]value.JSON{value.String("x")})
	require.Error(err)
}

func TestMinMaxErrorOnArrayOrObject(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("max")
	acc := fn.NewAccumulator()
	require.NoError(acc.Update([]value.JSON{value.Arr([]value.JSON{value.Int(1)})}))
	err := acc.Update([]value.JSON{value.Arr([]value.JSON{value.Int(2)})})
	require.Error(err)
}

func TestMinMaxSelectsExtremum(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	minFn, _ := r.Lookup("min")
	minAcc := minFn.NewAccumulator()
	maxFn, _ := r.Lookup("max")
	maxAcc := maxFn.NewAccumulator()
	for _, v := range []value.JSON{value.Int(5), value.Int(1), value.Int(3)} {
		require.NoError(minAcc.Update([]value.JSON{v}))
		require.NoError(maxAcc.Update([]value.JSON{v}))
	}
	require.Equal(value.Int(1), minAcc.Finalize())
	require.Equal(value.Int(5), maxAcc.Finalize())
}

func TestSumInferTypeRejectsWildcard(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("sum")
	_, _, err := fn.InferType(value.PInt, false, true)
	require.Error(err)
}

func TestCountInferTypeIsAlwaysIntNonNull(t *testing.T) {
	require := require.New(t)

	r := aggregation.NewRegistry()
	fn, _ := r.Lookup("count")
	ty, nullable, err := fn.InferType(value.PString, true, true)
	require.NoError(err)
	require.Equal(value.PInt, ty)
	require.False(nullable)
}
