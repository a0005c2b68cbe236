package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/value"
)

func TestNot(t *testing.T) {
	require := require.New(t)

	require.Equal(value.False, value.True.Not())
	require.Equal(value.True, value.False.Not())
	require.Equal(value.Unknown, value.Unknown.Not())
}

func TestAnd(t *testing.T) {
	require := require.New(t)

	require.Equal(value.False, value.And(value.True, value.False, value.Unknown))
	require.Equal(value.Unknown, value.And(value.True, value.Unknown))
	require.Equal(value.True, value.And(value.True, value.True))
}

func TestOr(t *testing.T) {
	require := require.New(t)

	require.Equal(value.True, value.Or(value.False, value.True, value.Unknown))
	require.Equal(value.Unknown, value.Or(value.False, value.Unknown))
	require.Equal(value.False, value.Or(value.False, value.False))
}

func TestAsBoolOnlyTrueKeepsRow(t *testing.T) {
	require := require.New(t)

	require.True(value.True.AsBool())
	require.False(value.False.AsBool())
	require.False(value.Unknown.AsBool())
}
