package jsonql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql"
	"github.com/jsonql-db/jsonql/storage/memstore"
	"github.com/jsonql-db/jsonql/value"
)

func row(fields map[string]value.JSON, order []string) *value.Object {
	o := value.NewObject()
	for _, k := range order {
		o.Set(k, fields[k])
	}
	return o
}

func newEngineWithUsersAndOrders(t *testing.T) *jsonql.Engine {
	t.Helper()
	s := memstore.New()
	s.Insert("users", row(map[string]value.JSON{
		"name": value.String("alice"), "age": value.Int(30),
	}, []string{"name", "age"}))
	s.Insert("users", row(map[string]value.JSON{
		"name": value.String("bob"), "age": value.Int(25),
	}, []string{"name", "age"}))
	s.Insert("users", row(map[string]value.JSON{
		"name": value.String("carol"), "age": value.Int(25),
	}, []string{"name", "age"}))

	s.Insert("orders", row(map[string]value.JSON{
		"user_name": value.String("alice"), "amount": value.Int(10),
	}, []string{"user_name", "amount"}))
	s.Insert("orders", row(map[string]value.JSON{
		"user_name": value.String("alice"), "amount": value.Int(5),
	}, []string{"user_name", "amount"}))
	s.Insert("orders", row(map[string]value.JSON{
		"user_name": value.String("bob"), "amount": value.Int(1),
	}, []string{"user_name", "amount"}))

	return jsonql.New(s)
}

// S1: a plain SELECT with a WHERE filter.
func TestEngineQuerySelectWithWhere(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(), "SELECT name FROM users WHERE age = 25", value.Null())
	require.NoError(err)
	require.Len(rows, 2)
}

// S2: an INNER JOIN across two collections.
func TestEngineQueryInnerJoin(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(),
		"SELECT users.name, orders.amount FROM users INNER JOIN orders ON users.name = orders.user_name",
		value.Null())
	require.NoError(err)
	require.Len(rows, 3, "alice has two orders, bob has one, carol has none")
}

// S3: a LEFT JOIN extends unmatched left rows with nulls.
func TestEngineQueryLeftJoinNullExtends(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(),
		"SELECT users.name, orders.amount FROM users LEFT JOIN orders ON users.name = orders.user_name ORDER BY users.name",
		value.Null())
	require.NoError(err)
	require.Len(rows, 4, "alice x2, bob x1, carol x1 (unmatched, null-extended)")

	last := rows[len(rows)-1].AsObject()
	name, _ := last.Get("users.name")
	require.Equal("carol", name.AsString())
	amount, _ := last.Get("orders.amount")
	require.True(amount.IsNull())
}

// S4: GROUP BY + aggregate with an alias.
func TestEngineQueryGroupByCountWithAlias(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(),
		"SELECT age, COUNT(*) AS n FROM users GROUP BY age ORDER BY age",
		value.Null())
	require.NoError(err)
	require.Len(rows, 2)

	first := rows[0].AsObject()
	age, _ := first.Get("users.age")
	n, _ := first.Get("n")
	require.EqualValues(25, age.AsInt())
	require.EqualValues(2, n.AsInt())
}

// S5: HAVING filters groups post-aggregation.
func TestEngineQueryHavingFiltersGroups(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(),
		"SELECT age, COUNT(*) AS n FROM users GROUP BY age HAVING COUNT(*) > 1",
		value.Null())
	require.NoError(err)
	require.Len(rows, 1)
	obj := rows[0].AsObject()
	age, _ := obj.Get("users.age")
	require.EqualValues(25, age.AsInt())
}

// S6: a parameterized query with LIMIT/OFFSET.
func TestEngineQueryParameterizedWithLimitOffset(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	rows, err := e.Query(context.Background(),
		"SELECT name FROM users WHERE age = ? ORDER BY name LIMIT 1 OFFSET 1",
		value.Int(25))
	require.NoError(err)
	require.Len(rows, 1)
	obj := rows[0].AsObject()
	name, _ := obj.Get("users.name")
	require.Equal("carol", name.AsString())
}

func TestEngineQueryParseErrorIsWrapped(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	_, err := e.Query(context.Background(), "SELEKT * FROM users", value.Null())
	require.Error(err)
}

func TestEngineQueryUnknownColumnErrorsAtAnalysis(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)

	_, err := e.Query(context.Background(), "SELECT bogus FROM users", value.Null())
	require.Error(err)
}

func TestEngineQueryMaxResultRowsCapsOutput(t *testing.T) {
	require := require.New(t)
	e := newEngineWithUsersAndOrders(t)
	e.Config.MaxResultRows = 1

	rows, err := e.Query(context.Background(), "SELECT name FROM users", value.Null())
	require.NoError(err)
	require.Len(rows, 1)
}
