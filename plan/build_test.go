package plan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/analyzer"
	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/config"
	"github.com/jsonql-db/jsonql/parse"
	"github.com/jsonql-db/jsonql/plan"
	"github.com/jsonql-db/jsonql/storage/memstore"
	"github.com/jsonql-db/jsonql/value"
)

func buildPlan(t *testing.T, s *memstore.Store, sql string) plan.LogicalPlan {
	t.Helper()
	q, err := parse.Parse(sql)
	require.NoError(t, err)
	registry := aggregation.NewRegistry()
	aq, err := analyzer.Analyze(context.Background(), q, s, registry, value.Null(), config.DefaultEpsilon, config.DefaultEpsilon)
	require.NoError(t, err)
	p, err := plan.Build(aq, registry)
	require.NoError(t, err)
	return p
}

func seedStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	u := value.NewObject()
	u.Set("name", value.String("alice"))
	u.Set("age", value.Int(30))
	s.Insert("users", u)
	o := value.NewObject()
	o.Set("user_name", value.String("alice"))
	o.Set("amount", value.Int(5))
	s.Insert("orders", o)
	return s
}

func TestBuildSimpleProjectOverScan(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT name FROM users")
	proj, ok := p.(plan.Project)
	require.True(ok)
	require.Len(proj.Items, 1)
	require.Equal("users.name", proj.Items[0].Name)
	_, ok = proj.Input.(plan.Scan)
	require.True(ok)
}

func TestBuildWrapsFilterForWhere(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT name FROM users WHERE age = 30")
	proj := p.(plan.Project)
	_, ok := proj.Input.(plan.Filter)
	require.True(ok)
}

func TestBuildExplicitJoinAppearsInTextualOrder(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT name FROM users LEFT JOIN orders ON users.name = orders.user_name")
	proj := p.(plan.Project)
	join, ok := proj.Input.(plan.Join)
	require.True(ok)
	require.Equal(ast.LeftJoin, join.Type)
	scan, ok := join.Left.(plan.Scan)
	require.True(ok)
	require.Equal("users", scan.Visible)
}

func TestBuildCrossJoinChainForMultiFrom(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT users.name FROM users, orders")
	proj := p.(plan.Project)
	join, ok := proj.Input.(plan.Join)
	require.True(ok)
	require.Equal(ast.InnerJoin, join.Type)
	c3, ok := join.On.(ast.Const3)
	require.True(ok)
	require.Equal(ast.T3True, c3.Value)
}

func TestBuildAggregatePlanPrefersSelectAlias(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT COUNT(*) AS total FROM users")
	proj := p.(plan.Project)
	require.Equal("total", proj.Items[0].Name)
	agg, ok := proj.Input.(plan.Aggregate)
	require.True(ok)
	require.Len(agg.Aggs, 1)
	require.Equal("total", agg.Aggs[0].Name)
}

func TestBuildAggregateDefaultNameWhenNoAlias(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT COUNT(*) FROM users")
	proj := p.(plan.Project)
	agg := proj.Input.(plan.Aggregate)
	require.Equal("count", agg.Aggs[0].Name)
	require.Equal("count", proj.Items[0].Name)
}

func TestBuildDedupsRepeatedAggregateCalls(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT COUNT(*), COUNT(*) AS again FROM users")
	proj := p.(plan.Project)
	agg := proj.Input.(plan.Aggregate)
	require.Len(agg.Aggs, 1, "identical aggregate calls must be deduplicated")
	require.Len(proj.Items, 2, "each projected reference to the aggregate is still emitted")
}

func TestBuildHavingIsFilterOverAggregate(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT name, COUNT(*) AS n FROM users GROUP BY name HAVING COUNT(*) > 0")
	proj := p.(plan.Project)
	filter, ok := proj.Input.(plan.Filter)
	require.True(ok)
	cmp, ok := filter.Predicate.(ast.Compare)
	require.True(ok)
	col, ok := cmp.Left.(ast.Column)
	require.True(ok)
	require.Equal("n", col.Name, "HAVING must reference the Aggregate's assigned output column")
	_, ok = filter.Input.(plan.Aggregate)
	require.True(ok)
}

func TestBuildWrapsSortThenLimit(t *testing.T) {
	require := require.New(t)
	s := seedStore(t)

	p := buildPlan(t, s, "SELECT name FROM users ORDER BY name LIMIT 5 OFFSET 1")
	lim, ok := p.(plan.Limit)
	require.True(ok)
	require.EqualValues(5, *lim.Limit)
	require.EqualValues(1, *lim.Offset)
	_, ok = lim.Input.(plan.Sort)
	require.True(ok)
}
