package rowexec

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/plan"
	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// Execute interprets a plan.LogicalPlan bottom-up against provider,
// returning the materialized output rows as JSON objects (spec §4.4).
func Execute(ctx context.Context, p plan.LogicalPlan, provider storage.Provider, epsAbs, epsRel float64) ([]value.JSON, error) {
	rows, err := execNode(ctx, p, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	out := make([]value.JSON, len(rows))
	for i, r := range rows {
		out[i] = value.Obj(r)
	}
	return out, nil
}

func execNode(ctx context.Context, node plan.LogicalPlan, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	switch n := node.(type) {
	case plan.Scan:
		return execScan(ctx, n, provider)
	case plan.Join:
		return execJoin(ctx, n, provider, epsAbs, epsRel)
	case plan.Filter:
		return execFilter(ctx, n, provider, epsAbs, epsRel)
	case plan.Aggregate:
		return execAggregate(ctx, n, provider, epsAbs, epsRel)
	case plan.Project:
		return execProject(ctx, n, provider, epsAbs, epsRel)
	case plan.Sort:
		return execSort(ctx, n, provider, epsAbs, epsRel)
	case plan.Limit:
		return execLimit(ctx, n, provider, epsAbs, epsRel)
	}
	return nil, fmt.Errorf("rowexec: unrecognized plan node %T", node)
}

func execScan(ctx context.Context, n plan.Scan, provider storage.Provider) ([]*value.Object, error) {
	iter, err := provider.RowsOf(ctx, n.Backing)
	if err != nil {
		return nil, err
	}
	defer iter.Close(ctx)

	var out []*value.Object
	for {
		doc, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := value.NewObject()
		for _, k := range doc.Keys() {
			v, _ := doc.Get(k)
			row.Set(n.Visible+"."+k, v)
		}
		out = append(out, row)
	}
	return out, nil
}

func mergeRow(l, r *value.Object) *value.Object {
	return value.Merge(l, r)
}

func nullRowForKeys(keys []string) *value.Object {
	o := value.NewObject()
	for _, k := range keys {
		o.Set(k, value.Null())
	}
	return o
}

// deriveKeySet implements spec §4.4's key-set derivation: a direct Scan
// child yields its schema's keys; anything else falls back to the union of
// keys observed among the materialized rows on that side.
func deriveKeySet(ctx context.Context, node plan.LogicalPlan, provider storage.Provider, materialized []*value.Object) []string {
	if scan, ok := node.(plan.Scan); ok {
		if schema, ok := provider.SchemaOf(ctx, scan.Backing); ok {
			keys := make([]string, 0, schema.Len())
			for _, f := range schema.Fields() {
				keys = append(keys, scan.Visible+"."+f)
			}
			return keys
		}
	}
	seen := map[string]bool{}
	var keys []string
	for _, row := range materialized {
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func execJoin(ctx context.Context, n plan.Join, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	left, err := execNode(ctx, n.Left, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	right, err := execNode(ctx, n.Right, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}

	switch n.Type {
	case ast.InnerJoin:
		var out []*value.Object
		for _, l := range left {
			for _, r := range right {
				merged := mergeRow(l, r)
				if EvalPredicate3(n.On, merged, epsAbs, epsRel) == value.True {
					out = append(out, merged)
				}
			}
		}
		return out, nil

	case ast.LeftJoin:
		rightKeys := deriveKeySet(ctx, n.Right, provider, right)
		var out []*value.Object
		for _, l := range left {
			matched := false
			for _, r := range right {
				merged := mergeRow(l, r)
				if EvalPredicate3(n.On, merged, epsAbs, epsRel) == value.True {
					out = append(out, merged)
					matched = true
				}
			}
			if !matched {
				out = append(out, mergeRow(l, nullRowForKeys(rightKeys)))
			}
		}
		return out, nil

	case ast.RightJoin:
		leftKeys := deriveKeySet(ctx, n.Left, provider, left)
		var out []*value.Object
		for _, r := range right {
			matched := false
			for _, l := range left {
				merged := mergeRow(l, r)
				if EvalPredicate3(n.On, merged, epsAbs, epsRel) == value.True {
					out = append(out, merged)
					matched = true
				}
			}
			if !matched {
				out = append(out, mergeRow(nullRowForKeys(leftKeys), r))
			}
		}
		return out, nil

	case ast.FullJoin:
		leftKeys := deriveKeySet(ctx, n.Left, provider, left)
		rightKeys := deriveKeySet(ctx, n.Right, provider, right)
		matchedRight := make([]bool, len(right))
		var out []*value.Object
		for _, l := range left {
			matched := false
			for ri, r := range right {
				merged := mergeRow(l, r)
				if EvalPredicate3(n.On, merged, epsAbs, epsRel) == value.True {
					out = append(out, merged)
					matched = true
					matchedRight[ri] = true
				}
			}
			if !matched {
				out = append(out, mergeRow(l, nullRowForKeys(rightKeys)))
			}
		}
		for ri, r := range right {
			if !matchedRight[ri] {
				out = append(out, mergeRow(nullRowForKeys(leftKeys), r))
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("rowexec: unrecognized join type %v", n.Type)
}

func execFilter(ctx context.Context, n plan.Filter, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	input, err := execNode(ctx, n.Input, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	var out []*value.Object
	for _, row := range input {
		if EvalPredicate3(n.Predicate, row, epsAbs, epsRel) == value.True {
			out = append(out, row)
		}
	}
	return out, nil
}

func execProject(ctx context.Context, n plan.Project, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	input, err := execNode(ctx, n.Input, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	out := make([]*value.Object, len(input))
	for i, row := range input {
		o := value.NewObject()
		for _, item := range n.Items {
			o.Set(item.Name, EvalScalar(item.Expr, row))
		}
		out[i] = o
	}
	return out, nil
}

func execSort(ctx context.Context, n plan.Sort, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	input, err := execNode(ctx, n.Input, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(input, func(i, j int) bool {
		return compareRows(input[i], input[j], n.Keys) < 0
	})
	return input, nil
}

// compareRows implements §4.4.1: NULLS LAST in both directions, then the
// value comparator, applied key by key.
func compareRows(a, b *value.Object, keys []plan.OrderKey) int {
	for _, k := range keys {
		av := EvalScalar(k.Expr, a)
		bv := EvalScalar(k.Expr, b)
		c := compareNullsLast(av, bv, k.Ascending)
		if c != 0 {
			return c
		}
	}
	return 0
}

func compareNullsLast(a, b value.JSON, ascending bool) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return 1
	}
	if b.IsNull() {
		return -1
	}
	c := value.Compare(a, b)
	if !ascending {
		c = -c
	}
	return c
}

func execLimit(ctx context.Context, n plan.Limit, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	input, err := execNode(ctx, n.Input, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}
	offset := int64(0)
	if n.Offset != nil && *n.Offset > 0 {
		offset = *n.Offset
	}
	if offset > int64(len(input)) {
		return nil, nil
	}
	input = input[offset:]
	if n.Limit != nil {
		limit := *n.Limit
		if limit < 0 {
			limit = 0
		}
		if limit < int64(len(input)) {
			input = input[:limit]
		}
	}
	return input, nil
}
