package rowexec

import (
	"context"
	"strings"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/plan"
	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// groupState is one GROUP BY group's running accumulators plus, for DISTINCT
// calls, a per-call set of canonicalized argument tuples already seen.
type groupState struct {
	keyVals      []value.JSON
	accs         []aggregation.Accumulator
	distinctSeen []map[string]bool // index-aligned with accs; nil entry when not DISTINCT
}

func execAggregate(ctx context.Context, n plan.Aggregate, provider storage.Provider, epsAbs, epsRel float64) ([]*value.Object, error) {
	input, err := execNode(ctx, n.Input, provider, epsAbs, epsRel)
	if err != nil {
		return nil, err
	}

	registry := aggregation.NewRegistry()
	groups := map[string]*groupState{}
	var order []string

	for _, row := range input {
		keyVals := make([]value.JSON, len(n.GroupKeys))
		for i, k := range n.GroupKeys {
			keyVals[i] = EvalScalar(k, row)
		}
		gk := value.CanonicalTuple(keyVals)
		gs, ok := groups[gk]
		if !ok {
			gs = newGroupState(registry, n.Aggs, keyVals)
			groups[gk] = gs
			order = append(order, gk)
		}

		for i, call := range n.Aggs {
			args := evalAggArgs(call, row)
			if call.Distinct {
				tupleKey := value.CanonicalTuple(args)
				if gs.distinctSeen[i][tupleKey] {
					continue
				}
				gs.distinctSeen[i][tupleKey] = true
			}
			if err := gs.accs[i].Update(args); err != nil {
				return nil, err
			}
		}
	}

	// Without GROUP BY, an empty input still forms one (empty) group.
	if len(n.GroupKeys) == 0 && len(order) == 0 {
		gk := value.CanonicalTuple(nil)
		groups[gk] = newGroupState(registry, n.Aggs, nil)
		order = append(order, gk)
	}

	out := make([]*value.Object, 0, len(order))
	for _, gk := range order {
		gs := groups[gk]
		o := value.NewObject()
		for i, k := range n.GroupKeys {
			o.Set(groupKeyName(k), gs.keyVals[i])
		}
		for i, call := range n.Aggs {
			o.Set(call.Name, gs.accs[i].Finalize())
		}
		out = append(out, o)
	}
	return out, nil
}

func newGroupState(registry *aggregation.Registry, calls []plan.AggregateCall, keyVals []value.JSON) *groupState {
	accs := make([]aggregation.Accumulator, len(calls))
	distinctSeen := make([]map[string]bool, len(calls))
	for i, call := range calls {
		fn, _ := registry.Lookup(call.Func)
		accs[i] = fn.NewAccumulator()
		if call.Distinct {
			distinctSeen[i] = map[string]bool{}
		}
	}
	return &groupState{keyVals: append([]value.JSON(nil), keyVals...), accs: accs, distinctSeen: distinctSeen}
}

// evalAggArgs evaluates one aggregate call's arguments against a row,
// substituting a non-null sentinel for COUNT(*)'s wildcard argument (spec
// §4.2.2: "for COUNT(*) the executor passes a non-null sentinel").
func evalAggArgs(call plan.AggregateCall, row *value.Object) []value.JSON {
	if len(call.Args) == 1 {
		if _, ok := call.Args[0].(ast.WildCard); ok {
			return []value.JSON{value.Bool(true)}
		}
	}
	args := make([]value.JSON, len(call.Args))
	for i, a := range call.Args {
		args[i] = EvalScalar(a, row)
	}
	return args
}

// groupKeyName matches plan's default naming for a qualified/bare column;
// non-column group keys (rare, but grammatically permitted) fall back to
// their default scalar name.
func groupKeyName(expr ast.ScalarExpr) string {
	if col, ok := expr.(ast.Column); ok {
		if col.Qualified() {
			return col.Collection + "." + col.Name
		}
		return col.Name
	}
	if fn, ok := expr.(ast.Function); ok {
		return strings.ToLower(fn.Name)
	}
	return "_lit"
}
