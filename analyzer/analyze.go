package analyzer

import (
	"context"
	"fmt"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/storage"
	"github.com/jsonql-db/jsonql/value"
)

// Analyze runs the full §4.2 pipeline over a parsed Query: context building,
// projection expansion, qualification, constant folding, aggregate
// validation and ORDER BY resolution, in that order.
func Analyze(ctx context.Context, query *ast.Query, provider storage.SchemaProvider, registry *aggregation.Registry, params value.JSON, epsilonAbs, epsilonRel float64) (*AnalyzedQuery, error) {
	ac := newAnalysisContext(ctx, provider, registry, NormalizeParams(params), epsilonAbs, epsilonRel)

	// Step 1: build context from FROM/JOIN.
	for _, coll := range query.Collections {
		if err := ac.addBinding(coll.Visible(), coll.Name); err != nil {
			return nil, err
		}
	}
	joins := make([]AnalyzedJoin, 0, len(query.Joins))
	for _, j := range query.Joins {
		if err := ac.addBinding(j.Collection.Visible(), j.Collection.Name); err != nil {
			return nil, err
		}
		on, err := ac.qualifyPredicate(j.On)
		if err != nil {
			return nil, err
		}
		joins = append(joins, AnalyzedJoin{
			Type:    j.Type,
			Binding: Binding{Visible: j.Collection.Visible(), Backing: j.Collection.Name},
			On:      on,
		})
	}

	// Step 2: expand * / t.* in the projection.
	expanded, err := ac.expandProjection(query.Projection)
	if err != nil {
		return nil, err
	}

	// Steps 3-4: qualify and fold every projected expression.
	projection := make([]AnalyzedIdentifier, 0, len(expanded))
	for _, id := range expanded {
		allowWildcard := isCountStar(id.Expr)
		expr, ty, nullable, err := ac.resolveScalar(id.Expr, allowWildcard)
		if err != nil {
			return nil, err
		}
		projection = append(projection, AnalyzedIdentifier{
			Expr: expr, Alias: id.Alias, Type: ty, Nullable: nullable,
		})
	}

	// Step 5: qualify and fold WHERE.
	var criteria ast.Predicate
	if query.Criteria != nil {
		criteria, err = ac.qualifyPredicate(query.Criteria)
		if err != nil {
			return nil, err
		}
	}

	groupBy := make([]ast.ScalarExpr, 0, len(query.GroupBy))
	for _, g := range query.GroupBy {
		qa, err := ac.qualifyScalarArg(g)
		if err != nil {
			return nil, err
		}
		groupBy = append(groupBy, qa)
	}

	var having ast.Predicate
	if query.Having != nil {
		having, err = ac.qualifyPredicate(query.Having)
		if err != nil {
			return nil, err
		}
	}

	// Step 6: aggregate validation.
	if criteria != nil && ac.predicateContainsAggregate(criteria) {
		return nil, fmt.Errorf("WHERE must not contain an aggregate function")
	}
	isAggregate := len(groupBy) > 0
	if !isAggregate {
		for _, p := range projection {
			if ac.containsAggregate(p.Expr) {
				isAggregate = true
				break
			}
		}
	}
	if !isAggregate && having != nil && ac.predicateContainsAggregate(having) {
		isAggregate = true
	}
	if having != nil && !isAggregate {
		return nil, fmt.Errorf("HAVING requires GROUP BY or an aggregate function")
	}
	if isAggregate {
		keys := groupKeySet(groupBy)
		for _, p := range projection {
			if err := ac.checkGroupByRule(p.Expr, keys); err != nil {
				return nil, err
			}
		}
		if having != nil {
			if err := ac.checkGroupByRulePredicate(having, keys); err != nil {
				return nil, err
			}
		}
	}

	// Step 7: ORDER BY resolution.
	orderBy, err := ac.resolveOrderBy(query.OrderBy, projection)
	if err != nil {
		return nil, err
	}
	if isAggregate {
		keys := groupKeySet(groupBy)
		for _, ob := range orderBy {
			if err := ac.checkGroupByRule(ob.Expr, keys); err != nil {
				return nil, err
			}
		}
	}

	return &AnalyzedQuery{
		Projection:  projection,
		Collections: ac.bindings[:len(query.Collections)],
		Joins:       joins,
		Criteria:    criteria,
		GroupBy:     groupBy,
		Having:      having,
		OrderBy:     orderBy,
		Limit:       query.Limit,
		Offset:      query.Offset,
		IsAggregate: isAggregate,
	}, nil
}

func isCountStar(expr ast.ScalarExpr) bool {
	fn, ok := expr.(ast.Function)
	if !ok {
		return false
	}
	if len(fn.Args) != 1 {
		return false
	}
	_, ok = fn.Args[0].(ast.WildCard)
	return ok
}
