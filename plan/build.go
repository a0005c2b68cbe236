package plan

import (
	"fmt"
	"strings"

	"github.com/jsonql-db/jsonql/aggregation"
	"github.com/jsonql-db/jsonql/analyzer"
	"github.com/jsonql-db/jsonql/ast"
)

// Build lowers an AnalyzedQuery into a LogicalPlan (spec §4.3).
func Build(aq *analyzer.AnalyzedQuery, registry *aggregation.Registry) (LogicalPlan, error) {
	if len(aq.Collections) == 0 {
		return nil, fmt.Errorf("query has no FROM source")
	}

	// Step 1: left-deep cross-join chain over the FROM list.
	var src LogicalPlan = Scan{Visible: aq.Collections[0].Visible, Backing: aq.Collections[0].Backing}
	for _, b := range aq.Collections[1:] {
		src = Join{
			Type:  ast.InnerJoin,
			Left:  src,
			Right: Scan{Visible: b.Visible, Backing: b.Backing},
			On:    ast.Const3{Value: ast.T3True},
		}
	}

	// Step 2: explicit JOINs in textual order.
	for _, j := range aq.Joins {
		src = Join{
			Type:  j.Type,
			Left:  src,
			Right: Scan{Visible: j.Binding.Visible, Backing: j.Binding.Backing},
			On:    j.On,
		}
	}

	// Step 3: WHERE.
	if aq.Criteria != nil {
		src = Filter{Input: src, Predicate: aq.Criteria}
	}

	isAgg := func(name string) bool {
		_, ok := registry.Lookup(name)
		return ok
	}

	if !aq.IsAggregate {
		// Step 5: direct projection.
		items := make([]ProjectItem, len(aq.Projection))
		for i, p := range aq.Projection {
			items[i] = projectItem(p)
		}
		src = Project{Input: src, Items: items}
		return wrapSortLimit(src, aq)
	}

	// Step 4: aggregate query.
	seen := map[string]*collectedAgg{}
	var order []string
	for _, p := range aq.Projection {
		collectAggregates(p.Expr, isAgg, seen, &order)
	}
	if aq.Having != nil {
		collectAggregatesPredicate(aq.Having, isAgg, seen, &order)
	}

	usedNames := map[string]bool{}
	for _, k := range aq.GroupBy {
		usedNames[defaultName(k)] = true
	}
	assigned := map[string]string{}
	aggs := make([]AggregateCall, 0, len(order))
	for _, k := range order {
		ca := seen[k]
		lowerName := strings.ToLower(ca.fn.Name)
		name := aggAliasFor(aq.Projection, ca.fn)
		if name == "" {
			name = uniqueName(lowerName, usedNames)
		} else {
			usedNames[name] = true
		}
		assigned[k] = name
		aggs = append(aggs, AggregateCall{Func: lowerName, Args: ca.fn.Args, Distinct: ca.fn.Distinct, Name: name})
	}
	src = Aggregate{Input: src, GroupKeys: aq.GroupBy, Aggs: aggs}

	if aq.Having != nil {
		rewritten := rewriteAggregatesPredicate(aq.Having, isAgg, assigned)
		src = Filter{Input: src, Predicate: rewritten}
	}

	items := make([]ProjectItem, len(aq.Projection))
	for i, p := range aq.Projection {
		rewritten := rewriteAggregates(p.Expr, isAgg, assigned)
		items[i] = ProjectItem{Expr: rewritten, Name: projectName(p, rewritten)}
	}
	src = Project{Input: src, Items: items}

	// ORDER BY references to a collected aggregate use its assigned output
	// name, as HAVING and the projection do.
	if len(aq.OrderBy) > 0 {
		sorted := *aq
		sorted.OrderBy = make([]analyzer.AnalyzedOrderBy, len(aq.OrderBy))
		for i, ob := range aq.OrderBy {
			sorted.OrderBy[i] = analyzer.AnalyzedOrderBy{Expr: rewriteAggregates(ob.Expr, isAgg, assigned), Ascending: ob.Ascending}
		}
		aq = &sorted
	}

	return wrapSortLimit(src, aq)
}

// aggAliasFor returns the SELECT alias of the projection item whose
// expression matches fn exactly, or "" if none does (spec §4.3 step 4:
// "prefer the SELECT alias of a matching aggregate").
func aggAliasFor(projection []analyzer.AnalyzedIdentifier, fn ast.Function) string {
	key := aggKey(fn)
	for _, p := range projection {
		if pf, ok := p.Expr.(ast.Function); ok && aggKey(pf) == key && p.Alias != "" {
			return p.Alias
		}
	}
	return ""
}

func projectItem(p analyzer.AnalyzedIdentifier) ProjectItem {
	return ProjectItem{Expr: p.Expr, Name: projectName(p, p.Expr)}
}

func projectName(p analyzer.AnalyzedIdentifier, expr ast.ScalarExpr) string {
	if p.Alias != "" {
		return p.Alias
	}
	return defaultName(expr)
}

func wrapSortLimit(src LogicalPlan, aq *analyzer.AnalyzedQuery) (LogicalPlan, error) {
	if len(aq.OrderBy) > 0 {
		keys := make([]OrderKey, len(aq.OrderBy))
		for i, ob := range aq.OrderBy {
			keys[i] = OrderKey{Expr: ob.Expr, Ascending: ob.Ascending}
		}
		src = Sort{Input: src, Keys: keys}
	}
	if aq.Limit != nil || aq.Offset != nil {
		src = Limit{Input: src, Limit: aq.Limit, Offset: aq.Offset}
	}
	return src, nil
}
