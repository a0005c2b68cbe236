package plan

import (
	"fmt"

	"github.com/jsonql-db/jsonql/ast"
)

// collectedAgg is one aggregate call found while walking SELECT/HAVING,
// before name assignment.
type collectedAgg struct {
	fn     ast.Function
	key    string
	source ast.ScalarExpr // the exact node that will be rewritten to a Column
}

// aggKey is a stable dedup key for (func, args, distinct); Go's %#v
// formatting of these plain, acyclic struct trees is deterministic and
// unique enough for that purpose without hand-rolling a printer.
func aggKey(fn ast.Function) string {
	return fmt.Sprintf("%s|%#v|%v", fn.Name, fn.Args, fn.Distinct)
}

// collectAggregates walks expr collecting every aggregate-function call
// (identified by isAgg), deduplicating by aggKey.
func collectAggregates(expr ast.ScalarExpr, isAgg func(string) bool, seen map[string]*collectedAgg, order *[]string) {
	fn, ok := expr.(ast.Function)
	if !ok {
		return
	}
	if isAgg(fn.Name) {
		k := aggKey(fn)
		if _, exists := seen[k]; !exists {
			seen[k] = &collectedAgg{fn: fn, key: k, source: expr}
			*order = append(*order, k)
		}
		return // aggregate args are not recursed into for further agg calls
	}
	for _, a := range fn.Args {
		collectAggregates(a, isAgg, seen, order)
	}
}

func collectAggregatesPredicate(p ast.Predicate, isAgg func(string) bool, seen map[string]*collectedAgg, order *[]string) {
	switch e := p.(type) {
	case ast.And:
		for _, o := range e.Operands {
			collectAggregatesPredicate(o, isAgg, seen, order)
		}
	case ast.Or:
		for _, o := range e.Operands {
			collectAggregatesPredicate(o, isAgg, seen, order)
		}
	case ast.Compare:
		collectAggregates(e.Left, isAgg, seen, order)
		collectAggregates(e.Right, isAgg, seen, order)
	case ast.IsNull:
		collectAggregates(e.Expr, isAgg, seen, order)
	case ast.InList:
		collectAggregates(e.Expr, isAgg, seen, order)
		for _, item := range e.List {
			collectAggregates(item, isAgg, seen, order)
		}
	case ast.Like:
		collectAggregates(e.Expr, isAgg, seen, order)
		collectAggregates(e.Pattern, isAgg, seen, order)
	}
}

// rewriteAggregates replaces every aggregate call in expr matching a key in
// assigned with a bare column reference to its assigned output name.
func rewriteAggregates(expr ast.ScalarExpr, isAgg func(string) bool, assigned map[string]string) ast.ScalarExpr {
	fn, ok := expr.(ast.Function)
	if !ok {
		return expr
	}
	if isAgg(fn.Name) {
		name := assigned[aggKey(fn)]
		return ast.Column{Name: name}
	}
	newArgs := make([]ast.ScalarExpr, len(fn.Args))
	for i, a := range fn.Args {
		newArgs[i] = rewriteAggregates(a, isAgg, assigned)
	}
	return ast.Function{Name: fn.Name, Args: newArgs, Distinct: fn.Distinct}
}

func rewriteAggregatesPredicate(p ast.Predicate, isAgg func(string) bool, assigned map[string]string) ast.Predicate {
	switch e := p.(type) {
	case ast.And:
		out := make([]ast.Predicate, len(e.Operands))
		for i, o := range e.Operands {
			out[i] = rewriteAggregatesPredicate(o, isAgg, assigned)
		}
		return ast.And{Operands: out}
	case ast.Or:
		out := make([]ast.Predicate, len(e.Operands))
		for i, o := range e.Operands {
			out[i] = rewriteAggregatesPredicate(o, isAgg, assigned)
		}
		return ast.Or{Operands: out}
	case ast.Compare:
		return ast.Compare{
			Left:  rewriteAggregates(e.Left, isAgg, assigned),
			Op:    e.Op,
			Right: rewriteAggregates(e.Right, isAgg, assigned),
		}
	case ast.IsNull:
		return ast.IsNull{Expr: rewriteAggregates(e.Expr, isAgg, assigned), Negated: e.Negated}
	case ast.InList:
		items := make([]ast.ScalarExpr, len(e.List))
		for i, item := range e.List {
			items[i] = rewriteAggregates(item, isAgg, assigned)
		}
		return ast.InList{Expr: rewriteAggregates(e.Expr, isAgg, assigned), List: items, Negated: e.Negated}
	case ast.Like:
		return ast.Like{
			Expr:    rewriteAggregates(e.Expr, isAgg, assigned),
			Pattern: rewriteAggregates(e.Pattern, isAgg, assigned),
			Negated: e.Negated,
		}
	default: // Const3
		return p
	}
}
