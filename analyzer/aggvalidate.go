package analyzer

import (
	"fmt"

	"github.com/jsonql-db/jsonql/ast"
)

func (c *analysisContext) isAggregateName(name string) bool {
	_, ok := c.registry.Lookup(name)
	return ok
}

// containsAggregate reports whether a scalar tree calls a registered
// aggregate function anywhere below it.
func (c *analysisContext) containsAggregate(expr ast.ScalarExpr) bool {
	fn, ok := expr.(ast.Function)
	if !ok {
		return false
	}
	if c.isAggregateName(fn.Name) {
		return true
	}
	for _, a := range fn.Args {
		if c.containsAggregate(a) {
			return true
		}
	}
	return false
}

func (c *analysisContext) predicateContainsAggregate(p ast.Predicate) bool {
	switch e := p.(type) {
	case ast.And:
		for _, o := range e.Operands {
			if c.predicateContainsAggregate(o) {
				return true
			}
		}
		return false
	case ast.Or:
		for _, o := range e.Operands {
			if c.predicateContainsAggregate(o) {
				return true
			}
		}
		return false
	case ast.Compare:
		return c.containsAggregate(e.Left) || c.containsAggregate(e.Right)
	case ast.IsNull:
		return c.containsAggregate(e.Expr)
	case ast.InList:
		if c.containsAggregate(e.Expr) {
			return true
		}
		for _, item := range e.List {
			if c.containsAggregate(item) {
				return true
			}
		}
		return false
	case ast.Like:
		return c.containsAggregate(e.Expr) || c.containsAggregate(e.Pattern)
	default: // Const3
		return false
	}
}

// checkGroupByRule implements spec §4.2 step 6's final clause: outside an
// aggregate call's own arguments, every column reached from a SELECT or
// HAVING expression must belong to the GROUP BY key set.
func (c *analysisContext) checkGroupByRule(expr ast.ScalarExpr, keys map[string]bool) error {
	switch e := expr.(type) {
	case ast.Column:
		key := e.Collection + "." + e.Name
		if !keys[key] {
			return fmt.Errorf("column %s must appear in GROUP BY or be used only inside an aggregate", e.Key())
		}
		return nil
	case ast.Function:
		if c.isAggregateName(e.Name) {
			return nil // aggregate arguments may reference any column
		}
		for _, a := range e.Args {
			if err := c.checkGroupByRule(a, keys); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (c *analysisContext) checkGroupByRulePredicate(p ast.Predicate, keys map[string]bool) error {
	switch e := p.(type) {
	case ast.And:
		for _, o := range e.Operands {
			if err := c.checkGroupByRulePredicate(o, keys); err != nil {
				return err
			}
		}
		return nil
	case ast.Or:
		for _, o := range e.Operands {
			if err := c.checkGroupByRulePredicate(o, keys); err != nil {
				return err
			}
		}
		return nil
	case ast.Compare:
		if err := c.checkGroupByRule(e.Left, keys); err != nil {
			return err
		}
		return c.checkGroupByRule(e.Right, keys)
	case ast.IsNull:
		return c.checkGroupByRule(e.Expr, keys)
	case ast.InList:
		if err := c.checkGroupByRule(e.Expr, keys); err != nil {
			return err
		}
		for _, item := range e.List {
			if err := c.checkGroupByRule(item, keys); err != nil {
				return err
			}
		}
		return nil
	case ast.Like:
		if err := c.checkGroupByRule(e.Expr, keys); err != nil {
			return err
		}
		return c.checkGroupByRule(e.Pattern, keys)
	default: // Const3
		return nil
	}
}

// groupKeySet builds the (visible, name) key set from a GROUP BY list of
// already-qualified columns.
func groupKeySet(groupBy []ast.ScalarExpr) map[string]bool {
	keys := map[string]bool{}
	for _, expr := range groupBy {
		if col, ok := expr.(ast.Column); ok {
			keys[col.Collection+"."+col.Name] = true
		}
	}
	return keys
}
