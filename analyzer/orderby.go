package analyzer

import (
	"fmt"
	"strings"

	"github.com/jsonql-db/jsonql/ast"
)

// resolveOrderBy implements spec §4.2 step 7's three-precedence rule:
// ordinal reference, then SELECT-alias reference, then ordinary
// qualify-and-fold.
func (c *analysisContext) resolveOrderBy(items []ast.OrderBy, projection []AnalyzedIdentifier) ([]AnalyzedOrderBy, error) {
	out := make([]AnalyzedOrderBy, 0, len(items))
	for _, ob := range items {
		var expr ast.ScalarExpr

		switch {
		case ob.OrdinalRef > 0:
			if ob.OrdinalRef > len(projection) {
				return nil, fmt.Errorf("ORDER BY ordinal %d is out of range for a %d-column projection", ob.OrdinalRef, len(projection))
			}
			expr = projection[ob.OrdinalRef-1].Expr

		case ob.AliasRef != "":
			found := false
			for _, p := range projection {
				if strings.EqualFold(p.Alias, ob.AliasRef) {
					expr = p.Expr
					found = true
					break
				}
			}
			if !found {
				qa, err := c.qualifyScalarArg(ob.Expr)
				if err != nil {
					return nil, err
				}
				expr = qa
			}

		default:
			qa, err := c.qualifyScalarArg(ob.Expr)
			if err != nil {
				return nil, err
			}
			expr = qa
		}

		out = append(out, AnalyzedOrderBy{Expr: expr, Ascending: ob.Ascending})
	}
	return out, nil
}
