package analyzer

import (
	"fmt"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/value"
)

// resolveScalar qualifies and constant-folds a scalar expression (spec §4.2
// steps 3-4). allowWildcard permits a bare WildCard through unresolved,
// valid only as the sole argument of COUNT; any other wildcard reaching
// here is an error.
func (c *analysisContext) resolveScalar(expr ast.ScalarExpr, allowWildcard bool) (ast.ScalarExpr, value.Primitive, bool, error) {
	switch e := expr.(type) {
	case ast.NullLiteral:
		return e, value.PNull, true, nil
	case ast.BoolLiteral:
		return e, value.PBool, false, nil
	case ast.IntLiteral:
		return e, value.PInt, false, nil
	case ast.FloatLiteral:
		return e, value.PFloat, false, nil
	case ast.StringLiteral:
		return e, value.PString, false, nil

	case ast.Parameter:
		lit, err := c.resolveScalarParameter()
		if err != nil {
			return nil, 0, false, err
		}
		return c.resolveScalar(lit, false)

	case ast.Column:
		return c.qualifyColumn(e)

	case ast.WildCard:
		if allowWildcard {
			return e, value.PNull, false, nil
		}
		return nil, 0, false, fmt.Errorf("'*' is only allowed in the projection or as the sole argument of COUNT")

	case ast.WildCardWithCollection:
		return nil, 0, false, fmt.Errorf("'%s.*' is only allowed in the projection", e.Collection)

	case ast.Function:
		return c.resolveFunction(e)

	case ast.Args:
		return nil, 0, false, fmt.Errorf("parameter list expansion is only valid inside IN(...)")
	}
	return nil, 0, false, fmt.Errorf("unrecognized scalar expression %T", expr)
}

// qualifyColumn maps Column{Name:n} to Column{Collection:v, Name:n} for the
// unique visible v whose schema contains n (spec §4.2 step 3).
func (c *analysisContext) qualifyColumn(col ast.Column) (ast.ScalarExpr, value.Primitive, bool, error) {
	if col.Qualified() {
		schema, ok := c.schemaFor(col.Collection)
		if !ok {
			return nil, 0, false, errorkinds.UnknownCollection.New(col.Collection)
		}
		fi, ok := schema.Get(col.Name)
		if !ok {
			return nil, 0, false, errorkinds.UnknownColumn.New(col.Name, schema.Fields())
		}
		return col, fi.Type, fi.Nullable, nil
	}

	var matches []string
	var candidates []string
	seen := map[string]bool{}
	for _, b := range c.bindings {
		schema, ok := c.schemaFor(b.Visible)
		if !ok {
			continue
		}
		for _, f := range schema.Fields() {
			if !seen[f] {
				seen[f] = true
				candidates = append(candidates, f)
			}
		}
		if schema.Has(col.Name) {
			matches = append(matches, b.Visible)
		}
	}
	switch len(matches) {
	case 0:
		return nil, 0, false, errorkinds.UnknownColumn.New(col.Name, candidates)
	case 1:
		schema, _ := c.schemaFor(matches[0])
		fi, _ := schema.Get(col.Name)
		return ast.Column{Collection: matches[0], Name: col.Name}, fi.Type, fi.Nullable, nil
	default:
		return nil, 0, false, errorkinds.AmbiguousColumn.New(col.Name, matches)
	}
}
