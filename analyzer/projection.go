package analyzer

import (
	"github.com/jsonql-db/jsonql/ast"
)

// expandProjection implements spec §4.2 step 2: `*` expands to one column
// per field of every visible collection in (visible_insertion_order x
// schema_field_order); `t.*` expands to t's fields in schema order. A
// wildcard expansion drops any user alias when it yields more than one
// column, keeps it when it yields exactly one.
func (c *analysisContext) expandProjection(items []ast.Identifier) ([]ast.Identifier, error) {
	out := make([]ast.Identifier, 0, len(items))
	for _, id := range items {
		switch e := id.Expr.(type) {
		case ast.WildCard:
			cols := c.expandAllWildcard()
			out = append(out, applyWildcardAlias(cols, id.Alias)...)
		case ast.WildCardWithCollection:
			cols, err := c.expandCollectionWildcard(e.Collection)
			if err != nil {
				return nil, err
			}
			out = append(out, applyWildcardAlias(cols, id.Alias)...)
		default:
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *analysisContext) expandAllWildcard() []ast.Column {
	var cols []ast.Column
	for _, b := range c.bindings {
		schema, ok := c.schemaFor(b.Visible)
		if !ok {
			continue
		}
		for _, f := range schema.Fields() {
			cols = append(cols, ast.Column{Collection: b.Visible, Name: f})
		}
	}
	return cols
}

func (c *analysisContext) expandCollectionWildcard(visible string) ([]ast.Column, error) {
	schema, ok := c.schemaFor(visible)
	if !ok {
		return nil, unknownCollectionErr(visible)
	}
	cols := make([]ast.Column, 0, schema.Len())
	for _, f := range schema.Fields() {
		cols = append(cols, ast.Column{Collection: visible, Name: f})
	}
	return cols, nil
}

func applyWildcardAlias(cols []ast.Column, alias string) []ast.Identifier {
	out := make([]ast.Identifier, 0, len(cols))
	keepAlias := alias != "" && len(cols) == 1
	for _, col := range cols {
		a := ""
		if keepAlias {
			a = alias
		}
		out = append(out, ast.Identifier{Expr: col, Alias: a})
	}
	return out
}
