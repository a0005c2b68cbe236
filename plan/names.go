package plan

import (
	"strconv"
	"strings"

	"github.com/jsonql-db/jsonql/ast"
)

// defaultName implements spec §4.4's Project default-name table.
func defaultName(expr ast.ScalarExpr) string {
	switch e := expr.(type) {
	case ast.Column:
		if e.Qualified() {
			return e.Collection + "." + e.Name
		}
		return e.Name
	case ast.Function:
		return strings.ToLower(e.Name)
	case ast.WildCard, ast.WildCardWithCollection:
		return "*"
	default:
		return "_lit"
	}
}

// uniqueName returns name, or name_1, name_2, ... until it doesn't collide
// with an already-used name (spec §4.3 step 4 / §4.4's Aggregate emission).
func uniqueName(name string, used map[string]bool) string {
	if !used[name] {
		used[name] = true
		return name
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
