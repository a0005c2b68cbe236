// Package analyzer resolves *, qualifies bare columns against inferred
// schemas, binds positional parameters, constant-folds pure scalar
// functions and predicates under three-valued logic, infers types, and
// enforces aggregation rules for WHERE/GROUP BY/HAVING/ORDER BY (spec §4.2).
package analyzer

import (
	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/value"
)

// Binding is a visible -> backing collection name pair, in FROM-then-JOIN
// insertion order.
type Binding struct {
	Visible string
	Backing string
}

// AnalyzedIdentifier is the fully qualified, folded form of one projected
// expression, plus its inferred type.
type AnalyzedIdentifier struct {
	Expr     ast.ScalarExpr
	Alias    string
	Type     value.Primitive
	Nullable bool
}

// AnalyzedJoin is one explicit JOIN clause after qualification/folding.
type AnalyzedJoin struct {
	Type    ast.JoinType
	Binding Binding
	On      ast.Predicate
}

// AnalyzedOrderBy is one resolved ORDER BY key.
type AnalyzedOrderBy struct {
	Expr      ast.ScalarExpr
	Ascending bool
}

// AnalyzedQuery is the fully qualified, folded and validated form of the
// parsed AST; the planner consumes it exactly once.
type AnalyzedQuery struct {
	Projection  []AnalyzedIdentifier
	Collections []Binding
	Joins       []AnalyzedJoin
	Criteria    ast.Predicate // nil when absent
	GroupBy     []ast.ScalarExpr
	Having      ast.Predicate // nil when absent
	OrderBy     []AnalyzedOrderBy
	Limit       *int64
	Offset      *int64

	// IsAggregate is true when GROUP BY is non-empty, or an aggregate call
	// appears anywhere in SELECT or HAVING (spec §4.2 step 6).
	IsAggregate bool
}
