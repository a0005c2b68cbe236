// Package plan lowers an analyzer.AnalyzedQuery into a LogicalPlan: a small
// relational operator tree (Scan/Join/Filter/Aggregate/Project/Sort/Limit)
// that rowexec interprets bottom-up.
package plan

import "github.com/jsonql-db/jsonql/ast"

// LogicalPlan is the plan-tree sum type of spec §4.3.
type LogicalPlan interface {
	isLogicalPlan()
}

// Scan reads every row of a backing collection, prefixing each field with
// "visible.".
type Scan struct {
	Visible string
	Backing string
}

func (Scan) isLogicalPlan() {}

// Join is a nested-loop join of two subplans.
type Join struct {
	Type  ast.JoinType
	Left  LogicalPlan
	Right LogicalPlan
	On    ast.Predicate
}

func (Join) isLogicalPlan() {}

// Filter keeps rows for which Predicate evaluates to True.
type Filter struct {
	Input     LogicalPlan
	Predicate ast.Predicate
}

func (Filter) isLogicalPlan() {}

// AggregateCall is one deduplicated aggregate invocation assigned an output
// column name.
type AggregateCall struct {
	Func     string
	Args     []ast.ScalarExpr
	Distinct bool
	Name     string
}

// Aggregate groups input rows by GroupKeys and evaluates Aggs per group.
type Aggregate struct {
	Input     LogicalPlan
	GroupKeys []ast.ScalarExpr
	Aggs      []AggregateCall
}

func (Aggregate) isLogicalPlan() {}

// ProjectItem is one output column: Expr evaluated against the row, stored
// under Name.
type ProjectItem struct {
	Expr ast.ScalarExpr
	Name string
}

// Project evaluates Items against each input row.
type Project struct {
	Input LogicalPlan
	Items []ProjectItem
}

func (Project) isLogicalPlan() {}

// OrderKey is one ORDER BY sort key.
type OrderKey struct {
	Expr      ast.ScalarExpr
	Ascending bool
}

// Sort stably reorders rows by Keys.
type Sort struct {
	Input LogicalPlan
	Keys  []OrderKey
}

func (Sort) isLogicalPlan() {}

// Limit skips Offset rows then emits up to Limit rows (nil means
// unbounded/zero respectively).
type Limit struct {
	Input  LogicalPlan
	Limit  *int64
	Offset *int64
}

func (Limit) isLogicalPlan() {}
