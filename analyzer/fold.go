package analyzer

import (
	"fmt"
	"math"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/value"
)

func truth3ToTruth(t ast.Truth3) value.Truth {
	switch t {
	case ast.T3True:
		return value.True
	case ast.T3False:
		return value.False
	default:
		return value.Unknown
	}
}

func truthToTruth3(t value.Truth) ast.Truth3 {
	switch t {
	case value.True:
		return ast.T3True
	case value.False:
		return ast.T3False
	default:
		return ast.T3Unknown
	}
}

// qualifyPredicate qualifies and folds a predicate tree under three-valued
// logic (spec §4.2 step 5).
func (c *analysisContext) qualifyPredicate(p ast.Predicate) (ast.Predicate, error) {
	switch e := p.(type) {
	case ast.Const3:
		return e, nil

	case ast.And:
		operands := make([]ast.Predicate, 0, len(e.Operands))
		for _, o := range e.Operands {
			fo, err := c.qualifyPredicate(o)
			if err != nil {
				return nil, err
			}
			if c3, ok := fo.(ast.Const3); ok && c3.Value == ast.T3False {
				return ast.Const3{Value: ast.T3False}, nil
			}
			operands = append(operands, fo)
		}
		if allConst3(operands) {
			return ast.Const3{Value: truthToTruth3(value.And(truths(operands)...))}, nil
		}
		return ast.And{Operands: operands}, nil

	case ast.Or:
		operands := make([]ast.Predicate, 0, len(e.Operands))
		for _, o := range e.Operands {
			fo, err := c.qualifyPredicate(o)
			if err != nil {
				return nil, err
			}
			if c3, ok := fo.(ast.Const3); ok && c3.Value == ast.T3True {
				return ast.Const3{Value: ast.T3True}, nil
			}
			operands = append(operands, fo)
		}
		if allConst3(operands) {
			return ast.Const3{Value: truthToTruth3(value.Or(truths(operands)...))}, nil
		}
		return ast.Or{Operands: operands}, nil

	case ast.Compare:
		return c.qualifyCompare(e)
	case ast.IsNull:
		return c.qualifyIsNull(e)
	case ast.InList:
		return c.qualifyInList(e)
	case ast.Like:
		return c.qualifyLike(e)
	}
	return nil, fmt.Errorf("unrecognized predicate %T", p)
}

func allConst3(ps []ast.Predicate) bool {
	for _, p := range ps {
		if _, ok := p.(ast.Const3); !ok {
			return false
		}
	}
	return true
}

func truths(ps []ast.Predicate) []value.Truth {
	out := make([]value.Truth, len(ps))
	for i, p := range ps {
		out[i] = truth3ToTruth(p.(ast.Const3).Value)
	}
	return out
}

func (c *analysisContext) qualifyScalarArg(expr ast.ScalarExpr) (ast.ScalarExpr, error) {
	qa, _, _, err := c.resolveScalar(expr, false)
	return qa, err
}

func (c *analysisContext) qualifyCompare(e ast.Compare) (ast.Predicate, error) {
	left, err := c.qualifyScalarArg(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.qualifyScalarArg(e.Right)
	if err != nil {
		return nil, err
	}
	ll, lok := left.(ast.Literal)
	rl, rok := right.(ast.Literal)
	if !lok || !rok {
		return ast.Compare{Left: left, Op: e.Op, Right: right}, nil
	}
	return ast.Const3{Value: truthToTruth3(c.evalCompare(ll, e.Op, rl))}, nil
}

func (c *analysisContext) evalCompare(l ast.Literal, op ast.ComparatorOp, r ast.Literal) value.Truth {
	if _, ok := l.(ast.NullLiteral); ok {
		return value.Unknown
	}
	if _, ok := r.(ast.NullLiteral); ok {
		return value.Unknown
	}

	if lf, lok := literalFloat(l); lok {
		if rf, rok := literalFloat(r); rok {
			return compareFloats(lf, rf, op, c.epsilonAbs, c.epsilonRel)
		}
	}
	if ls, lok := l.(ast.StringLiteral); lok {
		if rs, rok := r.(ast.StringLiteral); rok {
			switch op {
			case ast.Eq:
				return boolTruth(ls.Value == rs.Value)
			case ast.NotEq:
				return boolTruth(ls.Value != rs.Value)
			default:
				return value.Unknown
			}
		}
	}
	if lb, lok := l.(ast.BoolLiteral); lok {
		if rb, rok := r.(ast.BoolLiteral); rok {
			switch op {
			case ast.Eq:
				return boolTruth(lb.Value == rb.Value)
			case ast.NotEq:
				return boolTruth(lb.Value != rb.Value)
			default:
				return value.Unknown
			}
		}
	}
	return value.Unknown
}

func literalFloat(l ast.Literal) (float64, bool) {
	switch v := l.(type) {
	case ast.IntLiteral:
		return float64(v.Value), true
	case ast.FloatLiteral:
		return v.Value, true
	default:
		return 0, false
	}
}

func boolTruth(b bool) value.Truth {
	if b {
		return value.True
	}
	return value.False
}

// compareFloats implements the §4.2 numeric compare rule: values within an
// absolute+relative epsilon of each other are equal, for Eq/NotEq and for
// the ordering operators alike (near-equal values are neither < nor >).
func compareFloats(a, b float64, op ast.ComparatorOp, epsAbs, epsRel float64) value.Truth {
	diff := math.Abs(a - b)
	tol := epsAbs + epsRel*math.Max(math.Abs(a), math.Abs(b))
	nearEq := diff <= tol
	switch op {
	case ast.Eq:
		return boolTruth(nearEq)
	case ast.NotEq:
		return boolTruth(!nearEq)
	case ast.Lt:
		return boolTruth(a < b && !nearEq)
	case ast.LtEq:
		return boolTruth(a < b || nearEq)
	case ast.Gt:
		return boolTruth(a > b && !nearEq)
	case ast.GtEq:
		return boolTruth(a > b || nearEq)
	}
	return value.Unknown
}

func (c *analysisContext) qualifyIsNull(e ast.IsNull) (ast.Predicate, error) {
	expr, err := c.qualifyScalarArg(e.Expr)
	if err != nil {
		return nil, err
	}
	lit, ok := expr.(ast.Literal)
	if !ok {
		return ast.IsNull{Expr: expr, Negated: e.Negated}, nil
	}
	_, isNull := lit.(ast.NullLiteral)
	t := boolTruth(isNull)
	if e.Negated {
		t = t.Not()
	}
	return ast.Const3{Value: truthToTruth3(t)}, nil
}

func (c *analysisContext) qualifyInList(e ast.InList) (ast.Predicate, error) {
	expr, err := c.qualifyScalarArg(e.Expr)
	if err != nil {
		return nil, err
	}
	items, err := c.qualifyInItems(e.List)
	if err != nil {
		return nil, err
	}

	exprLit, exprIsLit := expr.(ast.Literal)
	if !exprIsLit {
		return ast.InList{Expr: expr, List: items, Negated: e.Negated}, nil
	}
	allLit := true
	for _, it := range items {
		if _, ok := it.(ast.Literal); !ok {
			allLit = false
			break
		}
	}
	if !allLit {
		return ast.InList{Expr: expr, List: items, Negated: e.Negated}, nil
	}

	sawNull := false
	matched := false
	for _, it := range items {
		lit := it.(ast.Literal)
		if _, ok := lit.(ast.NullLiteral); ok {
			sawNull = true
			continue
		}
		if c.evalCompare(exprLit, ast.Eq, lit) == value.True {
			matched = true
		}
	}
	var t value.Truth
	switch {
	case matched:
		t = value.True
	case sawNull:
		t = value.Unknown
	default:
		t = value.False
	}
	if e.Negated {
		t = t.Not()
	}
	return ast.Const3{Value: truthToTruth3(t)}, nil
}

// qualifyInItems resolves a predicate's IN list, splicing any Args produced
// by a `?` bound to an array payload.
func (c *analysisContext) qualifyInItems(list []ast.ScalarExpr) ([]ast.ScalarExpr, error) {
	out := make([]ast.ScalarExpr, 0, len(list))
	for _, item := range list {
		if _, ok := item.(ast.Parameter); ok {
			resolved, err := c.resolveInParameter()
			if err != nil {
				return nil, err
			}
			if args, ok := resolved.(ast.Args); ok {
				out = append(out, args.Items...)
				continue
			}
			out = append(out, resolved)
			continue
		}
		qa, err := c.qualifyScalarArg(item)
		if err != nil {
			return nil, err
		}
		out = append(out, qa)
	}
	return out, nil
}

func (c *analysisContext) qualifyLike(e ast.Like) (ast.Predicate, error) {
	expr, err := c.qualifyScalarArg(e.Expr)
	if err != nil {
		return nil, err
	}
	pattern, err := c.qualifyScalarArg(e.Pattern)
	if err != nil {
		return nil, err
	}
	exprLit, exprOk := expr.(ast.Literal)
	patLit, patOk := pattern.(ast.Literal)
	if !exprOk || !patOk {
		return ast.Like{Expr: expr, Pattern: pattern, Negated: e.Negated}, nil
	}

	if _, ok := exprLit.(ast.NullLiteral); ok {
		return ast.Const3{Value: ast.T3Unknown}, nil
	}
	if _, ok := patLit.(ast.NullLiteral); ok {
		return ast.Const3{Value: ast.T3Unknown}, nil
	}
	exprStr, exprIsStr := exprLit.(ast.StringLiteral)
	patStr, patIsStr := patLit.(ast.StringLiteral)
	if !exprIsStr || !patIsStr {
		return ast.Const3{Value: ast.T3Unknown}, nil
	}
	re, err := compileLike(patStr.Value)
	if err != nil {
		return nil, errorkinds.InvalidLikePattern.New(patStr.Value, err.Error())
	}
	t := boolTruth(re.MatchString(exprStr.Value))
	if e.Negated {
		t = t.Not()
	}
	return ast.Const3{Value: truthToTruth3(t)}, nil
}
