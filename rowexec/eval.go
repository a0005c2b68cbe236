// Package rowexec is the volcano-style executor: it interprets a
// plan.LogicalPlan bottom-up against a storage.Provider, evaluating scans,
// joins, filters, aggregation, projection, sorting and limiting over rows
// keyed by qualified field name (spec §4.4).
package rowexec

import (
	"math"
	"strings"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/value"
)

// EvalScalar implements §4.4.2's eval_scalar: direct literal translation,
// qualified/bare column lookup against the flat row, UPPER/LOWER/TRIM/LENGTH
// over strings, Null for everything else (aggregates are never evaluated
// here; they are consumed upstream by the Aggregate operator).
func EvalScalar(expr ast.ScalarExpr, row *value.Object) value.JSON {
	switch e := expr.(type) {
	case ast.NullLiteral:
		return value.Null()
	case ast.BoolLiteral:
		return value.Bool(e.Value)
	case ast.IntLiteral:
		return value.Int(e.Value)
	case ast.FloatLiteral:
		return value.MustFloat(e.Value)
	case ast.StringLiteral:
		return value.String(e.Value)
	case ast.Column:
		return row.GetOr(e.Key())
	case ast.Function:
		return evalFunction(e, row)
	default: // WildCard, WildCardWithCollection, Args, Parameter: not reachable post-analysis.
		return value.Null()
	}
}

func evalFunction(e ast.Function, row *value.Object) value.JSON {
	if len(e.Args) != 1 {
		return value.Null()
	}
	v := EvalScalar(e.Args[0], row)
	if v.Kind() != value.KindString {
		return value.Null()
	}
	switch strings.ToLower(e.Name) {
	case "upper":
		return value.String(strings.ToUpper(v.AsString()))
	case "lower":
		return value.String(strings.ToLower(v.AsString()))
	case "trim":
		return value.String(strings.TrimSpace(v.AsString()))
	case "length":
		return value.Int(int64(len([]rune(v.AsString()))))
	default:
		return value.Null()
	}
}

// EvalPredicate3 implements §4.4.2's eval_predicate3, reusing the folding
// semantics of §4.2 against live row values instead of literals.
func EvalPredicate3(pred ast.Predicate, row *value.Object, epsAbs, epsRel float64) value.Truth {
	switch e := pred.(type) {
	case ast.Const3:
		return truth3ToTruth(e.Value)
	case ast.And:
		ts := make([]value.Truth, len(e.Operands))
		for i, o := range e.Operands {
			ts[i] = EvalPredicate3(o, row, epsAbs, epsRel)
		}
		return value.And(ts...)
	case ast.Or:
		ts := make([]value.Truth, len(e.Operands))
		for i, o := range e.Operands {
			ts[i] = EvalPredicate3(o, row, epsAbs, epsRel)
		}
		return value.Or(ts...)
	case ast.Compare:
		l := EvalScalar(e.Left, row)
		r := EvalScalar(e.Right, row)
		return compareTruth(l, r, e.Op, epsAbs, epsRel)
	case ast.IsNull:
		v := EvalScalar(e.Expr, row)
		t := boolTruth(v.IsNull())
		if e.Negated {
			t = t.Not()
		}
		return t
	case ast.InList:
		v := EvalScalar(e.Expr, row)
		matched := false
		sawNull := false
		for _, item := range e.List {
			iv := EvalScalar(item, row)
			if iv.IsNull() {
				sawNull = true
				continue
			}
			if compareTruth(v, iv, ast.Eq, epsAbs, epsRel) == value.True {
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
		return t
	case ast.Like:
		l := EvalScalar(e.Expr, row)
		p := EvalScalar(e.Pattern, row)
		if l.IsNull() || p.IsNull() {
			return value.Unknown
		}
		if l.Kind() != value.KindString || p.Kind() != value.KindString {
			return value.Unknown
		}
		re, err := compileLike(p.AsString())
		if err != nil {
			return value.Unknown
		}
		t := boolTruth(re.MatchString(l.AsString()))
		if e.Negated {
			t = t.Not()
		}
		return t
	}
	return value.Unknown
}

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

func boolTruth(b bool) value.Truth {
	if b {
		return value.True
	}
	return value.False
}

func compareTruth(l, r value.JSON, op ast.ComparatorOp, epsAbs, epsRel float64) value.Truth {
	if l.IsNull() || r.IsNull() {
		return value.Unknown
	}
	if lf, lok := value.ToFloat64(l); lok {
		if rf, rok := value.ToFloat64(r); rok {
			return compareFloats(lf, rf, op, epsAbs, epsRel)
		}
	}
	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		switch op {
		case ast.Eq:
			return boolTruth(l.AsString() == r.AsString())
		case ast.NotEq:
			return boolTruth(l.AsString() != r.AsString())
		default:
			return value.Unknown
		}
	}
	if l.Kind() == value.KindBool && r.Kind() == value.KindBool {
		switch op {
		case ast.Eq:
			return boolTruth(l.AsBool() == r.AsBool())
		case ast.NotEq:
			return boolTruth(l.AsBool() != r.AsBool())
		default:
			return value.Unknown
		}
	}
	return value.Unknown
}

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
