package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/value"
)

var scalarBuiltins = map[string]bool{
	"upper": true, "lower": true, "trim": true, "length": true, "coalesce": true,
}

// resolveFunction dispatches a function call to either the aggregate
// registry or the fixed scalar builtin set (spec §4.2 step 4); anything
// else is FunctionNotFound.
func (c *analysisContext) resolveFunction(f ast.Function) (ast.ScalarExpr, value.Primitive, bool, error) {
	lname := f.LowerName()
	if aggFn, ok := c.registry.Lookup(lname); ok {
		return c.resolveAggregateCall(f, lname, aggFn)
	}
	if scalarBuiltins[lname] {
		return c.resolveScalarBuiltin(lname, f)
	}
	return nil, 0, false, errorkinds.FunctionNotFound.New(f.Name)
}

func (c *analysisContext) resolveAggregateCall(f ast.Function, lname string, aggFn aggregateFunc) (ast.ScalarExpr, value.Primitive, bool, error) {
	isStar := false
	var qualifiedArgs []ast.ScalarExpr
	var argType value.Primitive
	var argNullable bool

	if len(f.Args) == 1 {
		if _, ok := f.Args[0].(ast.WildCard); ok {
			if lname != "count" {
				return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, "a non-wildcard argument", 1)
			}
			isStar = true
			qualifiedArgs = []ast.ScalarExpr{ast.WildCard{}}
		}
	}
	if !isStar {
		if len(f.Args) != 1 {
			return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, "exactly one argument", len(f.Args))
		}
		qa, ty, null, err := c.resolveScalar(f.Args[0], false)
		if err != nil {
			return nil, 0, false, err
		}
		qualifiedArgs = []ast.ScalarExpr{qa}
		argType, argNullable = ty, null
	}

	resultTy, resultNullable, err := aggFn.InferType(argType, argNullable, isStar)
	if err != nil {
		return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, err.Error(), len(f.Args))
	}
	return ast.Function{Name: lname, Args: qualifiedArgs, Distinct: f.Distinct}, resultTy, resultNullable, nil
}

// aggregateFunc is the subset of aggregation.Func the analyzer needs,
// declared locally to avoid an import cycle concern and to keep the
// analyzer decoupled from the accumulator machinery it never runs itself.
type aggregateFunc interface {
	InferType(argType value.Primitive, argNullable bool, isStar bool) (value.Primitive, bool, error)
}

func (c *analysisContext) resolveScalarBuiltin(lname string, f ast.Function) (ast.ScalarExpr, value.Primitive, bool, error) {
	switch lname {
	case "upper", "lower", "trim", "length":
		if len(f.Args) != 1 {
			return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, "exactly one argument", len(f.Args))
		}
		qa, ty, null, err := c.resolveScalar(f.Args[0], false)
		if err != nil {
			return nil, 0, false, err
		}
		if ty != value.PString && ty != value.PNull {
			return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, "a string argument", 1)
		}
		resultTy := value.PString
		if lname == "length" {
			resultTy = value.PInt
		}
		folded, isLit := foldIfLiteral(lname, []ast.ScalarExpr{qa})
		if isLit {
			return folded, resultTy, null, nil
		}
		return ast.Function{Name: lname, Args: []ast.ScalarExpr{qa}, Distinct: false}, resultTy, null, nil

	case "coalesce":
		if len(f.Args) == 0 {
			return nil, 0, false, errorkinds.FunctionArgMismatch.New(f.Name, "at least one argument", 0)
		}
		qualifiedArgs := make([]ast.ScalarExpr, 0, len(f.Args))
		resultTy := value.PNull
		allNullable := true
		for _, a := range f.Args {
			qa, ty, null, err := c.resolveScalar(a, false)
			if err != nil {
				return nil, 0, false, err
			}
			qualifiedArgs = append(qualifiedArgs, qa)
			resultTy = value.Promote(resultTy, ty)
			if !null {
				allNullable = false
			}
		}
		folded, isLit := foldIfLiteral("coalesce", qualifiedArgs)
		if isLit {
			return folded, resultTy, allNullable, nil
		}
		return ast.Function{Name: lname, Args: qualifiedArgs, Distinct: false}, resultTy, allNullable, nil
	}
	return nil, 0, false, errorkinds.FunctionNotFound.New(f.Name)
}

// foldIfLiteral evaluates a pure scalar function when every argument is
// already a Literal (spec §4.2 step 4: "over all-literal arguments").
func foldIfLiteral(lname string, args []ast.ScalarExpr) (ast.ScalarExpr, bool) {
	lits := make([]ast.Literal, 0, len(args))
	for _, a := range args {
		lit, ok := a.(ast.Literal)
		if !ok {
			return nil, false
		}
		lits = append(lits, lit)
	}
	return evalPureScalar(lname, lits), true
}

func evalPureScalar(lname string, args []ast.Literal) ast.ScalarExpr {
	switch lname {
	case "upper", "lower", "trim":
		s, ok := args[0].(ast.StringLiteral)
		if !ok {
			return ast.NullLiteral{}
		}
		switch lname {
		case "upper":
			return ast.StringLiteral{Value: strings.ToUpper(s.Value)}
		case "lower":
			return ast.StringLiteral{Value: strings.ToLower(s.Value)}
		default:
			return ast.StringLiteral{Value: strings.TrimSpace(s.Value)}
		}
	case "length":
		s, ok := args[0].(ast.StringLiteral)
		if !ok {
			return ast.NullLiteral{}
		}
		return ast.IntLiteral{Value: int64(utf8.RuneCountInString(s.Value))}
	case "coalesce":
		for _, a := range args {
			if _, isNull := a.(ast.NullLiteral); !isNull {
				return a
			}
		}
		return ast.NullLiteral{}
	}
	return ast.NullLiteral{}
}
