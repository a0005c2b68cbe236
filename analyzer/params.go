package analyzer

import (
	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/errorkinds"
	"github.com/jsonql-db/jsonql/value"
)

// NormalizeParams implements spec §6's args contract: Null means no
// parameters, a single scalar is a one-parameter shortcut, and an Array is
// the positional list.
func NormalizeParams(args value.JSON) []value.JSON {
	switch args.Kind() {
	case value.KindNull:
		return nil
	case value.KindArray:
		return args.AsArray()
	default:
		return []value.JSON{args}
	}
}

// scalarLiteralFromJSON converts a bound parameter value into a Literal,
// rejecting array/object shapes in scalar position (spec §9: "Any other
// shape yields InvalidParameterValue").
func scalarLiteralFromJSON(position int, v value.JSON) (ast.Literal, error) {
	switch v.Kind() {
	case value.KindNull:
		return ast.NullLiteral{}, nil
	case value.KindBool:
		return ast.BoolLiteral{Value: v.AsBool()}, nil
	case value.KindInt:
		return ast.IntLiteral{Value: v.AsInt()}, nil
	case value.KindFloat:
		return ast.FloatLiteral{Value: v.AsFloat()}, nil
	case value.KindString:
		return ast.StringLiteral{Value: v.AsString()}, nil
	default:
		return nil, errorkinds.InvalidParameterValue.New(position, "expected a scalar value")
	}
}

// resolveScalarParameter binds a `?` appearing in an ordinary scalar
// position: only a scalar payload is accepted.
func (c *analysisContext) resolveScalarParameter() (ast.ScalarExpr, error) {
	pos := c.paramCursor
	v, err := c.nextParam()
	if err != nil {
		return nil, err
	}
	lit, err := scalarLiteralFromJSON(pos, v)
	if err != nil {
		return nil, err
	}
	return lit, nil
}

// resolveInParameter binds a `?` appearing as an element of an IN(...)
// list: a scalar payload yields a single literal, an array payload
// expands to ast.Args (spliced into the list by the caller).
func (c *analysisContext) resolveInParameter() (ast.ScalarExpr, error) {
	pos := c.paramCursor
	v, err := c.nextParam()
	if err != nil {
		return nil, err
	}
	if v.Kind() == value.KindArray {
		items := make([]ast.ScalarExpr, 0, len(v.AsArray()))
		for _, elem := range v.AsArray() {
			lit, err := scalarLiteralFromJSON(pos, elem)
			if err != nil {
				return nil, err
			}
			items = append(items, lit)
		}
		return ast.Args{Items: items}, nil
	}
	lit, err := scalarLiteralFromJSON(pos, v)
	if err != nil {
		return nil, err
	}
	return lit, nil
}
