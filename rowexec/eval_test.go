package rowexec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonql-db/jsonql/ast"
	"github.com/jsonql-db/jsonql/value"
)

func TestEvalScalarColumnLookup(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.name", value.String("alice"))

	v := EvalScalar(ast.Column{Collection: "t", Name: "name"}, row)
	require.Equal(value.String("alice"), v)

	missing := EvalScalar(ast.Column{Collection: "t", Name: "age"}, row)
	require.True(missing.IsNull())
}

func TestEvalFunctionUpperLowerTrimLength(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.s", value.String("  Hi  "))

	upper := EvalScalar(ast.Function{Name: "upper", Args: []ast.ScalarExpr{ast.Column{Collection: "t", Name: "s"}}}, row)
	require.Equal(value.String("  HI  "), upper)

	length := EvalScalar(ast.Function{Name: "length", Args: []ast.ScalarExpr{ast.Column{Collection: "t", Name: "s"}}}, row)
	require.Equal(value.Int(6), length)

	trim := EvalScalar(ast.Function{Name: "trim", Args: []ast.ScalarExpr{ast.Column{Collection: "t", Name: "s"}}}, row)
	require.Equal(value.String("Hi"), trim)
}

func TestEvalFunctionNonStringInputYieldsNull(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.n", value.Int(5))

	v := EvalScalar(ast.Function{Name: "upper", Args: []ast.ScalarExpr{ast.Column{Collection: "t", Name: "n"}}}, row)
	require.True(v.IsNull())
}

func TestEvalPredicate3CompareNullIsUnknown(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.a", value.Null())
	row.Set("t.b", value.Int(1))

	pred := ast.Compare{Left: ast.Column{Collection: "t", Name: "a"}, Op: ast.Eq, Right: ast.Column{Collection: "t", Name: "b"}}
	require.Equal(value.Unknown, EvalPredicate3(pred, row, 1e-9, 1e-9))
}

func TestEvalPredicate3EpsilonEquality(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.a", value.MustFloat(1.0))
	row.Set("t.b", value.MustFloat(1.0+1e-12))

	pred := ast.Compare{Left: ast.Column{Collection: "t", Name: "a"}, Op: ast.Eq, Right: ast.Column{Collection: "t", Name: "b"}}
	require.Equal(value.True, EvalPredicate3(pred, row, 1e-9, 1e-9))
}

func TestEvalPredicate3AndOrShortCircuitLogic(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	falseP := ast.Const3{Value: ast.T3False}
	unknownP := ast.Const3{Value: ast.T3Unknown}
	trueP := ast.Const3{Value: ast.T3True}

	require.Equal(value.False, EvalPredicate3(ast.And{Operands: []ast.Predicate{falseP, unknownP}}, row, 1e-9, 1e-9))
	require.Equal(value.Unknown, EvalPredicate3(ast.And{Operands: []ast.Predicate{trueP, unknownP}}, row, 1e-9, 1e-9))
	require.Equal(value.True, EvalPredicate3(ast.Or{Operands: []ast.Predicate{falseP, trueP}}, row, 1e-9, 1e-9))
}

func TestEvalPredicate3InListNullHandling(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.a", value.Int(3))

	withNull := ast.InList{
		Expr: ast.Column{Collection: "t", Name: "a"},
		List: []ast.ScalarExpr{ast.IntLiteral{Value: 1}, ast.NullLiteral{}},
	}
	require.Equal(value.Unknown, EvalPredicate3(withNull, row, 1e-9, 1e-9))

	matching := ast.InList{
		Expr: ast.Column{Collection: "t", Name: "a"},
		List: []ast.ScalarExpr{ast.IntLiteral{Value: 3}, ast.NullLiteral{}},
	}
	require.Equal(value.True, EvalPredicate3(matching, row, 1e-9, 1e-9))
}

func TestEvalPredicate3Like(t *testing.T) {
	require := require.New(t)

	row := value.NewObject()
	row.Set("t.name", value.String("alice"))

	pred := ast.Like{Expr: ast.Column{Collection: "t", Name: "name"}, Pattern: ast.StringLiteral{Value: "al%"}}
	require.Equal(value.True, EvalPredicate3(pred, row, 1e-9, 1e-9))

	negated := ast.Like{Expr: ast.Column{Collection: "t", Name: "name"}, Pattern: ast.StringLiteral{Value: "zz%"}, Negated: true}
	require.Equal(value.True, EvalPredicate3(negated, row, 1e-9, 1e-9))
}

func TestCompileLikeEscapesAndWildcards(t *testing.T) {
	require := require.New(t)

	re, err := compileLike("a\\%b_c")
	require.NoError(err)
	require.True(re.MatchString("a%bXc"))
	require.False(re.MatchString("aYbXc"))
}

func TestCompileLikeTrailingBackslashIsLiteral(t *testing.T) {
	require := require.New(t)

	re, err := compileLike(`ab\`)
	require.NoError(err)
	require.True(re.MatchString(`ab\`))
}
