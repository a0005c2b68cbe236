package parse

import "github.com/jsonql-db/jsonql/ast"

// parsePredicate parses a left-associative OR of ANDs with parenthesized
// groups (§4.1): `orExpr := andExpr (OR andExpr)*`.
func (c *cursor) parsePredicate(depth int) (ast.Predicate, *ParseError) {
	first, err := c.parseAndExpr(depth)
	if err != nil {
		return nil, err
	}
	operands := []ast.Predicate{first}
	for c.tryKeyword("OR") {
		next, err := c.parseAndExpr(depth)
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ast.Or{Operands: operands}, nil
}

func (c *cursor) parseAndExpr(depth int) (ast.Predicate, *ParseError) {
	first, err := c.parsePredicateAtom(depth)
	if err != nil {
		return nil, err
	}
	operands := []ast.Predicate{first}
	for c.tryKeyword("AND") {
		next, err := c.parsePredicateAtom(depth)
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return ast.And{Operands: operands}, nil
}

const maxParenDepth = 64

// parsePredicateAtom parses a parenthesized group or a single comparison /
// IS NULL / IN / LIKE predicate.
func (c *cursor) parsePredicateAtom(depth int) (ast.Predicate, *ParseError) {
	c.skipSpace()
	pivot := c.pos
	if c.peek() == '(' {
		if depth >= maxParenDepth {
			return nil, c.errorf(pivot, "predicate nesting too deep")
		}
		c.pos++
		inner, err := c.parsePredicate(depth + 1)
		if err != nil {
			return nil, err
		}
		c.skipSpace()
		if c.peek() != ')' {
			return nil, c.errorf(pivot, "expected closing ')'")
		}
		c.pos++
		return inner, nil
	}

	left, err := c.parseScalarExpr()
	if err != nil {
		return nil, err
	}

	if c.tryKeyword("IS") {
		isNegated := c.tryKeyword("NOT")
		if !c.tryKeyword("NULL") {
			return nil, c.errorf(pivot, "expected NULL after IS")
		}
		return ast.IsNull{Expr: left, Negated: isNegated}, nil
	}

	negated := c.tryKeyword("NOT")

	switch {
	case c.tryKeyword("IN"):
		items, err := c.parseInArgs()
		if err != nil {
			return nil, err
		}
		return ast.InList{Expr: left, List: items, Negated: negated}, nil

	case c.tryKeyword("LIKE"):
		pattern, err := c.parseScalarExpr()
		if err != nil {
			return nil, err
		}
		return ast.Like{Expr: left, Pattern: pattern, Negated: negated}, nil
	}

	if negated {
		return nil, c.errorf(pivot, "expected IN or LIKE after NOT")
	}

	op, ok := c.tryComparator()
	if !ok {
		return nil, c.errorf(pivot, "expected a comparison operator, IS NULL, IN or LIKE")
	}
	right, err := c.parseScalarExpr()
	if err != nil {
		return nil, err
	}
	return ast.Compare{Left: left, Op: op, Right: right}, nil
}

// tryComparator recognizes `=, <>, !=, <, <=, >, >=`.
func (c *cursor) tryComparator() (ast.ComparatorOp, bool) {
	c.skipSpace()
	switch c.peek() {
	case '=':
		c.pos++
		return ast.Eq, true
	case '<':
		c.pos++
		if c.peek() == '>' {
			c.pos++
			return ast.NotEq, true
		}
		if c.peek() == '=' {
			c.pos++
			return ast.LtEq, true
		}
		return ast.Lt, true
	case '>':
		c.pos++
		if c.peek() == '=' {
			c.pos++
			return ast.GtEq, true
		}
		return ast.Gt, true
	case '!':
		if c.peekAt(1) == '=' {
			c.pos += 2
			return ast.NotEq, true
		}
	}
	return 0, false
}

// parseInArgs parses the argument list of `IN(...)`: either a `?`
// parameter (scalar or array, resolved at analysis time) or a
// comma-separated literal/expression list, always delimited by parens.
func (c *cursor) parseInArgs() ([]ast.ScalarExpr, *ParseError) {
	c.skipSpace()
	pivot := c.pos
	if c.peek() != '(' {
		return nil, c.errorf(pivot, "expected '(' after IN")
	}
	c.pos++
	return c.parseArgList()
}
