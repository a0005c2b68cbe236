package parse

import "github.com/jsonql-db/jsonql/ast"

// parseScalarExpr parses one scalar expression: a literal, a `?` parameter
// marker, a wildcard (`*` / `coll.*`), a column (`name` / `coll.name`), or a
// function call (`name(args)`). A qualified function name (`coll.f(...)`) is
// rejected with a ParseError.
func (c *cursor) parseScalarExpr() (ast.ScalarExpr, *ParseError) {
	c.skipSpace()
	pivot := c.pos

	if c.peek() == '?' {
		c.pos++
		return ast.Parameter{}, nil
	}
	if lit, ok, err := c.tryNumber(); err != nil {
		return nil, err
	} else if ok {
		return lit, nil
	}
	if lit, ok, err := c.tryString(); err != nil {
		return nil, err
	} else if ok {
		return lit, nil
	}
	if lit, ok := c.tryBoolOrNull(); ok {
		return lit, nil
	}
	if c.peek() == '*' {
		c.pos++
		return ast.WildCard{}, nil
	}

	name, ok := c.readIdentifier()
	if !ok {
		return nil, c.errorf(pivot, "expected an expression")
	}

	// A single qualifying dot is allowed: `coll.name`, `coll.*`, or, for a
	// function call, `coll.func(...)` is not valid SQL shape here — the
	// grammar only qualifies columns and wildcards, never function names,
	// so seeing `ident.ident(` after the dot is an error.
	if c.peek() == '.' {
		c.pos++
		c.skipSpace()
		if c.peek() == '*' {
			c.pos++
			return ast.WildCardWithCollection{Collection: name}, nil
		}
		field, ok := c.readIdentifier()
		if !ok {
			return nil, c.errorf(pivot, "expected a column name or '*' after '%s.'", name)
		}
		if c.peekParenNoSpace() {
			return nil, c.errorf(pivot, "qualified function calls are not supported: %q", name+"."+field)
		}
		return ast.Column{Collection: name, Name: field}, nil
	}

	if c.peekParenNoSpace() {
		c.pos++ // consume '('
		distinct := c.tryKeyword("DISTINCT")
		args, err := c.parseArgList()
		if err != nil {
			return nil, err
		}
		return ast.Function{Name: name, Args: args, Distinct: distinct}, nil
	}

	return ast.Column{Name: name}, nil
}

// peekParenNoSpace reports whether the very next rune (no intervening
// whitespace) is '(' — function-call application binds tightly.
func (c *cursor) peekParenNoSpace() bool {
	return c.peek() == '('
}

// parseArgList parses a comma-separated argument list up to and including
// the closing ')'. An optional leading DISTINCT keyword is recognized by
// the caller (parseScalarExpr, for function calls); this function is used
// for function arguments and for IN(...) lists via parseInArgs.
func (c *cursor) parseArgList() ([]ast.ScalarExpr, *ParseError) {
	c.skipSpace()
	var args []ast.ScalarExpr
	if c.peek() == ')' {
		c.pos++
		return args, nil
	}
	for {
		c.skipSpace()
		expr, err := c.parseScalarExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		if c.peek() == ')' {
			c.pos++
			break
		}
		return nil, c.errorf(c.pos, "expected ',' or ')' in argument list")
	}
	return args, nil
}
