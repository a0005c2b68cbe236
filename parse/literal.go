package parse

import (
	"math"
	"strconv"

	"github.com/jsonql-db/jsonql/ast"
)

// tryNumber parses an optionally-signed integer or decimal literal:
// `[+-]?[0-9]+(\.[0-9]*)?`. An embedded `.` promotes to float (§4.1). NaN
// cannot arise from this grammar, but a defensive check rejects it anyway
// per §9.
func (c *cursor) tryNumber() (ast.ScalarExpr, bool, *ParseError) {
	start := c.pos
	c.skipSpace()
	pivot := c.pos
	if c.peek() == '+' || c.peek() == '-' {
		c.pos++
	}
	digitsStart := c.pos
	for !c.atEOF() && isDigit(c.peek()) {
		c.pos++
	}
	if c.pos == digitsStart {
		c.pos = start
		return nil, false, nil
	}
	isFloat := false
	if c.peek() == '.' {
		isFloat = true
		c.pos++
		for !c.atEOF() && isDigit(c.peek()) {
			c.pos++
		}
	}
	text := string(c.runes[pivot:c.pos])
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, false, c.errorf(pivot, "invalid numeric literal %q: %s", text, err)
		}
		if math.IsNaN(f) {
			return nil, false, c.errorf(pivot, "NaN is not a valid literal")
		}
		return ast.FloatLiteral{Value: f}, true, nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, false, c.errorf(pivot, "invalid integer literal %q: %s", text, err)
	}
	return ast.IntLiteral{Value: i}, true, nil
}

// tryString parses a double- or single-quoted string literal. Embedded
// newlines are rejected (§4.1). A backslash does not escape quotes inside
// this dialect's strings; only the matching quote terminates the literal.
func (c *cursor) tryString() (ast.ScalarExpr, bool, *ParseError) {
	start := c.pos
	c.skipSpace()
	pivot := c.pos
	if c.atEOF() || (c.peek() != '"' && c.peek() != '\'') {
		c.pos = start
		return nil, false, nil
	}
	quote := c.peek()
	c.pos++
	var sb []rune
	for {
		if c.atEOF() {
			return nil, false, c.errorf(pivot, "unterminated string literal")
		}
		r := c.advance()
		if r == '\n' || r == '\r' {
			return nil, false, c.errorf(pivot, "string literal contains an embedded newline")
		}
		if r == quote {
			break
		}
		sb = append(sb, r)
	}
	return ast.StringLiteral{Value: string(sb)}, true, nil
}

// tryBoolOrNull recognizes the TRUE/FALSE/NULL keyword literals.
func (c *cursor) tryBoolOrNull() (ast.ScalarExpr, bool) {
	if c.tryKeyword("TRUE") {
		return ast.BoolLiteral{Value: true}, true
	}
	if c.tryKeyword("FALSE") {
		return ast.BoolLiteral{Value: false}, true
	}
	if c.tryKeyword("NULL") {
		return ast.NullLiteral{}, true
	}
	return nil, false
}
