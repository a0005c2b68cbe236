// Package parse implements the hand-written, phase-driven recursive
// descent parser of spec §4.1: a single mutable cursor over the input
// text recognizes keywords by case-insensitive prefix matching guarded by
// a trailing delimiter, and emits an ast.Query or a *ParseError carrying
// the offending slice.
package parse

import "github.com/jsonql-db/jsonql/ast"

// Parse parses a SQL text into an ast.Query. Statement terminators are not
// required; trailing input after a successfully parsed query is an error
// (the grammar's terminal phase is EOF).
func Parse(text string) (*ast.Query, error) {
	c := newCursor(text)
	q, err := c.parseQuery()
	if err != nil {
		return nil, err
	}
	c.phase = PhaseEOF
	c.skipSpace()
	if !c.atEOF() {
		return nil, c.errorf(c.pos, "unexpected trailing input")
	}
	return q, nil
}

func (c *cursor) parseQuery() (*ast.Query, *ParseError) {
	q := &ast.Query{}

	c.phase = PhaseProjection
	if !c.tryKeyword("SELECT") {
		return nil, c.errorf(c.pos, "expected SELECT")
	}
	proj, err := c.parseProjection()
	if err != nil {
		return nil, err
	}
	q.Projection = proj

	c.phase = PhaseCollections
	if !c.tryKeyword("FROM") {
		return nil, c.errorf(c.pos, "expected FROM")
	}
	colls, err := c.parseCollectionList()
	if err != nil {
		return nil, err
	}
	q.Collections = colls

	c.phase = PhaseJoins
	joins, err := c.parseJoins()
	if err != nil {
		return nil, err
	}
	q.Joins = joins

	c.phase = PhaseCriteria
	if c.tryKeyword("WHERE") {
		pred, err := c.parsePredicate(0)
		if err != nil {
			return nil, err
		}
		q.Criteria = pred
	}

	c.phase = PhaseAggregates
	if c.tryKeyword("GROUP") {
		if !c.tryKeyword("BY") {
			return nil, c.errorf(c.pos, "expected BY after GROUP")
		}
		keys, err := c.parseGroupByList()
		if err != nil {
			return nil, err
		}
		q.GroupBy = keys
	}

	c.phase = PhaseHaving
	if c.tryKeyword("HAVING") {
		pred, err := c.parsePredicate(0)
		if err != nil {
			return nil, err
		}
		q.Having = pred
	}

	c.phase = PhaseOrderBy
	if c.tryKeyword("ORDER") {
		if !c.tryKeyword("BY") {
			return nil, c.errorf(c.pos, "expected BY after ORDER")
		}
		keys, err := c.parseOrderByList()
		if err != nil {
			return nil, err
		}
		q.OrderBy = keys
	}

	c.phase = PhaseLimitAndOffset
	if c.tryKeyword("LIMIT") {
		n, err := c.parseIntLiteralValue()
		if err != nil {
			return nil, err
		}
		q.Limit = &n
	}
	if c.tryKeyword("OFFSET") {
		n, err := c.parseIntLiteralValue()
		if err != nil {
			return nil, err
		}
		q.Offset = &n
	}

	c.phase = PhaseEOF
	return q, nil
}

// parseProjection parses comma-separated `<scalar_expr> [AS <name>]` items.
func (c *cursor) parseProjection() ([]ast.Identifier, *ParseError) {
	var items []ast.Identifier
	for {
		expr, err := c.parseScalarExpr()
		if err != nil {
			return nil, err
		}
		alias := ""
		if c.tryKeyword("AS") {
			name, ok := c.readIdentifier()
			if !ok {
				return nil, c.errorf(c.pos, "expected an alias after AS")
			}
			alias = name
		}
		items = append(items, ast.Identifier{Expr: expr, Alias: alias})
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	return items, nil
}

// parseCollectionList parses comma-separated `name [alias]` items.
func (c *cursor) parseCollectionList() ([]ast.CollectionRef, *ParseError) {
	var items []ast.CollectionRef
	for {
		ref, err := c.parseCollectionRef()
		if err != nil {
			return nil, err
		}
		items = append(items, ref)
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	return items, nil
}

func (c *cursor) parseCollectionRef() (ast.CollectionRef, *ParseError) {
	pivot := c.pos
	name, ok := c.readIdentifier()
	if !ok {
		return ast.CollectionRef{}, c.errorf(pivot, "expected a collection name")
	}
	alias := ""
	// An alias is a bare identifier that is not itself a keyword marking
	// the start of the next clause/join.
	save := c.pos
	if id, ok := c.peekBareAlias(); ok {
		alias = id
	} else {
		c.pos = save
	}
	return ast.CollectionRef{Name: name, Alias: alias}, nil
}

var reservedAfterCollection = []string{
	"WHERE", "GROUP", "HAVING", "ORDER", "LIMIT", "OFFSET",
	"JOIN", "INNER", "LEFT", "RIGHT", "FULL", "ON", "AS",
}

// peekBareAlias consumes a bare alias identifier if the next token is an
// identifier that is not one of the clause-introducing keywords.
func (c *cursor) peekBareAlias() (string, bool) {
	save := c.pos
	c.skipSpace()
	if c.peek() == ',' || c.peek() == 0 {
		c.pos = save
		return "", false
	}
	for _, kw := range reservedAfterCollection {
		if c.peekKeyword(kw) {
			c.pos = save
			return "", false
		}
	}
	name, ok := c.readIdentifier()
	if !ok {
		c.pos = save
		return "", false
	}
	return name, true
}

// parseJoins parses zero or more `(INNER|LEFT|RIGHT|FULL) JOIN <coll> ON
// <pred>` clauses.
func (c *cursor) parseJoins() ([]ast.Join, *ParseError) {
	var joins []ast.Join
	for {
		jt, ok := c.tryJoinType()
		if !ok {
			break
		}
		if !c.tryKeyword("JOIN") {
			return nil, c.errorf(c.pos, "expected JOIN after %s", jt)
		}
		ref, err := c.parseCollectionRef()
		if err != nil {
			return nil, err
		}
		if !c.tryKeyword("ON") {
			return nil, c.errorf(c.pos, "expected ON after JOIN collection")
		}
		pred, err := c.parsePredicate(0)
		if err != nil {
			return nil, err
		}
		joins = append(joins, ast.Join{Type: jt, Collection: ref, On: pred})
	}
	return joins, nil
}

func (c *cursor) tryJoinType() (ast.JoinType, bool) {
	switch {
	case c.tryKeyword("INNER"):
		return ast.InnerJoin, true
	case c.tryKeyword("LEFT"):
		return ast.LeftJoin, true
	case c.tryKeyword("RIGHT"):
		return ast.RightJoin, true
	case c.tryKeyword("FULL"):
		return ast.FullJoin, true
	}
	return 0, false
}

// parseGroupByList parses comma-separated columns.
func (c *cursor) parseGroupByList() ([]ast.ScalarExpr, *ParseError) {
	var keys []ast.ScalarExpr
	for {
		expr, err := c.parseScalarExpr()
		if err != nil {
			return nil, err
		}
		keys = append(keys, expr)
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	return keys, nil
}

// parseOrderByList parses comma-separated `<expr|int|alias> [ASC|DESC]`.
func (c *cursor) parseOrderByList() ([]ast.OrderBy, *ParseError) {
	var keys []ast.OrderBy
	for {
		ob, err := c.parseOrderByItem()
		if err != nil {
			return nil, err
		}
		keys = append(keys, ob)
		c.skipSpace()
		if c.peek() == ',' {
			c.pos++
			continue
		}
		break
	}
	return keys, nil
}

func (c *cursor) parseOrderByItem() (ast.OrderBy, *ParseError) {
	c.skipSpace()
	pivot := c.pos

	// (a) a bare integer ordinal.
	if lit, ok, err := c.tryNumber(); err != nil {
		return ast.OrderBy{}, err
	} else if ok {
		iv, isInt := lit.(ast.IntLiteral)
		if !isInt {
			return ast.OrderBy{}, c.errorf(pivot, "ORDER BY ordinal must be an integer")
		}
		asc := c.parseAscDesc()
		return ast.OrderBy{OrdinalRef: int(iv.Value), Ascending: asc}, nil
	}

	// (b)/(c): a bare column name (possibly a SELECT alias) or a general
	// expression; both are expressed as a ScalarExpr here, disambiguated
	// by the analyzer per §4.2 step 7.
	expr, err := c.parseScalarExpr()
	if err != nil {
		return ast.OrderBy{}, err
	}
	aliasRef := ""
	if col, ok := expr.(ast.Column); ok && !col.Qualified() {
		aliasRef = col.Name
	}
	asc := c.parseAscDesc()
	return ast.OrderBy{Expr: expr, AliasRef: aliasRef, Ascending: asc}, nil
}

func (c *cursor) parseAscDesc() bool {
	if c.tryKeyword("DESC") {
		return false
	}
	c.tryKeyword("ASC")
	return true
}

// parseIntLiteralValue parses a (non-negative, by grammar convention)
// integer for LIMIT/OFFSET.
func (c *cursor) parseIntLiteralValue() (int64, *ParseError) {
	pivot := c.pos
	lit, ok, err := c.tryNumber()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, c.errorf(pivot, "expected an integer")
	}
	iv, isInt := lit.(ast.IntLiteral)
	if !isInt {
		return 0, c.errorf(pivot, "expected an integer, got a decimal")
	}
	return iv.Value, nil
}
