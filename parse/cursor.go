package parse

// Phase enumerates the grammar's monotonically non-decreasing sections
// (spec §4.1). It is tracked for diagnostics and to assert the hand-written
// recursive descent visits sections in order; the call graph itself already
// enforces the ordering, so Phase is informational rather than a dispatch
// table.
type Phase int

const (
	PhaseProjection Phase = iota
	PhaseCollections
	PhaseJoins
	PhaseCriteria
	PhaseAggregates
	PhaseHaving
	PhaseOrderBy
	PhaseLimitAndOffset
	PhaseEOF
)

// cursor is the single mutable scan position over the input text, plus the
// current grammar phase. Every parse function that can fail snapshots a
// pivot (the rune offset where the attempted production began) so errors
// report the start of the failing construct rather than wherever the
// lexer happened to choke.
type cursor struct {
	text  string
	runes []rune
	pos   int
	phase Phase
}

func newCursor(text string) *cursor {
	return &cursor{text: text, runes: []rune(text), phase: PhaseProjection}
}

func (c *cursor) atEOF() bool { return c.pos >= len(c.runes) }

func (c *cursor) peek() rune {
	if c.atEOF() {
		return 0
	}
	return c.runes[c.pos]
}

func (c *cursor) peekAt(offset int) rune {
	i := c.pos + offset
	if i < 0 || i >= len(c.runes) {
		return 0
	}
	return c.runes[i]
}

func (c *cursor) advance() rune {
	r := c.peek()
	c.pos++
	return r
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (c *cursor) skipSpace() {
	for !c.atEOF() && isSpace(c.peek()) {
		c.pos++
	}
}

// isDelimiter implements the "any delimiter" class of §4.1: comma, the two
// parens, a dot, or whitespace. EOF is handled separately by callers.
func isDelimiter(r rune) bool {
	return r == ',' || r == '(' || r == ')' || r == '.' || isSpace(r)
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// tryKeyword performs case-insensitive prefix matching guarded by a
// delimiter: kw only matches if followed by EOF or an §4.1 delimiter
// character (this also covers "IN(" since '(' is itself a delimiter). On
// match, the cursor advances past kw and any following whitespace; on
// mismatch, the cursor is left unmodified (after any leading whitespace
// skipped to look).
func (c *cursor) tryKeyword(kw string) bool {
	start := c.pos
	c.skipSpace()
	kwRunes := []rune(kw)
	if c.pos+len(kwRunes) > len(c.runes) {
		c.pos = start
		return false
	}
	for i, kr := range kwRunes {
		if toLowerRune(c.runes[c.pos+i]) != toLowerRune(kr) {
			c.pos = start
			return false
		}
	}
	next := c.peekAt(len(kwRunes))
	after := c.pos + len(kwRunes)
	if after < len(c.runes) && !isDelimiter(next) {
		c.pos = start
		return false
	}
	c.pos = after
	c.skipSpace()
	return true
}

// peekKeyword reports whether kw matches at the current position (after
// skipping whitespace) without consuming it.
func (c *cursor) peekKeyword(kw string) bool {
	save := c.pos
	ok := c.tryKeyword(kw)
	c.pos = save
	return ok
}

func toLowerRune(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// readIdentifier skips leading whitespace, then reads
// `[A-Za-z_][A-Za-z0-9_]*`. Returns "", false if the position after the
// whitespace is not an identifier start.
func (c *cursor) readIdentifier() (string, bool) {
	c.skipSpace()
	if c.atEOF() || !isIdentStart(c.peek()) {
		return "", false
	}
	start := c.pos
	c.pos++
	for !c.atEOF() && isIdentCont(c.peek()) {
		c.pos++
	}
	return string(c.runes[start:c.pos]), true
}

// remaining returns the unconsumed suffix, for diagnostics.
func (c *cursor) remaining() string {
	if c.pos >= len(c.runes) {
		return ""
	}
	return string(c.runes[c.pos:])
}

func (c *cursor) errorf(pivot int, format string, args ...interface{}) *ParseError {
	end := c.pos
	if end < pivot {
		end = pivot
	}
	return newParseError(c.text, pivot, end, format, args...)
}
