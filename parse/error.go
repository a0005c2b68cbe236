package parse

import "fmt"

// ParseError carries a snapshot of the offending range, following the
// teacher's convention of attaching precise location info to a parse
// failure (see spec §4.1). Start/End are rune offsets into Text.
type ParseError struct {
	Message string
	Text    string
	Start   int
	End     int
}

func (e *ParseError) Error() string {
	offending := ""
	if e.Start >= 0 && e.End <= len([]rune(e.Text)) && e.Start <= e.End {
		offending = string([]rune(e.Text)[e.Start:e.End])
	}
	return fmt.Sprintf("%s at offset %d: %q", e.Message, e.Start, offending)
}

func newParseError(text string, start, end int, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Text:    text,
		Start:   start,
		End:     end,
	}
}
