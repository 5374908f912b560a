package parser

import (
	"fmt"
	"strings"
)

// ChartParseError is returned for the first malformed token of a chart.
type ChartParseError struct {
	Token  string
	Offset int // byte offset of the token in the chart text
	Line   int // 1 based, 0 when the chart text is unknown
	Column int
	Reason string
}

func (e *ChartParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("chart %d:%d: %s in %q", e.Line, e.Column, e.Reason, e.Token)
	}
	return fmt.Sprintf("chart offset %d: %s in %q", e.Offset, e.Reason, e.Token)
}

func parseError(token string, offset int, format string, args ...interface{}) *ChartParseError {
	return &ChartParseError{
		Token:  token,
		Offset: offset,
		Reason: fmt.Sprintf(format, args...),
	}
}

// locate fills in line and column from the chart text.
func (e *ChartParseError) locate(text string) *ChartParseError {
	if e.Offset < 0 || e.Offset > len(text) {
		return e
	}
	before := text[:e.Offset]
	e.Line = strings.Count(before, "\n") + 1
	e.Column = e.Offset - strings.LastIndex(before, "\n")
	return e
}
