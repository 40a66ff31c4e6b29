package asm

import (
	"fmt"
	"strings"
)

// SourceError is a lexing or parsing failure at a position in the
// assembly text.
type SourceError struct {
	Message string
	Line    int
	Column  int
	// Length is the width of the offending token in bytes. Zero and one
	// both underline a single column.
	Length int
	Source string
}

func (e *SourceError) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// FormatWithContext renders the error above the offending source line,
// with the token underlined as ^~~~.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return e.Error()
	}

	line := lines[e.Line-1]
	col := min(max(e.Column, 1), len(line)+1)
	span := min(max(e.Length, 1), max(len(line)-col+1, 1))

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", e.Line, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^%s\n", strings.Repeat(" ", col-1), strings.Repeat("~", span-1))

	return sb.String()
}

// NewSourceErrorf creates a SourceError covering a single column.
func NewSourceErrorf(line, column int, source string, format string, args ...any) *SourceError {
	return &SourceError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
		Length:  1,
		Source:  source,
	}
}
