package dcparse

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// SyntaxError reports input that does not match the denial constraint grammar.
// No partial AST accompanies a SyntaxError.
type SyntaxError struct {
	Offset  int    // byte offset into the input
	Line    int    // 1-based line
	Column  int    // 1-based column, counted in runes
	Found   string // offending text, empty at end of input
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// IsSyntaxError reports whether err wraps a SyntaxError.
func IsSyntaxError(err error) bool {
	var synErr *SyntaxError
	return errors.As(err, &synErr)
}

// newSyntaxError builds a SyntaxError positioned at offset within src.
func newSyntaxError(src string, offset int, found string, format string, args ...any) *SyntaxError {
	line, col := position(src, offset)
	return &SyntaxError{
		Offset:  offset,
		Line:    line,
		Column:  col,
		Found:   found,
		Message: fmt.Sprintf(format, args...),
	}
}

// position converts a byte offset into a 1-based line and rune column.
func position(src string, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	line, col := 1, 1
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return line, col
}
