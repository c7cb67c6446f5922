package typeexpr

import (
	"errors"
	"fmt"
)

// ErrInvalidTypeExpression is the kind of every parse failure.
var ErrInvalidTypeExpression = errors.New("invalid type expression")

// SyntaxError describes why an expression was rejected.
type SyntaxError struct {
	Expr   string
	Offset int // byte offset of the offending token, -1 when not positional
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("%s %q: %s", ErrInvalidTypeExpression, e.Expr, e.Msg)
	}
	return fmt.Sprintf("%s %q at offset %d: %s", ErrInvalidTypeExpression, e.Expr, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrInvalidTypeExpression }

func syntaxErrorf(expr string, offset int, format string, args ...any) error {
	return &SyntaxError{Expr: expr, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
