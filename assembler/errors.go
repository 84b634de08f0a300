package assembler

import (
	"errors"
	"strings"
)

// Error kinds. Every CompileError matches exactly one of these with errors.Is.
var (
	ErrParse          = errors.New("parse error")
	ErrAddressingMode = errors.New("addressing mode mismatch")
	ErrInternal       = errors.New("internal consistency fault")
	ErrFieldOverflow  = errors.New("field overflow")
)

var errUnfoldable = errors.New("constant expression does not evaluate")

// CompileError ties a failure to the chunk and statement it came from.
type CompileError struct {
	Kind     error
	Label    string
	Pos      Pos
	Mnemonic string
	Expr     string
	Want     string
	Got      string
	Err      error
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	if p := e.Pos.String(); p != "" {
		sb.WriteString(p)
		sb.WriteString(": ")
	}
	if e.Label != "" {
		sb.WriteString("in ")
		sb.WriteString(e.Label)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.Error())

	subject := strings.TrimSpace(strings.TrimSpace(e.Mnemonic) + " " + e.Expr)
	if subject != "" {
		sb.WriteString(" in '")
		sb.WriteString(subject)
		sb.WriteString("'")
	}
	if e.Want != "" || e.Got != "" {
		sb.WriteString(" (expected ")
		sb.WriteString(e.Want)
		sb.WriteString(", got ")
		sb.WriteString(e.Got)
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func isOverflow(err error) bool {
	return errors.Is(err, ErrFieldOverflow)
}
