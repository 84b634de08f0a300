package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

var (
	reAccumulator    = regexp.MustCompile(`(?i)^a$`)
	reImmediate      = regexp.MustCompile(`^#(.+)$`)
	reStackIndirectY = regexp.MustCompile(`(?i)^\((.+),\s*s\)\s*,\s*y$`)
	reXIndirect      = regexp.MustCompile(`(?i)^\((.+),\s*x\)$`)
	reIndirectY      = regexp.MustCompile(`(?i)^\((.+)\)\s*,\s*y$`)
	reIndirect       = regexp.MustCompile(`^\((.+)\)$`)
	reIndirectLongY  = regexp.MustCompile(`(?i)^\[(.+)\]\s*,\s*y$`)
	reIndirectLong   = regexp.MustCompile(`^\[(.+)\]$`)
	reIndexX         = regexp.MustCompile(`(?i)^(.+),\s*x$`)
	reIndexY         = regexp.MustCompile(`(?i)^(.+),\s*y$`)
	reStack          = regexp.MustCompile(`(?i)^(.+),\s*s$`)
	operandShapes    = []struct {
		re      *regexp.Regexp
		form    assembler.Form
		wrapped bool
	}{
		{reStackIndirectY, assembler.FormStackIndirectY, true},
		{reXIndirect, assembler.FormXIndirect, true},
		{reIndirectY, assembler.FormIndirectY, true},
		{reIndirect, assembler.FormIndirect, true},
		{reIndirectLongY, assembler.FormIndirectLongY, true},
		{reIndirectLong, assembler.FormIndirectLong, true},
		{reIndexX, assembler.FormX, false},
		{reIndexY, assembler.FormY, false},
		{reStack, assembler.FormStack, false},
	}
)

// ParseMnemonic splits "lda.w" into ("lda", SizeWord).
func ParseMnemonic(s string) (string, cpu.SizeHint, error) {
	parts := strings.SplitN(strings.ToLower(s), ".", 2)
	if len(parts) == 1 {
		return parts[0], cpu.SizeAny, nil
	}
	switch parts[1] {
	case "b":
		return parts[0], cpu.SizeByte, nil
	case "w":
		return parts[0], cpu.SizeWord, nil
	case "l":
		return parts[0], cpu.SizeLong, nil
	}
	return parts[0], cpu.SizeAny, fmt.Errorf("%w: invalid size suffix: %s", ErrSyntax, parts[1])
}

// ParseOperand classifies the operand text by shape and parses its expression.
func ParseOperand(s string, labels *expr.Labels) (assembler.Operand, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return assembler.Operand{Form: assembler.FormNone, Expr: expr.New(expr.Empty{})}, nil
	case reAccumulator.MatchString(s):
		return assembler.Operand{Form: assembler.FormAccumulator, Expr: expr.New(expr.Empty{})}, nil
	}
	if m := reImmediate.FindStringSubmatch(s); m != nil {
		return operand(assembler.FormImmediate, m[1], labels)
	}

	for _, shape := range operandShapes {
		m := shape.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		// "(a+1)*2" is a plain expression, not an indirect one.
		if shape.wrapped && !wrapsWhole(s) {
			continue
		}
		return operand(shape.form, m[1], labels)
	}
	return operand(assembler.FormPlain, s, labels)
}

func operand(form assembler.Form, text string, labels *expr.Labels) (assembler.Operand, error) {
	n, err := ParseExpr(text, labels)
	if err != nil {
		return assembler.Operand{}, err
	}
	return assembler.Operand{Form: form, Expr: expr.New(n)}, nil
}

// wrapsWhole reports whether the bracket opening s closes at the end of s,
// optionally followed by ",y".
func wrapsWhole(s string) bool {
	depth := 0
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
			if depth == 0 {
				tail := strings.ToLower(strings.Join(strings.Fields(s[j+1:]), ""))
				return tail == "" || tail == ",y"
			}
		}
	}
	return false
}
