package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/asm816/expr"
)

// ErrSyntax is wrapped by every expression and statement syntax error.
var ErrSyntax = errors.New("syntax error")

// exprParser is a recursive-descent parser over one operand expression.
// References to local and anonymous labels are resolved through labels as they are read.
type exprParser struct {
	s      string
	pos    int
	labels *expr.Labels
}

// ParseExpr parses a complete expression.
func ParseExpr(s string, labels *expr.Labels) (expr.Node, error) {
	p := &exprParser{s: s, labels: labels}
	n, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return nil, p.errorf("unexpected %q", p.s[p.pos:])
	}
	return n, nil
}

// Binary operator precedence, loosest first.
var levels = [][]struct {
	tok string
	op  expr.BinaryOp
}{
	{{"|", expr.OpOr}},
	{{"^", expr.OpXor}},
	{{"&", expr.OpAnd}},
	{{"<<", expr.OpShl}, {">>", expr.OpShr}},
	{{"+", expr.OpAdd}, {"-", expr.OpSub}},
	{{"*", expr.OpMul}, {"/", expr.OpDiv}, {"%", expr.OpMod}},
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at column %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos+1, p.s)
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.s[p.pos:], tok)
}

func (p *exprParser) parseBinary(level int) (expr.Node, error) {
	if level == len(levels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, o := range levels[level] {
			if !p.peek(o.tok) {
				continue
			}
			p.pos += len(o.tok)
			right, err := p.parseBinary(level + 1)
			if err != nil {
				return nil, err
			}
			left = &expr.Binary{Op: o.op, L: left, R: right}
			matched = true
			break
		}
		if !matched {
			return left, nil
		}
	}
}

func (p *exprParser) parseUnary() (expr.Node, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return nil, p.errorf("missing operand")
	}

	switch c := p.s[p.pos]; c {
	case '-', '+':
		if n, ok, err := p.anonRef(c); ok {
			return n, err
		}
		if c == '+' {
			return nil, p.errorf("unexpected '+'")
		}
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.Unary{Op: expr.OpNeg, X: x}, nil
	case '~':
		p.pos++
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.Unary{Op: expr.OpNot, X: x}, nil
	case '<', '>', '^':
		// Byte selectors apply to everything on their right: "<label+1".
		p.pos++
		x, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		op := map[byte]expr.UnaryOp{'<': expr.OpLow, '>': expr.OpHigh, '^': expr.OpBank}[c]
		return &expr.Unary{Op: op, X: x}, nil
	case '(':
		p.pos++
		n, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		if !p.peek(")") {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
		return n, nil
	}
	return p.parsePrimary()
}

// anonRef reads a run of sigils standing alone as an anonymous label reference.
func (p *exprParser) anonRef(sigil byte) (expr.Node, bool, error) {
	end := p.pos
	for end < len(p.s) && p.s[end] == sigil {
		end++
	}
	rest := strings.TrimLeft(p.s[end:], " \t")
	if rest != "" && rest[0] != ')' && rest[0] != ',' {
		return nil, false, nil
	}
	n := end - p.pos
	if sigil == '-' {
		if !p.labels.HasBackward(n) {
			return nil, true, p.errorf("no earlier %q label", p.s[p.pos:end])
		}
		p.pos = end
		return expr.Sym(p.labels.Backward(n)), true, nil
	}
	p.pos = end
	return expr.Sym(p.labels.Forward(n)), true, nil
}

func (p *exprParser) parsePrimary() (expr.Node, error) {
	start := p.pos
	c := p.s[p.pos]
	switch {
	case c == '$':
		p.pos++
		return p.number(start, 16, isHex)
	case c == '%':
		p.pos++
		return p.number(start, 2, func(b byte) bool { return b == '0' || b == '1' })
	case isDigit(c):
		return p.number(start, 10, isDigit)
	case c == '\'':
		if p.pos+2 < len(p.s) && p.s[p.pos+2] == '\'' {
			v := p.s[p.pos+1]
			p.pos += 3
			return expr.Constant(v), nil
		}
		return nil, p.errorf("bad character constant")
	case c == '.' || isIdentStart(c):
		depth := 0
		for p.pos < len(p.s) && p.s[p.pos] == '.' {
			depth++
			p.pos++
		}
		nameStart := p.pos
		for p.pos < len(p.s) && isIdentChar(p.s[p.pos]) {
			p.pos++
		}
		name := p.s[nameStart:p.pos]
		if name == "" {
			return nil, p.errorf("missing label name")
		}
		if depth > 0 {
			return expr.Sym(p.labels.Local(depth, name)), nil
		}
		return expr.Sym(expr.Global(name)), nil
	}
	return nil, p.errorf("unexpected %q", string(c))
}

func (p *exprParser) number(start, base int, digit func(byte) bool) (expr.Node, error) {
	from := p.pos
	for p.pos < len(p.s) && (digit(p.s[p.pos]) || p.s[p.pos] == '_') {
		p.pos++
	}
	text := strings.ReplaceAll(p.s[from:p.pos], "_", "")
	if text == "" {
		p.pos = start
		return nil, p.errorf("missing digits")
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", p.s[start:p.pos])
	}
	return expr.Constant(v), nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentChar(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
