package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

// maxSpace is the largest .ds block: one full 24-bit address space.
const maxSpace = 0x1000000

// directive handles the data directives. Constant values are written straight into
// the data; anything else becomes a reference the compiler resolves or defers.
func (p *Parser) directive(name, args string, pos assembler.Pos) (assembler.Statement, error) {
	switch name {
	case ".db", ".byte":
		return p.dataList(args, cpu.SizeByte, pos)
	case ".dw", ".word":
		return p.dataList(args, cpu.SizeWord, pos)
	case ".dl", ".long":
		return p.dataList(args, cpu.SizeLong, pos)

	case ".ds":
		parts := splitDataValues(args)
		if len(parts) < 1 || len(parts) > 2 || parts[0].quoted {
			return nil, fmt.Errorf("%w: .ds requires a count and an optional fill byte", ErrSyntax)
		}
		count, err := p.constant(parts[0].value)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("%w: invalid count for .ds: %s", ErrSyntax, parts[0].value)
		}
		if count > maxSpace {
			return nil, fmt.Errorf("%w: .ds count %d exceeds $%X bytes", ErrSyntax, count, maxSpace)
		}
		var fill int64
		if len(parts) == 2 {
			if fill, err = p.constant(parts[1].value); err != nil || !cpu.FieldFits(1, fill) {
				return nil, fmt.Errorf("%w: invalid fill for .ds: %s", ErrSyntax, parts[1].value)
			}
		}
		data := make([]byte, count)
		for i := range data {
			data[i] = byte(fill)
		}
		return assembler.RawData{Data: data, Pos: pos}, nil

	case ".text":
		s, err := strconv.Unquote(strings.TrimSpace(args))
		if err != nil {
			return nil, fmt.Errorf("%w: .text expects a quoted string", ErrSyntax)
		}
		return assembler.RawData{Data: []byte(s), Pos: pos}, nil
	}
	return nil, fmt.Errorf("%w: unknown directive: %s", ErrSyntax, name)
}

func (p *Parser) dataList(args string, size cpu.SizeHint, pos assembler.Pos) (assembler.Statement, error) {
	tokens := splitDataValues(args)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: data directive requires at least one value", ErrSyntax)
	}

	var raw assembler.RawData
	raw.Pos = pos
	for _, tok := range tokens {
		if tok.quoted {
			raw.Data = append(raw.Data, tok.value...)
			continue
		}
		n, err := ParseExpr(tok.value, p.labels)
		if err != nil {
			return nil, err
		}
		e := expr.Sized(n, size)
		field := make([]byte, size.Width())
		if v, ok := e.Value(); ok {
			if err := cpu.PutField(field, size, v); err != nil {
				return nil, fmt.Errorf("%s: %w", tok.value, err)
			}
		} else {
			raw.Refs = append(raw.Refs, assembler.DataRef{Offset: len(raw.Data), Expr: e})
		}
		raw.Data = append(raw.Data, field...)
	}
	return raw, nil
}

func (p *Parser) constant(s string) (int64, error) {
	n, err := ParseExpr(s, p.labels)
	if err != nil {
		return 0, err
	}
	v, ok := expr.New(n).Value()
	if !ok {
		return 0, fmt.Errorf("%w: %s is not constant", ErrSyntax, s)
	}
	return v, nil
}

type dataToken struct {
	value  string
	quoted bool
}

// splitDataValues splits a comma separated list, keeping quoted strings whole.
func splitDataValues(s string) []dataToken {
	var tokens []dataToken
	var cur strings.Builder
	inQuote, depth := false, 0
	flush := func() {
		if v := strings.TrimSpace(cur.String()); v != "" {
			tokens = append(tokens, dataToken{value: v})
		}
		cur.Reset()
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '"' {
				tokens = append(tokens, dataToken{value: cur.String(), quoted: true})
				cur.Reset()
				inQuote = false
				continue
			}
			if c == '\\' && i+1 < len(s) {
				i++
				c = unescape(s[i])
			}
			cur.WriteByte(c)
		case c == '"':
			flush()
			inQuote = true
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			depth--
			cur.WriteByte(c)
		case c == ',' && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case '0':
		return 0
	}
	return c
}
