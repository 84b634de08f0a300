// Package parser reads 65816 assembly source and yields one statement at a time.
//
// The parser is lazy: reference identities for local and anonymous
// labels are taken from the shared expr.Labels allocator at the moment a
// statement is requested, after the compiler has handled everything before it.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/expr"
)

var (
	reTopLabel   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):`)
	reLocalLabel = regexp.MustCompile(`^(\.+)([A-Za-z_][A-Za-z0-9_]*):?`)
	reAnonLabel  = regexp.MustCompile(`^(-+|\++):?(\s|$)`)
	reDefine     = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_]*)\s*(=|\s\.?equ\s)\s*(.+)$`)
)

// Parser is an assembler.Source over assembly text.
type Parser struct {
	sc     *bufio.Scanner
	file   string
	labels *expr.Labels
	line   int

	// Statements of the current line not yet handed out. Text items are parsed
	// only when their turn comes.
	pending []item
	attrs   []assembler.Attribute
	done    bool
}

type item struct {
	st   assembler.Statement
	text string
	pos  assembler.Pos
}

// New returns a Parser reading r. file is used in positions only.
func New(r io.Reader, file string, labels *expr.Labels) *Parser {
	return &Parser{
		sc:     bufio.NewScanner(r),
		file:   file,
		labels: labels,
	}
}

// Next implements assembler.Source.
func (p *Parser) Next() (assembler.Statement, bool) {
	for {
		if len(p.pending) > 0 {
			it := p.pending[0]
			p.pending = p.pending[1:]
			if it.st != nil {
				return it.st, true
			}
			st, err := p.parseStatement(it.text, it.pos)
			if err != nil {
				return assembler.SourceError{Err: err, Pos: it.pos}, true
			}
			if st != nil {
				return st, true
			}
			continue
		}
		if p.done {
			return nil, false
		}

		if !p.sc.Scan() {
			p.done = true
			if err := p.sc.Err(); err != nil {
				return assembler.SourceError{
					Err:   fmt.Errorf("reading %s: %w", p.file, err),
					Fatal: true,
					Pos:   assembler.Pos{File: p.file, Line: p.line},
				}, true
			}
			continue
		}
		p.line++
		pos := assembler.Pos{File: p.file, Line: p.line}
		if err := p.splitLine(p.sc.Text(), pos); err != nil {
			return assembler.SourceError{Err: err, Pos: pos}, true
		}
	}
}

// splitLine queues the label definitions found at the start of line and the
// remaining statement text.
func (p *Parser) splitLine(line string, pos assembler.Pos) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "@") {
		return p.attribute(line[1:])
	}
	if m := reDefine.FindStringSubmatch(line); m != nil {
		p.pending = append(p.pending, item{text: line, pos: pos})
		return nil
	}

	for line != "" {
		if m := reTopLabel.FindStringSubmatch(line); m != nil {
			p.pending = append(p.pending, item{st: assembler.TopLevelLabel{Name: m[1], Attrs: p.attrs, Pos: pos}})
			p.attrs = nil
			line = strings.TrimSpace(line[len(m[0]):])
			continue
		}
		if m := reLocalLabel.FindStringSubmatch(line); m != nil && (strings.HasSuffix(m[0], ":") || isLabelEnd(line[len(m[0]):])) {
			p.pending = append(p.pending, item{st: assembler.LocalLabel{Depth: len(m[1]), Name: m[2]}})
			line = strings.TrimSpace(line[len(m[0]):])
			continue
		}
		if m := reAnonLabel.FindStringSubmatch(line); m != nil {
			n := len(m[1])
			if m[1][0] == '-' {
				p.pending = append(p.pending, item{st: assembler.BackwardLabel{Count: n}})
			} else {
				p.pending = append(p.pending, item{st: assembler.ForwardLabel{Count: n}})
			}
			line = strings.TrimSpace(line[len(m[0]):])
			continue
		}
		break
	}

	if line != "" {
		p.pending = append(p.pending, item{text: line, pos: pos})
	}
	return nil
}

// isLabelEnd reports whether a local label without a colon ends its line.
func isLabelEnd(rest string) bool {
	return strings.TrimSpace(rest) == ""
}

func (p *Parser) attribute(s string) error {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty attribute", ErrSyntax)
	}
	name := strings.ToLower(fields[0])
	value := strings.Join(fields[1:], " ")
	if name == "bank" {
		n, err := strconv.ParseUint(strings.TrimPrefix(value, "$"), bankBase(value), 8)
		if err != nil {
			return fmt.Errorf("%w: invalid bank %q", ErrSyntax, value)
		}
		p.attrs = append(p.attrs, assembler.BankAttr(n))
		return nil
	}
	p.attrs = append(p.attrs, assembler.NamedAttr{Name: name, Value: value})
	return nil
}

func bankBase(s string) int {
	if strings.HasPrefix(s, "$") {
		return 16
	}
	return 10
}

func (p *Parser) parseStatement(text string, pos assembler.Pos) (assembler.Statement, error) {
	if m := reDefine.FindStringSubmatch(text); m != nil {
		n, err := ParseExpr(m[3], p.labels)
		if err != nil {
			return nil, err
		}
		return assembler.Define{Name: m[1], Expr: expr.New(n), Pos: pos}, nil
	}

	head, rest := text, ""
	if i := strings.IndexAny(text, " \t"); i >= 0 {
		head, rest = text[:i], strings.TrimSpace(text[i:])
	}
	if strings.HasPrefix(head, ".") {
		return p.directive(strings.ToLower(head), rest, pos)
	}

	mnemonic, size, err := ParseMnemonic(head)
	if err != nil {
		return nil, err
	}
	arg, err := ParseOperand(rest, p.labels)
	if err != nil {
		return nil, err
	}
	return assembler.Instruction{Mnemonic: mnemonic, Size: size, Arg: arg, Pos: pos}, nil
}

// stripComment drops everything after a ';' outside quotes.
func stripComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' && isCharConstant(line, i):
			i += 2
		case c == '"' || c == '\'':
			quote = c
		case c == ';':
			return line[:i]
		}
	}
	return line
}

// isCharConstant reports whether line[i] opens a 'c' character constant.
func isCharConstant(line string, i int) bool {
	return i+2 < len(line) && line[i+2] == '\''
}
