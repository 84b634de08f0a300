package assembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

// Pos is a source position attached to statements for error reporting.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	switch {
	case p.File == "" && p.Line == 0:
		return ""
	case p.File == "":
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Statement is one parsed source statement.
type Statement interface {
	isStatement()
}

// Source yields statements in program order. The second result is false at end of stream.
type Source interface {
	Next() (Statement, bool)
}

// Define binds Name to an expression without emitting bytes.
type Define struct {
	Name string
	Expr expr.Expression
	Pos  Pos
}

// TopLevelLabel starts a new chunk.
type TopLevelLabel struct {
	Name  string
	Attrs []Attribute
	Pos   Pos
}

// BackwardLabel is an anonymous "-" label; Count is the number of sigils.
type BackwardLabel struct {
	Count int
}

// ForwardLabel is an anonymous "+" label; Count is the number of sigils.
type ForwardLabel struct {
	Count int
}

// LocalLabel is a named local label at Depth (1 for ".name").
type LocalLabel struct {
	Depth int
	Name  string
}

// DataRef is an expression to patch into raw data at Offset, relative to the data start.
type DataRef struct {
	Offset int
	Expr   expr.Expression
}

// RawData is literal bytes, possibly with references patched in later.
type RawData struct {
	Data []byte
	Refs []DataRef
	Pos  Pos
}

// Instruction is a mnemonic with an optional declared size and one operand.
type Instruction struct {
	Mnemonic string
	Size     cpu.SizeHint
	Arg      Operand
	Pos      Pos
}

// SourceError reports a statement the source could not parse. Fatal errors end the stream.
type SourceError struct {
	Err   error
	Fatal bool
	Pos   Pos
}

func (Define) isStatement()        {}
func (TopLevelLabel) isStatement() {}
func (BackwardLabel) isStatement() {}
func (ForwardLabel) isStatement()  {}
func (LocalLabel) isStatement()    {}
func (RawData) isStatement()       {}
func (Instruction) isStatement()   {}
func (SourceError) isStatement()   {}

func (i Instruction) String() string {
	s := strings.ToLower(i.Mnemonic)
	if arg := i.Arg.String(); arg != "" {
		s += " " + arg
	}
	return s
}

// Attribute decorates a top-level label.
type Attribute interface {
	String() string
}

// BankAttr pins the chunk it decorates to a memory bank.
type BankAttr uint8

func (b BankAttr) String() string { return fmt.Sprintf("bank(%d)", uint8(b)) }

// NamedAttr is any other attribute; it is passed through for downstream consumers.
type NamedAttr struct {
	Name  string
	Value string
}

func (a NamedAttr) String() string {
	if a.Value == "" {
		return a.Name
	}
	return fmt.Sprintf("%s(%s)", a.Name, a.Value)
}

// SliceSource replays a fixed list of statements.
type SliceSource struct {
	stmts []Statement
}

// NewSliceSource returns a Source over stmts.
func NewSliceSource(stmts ...Statement) *SliceSource {
	return &SliceSource{stmts: stmts}
}

// Next implements Source.
func (s *SliceSource) Next() (Statement, bool) {
	if len(s.stmts) == 0 {
		return nil, false
	}
	st := s.stmts[0]
	s.stmts = s.stmts[1:]
	return st, true
}
