package expr

import (
	"fmt"
	"strings"
)

// Node is one vertex of an expression tree. Leaves are Empty, Constant, Ref and Offset;
// Unary and Binary are operator nodes.
type Node interface {
	isNode()
	String() string
}

// Empty is the absent operand.
type Empty struct{}

// Constant is a fully known integer.
type Constant int64

// Ref is a symbol that has not been resolved yet.
type Ref struct {
	ID Ident
}

// Offset is a byte position inside the chunk currently being compiled.
type Offset int64

// UnaryOp is a prefix operator.
type UnaryOp int

// Unary operators.
const (
	OpNeg  UnaryOp = iota // -x
	OpNot                 // ~x
	OpLow                 // <x, bits 0-7
	OpHigh                // >x, bits 8-15
	OpBank                // ^x, bits 16-23
)

// BinaryOp is an infix operator.
type BinaryOp int

// Binary operators.
const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
)

var (
	unaryNames  = [...]string{"-", "~", "<", ">", "^"}
	binaryNames = [...]string{"+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>"}
)

func (o UnaryOp) String() string  { return unaryNames[o] }
func (o BinaryOp) String() string { return binaryNames[o] }

// Unary applies Op to X.
type Unary struct {
	Op UnaryOp
	X  Node
}

// Binary applies Op to L and R.
type Binary struct {
	Op   BinaryOp
	L, R Node
}

func (Empty) isNode()    {}
func (Constant) isNode() {}
func (Ref) isNode()      {}
func (Offset) isNode()   {}
func (*Unary) isNode()   {}
func (*Binary) isNode()  {}

func (Empty) String() string { return "" }

func (c Constant) String() string {
	if c < 0 {
		return fmt.Sprintf("-$%X", -int64(c))
	}
	return fmt.Sprintf("$%X", int64(c))
}

func (r Ref) String() string { return r.ID.String() }

func (o Offset) String() string { return fmt.Sprintf("@%d", int64(o)) }

func (u *Unary) String() string { return u.Op.String() + u.X.String() }

func (b *Binary) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(b.L.String())
	sb.WriteByte(' ')
	sb.WriteString(b.Op.String())
	sb.WriteByte(' ')
	sb.WriteString(b.R.String())
	sb.WriteByte(')')
	return sb.String()
}

// Sym is shorthand for a Ref to id.
func Sym(id Ident) Ref {
	return Ref{ID: id}
}
