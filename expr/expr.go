// Package expr holds the operand expression trees handed from the parser to the
// compiler, the constant folder that reduces them, and the allocator that mints
// identities for local labels.
package expr

import "github.com/Urethramancer/asm816/cpu"

// Expression is an operand tree with an optional size classification.
type Expression struct {
	Root Node
	Size cpu.SizeHint
}

// New wraps root in an Expression with no size constraint.
func New(root Node) Expression {
	return Expression{Root: root}
}

// Sized wraps root in an Expression carrying size.
func Sized(root Node, size cpu.SizeHint) Expression {
	return Expression{Root: root, Size: size}
}

func (e Expression) root() Node {
	if e.Root == nil {
		return Empty{}
	}
	return e.Root
}

// IsEmpty reports whether the expression has no operand.
func (e Expression) IsEmpty() bool {
	_, ok := e.root().(Empty)
	return ok
}

// Each calls fn for every leaf, left to right.
func (e Expression) Each(fn func(Node)) {
	each(e.root(), fn)
}

func each(n Node, fn func(Node)) {
	switch n := n.(type) {
	case *Unary:
		each(n.X, fn)
	case *Binary:
		each(n.L, fn)
		each(n.R, fn)
	default:
		fn(n)
	}
}

// EachMut replaces every leaf with fn's result. Operator nodes are updated in place.
func (e *Expression) EachMut(fn func(Node) Node) {
	e.Root = eachMut(e.root(), fn)
}

func eachMut(n Node, fn func(Node) Node) Node {
	switch n := n.(type) {
	case *Unary:
		n.X = eachMut(n.X, fn)
		return n
	case *Binary:
		n.L = eachMut(n.L, fn)
		n.R = eachMut(n.R, fn)
		return n
	default:
		return fn(n)
	}
}

// IsConstant reports whether every leaf is a Constant or Empty.
func (e Expression) IsConstant() bool {
	ok := true
	e.Each(func(n Node) {
		switch n.(type) {
		case Constant, Empty:
		default:
			ok = false
		}
	})
	return ok
}

// Clone returns a deep copy, so EachMut on the copy leaves e untouched.
func (e Expression) Clone() Expression {
	return Expression{Root: clone(e.root()), Size: e.Size}
}

func clone(n Node) Node {
	switch n := n.(type) {
	case *Unary:
		return &Unary{Op: n.Op, X: clone(n.X)}
	case *Binary:
		return &Binary{Op: n.Op, L: clone(n.L), R: clone(n.R)}
	}
	return n
}

// Value returns the constant the expression reduces to, if any, without modifying e.
func (e Expression) Value() (int64, bool) {
	c, ok := reduce(clone(e.root())).(Constant)
	return int64(c), ok
}

func (e Expression) String() string {
	return e.root().String()
}
