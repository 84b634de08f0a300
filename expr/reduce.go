package expr

// Reduce folds the tree to the simplest root it can reach.
func (e *Expression) Reduce() {
	e.Root = reduce(e.root())
}

func reduce(n Node) Node {
	switch n := n.(type) {
	case *Unary:
		n.X = reduce(n.X)
		if c, ok := n.X.(Constant); ok {
			return foldUnary(n.Op, int64(c))
		}
		return n
	case *Binary:
		n.L = reduce(n.L)
		n.R = reduce(n.R)
		if r, ok := foldBinary(n.Op, n.L, n.R); ok {
			return r
		}
		return n
	}
	return n
}

func foldUnary(op UnaryOp, x int64) Node {
	switch op {
	case OpNeg:
		return Constant(-x)
	case OpNot:
		return Constant(^x)
	case OpLow:
		return Constant(x & 0xFF)
	case OpHigh:
		return Constant((x >> 8) & 0xFF)
	case OpBank:
		return Constant((x >> 16) & 0xFF)
	}
	return &Unary{Op: op, X: Constant(x)}
}

func foldBinary(op BinaryOp, l, r Node) (Node, bool) {
	switch l := l.(type) {
	case Constant:
		switch r := r.(type) {
		case Constant:
			return foldConstants(op, int64(l), int64(r))
		case Offset:
			if op == OpAdd {
				return Offset(int64(l) + int64(r)), true
			}
		}
	case Offset:
		switch r := r.(type) {
		case Constant:
			switch op {
			case OpAdd:
				return Offset(int64(l) + int64(r)), true
			case OpSub:
				return Offset(int64(l) - int64(r)), true
			}
		case Offset:
			// The distance between two points in one chunk survives relocation.
			if op == OpSub {
				return Constant(int64(l) - int64(r)), true
			}
		}
	}
	return nil, false
}

func foldConstants(op BinaryOp, l, r int64) (Node, bool) {
	switch op {
	case OpAdd:
		return Constant(l + r), true
	case OpSub:
		return Constant(l - r), true
	case OpMul:
		return Constant(l * r), true
	case OpDiv:
		if r == 0 {
			return nil, false
		}
		return Constant(l / r), true
	case OpMod:
		if r == 0 {
			return nil, false
		}
		return Constant(l % r), true
	case OpAnd:
		return Constant(l & r), true
	case OpOr:
		return Constant(l | r), true
	case OpXor:
		return Constant(l ^ r), true
	case OpShl:
		if r < 0 || r > 63 {
			return nil, false
		}
		return Constant(l << uint(r)), true
	case OpShr:
		if r < 0 || r > 63 {
			return nil, false
		}
		return Constant(l >> uint(r)), true
	}
	return nil, false
}
