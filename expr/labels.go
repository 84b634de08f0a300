package expr

import "strings"

// Labels mints identities for anonymous and named local labels. One instance is
// shared by the statement source, which asks for reference identities while it
// parses operands, and the compiler, which asks for definition identities when
// it records a label. Both must run in program order on one goroutine.
//
// Anonymous labels are matched by sigil count: a reference to "--" names the
// nearest "--" definition in the requested direction. Named locals are scoped to
// the top-level label they follow.
type Labels struct {
	scope    int
	backward map[int]int
	forward  map[int]int
	stack    []string
}

// NewLabels returns an allocator positioned before the first top-level label.
func NewLabels() *Labels {
	return &Labels{
		backward: make(map[int]int),
		forward:  make(map[int]int),
	}
}

// EnterScope starts a new top-level label. Named locals defined after this call
// never alias those defined before it.
func (l *Labels) EnterScope() {
	l.scope++
	l.stack = l.stack[:0]
}

// Scope returns the current top-level scope number.
func (l *Labels) Scope() int {
	return l.scope
}

// DefineBackward records a new backward anonymous label with n sigils.
func (l *Labels) DefineBackward(n int) Ident {
	l.backward[n]++
	return Anon{Count: n, Seq: l.backward[n]}
}

// Backward returns the identity of the latest backward label with n sigils.
func (l *Labels) Backward(n int) Ident {
	return Anon{Count: n, Seq: l.backward[n]}
}

// HasBackward reports whether a backward label with n sigils has been defined.
func (l *Labels) HasBackward(n int) bool {
	return l.backward[n] > 0
}

// DefineForward records a forward anonymous label with n sigils.
func (l *Labels) DefineForward(n int) Ident {
	l.forward[n]++
	return Anon{Forward: true, Count: n, Seq: l.forward[n]}
}

// Forward returns the identity of the next forward label with n sigils.
func (l *Labels) Forward(n int) Ident {
	return Anon{Forward: true, Count: n, Seq: l.forward[n] + 1}
}

// DefineLocal records a named local at depth (1 for ".name", 2 for "..name").
// Deeper locals are nested under the most recent shallower one.
func (l *Labels) DefineLocal(depth int, name string) Ident {
	if depth < 1 {
		depth = 1
	}
	for len(l.stack) < depth-1 {
		l.stack = append(l.stack, "")
	}
	l.stack = append(l.stack[:depth-1], name)
	return Local{Scope: l.scope, Path: strings.Join(l.stack, ".")}
}

// Local returns the identity a reference to name at depth resolves to.
func (l *Labels) Local(depth int, name string) Ident {
	if depth < 1 {
		depth = 1
	}
	parts := make([]string, 0, depth)
	for i := 0; i < depth-1; i++ {
		if i < len(l.stack) {
			parts = append(parts, l.stack[i])
		} else {
			parts = append(parts, "")
		}
	}
	parts = append(parts, name)
	return Local{Scope: l.scope, Path: strings.Join(parts, ".")}
}
