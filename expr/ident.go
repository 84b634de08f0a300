package expr

import (
	"fmt"
	"strings"
)

// Ident is an opaque, comparable symbol identity. Values are usable as map keys.
type Ident interface {
	isIdent()
	String() string
}

// Global names a top-level label or define.
type Global string

// Anon is an anonymous label occurrence: Count is the number of sigils
// ("-" or "+") and Seq the occurrence number for that sigil run.
type Anon struct {
	Forward bool
	Count   int
	Seq     int
}

// Local is a named local label. Path joins the names of enclosing locals with dots.
type Local struct {
	Scope int
	Path  string
}

func (Global) isIdent() {}
func (Anon) isIdent()   {}
func (Local) isIdent()  {}

func (g Global) String() string { return string(g) }

func (a Anon) String() string {
	sigil := "-"
	if a.Forward {
		sigil = "+"
	}
	return fmt.Sprintf("%s#%d", strings.Repeat(sigil, a.Count), a.Seq)
}

func (l Local) String() string {
	return fmt.Sprintf(".%s@%d", l.Path, l.Scope)
}
