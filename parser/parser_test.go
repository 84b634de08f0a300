package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/Urethramancer/asm816/assembler"
	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
	"github.com/nalgeon/be"
)

// collect drains a parser without a compiler. Label definitions are not recorded,
// so only global references are meaningful here.
func collect(t *testing.T, src string) []assembler.Statement {
	t.Helper()
	p := New(strings.NewReader(src), "t.s", expr.NewLabels())
	var out []assembler.Statement
	for {
		st, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, st)
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"$2A10", "$2A10"},
		{"%1010", "$A"},
		{"42", "$2A"},
		{"'A'", "$41"},
		{"1+2*3", "($1 + ($2 * $3))"},
		{"(1+2)*3", "(($1 + $2) * $3)"},
		{"a|b^c&d", "(a | (b ^ (c & d)))"},
		{"1<<4>>2", "(($1 << $4) >> $2)"},
		{"-x", "-x"},
		{"<label+1", "<(label + $1)"},
		{">label", ">label"},
		{"^far", "^far"},
		{"~0", "~$0"},
		{"10-3-2", "(($A - $3) - $2)"},
		{"$FF_FF", "$FFFF"},
	}
	for _, tt := range tests {
		n, err := ParseExpr(tt.src, expr.NewLabels())
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		be.Equal(t, n.String(), tt.want)
	}
}

func TestParseExprErrors(t *testing.T) {
	for _, src := range []string{"", "(1", "1+", "$", "1 2", "'ab'", "+x", "."} {
		_, err := ParseExpr(src, expr.NewLabels())
		be.Err(t, err, ErrSyntax)
	}
}

func TestAnonymousReferences(t *testing.T) {
	l := expr.NewLabels()
	l.DefineBackward(1)
	l.DefineBackward(1)

	n, err := ParseExpr("-", l)
	be.Err(t, err, nil)
	be.Equal(t, n, expr.Node(expr.Sym(expr.Anon{Count: 1, Seq: 2})))

	n, err = ParseExpr("++", l)
	be.Err(t, err, nil)
	be.Equal(t, n, expr.Node(expr.Sym(expr.Anon{Forward: true, Count: 2, Seq: 1})))

	n, err = ParseExpr("-1", l)
	be.Err(t, err, nil)
	be.Equal(t, n.String(), "-$1")
}

func TestBackwardReferenceNeedsDefinition(t *testing.T) {
	l := expr.NewLabels()
	_, err := ParseExpr("-", l)
	be.Err(t, err, ErrSyntax)
	be.Err(t, err, "no earlier")

	l.DefineBackward(1)
	_, err = ParseExpr("--", l)
	be.Err(t, err, ErrSyntax)

	labels := expr.NewLabels()
	p := New(strings.NewReader("bne -\n- nop\nbne -\n"), "t.s", labels)
	units := assembler.Compile(p, labels, assembler.Options{})
	be.Equal(t, len(units), 2)

	eu, ok := units[0].(assembler.ErrorUnit)
	be.True(t, ok)
	be.Err(t, eu.Err, assembler.ErrParse)
	be.Err(t, eu.Err, "t.s:1")

	cu, ok := units[1].(assembler.ChunkUnit)
	be.True(t, ok)
	be.Equal(t, cu.Chunk.Bytes(), []byte{cpu.OPNOP, 0xD0, 0xFD})
	be.Equal(t, len(cu.Chunk.Fixups()), 0)
}

func TestLocalReferences(t *testing.T) {
	l := expr.NewLabels()
	l.EnterScope()
	l.DefineLocal(1, "outer")

	n, err := ParseExpr("..inner", l)
	be.Err(t, err, nil)
	be.Equal(t, n, expr.Node(expr.Sym(expr.Local{Scope: 1, Path: "outer.inner"})))
}

func TestParseOperand(t *testing.T) {
	tests := []struct {
		src  string
		form assembler.Form
		expr string
	}{
		{"", assembler.FormNone, ""},
		{"a", assembler.FormAccumulator, ""},
		{"A", assembler.FormAccumulator, ""},
		{"#$10", assembler.FormImmediate, "$10"},
		{"label", assembler.FormPlain, "label"},
		{"label,x", assembler.FormX, "label"},
		{"label, Y", assembler.FormY, "label"},
		{"(ptr)", assembler.FormIndirect, "ptr"},
		{"(ptr,x)", assembler.FormXIndirect, "ptr"},
		{"(ptr),y", assembler.FormIndirectY, "ptr"},
		{"[ptr]", assembler.FormIndirectLong, "ptr"},
		{"[ptr],y", assembler.FormIndirectLongY, "ptr"},
		{"3,s", assembler.FormStack, "$3"},
		{"(3,s),y", assembler.FormStackIndirectY, "$3"},
		{"(a+1)*2", assembler.FormPlain, "((a + $1) * $2)"},
		{"(a+1)*2,x", assembler.FormX, "((a + $1) * $2)"},
	}
	for _, tt := range tests {
		op, err := ParseOperand(tt.src, expr.NewLabels())
		if err != nil {
			t.Errorf("%q: %v", tt.src, err)
			continue
		}
		if op.Form != tt.form {
			t.Errorf("%q: got form %d, want %d", tt.src, op.Form, tt.form)
		}
		be.Equal(t, op.Expr.String(), tt.expr)
	}
}

func TestParseMnemonic(t *testing.T) {
	mn, size, err := ParseMnemonic("LDA.W")
	be.Err(t, err, nil)
	be.Equal(t, mn, "lda")
	be.Equal(t, size, cpu.SizeWord)

	mn, size, err = ParseMnemonic("jml")
	be.Err(t, err, nil)
	be.Equal(t, mn, "jml")
	be.Equal(t, size, cpu.SizeAny)

	_, _, err = ParseMnemonic("lda.q")
	be.Err(t, err, ErrSyntax)
}

func TestLabelsAndStatements(t *testing.T) {
	stmts := collect(t, `
@bank $7E
@section code
main: lda #1 ; load
.loop:
- + nop
..inner: dex
`)
	be.Equal(t, len(stmts), 8)

	top, ok := stmts[0].(assembler.TopLevelLabel)
	be.True(t, ok)
	be.Equal(t, top.Name, "main")
	be.Equal(t, top.Pos, assembler.Pos{File: "t.s", Line: 4})
	be.Equal(t, len(top.Attrs), 2)
	be.Equal(t, top.Attrs[0], assembler.Attribute(assembler.BankAttr(0x7E)))
	be.Equal(t, top.Attrs[1], assembler.Attribute(assembler.NamedAttr{Name: "section", Value: "code"}))

	ins, ok := stmts[1].(assembler.Instruction)
	be.True(t, ok)
	be.Equal(t, ins.String(), "lda #$1")

	be.Equal(t, stmts[2], assembler.Statement(assembler.LocalLabel{Depth: 1, Name: "loop"}))
	be.Equal(t, stmts[3], assembler.Statement(assembler.BackwardLabel{Count: 1}))
	be.Equal(t, stmts[4], assembler.Statement(assembler.ForwardLabel{Count: 1}))
	be.Equal(t, stmts[5].(assembler.Instruction).Mnemonic, "nop")
	be.Equal(t, stmts[6], assembler.Statement(assembler.LocalLabel{Depth: 2, Name: "inner"}))
	be.Equal(t, stmts[7].(assembler.Instruction).Mnemonic, "dex")
}

func TestDefines(t *testing.T) {
	stmts := collect(t, "width = 32\nheight equ width*2\n")
	be.Equal(t, len(stmts), 2)

	d := stmts[0].(assembler.Define)
	be.Equal(t, d.Name, "width")
	be.Equal(t, d.Expr.String(), "$20")

	d = stmts[1].(assembler.Define)
	be.Equal(t, d.Name, "height")
	be.Equal(t, d.Expr.String(), "(width * $2)")
}

func TestDataDirectives(t *testing.T) {
	stmts := collect(t, `
.db 1, "ab", ';', -1
.dw $1234, target
.dl $123456
.ds 3, $EA
.text "hi\n"
`)
	be.Equal(t, len(stmts), 5)

	db := stmts[0].(assembler.RawData)
	be.Equal(t, db.Data, []byte{1, 'a', 'b', ';', 0xFF})
	be.Equal(t, len(db.Refs), 0)

	dw := stmts[1].(assembler.RawData)
	be.Equal(t, dw.Data, []byte{0x34, 0x12, 0, 0})
	be.Equal(t, len(dw.Refs), 1)
	be.Equal(t, dw.Refs[0].Offset, 2)
	be.Equal(t, dw.Refs[0].Expr.Size, cpu.SizeWord)
	be.Equal(t, dw.Refs[0].Expr.String(), "target")

	be.Equal(t, stmts[2].(assembler.RawData).Data, []byte{0x56, 0x34, 0x12})
	be.Equal(t, stmts[3].(assembler.RawData).Data, []byte{0xEA, 0xEA, 0xEA})
	be.Equal(t, stmts[4].(assembler.RawData).Data, []byte("hi\n"))
}

func TestDataSpaceLimit(t *testing.T) {
	stmts := collect(t, ".ds $10000\n.ds $1000001\n.ds $7fffffffffffffff\nnop\n")
	be.Equal(t, len(stmts), 4)
	be.Equal(t, len(stmts[0].(assembler.RawData).Data), 0x10000)
	for _, st := range stmts[1:3] {
		se, ok := st.(assembler.SourceError)
		be.True(t, ok)
		be.True(t, !se.Fatal)
		be.Err(t, se.Err, ErrSyntax)
		be.Err(t, se.Err, "exceeds")
	}
	be.Equal(t, stmts[3].(assembler.Instruction).Mnemonic, "nop")
}

func TestSourceErrorsResynchronize(t *testing.T) {
	stmts := collect(t, ".db $100\n.frob 1\nlda.z #1\nnop\n@bank 300\n")
	be.Equal(t, len(stmts), 5)

	for i, line := range []int{1, 2, 3} {
		se, ok := stmts[i].(assembler.SourceError)
		be.True(t, ok)
		be.True(t, !se.Fatal)
		be.Equal(t, se.Pos.Line, line)
	}
	be.Err(t, stmts[0].(assembler.SourceError).Err, cpu.ErrOverflow)
	be.Err(t, stmts[1].(assembler.SourceError).Err, "unknown directive")
	be.Err(t, stmts[2].(assembler.SourceError).Err, ErrSyntax)
	be.Equal(t, stmts[3].(assembler.Instruction).Mnemonic, "nop")
	be.Err(t, stmts[4].(assembler.SourceError).Err, "invalid bank")
}

var errFail = errors.New("device not ready")

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errFail }

func TestReadErrorIsFatal(t *testing.T) {
	p := New(failingReader{}, "broken.s", expr.NewLabels())
	st, ok := p.Next()
	be.True(t, ok)
	se := st.(assembler.SourceError)
	be.True(t, se.Fatal)
	be.Err(t, se.Err, "reading broken.s")
	be.Err(t, se.Err, errFail)

	_, ok = p.Next()
	be.True(t, !ok)
}

func TestStripComment(t *testing.T) {
	be.Equal(t, stripComment(`lda #1 ; comment`), "lda #1 ")
	be.Equal(t, stripComment(`.text "a;b" ; c`), `.text "a;b" `)
	be.Equal(t, stripComment(`lda #';' ; c`), `lda #';' `)
}
