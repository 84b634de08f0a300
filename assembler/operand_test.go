package assembler

import (
	"testing"

	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
	"github.com/nalgeon/be"
)

func TestResolveMode(t *testing.T) {
	sym := expr.New(expr.Sym(expr.Global("x")))
	tests := []struct {
		form Form
		size cpu.SizeHint
		want cpu.Mode
	}{
		{FormNone, cpu.SizeAny, cpu.ModeImplied},
		{FormNone, cpu.SizeImplicit, cpu.ModeImplied},
		{FormAccumulator, cpu.SizeAny, cpu.ModeAccumulator},
		{FormImmediate, cpu.SizeByte, cpu.ModeImmediate8},
		{FormImmediate, cpu.SizeWord, cpu.ModeImmediate16},
		{FormPlain, cpu.SizeByte, cpu.ModeDirect},
		{FormPlain, cpu.SizeWord, cpu.ModeAbsolute},
		{FormPlain, cpu.SizeLong, cpu.ModeLong},
		{FormPlain, cpu.SizeRelByte, cpu.ModeRelative8},
		{FormPlain, cpu.SizeRelWord, cpu.ModeRelative16},
		{FormX, cpu.SizeLong, cpu.ModeLongX},
		{FormY, cpu.SizeByte, cpu.ModeDirectY},
		{FormIndirect, cpu.SizeWord, cpu.ModeAbsoluteIndirect},
		{FormXIndirect, cpu.SizeByte, cpu.ModeDirectXIndirect},
		{FormIndirectY, cpu.SizeAny, cpu.ModeDirectIndirectY},
		{FormIndirectLong, cpu.SizeWord, cpu.ModeAbsoluteIndirectLong},
		{FormIndirectLongY, cpu.SizeByte, cpu.ModeDirectIndirectLongY},
		{FormStack, cpu.SizeAny, cpu.ModeStackRelative},
		{FormStackIndirectY, cpu.SizeByte, cpu.ModeStackRelativeIndirectY},
	}
	for _, tt := range tests {
		op := Operand{Form: tt.form, Expr: sym}
		if tt.form == FormNone || tt.form == FormAccumulator {
			op.Expr = expr.New(nil)
		}
		got, err := ResolveMode(op, tt.size)
		if err != nil {
			t.Errorf("%s as %s: %v", op, tt.size, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s as %s: got %s, want %s", op, tt.size, got, tt.want)
		}
	}
}

func TestResolveModeMismatch(t *testing.T) {
	sym := expr.New(expr.Sym(expr.Global("x")))
	tests := []struct {
		op   Operand
		size cpu.SizeHint
	}{
		{Operand{Form: FormNone}, cpu.SizeWord},
		{Operand{Form: FormImmediate, Expr: sym}, cpu.SizeLong},
		{Operand{Form: FormIndirectY, Expr: sym}, cpu.SizeWord},
		{Operand{Form: FormY, Expr: sym}, cpu.SizeLong},
		{Operand{Form: FormPlain, Expr: sym}, cpu.SizeImplicit},
		{Operand{Form: FormX, Expr: sym}, cpu.SizeRelByte},
	}
	for _, tt := range tests {
		_, err := ResolveMode(tt.op, tt.size)
		be.Err(t, err, ErrAddressingMode)
	}
}

func TestNarrowSize(t *testing.T) {
	plain := func(n expr.Node) Operand { return Operand{Form: FormPlain, Expr: expr.New(n)} }
	tests := []struct {
		name string
		mn   string
		op   Operand
		want cpu.SizeHint
	}{
		{"ByteConstant", "lda", plain(expr.Constant(0x10)), cpu.SizeByte},
		{"NegativeByte", "lda", plain(expr.Constant(-1)), cpu.SizeByte},
		{"WordConstant", "lda", plain(expr.Constant(0x1000)), cpu.SizeWord},
		{"LongConstant", "lda", plain(expr.Constant(0x10000)), cpu.SizeLong},
		{"NoDirectJump", "jmp", plain(expr.Constant(0x10)), cpu.SizeWord},
		{"NoLongStore", "stx", plain(expr.Constant(0x10000)), cpu.SizeAny},
		{"Symbol", "lda", plain(expr.Sym(expr.Global("x"))), cpu.SizeWord},
		{"SymbolLongOnly", "jml", plain(expr.Sym(expr.Global("x"))), cpu.SizeLong},
		{"SymbolByteOnly", "pei", Operand{Form: FormIndirect, Expr: expr.New(expr.Sym(expr.Global("x")))}, cpu.SizeByte},
		{"BankByte", "lda", Operand{Form: FormImmediate, Expr: expr.New(&expr.Unary{Op: expr.OpBank, X: expr.Sym(expr.Global("x"))})}, cpu.SizeByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, narrowSize(tt.mn, tt.op), tt.want)
		})
	}
}

func TestEncode(t *testing.T) {
	enc, err := Encode("lda", cpu.ModeAbsolute, expr.New(expr.Constant(0x2A10)))
	be.Err(t, err, nil)
	be.Equal(t, enc.Bytes, []byte{0xAD, 0x10, 0x2A})
	be.True(t, !enc.Diverging)

	enc, err = Encode("jml", cpu.ModeLong, expr.New(expr.Sym(expr.Global("far"))))
	be.Err(t, err, nil)
	be.Equal(t, enc.Bytes, []byte{0x5C, 0, 0, 0})
	be.True(t, enc.Diverging)

	enc, err = Encode("bra", cpu.ModeRelative8, expr.New(expr.Constant(-2)))
	be.Err(t, err, nil)
	be.Equal(t, enc.Bytes, []byte{0x80, 0xFE})

	enc, err = Encode("dec", cpu.ModeImplied, expr.New(nil))
	be.Err(t, err, nil)
	be.Equal(t, enc.Bytes, []byte{0x3A})

	_, err = Encode("stx", cpu.ModeAbsoluteX, expr.New(nil))
	be.Err(t, err, ErrAddressingMode)
	be.Err(t, err, cpu.ErrNoMode)

	_, err = Encode("bne", cpu.ModeRelative8, expr.New(expr.Constant(200)))
	be.Err(t, err, ErrFieldOverflow)
}
