package assembler

import (
	"errors"
	"fmt"

	"github.com/Urethramancer/asm816/cpu"
	"github.com/Urethramancer/asm816/expr"
)

// Form is the syntactic shape of an operand, as written in the source.
type Form int

const (
	// FormNone has no operand.
	FormNone Form = iota
	// FormAccumulator is "a".
	FormAccumulator
	// FormImmediate is "#e".
	FormImmediate
	// FormPlain is "e".
	FormPlain
	// FormX is "e,x".
	FormX
	// FormY is "e,y".
	FormY
	// FormIndirect is "(e)".
	FormIndirect
	// FormXIndirect is "(e,x)".
	FormXIndirect
	// FormIndirectY is "(e),y".
	FormIndirectY
	// FormIndirectLong is "[e]".
	FormIndirectLong
	// FormIndirectLongY is "[e],y".
	FormIndirectLongY
	// FormStack is "e,s".
	FormStack
	// FormStackIndirectY is "(e,s),y".
	FormStackIndirectY
)

// Operand is an expression together with its syntactic form.
type Operand struct {
	Form Form
	Expr expr.Expression
}

var formFormats = [...]string{
	FormNone:           "",
	FormAccumulator:    "a",
	FormImmediate:      "#%s",
	FormPlain:          "%s",
	FormX:              "%s,x",
	FormY:              "%s,y",
	FormIndirect:       "(%s)",
	FormXIndirect:      "(%s,x)",
	FormIndirectY:      "(%s),y",
	FormIndirectLong:   "[%s]",
	FormIndirectLongY:  "[%s],y",
	FormStack:          "%s,s",
	FormStackIndirectY: "(%s,s),y",
}

func (o Operand) String() string {
	if o.Form < 0 || int(o.Form) >= len(formFormats) {
		return o.Expr.String()
	}
	switch o.Form {
	case FormNone, FormAccumulator:
		return formFormats[o.Form]
	}
	return fmt.Sprintf(formFormats[o.Form], o.Expr.String())
}

// Size returns the size the form itself implies. Forms that only exist with a
// direct-page operand are byte sized.
func (f Form) Size() cpu.SizeHint {
	switch f {
	case FormIndirectY, FormIndirectLongY, FormStack, FormStackIndirectY:
		return cpu.SizeByte
	}
	return cpu.SizeAny
}

var formModes = map[Form]map[cpu.SizeHint]cpu.Mode{
	FormImmediate: {cpu.SizeByte: cpu.ModeImmediate8, cpu.SizeWord: cpu.ModeImmediate16},
	FormPlain: {
		cpu.SizeByte: cpu.ModeDirect, cpu.SizeWord: cpu.ModeAbsolute, cpu.SizeLong: cpu.ModeLong,
		cpu.SizeRelByte: cpu.ModeRelative8, cpu.SizeRelWord: cpu.ModeRelative16,
	},
	FormX:              {cpu.SizeByte: cpu.ModeDirectX, cpu.SizeWord: cpu.ModeAbsoluteX, cpu.SizeLong: cpu.ModeLongX},
	FormY:              {cpu.SizeByte: cpu.ModeDirectY, cpu.SizeWord: cpu.ModeAbsoluteY},
	FormIndirect:       {cpu.SizeByte: cpu.ModeDirectIndirect, cpu.SizeWord: cpu.ModeAbsoluteIndirect},
	FormXIndirect:      {cpu.SizeByte: cpu.ModeDirectXIndirect, cpu.SizeWord: cpu.ModeAbsoluteXIndirect},
	FormIndirectY:      {cpu.SizeByte: cpu.ModeDirectIndirectY},
	FormIndirectLong:   {cpu.SizeByte: cpu.ModeDirectIndirectLong, cpu.SizeWord: cpu.ModeAbsoluteIndirectLong},
	FormIndirectLongY:  {cpu.SizeByte: cpu.ModeDirectIndirectLongY},
	FormStack:          {cpu.SizeByte: cpu.ModeStackRelative},
	FormStackIndirectY: {cpu.SizeByte: cpu.ModeStackRelativeIndirectY},
}

// ResolveMode maps an operand and a resolved size to a concrete addressing mode.
func ResolveMode(op Operand, size cpu.SizeHint) (cpu.Mode, error) {
	s, ok := size.And(op.Form.Size())
	if !ok {
		return 0, fmt.Errorf("%w: %s operand cannot be %s", ErrAddressingMode, op, size)
	}

	switch op.Form {
	case FormNone, FormAccumulator:
		if s != cpu.SizeAny && s != cpu.SizeImplicit {
			return 0, fmt.Errorf("%w: missing %s operand", ErrAddressingMode, s)
		}
		if op.Form == FormNone {
			return cpu.ModeImplied, nil
		}
		return cpu.ModeAccumulator, nil
	}

	if !op.Expr.IsEmpty() && s == cpu.SizeImplicit {
		return 0, fmt.Errorf("%w: unexpected operand %s", ErrAddressingMode, op)
	}
	mode, ok := formModes[op.Form][s]
	if !ok {
		return 0, fmt.Errorf("%w: no %s form of %s", ErrAddressingMode, s, op)
	}
	return mode, nil
}

// narrowSize picks a size for an operand nothing has sized yet: the narrowest
// field a constant fits, or a word for symbols, as long as the mnemonic has an
// encoding for the resulting mode.
func narrowSize(mnemonic string, op Operand) cpu.SizeHint {
	var candidates []cpu.SizeHint
	if v, ok := op.Expr.Value(); ok {
		for _, s := range []cpu.SizeHint{cpu.SizeByte, cpu.SizeWord, cpu.SizeLong} {
			if cpu.FieldFits(s.Width(), v) {
				candidates = append(candidates, s)
			}
		}
	} else if u, ok := op.Expr.Root.(*expr.Unary); ok && u.Op != expr.OpNeg && u.Op != expr.OpNot {
		candidates = []cpu.SizeHint{cpu.SizeByte, cpu.SizeWord, cpu.SizeLong}
	} else {
		candidates = []cpu.SizeHint{cpu.SizeWord, cpu.SizeLong, cpu.SizeByte}
	}

	for _, s := range candidates {
		mode, err := ResolveMode(op, s)
		if err != nil {
			continue
		}
		if _, err := cpu.Opcode(mnemonic, mode); err == nil {
			return s
		}
	}
	return cpu.SizeAny
}

// Encoded is an instruction ready to append to a chunk.
type Encoded struct {
	Bytes []byte
	// Diverging is set for control transfers that never fall through.
	Diverging bool
}

// Encode assembles mnemonic in mode. Constant operands are written out; any other
// operand leaves zero bytes for a fixup to fill.
func Encode(mnemonic string, mode cpu.Mode, arg expr.Expression) (Encoded, error) {
	op, err := cpu.Opcode(mnemonic, mode)
	if err != nil && mode == cpu.ModeImplied {
		// "inc" with no operand means the accumulator.
		if acc, accErr := cpu.Opcode(mnemonic, cpu.ModeAccumulator); accErr == nil {
			op, err, mode = acc, nil, cpu.ModeAccumulator
		}
	}
	if err != nil {
		if errors.Is(err, cpu.ErrNoMode) {
			return Encoded{}, fmt.Errorf("%w: %w", ErrAddressingMode, err)
		}
		return Encoded{}, err
	}

	out := make([]byte, 1+mode.OperandWidth())
	out[0] = op
	if mode.OperandWidth() > 0 {
		if v, ok := arg.Value(); ok {
			if mode.Size().IsRelative() {
				err = cpu.PutRel(out[1:], mode.Size(), v)
			} else {
				err = cpu.PutField(out[1:], mode.Size(), v)
			}
			if err != nil {
				return Encoded{}, fmt.Errorf("%w: %w", ErrFieldOverflow, err)
			}
		}
	}
	return Encoded{Bytes: out, Diverging: cpu.IsDiverging(mnemonic)}, nil
}
