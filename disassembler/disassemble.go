// Package disassembler decodes 65816 machine code into a textual listing.
package disassembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Urethramancer/asm816/cpu"
)

// ErrTruncated is returned when an instruction runs past the end of the code.
var ErrTruncated = errors.New("truncated instruction")

// Options selects register widths, which decide the size of immediate operands.
type Options struct {
	// WideA is set when the accumulator is 16 bits (M flag clear).
	WideA bool
	// WideXY is set when the index registers are 16 bits (X flag clear).
	WideXY bool
}

// Instruction represents a single decoded instruction at a specific offset.
type Instruction struct {
	Offset   int
	Op       byte
	Mnemonic string
	Mode     cpu.Mode
	Operand  []byte
	Known    bool
}

// Size returns the encoded length in bytes.
func (i Instruction) Size() int {
	return 1 + len(i.Operand)
}

// Value returns the operand as an unsigned little-endian integer.
func (i Instruction) Value() int64 {
	var v int64
	for j := len(i.Operand) - 1; j >= 0; j-- {
		v = v<<8 | int64(i.Operand[j])
	}
	return v
}

func (i Instruction) String() string {
	if !i.Known {
		return fmt.Sprintf(".db $%02X", i.Op)
	}
	if len(i.Operand) == 0 {
		if i.Mode == cpu.ModeAccumulator {
			return i.Mnemonic + " a"
		}
		return i.Mnemonic
	}

	var arg string
	switch i.Mode {
	case cpu.ModeRelative8:
		arg = fmt.Sprintf("$%04X", i.Offset+2+int(int8(i.Operand[0])))
	case cpu.ModeRelative16:
		// Where the CPU lands. Unlinked chunks store one less than this.
		arg = fmt.Sprintf("$%04X", i.Offset+3+int(int16(i.Value())))
	default:
		arg = fmt.Sprintf("$%0*X", 2*len(i.Operand), i.Value())
	}
	return i.Mnemonic + " " + fmt.Sprintf(i.Mode.Format(), arg)
}

// immediateWidth returns the operand width of an immediate for mnemonic.
func immediateWidth(mnemonic string, opts Options) int {
	switch mnemonic {
	case "rep", "sep", "cop", "wdm", "brk":
		return 1
	case "ldx", "ldy", "cpx", "cpy":
		if opts.WideXY {
			return 2
		}
		return 1
	}
	if opts.WideA {
		return 2
	}
	return 1
}

// Decode decodes the instruction at the start of code.
func Decode(code []byte, offset int, opts Options) (Instruction, error) {
	if len(code) == 0 {
		return Instruction{}, ErrTruncated
	}
	inst := Instruction{Offset: offset, Op: code[0]}
	mn, mode, ok := cpu.Lookup(code[0])
	if !ok {
		return inst, nil
	}
	inst.Mnemonic, inst.Mode, inst.Known = strings.ToLower(mn), mode, true

	width := mode.OperandWidth()
	if mode == cpu.ModeImmediate8 {
		width = immediateWidth(inst.Mnemonic, opts)
		if width == 2 {
			inst.Mode = cpu.ModeImmediate16
		}
	}
	if len(code) < 1+width {
		return inst, fmt.Errorf("%w: %s at $%04X", ErrTruncated, inst.Mnemonic, offset)
	}
	inst.Operand = code[1 : 1+width]
	return inst, nil
}

// Decoder walks code linearly.
func Decoder(code []byte, opts Options) ([]Instruction, error) {
	var out []Instruction
	for pc := 0; pc < len(code); {
		inst, err := Decode(code[pc:], pc, opts)
		if err != nil {
			return out, err
		}
		// REP/SEP with a constant change the width of later immediates.
		if inst.Known && len(inst.Operand) == 1 {
			switch inst.Op {
			case 0xC2:
				opts.WideA = opts.WideA || inst.Operand[0]&0x20 != 0
				opts.WideXY = opts.WideXY || inst.Operand[0]&0x10 != 0
			case 0xE2:
				opts.WideA = opts.WideA && inst.Operand[0]&0x20 == 0
				opts.WideXY = opts.WideXY && inst.Operand[0]&0x10 == 0
			}
		}
		out = append(out, inst)
		pc += inst.Size()
	}
	return out, nil
}

// Disassemble takes a byte slice of 65816 machine code and returns it as a
// formatted listing, one instruction per line with its offset and bytes.
func Disassemble(code []byte, opts Options) (string, error) {
	insts, err := Decoder(code, opts)
	var sb strings.Builder
	for _, inst := range insts {
		raw := fmt.Sprintf("% X", code[inst.Offset:inst.Offset+inst.Size()])
		fmt.Fprintf(&sb, "%04X  %-12s %s\n", inst.Offset, raw, inst)
	}
	return sb.String(), err
}
