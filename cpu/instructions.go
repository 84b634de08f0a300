package cpu

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownMnemonic is returned for mnemonics missing from the opcode table.
	ErrUnknownMnemonic = errors.New("unknown mnemonic")
	// ErrNoMode is returned when a mnemonic has no encoding for an addressing mode.
	ErrNoMode = errors.New("addressing mode not available")
)

// Frequently referenced opcodes.
const (
	OPBRK = 0x00
	OPJSL = 0x22
	OPRTI = 0x40
	OPRTS = 0x60
	OPRTL = 0x6B
	OPBRA = 0x80
	OPBRL = 0x82
	OPNOP = 0xEA
	OPSTP = 0xDB
)

// Offsets of the ALU group (ORA, AND, EOR, ADC, STA, LDA, CMP, SBC) from the group base.
var aluModes = map[Mode]byte{
	ModeDirectXIndirect:        0x01,
	ModeStackRelative:          0x03,
	ModeDirect:                 0x05,
	ModeDirectIndirectLong:     0x07,
	ModeImmediate8:             0x09,
	ModeImmediate16:            0x09,
	ModeAbsolute:               0x0D,
	ModeLong:                   0x0F,
	ModeDirectIndirectY:        0x11,
	ModeDirectIndirect:         0x12,
	ModeStackRelativeIndirectY: 0x13,
	ModeDirectX:                0x15,
	ModeDirectIndirectLongY:    0x17,
	ModeAbsoluteY:              0x19,
	ModeAbsoluteX:              0x1D,
	ModeLongX:                  0x1F,
}

// Offsets of the shift group (ASL, ROL, LSR, ROR) from the group base.
var shiftModes = map[Mode]byte{
	ModeDirect:      0x06,
	ModeAccumulator: 0x0A,
	ModeAbsolute:    0x0E,
	ModeDirectX:     0x16,
	ModeAbsoluteX:   0x1E,
}

var implied = map[string]byte{
	"CLC": 0x18, "CLD": 0xD8, "CLI": 0x58, "CLV": 0xB8,
	"DEX": 0xCA, "DEY": 0x88, "INX": 0xE8, "INY": 0xC8,
	"NOP": 0xEA,
	"PHA": 0x48, "PHB": 0x8B, "PHD": 0x0B, "PHK": 0x4B, "PHP": 0x08, "PHX": 0xDA, "PHY": 0x5A,
	"PLA": 0x68, "PLB": 0xAB, "PLD": 0x2B, "PLP": 0x28, "PLX": 0xFA, "PLY": 0x7A,
	"RTI": 0x40, "RTL": 0x6B, "RTS": 0x60,
	"SEC": 0x38, "SED": 0xF8, "SEI": 0x78,
	"STP": 0xDB, "WAI": 0xCB,
	"TAX": 0xAA, "TAY": 0xA8, "TCD": 0x5B, "TCS": 0x1B, "TDC": 0x7B, "TSC": 0x3B,
	"TSX": 0xBA, "TXA": 0x8A, "TXS": 0x9A, "TXY": 0x9B, "TYA": 0x98, "TYX": 0xBB,
	"XBA": 0xEB, "XCE": 0xFB,
}

var branches = map[string]byte{
	"BPL": 0x10, "BMI": 0x30, "BVC": 0x50, "BVS": 0x70,
	"BRA": 0x80, "BCC": 0x90, "BCS": 0xB0, "BNE": 0xD0, "BEQ": 0xF0,
}

// opcodes maps mnemonic -> mode -> opcode byte.
var opcodes = buildOpcodes()

// reverse maps opcode -> first (mnemonic, mode) in sorted mnemonic order.
var reverse = buildReverse()

func buildOpcodes() map[string]map[Mode]byte {
	t := make(map[string]map[Mode]byte)
	add := func(mn string, m Mode, op byte) {
		if t[mn] == nil {
			t[mn] = make(map[Mode]byte)
		}
		t[mn][m] = op
	}

	for mn, base := range map[string]byte{
		"ORA": 0x00, "AND": 0x20, "EOR": 0x40, "ADC": 0x60,
		"STA": 0x80, "LDA": 0xA0, "CMP": 0xC0, "SBC": 0xE0,
	} {
		for m, off := range aluModes {
			if mn == "STA" && (m == ModeImmediate8 || m == ModeImmediate16) {
				continue
			}
			add(mn, m, base+off)
		}
	}
	for mn, base := range map[string]byte{"ASL": 0x00, "ROL": 0x20, "LSR": 0x40, "ROR": 0x60} {
		for m, off := range shiftModes {
			add(mn, m, base+off)
		}
	}
	for mn, op := range implied {
		add(mn, ModeImplied, op)
	}
	for mn, op := range branches {
		add(mn, ModeRelative8, op)
	}

	for _, e := range []struct {
		mn string
		m  Mode
		op byte
	}{
		{"INC", ModeAccumulator, 0x1A}, {"INC", ModeDirect, 0xE6}, {"INC", ModeAbsolute, 0xEE},
		{"INC", ModeDirectX, 0xF6}, {"INC", ModeAbsoluteX, 0xFE},
		{"DEC", ModeAccumulator, 0x3A}, {"DEC", ModeDirect, 0xC6}, {"DEC", ModeAbsolute, 0xCE},
		{"DEC", ModeDirectX, 0xD6}, {"DEC", ModeAbsoluteX, 0xDE},
		{"BIT", ModeDirect, 0x24}, {"BIT", ModeAbsolute, 0x2C}, {"BIT", ModeDirectX, 0x34},
		{"BIT", ModeAbsoluteX, 0x3C}, {"BIT", ModeImmediate8, 0x89}, {"BIT", ModeImmediate16, 0x89},
		{"CPX", ModeImmediate8, 0xE0}, {"CPX", ModeImmediate16, 0xE0}, {"CPX", ModeDirect, 0xE4}, {"CPX", ModeAbsolute, 0xEC},
		{"CPY", ModeImmediate8, 0xC0}, {"CPY", ModeImmediate16, 0xC0}, {"CPY", ModeDirect, 0xC4}, {"CPY", ModeAbsolute, 0xCC},
		{"LDX", ModeImmediate8, 0xA2}, {"LDX", ModeImmediate16, 0xA2}, {"LDX", ModeDirect, 0xA6},
		{"LDX", ModeAbsolute, 0xAE}, {"LDX", ModeDirectY, 0xB6}, {"LDX", ModeAbsoluteY, 0xBE},
		{"LDY", ModeImmediate8, 0xA0}, {"LDY", ModeImmediate16, 0xA0}, {"LDY", ModeDirect, 0xA4},
		{"LDY", ModeAbsolute, 0xAC}, {"LDY", ModeDirectX, 0xB4}, {"LDY", ModeAbsoluteX, 0xBC},
		{"STX", ModeDirect, 0x86}, {"STX", ModeAbsolute, 0x8E}, {"STX", ModeDirectY, 0x96},
		{"STY", ModeDirect, 0x84}, {"STY", ModeAbsolute, 0x8C}, {"STY", ModeDirectX, 0x94},
		{"STZ", ModeDirect, 0x64}, {"STZ", ModeDirectX, 0x74}, {"STZ", ModeAbsolute, 0x9C}, {"STZ", ModeAbsoluteX, 0x9E},
		{"TRB", ModeDirect, 0x14}, {"TRB", ModeAbsolute, 0x1C},
		{"TSB", ModeDirect, 0x04}, {"TSB", ModeAbsolute, 0x0C},
		{"JMP", ModeAbsolute, 0x4C}, {"JMP", ModeLong, 0x5C}, {"JMP", ModeAbsoluteIndirect, 0x6C},
		{"JMP", ModeAbsoluteXIndirect, 0x7C}, {"JMP", ModeAbsoluteIndirectLong, 0xDC},
		{"JML", ModeLong, 0x5C}, {"JML", ModeAbsoluteIndirectLong, 0xDC},
		{"JSR", ModeAbsolute, 0x20}, {"JSR", ModeAbsoluteXIndirect, 0xFC}, {"JSR", ModeLong, 0x22},
		{"JSL", ModeLong, 0x22},
		{"BRL", ModeRelative16, 0x82}, {"PER", ModeRelative16, 0x62},
		{"PEA", ModeAbsolute, 0xF4}, {"PEI", ModeDirectIndirect, 0xD4},
		{"REP", ModeImmediate8, 0xC2}, {"SEP", ModeImmediate8, 0xE2},
		{"BRK", ModeImplied, 0x00}, {"BRK", ModeImmediate8, 0x00},
		{"COP", ModeImmediate8, 0x02}, {"WDM", ModeImmediate8, 0x42},
	} {
		add(e.mn, e.m, e.op)
	}
	return t
}

func buildReverse() [256]struct {
	mnemonic string
	mode     Mode
	ok       bool
} {
	var r [256]struct {
		mnemonic string
		mode     Mode
		ok       bool
	}
	names := make([]string, 0, len(opcodes))
	for mn := range opcodes {
		names = append(names, mn)
	}
	sort.Strings(names)
	for _, mn := range names {
		modes := make([]Mode, 0, len(opcodes[mn]))
		for m := range opcodes[mn] {
			modes = append(modes, m)
		}
		sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
		for _, m := range modes {
			op := opcodes[mn][m]
			if !r[op].ok {
				r[op].mnemonic, r[op].mode, r[op].ok = mn, m, true
			}
		}
	}
	return r
}

// Known reports whether mnemonic is in the opcode table.
func Known(mnemonic string) bool {
	_, ok := opcodes[strings.ToUpper(mnemonic)]
	return ok
}

// Opcode returns the opcode byte for mnemonic in mode.
func Opcode(mnemonic string, mode Mode) (byte, error) {
	modes, ok := opcodes[strings.ToUpper(mnemonic)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMnemonic, mnemonic)
	}
	op, ok := modes[mode]
	if !ok {
		return 0, fmt.Errorf("%w: %s %s", ErrNoMode, strings.ToLower(mnemonic), mode)
	}
	return op, nil
}

// Lookup decodes an opcode byte. Immediate operands are reported as ModeImmediate8;
// the caller decides whether the register width makes them 16-bit.
func Lookup(op byte) (mnemonic string, mode Mode, ok bool) {
	e := reverse[op]
	return e.mnemonic, e.mode, e.ok
}

// MnemonicSize returns the coarse size hint a mnemonic imposes on its operand.
func MnemonicSize(mnemonic string) SizeHint {
	mn := strings.ToUpper(mnemonic)
	if _, ok := branches[mn]; ok {
		return SizeRelByte
	}
	if _, ok := implied[mn]; ok {
		return SizeImplicit
	}

	switch mn {
	case "BRL", "PER":
		return SizeRelWord
	case "JSL":
		return SizeLong
	case "PEA":
		return SizeWord
	case "REP", "SEP", "COP", "WDM", "PEI":
		return SizeByte
	}
	return SizeAny
}

// IsDiverging reports whether an instruction never falls through to the next byte.
func IsDiverging(mnemonic string) bool {
	switch strings.ToUpper(mnemonic) {
	case "BRA", "BRL", "JMP", "JML", "RTS", "RTL", "RTI", "STP":
		return true
	}
	return false
}
