package cpu

// Mode is a concrete 65816 addressing mode.
type Mode int

// Addressing modes. Direct is the direct page, Long is a 24-bit address.
const (
	ModeImplied Mode = iota
	ModeAccumulator
	ModeImmediate8
	ModeImmediate16
	// dp, dp,X, dp,Y
	ModeDirect
	ModeDirectX
	ModeDirectY
	// (dp), (dp,X), (dp),Y
	ModeDirectIndirect
	ModeDirectXIndirect
	ModeDirectIndirectY
	// [dp], [dp],Y
	ModeDirectIndirectLong
	ModeDirectIndirectLongY
	// abs, abs,X, abs,Y
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	// (abs), (abs,X), [abs]
	ModeAbsoluteIndirect
	ModeAbsoluteXIndirect
	ModeAbsoluteIndirectLong
	// long, long,X
	ModeLong
	ModeLongX
	// sr,S and (sr,S),Y
	ModeStackRelative
	ModeStackRelativeIndirectY
	// 8-bit and 16-bit branch displacement
	ModeRelative8
	ModeRelative16
)

var modeInfo = [...]struct {
	name   string
	size   SizeHint
	format string
}{
	ModeImplied:                {"implied", SizeImplicit, ""},
	ModeAccumulator:            {"accumulator", SizeImplicit, "a"},
	ModeImmediate8:             {"immediate8", SizeByte, "#%s"},
	ModeImmediate16:            {"immediate16", SizeWord, "#%s"},
	ModeDirect:                 {"direct", SizeByte, "%s"},
	ModeDirectX:                {"direct,x", SizeByte, "%s,x"},
	ModeDirectY:                {"direct,y", SizeByte, "%s,y"},
	ModeDirectIndirect:         {"(direct)", SizeByte, "(%s)"},
	ModeDirectXIndirect:        {"(direct,x)", SizeByte, "(%s,x)"},
	ModeDirectIndirectY:        {"(direct),y", SizeByte, "(%s),y"},
	ModeDirectIndirectLong:     {"[direct]", SizeByte, "[%s]"},
	ModeDirectIndirectLongY:    {"[direct],y", SizeByte, "[%s],y"},
	ModeAbsolute:               {"absolute", SizeWord, "%s"},
	ModeAbsoluteX:              {"absolute,x", SizeWord, "%s,x"},
	ModeAbsoluteY:              {"absolute,y", SizeWord, "%s,y"},
	ModeAbsoluteIndirect:       {"(absolute)", SizeWord, "(%s)"},
	ModeAbsoluteXIndirect:      {"(absolute,x)", SizeWord, "(%s,x)"},
	ModeAbsoluteIndirectLong:   {"[absolute]", SizeWord, "[%s]"},
	ModeLong:                   {"long", SizeLong, "%s"},
	ModeLongX:                  {"long,x", SizeLong, "%s,x"},
	ModeStackRelative:          {"stack", SizeByte, "%s,s"},
	ModeStackRelativeIndirectY: {"(stack),y", SizeByte, "(%s,s),y"},
	ModeRelative8:              {"relative8", SizeRelByte, "%s"},
	ModeRelative16:             {"relative16", SizeRelWord, "%s"},
}

func (m Mode) valid() bool {
	return m >= 0 && int(m) < len(modeInfo)
}

func (m Mode) String() string {
	if !m.valid() {
		return "invalid"
	}
	return modeInfo[m].name
}

// Size returns the operand size class of the mode.
func (m Mode) Size() SizeHint {
	if !m.valid() {
		return SizeAny
	}
	return modeInfo[m].size
}

// OperandWidth returns the number of operand bytes following the opcode.
func (m Mode) OperandWidth() int {
	return m.Size().Width()
}

// Format returns a printf pattern rendering an operand in this mode.
func (m Mode) Format() string {
	if !m.valid() {
		return "%s"
	}
	return modeInfo[m].format
}
