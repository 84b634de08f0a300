package cpu

// SizeHint classifies the width and relativity of an instruction operand.
type SizeHint int

const (
	// SizeAny is the zero value and imposes no constraint.
	SizeAny SizeHint = iota
	// SizeImplicit marks operands whose width never needs disambiguation (register-only forms).
	SizeImplicit
	// SizeByte is an 8-bit field.
	SizeByte
	// SizeWord is a 16-bit little-endian field.
	SizeWord
	// SizeLong is a 24-bit little-endian field.
	SizeLong
	// SizeRelByte is a signed 8-bit displacement from the byte after the operand.
	SizeRelByte
	// SizeRelWord is a signed 16-bit displacement from the byte after the operand.
	SizeRelWord
)

var sizeNames = [...]string{"any", "implicit", "byte", "word", "long", "relbyte", "relword"}

func (s SizeHint) String() string {
	if s < 0 || int(s) >= len(sizeNames) {
		return "invalid"
	}
	return sizeNames[s]
}

// Width returns the field width in bytes, or 0 for sizes without one.
func (s SizeHint) Width() int {
	switch s {
	case SizeByte, SizeRelByte:
		return 1
	case SizeWord, SizeRelWord:
		return 2
	case SizeLong:
		return 3
	}
	return 0
}

// IsRelative reports whether s is a branch displacement.
func (s SizeHint) IsRelative() bool {
	return s == SizeRelByte || s == SizeRelWord
}

// And narrows s by other. SizeAny on either side yields the other side; otherwise
// both must agree. The second result is false when the sizes conflict.
func (s SizeHint) And(other SizeHint) (SizeHint, bool) {
	switch {
	case other == SizeAny || other == s:
		return s, true
	case s == SizeAny:
		return other, true
	}
	return SizeAny, false
}
