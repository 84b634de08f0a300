package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOverflow is returned when a value does not fit its target field.
var ErrOverflow = errors.New("value does not fit field")

// PutUint24 stores v as a 3-byte little-endian value.
func PutUint24(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Uint24 reads a 3-byte little-endian value.
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// FieldFits reports whether v can be stored in a field of the given width.
// Both the signed and the unsigned interpretation are accepted, so -1 fits a byte.
func FieldFits(width int, v int64) bool {
	if width <= 0 || width > 3 {
		return false
	}
	bits := uint(width * 8)
	return v >= -(1<<(bits-1)) && v < 1<<bits
}

// PutField writes v into b as a little-endian field of the given size.
// Relative sizes are rejected here; use PutRel for displacements.
func PutField(b []byte, size SizeHint, v int64) error {
	w := size.Width()
	if w == 0 || size.IsRelative() {
		return fmt.Errorf("cannot write %s field", size)
	}
	if len(b) < w {
		return fmt.Errorf("%s field needs %d bytes, have %d", size, w, len(b))
	}
	if !FieldFits(w, v) {
		return fmt.Errorf("%w: %d in %d-byte %s field", ErrOverflow, v, w, size)
	}

	switch w {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 3:
		PutUint24(b, uint32(v))
	}
	return nil
}

// RelFits reports whether disp is in range for a relative field of the given size.
func RelFits(size SizeHint, disp int64) bool {
	switch size {
	case SizeRelByte:
		return disp >= -128 && disp <= 127
	case SizeRelWord:
		return disp >= -32768 && disp <= 32767
	}
	return false
}

// PutRel writes a signed displacement as a 1- or 2-byte little-endian field.
func PutRel(b []byte, size SizeHint, disp int64) error {
	if !size.IsRelative() {
		return fmt.Errorf("%s is not a relative size", size)
	}
	if len(b) < size.Width() {
		return fmt.Errorf("%s field needs %d bytes, have %d", size, size.Width(), len(b))
	}
	if !RelFits(size, disp) {
		return fmt.Errorf("%w: displacement %d in %d-byte %s field", ErrOverflow, disp, size.Width(), size)
	}

	if size == SizeRelByte {
		b[0] = byte(int8(disp))
		return nil
	}
	binary.LittleEndian.PutUint16(b, uint16(int16(disp)))
	return nil
}
