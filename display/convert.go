package display

import (
	"fmt"
	"strings"
)

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

// Field extracts the width-bit field of data starting at bit pos.
func Field(data uint64, pos, width int) uint64 {
	return (data >> uint(pos)) & mask(width)
}

// Hex formats v as zero-padded lowercase hex, one digit per 4 bits of width.
func Hex(v uint64, width int) string {
	n := (width + 3) / 4
	return fmt.Sprintf("%0*x", n, v)
}

// ASCII decodes the bytes of v, most significant first, as characters.
// NUL bytes are dropped.
func ASCII(v uint64, width int) string {
	var b strings.Builder
	for i := (width+7)/8 - 1; i >= 0; i-- {
		c := byte(v >> uint(8*i))
		if c != 0 {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ToSigned reads the low width bits of v as a two's complement integer.
func ToSigned(v uint64, width int) int64 {
	v &= mask(width)
	if width < 64 && v >= 1<<uint(width-1) {
		return int64(v) - int64(1)<<uint(width)
	}
	return int64(v)
}

// ToUnsigned returns the width-bit two's complement encoding of v.
func ToUnsigned(v int64, width int) uint64 {
	return uint64(v) & mask(width)
}
