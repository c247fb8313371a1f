// Package display formats test and register output for the console.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrMismatch is returned by CheckEqual when the values differ.
var ErrMismatch = errors.New("values differ")

// Display prints indented messages, titles and register values.
type Display struct {
	W             io.Writer
	Level         int  // indentation level
	CharSection   byte // separator for titles and subtitles
	NbCharSection int  // separator length
	CharIndent    byte
	NbCharIndent  int // characters per indentation level
}

// New returns a Display writing to w, or to os.Stdout if w is nil.
func New(w io.Writer) *Display {
	if w == nil {
		w = os.Stdout
	}
	return &Display{
		W:             w,
		CharSection:   '*',
		NbCharSection: 70,
		CharIndent:    ' ',
		NbCharIndent:  4,
	}
}

// Indent returns a copy of d one level deeper.
func (d *Display) Indent() *Display {
	c := *d
	c.Level++
	return &c
}

func (d *Display) indent() string {
	return strings.Repeat(string(d.CharIndent), d.NbCharIndent*d.Level)
}

func (d *Display) section() string {
	return d.indent() + strings.Repeat(string(d.CharSection), d.NbCharSection)
}

// Title prints msgs between two separator lines, after a blank line.
func (d *Display) Title(msgs ...string) {
	sep := d.section()
	fmt.Fprintln(d.W)
	fmt.Fprintln(d.W, sep)
	d.Print(msgs...)
	fmt.Fprintln(d.W, sep)
}

// Subtitle prints msgs followed by a separator line, after a blank line.
func (d *Display) Subtitle(msgs ...string) {
	fmt.Fprintln(d.W)
	d.Print(msgs...)
	fmt.Fprintln(d.W, d.section())
}

// Print prints each message on its own indented line.
func (d *Display) Print(msgs ...string) {
	ind := d.indent()
	for _, m := range msgs {
		fmt.Fprintln(d.W, ind+" "+m)
	}
}

// Printf prints one formatted, indented line.
func (d *Display) Printf(format string, args ...interface{}) {
	d.Print(fmt.Sprintf(format, args...))
}

// Register prints an address and its data in hex, with widths in bits.
func (d *Display) Register(addr uint64, addrWidth int, data uint64, dataWidth int) {
	d.Print("addr: 0x"+Hex(addr, addrWidth), "data: 0x"+Hex(data, dataWidth))
}

// BitFromData prints the width-bit field of data starting at bit pos.
func (d *Display) BitFromData(name string, pos, width int, data uint64) {
	d.Bit(name, int64(Field(data, pos, width)), width)
}

// Bit prints a named field value in hex.  Negative values are shown in
// two's complement on width bits.
func (d *Display) Bit(name string, value int64, width int) {
	d.Print(name + ": 0x" + Hex(ToUnsigned(value, width), width))
}

// CheckEqual prints an [OK] or [KO] line for msg and returns ErrMismatch
// if v0 and v1 differ.
func CheckEqual(d *Display, v0, v1 uint32, msg string) error {
	s0, s1 := Hex(uint64(v0), 32), Hex(uint64(v1), 32)
	if v0 != v1 {
		d.Print("[KO]: "+msg, "[check_equal]: value0: 0x"+s0+" != value1: 0x"+s1)
		return errors.Wrap(ErrMismatch, msg)
	}
	d.Print("[OK]: "+msg, "[check_equal]: value0: 0x"+s0+" == value1: 0x"+s1)
	return nil
}
