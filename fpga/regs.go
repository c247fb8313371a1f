// Package fpga gives named access to the registers of the DC-DC
// power-control firmware (dcdc-fw), reached through a FrontPanel bridge.
//
// The firmware exposes its registers as FrontPanel wires:
//
// - wire_in registers (0x00...0x1F) are written by the host: software
// reset, power enables for the four supplies, ADC start, debug control and
// the error/status selector.
//
// - wire_out registers (0x20...0x3F) are read by the host.  Each writable
// register is read back 0x20 above its wire_in address, so the host can
// check what the FPGA actually latched.  The rest are read-only: the
// eight ADC channels, the ADC status, the selected error and status words,
// and the identification registers.
//
// The four supplies are:
//
// - DMX0, DMX1: the two demultiplexer boards
//
// - RAS: the row addressing and synchronisation board
//
// - WFEE: the warm front-end electronics
//
// The table here is fixed by the firmware build; nothing is computed at
// run time.
package fpga

import (
	"sort"
)

// wire_in addresses
const (
	WI_CTRL       = 0x00 // bit[0]: software reset
	WI_POWER_CTRL = 0x01 // bits[3:0]: WFEE, RAS, DMX1, DMX0 power; 1: up, 0: down
	WI_ADC_CTRL   = 0x04 // bit[0]: start ADC acquisition
	WI_DEBUG_CTRL = 0x18 // bit[0]: debug pulse; bit[1]: reset internal errors
	WI_ERROR_SEL  = 0x19 // selects the word shown in ERRORS and STATUS
)

// wire_out addresses
const (
	WO_CTRL          = 0x20 // readback of WI_CTRL
	WO_POWER_CTRL    = 0x21 // readback of WI_POWER_CTRL
	WO_ADC_CTRL      = 0x24 // readback of WI_ADC_CTRL
	WO_ADC_STATUS    = 0x25 // ADC acquisition status
	WO_ADC0          = 0x30 // first ADC channel; channel n is at WO_ADC0 + n
	WO_ADC7          = 0x37 // last ADC channel
	WO_DEBUG_CTRL    = 0x38 // readback of WI_DEBUG_CTRL
	WO_ERROR_SEL     = 0x39 // readback of WI_ERROR_SEL
	WO_ERRORS        = 0x3A // error word picked by ERROR_SEL
	WO_STATUS        = 0x3B // status word picked by ERROR_SEL
	WO_HARDWARE_ID   = 0x3D // board hardware identifier
	WO_FIRMWARE_NAME = 0x3E // firmware name, 4 ASCII characters
	WO_FIRMWARE_ID   = 0x3F // firmware version
)

// bit positions
const (
	CTRL_RST_BIT         = 0 // CTRL: software reset
	POWER_DMX0_BIT       = 0 // POWER_CTRL: DMX0 supply
	POWER_DMX1_BIT       = 1 // POWER_CTRL: DMX1 supply
	POWER_RAS_BIT        = 2 // POWER_CTRL: RAS supply
	POWER_WFEE_BIT       = 3 // POWER_CTRL: WFEE supply
	ADC_START_BIT        = 0 // ADC_CTRL: start acquisition
	DEBUG_PULSE_BIT      = 0 // DEBUG_CTRL: 1: delay error, 0: latch error
	DEBUG_RST_STATUS_BIT = 1 // DEBUG_CTRL: reset internal errors
)

const (
	ADC_CHANNELS = 8  // number of ADC channels
	ADC_BITS     = 12 // significant bits in an ADC register
	REG_BITS     = 32 // width of every wire
	ADDR_BITS    = 8  // width of a wire address
	POWER_MASK   = 0xF
)

// Dir is the direction of a register.
type Dir int

const (
	WireIn  Dir = iota // host to FPGA
	WireOut            // FPGA to host
)

func (d Dir) String() string {
	if d == WireIn {
		return "wire_in"
	}
	return "wire_out"
}

// Register describes one named wire.
type Register struct {
	Name string
	Addr uint8
	Dir  Dir
	Desc string
}

var wireIns = []Register{
	{"CTRL", WI_CTRL, WireIn, "Control: bit[0]: software reset"},
	{"POWER_CTRL", WI_POWER_CTRL, WireIn, "Power control: bit[0]: DMX0; bit[1]: DMX1; bit[2]: RAS; bit[3]: WFEE; 1: power up, 0: power down"},
	{"ADC_CTRL", WI_ADC_CTRL, WireIn, "ADC control: bit[0]: start acquisition"},
	{"DEBUG_CTRL", WI_DEBUG_CTRL, WireIn, "Debug control: bit[0]: 1: delay error, 0: latch error; bit[1]: reset internal errors"},
	{"ERROR_SEL", WI_ERROR_SEL, WireIn, "Error select: picks the internal error/status word read from ERRORS and STATUS"},
}

var wireOuts = []Register{
	{"CTRL", WO_CTRL, WireOut, "Control readback"},
	{"POWER_CTRL", WO_POWER_CTRL, WireOut, "Power control readback"},
	{"ADC_CTRL", WO_ADC_CTRL, WireOut, "ADC control readback"},
	{"ADC_STATUS", WO_ADC_STATUS, WireOut, "ADC acquisition status"},
	{"ADC0", WO_ADC0 + 0, WireOut, "ADC channel 0; valid after an acquisition"},
	{"ADC1", WO_ADC0 + 1, WireOut, "ADC channel 1; valid after an acquisition"},
	{"ADC2", WO_ADC0 + 2, WireOut, "ADC channel 2; valid after an acquisition"},
	{"ADC3", WO_ADC0 + 3, WireOut, "ADC channel 3; valid after an acquisition"},
	{"ADC4", WO_ADC0 + 4, WireOut, "ADC channel 4; valid after an acquisition"},
	{"ADC5", WO_ADC0 + 5, WireOut, "ADC channel 5; valid after an acquisition"},
	{"ADC6", WO_ADC0 + 6, WireOut, "ADC channel 6; valid after an acquisition"},
	{"ADC7", WO_ADC0 + 7, WireOut, "ADC channel 7; valid after an acquisition"},
	{"DEBUG_CTRL", WO_DEBUG_CTRL, WireOut, "Debug control readback"},
	{"ERROR_SEL", WO_ERROR_SEL, WireOut, "Error select readback"},
	{"ERRORS", WO_ERRORS, WireOut, "Internal errors selected by ERROR_SEL"},
	{"STATUS", WO_STATUS, WireOut, "Internal status selected by ERROR_SEL"},
	{"HARDWARE_ID", WO_HARDWARE_ID, WireOut, "Hardware identifier"},
	{"FIRMWARE_NAME", WO_FIRMWARE_NAME, WireOut, "Firmware name (ASCII)"},
	{"FIRMWARE_ID", WO_FIRMWARE_ID, WireOut, "Firmware identifier"},
}

var (
	wireInByName  = index(wireIns)
	wireOutByName = index(wireOuts)
)

func index(regs []Register) map[string]Register {
	m := make(map[string]Register, len(regs))
	for _, r := range regs {
		m[r.Name] = r
	}
	return m
}

// LookupWireIn returns the wire_in register with the given name.
func LookupWireIn(name string) (Register, bool) {
	r, ok := wireInByName[name]
	return r, ok
}

// LookupWireOut returns the wire_out register with the given name.
func LookupWireOut(name string) (Register, bool) {
	r, ok := wireOutByName[name]
	return r, ok
}

// WireIns returns the wire_in registers in address order.
func WireIns() []Register {
	return sorted(wireIns)
}

// WireOuts returns the wire_out registers in address order.
func WireOuts() []Register {
	return sorted(wireOuts)
}

func sorted(regs []Register) []Register {
	s := append([]Register(nil), regs...)
	sort.Slice(s, func(i, j int) bool { return s[i].Addr < s[j].Addr })
	return s
}

// ADCAddr returns the wire_out address of ADC channel ch.
func ADCAddr(ch int) (uint8, bool) {
	if ch < 0 || ch >= ADC_CHANNELS {
		return 0, false
	}
	return uint8(WO_ADC0 + ch), true
}

// Power is a set of supply enables, laid out as in POWER_CTRL.
type Power uint32

const (
	PWR_DMX0 Power = 1 << POWER_DMX0_BIT
	PWR_DMX1 Power = 1 << POWER_DMX1_BIT
	PWR_RAS  Power = 1 << POWER_RAS_BIT
	PWR_WFEE Power = 1 << POWER_WFEE_BIT
	PWR_NONE Power = 0
	PWR_ALL        = PWR_DMX0 | PWR_DMX1 | PWR_RAS | PWR_WFEE
)

// PowerOf packs the four enables into a Power.
func PowerOf(dmx0, dmx1, ras, wfee bool) Power {
	var p Power
	if dmx0 {
		p |= PWR_DMX0
	}
	if dmx1 {
		p |= PWR_DMX1
	}
	if ras {
		p |= PWR_RAS
	}
	if wfee {
		p |= PWR_WFEE
	}
	return p
}

// Has reports whether every supply in q is enabled in p.
func (p Power) Has(q Power) bool {
	return p&q == q
}

func (p Power) String() string {
	if p&PWR_ALL == 0 {
		return "off"
	}
	s := ""
	for _, f := range []struct {
		p    Power
		name string
	}{{PWR_DMX0, "DMX0"}, {PWR_DMX1, "DMX1"}, {PWR_RAS, "RAS"}, {PWR_WFEE, "WFEE"}} {
		if p.Has(f.p) {
			if s != "" {
				s += "|"
			}
			s += f.name
		}
	}
	return s
}
