package fpga

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/display"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/pkg/errors"
)

// ErrUnknownRegister is returned for a register name not in the table.
var ErrUnknownRegister = errors.New("unknown register")

// Board is a DC-DC firmware reached through a FrontPanel bridge.
type Board struct {
	bridge frontpanel.Bridge

	// Disp receives a register dump of every access when Verbosity >= 1.
	// May be nil.
	Disp      *display.Display
	Verbosity int

	// ErrorSelectors is the number of ERROR_SEL values walked by
	// CheckInternalErrors.
	ErrorSelectors int
}

// New returns a Board using bridge.  The bridge stays owned by the caller.
func New(bridge frontpanel.Bridge) *Board {
	return &Board{bridge: bridge, ErrorSelectors: 1}
}

// Bridge returns the underlying bridge.
func (b *Board) Bridge() frontpanel.Bridge {
	return b.bridge
}

// Configure loads the PLL defaults, downloads the bitstream in path, and
// checks that the new configuration speaks FrontPanel.
func Configure(dev frontpanel.Device, path string) error {
	if err := dev.LoadDefaultPLLConfiguration(); err != nil {
		return errors.Wrap(err, "load default PLL configuration")
	}
	if err := dev.ConfigureFPGA(path); err != nil {
		return errors.Wrapf(err, "configure fpga with %s", path)
	}
	if !dev.IsFrontPanelEnabled() {
		return errors.Wrapf(frontpanel.ErrNotConfigured, "%s", path)
	}
	glog.V(1).Infof("fpga configured with %s", path)
	return nil
}

func (b *Board) trace(r Register, v uint32) {
	glog.V(2).Infof("%s %s addr=0x%02x data=0x%08x", r.Dir, r.Name, r.Addr, v)
	if b.Verbosity >= 1 && b.Disp != nil {
		b.Disp.Register(uint64(r.Addr), ADDR_BITS, uint64(v), REG_BITS)
	}
}

func (b *Board) write(r Register, v uint32) error {
	if err := b.bridge.SetWireInValue(r.Addr, v, frontpanel.WIRE_MASK_ALL); err != nil {
		return errors.Wrapf(err, "set %s (0x%02x)", r.Name, r.Addr)
	}
	if err := b.bridge.UpdateWireIns(); err != nil {
		return errors.Wrapf(err, "set %s (0x%02x)", r.Name, r.Addr)
	}
	b.trace(r, v)
	return nil
}

func (b *Board) read(r Register) (uint32, error) {
	if err := b.bridge.UpdateWireOuts(); err != nil {
		return 0, errors.Wrapf(err, "get %s (0x%02x)", r.Name, r.Addr)
	}
	v, err := b.bridge.GetWireOutValue(r.Addr)
	if err != nil {
		return 0, errors.Wrapf(err, "get %s (0x%02x)", r.Name, r.Addr)
	}
	b.trace(r, v)
	return v, nil
}

func (b *Board) setIn(name string, v uint32) error {
	return b.write(wireInByName[name], v)
}

func (b *Board) getOut(name string) (uint32, error) {
	return b.read(wireOutByName[name])
}

func bit(on bool, pos uint) uint32 {
	if on {
		return 1 << pos
	}
	return 0
}

// SetCtrl writes the software reset bit of CTRL.
func (b *Board) SetCtrl(rst bool) error {
	return b.setIn("CTRL", bit(rst, CTRL_RST_BIT))
}

// SetPowerCtrl switches the four supplies.
func (b *Board) SetPowerCtrl(p Power) error {
	return b.setIn("POWER_CTRL", uint32(p&PWR_ALL))
}

// SetADCCtrl writes the ADC start bit.
func (b *Board) SetADCCtrl(start bool) error {
	return b.setIn("ADC_CTRL", bit(start, ADC_START_BIT))
}

// StartADC pulses the ADC start bit.  ADC values are valid once the
// acquisition completes, which takes up to a second.
func (b *Board) StartADC() error {
	if err := b.SetADCCtrl(true); err != nil {
		return err
	}
	return b.SetADCCtrl(false)
}

// SetDebugCtrl writes DEBUG_CTRL.  rstStatus clears the internal errors;
// debugPulse chooses delayed (true) or latched (false) errors.
func (b *Board) SetDebugCtrl(rstStatus, debugPulse bool) error {
	return b.setIn("DEBUG_CTRL", bit(rstStatus, DEBUG_RST_STATUS_BIT)|bit(debugPulse, DEBUG_PULSE_BIT))
}

// SetErrorSel selects the word returned by Errors and Status.
func (b *Board) SetErrorSel(sel uint32) error {
	return b.setIn("ERROR_SEL", sel)
}

func (b *Board) Ctrl() (uint32, error)      { return b.getOut("CTRL") }
func (b *Board) ADCCtrl() (uint32, error)   { return b.getOut("ADC_CTRL") }
func (b *Board) ADCStatus() (uint32, error) { return b.getOut("ADC_STATUS") }
func (b *Board) DebugCtrl() (uint32, error) { return b.getOut("DEBUG_CTRL") }
func (b *Board) ErrorSel() (uint32, error)  { return b.getOut("ERROR_SEL") }

// PowerCtrl returns the POWER_CTRL readback.
func (b *Board) PowerCtrl() (uint32, error) { return b.getOut("POWER_CTRL") }

// Power returns the supplies the FPGA reports as switched on.
func (b *Board) Power() (Power, error) {
	v, err := b.PowerCtrl()
	return Power(v) & PWR_ALL, err
}

// Errors returns the internal error word picked by ERROR_SEL.
func (b *Board) Errors() (uint32, error) { return b.getOut("ERRORS") }

// Status returns the internal status word picked by ERROR_SEL.
func (b *Board) Status() (uint32, error) { return b.getOut("STATUS") }

func (b *Board) HardwareID() (uint32, error)   { return b.getOut("HARDWARE_ID") }
func (b *Board) FirmwareName() (uint32, error) { return b.getOut("FIRMWARE_NAME") }
func (b *Board) FirmwareID() (uint32, error)   { return b.getOut("FIRMWARE_ID") }

// ADC returns the last acquired value of channel ch.
// Call StartADC first.
func (b *Board) ADC(ch int) (uint32, error) {
	addr, ok := ADCAddr(ch)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownRegister, "ADC channel %d", ch)
	}
	return b.read(Register{Name: fmt.Sprintf("ADC%d", ch), Addr: addr, Dir: WireOut})
}

// ADCs returns all channels from a single wire_out update.
func (b *Board) ADCs() (vals [ADC_CHANNELS]uint32, err error) {
	if err = b.bridge.UpdateWireOuts(); err != nil {
		return vals, errors.Wrap(err, "get ADCs")
	}
	for ch := range vals {
		addr, _ := ADCAddr(ch)
		if vals[ch], err = b.bridge.GetWireOutValue(addr); err != nil {
			return vals, errors.Wrapf(err, "get ADC%d (0x%02x)", ch, addr)
		}
		b.trace(Register{Name: fmt.Sprintf("ADC%d", ch), Addr: addr, Dir: WireOut}, vals[ch])
	}
	return vals, nil
}

// SetWireInByName writes v to the named wire_in register.
func (b *Board) SetWireInByName(name string, v uint32) error {
	r, ok := LookupWireIn(name)
	if !ok {
		return errors.Wrapf(ErrUnknownRegister, "wire_in %q", name)
	}
	return b.write(r, v)
}

// WireOutByName reads the named wire_out register.
func (b *Board) WireOutByName(name string) (uint32, error) {
	r, ok := LookupWireOut(name)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownRegister, "wire_out %q", name)
	}
	return b.read(r)
}

// Ident is the content of the identification registers.
type Ident struct {
	HardwareID   uint32
	FirmwareName uint32
	FirmwareID   uint32
}

// Name returns the firmware name as text.
func (id Ident) Name() string {
	return display.ASCII(uint64(id.FirmwareName), REG_BITS)
}

func (id Ident) String() string {
	return fmt.Sprintf("hardware 0x%08x, firmware %q (0x%08x) id 0x%08x", id.HardwareID, id.Name(), id.FirmwareName, id.FirmwareID)
}

// Identify reads the identification registers.
func (b *Board) Identify() (id Ident, err error) {
	if id.HardwareID, err = b.HardwareID(); err != nil {
		return
	}
	if id.FirmwareName, err = b.FirmwareName(); err != nil {
		return
	}
	id.FirmwareID, err = b.FirmwareID()
	return
}

// InternalError is one ERROR_SEL value with its error and status words.
type InternalError struct {
	Sel    uint32
	Errors uint32
	Status uint32
}

// CheckInternalErrors walks ERROR_SEL over 0...ErrorSelectors-1 and reads
// the error and status words of each.  It returns every word pair read and
// the number of selectors with a non-zero error word.  ERROR_SEL is left
// at 0.
func (b *Board) CheckInternalErrors() (words []InternalError, count int, err error) {
	n := b.ErrorSelectors
	if n < 1 {
		n = 1
	}
	for sel := 0; sel < n; sel++ {
		w := InternalError{Sel: uint32(sel)}
		if err = b.SetErrorSel(w.Sel); err != nil {
			return
		}
		if w.Errors, err = b.Errors(); err != nil {
			return
		}
		if w.Status, err = b.Status(); err != nil {
			return
		}
		if w.Errors != 0 {
			count++
			glog.Warningf("internal error: sel %d errors 0x%08x status 0x%08x", sel, w.Errors, w.Status)
		}
		words = append(words, w)
	}
	if n > 1 {
		err = b.SetErrorSel(0)
	}
	return
}

// ResetInternalErrors pulses the DEBUG_CTRL reset bit, keeping debugPulse.
func (b *Board) ResetInternalErrors(debugPulse bool) error {
	if err := b.SetDebugCtrl(true, debugPulse); err != nil {
		return err
	}
	return b.SetDebugCtrl(false, debugPulse)
}
