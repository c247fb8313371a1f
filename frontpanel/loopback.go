package frontpanel

import (
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Loopback simulates a FrontPanel board running a firmware that mirrors
// every wire_in at ep onto wire_out ep+0x20.
//
// Wire_outs can also be fixed to a value with WithWireOut or Set, in which
// case the mirror is ignored for that endpoint.  This is how tests provide
// identification registers, ADC readings, or a stuck register.
type Loopback struct {
	mu         sync.Mutex
	info       DeviceInfo
	pending    [WIRE_IN_LAST + 1]uint32 // staged by SetWireInValue
	wireIn     [WIRE_IN_LAST + 1]uint32 // committed by UpdateWireIns
	latched    [WIRE_OUT_LAST + 1]uint32
	fixed      map[uint8]uint32
	bitfile    string
	pllDefault bool
	closed     bool

	// WireInUpdates counts calls to UpdateWireIns.
	WireInUpdates int
	// WireOutUpdates counts calls to UpdateWireOuts.
	WireOutUpdates int
}

// LoopbackOption configures a Loopback.
type LoopbackOption interface {
	applyLoopbackOption(*Loopback)
}

// WithSerialOption sets the serial number reported by DeviceInfo.
type WithSerialOption string

// WithSerial sets the serial number reported by DeviceInfo.
func WithSerial(serial string) WithSerialOption {
	return WithSerialOption(serial)
}

func (o WithSerialOption) applyLoopbackOption(l *Loopback) {
	if o != "" {
		l.info.SerialNumber = string(o)
	}
}

// FixedWire pins a wire_out endpoint to a value.
type FixedWire struct {
	Ep    uint8
	Value uint32
}

// WithWireOut pins wire_out ep to value.
func WithWireOut(ep uint8, value uint32) FixedWire {
	return FixedWire{ep, value}
}

func (o FixedWire) applyLoopbackOption(l *Loopback) {
	l.fixed[o.Ep] = o.Value
}

// NewLoopback returns an unconfigured loopback board.
func NewLoopback(options ...LoopbackOption) *Loopback {
	l := &Loopback{
		info: DeviceInfo{
			ProductName:  "Loopback",
			SerialNumber: "000000000A",
			DeviceID:     "loopback",
			MajorVersion: 1,
		},
		fixed: make(map[uint8]uint32),
	}
	for _, o := range options {
		o.applyLoopbackOption(l)
	}
	return l
}

// Set pins wire_out ep to value.  Takes effect at the next UpdateWireOuts.
func (l *Loopback) Set(ep uint8, value uint32) error {
	if err := checkWireOut(ep); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixed[ep] = value
	return nil
}

// Release unpins wire_out ep so it mirrors its wire_in again.
func (l *Loopback) Release(ep uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fixed, ep)
}

// WireIn returns the committed value of wire_in ep.
func (l *Loopback) WireIn(ep uint8) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !IsWireIn(ep) {
		return 0
	}
	return l.wireIn[ep]
}

// Bitfile returns the path of the last configuration loaded.
func (l *Loopback) Bitfile() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bitfile
}

func (l *Loopback) SetWireInValue(ep uint8, val, mask uint32) error {
	if err := checkWireIn(ep); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrNoDevice
	}
	l.pending[ep] = (l.pending[ep] &^ mask) | (val & mask)
	return nil
}

func (l *Loopback) UpdateWireIns() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrNoDevice
	}
	l.wireIn = l.pending
	l.WireInUpdates++
	return nil
}

func (l *Loopback) UpdateWireOuts() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrNoDevice
	}
	for ep := WIRE_OUT_FIRST; ep <= WIRE_OUT_LAST; ep++ {
		if v, ok := l.fixed[uint8(ep)]; ok {
			l.latched[ep] = v
			continue
		}
		l.latched[ep] = l.wireIn[ep-WIRE_MIRROR]
	}
	l.WireOutUpdates++
	return nil
}

func (l *Loopback) GetWireOutValue(ep uint8) (uint32, error) {
	if err := checkWireOut(ep); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrNoDevice
	}
	return l.latched[ep], nil
}

func (l *Loopback) LoadDefaultPLLConfiguration() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pllDefault = true
	return nil
}

// ConfigureFPGA accepts any readable, non-empty file as a bitstream.
// Loading a configuration resets all wires.
func (l *Loopback) ConfigureFPGA(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "configure fpga")
	}
	if fi.IsDir() || fi.Size() == 0 {
		return errors.Errorf("configure fpga: %s is not a bitstream", path)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bitfile = path
	l.pending = [WIRE_IN_LAST + 1]uint32{}
	l.wireIn = l.pending
	l.latched = [WIRE_OUT_LAST + 1]uint32{}
	glog.V(1).Infof("loopback %s: configured with %s", l.info.SerialNumber, path)
	return nil
}

func (l *Loopback) IsFrontPanelEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bitfile != ""
}

func (l *Loopback) DeviceInfo() (DeviceInfo, error) {
	return l.info, nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

var _ Device = (*Loopback)(nil)
