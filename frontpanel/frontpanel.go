// Package frontpanel is the host side of an Opal Kelly FrontPanel USB-FPGA
// bridge, reduced to the wire endpoints.
//
// FrontPanel exposes 32-bit "wires" between the host and the FPGA
// design:
//
// - wire_in: endpoints 0x00...0x1F, written by the host.  Values are
// staged with SetWireInValue and sent to the FPGA together by
// UpdateWireIns.
//
// - wire_out: endpoints 0x20...0x3F, written by the FPGA.  UpdateWireOuts
// latches all of them at once; GetWireOutValue then returns the latched
// value for one endpoint without touching the bus.
//
// The vendor library does the USB work.  It is closed source, so the real
// binding (Open) is only compiled with the "frontpanel" build tag and
// links against libokFrontPanel.  Everywhere else, Loopback simulates a
// board whose firmware mirrors each wire_in onto the wire_out 0x20 above
// it.
package frontpanel

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	WIRE_IN_FIRST  = 0x00 // first wire_in endpoint
	WIRE_IN_LAST   = 0x1F // last wire_in endpoint
	WIRE_OUT_FIRST = 0x20 // first wire_out endpoint
	WIRE_OUT_LAST  = 0x3F // last wire_out endpoint
	WIRE_MIRROR    = WIRE_OUT_FIRST - WIRE_IN_FIRST
	WIRE_MASK_ALL  = 0xFFFFFFFF // mask that updates every bit of a wire_in
)

// Backend names accepted by Dial.
const (
	BackendFrontPanel = "frontpanel"
	BackendLoopback   = "loopback"
)

var (
	// ErrBadEndpoint is returned for an endpoint outside the wire range of
	// the requested direction.
	ErrBadEndpoint = errors.New("bad wire endpoint")

	// ErrNotSupported is returned by Open when the binary was built without
	// the vendor library.
	ErrNotSupported = errors.New("frontpanel support not compiled in")

	// ErrNoDevice is returned when no bridge could be opened.
	ErrNoDevice = errors.New("no frontpanel device")

	// ErrNotConfigured is returned when the FPGA has no FrontPanel-enabled
	// configuration loaded.
	ErrNotConfigured = errors.New("fpga not configured for frontpanel")
)

// Bridge is the register path to the FPGA.
type Bridge interface {
	// SetWireInValue stages val into the bits of wire_in ep selected by mask.
	SetWireInValue(ep uint8, val, mask uint32) error
	// UpdateWireIns sends all staged wire_in values to the FPGA.
	UpdateWireIns() error
	// UpdateWireOuts latches all wire_out values from the FPGA.
	UpdateWireOuts() error
	// GetWireOutValue returns the latched value of wire_out ep.
	GetWireOutValue(ep uint8) (uint32, error)
	Close() error
}

// Device is a Bridge that can also be (re)programmed.
type Device interface {
	Bridge
	LoadDefaultPLLConfiguration() error
	ConfigureFPGA(path string) error
	IsFrontPanelEnabled() bool
	DeviceInfo() (DeviceInfo, error)
}

// DeviceInfo describes the bridge board.
type DeviceInfo struct {
	ProductName  string
	SerialNumber string
	DeviceID     string
	MajorVersion int // bridge firmware version
	MinorVersion int
}

func (i DeviceInfo) String() string {
	return fmt.Sprintf("%s (serial %s, id %s, firmware %d.%d)", i.ProductName, i.SerialNumber, i.DeviceID, i.MajorVersion, i.MinorVersion)
}

// IsWireIn reports whether ep is a wire_in endpoint.
func IsWireIn(ep uint8) bool {
	return ep <= WIRE_IN_LAST
}

// IsWireOut reports whether ep is a wire_out endpoint.
func IsWireOut(ep uint8) bool {
	return ep >= WIRE_OUT_FIRST && ep <= WIRE_OUT_LAST
}

func checkWireIn(ep uint8) error {
	if !IsWireIn(ep) {
		return errors.Wrapf(ErrBadEndpoint, "wire_in 0x%02x", ep)
	}
	return nil
}

func checkWireOut(ep uint8) error {
	if !IsWireOut(ep) {
		return errors.Wrapf(ErrBadEndpoint, "wire_out 0x%02x", ep)
	}
	return nil
}

// Dial opens a device using the named backend.  For the frontpanel backend
// an empty serial selects the first board found.
func Dial(backend, serial string) (Device, error) {
	switch backend {
	case BackendFrontPanel, "":
		return Open(serial)
	case BackendLoopback:
		return NewLoopback(WithSerial(serial)), nil
	}
	return nil, errors.Errorf("unknown backend %q", backend)
}
