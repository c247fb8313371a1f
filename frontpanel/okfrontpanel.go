//go:build frontpanel && cgo

package frontpanel

/*
#cgo LDFLAGS: -lokFrontPanel
#include <stdint.h>
#include <stdlib.h>
#include "okFrontPanelDLL.h"

static int fp_set_wire_in(okFrontPanel_HANDLE h, int ep, uint32_t val, uint32_t mask) {
	return (int)okFrontPanel_SetWireInValue(h, ep, val, mask);
}
static int fp_update_wire_ins(okFrontPanel_HANDLE h) {
	return (int)okFrontPanel_UpdateWireIns(h);
}
static int fp_update_wire_outs(okFrontPanel_HANDLE h) {
	return (int)okFrontPanel_UpdateWireOuts(h);
}
static uint32_t fp_get_wire_out(okFrontPanel_HANDLE h, int ep) {
	return (uint32_t)okFrontPanel_GetWireOutValue(h, ep);
}
static int fp_is_frontpanel_enabled(okFrontPanel_HANDLE h) {
	return okFrontPanel_IsFrontPanelEnabled(h) ? 1 : 0;
}
*/
import "C"

import (
	"sync"
	"unsafe"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	maxSerialLength   = 10  // OK_MAX_SERIALNUMBER_LENGTH
	maxDeviceIDLength = 32  // OK_MAX_DEVICEID_LENGTH
	maxModelLength    = 128 // OK_MAX_BOARD_MODEL_STRING_LENGTH
)

// FrontPanel is an open Opal Kelly board driven through libokFrontPanel.
type FrontPanel struct {
	mu  sync.Mutex
	hnd C.okFrontPanel_HANDLE
}

// okError converts a vendor error code to an error; 0 is ok_NoError.
func okError(op string, code C.int) error {
	if code == 0 {
		return nil
	}
	return errors.Errorf("%s: frontpanel error %d", op, int(code))
}

// Open opens the board with the given serial number, or the first board
// found if serial is empty.
func Open(serial string) (Device, error) {
	hnd := C.okFrontPanel_Construct()
	if hnd == nil {
		return nil, errors.Wrap(ErrNoDevice, "construct handle")
	}
	cs := C.CString(serial)
	defer C.free(unsafe.Pointer(cs))
	if code := C.int(C.okFrontPanel_OpenBySerial(hnd, cs)); code != 0 {
		C.okFrontPanel_Destruct(hnd)
		return nil, errors.Wrapf(ErrNoDevice, "open serial %q: error %d", serial, int(code))
	}
	fp := &FrontPanel{hnd: hnd}
	glog.V(1).Infof("frontpanel: opened %q", serial)
	return fp, nil
}

func (fp *FrontPanel) SetWireInValue(ep uint8, val, mask uint32) error {
	if err := checkWireIn(ep); err != nil {
		return err
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return okError("set wire_in", C.fp_set_wire_in(fp.hnd, C.int(ep), C.uint32_t(val), C.uint32_t(mask)))
}

func (fp *FrontPanel) UpdateWireIns() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return okError("update wire_ins", C.fp_update_wire_ins(fp.hnd))
}

func (fp *FrontPanel) UpdateWireOuts() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return okError("update wire_outs", C.fp_update_wire_outs(fp.hnd))
}

func (fp *FrontPanel) GetWireOutValue(ep uint8) (uint32, error) {
	if err := checkWireOut(ep); err != nil {
		return 0, err
	}
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return uint32(C.fp_get_wire_out(fp.hnd, C.int(ep))), nil
}

func (fp *FrontPanel) LoadDefaultPLLConfiguration() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return okError("load default pll", C.int(C.okFrontPanel_LoadDefaultPLLConfiguration(fp.hnd)))
}

func (fp *FrontPanel) ConfigureFPGA(path string) error {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	fp.mu.Lock()
	defer fp.mu.Unlock()
	glog.V(1).Infof("frontpanel: configuring with %s", path)
	return okError("configure fpga", C.int(C.okFrontPanel_ConfigureFPGA(fp.hnd, cs)))
}

func (fp *FrontPanel) IsFrontPanelEnabled() bool {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return C.fp_is_frontpanel_enabled(fp.hnd) == 1
}

func (fp *FrontPanel) DeviceInfo() (DeviceInfo, error) {
	var (
		serial [maxSerialLength + 1]C.char
		id     [maxDeviceIDLength + 1]C.char
		model  [maxModelLength + 1]C.char
	)
	fp.mu.Lock()
	defer fp.mu.Unlock()
	C.okFrontPanel_GetSerialNumber(fp.hnd, &serial[0])
	C.okFrontPanel_GetDeviceID(fp.hnd, &id[0])
	C.okFrontPanel_GetBoardModelString(fp.hnd, C.okFrontPanel_GetBoardModel(fp.hnd), &model[0])
	return DeviceInfo{
		ProductName:  C.GoString(&model[0]),
		SerialNumber: C.GoString(&serial[0]),
		DeviceID:     C.GoString(&id[0]),
		MajorVersion: int(C.okFrontPanel_GetDeviceMajorVersion(fp.hnd)),
		MinorVersion: int(C.okFrontPanel_GetDeviceMinorVersion(fp.hnd)),
	}, nil
}

// Close releases the board.  The FPGA keeps its configuration.
func (fp *FrontPanel) Close() error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.hnd == nil {
		return nil
	}
	C.okFrontPanel_Close(fp.hnd)
	C.okFrontPanel_Destruct(fp.hnd)
	fp.hnd = nil
	return nil
}

var _ Device = (*FrontPanel)(nil)
