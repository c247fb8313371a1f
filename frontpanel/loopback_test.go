package frontpanel_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readOut(t *testing.T, l *frontpanel.Loopback, ep uint8) uint32 {
	require.Nil(t, l.UpdateWireOuts())
	v, err := l.GetWireOutValue(ep)
	require.Nil(t, err)
	return v
}

func TestLoopbackMirror(t *testing.T) {
	l := frontpanel.NewLoopback()
	defer l.Close()

	require.Nil(t, l.SetWireInValue(0x01, 0xBCDEFEA0, frontpanel.WIRE_MASK_ALL))
	// staged only
	assert.Equal(t, uint32(0), readOut(t, l, 0x21))

	require.Nil(t, l.UpdateWireIns())
	assert.Equal(t, uint32(0xBCDEFEA0), l.WireIn(0x01))
	assert.Equal(t, uint32(0xBCDEFEA0), readOut(t, l, 0x21))
	assert.Equal(t, uint32(0), readOut(t, l, 0x20))
	assert.Equal(t, 1, l.WireInUpdates)
}

func TestLoopbackMask(t *testing.T) {
	l := frontpanel.NewLoopback()

	require.Nil(t, l.SetWireInValue(0x18, 0xFFFF0000, frontpanel.WIRE_MASK_ALL))
	require.Nil(t, l.SetWireInValue(0x18, 0x000000AB, 0x000000FF))
	require.Nil(t, l.UpdateWireIns())
	assert.Equal(t, uint32(0xFFFF00AB), readOut(t, l, 0x38))

	require.Nil(t, l.SetWireInValue(0x18, 0, 0xFF000000))
	require.Nil(t, l.UpdateWireIns())
	assert.Equal(t, uint32(0x00FF00AB), readOut(t, l, 0x38))
}

func TestLoopbackLatch(t *testing.T) {
	l := frontpanel.NewLoopback()

	require.Nil(t, l.SetWireInValue(0x19, 7, frontpanel.WIRE_MASK_ALL))
	require.Nil(t, l.UpdateWireIns())
	require.Nil(t, l.UpdateWireOuts())

	require.Nil(t, l.SetWireInValue(0x19, 9, frontpanel.WIRE_MASK_ALL))
	require.Nil(t, l.UpdateWireIns())

	// no UpdateWireOuts yet, so the old value is still latched
	v, err := l.GetWireOutValue(0x39)
	require.Nil(t, err)
	assert.Equal(t, uint32(7), v)
	assert.Equal(t, uint32(9), readOut(t, l, 0x39))
}

func TestLoopbackFixed(t *testing.T) {
	l := frontpanel.NewLoopback(
		frontpanel.WithWireOut(0x3E, 0x44434443),
		frontpanel.WithSerial("1740000JJK"),
	)

	assert.Equal(t, uint32(0x44434443), readOut(t, l, 0x3E))

	require.Nil(t, l.Set(0x20, 0xDEAD))
	require.Nil(t, l.SetWireInValue(0x00, 0x1234, frontpanel.WIRE_MASK_ALL))
	require.Nil(t, l.UpdateWireIns())
	assert.Equal(t, uint32(0xDEAD), readOut(t, l, 0x20))

	l.Release(0x20)
	assert.Equal(t, uint32(0x1234), readOut(t, l, 0x20))

	info, err := l.DeviceInfo()
	require.Nil(t, err)
	assert.Equal(t, "1740000JJK", info.SerialNumber)
	assert.Contains(t, info.String(), "1740000JJK")
}

func TestLoopbackBadEndpoint(t *testing.T) {
	l := frontpanel.NewLoopback()

	err := l.SetWireInValue(0x20, 1, frontpanel.WIRE_MASK_ALL)
	assert.True(t, errors.Is(err, frontpanel.ErrBadEndpoint))

	_, err = l.GetWireOutValue(0x1F)
	assert.True(t, errors.Is(err, frontpanel.ErrBadEndpoint))

	_, err = l.GetWireOutValue(0x40)
	assert.True(t, errors.Is(err, frontpanel.ErrBadEndpoint))

	err = l.Set(0x05, 1)
	assert.True(t, errors.Is(err, frontpanel.ErrBadEndpoint))
}

func TestLoopbackConfigure(t *testing.T) {
	l := frontpanel.NewLoopback()
	dir := t.TempDir()

	assert.False(t, l.IsFrontPanelEnabled())
	assert.NotNil(t, l.ConfigureFPGA(filepath.Join(dir, "missing.bit")))
	assert.NotNil(t, l.ConfigureFPGA(dir))

	empty := filepath.Join(dir, "empty.bit")
	require.Nil(t, os.WriteFile(empty, nil, 0644))
	assert.NotNil(t, l.ConfigureFPGA(empty))
	assert.False(t, l.IsFrontPanelEnabled())

	require.Nil(t, l.SetWireInValue(0x01, 0xF, frontpanel.WIRE_MASK_ALL))
	require.Nil(t, l.UpdateWireIns())

	bit := filepath.Join(dir, "dcdc-fw_002.bit")
	require.Nil(t, os.WriteFile(bit, []byte{0xFF, 0xFF, 0xAA, 0x99}, 0644))
	require.Nil(t, l.LoadDefaultPLLConfiguration())
	require.Nil(t, l.ConfigureFPGA(bit))
	assert.True(t, l.IsFrontPanelEnabled())
	assert.Equal(t, bit, l.Bitfile())
	// configuration resets the wires
	assert.Equal(t, uint32(0), readOut(t, l, 0x21))
}

func TestLoopbackClosed(t *testing.T) {
	l := frontpanel.NewLoopback()
	require.Nil(t, l.Close())
	assert.True(t, errors.Is(l.UpdateWireIns(), frontpanel.ErrNoDevice))
	assert.True(t, errors.Is(l.UpdateWireOuts(), frontpanel.ErrNoDevice))
	assert.True(t, errors.Is(l.SetWireInValue(0, 0, 0), frontpanel.ErrNoDevice))
}

func TestDial(t *testing.T) {
	d, err := frontpanel.Dial(frontpanel.BackendLoopback, "ABC")
	require.Nil(t, err)
	info, err := d.DeviceInfo()
	require.Nil(t, err)
	assert.Equal(t, "ABC", info.SerialNumber)

	d, err = frontpanel.Dial("serial-port", "")
	assert.NotNil(t, err)
	assert.Nil(t, d)
}

func TestEndpointRanges(t *testing.T) {
	assert.True(t, frontpanel.IsWireIn(0x00))
	assert.True(t, frontpanel.IsWireIn(0x1F))
	assert.False(t, frontpanel.IsWireIn(0x20))
	assert.True(t, frontpanel.IsWireOut(0x20))
	assert.True(t, frontpanel.IsWireOut(0x3F))
	assert.False(t, frontpanel.IsWireOut(0x40))
	assert.False(t, frontpanel.IsWireOut(0x1F))
}
