package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbrzusto/dcdc/fpga"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackSession(t *testing.T) session {
	bit := filepath.Join(t.TempDir(), "dcdc-fw_002.bit")
	require.Nil(t, os.WriteFile(bit, []byte{0xFF, 0xFF, 0xAA, 0x99}, 0644))
	return session{
		Backend:          frontpanel.BackendLoopback,
		Serial:           "LOOP",
		FirmwareFilepath: bit,
		Configure:        true,
		ErrorSelectors:   1,
		ADCRounds:        2,
		ADCSettle:        time.Millisecond,
		PowerSteps:       []fpga.Power{fpga.PWR_DMX0, fpga.PWR_ALL, fpga.PWR_NONE},
	}
}

func TestRunAll(t *testing.T) {
	var buf bytes.Buffer
	n, err := run(context.Background(), loopbackSession(t), "all", &buf)
	require.Nil(t, err)
	assert.Equal(t, 0, n)
	out := buf.String()
	assert.Contains(t, out, "LOOP")
	assert.Contains(t, out, "[OK]: test_wire has 0 error.")
	assert.Contains(t, out, "[OK]: test_power has 0 error.")
	assert.Contains(t, out, "[OK]: test_adc has 0 error.")
	assert.Contains(t, out, "[OK]: Internal errors has 0 error.")
	assert.Contains(t, out, "ADC statistics")
}

func TestRunSingle(t *testing.T) {
	var buf bytes.Buffer
	n, err := run(context.Background(), loopbackSession(t), "link", &buf)
	require.Nil(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "test_wire")
	assert.NotContains(t, buf.String(), "test_power")

	buf.Reset()
	_, err = run(context.Background(), loopbackSession(t), "info", &buf)
	require.Nil(t, err)
	assert.Contains(t, buf.String(), "FIRMWARE_ID")
}

func TestRunFailures(t *testing.T) {
	var buf bytes.Buffer
	_, err := run(context.Background(), loopbackSession(t), "dance", &buf)
	assert.NotNil(t, err)

	s := loopbackSession(t)
	s.FirmwareFilepath = filepath.Join(t.TempDir(), "missing.bit")
	_, err = run(context.Background(), s, "link", &buf)
	assert.NotNil(t, err)

	s.Backend = "usb3"
	_, err = run(context.Background(), s, "link", &buf)
	assert.NotNil(t, err)

	// canceled before the power test can dwell
	s = loopbackSession(t)
	s.PowerDwell = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = run(ctx, s, "power", &buf)
	assert.Equal(t, context.Canceled, err)
}
