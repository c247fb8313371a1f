package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jbrzusto/dcdc/fpga"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	period, bursts, err := parseArgs([]string{"250", "ADC3", "2", "STATUS", "1"})
	require.Nil(t, err)
	assert.Equal(t, 250*time.Millisecond, period)
	require.Len(t, bursts, 2)
	assert.Equal(t, uint8(0x33), bursts[0].Reg.Addr)
	assert.Equal(t, 2, bursts[0].Reads)

	_, _, err = parseArgs([]string{"250", "ADC3"})
	assert.NotNil(t, err)
	_, _, err = parseArgs([]string{"x", "ADC3", "1"})
	assert.NotNil(t, err)
	_, _, err = parseArgs([]string{"10", "ADC3", "0"})
	assert.NotNil(t, err)
	_, _, err = parseArgs([]string{"10", "ADC9", "1"})
	assert.True(t, errors.Is(err, fpga.ErrUnknownRegister))
}

func TestShow(t *testing.T) {
	l := frontpanel.NewLoopback(frontpanel.WithWireOut(fpga.WO_FIRMWARE_NAME, 0x44434443))
	_, bursts, err := parseArgs([]string{"0", "FIRMWARE_NAME", "2", "ERRORS", "1"})
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, show(context.Background(), &buf, fpga.New(l), time.Millisecond, bursts, 2))
	out := buf.String()
	assert.Equal(t, 4, strings.Count(out, "FIRMWARE_NAME: 0x44434443"))
	assert.Equal(t, 2, strings.Count(out, "ERRORS:"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, show(ctx, &buf, fpga.New(l), time.Hour, bursts, 0))
}
