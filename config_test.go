package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbrzusto/dcdc/fpga"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T, args ...string) *viper.Viper {
	v := viper.New()
	setDefaultConfig(v)
	fs := pflag.NewFlagSet("dcdc", pflag.ContinueOnError)
	bindFlags(fs, v)
	require.Nil(t, fs.Parse(args))
	return v
}

func TestDefaultConfig(t *testing.T) {
	s, err := sessionFromConfig(newConfig(t))
	require.Nil(t, err)
	assert.Equal(t, "frontpanel", s.Backend)
	assert.True(t, s.Configure)
	assert.True(t, filepath.IsAbs(s.FirmwareFilepath))
	assert.Equal(t, "dcdc-fw_002.bit", filepath.Base(s.FirmwareFilepath))
	assert.Equal(t, time.Second, s.ADCSettle)
	assert.Equal(t, []fpga.Power{1, 3, 7, 15, 0}, s.PowerSteps)
	assert.Equal(t, 1, s.ErrorSelectors)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dcdc.toml")
	require.Nil(t, os.WriteFile(file, []byte(`
[board]
backend = "loopback"
firmware_filepath = "/opt/dcdc/dcdc-fw_003.bit"
error_selectors = 4

[adc]
rounds = 10
settle = "250ms"

[power]
steps = ["0x5", "0"]
`), 0644))

	v := newConfig(t, "--rounds", "3", "--serial=1740000JJK")
	require.True(t, loadConfig(v, file))
	s, err := sessionFromConfig(v)
	require.Nil(t, err)
	assert.Equal(t, "loopback", s.Backend)
	assert.Equal(t, "1740000JJK", s.Serial)
	assert.Equal(t, "/opt/dcdc/dcdc-fw_003.bit", s.FirmwareFilepath)
	assert.Equal(t, 4, s.ErrorSelectors)
	// the flag wins over the file
	assert.Equal(t, 3, s.ADCRounds)
	assert.Equal(t, 250*time.Millisecond, s.ADCSettle)
	assert.Equal(t, []fpga.Power{fpga.PWR_DMX0 | fpga.PWR_RAS, fpga.PWR_NONE}, s.PowerSteps)

	assert.False(t, loadConfig(viper.New(), filepath.Join(t.TempDir(), "none.toml")))
}

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps([]string{"15", "0b0010", "0x0"})
	require.Nil(t, err)
	assert.Equal(t, []fpga.Power{fpga.PWR_ALL, fpga.PWR_DMX1, fpga.PWR_NONE}, steps)

	_, err = parseSteps([]string{"16"})
	assert.NotNil(t, err)
	_, err = parseSteps([]string{"on"})
	assert.NotNil(t, err)
}
