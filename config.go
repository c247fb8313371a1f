package main

// this file contains all the code that directly uses the viper and pflag packages

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// loadConfig reads configuration from a TOML-formatted file called 'dcdc.toml'.
// If file is not empty, only that file is read.  Otherwise it looks in
// /opt and then in the current directory.
// Returns true if a config file was read.
func loadConfig(v *viper.Viper, file string) bool {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("dcdc") // name of config file (without extension)
		v.AddConfigPath("/opt") // path to look for the config file in
		v.AddConfigPath(".")    // optionally look for config in the working directory
	}
	err := v.ReadInConfig() // Find and read the config file
	return err == nil
}

// setDefaultConfig sets defaults for every key, used where neither the
// config file nor a flag gives a value.  They suit the loopback backend
// and a board with the dcdc-fw_002 bitstream in the working directory.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("board.backend", "frontpanel")
	v.SetDefault("board.serial", "")
	v.SetDefault("board.firmware_filepath", "dcdc-fw_002.bit")
	v.SetDefault("board.configure", true)
	v.SetDefault("board.verbosity", 0)
	v.SetDefault("board.error_selectors", 1)
	v.SetDefault("adc.rounds", 1)
	v.SetDefault("adc.settle", "1s")
	v.SetDefault("adc.history", 3600)
	v.SetDefault("power.steps", []string{"0x1", "0x3", "0x7", "0xF", "0x0"})
	v.SetDefault("power.dwell", "1s")
}

// bindFlags defines the command line flags on fs and binds each to its
// config key in v.  Flags given on the command line beat the config file.
func bindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.StringP("firmware_filepath", "f", "", "FPGA bitstream; absolute or relative to the working directory")
	fs.String("backend", "", `bridge backend: "frontpanel" or "loopback"`)
	fs.String("serial", "", "serial number of the bridge; empty for the first one found")
	fs.Bool("configure", true, "load the bitstream before testing")
	fs.Int("verbosity", 0, "1 or more: print every register access")
	fs.Int("error_selectors", 1, "number of ERROR_SEL values to check")
	fs.Int("rounds", 1, "ADC acquisitions to make")
	fs.Duration("settle", 0, "wait between ADC start and readout")
	fs.StringSlice("steps", nil, "power words to apply in order, bit3:wfee bit2:ras bit1:dmx1 bit0:dmx0")
	fs.Duration("dwell", 0, "time to hold each power word")

	for key, flag := range map[string]string{
		"board.firmware_filepath": "firmware_filepath",
		"board.backend":           "backend",
		"board.serial":            "serial",
		"board.configure":         "configure",
		"board.verbosity":         "verbosity",
		"board.error_selectors":   "error_selectors",
		"adc.rounds":              "rounds",
		"adc.settle":              "settle",
		"power.steps":             "steps",
		"power.dwell":             "dwell",
	} {
		v.BindPFlag(key, fs.Lookup(flag))
	}
}
