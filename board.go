package main

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/jbrzusto/dcdc/fpga"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// session holds the settings for one run against a DC-DC board.
type session struct {
	Backend          string        // "frontpanel" or "loopback"
	Serial           string        // bridge serial number; empty for the first board found
	FirmwareFilepath string        // bitstream to load; absolute after resolve
	Configure        bool          // load FirmwareFilepath before testing
	Verbosity        int           // 1 or more: dump every register access
	ErrorSelectors   int           // ERROR_SEL values walked by the internal error check
	ADCRounds        int           // acquisitions per ADC test
	ADCSettle        time.Duration // wait between ADC start and readout
	ADCHistory       int           // snapshots kept for ADC statistics
	PowerSteps       []fpga.Power  // power states applied in order by the power test
	PowerDwell       time.Duration // time spent in each power state
}

// sessionFromConfig reads a session from v.  A relative firmware path is
// taken relative to the working directory.
func sessionFromConfig(v *viper.Viper) (s session, err error) {
	s.Backend = v.GetString("board.backend")
	s.Serial = v.GetString("board.serial")
	s.Configure = v.GetBool("board.configure")
	s.Verbosity = v.GetInt("board.verbosity")
	s.ErrorSelectors = v.GetInt("board.error_selectors")
	s.ADCRounds = v.GetInt("adc.rounds")
	s.ADCSettle = v.GetDuration("adc.settle")
	s.ADCHistory = v.GetInt("adc.history")
	s.PowerDwell = v.GetDuration("power.dwell")
	if s.PowerSteps, err = parseSteps(v.GetStringSlice("power.steps")); err != nil {
		return
	}
	if fw := v.GetString("board.firmware_filepath"); fw != "" {
		if s.FirmwareFilepath, err = filepath.Abs(fw); err != nil {
			return s, errors.Wrap(err, "firmware_filepath")
		}
	}
	return s, nil
}

// parseSteps parses power words such as "15", "0xF" or "0b1010".  Each
// word is bit3: WFEE, bit2: RAS, bit1: DMX1, bit0: DMX0.
func parseSteps(words []string) ([]fpga.Power, error) {
	steps := make([]fpga.Power, 0, len(words))
	for _, w := range words {
		n, err := strconv.ParseUint(w, 0, 32)
		if err != nil || n > fpga.POWER_MASK {
			return nil, errors.Errorf("bad power step %q: want 0...15", w)
		}
		steps = append(steps, fpga.Power(n))
	}
	return steps, nil
}
