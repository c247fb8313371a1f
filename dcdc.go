package main

// dcdc: smoke test a DC-DC board through its Opal Kelly FrontPanel bridge.
//
// Usage:
//
//    dcdc [flags] [info|link|power|adc|errors|all]
//
// where
//  - info prints the bridge and firmware identification
//  - link writes test patterns to the wire_in registers and checks the loopback
//  - power steps the supplies through --steps
//  - adc starts --rounds acquisitions and prints all channels
//  - errors reads the internal error words
//  - all does link, power and adc
//
// Every command but info and adc also reads the internal error words, and
// every command ends with a summary.
//
// Settings come from dcdc.toml (see config.go) and are overridden by flags.
// The exit status is 1 if any check failed.

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/buffer"
	"github.com/jbrzusto/dcdc/display"
	"github.com/jbrzusto/dcdc/fpga"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/jbrzusto/dcdc/selftest"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var commands = []string{"info", "link", "power", "adc", "errors", "all"}

func main() {
	v := viper.New()
	setDefaultConfig(v)
	fs := pflag.CommandLine
	fs.AddGoFlagSet(flag.CommandLine) // glog flags
	config := fs.String("config", "", "config file to read instead of dcdc.toml")
	bindFlags(fs, v)
	pflag.Parse()
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	if !loadConfig(v, *config) {
		glog.Info("no config file read; using defaults and flags")
	}
	s, err := sessionFromConfig(v)
	if err != nil {
		glog.Exitf("bad configuration: %v", err)
	}
	cmd := "all"
	if pflag.NArg() > 0 {
		cmd = pflag.Arg(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	nerr, err := run(ctx, s, cmd, os.Stdout)
	if err != nil {
		glog.Error(err)
		nerr++
	}
	if nerr > 0 {
		glog.Flush()
		os.Exit(1)
	}
}

// run opens the board described by s, runs cmd and returns the number of
// failed checks.  An error means the run was cut short.
func run(ctx context.Context, s session, cmd string, w io.Writer) (int, error) {
	if !validCommand(cmd) {
		return 0, errors.Errorf("unknown command %q: want one of %v", cmd, commands)
	}
	dev, err := frontpanel.Dial(s.Backend, s.Serial)
	if err != nil {
		return 0, errors.Wrap(err, "open bridge")
	}
	defer dev.Close()

	d := display.New(w)
	if info, err := dev.DeviceInfo(); err == nil {
		d.Title("DCDC: " + info.String())
	} else {
		glog.Warningf("device info: %v", err)
	}
	if s.Configure {
		d.Print("DCDC: Configure the FPGA with " + s.FirmwareFilepath)
		if err := fpga.Configure(dev, s.FirmwareFilepath); err != nil {
			return 0, err
		}
	}

	b := fpga.New(dev)
	b.Disp = d
	b.Verbosity = s.Verbosity
	if s.ErrorSelectors > 0 {
		b.ErrorSelectors = s.ErrorSelectors
	}

	var results []selftest.Result
	do := func(name string, f func() (selftest.Result, error)) error {
		if cmd != name && cmd != "all" {
			return nil
		}
		r, err := f()
		results = append(results, r)
		return err
	}

	if cmd == "info" {
		_, err := selftest.Summary(b, d)
		return 0, err
	}
	if err := do("link", func() (selftest.Result, error) {
		d.Title("test_wire")
		return selftest.WireLoopback(b, d, selftest.LoopbackChecks)
	}); err != nil {
		return count(results), err
	}
	if err := do("power", func() (selftest.Result, error) {
		return selftest.PowerSequence(ctx, b, d, s.PowerSteps, s.PowerDwell)
	}); err != nil {
		return count(results), err
	}
	if err := do("adc", func() (selftest.Result, error) {
		hist := buffer.NewADCHistory(s.ADCHistory)
		r, err := selftest.ADCPoll(ctx, b, d, s.ADCRounds, s.ADCSettle, hist)
		if err == nil {
			d.Title("ADC statistics")
			selftest.PrintADCStats(d, hist)
		}
		return r, err
	}); err != nil {
		return count(results), err
	}
	// every command but adc ends with the internal error check
	if cmd != "adc" {
		d.Title("Internal errors")
		r, err := selftest.InternalErrors(b, d)
		results = append(results, r)
		if err != nil {
			return count(results), err
		}
	}
	return selftest.Summary(b, d, results...)
}

func validCommand(cmd string) bool {
	for _, c := range commands {
		if c == cmd {
			return true
		}
	}
	return false
}

func count(results []selftest.Result) (n int) {
	for _, r := range results {
		n += r.Errors
	}
	return
}

func init() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [%s]\n", os.Args[0], "info|link|power|adc|errors|all")
		pflag.PrintDefaults()
	}
}
