package main

// Peek/Poke DC-DC FPGA registers
//
// Usage:
//
//    pk [flags] REGNAME          read the wire_out REGNAME
//    pk [flags] REGNAME VALUE    write VALUE to the wire_in REGNAME, then read its readback
//
// VALUE may be decimal, 0x hex or 0b binary.  Use -f to configure the
// FPGA first.

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/display"
	"github.com/jbrzusto/dcdc/fpga"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// peekPoke does what args ask and prints the register dump of every access.
func peekPoke(w io.Writer, b *fpga.Board, args []string) error {
	d := display.New(w)
	switch len(args) {
	case 1:
		v, err := b.WireOutByName(args[0])
		if err != nil {
			return err
		}
		d.Printf("%s: 0x%08x (%d)", args[0], v, v)
		return nil
	case 2:
		v, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return errors.Errorf("bad value %q", args[1])
		}
		if err := b.SetWireInByName(args[0], uint32(v)); err != nil {
			return err
		}
		got, err := b.WireOutByName(args[0])
		if err != nil {
			return err
		}
		return display.CheckEqual(d, uint32(v), got, "DCDC: Check register: "+args[0])
	}
	return errors.New("need REGNAME [VALUE]")
}

func main() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	backend := pflag.String("backend", frontpanel.BackendFrontPanel, `bridge backend: "frontpanel" or "loopback"`)
	serial := pflag.String("serial", "", "serial number of the bridge")
	firmware := pflag.StringP("firmware_filepath", "f", "", "bitstream to configure the FPGA with first")
	verbosity := pflag.Int("verbosity", 0, "1 or more: print every register access")
	pflag.Parse()
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	dev, err := frontpanel.Dial(*backend, *serial)
	if err != nil {
		glog.Exitf("open bridge: %v", err)
	}
	defer dev.Close()
	if *firmware != "" {
		if err := fpga.Configure(dev, *firmware); err != nil {
			glog.Exit(err)
		}
	}
	b := fpga.New(dev)
	b.Disp = display.New(os.Stdout)
	b.Verbosity = *verbosity
	if err := peekPoke(os.Stdout, b, pflag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "pk: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}
