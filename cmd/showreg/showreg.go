package main

// Show one or more DC-DC wire_out registers at repeated intervals.
//
// Usage:
//
//    showreg [flags] N REGNAME1 M1 REGNAME2 M2 ...
//
// where
//  - N is the number of milliseconds to wait between burst reads of the
//    registers
//  - REGNAMEi is the name of a wire_out register, e.g. ADC3 or STATUS
//  - Mi is the number of reads to do in a burst from the REGNAMEi
//
// The FPGA must already be configured.  Stop with ^C or --count.

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/fpga"
	"github.com/jbrzusto/dcdc/frontpanel"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// burst is Reads reads in a row of one register
type burst struct {
	Reg   fpga.Register
	Reads int
}

// parseArgs parses N REGNAME1 M1 ...
func parseArgs(args []string) (period time.Duration, bursts []burst, err error) {
	if len(args) < 3 || len(args)%2 == 0 {
		return 0, nil, errors.New("need N REGNAME1 M1 [REGNAME2 M2 ...]")
	}
	ms, err := strconv.Atoi(args[0])
	if err != nil || ms < 0 {
		return 0, nil, errors.Errorf("bad period %q", args[0])
	}
	for i := 1; i < len(args); i += 2 {
		r, ok := fpga.LookupWireOut(args[i])
		if !ok {
			return 0, nil, errors.Wrapf(fpga.ErrUnknownRegister, "wire_out %q", args[i])
		}
		m, err := strconv.Atoi(args[i+1])
		if err != nil || m < 1 {
			return 0, nil, errors.Errorf("bad read count %q for %s", args[i+1], r.Name)
		}
		bursts = append(bursts, burst{r, m})
	}
	return time.Duration(ms) * time.Millisecond, bursts, nil
}

// show does count rounds of bursts (forever if count is 0), waiting
// period between rounds.
func show(ctx context.Context, w io.Writer, b *fpga.Board, period time.Duration, bursts []burst, count int) error {
	for k := 0; count == 0 || k < count; k++ {
		for _, bu := range bursts {
			for j := 0; j < bu.Reads; j++ {
				v, err := b.WireOutByName(bu.Reg.Name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%-14s 0x%08x %d\n", bu.Reg.Name+":", v, v)
			}
		}
		if count != 0 && k == count-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(period):
		}
	}
	return nil
}

func main() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	backend := pflag.String("backend", frontpanel.BackendFrontPanel, `bridge backend: "frontpanel" or "loopback"`)
	serial := pflag.String("serial", "", "serial number of the bridge")
	count := pflag.Int("count", 0, "rounds of bursts to show; 0 for no limit")
	pflag.Parse()
	flag.CommandLine.Parse(nil)
	defer glog.Flush()

	period, bursts, err := parseArgs(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "showreg: %v\n", err)
		os.Exit(2)
	}
	dev, err := frontpanel.Dial(*backend, *serial)
	if err != nil {
		glog.Exitf("open bridge: %v", err)
	}
	defer dev.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := show(ctx, os.Stdout, fpga.New(dev), period, bursts, *count); err != nil && err != context.Canceled {
		glog.Error(err)
	}
}
