// Package selftest holds the smoke procedures run against a DC-DC board:
// register loopback, power sequencing and ADC polling.
//
// A procedure counts failed checks and keeps going.  Only bridge failures,
// which make further checks meaningless, are returned as errors.
package selftest

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/buffer"
	"github.com/jbrzusto/dcdc/display"
	"github.com/jbrzusto/dcdc/fpga"
	"github.com/pkg/errors"
)

const DEFAULT_ADC_SETTLE = time.Second // wait between ADC start and readout

// Result is the outcome of one procedure.
type Result struct {
	Name   string
	Errors int
}

// OK reports whether the procedure found no errors.
func (r Result) OK() bool {
	return r.Errors == 0
}

func (r Result) String() string {
	tag, unit := "[OK]", "error"
	if !r.OK() {
		tag = "[KO]"
	}
	if r.Errors > 1 {
		unit = "errors"
	}
	return fmt.Sprintf("%s: %s has %d %s.", tag, r.Name, r.Errors, unit)
}

// LoopbackCheck is one write, read back and compare step.
type LoopbackCheck struct {
	Reg  string
	Data uint32
	Mask uint32 // bits that may be written without side effects
}

// LoopbackChecks are the default loopback steps.  The masks keep the
// reset and debug bits clear.
var LoopbackChecks = []LoopbackCheck{
	{"CTRL", 0x09ABCEF0, 0xFFFFFFFE},
	{"POWER_CTRL", 0xBCDEFEAB, 0xFFFFFFF0},
	{"DEBUG_CTRL", 0xAAAABBBB, 0xFFFFFFFC},
	{"ERROR_SEL", 0xCCCCDDDD, 0xFFFFFFFF},
}

// WireLoopback writes each check's pattern to its wire_in register, reads
// the wire_out back, and counts mismatches.
func WireLoopback(b *fpga.Board, d *display.Display, checks []LoopbackCheck) (Result, error) {
	res := Result{Name: "test_wire"}
	for _, c := range checks {
		data0 := c.Data & c.Mask
		d.Print("DCDC: Set the register: " + c.Reg)
		if err := b.SetWireInByName(c.Reg, data0); err != nil {
			return res, err
		}
		data1, err := b.WireOutByName(c.Reg)
		if err != nil {
			return res, err
		}
		if display.CheckEqual(d, data0, data1, "DCDC: Check register: "+c.Reg) != nil {
			res.Errors++
		}
	}
	return res, nil
}

// PowerSequence applies each power state in turn, checks the POWER_CTRL
// readback, and waits dwell before the next one.
func PowerSequence(ctx context.Context, b *fpga.Board, d *display.Display, steps []fpga.Power, dwell time.Duration) (Result, error) {
	res := Result{Name: "test_power"}
	for i, p := range steps {
		d.Title(fmt.Sprintf("test_power %02d", i))
		d.Printf("DCDC: Set the register: POWER_CTRL = 0x%x (%s)", uint32(p), p)
		if err := b.SetPowerCtrl(p); err != nil {
			return res, err
		}
		got, err := b.Power()
		if err != nil {
			return res, err
		}
		if display.CheckEqual(d, uint32(p&fpga.PWR_ALL), uint32(got), "DCDC: Check register: POWER_CTRL") != nil {
			res.Errors++
		}
		if err := sleep(ctx, dwell); err != nil {
			return res, err
		}
	}
	return res, nil
}

// ADCPoll runs rounds acquisitions: start the ADCs, wait settle, then read
// and print all channels.  Each acquisition is pushed into hist if it is
// not nil.  A non-positive settle uses DEFAULT_ADC_SETTLE.
func ADCPoll(ctx context.Context, b *fpga.Board, d *display.Display, rounds int, settle time.Duration, hist *buffer.ADCHistory) (Result, error) {
	res := Result{Name: "test_adc"}
	if settle <= 0 {
		settle = DEFAULT_ADC_SETTLE
	}
	for i := 0; i < rounds; i++ {
		d.Title(fmt.Sprintf("test_adc %02d", i))
		d.Print("DCDC: Start the ADCs acquisition")
		if err := b.StartADC(); err != nil {
			return res, err
		}
		if err := sleep(ctx, settle); err != nil {
			return res, err
		}
		vals, err := b.ADCs()
		if err != nil {
			return res, err
		}
		for ch, v := range vals {
			d.Printf("DCDC: ADC%d: 0x%s (%d)", ch, display.Hex(uint64(v), fpga.ADC_BITS), v)
		}
		if hist != nil {
			hist.Push(buffer.Snapshot{Time: time.Now(), Values: vals})
		}
		glog.V(1).Infof("adc round %d: %v", i, vals)
	}
	return res, nil
}

// PrintADCStats prints min, max and mean of every channel in hist.
func PrintADCStats(d *display.Display, hist *buffer.ADCHistory) {
	for ch := 0; ch < fpga.ADC_CHANNELS; ch++ {
		st, ok := hist.Stats(ch)
		if !ok {
			continue
		}
		d.Printf("ADC%d: n=%d min=%d max=%d mean=%.1f", ch, st.N, st.Min, st.Max, st.Mean)
	}
}

// InternalErrors reads the internal error words and reports them.
func InternalErrors(b *fpga.Board, d *display.Display) (Result, error) {
	res := Result{Name: "Internal errors"}
	words, n, err := b.CheckInternalErrors()
	if err != nil {
		return res, err
	}
	for _, w := range words {
		d.Printf("ERROR_SEL %d: errors 0x%s status 0x%s", w.Sel, display.Hex(uint64(w.Errors), 32), display.Hex(uint64(w.Status), 32))
	}
	res.Errors = n
	return res, nil
}

// Summary prints the identification registers and one line per result.
// It returns the total error count.
func Summary(b *fpga.Board, d *display.Display, results ...Result) (int, error) {
	d.Title("SUMMARY")
	id, err := b.Identify()
	if err != nil {
		return 0, errors.Wrap(err, "summary")
	}
	d.Printf("DCDC: Get HARDWARE_ID: 0x%s", display.Hex(uint64(id.HardwareID), 32))
	d.Printf("DCDC: Get FIRMWARE_NAME: 0x%s (%s)", display.Hex(uint64(id.FirmwareName), 32), id.Name())
	d.Printf("DCDC: Get FIRMWARE_ID: 0x%s", display.Hex(uint64(id.FirmwareID), 32))
	d.Print("")
	total := 0
	for _, r := range results {
		d.Print(r.String())
		total += r.Errors
	}
	return total, nil
}

func sleep(ctx context.Context, dt time.Duration) error {
	if dt <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(dt)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
