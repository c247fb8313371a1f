package main

// Generate verilog snippets for the DC-DC FPGA build.
// The snippets create endpoint definitions and the okWireIn/okWireOut
// instances for the registers defined in fpga.WireIns and fpga.WireOuts,
// so the firmware and this package agree on every address.
//
// Usage:
//
//    gen_verilog [DIR]
//
// writes generated_endpoints.v, generated_regdefs.v and generated_wires.v
// into DIR, default the working directory.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/jbrzusto/dcdc/fpga"
	"github.com/pkg/errors"
)

// reg represents a 32-bit FrontPanel wire in the FPGA
type reg struct {
	fpga.Register
}

// prefix returns "WI" or "WO".
func (reg reg) prefix() string {
	if reg.Dir == fpga.WireIn {
		return "WI"
	}
	return "WO"
}

// signal returns the name of the verilog wire carrying the register.
func (reg reg) signal() string {
	if reg.Dir == fpga.WireIn {
		return "wi_" + strings.ToLower(reg.Name)
	}
	return "wo_" + strings.ToLower(reg.Name)
}

// MMap returns the verilog endpoint address definition.
func (reg reg) MMap() string {
	return fmt.Sprintf("`define EP_%-30s 8'h%02x // %s\n", reg.prefix()+"_"+reg.Name, reg.Addr, reg.Desc)
}

// Def returns the verilog wire definition.
func (reg reg) Def() string {
	return fmt.Sprintf("   wire [%d-1: 0] %-30s; // %s\n", fpga.REG_BITS, reg.signal(), reg.Desc)
}

// Wire returns the okWireIn or okWireOut instance for the register.
// wire_outs index the okWireOR bus by their position i.
func (reg reg) Wire(i int) string {
	ep := "`EP_" + reg.prefix() + "_" + reg.Name
	if reg.Dir == fpga.WireIn {
		return fmt.Sprintf("   okWireIn  %-20s (.okHE(okHE),                            .ep_addr(%s), .ep_dataout(%s));\n",
			"u_"+reg.signal(), ep, reg.signal())
	}
	return fmt.Sprintf("   okWireOut %-20s (.okHE(okHE), .okEH(okEHx[%2d*65 +: 65]), .ep_addr(%s), .ep_datain(%s));\n",
		"u_"+reg.signal(), i, ep, reg.signal())
}

// extractRegs returns the wire_ins followed by the wire_outs.
func extractRegs() (regs []reg) {
	for _, r := range fpga.WireIns() {
		regs = append(regs, reg{r})
	}
	for _, r := range fpga.WireOuts() {
		regs = append(regs, reg{r})
	}
	return
}

// writeEndpoints writes the address definitions.
func writeEndpoints(w io.Writer, regs []reg) {
	fmt.Fprint(w, "// endpoint definitions - generated by gen_verilog.go\n\n")
	for _, r := range regs {
		fmt.Fprint(w, r.MMap())
	}
}

// writeRegdefs writes the wire definitions and the okWireOR bus.
func writeRegdefs(w io.Writer, regs []reg) {
	fmt.Fprint(w, "// register definitions - generated by gen_verilog.go\n\n")
	nOut := 0
	for _, r := range regs {
		fmt.Fprint(w, r.Def())
		if r.Dir == fpga.WireOut {
			nOut++
		}
	}
	fmt.Fprintf(w, "\n   localparam N_WIRE_OUT = %d;\n", nOut)
	fmt.Fprint(w, "   wire [65*N_WIRE_OUT-1: 0] okEHx;\n")
}

// writeWires writes one ok wire instance per register.
func writeWires(w io.Writer, regs []reg) {
	fmt.Fprint(w, "// FrontPanel wires - generated by gen_verilog.go\n\n")
	i := 0
	for _, r := range regs {
		fmt.Fprint(w, r.Wire(i))
		if r.Dir == fpga.WireOut {
			i++
		}
	}
	fmt.Fprint(w, "\n   okWireOR #(.N(N_WIRE_OUT)) u_wireOR (okEH, okEHx);\n")
}

func create(dir, name string, regs []reg, gen func(io.Writer, []reg)) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "gen_verilog")
	}
	gen(f, regs)
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "gen_verilog: writing %s", path)
	}
	glog.V(1).Infof("wrote %s", path)
	return nil
}

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	regs := extractRegs()
	for name, gen := range map[string]func(io.Writer, []reg){
		"generated_endpoints.v": writeEndpoints,
		"generated_regdefs.v":   writeRegdefs,
		"generated_wires.v":     writeWires,
	} {
		if err := create(dir, name, regs, gen); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
