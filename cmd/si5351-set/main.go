// si5351-set: Program Si5351A output frequencies over a USB-I2C bridge
//
// This tool solves PLL and Multisynth parameters for the requested output
// frequencies and writes them to the chip. With -n the parameters are
// computed and printed without touching any hardware.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/clkworks/si5351ctl/pkg/cp2112"
	"github.com/clkworks/si5351ctl/pkg/ft232h"
	"github.com/clkworks/si5351ctl/pkg/si5351"
	"github.com/clkworks/si5351ctl/pkg/synth"
	"github.com/google/gousb"
)

func main() {
	transport := flag.String("t", "cp2112", "USB bridge: cp2112 or ft232h")
	address := flag.Uint("a", si5351.DefaultAddress, "I2C device address")
	diff := flag.Int("d", 0, "Differential pair on channel 1 or 2 (0 = single-ended)")
	ssc := flag.Bool("ssc", false, "Enable spread spectrum on PLLA")
	amp := flag.Float64("amp", 0.015, "Spread spectrum amplitude (fraction of center)")
	mode := flag.String("mode", "CENTER", "Spread spectrum mode: CENTER or DOWN")
	test := flag.Int("test", 0, "Run N verification iterations per band and exit")
	dryRun := flag.Bool("n", false, "Compute and print parameters without programming")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *test > 0 {
		report := synth.RunTest(*test, 1)
		printReport(report)
		if report.Failures > 0 {
			os.Exit(1)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <fout0-MHz> [fout2-MHz]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s 100            # 100 MHz on CLK0\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -d 1 25        # 25 MHz differential on CLK0/CLK1\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s 100 12.288     # CLK0 and an independent CLK2\n", os.Args[0])
		os.Exit(1)
	}

	req, err := buildRequest(args, *diff, *ssc, *amp, *mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plan, err := synth.PlanChannels(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printPlan(req, plan)

	if *dryRun {
		return
	}

	context := gousb.NewContext()
	defer context.Close()

	bus, closeBus, err := openBridge(context, *transport, uint8(*address))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeBus()

	device := si5351.New(bus)
	if *verbose {
		fmt.Println("Initializing device...")
	}
	if err := device.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to initialize device: %v\n", err)
		os.Exit(1)
	}
	if err := device.Apply(plan); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to program device: %v\n", err)
		os.Exit(1)
	}

	if status, err := device.ReadStatus(); err == nil && *verbose {
		fmt.Printf("Interrupt status: 0x%02X\n", status)
	}
	fmt.Println("Device programmed successfully")
}

func buildRequest(args []string, diff int, ssc bool, amp float64, mode string) (synth.FrequencyRequest, error) {
	var req synth.FrequencyRequest

	fout0, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return req, fmt.Errorf("invalid frequency %q", args[0])
	}
	req.Fout0 = fout0

	if len(args) == 2 {
		fout2, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return req, fmt.Errorf("invalid frequency %q", args[1])
		}
		req.Fout2 = fout2
	}

	switch diff {
	case 0:
	case 1:
		req.Differential = synth.DifferentialCH1
	case 2:
		req.Differential = synth.DifferentialCH2
	default:
		return req, fmt.Errorf("invalid differential channel %d", diff)
	}

	if ssc {
		req.SSC.Enabled = true
		req.SSC.Amplitude = amp
		switch mode {
		case "CENTER", "center":
			req.SSC.Mode = synth.SSCModeCenter
		case "DOWN", "down":
			req.SSC.Mode = synth.SSCModeDown
		default:
			return req, fmt.Errorf("invalid spread spectrum mode %q", mode)
		}
	}
	return req, nil
}

func openBridge(context *gousb.Context, transport string, address uint8) (si5351.Bus, func(), error) {
	switch transport {
	case "cp2112":
		bridge, err := cp2112.Open(context, address)
		if err != nil {
			return nil, nil, err
		}
		return bridge, bridge.Close, nil
	case "ft232h":
		bridge, err := ft232h.Open(context, address)
		if err != nil {
			return nil, nil, err
		}
		return bridge, bridge.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", transport)
}

func printPlan(req synth.FrequencyRequest, plan synth.ChannelPlan) {
	for _, ch := range plan.Channels {
		if !ch.Enabled {
			continue
		}
		sol := ch.Solution
		fmt.Printf("CLK%d: PLL%s fb %s  VCO %.6f MHz  MS %s  R %d",
			ch.Channel, ch.PLL, sol.VCO.Feedback, sol.VCO.Frequency,
			sol.Plan.Ratio, sol.Plan.RDiv)
		if sol.Plan.DivBy4 {
			fmt.Print("  DIVBY4")
		}
		if ch.Inverted {
			fmt.Print("  inverted")
		}
		fmt.Printf("\n      requested %.9f MHz  achieved %.9f MHz  error %+.3g ppm\n",
			sol.Plan.Target, sol.Plan.Achieved, sol.Plan.Error*1e6)
	}
	if req.SSC.Enabled {
		mode := "center"
		if plan.SSC.Mode == synth.SSCModeDown {
			mode = "down"
		}
		fmt.Printf("SSC:  %s spread, amplitude %.4f, UDP %d\n",
			mode, req.SSC.Amplitude, plan.SSC.UDP)
	}
}

func printReport(report synth.Report) {
	fmt.Printf("%-22s %8s %8s %8s %14s\n", "Band", "Tests", "Pass", "Fail", "Max error")
	for _, br := range report.Bands {
		fmt.Printf("%9.4f-%-12.4f %8d %8d %8d %14.3e\n",
			br.Band.Low, br.Band.High, br.Tests, br.Passes, br.Failures, br.MaxError)
	}
	fmt.Printf("\nTotal: %d tests, %d passed, %d failed (%.2f%% success)\n",
		report.Tests, report.Passes, report.Failures, 100*report.SuccessRate())
}
