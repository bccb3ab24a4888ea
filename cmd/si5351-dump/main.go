// si5351-dump: Dump Si5351A register state to a JSON snapshot
//
// This tool reads the full register state off the chip, prints a decoded
// summary and saves the snapshot for later replay with si5351-load.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clkworks/si5351ctl/pkg/config"
	"github.com/clkworks/si5351ctl/pkg/cp2112"
	"github.com/clkworks/si5351ctl/pkg/ft232h"
	"github.com/clkworks/si5351ctl/pkg/si5351"
	"github.com/clkworks/si5351ctl/pkg/synth"
	"github.com/google/gousb"
)

func main() {
	transport := flag.String("t", "cp2112", "USB bridge: cp2112 or ft232h")
	address := flag.Uint("a", si5351.DefaultAddress, "I2C device address")
	output := flag.String("o", "", "Output file (default etc/snapshots/<serial>.json)")
	printOnly := flag.Bool("p", false, "Print the decoded state without saving")
	flag.Parse()

	context := gousb.NewContext()
	defer context.Close()

	var (
		bus    si5351.Bus
		serial string
	)
	switch *transport {
	case "cp2112":
		bridge, err := cp2112.Open(context, uint8(*address))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer bridge.Close()
		bus, serial = bridge, bridge.Serial
	case "ft232h":
		bridge, err := ft232h.Open(context, uint8(*address))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer bridge.Close()
		bus, serial = bridge, bridge.Serial
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown transport %q\n", *transport)
		os.Exit(1)
	}

	snapshot, err := config.DumpFromDevice(bus, *transport, serial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to dump registers: %v\n", err)
		os.Exit(1)
	}

	printSnapshot(snapshot)

	if *printOnly {
		return
	}

	path := *output
	if path == "" {
		path = config.GetConfigPath(serial)
	}
	if err := config.SaveToFile(snapshot, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nSnapshot saved to %s\n", path)
}

func printSnapshot(snapshot *config.DeviceConfig) {
	fmt.Printf("Bridge:   %s", snapshot.Bridge)
	if snapshot.Serial != "" {
		fmt.Printf(" (%s)", snapshot.Serial)
	}
	fmt.Println()

	for _, pll := range []synth.PLL{synth.PLLA, synth.PLLB} {
		vco, err := snapshot.PLLFrequencyMHz(pll)
		if err != nil {
			fmt.Printf("PLL%s:     not decodable (%v)\n", pll, err)
			continue
		}
		fmt.Printf("PLL%s:     %.6f MHz\n", pll, vco)
	}

	for clk := 0; clk < 3; clk++ {
		state := "disabled"
		if snapshot.OutputEnabled(clk) {
			state = "enabled"
		}
		fout, err := snapshot.OutputFrequencyMHz(clk)
		if err != nil {
			fmt.Printf("CLK%d:     %s, not decodable (%v)\n", clk, state, err)
			continue
		}
		fmt.Printf("CLK%d:     %.9f MHz, %s\n", clk, fout, state)
	}

	ssc := "disabled"
	if snapshot.SSCEnabled() {
		ssc = "enabled"
	}
	fmt.Printf("SSC:      %s\n", ssc)
}
