// si5351-load: Replay a saved register snapshot onto an Si5351A
//
// This tool reads a snapshot produced by si5351-dump and writes it to the
// chip, gating the outputs off while the dividers change.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clkworks/si5351ctl/pkg/config"
	"github.com/clkworks/si5351ctl/pkg/cp2112"
	"github.com/clkworks/si5351ctl/pkg/ft232h"
	"github.com/clkworks/si5351ctl/pkg/si5351"
	"github.com/google/gousb"
)

func main() {
	transport := flag.String("t", "cp2112", "USB bridge: cp2112 or ft232h")
	address := flag.Uint("a", si5351.DefaultAddress, "I2C device address")
	verify := flag.Bool("verify", false, "Read the state back after writing and compare")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <snapshot-file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s etc/snapshots/0001.json\n", os.Args[0])
		os.Exit(1)
	}

	snapshot, err := config.LoadFromFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load snapshot: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Snapshot taken %s via %s\n",
			snapshot.Timestamp.Format("2006-01-02 15:04:05"), snapshot.Bridge)
		if fout, err := snapshot.OutputFrequencyMHz(0); err == nil {
			fmt.Printf("CLK0: %.9f MHz\n", fout)
		}
	}

	context := gousb.NewContext()
	defer context.Close()

	bus, closeBus, err := openBridge(context, *transport, uint8(*address))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeBus()

	if err := config.ApplyToDevice(bus, snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to apply snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Snapshot applied successfully")

	if *verify {
		readBack, err := config.DumpFromDevice(bus, *transport, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to read back state: %v\n", err)
			return
		}
		if readBack.Registers != snapshot.Registers {
			fmt.Fprintln(os.Stderr, "Verification failed: register state differs")
			os.Exit(1)
		}
		fmt.Println("Verification: OK")
	}
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
