// si5351-verify: Randomized self-test of the frequency synthesis pipeline
//
// This tool draws random target frequencies across the output bands, runs
// each through the full solver and checks the achieved frequency against
// the accuracy tolerance. It needs no hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clkworks/si5351ctl/pkg/synth"
)

func main() {
	iterations := flag.Int("n", 1000, "Iterations per band")
	seed := flag.Int64("seed", 1, "Random seed (runs are reproducible)")
	showFailures := flag.Bool("f", false, "Print each failing trial")
	flag.Parse()

	if *iterations <= 0 {
		fmt.Fprintf(os.Stderr, "Error: iteration count must be positive\n")
		os.Exit(1)
	}

	if *showFailures {
		runner := synth.NewRunner(*iterations, *seed)
		for {
			trial, ok := runner.Next()
			if !ok {
				break
			}
			if trial.Pass {
				continue
			}
			if trial.Err != nil {
				fmt.Printf("FAIL %.9f MHz: %v\n", trial.Target, trial.Err)
				continue
			}
			fmt.Printf("FAIL %.9f MHz: achieved %.9f MHz (error %+.3g ppm)\n",
				trial.Target, trial.Achieved, trial.Error*1e6)
		}
	}

	report := synth.RunTest(*iterations, *seed)

	fmt.Printf("%-22s %8s %8s %8s %14s\n", "Band (MHz)", "Tests", "Pass", "Fail", "Max error")
	for _, br := range report.Bands {
		fmt.Printf("%9.4f-%-12.4f %8d %8d %8d %14.3e\n",
			br.Band.Low, br.Band.High, br.Tests, br.Passes, br.Failures, br.MaxError)
	}
	fmt.Printf("\nTotal: %d tests, %d passed, %d failed (%.2f%% success, max error %.3e)\n",
		report.Tests, report.Passes, report.Failures,
		100*report.SuccessRate(), report.MaxError)

	if report.Failures > 0 {
		os.Exit(1)
	}
}
