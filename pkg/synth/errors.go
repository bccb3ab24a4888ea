package synth

import "errors"

// Synthesis errors
var (
	// ErrFrequencyOutOfRange indicates a requested output frequency outside
	// the chip's usable output range
	ErrFrequencyOutOfRange = errors.New("output frequency out of range")

	// ErrUnreachableFrequency indicates a frequency that is numerically
	// representable but cannot be produced by the hardware (above 150 MHz
	// the PLL must run in integer mode on an even multiplier)
	ErrUnreachableFrequency = errors.New("frequency not reachable with valid PLL parameters")

	// ErrRatioUnreachable indicates a divider ratio whose integer part falls
	// outside the stage's valid range
	ErrRatioUnreachable = errors.New("ratio outside valid integer range")

	// ErrDividerUnreachable indicates no valid Multisynth/R-divider
	// combination exists for the requested output
	ErrDividerUnreachable = errors.New("no valid output divider for frequency")

	// ErrConfigConflict indicates mutually exclusive channel options
	ErrConfigConflict = errors.New("conflicting channel configuration")

	// ErrAmplitudeOutOfRange indicates a spread spectrum amplitude that
	// overflows the SSC register fields
	ErrAmplitudeOutOfRange = errors.New("spread spectrum amplitude out of range")
)
