package synth

// Reference oscillator
const (
	// RefFrequencyMHz is the crystal frequency feeding both PLLs
	RefFrequencyMHz = 25.0
)

// Output frequency limits
const (
	FoutMinMHz = 0.004
	FoutMaxMHz = 200.0

	// DivBy4ThresholdMHz is the output frequency above which the fixed
	// divide-by-4 output mode is mandatory
	DivBy4ThresholdMHz = 150.0
)

// VCO limits
const (
	VCOMinMHz = 600.0
	VCOMaxMHz = 900.0
)

// PLL feedback divider field widths (AN619)
const (
	PLLIntMin         = 15
	PLLIntMax         = 90
	PLLMaxDenominator = 1<<20 - 1
)

// Multisynth output divider field widths (AN619)
const (
	MultisynthIntMin = 8

	// MultisynthIntMax allows the full 2048 divide ratio: the integer-only
	// boundary value still fits the 18-bit P1 field (128*2048 - 512)
	MultisynthIntMax         = 2048
	MultisynthMaxRatio       = 2048
	MultisynthMaxDenominator = 1<<20 - 1

	// MultisynthDiv6 and MultisynthDiv4 are the only legal divide ratios
	// below the normal range; both are integer-only, and 4 additionally
	// requires the dedicated DIVBY4 register mode
	MultisynthDiv6 = 6
	MultisynthDiv4 = 4
)

// R output pre-divider
const (
	RDivMax = 128
)

// ErrorTolerance is the target relative frequency error (<0.0001%)
const ErrorTolerance = 1e-6
