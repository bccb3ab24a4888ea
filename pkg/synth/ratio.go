package synth

import (
	"fmt"
	"math"
)

// RationalApproximation is a divider ratio expressed as a + b/c with
// 0 <= b < c. Both the PLL feedback divider and the Multisynth output
// divider use this form.
type RationalApproximation struct {
	A uint32 // integer part
	B uint32 // fractional numerator
	C uint32 // fractional denominator
}

// Value reconstructs the ratio as a float
func (r RationalApproximation) Value() float64 {
	return float64(r.A) + float64(r.B)/float64(r.C)
}

// IsInteger reports whether the ratio has no fractional part
func (r RationalApproximation) IsInteger() bool {
	return r.B == 0
}

func (r RationalApproximation) String() string {
	return fmt.Sprintf("%d + %d/%d", r.A, r.B, r.C)
}

// Approximate finds the best a + b/c representation of target under the
// given field-width constraints. The chip family maximizes fractional
// resolution by always using the largest legal denominator, so c is
// pinned to maxDenominator and b rounded to fit; when the fraction
// rounds away entirely the result is normalized to b=0, c=1.
//
// Returns ErrRatioUnreachable when the integer part falls outside
// [minInt, maxInt].
func Approximate(target float64, maxDenominator, minInt, maxInt uint32) (RationalApproximation, error) {
	if target < 0 {
		return RationalApproximation{}, fmt.Errorf("negative ratio %.6f: %w", target, ErrRatioUnreachable)
	}

	a := uint32(math.Floor(target))
	b := uint32(math.Round((target - math.Floor(target)) * float64(maxDenominator)))
	c := maxDenominator

	// Rounding can carry the fraction into the next integer
	if b >= c {
		a++
		b = 0
	}
	if b == 0 {
		c = 1
	}

	if a < minInt || a > maxInt {
		return RationalApproximation{}, fmt.Errorf("integer part %d outside [%d, %d]: %w",
			a, minInt, maxInt, ErrRatioUnreachable)
	}

	return RationalApproximation{A: a, B: b, C: c}, nil
}
