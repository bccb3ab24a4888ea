package synth

import (
	"fmt"
	"math"
)

// VCOCandidate is a trial VCO frequency with the PLL feedback ratio that
// produces it from the 25 MHz reference.
type VCOCandidate struct {
	Frequency float64 // MHz, achievable VCO frequency
	Feedback  RationalApproximation
	Error     float64 // relative error of the achievable VCO vs the ideal one
}

// Solution pairs a VCO candidate with the output divider plan feeding one
// clock channel from it.
type Solution struct {
	VCO  VCOCandidate
	Plan MultisynthPlan
}

// Solve searches for the PLL and output divider configuration producing
// fout with minimal frequency error.
//
// At or below 150 MHz the search walks candidate VCO frequencies that are
// integer Multisynth multiples of the effective output frequency; the PLL
// fractional feedback then carries the precision. Above 150 MHz the chip
// only produces real output when the PLL runs in integer mode on an even
// 25 MHz multiplier, so anything else fails with ErrUnreachableFrequency
// rather than returning a numerically-plausible dead configuration.
func Solve(fout float64) (Solution, error) {
	if fout < FoutMinMHz || fout > FoutMaxMHz {
		return Solution{}, fmt.Errorf("%.6f MHz outside [%g, %g]: %w",
			fout, FoutMinMHz, FoutMaxMHz, ErrFrequencyOutOfRange)
	}

	if fout > DivBy4ThresholdMHz {
		return solveDivBy4(fout)
	}

	// Pre-divider needed so an integer Multisynth ratio can reach the VCO
	// window at all
	r := uint32(1)
	for VCOMinMHz/(fout*float64(r)) > MultisynthMaxRatio && r <= RDivMax {
		r *= 2
	}
	if r > RDivMax {
		return Solution{}, fmt.Errorf("fout %.6f MHz: %w", fout, ErrUnreachableFrequency)
	}
	feff := fout * float64(r)

	lo := int(math.Ceil(VCOMinMHz/feff - 1e-9))
	hi := int(math.Floor(VCOMaxMHz/feff + 1e-9))

	var dividers []int
	if lo <= MultisynthDiv6 && MultisynthDiv6 <= hi {
		dividers = append(dividers, MultisynthDiv6)
	}
	for d := max(lo, MultisynthIntMin); d <= min(hi, MultisynthMaxRatio); d++ {
		dividers = append(dividers, d)
	}
	if len(dividers) == 0 {
		return Solution{}, fmt.Errorf("no VCO candidate for %.6f MHz: %w", fout, ErrUnreachableFrequency)
	}

	var best Solution
	found := false
	for _, d := range dividers {
		vcoIdeal := feff * float64(d)

		plan, err := SelectDivider(fout, vcoIdeal)
		if err != nil {
			continue
		}

		feedback, err := Approximate(vcoIdeal/RefFrequencyMHz, PLLMaxDenominator, PLLIntMin, PLLIntMax)
		if err != nil {
			continue
		}
		vco := RefFrequencyMHz * feedback.Value()

		plan.Achieved = vco / plan.Divide()
		plan.Error = (plan.Achieved - fout) / fout

		candidate := Solution{
			VCO: VCOCandidate{
				Frequency: vco,
				Feedback:  feedback,
				Error:     (vco - vcoIdeal) / vcoIdeal,
			},
			Plan: plan,
		}

		if !found || better(candidate, best) {
			best = candidate
			found = true
		}
	}
	if !found {
		return Solution{}, fmt.Errorf("no VCO candidate for %.6f MHz: %w", fout, ErrUnreachableFrequency)
	}
	return best, nil
}

// better prefers smaller absolute error; on equal error the simpler
// Multisynth fraction wins
func better(a, b Solution) bool {
	ea, eb := math.Abs(a.Plan.Error), math.Abs(b.Plan.Error)
	if ea != eb {
		return ea < eb
	}
	return a.Plan.Ratio.C < b.Plan.Ratio.C
}

// solveDivBy4 handles the >150 MHz region: fvco = 4*fout must be an even
// integer multiple of the reference so the PLL holds integer mode.
func solveDivBy4(fout float64) (Solution, error) {
	m := 4 * fout / RefFrequencyMHz
	mi := math.Round(m)
	if !near(m, mi, 1e-9*m) || int64(mi)%2 != 0 {
		return Solution{}, fmt.Errorf("%.6f MHz needs PLL multiplier %.4f (want even integer): %w",
			fout, m, ErrUnreachableFrequency)
	}

	vco := RefFrequencyMHz * mi
	if vco < VCOMinMHz || vco > VCOMaxMHz {
		return Solution{}, fmt.Errorf("%.6f MHz puts VCO at %.1f MHz: %w",
			fout, vco, ErrUnreachableFrequency)
	}

	plan, err := SelectDivider(fout, vco)
	if err != nil {
		return Solution{}, err
	}

	return Solution{
		VCO: VCOCandidate{
			Frequency: vco,
			Feedback:  RationalApproximation{A: uint32(mi), B: 0, C: 1},
		},
		Plan: plan,
	}, nil
}
