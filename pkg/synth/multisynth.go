package synth

import (
	"fmt"
	"math"
)

// MultisynthPlan is a fully-resolved output divider stage: the chosen
// Multisynth ratio, the power-of-two R pre-divider and, for outputs above
// 150 MHz, the fixed divide-by-4 mode.
type MultisynthPlan struct {
	Target   float64 // MHz, as requested
	RDiv     uint32  // power of two in 1..128
	Ratio    RationalApproximation
	DivBy4   bool
	Achieved float64 // MHz, back-substituted from the divider chain
	Error    float64 // signed relative error (Achieved-Target)/Target
}

// Divide returns the total output division applied to the VCO frequency
func (p MultisynthPlan) Divide() float64 {
	return p.Ratio.Value() * float64(p.RDiv)
}

// SelectDivider chooses the output divider bringing the trial VCO frequency
// down to fout. Outputs above 150 MHz force DIVBY4 mode and require
// fvco = 4*fout; very low outputs pick up an R pre-divider so the Multisynth
// ratio lands back inside its normal range.
func SelectDivider(fout, fvco float64) (MultisynthPlan, error) {
	if fout > DivBy4ThresholdMHz {
		if !near(fvco, 4*fout, 4*fout*1e-9) {
			return MultisynthPlan{}, fmt.Errorf("DIVBY4 needs fvco=4*fout, got %.6f MHz: %w",
				fvco, ErrDividerUnreachable)
		}
		plan := MultisynthPlan{
			Target: fout,
			RDiv:   1,
			Ratio:  RationalApproximation{A: MultisynthDiv4, B: 0, C: 1},
			DivBy4: true,
		}
		plan.Achieved = fvco / plan.Divide()
		plan.Error = (plan.Achieved - fout) / fout
		return plan, nil
	}

	z := fvco / fout
	r := uint32(1)
	for z/float64(r) > MultisynthMaxRatio && r <= RDivMax {
		r *= 2
	}
	if r > RDivMax {
		return MultisynthPlan{}, fmt.Errorf("fout %.6f MHz too low for R divider: %w",
			fout, ErrDividerUnreachable)
	}
	zr := z / float64(r)

	var ratio RationalApproximation
	switch {
	case near(zr, MultisynthDiv6, 1e-6):
		// 6 is a legal integer-only divide below the normal range
		ratio = RationalApproximation{A: MultisynthDiv6, B: 0, C: 1}
	case zr < MultisynthIntMin:
		return MultisynthPlan{}, fmt.Errorf("divide ratio %.4f below %d: %w",
			zr, MultisynthIntMin, ErrDividerUnreachable)
	default:
		var err error
		ratio, err = Approximate(zr, MultisynthMaxDenominator, MultisynthIntMin, MultisynthIntMax)
		if err != nil {
			return MultisynthPlan{}, err
		}
	}

	plan := MultisynthPlan{
		Target: fout,
		RDiv:   r,
		Ratio:  ratio,
	}
	plan.Achieved = fvco / plan.Divide()
	plan.Error = (plan.Achieved - fout) / fout
	return plan, nil
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
