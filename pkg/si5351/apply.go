package si5351

import (
	"fmt"

	"github.com/clkworks/si5351ctl/pkg/registers"
	"github.com/clkworks/si5351ctl/pkg/synth"
)

// OutputDriveStrength is the drive used for active outputs, in mA
const OutputDriveStrength = 8

// Apply programs a solved channel plan: feedback dividers, output dividers,
// control registers, the optional spread spectrum block, then a PLL reset
// and the output enables.
func (d *Device) Apply(plan synth.ChannelPlan) error {
	sol0 := plan.Channels[0].Solution

	// Integer mode needs b=0 and an even multiplier; spread spectrum forces
	// PLLA fractional
	intModeA := pllIntegerMode(sol0.VCO.Feedback) && !plan.SSC.Enabled
	if err := d.SetPLL(synth.PLLA, sol0.VCO.Feedback, intModeA); err != nil {
		return err
	}

	intMode := [3]bool{intModeA, intModeA, intModeA}
	if ch2 := plan.Channels[2]; ch2.Enabled && ch2.PLL == synth.PLLB {
		intMode[2] = pllIntegerMode(ch2.Solution.VCO.Feedback)
		if err := d.SetPLL(synth.PLLB, ch2.Solution.VCO.Feedback, intMode[2]); err != nil {
			return err
		}
	}

	for _, ch := range plan.Channels {
		cc := registers.ClockControl{
			PowerDown:     !ch.Enabled,
			IntegerMode:   intMode[ch.Channel],
			PLLB:          ch.PLL == synth.PLLB,
			Invert:        ch.Inverted,
			Source:        registers.SourceMultisynth,
			DriveStrength: OutputDriveStrength,
		}
		if err := d.SetClockControl(ch.Channel, cc); err != nil {
			return err
		}
		if !ch.Enabled {
			continue
		}
		p := ch.Solution.Plan
		if err := d.SetMultisynth(ch.Channel, p.Ratio, p.RDiv, p.DivBy4); err != nil {
			return err
		}
	}

	if plan.SSC.Enabled {
		if err := d.SetSpreadSpectrum(plan.SSC); err != nil {
			return err
		}
		if err := d.SpreadSpectrumEnable(true); err != nil {
			return err
		}
	} else if err := d.SpreadSpectrumEnable(false); err != nil {
		return err
	}

	if err := d.PLLReset(); err != nil {
		return err
	}

	for _, ch := range plan.Channels {
		if !ch.Enabled {
			continue
		}
		if err := d.EnableOutput(ch.Channel, true); err != nil {
			return fmt.Errorf("CLK%d: %w", ch.Channel, err)
		}
	}
	return nil
}

func pllIntegerMode(feedback synth.RationalApproximation) bool {
	return feedback.IsInteger() && feedback.A%2 == 0
}
