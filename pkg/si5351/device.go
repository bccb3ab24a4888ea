// Package si5351 programs the Si5351A clock generator from solved channel
// plans. It is transport-agnostic: any I2C bridge implementing Bus works.
package si5351

import (
	"fmt"

	"github.com/clkworks/si5351ctl/pkg/registers"
	"github.com/clkworks/si5351ctl/pkg/synth"
)

// DefaultAddress is the Si5351A's fixed I2C address
const DefaultAddress = 0x60

// Bus is the register-level transport to the chip
type Bus interface {
	// WriteReg writes one register
	WriteReg(reg uint8, value byte) error
	// ReadReg reads one register
	ReadReg(reg uint8) (byte, error)
	// WriteBlock writes consecutive registers starting at reg
	WriteBlock(reg uint8, values []byte) error
}

// Device drives one Si5351A through a Bus
type Device struct {
	bus Bus
}

// New wraps a bus. The chip is left untouched until Initialize or Apply.
func New(bus Bus) *Device {
	return &Device{bus: bus}
}

// Initialize brings the chip to a known parked state: outputs disabled and
// powered down, OEB pins masked, 8 pF crystal load, both PLLs at 600 MHz in
// integer mode, all three Multisynths parked at 125 kHz, spread spectrum
// loaded with defaults but disabled, outputs high-impedance while disabled.
func (d *Device) Initialize() error {
	if err := d.DisableAllOutputs(true); err != nil {
		return err
	}
	if err := d.bus.WriteReg(registers.RegOEBMask, 0xFF); err != nil {
		return fmt.Errorf("failed to mask OEB pins: %w", err)
	}
	if err := d.SetCrystalLoad(8); err != nil {
		return err
	}

	x24 := synth.RationalApproximation{A: 24, B: 0, C: 1}
	for _, pll := range []synth.PLL{synth.PLLA, synth.PLLB} {
		if err := d.SetPLL(pll, x24, true); err != nil {
			return err
		}
	}

	for clk := 0; clk < 3; clk++ {
		cc := registers.ClockControl{
			IntegerMode:   true,
			PLLB:          clk == 2,
			Source:        registers.SourceMultisynth,
			DriveStrength: 2,
		}
		if err := d.SetClockControl(clk, cc); err != nil {
			return err
		}
		// 600 MHz / 1200 / 4 = 125 kHz
		park := synth.RationalApproximation{A: 1200, B: 0, C: 1}
		if err := d.SetMultisynth(clk, park, 4, false); err != nil {
			return err
		}
	}

	if err := d.PLLReset(); err != nil {
		return err
	}
	if err := d.bus.WriteReg(registers.RegFanout, 0x00); err != nil {
		return fmt.Errorf("failed to disable fanout: %w", err)
	}

	ssc, err := synth.ComputeSSC(0.015, synth.SSCModeCenter, x24)
	if err != nil {
		return err
	}
	if err := d.SetSpreadSpectrum(ssc); err != nil {
		return err
	}
	if err := d.SpreadSpectrumEnable(false); err != nil {
		return err
	}

	var states [8]registers.DisableState
	for i := range states {
		states[i] = registers.DisableHighImpedance
	}
	if err := d.SetDisableStates(states); err != nil {
		return err
	}
	for clk := 0; clk < 3; clk++ {
		if err := d.bus.WriteReg(registers.PhaseOffsetReg(clk), 0); err != nil {
			return fmt.Errorf("failed to clear phase offset: %w", err)
		}
	}
	return d.ClearStatus()
}

// SetPLL programs one feedback divider and its integer-mode flag
func (d *Device) SetPLL(pll synth.PLL, ratio synth.RationalApproximation, intMode bool) error {
	// Both PLLs source the crystal
	if err := d.bus.WriteReg(registers.RegPLLInputSource, 0x00); err != nil {
		return fmt.Errorf("failed to set PLL input source: %w", err)
	}

	ctrlReg := uint8(registers.RegFBAIntMode)
	if pll == synth.PLLB {
		ctrlReg = registers.RegFBBIntMode
	}
	v, err := d.bus.ReadReg(ctrlReg)
	if err != nil {
		return fmt.Errorf("failed to read PLL%s mode: %w", pll, err)
	}
	v &= 0xBF
	if intMode {
		v |= 1 << 6
	}
	if err := d.bus.WriteReg(ctrlReg, v); err != nil {
		return fmt.Errorf("failed to set PLL%s mode: %w", pll, err)
	}

	base := uint8(registers.RegPLLABase)
	if pll == synth.PLLB {
		base = registers.RegPLLBBase
	}
	block := registers.PackPLL(registers.EncodeSynth(ratio.A, ratio.B, ratio.C))
	if err := d.bus.WriteBlock(base, block[:]); err != nil {
		return fmt.Errorf("failed to write PLL%s dividers: %w", pll, err)
	}
	return nil
}

// SetMultisynth programs one output divider block
func (d *Device) SetMultisynth(clk int, ratio synth.RationalApproximation, rdiv uint32, divby4 bool) error {
	block, err := registers.PackMultisynth(registers.EncodeSynth(ratio.A, ratio.B, ratio.C), rdiv, divby4)
	if err != nil {
		return err
	}
	if err := d.bus.WriteBlock(registers.MultisynthBase(clk), block[:]); err != nil {
		return fmt.Errorf("failed to write MS%d dividers: %w", clk, err)
	}
	return nil
}

// SetClockControl programs one CLKx control register
func (d *Device) SetClockControl(clk int, cc registers.ClockControl) error {
	if err := d.bus.WriteReg(registers.ClockControlReg(clk), cc.Byte()); err != nil {
		return fmt.Errorf("failed to write CLK%d control: %w", clk, err)
	}
	return nil
}

// EnableOutput gates one clock output on or off in the output enable mask.
// The enable register is active-low.
func (d *Device) EnableOutput(clk int, on bool) error {
	v, err := d.bus.ReadReg(registers.RegOutputEnable)
	if err != nil {
		return fmt.Errorf("failed to read output enables: %w", err)
	}
	if on {
		v &^= 1 << uint(clk)
	} else {
		v |= 1 << uint(clk)
	}
	if err := d.bus.WriteReg(registers.RegOutputEnable, v); err != nil {
		return fmt.Errorf("failed to write output enables: %w", err)
	}
	return nil
}

// DisableAllOutputs disables all eight outputs, optionally powering down
// their drivers as well
func (d *Device) DisableAllOutputs(powerDown bool) error {
	if err := d.bus.WriteReg(registers.RegOutputEnable, 0xFF); err != nil {
		return fmt.Errorf("failed to disable outputs: %w", err)
	}
	if powerDown {
		down := make([]byte, 8)
		for i := range down {
			down[i] = 0x80
		}
		if err := d.bus.WriteBlock(registers.RegClk0Control, down); err != nil {
			return fmt.Errorf("failed to power down drivers: %w", err)
		}
	}
	return nil
}

// PLLReset soft-resets both PLLs so new divider values take effect
func (d *Device) PLLReset() error {
	v := byte(registers.PLLAResetBit | registers.PLLBResetBit)
	if err := d.bus.WriteReg(registers.RegPLLReset, v); err != nil {
		return fmt.Errorf("failed to reset PLLs: %w", err)
	}
	return nil
}

// SetCrystalLoad sets the internal crystal load capacitance (6, 8 or 10 pF)
func (d *Device) SetCrystalLoad(pf int) error {
	v, err := registers.CrystalLoadByte(pf)
	if err != nil {
		return err
	}
	if err := d.bus.WriteReg(registers.RegCrystalLoad, v); err != nil {
		return fmt.Errorf("failed to set crystal load: %w", err)
	}
	return nil
}

// SetDisableStates sets the per-output driver state used while disabled
func (d *Device) SetDisableStates(states [8]registers.DisableState) error {
	b := registers.DisableStateBytes(states)
	if err := d.bus.WriteBlock(registers.RegClkDisableState1, b[:]); err != nil {
		return fmt.Errorf("failed to set disable states: %w", err)
	}
	return nil
}

// SetSpreadSpectrum loads the SSC parameter block without enabling it
func (d *Device) SetSpreadSpectrum(p synth.SSCParameters) error {
	block := registers.PackSSC(p.UDP, p.DownP1, p.DownP2, p.DownP3,
		p.UpP1, p.UpP2, p.UpP3, p.Mode == synth.SSCModeCenter)
	if err := d.bus.WriteBlock(registers.RegSSCBase, block[:]); err != nil {
		return fmt.Errorf("failed to write SSC block: %w", err)
	}
	return nil
}

// SpreadSpectrumEnable flips the SSC enable bit, preserving the parameter
// bits sharing its register
func (d *Device) SpreadSpectrumEnable(on bool) error {
	v, err := d.bus.ReadReg(registers.RegSSCBase)
	if err != nil {
		return fmt.Errorf("failed to read SSC enable: %w", err)
	}
	if on {
		v |= registers.SSCEnableBit
	} else {
		v &^= registers.SSCEnableBit
	}
	if err := d.bus.WriteReg(registers.RegSSCBase, v); err != nil {
		return fmt.Errorf("failed to write SSC enable: %w", err)
	}
	return nil
}

// ReadStatus returns the sticky interrupt status register
func (d *Device) ReadStatus() (byte, error) {
	return d.bus.ReadReg(registers.RegInterruptStatus)
}

// ClearStatus clears the sticky interrupt status register
func (d *Device) ClearStatus() error {
	if err := d.bus.WriteReg(registers.RegInterruptStatus, 0); err != nil {
		return fmt.Errorf("failed to clear status: %w", err)
	}
	return nil
}
