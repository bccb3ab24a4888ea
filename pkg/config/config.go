// Package config dumps and restores Si5351A register state as JSON
// snapshots, so a working configuration can be captured from one board and
// replayed onto another.
package config

import (
	"fmt"
	"time"

	"github.com/clkworks/si5351ctl/pkg/registers"
	"github.com/clkworks/si5351ctl/pkg/si5351"
	"github.com/clkworks/si5351ctl/pkg/synth"
)

// RegisterFile is the programmable register state of one Si5351A
type RegisterFile struct {
	InterruptStatus byte       `json:"interrupt_status"`
	OutputEnable    byte       `json:"output_enable"`
	OEBMask         byte       `json:"oeb_mask"`
	PLLInputSource  byte       `json:"pll_input_source"`
	ClockControl    [3]byte    `json:"clock_control"`
	DisableStates   [2]byte    `json:"disable_states"`
	FBAIntMode      byte       `json:"fba_int_mode"`
	FBBIntMode      byte       `json:"fbb_int_mode"`
	PLLA            [8]byte    `json:"plla"`
	PLLB            [8]byte    `json:"pllb"`
	Multisynth      [3][8]byte `json:"multisynth"`
	SSC             [13]byte   `json:"ssc"`
	PhaseOffset     [3]byte    `json:"phase_offset"`
	CrystalLoad     byte       `json:"crystal_load"`
	Fanout          byte       `json:"fanout"`
}

// DeviceConfig is a timestamped register snapshot tagged with the bridge it
// was taken through
type DeviceConfig struct {
	Bridge    string       `json:"bridge"`
	Serial    string       `json:"serial,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Registers RegisterFile `json:"registers"`
}

// DumpFromDevice reads the full register state off the chip
func DumpFromDevice(bus si5351.Bus, bridge, serial string) (*DeviceConfig, error) {
	var r RegisterFile
	var err error

	read := func(reg uint8) byte {
		if err != nil {
			return 0
		}
		var v byte
		v, err = bus.ReadReg(reg)
		return v
	}
	readBlock := func(reg uint8, dst []byte) {
		for i := range dst {
			dst[i] = read(reg + uint8(i))
		}
	}

	r.InterruptStatus = read(registers.RegInterruptStatus)
	r.OutputEnable = read(registers.RegOutputEnable)
	r.OEBMask = read(registers.RegOEBMask)
	r.PLLInputSource = read(registers.RegPLLInputSource)
	readBlock(registers.RegClk0Control, r.ClockControl[:])
	readBlock(registers.RegClkDisableState1, r.DisableStates[:])
	r.FBAIntMode = read(registers.RegFBAIntMode)
	r.FBBIntMode = read(registers.RegFBBIntMode)
	readBlock(registers.RegPLLABase, r.PLLA[:])
	readBlock(registers.RegPLLBBase, r.PLLB[:])
	for clk := 0; clk < 3; clk++ {
		readBlock(registers.MultisynthBase(clk), r.Multisynth[clk][:])
	}
	readBlock(registers.RegSSCBase, r.SSC[:])
	readBlock(registers.RegClk0PhaseOffset, r.PhaseOffset[:])
	r.CrystalLoad = read(registers.RegCrystalLoad)
	r.Fanout = read(registers.RegFanout)

	if err != nil {
		return nil, fmt.Errorf("failed to read registers: %w", err)
	}

	return &DeviceConfig{
		Bridge:    bridge,
		Serial:    serial,
		Timestamp: time.Now(),
		Registers: r,
	}, nil
}

// ApplyToDevice replays a snapshot onto the chip. Outputs are gated off
// while the dividers change and restored after a PLL reset, so the chip
// never runs an intermediate configuration.
func ApplyToDevice(bus si5351.Bus, c *DeviceConfig) error {
	r := &c.Registers

	if err := bus.WriteReg(registers.RegOutputEnable, 0xFF); err != nil {
		return fmt.Errorf("failed to gate outputs: %w", err)
	}

	writes := []struct {
		reg uint8
		val byte
	}{
		{registers.RegOEBMask, r.OEBMask},
		{registers.RegPLLInputSource, r.PLLInputSource},
		{registers.RegFBAIntMode, r.FBAIntMode},
		{registers.RegFBBIntMode, r.FBBIntMode},
		{registers.RegCrystalLoad, r.CrystalLoad},
		{registers.RegFanout, r.Fanout},
	}
	for _, w := range writes {
		if err := bus.WriteReg(w.reg, w.val); err != nil {
			return fmt.Errorf("failed to write reg %d: %w", w.reg, err)
		}
	}

	blocks := []struct {
		reg uint8
		val []byte
	}{
		{registers.RegClk0Control, r.ClockControl[:]},
		{registers.RegClkDisableState1, r.DisableStates[:]},
		{registers.RegPLLABase, r.PLLA[:]},
		{registers.RegPLLBBase, r.PLLB[:]},
		{registers.MultisynthBase(0), r.Multisynth[0][:]},
		{registers.MultisynthBase(1), r.Multisynth[1][:]},
		{registers.MultisynthBase(2), r.Multisynth[2][:]},
		{registers.RegSSCBase, r.SSC[:]},
		{registers.RegClk0PhaseOffset, r.PhaseOffset[:]},
	}
	for _, b := range blocks {
		if err := bus.WriteBlock(b.reg, b.val); err != nil {
			return fmt.Errorf("failed to write block at %d: %w", b.reg, err)
		}
	}

	v := byte(registers.PLLAResetBit | registers.PLLBResetBit)
	if err := bus.WriteReg(registers.RegPLLReset, v); err != nil {
		return fmt.Errorf("failed to reset PLLs: %w", err)
	}

	if err := bus.WriteReg(registers.RegOutputEnable, r.OutputEnable); err != nil {
		return fmt.Errorf("failed to restore output enables: %w", err)
	}
	return nil
}

// PLLFrequencyMHz decodes one feedback divider block into the VCO frequency
func (c *DeviceConfig) PLLFrequencyMHz(pll synth.PLL) (float64, error) {
	block := c.Registers.PLLA
	if pll == synth.PLLB {
		block = c.Registers.PLLB
	}
	p, _ := registers.UnpackBlock(block)
	a, b, d, err := registers.DecodeSynth(p)
	if err != nil {
		return 0, fmt.Errorf("PLL%s: %w", pll, err)
	}
	ratio := synth.RationalApproximation{A: a, B: b, C: d}
	return synth.RefFrequencyMHz * ratio.Value(), nil
}

// OutputFrequencyMHz decodes one output chain: VCO through the Multisynth
// divider and R divider
func (c *DeviceConfig) OutputFrequencyMHz(clk int) (float64, error) {
	ctl := c.Registers.ClockControl[clk]
	pll := synth.PLLA
	if ctl&(1<<5) != 0 {
		pll = synth.PLLB
	}
	vco, err := c.PLLFrequencyMHz(pll)
	if err != nil {
		return 0, err
	}

	p, extra := registers.UnpackBlock(c.Registers.Multisynth[clk])
	rdiv := float64(registers.RDivValue(extra >> 4))
	if registers.IsDivBy4(extra) {
		return vco / 4 / rdiv, nil
	}
	a, b, d, err := registers.DecodeSynth(p)
	if err != nil {
		return 0, fmt.Errorf("MS%d: %w", clk, err)
	}
	ratio := synth.RationalApproximation{A: a, B: b, C: d}
	return vco / ratio.Value() / rdiv, nil
}

// OutputEnabled reports whether one clock output is gated on. The enable
// register is active-low.
func (c *DeviceConfig) OutputEnabled(clk int) bool {
	return c.Registers.OutputEnable&(1<<uint(clk)) == 0
}

// SSCEnabled reports whether spread spectrum is active
func (c *DeviceConfig) SSCEnabled() bool {
	return c.Registers.SSC[0]&registers.SSCEnableBit != 0
}
