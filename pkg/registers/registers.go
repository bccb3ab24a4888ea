package registers

// Si5351A register addresses (AN619 register model)
const (
	RegDeviceStatus    = 0
	RegInterruptStatus = 1
	RegOutputEnable    = 3
	RegOEBMask         = 9
	RegPLLInputSource  = 15

	// Clock control, one register per output
	RegClk0Control = 16
	RegClk1Control = 17
	RegClk2Control = 18

	// Feedback divider integer-mode bits (bit 6)
	RegFBAIntMode = 22
	RegFBBIntMode = 23

	RegClkDisableState1 = 24 // CLK3..CLK0
	RegClkDisableState2 = 25 // CLK7..CLK4

	// Feedback divider blocks, 8 bytes each
	RegPLLABase = 26
	RegPLLBBase = 34

	// Multisynth divider blocks, 8 bytes each
	RegMS0Base = 42
	RegMS1Base = 50
	RegMS2Base = 58

	// Spread spectrum block, 13 bytes (149-161)
	RegSSCBase = 149

	// Initial phase offset, one register per output
	RegClk0PhaseOffset = 165
	RegClk1PhaseOffset = 166
	RegClk2PhaseOffset = 167

	RegPLLReset    = 177
	RegCrystalLoad = 183
	RegFanout      = 187
)

// RegPLLReset bits
const (
	PLLAResetBit = 1 << 5
	PLLBResetBit = 1 << 7
)

// RegSSCBase bit 7 enables spread spectrum
const SSCEnableBit = 1 << 7

// MultisynthBase returns the divider block base for clock 0, 1 or 2
func MultisynthBase(clk int) uint8 {
	return uint8(RegMS0Base + 8*clk)
}

// ClockControlReg returns the control register for clock 0, 1 or 2
func ClockControlReg(clk int) uint8 {
	return uint8(RegClk0Control + clk)
}

// PhaseOffsetReg returns the initial phase offset register for clock 0-7
func PhaseOffsetReg(clk int) uint8 {
	return uint8(RegClk0PhaseOffset + clk)
}
