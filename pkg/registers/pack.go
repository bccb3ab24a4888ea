package registers

import "fmt"

// SynthParams holds the P1/P2/P3 encoding of an a + b/c divider ratio as
// laid out in the AN619 register map
type SynthParams struct {
	P1, P2, P3 uint32
}

// EncodeSynth converts an a + b/c ratio into its P1/P2/P3 register encoding:
//
//	P1 = 128*a + floor(128*b/c) - 512
//	P2 = 128*b - c*floor(128*b/c)
//	P3 = c
func EncodeSynth(a, b, c uint32) SynthParams {
	t := 128 * uint64(b) / uint64(c)
	return SynthParams{
		P1: 128*a + uint32(t) - 512,
		P2: 128*b - c*uint32(t),
		P3: c,
	}
}

// PackPLL lays out a feedback divider block: the 8 bytes written starting at
// RegPLLABase or RegPLLBBase
func PackPLL(p SynthParams) [8]byte {
	return packBlock(p, 0)
}

// PackMultisynth lays out an output divider block, folding the R divider and
// DIVBY4 bits into the third byte. rdiv must be a power of two in 1..128.
func PackMultisynth(p SynthParams, rdiv uint32, divby4 bool) ([8]byte, error) {
	rbits, err := RDivBits(rdiv)
	if err != nil {
		return [8]byte{}, err
	}
	extra := rbits << 4
	if divby4 {
		extra |= 0x3 << 2 // MS_DIVBY4[1:0] = 11b
	}
	return packBlock(p, extra), nil
}

// packBlock produces the common 8-byte divider layout:
//
//	+0  P3[15:8]
//	+1  P3[7:0]
//	+2  extra | P1[17:16]
//	+3  P1[15:8]
//	+4  P1[7:0]
//	+5  P3[19:16]<<4 | P2[19:16]
//	+6  P2[15:8]
//	+7  P2[7:0]
func packBlock(p SynthParams, extra uint8) [8]byte {
	return [8]byte{
		byte(p.P3 >> 8),
		byte(p.P3),
		extra | byte(p.P1>>16)&0x03,
		byte(p.P1 >> 8),
		byte(p.P1),
		(byte(p.P3>>16)&0x0F)<<4 | byte(p.P2>>16)&0x0F,
		byte(p.P2 >> 8),
		byte(p.P2),
	}
}

// RDivBits maps a power-of-two R divider onto its 3-bit register encoding
func RDivBits(rdiv uint32) (uint8, error) {
	switch rdiv {
	case 1:
		return 0b000, nil
	case 2:
		return 0b001, nil
	case 4:
		return 0b010, nil
	case 8:
		return 0b011, nil
	case 16:
		return 0b100, nil
	case 32:
		return 0b101, nil
	case 64:
		return 0b110, nil
	case 128:
		return 0b111, nil
	}
	return 0, fmt.Errorf("invalid R divider %d", rdiv)
}

// ClockSource selects what a clock output driver is fed from
type ClockSource uint8

const (
	SourceXtal       ClockSource = 0b00
	SourceClkin      ClockSource = 0b01
	SourceClk0       ClockSource = 0b10
	SourceMultisynth ClockSource = 0b11
)

// ClockControl describes one CLKx control register
type ClockControl struct {
	PowerDown     bool
	IntegerMode   bool
	PLLB          bool // false selects PLLA as the Multisynth source
	Invert        bool
	Source        ClockSource
	DriveStrength int // mA: 2, 4, 6 or 8
}

// Byte packs the control register value
func (c ClockControl) Byte() uint8 {
	var v uint8
	if c.PowerDown {
		v |= 1 << 7
	}
	if c.IntegerMode {
		v |= 1 << 6
	}
	if c.PLLB {
		v |= 1 << 5
	}
	if c.Invert {
		v |= 1 << 4
	}
	v |= uint8(c.Source) << 2
	switch c.DriveStrength {
	case 4:
		v |= 0b01
	case 6:
		v |= 0b10
	case 8:
		v |= 0b11
	}
	return v
}

// PackSSC lays out the 13-byte spread spectrum block written at RegSSCBase
// (registers 149-161). The down-spread P1/P2/P3, up-spread P1/P2/P3 and the
// SSUDP period are 12/15-bit fields; center selects the symmetric spread
// mode bit carried in the SSDN_P3 high byte. Bit 7 of the first byte (the
// spread enable) is left clear; enabling is a separate read-modify-write.
func PackSSC(udp, dnP1, dnP2, dnP3, upP1, upP2, upP3 uint32, center bool) [13]byte {
	var b [13]byte

	b[0] = byte(dnP2>>8) & 0x7F // bit 7 reserved for SSC_EN
	b[1] = byte(dnP2)

	b[2] = byte(dnP3>>8) & 0x7F
	if center {
		b[2] |= 1 << 7 // SSC_MODE
	}
	b[3] = byte(dnP3)

	b[4] = byte(dnP1)
	b[5] = (byte(udp>>8)&0x0F)<<4 | byte(dnP1>>8)&0x0F
	b[6] = byte(udp)

	b[7] = byte(upP2 >> 8)
	b[8] = byte(upP2)
	b[9] = byte(upP3 >> 8)
	b[10] = byte(upP3)
	b[11] = byte(upP1)
	b[12] = byte(upP1>>8) & 0x0F

	return b
}

// CrystalLoadByte encodes the internal crystal load capacitance register.
// Valid values are 6, 8 and 10 pF.
func CrystalLoadByte(pf int) (uint8, error) {
	// Low bits are a fixed reserved pattern per AN619
	const reserved = 0b010010
	switch pf {
	case 6:
		return 0b01<<6 | reserved, nil
	case 8:
		return 0b10<<6 | reserved, nil
	case 10:
		return 0b11<<6 | reserved, nil
	}
	return 0, fmt.Errorf("invalid crystal load %d pF", pf)
}

// DisableState is the output driver state while a clock is disabled
type DisableState uint8

const (
	DisableLow           DisableState = 0b00
	DisableHigh          DisableState = 0b01
	DisableHighImpedance DisableState = 0b10
	DisableNever         DisableState = 0b11
)

// DisableStateBytes packs the per-clock disable states for CLK0-7 into the
// two registers at RegClkDisableState1/2
func DisableStateBytes(states [8]DisableState) [2]byte {
	var b [2]byte
	for i, s := range states {
		shift := uint(2 * (i % 4))
		b[i/4] |= byte(s) << shift
	}
	return b
}
