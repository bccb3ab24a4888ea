package registers

import "fmt"

// UnpackBlock recovers the P1/P2/P3 fields plus the extra bits (R divider
// and DIVBY4 for Multisynth blocks, zero for PLL blocks) from an 8-byte
// divider block read back from the chip
func UnpackBlock(b [8]byte) (SynthParams, uint8) {
	p := SynthParams{
		P1: uint32(b[2]&0x03)<<16 | uint32(b[3])<<8 | uint32(b[4]),
		P2: uint32(b[5]&0x0F)<<16 | uint32(b[6])<<8 | uint32(b[7]),
		P3: uint32(b[5]>>4)<<16 | uint32(b[0])<<8 | uint32(b[1]),
	}
	return p, b[2] &^ 0x03
}

// DecodeSynth inverts EncodeSynth, recovering the a + b/c ratio. The DIVBY4
// encoding (all fields zero) is not handled here; callers check the DIVBY4
// bits first.
func DecodeSynth(p SynthParams) (a, b, c uint32, err error) {
	if p.P3 == 0 {
		return 0, 0, 0, fmt.Errorf("invalid divider encoding: P3 = 0")
	}
	t := p.P1 + 512
	a = t / 128
	f := t % 128
	num := uint64(p.P2) + uint64(f)*uint64(p.P3)
	if num%128 != 0 {
		return 0, 0, 0, fmt.Errorf("invalid divider encoding: P1=%d P2=%d P3=%d", p.P1, p.P2, p.P3)
	}
	return a, uint32(num / 128), p.P3, nil
}

// RDivValue maps the 3-bit R divider encoding back to its divide value
func RDivValue(bits uint8) uint32 {
	return 1 << (bits & 0x07)
}

// IsDivBy4 reports whether a Multisynth block's extra bits select the
// special divide-by-4 mode
func IsDivBy4(extra uint8) bool {
	return extra&(0x3<<2) == 0x3<<2
}
