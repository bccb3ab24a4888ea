package registers

import "testing"

func TestDecodeSynth(t *testing.T) {
	cases := []struct {
		p       SynthParams
		a, b, c uint32
	}{
		{SynthParams{P1: 2560, P2: 0, P3: 1}, 24, 0, 1},
		{SynthParams{P1: 2880, P2: 0, P3: 2}, 26, 1, 2},
		{SynthParams{P1: 3370, P2: 2, P3: 3}, 30, 1, 3},
	}
	for _, tc := range cases {
		a, b, c, err := DecodeSynth(tc.p)
		if err != nil {
			t.Errorf("DecodeSynth(%+v) error: %v", tc.p, err)
			continue
		}
		if a != tc.a || b != tc.b || c != tc.c {
			t.Errorf("DecodeSynth(%+v) = %d + %d/%d, want %d + %d/%d",
				tc.p, a, b, c, tc.a, tc.b, tc.c)
		}
	}

	if _, _, _, err := DecodeSynth(SynthParams{}); err == nil {
		t.Error("DecodeSynth accepted a zero P3")
	}
}

func TestUnpackBlockRoundTrip(t *testing.T) {
	p := EncodeSynth(36, 524288, 1048575)
	block, err := PackMultisynth(p, 16, false)
	if err != nil {
		t.Fatalf("PackMultisynth error: %v", err)
	}

	got, extra := UnpackBlock(block)
	if got != p {
		t.Errorf("UnpackBlock = %+v, want %+v", got, p)
	}
	if IsDivBy4(extra) {
		t.Error("DIVBY4 bits set on a plain divider")
	}
	if RDivValue(extra>>4) != 16 {
		t.Errorf("R divider = %d, want 16", RDivValue(extra>>4))
	}

	d4, err := PackMultisynth(EncodeSynth(4, 0, 1), 1, true)
	if err != nil {
		t.Fatalf("PackMultisynth error: %v", err)
	}
	if _, extra := UnpackBlock(d4); !IsDivBy4(extra) {
		t.Error("DIVBY4 bits not recovered")
	}
}
