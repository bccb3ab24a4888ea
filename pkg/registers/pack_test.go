package registers

import "testing"

func TestEncodeSynth(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint32
		want    SynthParams
	}{
		{"integer x24", 24, 0, 1, SynthParams{P1: 2560, P2: 0, P3: 1}},
		{"divby4", 4, 0, 1, SynthParams{P1: 0, P2: 0, P3: 1}},
		{"integer 1200", 1200, 0, 1, SynthParams{P1: 153088, P2: 0, P3: 1}},
		// 26 + 1/2: floor(128*1/2)=64, P1=128*26+64-512, P2=128-2*64=0
		{"half fraction", 26, 1, 2, SynthParams{P1: 2880, P2: 0, P3: 2}},
		// 30 + 1/3: floor(128/3)=42, P2 = 128 - 3*42 = 2
		{"third fraction", 30, 1, 3, SynthParams{P1: 3370, P2: 2, P3: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeSynth(tt.a, tt.b, tt.c)
			if got != tt.want {
				t.Errorf("EncodeSynth(%d,%d,%d) = %+v, want %+v", tt.a, tt.b, tt.c, got, tt.want)
			}
		})
	}
}

func TestPackPLL(t *testing.T) {
	got := PackPLL(EncodeSynth(24, 0, 1))
	want := [8]byte{0x00, 0x01, 0x00, 0x0A, 0x00, 0x00, 0x00, 0x00}
	if got != want {
		t.Errorf("PackPLL = % X, want % X", got, want)
	}
}

func TestPackMultisynth(t *testing.T) {
	// P1 for 1200 is 153088 = 0x025600; R divider 4 encodes as 0b010
	got, err := PackMultisynth(EncodeSynth(1200, 0, 1), 4, false)
	if err != nil {
		t.Fatalf("PackMultisynth error: %v", err)
	}
	want := [8]byte{0x00, 0x01, 0x22, 0x56, 0x00, 0x00, 0x00, 0x00}
	if got != want {
		t.Errorf("PackMultisynth = % X, want % X", got, want)
	}
}

func TestPackMultisynthDivBy4(t *testing.T) {
	got, err := PackMultisynth(EncodeSynth(4, 0, 1), 1, true)
	if err != nil {
		t.Fatalf("PackMultisynth error: %v", err)
	}
	// P1=0 and MS_DIVBY4[1:0]=11b in byte 2
	want := [8]byte{0x00, 0x01, 0x0C, 0x00, 0x00, 0x00, 0x00, 0x00}
	if got != want {
		t.Errorf("PackMultisynth = % X, want % X", got, want)
	}

	if _, err := PackMultisynth(EncodeSynth(4, 0, 1), 3, true); err == nil {
		t.Error("rdiv=3 accepted")
	}
}

func TestClockControlByte(t *testing.T) {
	tests := []struct {
		name string
		cc   ClockControl
		want uint8
	}{
		{
			"powered int-mode 8mA",
			ClockControl{IntegerMode: true, Source: SourceMultisynth, DriveStrength: 8},
			0x4F,
		},
		{
			"powered-down",
			ClockControl{PowerDown: true, Source: SourceMultisynth, DriveStrength: 2},
			0x8C,
		},
		{
			"inverted on PLLB",
			ClockControl{PLLB: true, Invert: true, Source: SourceMultisynth, DriveStrength: 8},
			0x3F,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cc.Byte(); got != tt.want {
				t.Errorf("Byte() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestPackSSC(t *testing.T) {
	b := PackSSC(198, 0, 3784, 32767, 0, 3842, 32767, true)

	if b[0]&SSCEnableBit != 0 {
		t.Error("enable bit set by PackSSC")
	}
	if b[2]&0x80 == 0 {
		t.Error("center mode bit not set")
	}
	// SSDN_P2 = 3784 = 0x0EC8
	if b[0] != 0x0E || b[1] != 0xC8 {
		t.Errorf("SSDN_P2 bytes = %02X %02X", b[0], b[1])
	}
	// SSUDP = 198 = 0x0C6: high nibble into bits 7:4 of byte 5
	if b[5] != 0x00 || b[6] != 0xC6 {
		t.Errorf("SSUDP bytes = %02X %02X", b[5], b[6])
	}
	// SSUP_P2 = 3842 = 0x0F02
	if b[7] != 0x0F || b[8] != 0x02 {
		t.Errorf("SSUP_P2 bytes = %02X %02X", b[7], b[8])
	}

	down := PackSSC(198, 0, 3784, 32767, 0, 0, 1, false)
	if down[2]&0x80 != 0 {
		t.Error("center mode bit set in down mode")
	}
}

func TestCrystalLoadByte(t *testing.T) {
	got, err := CrystalLoadByte(8)
	if err != nil {
		t.Fatalf("CrystalLoadByte error: %v", err)
	}
	if got != 0x92 {
		t.Errorf("CrystalLoadByte(8) = 0x%02X, want 0x92", got)
	}
	if _, err := CrystalLoadByte(12); err == nil {
		t.Error("12 pF accepted")
	}
}

func TestDisableStateBytes(t *testing.T) {
	var states [8]DisableState
	for i := range states {
		states[i] = DisableHighImpedance
	}
	b := DisableStateBytes(states)
	if b[0] != 0xAA || b[1] != 0xAA {
		t.Errorf("DisableStateBytes = % X, want AA AA", b)
	}
}
