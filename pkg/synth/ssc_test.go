package synth

import (
	"errors"
	"testing"
)

func TestComputeSSCCenter(t *testing.T) {
	// Hand-computed for amp 1.5% against a x24 PLL:
	// SSUDP = floor(25e6/(4*31500)) = 198
	// SSDN  = 128*24*0.0075/(1.0075*198) ~ 0.11550
	// SSUP  = 128*24*0.0075/(0.9925*198) ~ 0.11724
	p, err := ComputeSSC(0.015, SSCModeCenter, RationalApproximation{A: 24, B: 0, C: 1})
	if err != nil {
		t.Fatalf("ComputeSSC error: %v", err)
	}
	if p.UDP != 198 {
		t.Errorf("UDP = %d, want 198", p.UDP)
	}
	if p.DownP1 != 0 || p.DownP2 != 3784 || p.DownP3 != 32767 {
		t.Errorf("down = %d/%d/%d, want 0/3784/32767", p.DownP1, p.DownP2, p.DownP3)
	}
	if p.UpP1 != 0 || p.UpP2 != 3842 || p.UpP3 != 32767 {
		t.Errorf("up = %d/%d/%d, want 0/3842/32767", p.UpP1, p.UpP2, p.UpP3)
	}
}

func TestComputeSSCDown(t *testing.T) {
	p, err := ComputeSSC(0.015, SSCModeDown, RationalApproximation{A: 24, B: 0, C: 1})
	if err != nil {
		t.Fatalf("ComputeSSC error: %v", err)
	}
	if p.UpP1 != 0 || p.UpP2 != 0 || p.UpP3 != 1 {
		t.Errorf("down mode up-spread = %d/%d/%d, want 0/0/1", p.UpP1, p.UpP2, p.UpP3)
	}
	if p.DownP3 != 32767 {
		t.Errorf("DownP3 = %d, want 32767", p.DownP3)
	}
}

func TestComputeSSCFractionalFeedback(t *testing.T) {
	// Only the integer part of the feedback ratio enters the formula
	whole, err := ComputeSSC(0.02, SSCModeCenter, RationalApproximation{A: 30, B: 0, C: 1})
	if err != nil {
		t.Fatalf("ComputeSSC error: %v", err)
	}
	frac, err := ComputeSSC(0.02, SSCModeCenter, RationalApproximation{A: 30, B: 1000, C: PLLMaxDenominator})
	if err != nil {
		t.Fatalf("ComputeSSC error: %v", err)
	}
	if whole != frac {
		t.Errorf("fractional feedback changed fields: %+v vs %+v", whole, frac)
	}
}

func TestComputeSSCAmplitudeOutOfRange(t *testing.T) {
	fb := RationalApproximation{A: 36, B: 0, C: 1}
	for _, amp := range []float64{0, -0.01, 2.0, 1.9999} {
		if _, err := ComputeSSC(amp, SSCModeCenter, fb); !errors.Is(err, ErrAmplitudeOutOfRange) {
			t.Errorf("amp %v: error = %v, want ErrAmplitudeOutOfRange", amp, err)
		}
	}
}
