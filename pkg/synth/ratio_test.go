package synth

import (
	"errors"
	"math"
	"testing"
)

func TestApproximate(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		want   RationalApproximation
	}{
		{"exact integer", 24.0, RationalApproximation{A: 24, B: 0, C: 1}},
		{"half", 26.5, RationalApproximation{A: 26, B: 524288, C: PLLMaxDenominator}},
		{"carry into next integer", 23.99999999999, RationalApproximation{A: 24, B: 0, C: 1}},
		{"lower bound", 15.0, RationalApproximation{A: 15, B: 0, C: 1}},
		{"upper bound", 90.0, RationalApproximation{A: 90, B: 0, C: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Approximate(tt.target, PLLMaxDenominator, PLLIntMin, PLLIntMax)
			if err != nil {
				t.Fatalf("Approximate(%v) error: %v", tt.target, err)
			}
			if got != tt.want {
				t.Errorf("Approximate(%v) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestApproximateUnreachable(t *testing.T) {
	for _, target := range []float64{14.2, 91.0, 95.2, -1.0} {
		_, err := Approximate(target, PLLMaxDenominator, PLLIntMin, PLLIntMax)
		if !errors.Is(err, ErrRatioUnreachable) {
			t.Errorf("Approximate(%v) error = %v, want ErrRatioUnreachable", target, err)
		}
	}
}

func TestApproximateResidual(t *testing.T) {
	// Across the PLL integer range the fixed-denominator policy must hold
	// the residual under half a denominator step
	for target := 15.1; target < 90; target += 0.7 {
		got, err := Approximate(target, PLLMaxDenominator, PLLIntMin, PLLIntMax)
		if err != nil {
			t.Fatalf("Approximate(%v) error: %v", target, err)
		}
		residual := math.Abs(got.Value() - target)
		if residual > 0.5/float64(PLLMaxDenominator)+1e-12 {
			t.Errorf("Approximate(%v) residual %.3g too large", target, residual)
		}
		if got.B >= got.C {
			t.Errorf("Approximate(%v) = %v violates b < c", target, got)
		}
	}
}
