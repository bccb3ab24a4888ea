package synth

import (
	"errors"
	"math"
	"testing"
)

func TestPlanChannelsSingle(t *testing.T) {
	plan, err := PlanChannels(FrequencyRequest{Fout0: 100})
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	ch0 := plan.Channels[0]
	if !ch0.Enabled || ch0.Inverted || ch0.PLL != PLLA {
		t.Errorf("CH0 = %+v, want enabled non-inverted on PLLA", ch0)
	}
	if plan.Channels[1].Enabled || plan.Channels[2].Enabled {
		t.Error("unused channels enabled")
	}
	if math.Abs(ch0.Solution.Plan.Error) > ErrorTolerance {
		t.Errorf("CH0 error %.3g above tolerance", ch0.Solution.Plan.Error)
	}
	if plan.SSC.Enabled {
		t.Error("SSC enabled without being requested")
	}
}

func TestPlanChannelsDual(t *testing.T) {
	plan, err := PlanChannels(FrequencyRequest{Fout0: 100, Fout2: 200})
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	if !plan.Channels[0].Enabled || plan.Channels[0].PLL != PLLA {
		t.Errorf("CH0 = %+v", plan.Channels[0])
	}
	ch2 := plan.Channels[2]
	if !ch2.Enabled || ch2.Inverted || ch2.PLL != PLLB || ch2.SharedMultisynth {
		t.Errorf("CH2 = %+v, want independent output on PLLB", ch2)
	}
	if !ch2.Solution.Plan.DivBy4 {
		t.Error("200 MHz on CH2 did not select DIVBY4")
	}
	if plan.Channels[1].Enabled {
		t.Error("CH1 enabled in dual-output plan")
	}
}

func TestPlanChannelsDifferentialCH1(t *testing.T) {
	plan, err := PlanChannels(FrequencyRequest{Fout0: 100, Differential: DifferentialCH1})
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	ch0, ch1 := plan.Channels[0], plan.Channels[1]
	if !ch1.Enabled || !ch1.Inverted || !ch1.SharedMultisynth || ch1.PLL != PLLA {
		t.Errorf("CH1 = %+v, want inverted shared output on PLLA", ch1)
	}
	// The pair must carry identical divider parameters
	if ch1.Solution != ch0.Solution {
		t.Errorf("differential pair dividers differ: %+v vs %+v", ch0.Solution, ch1.Solution)
	}
}

func TestPlanChannelsDifferentialCH1WithIndependentCH2(t *testing.T) {
	f2 := 12.5
	plan, err := PlanChannels(FrequencyRequest{Fout0: 100, Fout2: f2, Differential: DifferentialCH1})
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	if !plan.Channels[1].Enabled || !plan.Channels[1].Inverted {
		t.Errorf("CH1 = %+v", plan.Channels[1])
	}
	ch2 := plan.Channels[2]
	if !ch2.Enabled || ch2.Inverted || ch2.PLL != PLLB {
		t.Errorf("CH2 = %+v, want independent output on PLLB", ch2)
	}
	if math.Abs(ch2.Solution.Plan.Achieved-f2)/f2 > ErrorTolerance {
		t.Errorf("CH2 achieved %.6f, want %.6f", ch2.Solution.Plan.Achieved, f2)
	}
}

func TestPlanChannelsConflict(t *testing.T) {
	_, err := PlanChannels(FrequencyRequest{Fout0: 100, Fout2: 200, Differential: DifferentialCH2})
	if !errors.Is(err, ErrConfigConflict) {
		t.Errorf("error = %v, want ErrConfigConflict", err)
	}
}

func TestPlanChannelsDifferentialCH2(t *testing.T) {
	plan, err := PlanChannels(FrequencyRequest{Fout0: 100, Differential: DifferentialCH2})
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	ch2 := plan.Channels[2]
	if !ch2.Enabled || !ch2.Inverted || !ch2.SharedMultisynth || ch2.PLL != PLLA {
		t.Errorf("CH2 = %+v, want inverted shared output on PLLA", ch2)
	}
	if plan.Channels[1].Enabled {
		t.Error("CH1 enabled in CH2-differential plan")
	}
}

func TestPlanChannelsPropagatesSolveErrors(t *testing.T) {
	if _, err := PlanChannels(FrequencyRequest{Fout0: 300}); !errors.Is(err, ErrFrequencyOutOfRange) {
		t.Errorf("fout0=300: error = %v, want ErrFrequencyOutOfRange", err)
	}
	if _, err := PlanChannels(FrequencyRequest{Fout0: 100, Fout2: 160}); !errors.Is(err, ErrUnreachableFrequency) {
		t.Errorf("fout2=160: error = %v, want ErrUnreachableFrequency", err)
	}
}

func TestPlanChannelsSSC(t *testing.T) {
	req := FrequencyRequest{
		Fout0: 100,
		SSC:   SSCRequest{Enabled: true, Amplitude: 0.015, Mode: SSCModeDown},
	}
	plan, err := PlanChannels(req)
	if err != nil {
		t.Fatalf("PlanChannels error: %v", err)
	}
	if !plan.SSC.Enabled || plan.SSC.Mode != SSCModeDown {
		t.Errorf("SSC = %+v", plan.SSC)
	}

	req.SSC.Amplitude = -1
	if _, err := PlanChannels(req); !errors.Is(err, ErrAmplitudeOutOfRange) {
		t.Errorf("error = %v, want ErrAmplitudeOutOfRange", err)
	}
}
