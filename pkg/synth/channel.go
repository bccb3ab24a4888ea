package synth

import "fmt"

// PLL identifies one of the two on-chip PLLs
type PLL int

const (
	PLLA PLL = iota
	PLLB
)

func (p PLL) String() string {
	if p == PLLB {
		return "B"
	}
	return "A"
}

// DifferentialChannel selects which channel carries the inverted leg of a
// differential pair, if any
type DifferentialChannel int

const (
	DifferentialNone DifferentialChannel = 0
	DifferentialCH1  DifferentialChannel = 1
	DifferentialCH2  DifferentialChannel = 2
)

// FrequencyRequest is one user request for up to two output frequencies.
// Fout2 of zero means no independent CH2 output is wanted.
type FrequencyRequest struct {
	Fout0        float64 // MHz
	Fout2        float64 // MHz, 0 = unused
	Differential DifferentialChannel
	SSC          SSCRequest
}

// SSCRequest carries the optional spread spectrum settings of a request
type SSCRequest struct {
	Enabled   bool
	Amplitude float64 // peak-to-peak spread as a fraction of center frequency
	Mode      SSCMode
}

// ChannelAssignment maps one physical clock output onto a solved
// PLL/Multisynth pair
type ChannelAssignment struct {
	Channel  int
	Enabled  bool
	Inverted bool
	PLL      PLL

	// SharedMultisynth marks the inverted leg of a differential pair; it
	// reuses the divider values of channel 0 verbatim
	SharedMultisynth bool

	Solution Solution
}

// ChannelPlan is the full register-ready assignment for all three outputs
type ChannelPlan struct {
	Channels [3]ChannelAssignment
	SSC      SSCParameters
}

// PlanChannels validates the request and maps it onto the two PLLs and
// three Multisynth-driven outputs. Differential pairing duplicates the
// channel 0 divider values onto the chosen channel with the inversion flag
// set; an independent CH2 frequency gets its own PLL.
//
// Option conflicts are rejected before any numeric search.
func PlanChannels(req FrequencyRequest) (ChannelPlan, error) {
	if req.Differential == DifferentialCH2 && req.Fout2 != 0 {
		return ChannelPlan{}, fmt.Errorf("CH2 cannot be both differential and independent: %w",
			ErrConfigConflict)
	}

	sol0, err := Solve(req.Fout0)
	if err != nil {
		return ChannelPlan{}, fmt.Errorf("fout0: %w", err)
	}

	var plan ChannelPlan
	for i := range plan.Channels {
		plan.Channels[i].Channel = i
	}

	plan.Channels[0] = ChannelAssignment{
		Channel:  0,
		Enabled:  true,
		PLL:      PLLA,
		Solution: sol0,
	}

	switch req.Differential {
	case DifferentialCH1:
		plan.Channels[1] = ChannelAssignment{
			Channel:          1,
			Enabled:          true,
			Inverted:         true,
			PLL:              PLLA,
			SharedMultisynth: true,
			Solution:         sol0,
		}
	case DifferentialCH2:
		plan.Channels[2] = ChannelAssignment{
			Channel:          2,
			Enabled:          true,
			Inverted:         true,
			PLL:              PLLA,
			SharedMultisynth: true,
			Solution:         sol0,
		}
	}

	if req.Fout2 != 0 {
		sol2, err := Solve(req.Fout2)
		if err != nil {
			return ChannelPlan{}, fmt.Errorf("fout2: %w", err)
		}
		plan.Channels[2] = ChannelAssignment{
			Channel:  2,
			Enabled:  true,
			PLL:      PLLB,
			Solution: sol2,
		}
	}

	if req.SSC.Enabled {
		ssc, err := ComputeSSC(req.SSC.Amplitude, req.SSC.Mode, sol0.VCO.Feedback)
		if err != nil {
			return ChannelPlan{}, err
		}
		plan.SSC = ssc
	}

	return plan, nil
}
