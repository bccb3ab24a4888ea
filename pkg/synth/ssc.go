package synth

import (
	"fmt"
	"math"
)

// SSCMode selects the spread spectrum shape
type SSCMode int

const (
	// SSCModeDown spreads only below the nominal frequency
	SSCModeDown SSCMode = iota
	// SSCModeCenter spreads symmetrically around the nominal frequency
	SSCModeCenter
)

func (m SSCMode) String() string {
	if m == SSCModeCenter {
		return "CENTER"
	}
	return "DOWN"
}

// SSC register field widths and the fixed ~31.5 kHz modulation rate
const (
	sscModulationHz = 31500
	sscP1Max        = 1 << 12 // SSUDP and both P1 fields are 12 bits
	sscP3Fixed      = 32767
)

// SSCParameters are the derived spread spectrum register fields for PLLA
type SSCParameters struct {
	Enabled bool
	Mode    SSCMode

	UDP uint32 // SSUDP, modulation period count

	DownP1, DownP2, DownP3 uint32
	UpP1, UpP2, UpP3       uint32
}

// ComputeSSC derives the spread spectrum register fields from the
// peak-to-peak amplitude fraction and the PLLA feedback ratio. Down spread
// scales against (1+amp/2), center spread additionally fills the up-spread
// fields against (1-amp/2).
func ComputeSSC(amplitude float64, mode SSCMode, feedback RationalApproximation) (SSCParameters, error) {
	if amplitude <= 0 {
		return SSCParameters{}, fmt.Errorf("amplitude %.4f: %w", amplitude, ErrAmplitudeOutOfRange)
	}
	eff := amplitude / 2
	if eff >= 1 {
		return SSCParameters{}, fmt.Errorf("amplitude %.4f: %w", amplitude, ErrAmplitudeOutOfRange)
	}

	udp := uint32(math.Floor(RefFrequencyMHz * 1e6 / (4 * sscModulationHz)))
	ratio := math.Floor(feedback.Value())

	down := 128 * ratio * eff / ((1 + eff) * float64(udp))
	up := 128 * ratio * eff / ((1 - eff) * float64(udp))

	p := SSCParameters{
		Enabled: true,
		Mode:    mode,
		UDP:     udp,

		DownP1: uint32(math.Floor(down)),
		DownP2: uint32(sscP3Fixed * (down - math.Floor(down))),
		DownP3: sscP3Fixed,
	}

	if mode == SSCModeCenter {
		p.UpP1 = uint32(math.Floor(up))
		p.UpP2 = uint32(sscP3Fixed * (up - math.Floor(up)))
		p.UpP3 = sscP3Fixed
	} else {
		p.UpP1, p.UpP2, p.UpP3 = 0, 0, 1
	}

	if p.DownP1 >= sscP1Max || p.UpP1 >= sscP1Max {
		return SSCParameters{}, fmt.Errorf("amplitude %.4f overflows SSC fields: %w",
			amplitude, ErrAmplitudeOutOfRange)
	}

	return p, nil
}
