package synth

import (
	"math"
	"math/rand"
)

// Band is one frequency band exercised by the verification run
type Band struct {
	Low, High float64 // MHz
}

// DefaultBands covers the usable output range below the DIVBY4 region
var DefaultBands = []Band{
	{100, 150},
	{10, 100},
	{1, 10},
	{0.1, 1},
	{0.01, 0.1},
	{0.004, 0.01},
}

// Trial is the outcome of one randomized pipeline run
type Trial struct {
	Band     Band
	Target   float64 // MHz
	Achieved float64 // MHz, recomputed from the derived parameters
	Error    float64 // signed relative error
	Pass     bool
	Err      error // non-nil when the pipeline itself failed
}

// Runner draws random target frequencies per band and feeds them through
// the full synthesis pipeline. It is a single-use sequence: results are
// produced lazily via Next and a fresh Runner regenerates fresh draws.
type Runner struct {
	rng        *rand.Rand
	bands      []Band
	iterations int

	band, iter int
}

// NewRunner builds a runner producing iterations draws per band from an
// explicit seed, so runs are reproducible.
func NewRunner(iterations int, seed int64) *Runner {
	return &Runner{
		rng:        rand.New(rand.NewSource(seed)),
		bands:      DefaultBands,
		iterations: iterations,
	}
}

// Next runs one trial. The second return is false once the sequence is
// exhausted.
func (r *Runner) Next() (Trial, bool) {
	if r.iterations <= 0 || r.band >= len(r.bands) {
		return Trial{}, false
	}
	band := r.bands[r.band]

	r.iter++
	if r.iter >= r.iterations {
		r.iter = 0
		r.band++
	}

	target := band.Low + r.rng.Float64()*(band.High-band.Low)
	trial := Trial{Band: band, Target: target}

	sol, err := Solve(target)
	if err != nil {
		trial.Err = err
		return trial, true
	}

	// Recompute achieved frequency from the raw field values rather than
	// trusting the solver's own bookkeeping
	vco := RefFrequencyMHz * sol.VCO.Feedback.Value()
	trial.Achieved = vco / sol.Plan.Ratio.Value() / float64(sol.Plan.RDiv)
	trial.Error = (trial.Achieved - target) / target
	trial.Pass = math.Abs(trial.Error) < ErrorTolerance
	return trial, true
}

// BandReport aggregates trial outcomes for one band
type BandReport struct {
	Band     Band
	Tests    int
	Passes   int
	Failures int
	MaxError float64 // largest absolute relative error observed
}

// Report is the aggregate outcome of a verification run
type Report struct {
	Tests    int
	Passes   int
	Failures int
	MaxError float64
	Bands    []BandReport
}

// SuccessRate is the fraction of passing trials, 0 when nothing ran
func (r Report) SuccessRate() float64 {
	if r.Tests == 0 {
		return 0
	}
	return float64(r.Passes) / float64(r.Tests)
}

// RunTest consumes a fresh Runner and folds its trials into a Report
func RunTest(iterations int, seed int64) Report {
	runner := NewRunner(iterations, seed)

	report := Report{Bands: make([]BandReport, len(runner.bands))}
	for i := range report.Bands {
		report.Bands[i].Band = runner.bands[i]
	}

	index := map[Band]int{}
	for i, b := range runner.bands {
		index[b] = i
	}

	for {
		trial, ok := runner.Next()
		if !ok {
			break
		}
		br := &report.Bands[index[trial.Band]]
		br.Tests++
		report.Tests++

		if trial.Pass {
			br.Passes++
			report.Passes++
		} else {
			br.Failures++
			report.Failures++
		}

		abs := math.Abs(trial.Error)
		if trial.Err == nil && abs > br.MaxError {
			br.MaxError = abs
		}
		if trial.Err == nil && abs > report.MaxError {
			report.MaxError = abs
		}
	}
	return report
}
