package hrv

import (
	"fmt"
	"math"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/algorithms/stats"
	"github.com/camilabreu10/BioSPPy/logging"
)

// minDurationNonLinear is the shortest series in seconds the non-linear
// features accept.
const minDurationNonLinear = 90.0

// minApproximateEntropyLen is the shortest series, in intervals, for which
// approximate entropy is reported. Shorter series bias the estimate
// toward regularity.
const minApproximateEntropyLen = 800

// NonLinearParams contains parameters for non-linear feature extraction
type NonLinearParams struct {
	Duration        float64     `json:"duration"` // seconds; computed from the series when not positive
	Detrend         bool        `json:"detrend"`  // detrend the series before the scatter and entropies
	WindowLen       int         `json:"window_len"`
	SmoothingFactor float64     `json:"smoothing_factor"`
	Detrender       DetrendFunc `json:"-"`
	Visualizer      Visualizer  `json:"-"`
}

// DefaultNonLinearParams returns the standard non-linear setup
func DefaultNonLinearParams() *NonLinearParams {
	return &NonLinearParams{Detrend: true}
}

// NonLinear extracts features beyond second-order statistics: Poincaré
// scatter geometry and template-matching entropies.
type NonLinear struct {
	params     *NonLinearParams
	regularity *stats.Regularity
	logger     logging.Logger
}

// NewNonLinear creates a non-linear extractor with default parameters
func NewNonLinear() *NonLinear {
	return NewNonLinearWithParams(nil)
}

// NewNonLinearWithParams creates a non-linear extractor
func NewNonLinearWithParams(params *NonLinearParams) *NonLinear {
	if params == nil {
		params = DefaultNonLinearParams()
	}
	return &NonLinear{
		params:     params,
		regularity: stats.NewRegularity(),
		logger:     logging.WithFields(logging.Fields{"component": "hrv_non_linear"}),
	}
}

// Compute extracts the non-linear features of an interval series in
// milliseconds: s, sd1, sd2, sd12, sd21 and sampen, plus appen for series
// of at least 800 intervals. With Detrend set the series is detrended
// first, so the scatter geometry reflects variability rather than drift.
func (nl *NonLinear) Compute(rri []float64) (*FeatureSet, error) {
	if len(rri) == 0 {
		return nil, fmt.Errorf("%w: empty rri sequence", ErrInsufficientSignal)
	}

	duration := nl.params.Duration
	if duration <= 0 {
		duration = common.Sum(rri) / 1000
	}
	if duration < minDurationNonLinear {
		return nil, fmt.Errorf("%w: non-linear features need at least %.0f seconds, got %.2f",
			ErrInsufficientSignal, minDurationNonLinear, duration)
	}

	if nl.params.Detrend {
		var err error
		rri, err = DetrendWindowed(rri, nl.params.WindowLen, nl.params.SmoothingFactor, nl.params.Detrender)
		if err != nil {
			return nil, fmt.Errorf("failed to detrend rri: %w", err)
		}
	}

	poincare, err := ComputePoincare(rri)
	if err != nil {
		return nil, err
	}

	out := NewFeatureSet()
	if err := appendFeatures(out,
		feature{"s", poincare.S},
		feature{"sd1", poincare.SD1},
		feature{"sd2", poincare.SD2},
		feature{"sd12", poincare.SD12},
		feature{"sd21", poincare.SD21},
	); err != nil {
		return nil, err
	}

	if nl.params.Visualizer != nil {
		nl.params.Visualizer.PlotPoincare(rri, poincare.S, poincare.SD1, poincare.SD2, poincare.SD12)
	}

	sampen, err := nl.regularity.SampleEntropy(rri)
	if err != nil {
		return nil, fmt.Errorf("failed to compute sample entropy: %w", err)
	}
	if err := out.Append("sampen", sampen); err != nil {
		return nil, err
	}

	if len(rri) >= minApproximateEntropyLen {
		appen, err := nl.regularity.ApproximateEntropy(rri)
		if err != nil {
			return nil, fmt.Errorf("failed to compute approximate entropy: %w", err)
		}
		if err := out.Append("appen", appen); err != nil {
			return nil, err
		}
	}

	nl.logger.Debug("computed non-linear features", logging.Fields{
		"duration_s": duration,
		"features":   out.Len(),
	})

	return out, nil
}

// PoincareResult describes the Poincaré scatter of successive intervals
type PoincareResult struct {
	S    float64 `json:"s"`    // ellipse area (ms²)
	SD1  float64 `json:"sd1"`  // spread across the identity line (ms)
	SD2  float64 `json:"sd2"`  // spread along the identity line (ms)
	SD12 float64 `json:"sd12"` // SD1/SD2
	SD21 float64 `json:"sd21"` // SD2/SD1
}

// ComputePoincare computes the Poincaré scatter features of the interval
// series. Each consecutive pair (rri[i], rri[i+1]) is rotated 45° so the
// axes separate short-term from long-term variability; SD1 and SD2 are
// the population deviations along those axes.
func ComputePoincare(rri []float64) (*PoincareResult, error) {
	if len(rri) < 2 {
		return nil, fmt.Errorf("%w: poincare scatter needs at least 2 intervals, got %d",
			ErrInsufficientSignal, len(rri))
	}

	x1 := make([]float64, len(rri)-1)
	x2 := make([]float64, len(rri)-1)
	for i := 0; i < len(rri)-1; i++ {
		x1[i] = (rri[i] - rri[i+1]) / math.Sqrt2
		x2[i] = (rri[i] + rri[i+1]) / math.Sqrt2
	}

	sd1 := common.PopStdDev(x1)
	sd2 := common.PopStdDev(x2)

	return &PoincareResult{
		S:    math.Pi * sd1 * sd2,
		SD1:  sd1,
		SD2:  sd2,
		SD12: sd1 / sd2,
		SD21: sd2 / sd1,
	}, nil
}
