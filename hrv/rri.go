package hrv

import (
	"fmt"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/logging"
)

// Physiological limits for a plausible RR interval in milliseconds.
// Intervals outside this range usually point at misdetected beats or a
// wrong sampling rate.
const (
	minPhysiologicalRRI = 400.0
	maxPhysiologicalRRI = 1400.0
)

// DefaultFilterThreshold is the upper RR interval bound in milliseconds
// applied when filtering is enabled without an explicit threshold.
const DefaultFilterThreshold = 1200.0

// ComputeRRI converts beat sample indices into RR intervals in
// milliseconds. The indices are expected in ascending sample order.
func ComputeRRI(rpeaks []int, samplingRate float64) ([]float64, error) {
	if len(rpeaks) < 2 {
		return nil, fmt.Errorf("%w, got %d", ErrNotEnoughBeats, len(rpeaks))
	}
	if samplingRate <= 0 {
		return nil, fmt.Errorf("hrv: sampling rate must be positive, got %g", samplingRate)
	}

	rri := make([]float64, len(rpeaks)-1)
	for i := range rri {
		rri[i] = 1000 * float64(rpeaks[i+1]-rpeaks[i]) / samplingRate
	}

	if shortest := common.Min(rri); shortest < minPhysiologicalRRI || shortest > maxPhysiologicalRRI {
		logging.Warn("rr intervals appear to be out of normal parameters, check input values", logging.Fields{
			"min_rri_ms": shortest,
		})
	}

	return rri, nil
}

// FilterRRI drops intervals at or above the threshold in milliseconds and
// returns the kept intervals in a new slice. A non-positive threshold
// falls back to DefaultFilterThreshold.
func FilterRRI(rri []float64, threshold float64) []float64 {
	if threshold <= 0 {
		threshold = DefaultFilterThreshold
	}

	filtered := make([]float64, 0, len(rri))
	for _, v := range rri {
		if v < threshold {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
