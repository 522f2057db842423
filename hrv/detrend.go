package hrv

import (
	"fmt"

	"github.com/camilabreu10/BioSPPy/algorithms/detrend"
)

// Defaults for trend removal on RR interval series.
const (
	DefaultDetrendWindowLen = 2000
	DefaultSmoothingFactor  = 500.0
)

// DetrendFunc removes the slow trend from a signal segment and returns the
// detrended segment.
type DetrendFunc func(signal []float64, smoothingFactor float64) ([]float64, error)

// DetrendWindowed detrends the series window by window. A series longer
// than windowLen is split into len/windowLen near-equal parts, the leading
// parts one sample longer when the length does not divide evenly, and each
// part is detrended on its own. A nil fn uses smoothness priors
// regularization.
func DetrendWindowed(signal []float64, windowLen int, smoothingFactor float64, fn DetrendFunc) ([]float64, error) {
	if fn == nil {
		fn = detrend.SmoothnessPriors
	}
	if windowLen <= 0 {
		windowLen = DefaultDetrendWindowLen
	}
	if smoothingFactor <= 0 {
		smoothingFactor = DefaultSmoothingFactor
	}

	n := len(signal)
	if n <= windowLen {
		return fn(signal, smoothingFactor)
	}

	splits := n / windowLen
	base := n / splits
	extra := n % splits

	detrended := make([]float64, 0, n)
	start := 0
	for i := 0; i < splits; i++ {
		length := base
		if i < extra {
			length++
		}
		part, err := fn(signal[start:start+length], smoothingFactor)
		if err != nil {
			return nil, fmt.Errorf("failed to detrend window %d: %w", i, err)
		}
		detrended = append(detrended, part...)
		start += length
	}
	return detrended, nil
}
