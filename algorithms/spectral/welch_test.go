package spectral_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilabreu10/BioSPPy/algorithms/spectral"
)

// TestWelch_SineSpectrum feeds a 0.2 Hz sine sampled at 4 Hz. With
// 300-sample segments the tone sits exactly on bin 15 and the averaged
// density must integrate back to the sine power of one half.
func TestWelch_SineSpectrum(t *testing.T) {
	signal := make([]float64, 600)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 0.2 * float64(i) / 4)
	}

	res, err := spectral.NewWelch().Compute(signal, &spectral.WelchParams{
		SampleRate:    4,
		SegmentLength: 300,
	})
	require.NoError(t, err)

	assert.Equal(t, 300, res.SegmentLength)
	assert.Equal(t, 3, res.Segments, "half-overlapping 300-sample segments over 600 samples")
	require.Len(t, res.Frequencies, 151)
	require.Len(t, res.Power, 151)

	peak := 0
	for k := range res.Power {
		if res.Power[k] > res.Power[peak] {
			peak = k
		}
	}
	assert.Equal(t, 15, peak)
	assert.InDelta(t, 0.2, res.Frequencies[peak], 1e-9)

	df := res.Frequencies[1] - res.Frequencies[0]
	integral := 0.0
	for _, p := range res.Power {
		integral += p * df
	}
	assert.InDelta(t, 0.5, integral, 0.05, "density integrates to the sine power")

	assert.Less(t, res.Power[0], 1e-9, "per-segment mean removal empties the DC bin")
}

// TestWelch_ShrinksSegmentToSignal clamps the segment length to the
// signal when the signal is shorter, leaving a single segment.
func TestWelch_ShrinksSegmentToSignal(t *testing.T) {
	signal := make([]float64, 100)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 0.2 * float64(i) / 4)
	}

	res, err := spectral.NewWelch().Compute(signal, nil)
	require.NoError(t, err)

	assert.Equal(t, 100, res.SegmentLength)
	assert.Equal(t, 1, res.Segments)
	assert.Len(t, res.Frequencies, 51)
}

// TestWelch_InvalidInputs covers the argument checks.
func TestWelch_InvalidInputs(t *testing.T) {
	w := spectral.NewWelch()

	_, err := w.Compute([]float64{1}, nil)
	assert.Error(t, err)

	_, err = w.Compute([]float64{1, 2, 3}, &spectral.WelchParams{SampleRate: 0, SegmentLength: 300})
	assert.Error(t, err)

	_, err = w.Compute([]float64{1, 2, 3}, &spectral.WelchParams{SampleRate: 4, SegmentLength: 1})
	assert.Error(t, err)
}
