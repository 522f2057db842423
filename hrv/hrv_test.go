package hrv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilabreu10/BioSPPy/hrv"
)

// TestPipeline_MissingInput rejects calls that provide neither beat
// indices nor an interval series.
func TestPipeline_MissingInput(t *testing.T) {
	p := hrv.NewPipeline(nil)

	_, err := p.Extract(nil)
	assert.ErrorIs(t, err, hrv.ErrMissingInput)

	_, err = p.Extract(&hrv.Input{})
	assert.ErrorIs(t, err, hrv.ErrMissingInput)
}

// TestPipeline_InvalidSelector rejects unknown feature selectors and
// lists the available ones.
func TestPipeline_InvalidSelector(t *testing.T) {
	cfg := hrv.DefaultConfig()
	cfg.Features = "bogus"

	_, err := hrv.NewPipeline(cfg).Extract(&hrv.Input{RRI: []float64{800, 810, 790}})
	require.ErrorIs(t, err, hrv.ErrInvalidSelector)
	assert.Contains(t, err.Error(), "auto, time, frequency, non-linear, all")
}

// TestPipeline_InvalidSpectralMethod rejects unknown spectral estimators
// before any signal work happens.
func TestPipeline_InvalidSpectralMethod(t *testing.T) {
	cfg := hrv.DefaultConfig()
	cfg.Method = "LOMB"

	_, err := hrv.NewPipeline(cfg).Extract(&hrv.Input{RRI: []float64{800, 810, 790}})
	assert.ErrorIs(t, err, hrv.ErrInvalidSpectralMethod)
}

// TestPipeline_UniformBeats feeds 150 beats at a fixed 800 ms spacing.
// Every family computes, heart rate statistics land exactly on 75 bpm
// and all variability collapses to zero.
func TestPipeline_UniformBeats(t *testing.T) {
	peaks := make([]int, 150)
	for i := range peaks {
		peaks[i] = i * 800
	}

	cfg := hrv.DefaultConfig()
	cfg.FilterRRI = false
	cfg.DetrendRRI = false

	result, err := hrv.NewPipeline(cfg).Extract(&hrv.Input{RPeaks: peaks, SamplingRate: 1000})
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)
	assert.InDelta(t, 119.2, result.Duration, 1e-9)

	rri, ok := result.Features.Get("rri")
	require.True(t, ok)
	require.Len(t, rri.([]float64), 149)
	assert.Equal(t, 800.0, rri.([]float64)[0])

	assertFeature(t, result.Features, "hr_avg", 75.0)
	assertFeature(t, result.Features, "rr_mean", 800.0)
	assertFeature(t, result.Features, "rmssd", 0.0)
	assertFeature(t, result.Features, "pnn50", 0.0)
	assertFeature(t, result.Features, "sdnn", 0.0)
	assertFeature(t, result.Features, "hti", 1.0)
	assertFeature(t, result.Features, "tinn", 0.0)

	nn50, ok := result.Features.Get("nn50")
	require.True(t, ok)
	assert.Equal(t, 0, nn50)
}

// TestPipeline_DurationMeasuredBeforeFiltering makes sure the recording
// length is taken from the unfiltered series. The long intervals below
// are dropped by the filter, yet the twenty second gate for successive
// difference features still passes.
func TestPipeline_DurationMeasuredBeforeFiltering(t *testing.T) {
	rri := make([]float64, 0, 21)
	for i := 0; i < 8; i++ {
		rri = append(rri, 1500)
	}
	for i := 0; i < 13; i++ {
		rri = append(rri, 800)
	}

	result, err := hrv.NewPipeline(hrv.DefaultConfig()).Extract(&hrv.Input{RRI: rri})
	require.NoError(t, err)

	assert.InDelta(t, 22.4, result.Duration, 1e-9)

	kept, ok := result.Features.Get("rri")
	require.True(t, ok)
	assert.Len(t, kept.([]float64), 13, "intervals at or above the threshold are dropped")

	_, ok = result.Features.Get("nn50")
	assert.True(t, ok, "successive difference gate uses the unfiltered duration")
	_, ok = result.Features.Get("sdnn")
	assert.False(t, ok)
	_, ok = result.Features.Get("lf_pwr")
	assert.True(t, ok)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "non-linear", result.Skipped[0].Family)
	assert.Contains(t, result.Skipped[0].Message, "90")
}

// TestPipeline_RRIPrecedence prefers a caller-provided interval series
// over beat indices.
func TestPipeline_RRIPrecedence(t *testing.T) {
	rri := make([]float64, 15)
	for i := range rri {
		rri[i] = 800
	}

	result, err := hrv.NewPipeline(hrv.DefaultConfig()).Extract(&hrv.Input{
		RPeaks:       []int{0, 1000, 2000},
		SamplingRate: 1000,
		RRI:          rri,
	})
	require.NoError(t, err)

	kept, ok := result.Features.Get("rri")
	require.True(t, ok)
	assert.Equal(t, rri, kept, "interval series wins over beat indices")
	assert.InDelta(t, 12.0, result.Duration, 1e-9)

	families := make([]string, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		families = append(families, s.Family)
	}
	assert.Equal(t, []string{"frequency", "non-linear"}, families)
}

// TestPipeline_AllSelectorForcesFamilies runs every family on a series
// far too short for any of them. The all selector suspends the duration
// gates, so even the geometrical and entropy features come back.
func TestPipeline_AllSelectorForcesFamilies(t *testing.T) {
	rri := make([]float64, 12)
	for i := range rri {
		rri[i] = 800
	}

	cfg := hrv.DefaultConfig()
	cfg.Features = hrv.SelectorAll
	cfg.DetrendRRI = false

	result, err := hrv.NewPipeline(cfg).Extract(&hrv.Input{RRI: rri})
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)

	assertFeature(t, result.Features, "hti", 1.0)
	assertFeature(t, result.Features, "tinn", 0.0)
	assertFeature(t, result.Features, "s", 0.0)

	_, ok := result.Features.Get("lf_pwr")
	assert.True(t, ok)

	sampen, ok := result.Features.Float64("sampen")
	require.True(t, ok)
	assert.InDelta(t, 0.105361, sampen, 1e-6)
}

// TestPipeline_GaussianBump runs the all selector over a ten minute
// series carrying one slow Gaussian swell plus beat-scale variability,
// and expects entries from every family.
func TestPipeline_GaussianBump(t *testing.T) {
	rri := make([]float64, 900)
	for i := range rri {
		x := float64(i) - 450
		rri[i] = 800 + 100*math.Exp(-x*x/(2*50*50)) + 15*math.Sin(0.9*float64(i))
	}

	cfg := hrv.DefaultConfig()
	cfg.Features = hrv.SelectorAll

	result, err := hrv.NewPipeline(cfg).Extract(&hrv.Input{RRI: rri})
	require.NoError(t, err)
	assert.Empty(t, result.Skipped)

	for _, name := range []string{"rmssd", "sdnn", "hti", "lf_pwr", "hf_pwr", "s", "sampen", "appen"} {
		_, ok := result.Features.Get(name)
		assert.True(t, ok, "feature %s missing", name)
	}

	lfNU, _ := result.Features.Float64("lf_nu")
	hfNU, _ := result.Features.Float64("hf_nu")
	assert.InDelta(t, 1.0, lfNU+hfNU, 1e-9)

	total, _ := result.Features.Float64("total_pwr")
	assert.Greater(t, total, 0.0)

	hr, ok := result.Features.Get("hr")
	require.True(t, ok)
	assert.Len(t, hr.([]float64), 900)
}

// TestPipeline_NilConfigDefaults falls back to the default configuration
// and the auto selector.
func TestPipeline_NilConfigDefaults(t *testing.T) {
	rri := make([]float64, 15)
	for i := range rri {
		rri[i] = 800
	}

	result, err := hrv.NewPipeline(nil).Extract(&hrv.Input{RRI: rri})
	require.NoError(t, err)

	_, ok := result.Features.Get("hr_avg")
	assert.True(t, ok)
	assert.Len(t, result.Skipped, 2, "frequency and non-linear need longer recordings")
}
