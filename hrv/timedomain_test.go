package hrv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camilabreu10/BioSPPy/hrv"
)

// TestTimeDomain_UniformSeries runs a perfectly regular 800 ms series
// long enough for every feature gate. Heart rate statistics come out at
// exactly 75 bpm and all variability measures collapse to zero.
func TestTimeDomain_UniformSeries(t *testing.T) {
	rri := make([]float64, 149)
	for i := range rri {
		rri[i] = 800
	}

	td := hrv.NewTimeDomainWithParams(&hrv.TimeDomainParams{Detrend: false})
	features, err := td.Compute(rri)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"hr", "hr_min", "hr_max", "hr_minmax", "hr_avg", "rr_mean",
		"rmssd", "nn50", "pnn50", "sdnn", "hti", "tinn",
	}, features.Names())

	hr, ok := features.Get("hr")
	require.True(t, ok)
	require.Len(t, hr.([]float64), 149)
	assert.Equal(t, 75.0, hr.([]float64)[0])

	avg, ok := features.Float64("hr_avg")
	require.True(t, ok)
	assert.Equal(t, 75.0, avg)

	assertFeature(t, features, "hr_min", 75.0)
	assertFeature(t, features, "hr_max", 75.0)
	assertFeature(t, features, "hr_minmax", 0.0)
	assertFeature(t, features, "rr_mean", 800.0)
	assertFeature(t, features, "rmssd", 0.0)
	assertFeature(t, features, "pnn50", 0.0)
	assertFeature(t, features, "sdnn", 0.0)
	assertFeature(t, features, "hti", 1.0)
	assertFeature(t, features, "tinn", 0.0)

	nn50, ok := features.Get("nn50")
	require.True(t, ok)
	assert.Equal(t, 0, nn50)
}

// TestTimeDomain_TooShort rejects a series whose total duration is under
// ten seconds.
func TestTimeDomain_TooShort(t *testing.T) {
	_, err := hrv.NewTimeDomain().Compute([]float64{500, 520, 510, 530, 515})
	assert.ErrorIs(t, err, hrv.ErrInsufficientSignal)
}

// TestTimeDomain_FeatureGatesByDuration verifies that successive, deviation
// and geometrical features only appear once the series is long enough.
func TestTimeDomain_FeatureGatesByDuration(t *testing.T) {
	tests := []struct {
		name      string
		intervals int
		last      string
		features  int
	}{
		{"heart rate only", 15, "rmssd", 7},
		{"successive differences", 30, "pnn50", 9},
		{"standard deviation", 80, "sdnn", 10},
		{"geometrical", 120, "tinn", 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rri := make([]float64, tt.intervals)
			for i := range rri {
				rri[i] = 800
			}

			td := hrv.NewTimeDomainWithParams(&hrv.TimeDomainParams{Detrend: false})
			features, err := td.Compute(rri)
			require.NoError(t, err)

			names := features.Names()
			assert.Len(t, names, tt.features)
			assert.Equal(t, tt.last, names[len(names)-1])
		})
	}
}

// TestTimeDomain_DetrendSeparatesTrendFromVariability puts a steady ramp
// under the series. Detrending removes it from the variability measures
// while the heart rate statistics keep reading the raw intervals.
func TestTimeDomain_DetrendSeparatesTrendFromVariability(t *testing.T) {
	rri := make([]float64, 200)
	for i := range rri {
		rri[i] = 600 + 2*float64(i)
	}

	raw := hrv.NewTimeDomainWithParams(&hrv.TimeDomainParams{Detrend: false})
	features, err := raw.Compute(rri)
	require.NoError(t, err)

	rmssd, _ := features.Float64("rmssd")
	sdnn, _ := features.Float64("sdnn")
	assert.Equal(t, 2.0, rmssd, "raw successive differences are the ramp step")
	assert.InDelta(t, 115.4687, sdnn, 1e-3)

	detrended := hrv.NewTimeDomainWithParams(&hrv.TimeDomainParams{Detrend: true})
	features, err = detrended.Compute(rri)
	require.NoError(t, err)

	rmssd, _ = features.Float64("rmssd")
	sdnn, _ = features.Float64("sdnn")
	assert.Less(t, rmssd, 0.01, "ramp is removed before successive differences")
	assert.Less(t, sdnn, 0.01)

	mean, _ := features.Float64("rr_mean")
	assert.InDelta(t, 799.0, mean, 1e-9, "mean interval stays on the raw series")
}

// TestTimeDomain_CountsLargeSuccessiveDifferences builds an alternating
// series whose successive differences all clear the 50 ms threshold.
func TestTimeDomain_CountsLargeSuccessiveDifferences(t *testing.T) {
	rri := make([]float64, 30)
	for i := range rri {
		if i%2 == 0 {
			rri[i] = 800
		} else {
			rri[i] = 860
		}
	}

	td := hrv.NewTimeDomainWithParams(&hrv.TimeDomainParams{Detrend: false})
	features, err := td.Compute(rri)
	require.NoError(t, err)

	nn50, ok := features.Get("nn50")
	require.True(t, ok)
	assert.Equal(t, 29, nn50)

	pnn50, _ := features.Float64("pnn50")
	assert.Equal(t, 100.0, pnn50)
}

// assertFeature fetches a scalar feature and compares it exactly.
func assertFeature(t *testing.T, features *hrv.FeatureSet, name string, want float64) {
	t.Helper()
	got, ok := features.Float64(name)
	require.True(t, ok, "feature %s missing", name)
	assert.Equal(t, want, got, "feature %s", name)
}
