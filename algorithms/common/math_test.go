package common_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
)

// TestDescriptiveStats covers the population moment helpers on a small
// hand-checked sample.
func TestDescriptiveStats(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.Equal(t, 5.0, common.Mean(data))
	assert.Equal(t, 4.0, common.PopVariance(data))
	assert.Equal(t, 2.0, common.PopStdDev(data))
	assert.Equal(t, 40.0, common.Sum(data))
	assert.Equal(t, 2.0, common.Min(data))
	assert.Equal(t, 9.0, common.Max(data))
}

// TestDescriptiveStats_Empty keeps the helpers total on empty input.
func TestDescriptiveStats_Empty(t *testing.T) {
	assert.Equal(t, 0.0, common.Mean(nil))
	assert.Equal(t, 0.0, common.PopStdDev(nil))
	assert.Equal(t, 0.0, common.Sum(nil))
	assert.Equal(t, 0.0, common.RMS(nil))
}

// TestRMS checks the quadratic mean.
func TestRMS(t *testing.T) {
	assert.InDelta(t, math.Sqrt(12.5), common.RMS([]float64{3, 4}), 1e-12)
	assert.Equal(t, 5.0, common.RMS([]float64{5, -5, 5}))
}

// TestDiff takes successive differences and degrades to an empty slice
// below two samples.
func TestDiff(t *testing.T) {
	assert.Equal(t, []float64{3, 5, 7}, common.Diff([]float64{1, 4, 9, 16}))
	assert.Empty(t, common.Diff([]float64{5}))
	assert.Empty(t, common.Diff(nil))
}

// TestCumSum verifies the running total and that the input is left
// untouched.
func TestCumSum(t *testing.T) {
	in := []float64{1, 2, 3}
	assert.Equal(t, []float64{1, 3, 6}, common.CumSum(in))
	assert.Equal(t, []float64{1, 2, 3}, in)
}

// TestInterpolate checks linear interpolation inside the knots and
// clamping outside them.
func TestInterpolate(t *testing.T) {
	x := []float64{0, 10, 20}
	y := []float64{0, 100, 0}

	assert.InDelta(t, 50, common.Interpolate(x, y, 5), 1e-12)
	assert.InDelta(t, 100, common.Interpolate(x, y, 10), 1e-12)
	assert.InDelta(t, 75, common.Interpolate(x, y, 12.5), 1e-12)
	assert.Equal(t, 0.0, common.Interpolate(x, y, -3), "clamps below the first knot")
	assert.Equal(t, 0.0, common.Interpolate(x, y, 25), "clamps above the last knot")
}

// TestInterpolate_RepeatedKnot keeps the evaluation finite when the
// first two knots coincide, as happens when a triangle corner sits on
// the histogram origin.
func TestInterpolate_RepeatedKnot(t *testing.T) {
	x := []float64{5, 5, 10}
	y := []float64{0, 0, 8}

	assert.Equal(t, 0.0, common.Interpolate(x, y, 5))
	assert.InDelta(t, 4, common.Interpolate(x, y, 7.5), 1e-12)
	assert.InDelta(t, 8, common.Interpolate(x, y, 10), 1e-12)
}
