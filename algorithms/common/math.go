package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopVariance calculates the population variance (divides by n, not n-1).
// Interval statistics follow the population form throughout.
func PopVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopVariance(data, nil)
}

// PopStdDev calculates the population standard deviation
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopStdDev(data, nil)
}

// Sum calculates the total of a slice using gonum
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Sum(data)
}

// Min returns the smallest value in the slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Min(data)
}

// Max returns the largest value in the slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, val := range data {
		sumSquares += val * val
	}

	return math.Sqrt(sumSquares / float64(len(data)))
}

// Diff returns the successive differences data[i+1]-data[i].
// The result has length len(data)-1; empty input yields an empty slice.
func Diff(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}

	diff := make([]float64, len(data)-1)
	for i := 0; i < len(data)-1; i++ {
		diff[i] = data[i+1] - data[i]
	}
	return diff
}

// CumSum returns the running sum of the slice, same length as the input
func CumSum(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}

	out := make([]float64, len(data))
	return floats.CumSum(out, data)
}

// Interpolate performs linear interpolation
func Interpolate(x, y []float64, xi float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}

	// Find the interval
	if xi <= x[0] {
		return y[0]
	}
	if xi >= x[len(x)-1] {
		return y[len(y)-1]
	}

	// Binary search for the interval
	left := 0
	right := len(x) - 1

	for right-left > 1 {
		mid := (left + right) / 2
		if x[mid] <= xi {
			left = mid
		} else {
			right = mid
		}
	}

	// Linear interpolation
	t := (xi - x[left]) / (x[right] - x[left])
	return y[left] + t*(y[right]-y[left])
}
