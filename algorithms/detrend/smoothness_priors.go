package detrend

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SmoothnessPriors removes the slow-varying trend from a signal using the
// smoothness-priors regularization of Tarvainen et al. (2002). The trend is
// the solution of (I + λ²·D₂ᵀD₂)·trend = signal, where D₂ is the
// second-difference operator and λ the smoothing factor; the detrended
// signal is the residual. The system matrix is symmetric positive definite
// and pentadiagonal, so it is solved with a banded Cholesky factorization.
// Output length equals input length.
func SmoothnessPriors(signal []float64, smoothingFactor float64) ([]float64, error) {
	n := len(signal)

	// D₂ has n-2 rows; with fewer than 3 samples the penalty vanishes,
	// the trend equals the signal and the residual is zero
	if n <= 2 {
		return make([]float64, n), nil
	}

	lambda2 := smoothingFactor * smoothingFactor
	coeff := [3]float64{1, -2, 1}

	const bandwidth = 2
	data := make([]float64, n*(bandwidth+1))

	for i := 0; i < n; i++ {
		for j := i; j <= i+bandwidth && j < n; j++ {
			// (D₂ᵀD₂)[i][j] = Σ_k coeff[i-k]·coeff[j-k] over rows k
			// touching both columns
			lo := j - 2
			if lo < 0 {
				lo = 0
			}
			hi := i
			if hi > n-3 {
				hi = n - 3
			}
			sum := 0.0
			for k := lo; k <= hi; k++ {
				sum += coeff[i-k] * coeff[j-k]
			}

			entry := lambda2 * sum
			if i == j {
				entry += 1.0
			}
			data[i*(bandwidth+1)+(j-i)] = entry
		}
	}

	system := mat.NewSymBandDense(n, bandwidth, data)

	var chol mat.BandCholesky
	if ok := chol.Factorize(system); !ok {
		return nil, fmt.Errorf("smoothness priors system is not positive definite (n=%d, smoothing_factor=%f)", n, smoothingFactor)
	}

	trend := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(trend, mat.NewVecDense(n, signal)); err != nil {
		return nil, fmt.Errorf("solving smoothness priors system: %w", err)
	}

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		detrended[i] = signal[i] - trend.AtVec(i)
	}

	return detrended, nil
}
