package stats

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"
)

// ErrUndefinedEntropy is returned when a template-matching entropy estimate
// has no defined value because one of the match counts is zero.
var ErrUndefinedEntropy = errors.New("entropy undefined: zero template match count")

// RegularityParams contains parameters for the regularity estimators
type RegularityParams struct {
	EmbeddingDim int     `json:"embedding_dim"` // template length m
	Tolerance    float64 `json:"tolerance"`     // fraction of the sequence standard deviation
}

// Regularity implements template-matching regularity measures for interval series
//
// References:
// - Richman, J.S., Moorman, J.R. (2000). "Physiological time-series analysis using approximate entropy and sample entropy"
// - Pincus, S.M. (1991). "Approximate entropy as a measure of system complexity"
//
// Both estimators slide length-m templates over the sequence and count the
// pairs whose Chebyshev (max-coordinate) distance stays within a tolerance,
// then compare the counts at lengths m and m+1:
// - Lower entropy = more repeating structure
// - Higher entropy = more irregularity
//
// The tolerance is Tolerance × population standard deviation of the input,
// which makes both measures invariant to a global additive offset.
type Regularity struct {
	params RegularityParams
}

// NewRegularity creates a regularity analyzer with the standard m=2, r=0.2σ setup
func NewRegularity() *Regularity {
	return &Regularity{
		params: RegularityParams{
			EmbeddingDim: 2,
			Tolerance:    0.2,
		},
	}
}

// NewRegularityWithParams creates a regularity analyzer with custom parameters
func NewRegularityWithParams(params RegularityParams) *Regularity {
	return &Regularity{params: params}
}

// SampleEntropy computes the sample entropy of the sequence.
//
// B counts matches between length-m templates: rows run over the first n-m
// templates, columns over all n-m+1, and the self-match is excluded. A is
// the same count for length-(m+1) templates (a square comparison over the
// n-m of them). The result is -ln(A/B). When either count is zero the
// ratio is undefined and ErrUndefinedEntropy is returned rather than a
// NaN or infinity.
func (rg *Regularity) SampleEntropy(signal []float64) (float64, error) {
	m := rg.params.EmbeddingDim
	n := len(signal)

	if m < 1 {
		return 0, fmt.Errorf("embedding dimension must be at least 1, got %d", m)
	}
	if n <= m+1 {
		return 0, fmt.Errorf("sequence of length %d is too short for embedding dimension %d", n, m)
	}

	r := rg.params.Tolerance * stat.PopStdDev(signal, nil)

	b := countTemplateMatches(signal, m, r, n-m, n-m+1)
	a := countTemplateMatches(signal, m+1, r, n-m, n-m)

	if a == 0 || b == 0 {
		return 0, fmt.Errorf("%w (A=%d, B=%d)", ErrUndefinedEntropy, a, b)
	}

	return -math.Log(float64(a) / float64(b)), nil
}

// ApproximateEntropy computes the approximate entropy φ(m) - φ(m+1), where
// φ averages the log fraction of templates within tolerance of each
// template. Self-matches are included, so every fraction is positive and
// the result is always defined.
func (rg *Regularity) ApproximateEntropy(signal []float64) (float64, error) {
	m := rg.params.EmbeddingDim
	n := len(signal)

	if m < 1 {
		return 0, fmt.Errorf("embedding dimension must be at least 1, got %d", m)
	}
	if n <= m+1 {
		return 0, fmt.Errorf("sequence of length %d is too short for embedding dimension %d", n, m)
	}

	r := rg.params.Tolerance * stat.PopStdDev(signal, nil)

	return phi(signal, m, r) - phi(signal, m+1, r), nil
}

// phi computes the mean log self-similarity fraction for templates of
// length m. The log sum runs sequentially in template order so the result
// does not depend on how the counting was scheduled.
func phi(signal []float64, m int, r float64) float64 {
	numTemplates := len(signal) - m + 1
	counts := countMatchesPerTemplate(signal, m, r, numTemplates)

	sum := 0.0
	for i := 0; i < numTemplates; i++ {
		sum += math.Log(float64(counts[i]) / float64(numTemplates))
	}

	return sum / float64(numTemplates)
}

// span is a contiguous block of template rows handed to one worker
type span struct {
	start int
	end   int
}

const rowChunkSize = 256

// countTemplateMatches sums, over the first rows templates, how many of the
// first cols templates lie within Chebyshev distance r (self excluded).
// Counting is spread across a worker pool; integer partial sums make the
// total independent of scheduling order.
func countTemplateMatches(signal []float64, tlen int, r float64, rows, cols int) int64 {
	if rows <= 0 || cols <= 0 {
		return 0
	}

	numWorkers := getOptimalWorkerCount(rows)
	if numWorkers <= 1 {
		var total int64
		for i := 0; i < rows; i++ {
			total += countRowMatches(signal, tlen, r, i, cols)
		}
		return total
	}

	jobs := make(chan span, (rows+rowChunkSize-1)/rowChunkSize)
	var total int64
	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local int64
			for sp := range jobs {
				for i := sp.start; i < sp.end; i++ {
					local += countRowMatches(signal, tlen, r, i, cols)
				}
			}
			atomic.AddInt64(&total, local)
		}()
	}

	for start := 0; start < rows; start += rowChunkSize {
		jobs <- span{start: start, end: min(start+rowChunkSize, rows)}
	}
	close(jobs)
	wg.Wait()

	return total
}

// countMatchesPerTemplate counts, for every template, how many templates
// (self included) lie within Chebyshev distance r. Workers write disjoint
// index ranges, so no synchronization beyond the pool itself is needed.
func countMatchesPerTemplate(signal []float64, tlen int, r float64, numTemplates int) []int64 {
	counts := make([]int64, numTemplates)

	numWorkers := getOptimalWorkerCount(numTemplates)
	if numWorkers <= 1 {
		for i := 0; i < numTemplates; i++ {
			counts[i] = 1 + countRowMatches(signal, tlen, r, i, numTemplates)
		}
		return counts
	}

	jobs := make(chan span, (numTemplates+rowChunkSize-1)/rowChunkSize)
	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sp := range jobs {
				for i := sp.start; i < sp.end; i++ {
					counts[i] = 1 + countRowMatches(signal, tlen, r, i, numTemplates)
				}
			}
		}()
	}

	for start := 0; start < numTemplates; start += rowChunkSize {
		jobs <- span{start: start, end: min(start+rowChunkSize, numTemplates)}
	}
	close(jobs)
	wg.Wait()

	return counts
}

// countRowMatches counts templates j within tolerance of template i,
// excluding j == i
func countRowMatches(signal []float64, tlen int, r float64, i, cols int) int64 {
	var count int64
	for j := 0; j < cols; j++ {
		if j == i {
			continue
		}
		if chebyshevWithin(signal, i, j, tlen, r) {
			count++
		}
	}
	return count
}

// chebyshevWithin reports whether the length-tlen templates starting at i
// and j stay within distance r in every coordinate
func chebyshevWithin(signal []float64, i, j, tlen int, r float64) bool {
	for k := 0; k < tlen; k++ {
		d := signal[i+k] - signal[j+k]
		if d < 0 {
			d = -d
		}
		if d > r {
			return false
		}
	}
	return true
}

// getOptimalWorkerCount determines the worker pool size based on workload
func getOptimalWorkerCount(numRows int) int {
	numCPU := runtime.NumCPU()

	// Small workloads run sequentially; goroutine overhead dominates
	if numRows < 100 {
		return 1
	}

	if numRows < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
