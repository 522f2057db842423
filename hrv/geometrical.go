package hrv

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/logging"
)

// GeometricalParams contains parameters for the histogram features
type GeometricalParams struct {
	BinSize    float64    `json:"bin_size"` // histogram bin width in seconds
	Visualizer Visualizer `json:"-"`
}

// DefaultGeometricalParams returns the standard 1/128 s histogram binning
func DefaultGeometricalParams() *GeometricalParams {
	return &GeometricalParams{BinSize: 1.0 / 128}
}

// GeometricalResult holds the histogram features and the artifacts behind them
type GeometricalResult struct {
	HTI    float64   `json:"hti"`              // series length over the modal bin count
	TINN   float64   `json:"tinn"`             // triangular baseline width (ms)
	Edges  []float64 `json:"edges"`            // histogram bin edges (ms)
	Counts []float64 `json:"counts"`           // per-bin interval counts
	Fitted []float64 `json:"fitted,omitempty"` // best triangle sampled at the edges
}

// Geometrical derives features from the shape of the interval histogram:
// the triangular index and the baseline width of the closest triangular
// fit to the distribution.
type Geometrical struct {
	params *GeometricalParams
	logger logging.Logger
}

// NewGeometrical creates a histogram feature extractor with default binning
func NewGeometrical() *Geometrical {
	return NewGeometricalWithParams(nil)
}

// NewGeometricalWithParams creates a histogram feature extractor. Missing
// parameter values fall back to the defaults.
func NewGeometricalWithParams(params *GeometricalParams) *Geometrical {
	if params == nil {
		params = DefaultGeometricalParams()
	}
	if params.BinSize <= 0 {
		params.BinSize = 1.0 / 128
	}
	return &Geometrical{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "hrv_geometrical"}),
	}
}

// Compute builds the interval histogram and derives HTI and TINN from it.
//
// The histogram spans [min, max+binsize) in fixed-width bins. The
// triangular fit tries every triangle with its apex at the modal bin edge
// and base corners N < peak < M drawn from the remaining edges, scores
// each by squared distance to the bin counts, and reports M-N for the
// winner. When the modal bin is the first one there is no corner left of
// the apex and the baseline width degrades to zero.
func (g *Geometrical) Compute(rri []float64) (*GeometricalResult, error) {
	if len(rri) == 0 {
		return nil, fmt.Errorf("%w: empty rri sequence", ErrInsufficientSignal)
	}

	binSize := g.params.BinSize * 1000 // ms
	tmin := common.Min(rri)
	tmax := common.Max(rri)

	edges := arange(tmin, tmax+binSize, binSize)
	if len(edges) < 2 {
		// constant series: the whole distribution sits in one bin
		edges = []float64{tmin, tmin + binSize}
	}
	counts := histogram(rri, edges)

	maxCount := 0.0
	peakIdx := 0
	for i, c := range counts {
		if c > maxCount {
			maxCount = c
			peakIdx = i
		}
	}

	hti := float64(len(rri)) / maxCount
	bestN, bestM, fitted := g.fitTriangle(edges, counts, peakIdx, maxCount, tmin, tmax+binSize)
	tinn := bestM - bestN

	if g.params.Visualizer != nil {
		g.params.Visualizer.PlotHistogram(rri, edges, fitted, hti, tinn)
	}

	g.logger.Debug("computed geometrical features", logging.Fields{
		"bins": len(counts),
		"hti":  hti,
		"tinn": tinn,
	})

	return &GeometricalResult{
		HTI:    hti,
		TINN:   tinn,
		Edges:  edges,
		Counts: counts,
		Fitted: fitted,
	}, nil
}

// triangleCandidate is one (N, M) base pair scored against the histogram
type triangleCandidate struct {
	n, m  float64
	score float64
}

// betterCandidate reports whether a beats b: strictly lower score, with
// ties resolved toward the smaller N and then the smaller M, so a
// parallel search selects the same winner as a sequential scan in
// ascending corner order.
func betterCandidate(a, b triangleCandidate) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.n != b.n {
		return a.n < b.n
	}
	return a.m < b.m
}

// fitTriangle searches every (N, M) pair for the triangle closest to the
// histogram and returns the winning corners with the winning triangle
// sampled at the edges. No candidate pair returns zero corners and a nil
// curve.
func (g *Geometrical) fitTriangle(edges, counts []float64, peakIdx int, maxCount, lo, hi float64) (float64, float64, []float64) {
	nValues := edges[:peakIdx]
	mValues := edges[peakIdx+1:]
	if len(nValues) == 0 || len(mValues) == 0 {
		return 0, 0, nil
	}

	peakEdge := edges[peakIdx]
	best := triangleCandidate{score: math.Inf(1)}

	numWorkers := triangleWorkerCount(len(nValues) * len(mValues))
	if numWorkers <= 1 {
		for _, n := range nValues {
			for _, m := range mValues {
				cand := triangleCandidate{n: n, m: m, score: scoreTriangle(edges, counts, lo, n, peakEdge, m, hi, maxCount)}
				if betterCandidate(cand, best) {
					best = cand
				}
			}
		}
	} else {
		jobs := make(chan int, len(nValues))
		results := make(chan triangleCandidate, numWorkers)
		var wg sync.WaitGroup

		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				local := triangleCandidate{score: math.Inf(1)}
				for i := range jobs {
					n := nValues[i]
					for _, m := range mValues {
						cand := triangleCandidate{n: n, m: m, score: scoreTriangle(edges, counts, lo, n, peakEdge, m, hi, maxCount)}
						if betterCandidate(cand, local) {
							local = cand
						}
					}
				}
				results <- local
			}()
		}

		for i := range nValues {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
		close(results)

		for cand := range results {
			if betterCandidate(cand, best) {
				best = cand
			}
		}
	}

	return best.n, best.m, evalTriangle(edges, lo, best.n, peakEdge, best.m, hi, maxCount)
}

// scoreTriangle sums the squared distance between the bin counts and the
// triangle through (lo,0), (n,0), (peak,maxCount), (m,0), (hi,0) sampled
// at the left edge of every bin.
func scoreTriangle(edges, counts []float64, lo, n, peak, m, hi, maxCount float64) float64 {
	xs := [5]float64{lo, n, peak, m, hi}
	ys := [5]float64{0, 0, maxCount, 0, 0}

	score := 0.0
	for i, c := range counts {
		d := c - common.Interpolate(xs[:], ys[:], edges[i])
		score += d * d
	}
	return score
}

// evalTriangle samples the triangle at every edge for plotting
func evalTriangle(edges []float64, lo, n, peak, m, hi, maxCount float64) []float64 {
	xs := [5]float64{lo, n, peak, m, hi}
	ys := [5]float64{0, 0, maxCount, 0, 0}

	fitted := make([]float64, len(edges))
	for i, e := range edges {
		fitted[i] = common.Interpolate(xs[:], ys[:], e)
	}
	return fitted
}

// triangleWorkerCount sizes the search pool; small grids stay sequential
func triangleWorkerCount(candidates int) int {
	if candidates < 512 {
		return 1
	}
	return min(runtime.NumCPU(), 8)
}

// arange returns start + i*step for every i with start + i*step < stop,
// the ceil((stop-start)/step) points of a regular grid
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// histogram counts values into the bins defined by edges. Bins are closed
// on the left and open on the right, except the last bin which includes
// its right edge. Values outside the edge range are dropped.
func histogram(values, edges []float64) []float64 {
	counts := make([]float64, len(edges)-1)
	last := len(edges) - 1
	for _, v := range values {
		if v < edges[0] || v > edges[last] {
			continue
		}
		if v == edges[last] {
			counts[last-1]++
			continue
		}
		i := sort.SearchFloat64s(edges, v)
		if i == len(edges) || edges[i] != v {
			i--
		}
		counts[i]++
	}
	return counts
}
