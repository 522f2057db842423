// Package hrv extracts heart-rate variability features from heartbeat
// interval series. Beat sample indices are converted to RR intervals,
// cleaned, and summarized by three feature families: time-domain
// statistics, frequency-domain band powers and non-linear descriptors.
package hrv

import (
	"errors"
	"fmt"
	"math"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/logging"
)

// defaultSamplingRate is assumed for beat indices when none is given (Hz)
const defaultSamplingRate = 1000.0

// Selector picks which feature families to extract
type Selector string

const (
	// SelectorAuto attempts every family and keeps those the series
	// duration supports.
	SelectorAuto Selector = "auto"
	// SelectorTime extracts only time-domain features.
	SelectorTime Selector = "time"
	// SelectorFrequency extracts only frequency-domain features.
	SelectorFrequency Selector = "frequency"
	// SelectorNonLinear extracts only non-linear features.
	SelectorNonLinear Selector = "non-linear"
	// SelectorAll extracts every family regardless of series duration.
	SelectorAll Selector = "all"
)

// availableSelectors lists the accepted selector values for error messages
const availableSelectors = "auto, time, frequency, non-linear, all"

func (s Selector) valid() bool {
	switch s {
	case SelectorAuto, SelectorTime, SelectorFrequency, SelectorNonLinear, SelectorAll:
		return true
	}
	return false
}

// wants reports whether the selector asks for the given single family
func (s Selector) wants(family Selector) bool {
	return s == family || s == SelectorAuto || s == SelectorAll
}

// Config controls the extraction pipeline
type Config struct {
	Features         Selector    `json:"features"`           // families to extract
	FilterRRI        bool        `json:"filter_rri"`         // drop implausibly long intervals
	FilterThreshold  float64     `json:"filter_threshold"`   // ms; intervals at or above are dropped
	DetrendRRI       bool        `json:"detrend_rri"`        // remove the slow trend before variability features
	DetrendWindowLen int         `json:"detrend_window_len"` // samples per detrending window
	SmoothingFactor  float64     `json:"smoothing_factor"`   // detrending regularization strength
	Method           string      `json:"method"`             // spectral estimation method
	ResamplingRate   float64     `json:"resampling_rate"`    // Hz grid for spectral estimation
	SegmentLength    int         `json:"segment_length"`     // Welch segment length in samples
	Bands            []Band      `json:"bands,omitempty"`    // nil uses DefaultBands
	Detrender        DetrendFunc `json:"-"`                  // nil uses smoothness priors
	Visualizer       Visualizer  `json:"-"`                  // nil keeps the pipeline headless
}

// DefaultConfig returns the standard pipeline setup: automatic family
// selection, filtering at 1200 ms and windowed smoothness-priors
// detrending.
func DefaultConfig() *Config {
	return &Config{
		Features:         SelectorAuto,
		FilterRRI:        true,
		FilterThreshold:  DefaultFilterThreshold,
		DetrendRRI:       true,
		DetrendWindowLen: DefaultDetrendWindowLen,
		SmoothingFactor:  DefaultSmoothingFactor,
		Method:           SpectralMethodFFT,
		ResamplingRate:   4,
		SegmentLength:    300,
	}
}

// Input carries one recording into the pipeline. RRI, when set, takes
// precedence over RPeaks.
type Input struct {
	RPeaks       []int     `json:"rpeaks,omitempty"`        // beat sample indices
	SamplingRate float64   `json:"sampling_rate,omitempty"` // Hz for RPeaks; 1000 when not positive
	RRI          []float64 `json:"rri,omitempty"`           // RR intervals (ms)
}

// FamilyFailure records a feature family skipped because the series could
// not support it.
type FamilyFailure struct {
	Family  string `json:"family"`
	Message string `json:"message"`
}

// Result is the outcome of one extraction run
type Result struct {
	Features *FeatureSet     `json:"features"`          // extracted features, insertion ordered
	Duration float64         `json:"duration"`          // series duration in seconds, before filtering
	Skipped  []FamilyFailure `json:"skipped,omitempty"` // families skipped and why
}

// Pipeline runs interval preparation and the feature family extractors
type Pipeline struct {
	config *Config
	logger logging.Logger
}

// NewPipeline creates an extraction pipeline. A nil config uses DefaultConfig.
func NewPipeline(config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "hrv_pipeline"}),
	}
}

// Extract runs the configured feature families over one recording.
//
// The interval series comes from Input.RRI directly or is computed from
// the beat indices. Duration is measured before filtering, so it reflects
// the recording rather than the cleaned series. Every family the selector
// asks for is attempted; a family that finds the series too short is
// skipped and recorded in Result.Skipped, any other failure aborts the
// run. The returned set always starts with the prepared rri series.
func (p *Pipeline) Extract(input *Input) (*Result, error) {
	if input == nil || (len(input.RPeaks) == 0 && len(input.RRI) == 0) {
		return nil, ErrMissingInput
	}

	selector := p.config.Features
	if selector == "" {
		selector = SelectorAuto
	}
	if !selector.valid() {
		return nil, fmt.Errorf("%w: %q is not an available input, enter one from: [%s]",
			ErrInvalidSelector, string(selector), availableSelectors)
	}

	method := p.config.Method
	if method == "" {
		method = SpectralMethodFFT
	}
	if method != SpectralMethodFFT {
		return nil, fmt.Errorf("%w: %q is not an available input, choose one from: [%s]",
			ErrInvalidSpectralMethod, method, SpectralMethodFFT)
	}

	rri, err := p.intervalSeries(input)
	if err != nil {
		return nil, err
	}

	// measured before filtering so dropped intervals still count
	duration := common.Sum(rri) / 1000

	if p.config.FilterRRI {
		rri = FilterRRI(rri, p.config.FilterThreshold)
	}

	var rriDet []float64
	if p.config.DetrendRRI {
		rriDet, err = DetrendWindowed(rri, p.config.DetrendWindowLen, p.config.SmoothingFactor, p.config.Detrender)
		if err != nil {
			return nil, fmt.Errorf("failed to detrend rri: %w", err)
		}
	}

	p.logger.Debug("prepared interval series", logging.Fields{
		"intervals":  len(rri),
		"duration_s": duration,
	})

	features := NewFeatureSet()
	if err := features.Append("rri", rri); err != nil {
		return nil, err
	}
	result := &Result{Features: features, Duration: duration}

	famDuration := duration
	if selector == SelectorAll {
		famDuration = math.Inf(1)
	}

	if selector.wants(SelectorTime) {
		td := NewTimeDomainWithParams(&TimeDomainParams{
			Duration:        famDuration,
			Detrend:         p.config.DetrendRRI,
			WindowLen:       p.config.DetrendWindowLen,
			SmoothingFactor: p.config.SmoothingFactor,
			Detrended:       rriDet,
			Detrender:       p.config.Detrender,
			Visualizer:      p.config.Visualizer,
		})
		if err := p.runFamily(result, "time", func() (*FeatureSet, error) {
			return td.Compute(rri)
		}); err != nil {
			return nil, err
		}
	}

	if selector.wants(SelectorFrequency) {
		fd := NewFrequencyDomainWithParams(&FrequencyDomainParams{
			Duration:        famDuration,
			Method:          method,
			ResamplingRate:  p.config.ResamplingRate,
			SegmentLength:   p.config.SegmentLength,
			Bands:           p.config.Bands,
			Detrend:         p.config.DetrendRRI,
			WindowLen:       p.config.DetrendWindowLen,
			SmoothingFactor: p.config.SmoothingFactor,
			Detrender:       p.config.Detrender,
			Visualizer:      p.config.Visualizer,
		})
		if err := p.runFamily(result, "frequency", func() (*FeatureSet, error) {
			return fd.Compute(rri)
		}); err != nil {
			return nil, err
		}
	}

	if selector.wants(SelectorNonLinear) {
		nl := NewNonLinearWithParams(&NonLinearParams{
			Duration:        famDuration,
			Detrend:         p.config.DetrendRRI,
			WindowLen:       p.config.DetrendWindowLen,
			SmoothingFactor: p.config.SmoothingFactor,
			Detrender:       p.config.Detrender,
			Visualizer:      p.config.Visualizer,
		})
		if err := p.runFamily(result, "non-linear", func() (*FeatureSet, error) {
			return nl.Compute(rri)
		}); err != nil {
			return nil, err
		}
	}

	p.logger.Info("hrv feature extraction complete", logging.Fields{
		"features":   result.Features.Len(),
		"skipped":    len(result.Skipped),
		"duration_s": duration,
	})

	return result, nil
}

// intervalSeries resolves the RR interval series from the input without
// aliasing the caller's slices
func (p *Pipeline) intervalSeries(input *Input) ([]float64, error) {
	if len(input.RRI) > 0 {
		rri := make([]float64, len(input.RRI))
		copy(rri, input.RRI)
		return rri, nil
	}

	samplingRate := input.SamplingRate
	if samplingRate <= 0 {
		samplingRate = defaultSamplingRate
	}
	return ComputeRRI(input.RPeaks, samplingRate)
}

// runFamily extracts one feature family and joins it into the result. A
// series too short for the family is not an error for the run as a whole:
// the family is skipped and recorded.
func (p *Pipeline) runFamily(result *Result, family string, compute func() (*FeatureSet, error)) error {
	features, err := compute()
	if err != nil {
		if errors.Is(err, ErrInsufficientSignal) || errors.Is(err, ErrUndefinedEntropy) {
			p.logger.Warn("feature family not computed", logging.Fields{
				"family": family,
				"reason": err.Error(),
			})
			result.Skipped = append(result.Skipped, FamilyFailure{Family: family, Message: err.Error()})
			return nil
		}
		return fmt.Errorf("failed to compute %s features: %w", family, err)
	}
	return result.Features.Join(features)
}
