package hrv

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/algorithms/spectral"
	"github.com/camilabreu10/BioSPPy/logging"
)

// SpectralMethodFFT estimates the interval spectrum with Welch averaging
// over FFT segments. It is the only method available.
const SpectralMethodFFT = "FFT"

// minDurationFrequency is the shortest series in seconds the spectral
// features accept.
const minDurationFrequency = 20.0

// minResamplePoints is the smallest series the cubic spline can resample
const minResamplePoints = 4

// FrequencyDomainParams contains parameters for frequency-domain feature extraction
type FrequencyDomainParams struct {
	Duration        float64     `json:"duration"`        // seconds; computed from the series when not positive
	Method          string      `json:"method"`          // spectral estimation method
	ResamplingRate  float64     `json:"resampling_rate"` // Hz grid the intervals are resampled onto
	SegmentLength   int         `json:"segment_length"`  // Welch segment length in samples
	Bands           []Band      `json:"bands,omitempty"` // nil uses DefaultBands
	Detrend         bool        `json:"detrend"`         // detrend the resampled series
	WindowLen       int         `json:"window_len"`
	SmoothingFactor float64     `json:"smoothing_factor"`
	Detrender       DetrendFunc `json:"-"`
	Visualizer      Visualizer  `json:"-"`
}

// DefaultFrequencyDomainParams returns the standard spectral setup: a 4 Hz
// resampling grid and 300-sample Welch segments.
func DefaultFrequencyDomainParams() *FrequencyDomainParams {
	return &FrequencyDomainParams{
		Method:         SpectralMethodFFT,
		ResamplingRate: 4,
		SegmentLength:  300,
		Detrend:        true,
	}
}

// FrequencyDomain extracts spectral features of the interval series: power,
// peak frequency and relative power per band, plus the LF/HF balance
// ratios.
type FrequencyDomain struct {
	params *FrequencyDomainParams
	welch  *spectral.Welch
	logger logging.Logger
}

// NewFrequencyDomain creates a frequency-domain extractor with default parameters
func NewFrequencyDomain() *FrequencyDomain {
	return NewFrequencyDomainWithParams(nil)
}

// NewFrequencyDomainWithParams creates a frequency-domain extractor.
// Missing parameter values fall back to the defaults.
func NewFrequencyDomainWithParams(params *FrequencyDomainParams) *FrequencyDomain {
	if params == nil {
		params = DefaultFrequencyDomainParams()
	}
	if params.Method == "" {
		params.Method = SpectralMethodFFT
	}
	if params.ResamplingRate <= 0 {
		params.ResamplingRate = 4
	}
	if params.SegmentLength <= 0 {
		params.SegmentLength = 300
	}
	return &FrequencyDomain{
		params: params,
		welch:  spectral.NewWelch(),
		logger: logging.WithFields(logging.Fields{"component": "hrv_frequency_domain"}),
	}
}

// Compute extracts the frequency-domain features of an interval series in
// milliseconds.
//
// The irregular series is first resampled onto a uniform grid, then its
// power spectral density is estimated and integrated over the configured
// bands. After the per-band features and total_pwr, the set carries
// lf_hf, lf_nu and hf_nu describing the sympathovagal balance.
func (fd *FrequencyDomain) Compute(rri []float64) (*FeatureSet, error) {
	if len(rri) == 0 {
		return nil, fmt.Errorf("%w: empty rri sequence", ErrInsufficientSignal)
	}
	if fd.params.Method != SpectralMethodFFT {
		return nil, fmt.Errorf("%w: %q is not an available input, choose one from: [%s]",
			ErrInvalidSpectralMethod, fd.params.Method, SpectralMethodFFT)
	}

	duration := fd.params.Duration
	if duration <= 0 {
		duration = common.Sum(rri) / 1000
	}
	if duration < minDurationFrequency {
		return nil, fmt.Errorf("%w: frequency-domain features need at least %.0f seconds, got %.2f",
			ErrInsufficientSignal, minDurationFrequency, duration)
	}

	resampled, err := fd.resample(rri)
	if err != nil {
		return nil, err
	}

	if fd.params.Detrend {
		resampled, err = DetrendWindowed(resampled, fd.params.WindowLen, fd.params.SmoothingFactor, fd.params.Detrender)
		if err != nil {
			return nil, fmt.Errorf("failed to detrend resampled rri: %w", err)
		}
	}

	welchResult, err := fd.welch.Compute(resampled, &spectral.WelchParams{
		SampleRate:    fd.params.ResamplingRate,
		SegmentLength: fd.params.SegmentLength,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate power spectrum: %w", err)
	}

	bands := fd.params.Bands
	if bands == nil {
		bands = DefaultBands()
	}

	out, err := ComputeFrequencyBands(welchResult.Frequencies, welchResult.Power, bands)
	if err != nil {
		return nil, err
	}

	lfPwr, okLF := out.Float64("lf_pwr")
	hfPwr, okHF := out.Float64("hf_pwr")
	if !okLF || !okHF {
		return nil, fmt.Errorf("lf or hf band missing from the spectrum, resolution %g Hz is too coarse",
			welchResult.Frequencies[1]-welchResult.Frequencies[0])
	}

	lfNU := lfPwr / (lfPwr + hfPwr)
	if err := appendFeatures(out,
		feature{"lf_hf", lfPwr / hfPwr},
		feature{"lf_nu", lfNU},
		feature{"hf_nu", 1 - lfNU},
	); err != nil {
		return nil, err
	}

	if fd.params.Visualizer != nil {
		fd.params.Visualizer.PlotSpectrum(welchResult.Frequencies, welchResult.Power, bands, fd.params.Method)
	}

	fd.logger.Debug("computed frequency-domain features", logging.Fields{
		"duration_s": duration,
		"segments":   welchResult.Segments,
		"features":   out.Len(),
	})

	return out, nil
}

// resample fits a cubic spline through (cumulative time, interval) pairs
// and samples it on a uniform grid. Sample times are the cumulative
// interval sums shifted to start at zero; the grid advances in 1000/rate
// ms steps up to, not including, the last sample time.
func (fd *FrequencyDomain) resample(rri []float64) ([]float64, error) {
	if len(rri) < minResamplePoints {
		return nil, fmt.Errorf("%w: cubic resampling needs at least %d intervals, got %d",
			ErrInsufficientSignal, minResamplePoints, len(rri))
	}
	for i, v := range rri {
		if v <= 0 {
			return nil, fmt.Errorf("rr intervals must be positive to resample, found %g at index %d", v, i)
		}
	}

	t := common.CumSum(rri)
	origin := t[0]
	for i := range t {
		t[i] -= origin
	}

	var spline interp.NotAKnotCubic
	if err := spline.Fit(t, rri); err != nil {
		return nil, fmt.Errorf("failed to fit interval spline: %w", err)
	}

	grid := arange(0, t[len(t)-1], 1000/fd.params.ResamplingRate)
	resampled := make([]float64, len(grid))
	for i, x := range grid {
		resampled[i] = spline.Predict(x)
	}
	return resampled, nil
}
