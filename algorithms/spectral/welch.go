package spectral

import (
	"fmt"

	"github.com/camilabreu10/BioSPPy/algorithms/windowing"
	"github.com/camilabreu10/BioSPPy/logging"
)

// Welch estimates one-sided power spectral density by averaging modified
// periodograms over half-overlapping, Hann-windowed, mean-removed segments
// (Welch's method).
type Welch struct {
	fft    *FFT
	logger logging.Logger
}

// WelchParams configures the estimator
type WelchParams struct {
	SampleRate    float64 `json:"sample_rate"`    // sampling frequency in Hz
	SegmentLength int     `json:"segment_length"` // samples per segment; reduced to the signal length when longer
}

// DefaultWelchParams returns parameters suited to resampled interval series
func DefaultWelchParams() *WelchParams {
	return &WelchParams{
		SampleRate:    4.0,
		SegmentLength: 300,
	}
}

// WelchResult holds the averaged density-scaled spectrum
type WelchResult struct {
	Frequencies   []float64 `json:"frequencies"`    // Hz, k*fs/segment_length
	Power         []float64 `json:"power"`          // density scaling, units²/Hz
	SegmentLength int       `json:"segment_length"` // effective segment length
	Segments      int       `json:"segments"`       // number of averaged segments
}

// NewWelch creates a new Welch PSD estimator
func NewWelch() *Welch {
	return &Welch{
		fft:    NewFFT(),
		logger: logging.WithFields(logging.Fields{"component": "welch_psd"}),
	}
}

// Compute estimates the PSD of a real signal. Segments overlap by half
// their length; each is mean-removed and Hann-windowed (periodic form)
// before the FFT. Periodograms are scaled by 1/(fs*Σw²) and every bin
// except DC and Nyquist is doubled to fold the negative frequencies in.
func (w *Welch) Compute(signal []float64, params *WelchParams) (*WelchResult, error) {
	if params == nil {
		params = DefaultWelchParams()
	}

	if len(signal) < 2 {
		return nil, fmt.Errorf("signal too short for spectral estimation: %d samples", len(signal))
	}
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", params.SampleRate)
	}
	if params.SegmentLength <= 1 {
		return nil, fmt.Errorf("segment length must be greater than 1, got %d", params.SegmentLength)
	}

	nperseg := params.SegmentLength
	if len(signal) < nperseg {
		w.logger.Warn("segment length exceeds signal length, shrinking", logging.Fields{
			"segment_length": nperseg,
			"signal_length":  len(signal),
		})
		nperseg = len(signal)
	}

	noverlap := nperseg / 2
	step := nperseg - noverlap
	numSegments := (len(signal) - noverlap) / step
	freqBins := nperseg/2 + 1

	window := windowing.NewHann(nperseg, false)
	scale := 1.0 / (params.SampleRate * window.SumSquares())

	accum := make([]float64, freqBins)
	segBuffer := make([]float64, nperseg)

	for seg := 0; seg < numSegments; seg++ {
		start := seg * step
		copy(segBuffer, signal[start:start+nperseg])

		// Constant detrend per segment
		mean := 0.0
		for _, v := range segBuffer {
			mean += v
		}
		mean /= float64(nperseg)
		for i := range segBuffer {
			segBuffer[i] -= mean
		}

		if err := window.ApplyInPlace(segBuffer); err != nil {
			return nil, fmt.Errorf("windowing segment %d: %w", seg, err)
		}

		spectrum := w.fft.Compute(segBuffer)
		for k := 0; k < freqBins; k++ {
			re := real(spectrum[k])
			im := imag(spectrum[k])
			accum[k] += (re*re + im*im) * scale
		}
	}

	power := make([]float64, freqBins)
	frequencies := make([]float64, freqBins)
	for k := 0; k < freqBins; k++ {
		p := accum[k] / float64(numSegments)
		// Fold in negative frequencies; DC and (for even lengths) Nyquist
		// have no mirror bin
		if k != 0 && !(nperseg%2 == 0 && k == freqBins-1) {
			p *= 2
		}
		power[k] = p
		frequencies[k] = float64(k) * params.SampleRate / float64(nperseg)
	}

	return &WelchResult{
		Frequencies:   frequencies,
		Power:         power,
		SegmentLength: nperseg,
		Segments:      numSegments,
	}, nil
}
