package hrv

import (
	"fmt"
	"math"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
	"github.com/camilabreu10/BioSPPy/logging"
)

// Durations in seconds a series must span before each time-domain feature
// group becomes reliable.
const (
	minDurationHeartRate   = 10.0
	minDurationSuccessive  = 20.0
	minDurationDeviation   = 60.0
	minDurationGeometrical = 90.0
)

// nn50Threshold is the successive-difference threshold in milliseconds
const nn50Threshold = 50.0

// TimeDomainParams contains parameters for time-domain feature extraction
type TimeDomainParams struct {
	Duration        float64     `json:"duration"`         // seconds; computed from the series when not positive
	Detrend         bool        `json:"detrend"`          // remove the slow trend before variability features
	WindowLen       int         `json:"window_len"`       // detrending window length in samples
	SmoothingFactor float64     `json:"smoothing_factor"` // detrending regularization strength
	Detrended       []float64   `json:"-"`                // optional precomputed detrended series
	Detrender       DetrendFunc `json:"-"`
	Visualizer      Visualizer  `json:"-"`
}

// DefaultTimeDomainParams returns the standard time-domain setup
func DefaultTimeDomainParams() *TimeDomainParams {
	return &TimeDomainParams{Detrend: true}
}

// TimeDomain extracts statistical features of the interval series: heart
// rate summary, successive-difference variability and the interval
// histogram geometry. Longer series unlock more features.
type TimeDomain struct {
	params *TimeDomainParams
	logger logging.Logger
}

// NewTimeDomain creates a time-domain extractor with default parameters
func NewTimeDomain() *TimeDomain {
	return NewTimeDomainWithParams(nil)
}

// NewTimeDomainWithParams creates a time-domain extractor
func NewTimeDomainWithParams(params *TimeDomainParams) *TimeDomain {
	if params == nil {
		params = DefaultTimeDomainParams()
	}
	return &TimeDomain{
		params: params,
		logger: logging.WithFields(logging.Fields{"component": "hrv_time_domain"}),
	}
}

// Compute extracts the time-domain features of an interval series in
// milliseconds.
//
// Heart rate features and the interval mean come from the raw series;
// successive-difference and deviation features (rmssd, nn50, pnn50, sdnn)
// use the detrended series so a slow drift does not inflate them; the
// histogram features (hti, tinn) again use the raw series. Features
// appear in a fixed order: hr, hr_min, hr_max, hr_minmax, hr_avg,
// rr_mean, rmssd, then nn50 and pnn50 from 20 s, sdnn from 60 s, hti and
// tinn from 90 s.
func (td *TimeDomain) Compute(rri []float64) (*FeatureSet, error) {
	if len(rri) == 0 {
		return nil, fmt.Errorf("%w: empty rri sequence", ErrInsufficientSignal)
	}

	duration := td.params.Duration
	if duration <= 0 {
		duration = common.Sum(rri) / 1000
	}
	if duration < minDurationHeartRate {
		return nil, fmt.Errorf("%w: time-domain features need at least %.0f seconds, got %.2f",
			ErrInsufficientSignal, minDurationHeartRate, duration)
	}

	rriDet := rri
	if td.params.Detrend {
		if td.params.Detrended != nil {
			rriDet = td.params.Detrended
		} else {
			var err error
			rriDet, err = DetrendWindowed(rri, td.params.WindowLen, td.params.SmoothingFactor, td.params.Detrender)
			if err != nil {
				return nil, fmt.Errorf("failed to detrend rri: %w", err)
			}
		}
	}

	rriDiff := common.Diff(rriDet)

	hr := make([]float64, len(rri))
	for i, v := range rri {
		hr[i] = 60000 / v // bpm
	}
	hrMin := common.Min(hr)
	hrMax := common.Max(hr)

	out := NewFeatureSet()
	if err := appendFeatures(out,
		feature{"hr", hr},
		feature{"hr_min", hrMin},
		feature{"hr_max", hrMax},
		feature{"hr_minmax", hrMax - hrMin},
		feature{"hr_avg", common.Mean(hr)},
		feature{"rr_mean", common.Mean(rri)},
		feature{"rmssd", common.RMS(rriDiff)},
	); err != nil {
		return nil, err
	}

	if duration >= minDurationSuccessive {
		nn50 := 0
		for _, d := range rriDiff {
			if math.Abs(d) > nn50Threshold {
				nn50++
			}
		}
		pnn50 := 100 * float64(nn50) / float64(len(rriDiff))

		if err := appendFeatures(out,
			feature{"nn50", nn50},
			feature{"pnn50", pnn50},
		); err != nil {
			return nil, err
		}
	}

	if duration >= minDurationDeviation {
		if err := out.Append("sdnn", common.PopStdDev(rriDet)); err != nil {
			return nil, err
		}
	}

	if duration >= minDurationGeometrical {
		geo := NewGeometricalWithParams(&GeometricalParams{Visualizer: td.params.Visualizer})
		res, err := geo.Compute(rri)
		if err != nil {
			return nil, fmt.Errorf("failed to compute geometrical features: %w", err)
		}
		if err := appendFeatures(out,
			feature{"hti", res.HTI},
			feature{"tinn", res.TINN},
		); err != nil {
			return nil, err
		}
	}

	td.logger.Debug("computed time-domain features", logging.Fields{
		"duration_s": duration,
		"features":   out.Len(),
	})

	return out, nil
}
