package hrv

import (
	"fmt"

	"github.com/camilabreu10/BioSPPy/algorithms/common"
)

// Band is a named frequency interval in Hz, inclusive at both edges
type Band struct {
	Name string  `json:"name"`
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DefaultBands returns the standard frequency bands for interval spectra
func DefaultBands() []Band {
	return []Band{
		{Name: "ulf", Low: 0, High: 0.003},
		{Name: "vlf", Low: 0.003, High: 0.04},
		{Name: "lf", Low: 0.04, High: 0.15},
		{Name: "hf", Low: 0.15, High: 0.4},
		{Name: "vhf", Low: 0.4, High: 0.5},
	}
}

// ComputeFrequencyBands integrates a uniformly spaced power spectral
// density over each band and emits {name}_pwr, {name}_peak and
// {name}_rpwr per band, in table order, followed by total_pwr over the
// whole spectrum. The peak is the frequency of the highest in-band power,
// the first such bin on ties. Bands containing no spectrum bin are
// skipped.
func ComputeFrequencyBands(frequencies, powers []float64, bands []Band) (*FeatureSet, error) {
	if len(frequencies) < 2 {
		return nil, fmt.Errorf("spectrum needs at least 2 bins, got %d", len(frequencies))
	}
	if len(powers) != len(frequencies) {
		return nil, fmt.Errorf("frequency and power lengths differ: %d != %d", len(frequencies), len(powers))
	}
	if bands == nil {
		bands = DefaultBands()
	}

	df := frequencies[1] - frequencies[0]
	totalPwr := common.Sum(powers) * df

	out := NewFeatureSet()
	for _, band := range bands {
		var pwr, maxPower, peak float64
		found := false
		for i, f := range frequencies {
			if f < band.Low || f > band.High {
				continue
			}
			pwr += powers[i]
			if !found || powers[i] > maxPower {
				maxPower = powers[i]
				peak = f
			}
			found = true
		}
		if !found {
			continue
		}
		pwr *= df

		if err := appendFeatures(out,
			feature{band.Name + "_pwr", pwr},
			feature{band.Name + "_peak", peak},
			feature{band.Name + "_rpwr", pwr / totalPwr},
		); err != nil {
			return nil, err
		}
	}

	if err := out.Append("total_pwr", totalPwr); err != nil {
		return nil, err
	}

	return out, nil
}
