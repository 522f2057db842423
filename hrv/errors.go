package hrv

import (
	"errors"

	"github.com/camilabreu10/BioSPPy/algorithms/stats"
)

// Sentinel errors of the extraction pipeline. Family extractors wrap
// ErrInsufficientSignal so callers can tell a series that is too short
// apart from invalid configuration.
var (
	// ErrMissingInput is returned when neither beat indices nor an RRI
	// sequence is provided.
	ErrMissingInput = errors.New("hrv: no beat indices or rri sequence provided")

	// ErrNotEnoughBeats is returned when fewer than two beat indices are
	// available to form an interval.
	ErrNotEnoughBeats = errors.New("hrv: at least two beat indices are required")

	// ErrInvalidSelector is returned for an unknown feature family selector.
	ErrInvalidSelector = errors.New("hrv: invalid feature selector")

	// ErrInvalidSpectralMethod is returned for an unknown spectral
	// estimation method.
	ErrInvalidSpectralMethod = errors.New("hrv: invalid spectral estimation method")

	// ErrInsufficientSignal is returned when the interval series is too
	// short for the requested feature family.
	ErrInsufficientSignal = errors.New("hrv: signal too short")
)

// ErrUndefinedEntropy mirrors stats.ErrUndefinedEntropy so callers can
// match it without importing the stats package.
var ErrUndefinedEntropy = stats.ErrUndefinedEntropy
