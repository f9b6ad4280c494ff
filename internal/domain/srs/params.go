package srs

import (
	"github.com/lexcram/recall-api/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// MinEaseFactor is the floor the ease factor is clamped to.
	MinEaseFactor float64

	// FirstInterval is the interval in days assigned on the first
	// successful review (pre-update repetitions == 0).
	FirstInterval int

	// SecondInterval is the interval in days assigned on the second
	// consecutive successful review (pre-update repetitions == 1).
	SecondInterval int

	// LapseInterval is the interval in days assigned on a failed review.
	LapseInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	MinEaseFactor  float64
	FirstInterval  int
	SecondInterval int
	LapseInterval  int
}

// NewDefaultParams creates a new Params instance with the standard SM-2
// values: ease floor 1.3 and the 1 / 3 / round(interval × ef) ladder.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		FirstInterval:  1,
		SecondInterval: 3,
		LapseInterval:  1,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.LapseInterval > 0 {
		params.LapseInterval = config.LapseInterval
	}

	return params
}
