// Package srs implements the spaced-repetition scheduler: a pure SM-2
// update rule that maps a card's current scheduling state and a quality
// grade to the next scheduling state. It has no side effects and no
// dependency on storage or transport.
package srs

import (
	"errors"
	"time"

	"github.com/lexcram/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilCard = errors.New("card cannot be nil")
)

// Service defines the interface for SRS scheduling operations.
type Service interface {
	// Grade computes the card state that results from reviewing card with
	// the given quality at the given time. The input card is not modified.
	Grade(card *domain.Card, quality domain.Quality, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Grade implements the Service interface. Quality validation is the
// caller's contract; it is checked here as well so an out-of-range grade
// can never corrupt scheduling state.
func (s *defaultService) Grade(
	card *domain.Card,
	quality domain.Quality,
	now time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !quality.IsValid() {
		return nil, domain.ErrInvalidQuality
	}

	return calculateNextCard(card, quality, now, s.params), nil
}
