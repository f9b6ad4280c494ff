package srs

import (
	"math"
	"time"

	"github.com/lexcram/recall-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor from the graded
// quality using the SM-2 formula:
//
//	ef' = ef + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// The adjustment is applied on every grade, success or failure, and the
// result is clamped to params.MinEaseFactor. There is no upper bound; a
// well-known card's ease factor grows without limit.
func calculateNewEaseFactor(currentEF float64, quality domain.Quality, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// A failed review (quality below the passing threshold) always resets to
// params.LapseInterval regardless of prior state. Successful reviews follow
// a three-stage ladder keyed on the pre-update repetition count:
//
//	repetitions 0 -> FirstInterval
//	repetitions 1 -> SecondInterval
//	otherwise     -> round(currentInterval * newEF), minimum 1
//
// Note the growth stage multiplies the prior interval by the already-updated
// ease factor.
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	newEF float64,
	quality domain.Quality,
	params *Params,
) int {
	if !quality.IsCorrect() {
		return params.LapseInterval
	}

	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		interval := int(math.Round(float64(currentInterval) * newEF))
		if interval < 1 {
			interval = 1
		}
		return interval
	}
}

// calculateNextCard computes the full post-review card state. It follows the
// immutable update pattern: the input card is never modified, a new copy is
// returned with ease factor, repetitions, interval, due date, and last
// reviewed time advanced. due_at is always derived as now plus the new
// interval in days; nothing else ever sets it.
func calculateNextCard(
	card *domain.Card,
	quality domain.Quality,
	now time.Time,
	params *Params,
) *domain.Card {
	next := card.Clone()

	next.EaseFactor = calculateNewEaseFactor(card.EaseFactor, quality, params)

	if quality.IsCorrect() {
		next.Repetitions = card.Repetitions + 1
	} else {
		next.Repetitions = 0
	}

	next.IntervalDays = calculateNewInterval(
		card.IntervalDays,
		card.Repetitions,
		next.EaseFactor,
		quality,
		params,
	)

	next.DueAt = now.AddDate(0, 0, next.IntervalDays)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt

	return next
}
