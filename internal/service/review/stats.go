package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/platform/logger"
)

// Counts is a point-in-time snapshot of a card population.
//
// New covers cards with no successful review cycle; learning and mature
// split the reviewed cards at the 21-day interval mark, so new, learning,
// and mature partition the population. Due is an orthogonal dimension and
// overlaps all three.
type Counts struct {
	Total    int `json:"total"`
	Due      int `json:"due"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mature   int `json:"mature"`
}

// Stats derives population counters for the learner's cards, optionally
// restricted to one subject. Counters are computed fresh from the store on
// every call; nothing is cached. An unknown subject simply yields zeroes.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID, subject string) (Counts, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.cardStore.GetStatsRows(ctx, userID, subject)
	if err != nil {
		log.Error("failed to load stats rows",
			slog.String("user_id", userID.String()),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return Counts{}, newServiceError("stats", "failed to query cards", err)
	}

	now := s.now()
	counts := Counts{Total: len(rows)}
	for _, card := range rows {
		if card.IsDue(now) {
			counts.Due++
		}
		switch {
		case card.Repetitions == 0:
			counts.New++
		case card.IntervalDays < domain.MatureIntervalDays:
			counts.Learning++
		default:
			counts.Mature++
		}
	}

	return counts, nil
}
