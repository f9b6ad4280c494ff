package review

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/platform/logger"
	"github.com/lexcram/recall-api/internal/store"
)

// BuildQueue selects the learner's due cards — due_at at or before now,
// optionally restricted to one subject — ordered ascending by due_at with
// ties broken by ascending id, truncated to limit (the configured default
// when limit <= 0). Truncation keeps the most overdue cards. Building a
// queue never mutates any card; an empty queue is a normal result, not an
// error.
func (s *Service) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
	limit int,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = s.queueLimit
	}

	cards, err := s.cardStore.GetDue(ctx, store.DueFilter{
		UserID:  userID,
		Subject: subject,
		Now:     s.now(),
		Limit:   limit,
	})
	if err != nil {
		log.Error("failed to build due queue",
			slog.String("user_id", userID.String()),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, newServiceError("build_queue", "failed to query due cards", err)
	}

	// The store contract already orders and truncates; re-applying both
	// here keeps the queue deterministic for any conforming backend.
	sortByDue(cards)
	if len(cards) > limit {
		cards = cards[:limit]
	}

	log.Debug("built due queue",
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Int("size", len(cards)))
	return cards, nil
}

// sortByDue orders cards ascending by due_at, then ascending by id, the
// engine's canonical queue order.
func sortByDue(cards []*domain.Card) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].DueAt.Equal(cards[j].DueAt) {
			return cards[i].DueAt.Before(cards[j].DueAt)
		}
		return strings.Compare(cards[i].ID.String(), cards[j].ID.String()) < 0
	})
}
