// Package review implements the adaptive flashcard review engine: the
// due-queue builder, the review-session state machine, card ingestion, and
// the population stats aggregator. Scheduling math lives in domain/srs;
// persistence behind store.CardStore.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/domain/srs"
	"github.com/lexcram/recall-api/internal/platform/logger"
	"github.com/lexcram/recall-api/internal/store"
)

// DefaultQueueLimit bounds a session queue when the caller does not ask
// for a specific size.
const DefaultQueueLimit = 20

// Service exposes the review engine's card-population operations: building
// due queues, ingesting generated cards, listing, and stats. Session
// lifecycle is handled by SessionManager, which builds on this service.
type Service struct {
	cardStore  store.CardStore
	srsService srs.Service
	logger     *slog.Logger
	queueLimit int
	now        func() time.Time
}

// Option customizes Service construction.
type Option func(*Service)

// WithQueueLimit overrides the default due-queue limit.
func WithQueueLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.queueLimit = limit
		}
	}
}

// WithClock overrides the service's time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a review Service.
func NewService(
	cardStore store.CardStore,
	srsService srs.Service,
	log *slog.Logger,
	opts ...Option,
) *Service {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		cardStore:  cardStore,
		srsService: srsService,
		logger:     log.With(slog.String("component", "review_service")),
		queueLimit: DefaultQueueLimit,
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CardInput is a single card handed off by the content generation
// collaborator. Front and back are opaque payloads.
type CardInput struct {
	Subject  string
	Topic    string
	CardType string
	Front    string
	Back     string
}

// IngestCards persists a batch of generated cards for a learner with
// default scheduling state, atomically: either every card is stored or
// none. Returns the created cards in input order.
func (s *Service) IngestCards(
	ctx context.Context,
	userID uuid.UUID,
	inputs []CardInput,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards := make([]*domain.Card, 0, len(inputs))
	for i, input := range inputs {
		card, err := domain.NewCard(userID, input.Subject, input.Topic, input.CardType, input.Front, input.Back)
		if err != nil {
			return nil, newServiceError("ingest_cards",
				fmt.Sprintf("card %d failed validation", i), err)
		}
		cards = append(cards, card)
	}

	if err := s.cardStore.CreateMultiple(ctx, cards); err != nil {
		log.Error("failed to ingest cards",
			slog.String("user_id", userID.String()),
			slog.Int("count", len(cards)),
			slog.String("error", err.Error()))
		return nil, newServiceError("ingest_cards", "failed to store cards", err)
	}

	log.Debug("ingested cards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// ListCards returns all of the learner's cards matching the optional
// subject and topic filters, newest first.
func (s *Service) ListCards(
	ctx context.Context,
	userID uuid.UUID,
	subject, topic string,
) ([]*domain.Card, error) {
	cards, err := s.cardStore.List(ctx, store.ListFilter{
		UserID:  userID,
		Subject: subject,
		Topic:   topic,
	})
	if err != nil {
		return nil, newServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}
