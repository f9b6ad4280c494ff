package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
)

// DueFilter narrows a due-card query. A zero Subject means all subjects.
type DueFilter struct {
	UserID  uuid.UUID
	Subject string
	Now     time.Time
	Limit   int
}

// ListFilter narrows a card listing. Zero-value fields are not applied.
type ListFilter struct {
	UserID  uuid.UUID
	Subject string
	Topic   string
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves a batch of cards handed off by the content
	// generation collaborator. The write is atomic: either all cards are
	// created or none. All cards must pass domain validation.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetDue retrieves cards whose due_at is at or before filter.Now,
	// ordered ascending by (due_at, id) and truncated to filter.Limit
	// (unlimited when Limit <= 0). An empty result is normal, not an error.
	// The query is read-only and never mutates any card.
	GetDue(ctx context.Context, filter DueFilter) ([]*domain.Card, error)

	// List retrieves all of a learner's cards matching the filter,
	// newest first.
	List(ctx context.Context, filter ListFilter) ([]*domain.Card, error)

	// GetStatsRows retrieves the card population the stats aggregator
	// counts over: every card of the learner matching the subject filter.
	// Implementations may omit the front/back payloads.
	GetStatsRows(ctx context.Context, userID uuid.UUID, subject string) ([]*domain.Card, error)

	// UpdateSchedule writes a card's post-review scheduling state
	// (ease_factor, interval_days, repetitions, due_at, last_reviewed_at)
	// as a single atomic record write. No other field is touched.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateSchedule(ctx context.Context, card *domain.Card) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
