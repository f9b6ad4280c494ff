package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/store"
)

// CardStore is an in-memory implementation of store.CardStore.
// It mirrors the ordering guarantees of the PostgreSQL implementation so
// tests against either backend observe identical queues.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Card

	// CreateErr, GetErr, and UpdateScheduleErr, when set, are returned by
	// the corresponding method before any state change. Used to exercise
	// failure paths.
	CreateErr         error
	GetErr            error
	UpdateScheduleErr error

	// UpdateScheduleCalls counts successful schedule writes.
	UpdateScheduleCalls int
}

// NewCardStore creates an empty in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[uuid.UUID]*domain.Card),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// Seed inserts cards without validation, for test setup.
func (s *CardStore) Seed(cards ...*domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range cards {
		s.cards[card.ID] = card.Clone()
	}
}

// Snapshot returns a copy of the stored card with the given ID, or nil.
func (s *CardStore) Snapshot(id uuid.UUID) *domain.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if card, ok := s.cards[id]; ok {
		return card.Clone()
	}
	return nil
}

// CreateMultiple implements store.CardStore.CreateMultiple.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range cards {
		if _, exists := s.cards[card.ID]; exists {
			return fmt.Errorf("%w: card %s", store.ErrDuplicate, card.ID)
		}
	}
	for _, card := range cards {
		s.cards[card.ID] = card.Clone()
	}
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

// GetDue implements store.CardStore.GetDue.
func (s *CardStore) GetDue(ctx context.Context, filter store.DueFilter) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.UserID != filter.UserID {
			continue
		}
		if filter.Subject != "" && card.Subject != filter.Subject {
			continue
		}
		if !card.IsDue(filter.Now) {
			continue
		}
		due = append(due, card.Clone())
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return strings.Compare(due[i].ID.String(), due[j].ID.String()) < 0
	})

	if filter.Limit > 0 && len(due) > filter.Limit {
		due = due[:filter.Limit]
	}

	return due, nil
}

// List implements store.CardStore.List.
func (s *CardStore) List(ctx context.Context, filter store.ListFilter) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.UserID != filter.UserID {
			continue
		}
		if filter.Subject != "" && card.Subject != filter.Subject {
			continue
		}
		if filter.Topic != "" && card.Topic != filter.Topic {
			continue
		}
		matched = append(matched, card.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return strings.Compare(matched[i].ID.String(), matched[j].ID.String()) < 0
	})

	return matched, nil
}

// GetStatsRows implements store.CardStore.GetStatsRows.
func (s *CardStore) GetStatsRows(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) ([]*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*domain.Card, 0)
	for _, card := range s.cards {
		if card.UserID != userID {
			continue
		}
		if subject != "" && card.Subject != subject {
			continue
		}
		rows = append(rows, card.Clone())
	}
	return rows, nil
}

// UpdateSchedule implements store.CardStore.UpdateSchedule.
func (s *CardStore) UpdateSchedule(ctx context.Context, card *domain.Card) error {
	if s.UpdateScheduleErr != nil {
		return s.UpdateScheduleErr
	}

	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}

	// Only scheduling state changes; content columns stay as stored.
	existing.EaseFactor = card.EaseFactor
	existing.IntervalDays = card.IntervalDays
	existing.Repetitions = card.Repetitions
	existing.DueAt = card.DueAt
	if card.LastReviewedAt != nil {
		t := *card.LastReviewedAt
		existing.LastReviewedAt = &t
	}

	s.UpdateScheduleCalls++
	return nil
}

// WithTx implements store.CardStore.WithTx. The in-memory store has no
// transactions; it returns itself.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return s
}
