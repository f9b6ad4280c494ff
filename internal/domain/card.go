package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors. Each wraps ErrValidation so callers
// can classify them without enumerating every sentinel.
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardUserIDEmpty is returned when a card's user ID is empty or nil.
	ErrCardUserIDEmpty = fmt.Errorf("%w: card user ID cannot be empty", ErrValidation)

	// ErrCardSubjectEmpty is returned when a card's subject is empty.
	ErrCardSubjectEmpty = fmt.Errorf("%w: card subject %w", ErrValidation, ErrEmptyContent)

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = fmt.Errorf("%w: card front %w", ErrValidation, ErrEmptyContent)

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = fmt.Errorf("%w: card back %w", ErrValidation, ErrEmptyContent)

	// ErrCardEaseFactorTooLow is returned when a card's ease factor is
	// below the algorithm floor.
	ErrCardEaseFactorTooLow = fmt.Errorf("%w: card ease factor cannot be below 1.3", ErrValidation)

	// ErrCardIntervalNegative is returned when a card's interval is negative.
	ErrCardIntervalNegative = fmt.Errorf("%w: card interval cannot be negative", ErrValidation)

	// ErrCardRepetitionsNegative is returned when a card's repetition count
	// is negative.
	ErrCardRepetitionsNegative = fmt.Errorf("%w: card repetitions cannot be negative", ErrValidation)
)

// Scheduling constants shared across the engine.
const (
	// DefaultEaseFactor is the ease factor assigned to a freshly created card.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor the ease factor is clamped to on every update.
	MinEaseFactor = 1.3

	// MatureIntervalDays is the interval at which a reviewed card counts as
	// mature rather than learning, used for reporting only.
	MatureIntervalDays = 21
)

// Well-known card type tags. The tag describes content shape and is opaque
// to scheduling; generators may emit values outside this list.
const (
	CardTypeConcept     = "concept"
	CardTypeRule        = "rule"
	CardTypeCaseHolding = "case_holding"
	CardTypeElementList = "element_list"
)

// Card is a single fact to be memorized, together with its spaced-repetition
// scheduling state. Front and back are opaque text payloads produced by the
// external content-generation collaborator; the engine never interprets them.
type Card struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Subject        string     `json:"subject"`
	Topic          string     `json:"topic,omitempty"`
	CardType       string     `json:"card_type"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewCard creates a Card with default scheduling state: ease factor 2.5,
// interval 0, no repetitions, due immediately. Returns an error if
// validation fails.
func NewCard(userID uuid.UUID, subject, topic, cardType, front, back string) (*Card, error) {
	now := time.Now().UTC()

	if cardType == "" {
		cardType = CardTypeConcept
	}

	card := &Card{
		ID:           uuid.New(),
		UserID:       userID,
		Subject:      subject,
		Topic:        topic,
		CardType:     cardType,
		Front:        front,
		Back:         back,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 0,
		Repetitions:  0,
		DueAt:        now,
		CreatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCardUserIDEmpty
	}

	if c.Subject == "" {
		return ErrCardSubjectEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrCardEaseFactorTooLow
	}

	if c.IntervalDays < 0 {
		return ErrCardIntervalNegative
	}

	if c.Repetitions < 0 {
		return ErrCardRepetitionsNegative
	}

	return nil
}

// IsDue reports whether the card is eligible for review at the given time.
func (c *Card) IsDue(now time.Time) bool {
	return !c.DueAt.After(now)
}

// Clone returns an independent copy of the card. Session queues hold clones
// so that an in-flight session never observes store-side mutation.
func (c *Card) Clone() *Card {
	clone := *c
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		clone.LastReviewedAt = &t
	}
	return &clone
}
