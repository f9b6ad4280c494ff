package api

import (
	"time"

	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/service/review"
)

// CardPayload is one card in an ingestion request.
type CardPayload struct {
	Subject  string `json:"subject"             validate:"required,max=100"`
	Topic    string `json:"topic,omitempty"     validate:"max=100"`
	CardType string `json:"card_type,omitempty" validate:"omitempty,oneof=concept rule case_holding element_list"`
	Front    string `json:"front"               validate:"required"`
	Back     string `json:"back"                validate:"required"`
}

// IngestCardsRequest is the request body for POST /review/cards.
type IngestCardsRequest struct {
	Cards []CardPayload `json:"cards" validate:"required,min=1,max=100,dive"`
}

// CardResponse is the full card representation, including scheduling
// state. Returned from ingestion, listing, and the due listing.
type CardResponse struct {
	ID             string     `json:"id"`
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

// CardPromptResponse is the presentation view of a card within a session.
// The back stays hidden until the reveal step.
type CardPromptResponse struct {
	ID       string `json:"id"`
	Subject  string `json:"subject"`
	Topic    string `json:"topic,omitempty"`
	CardType string `json:"card_type"`
	Front    string `json:"front"`
}

// StartSessionRequest is the request body for POST /review/sessions.
type StartSessionRequest struct {
	Subject string `json:"subject,omitempty" validate:"max=100"`
	Limit   int    `json:"limit,omitempty"   validate:"omitempty,min=1,max=100"`
}

// StartSessionResponse is the response for a started session.
type StartSessionResponse struct {
	SessionID string              `json:"session_id"`
	QueueSize int                 `json:"queue_size"`
	Card      *CardPromptResponse `json:"card"`
}

// RevealResponse carries the revealed answer text.
type RevealResponse struct {
	Back string `json:"back"`
}

// GradeRequest is the request body for grading the current card. Quality
// is a pointer so an explicit 0 survives required validation.
type GradeRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

// SessionSummaryResponse aggregates a session's tally.
type SessionSummaryResponse struct {
	ReviewedCount  int     `json:"reviewed_count"`
	CorrectCount   int     `json:"correct_count"`
	Accuracy       float64 `json:"accuracy"`
	AverageQuality float64 `json:"average_quality"`
}

// GradeResponse is the outcome of a grade: the next card to present, or
// the final summary when the session completed.
type GradeResponse struct {
	NextCard  *CardPromptResponse     `json:"next_card,omitempty"`
	Remaining int                     `json:"remaining"`
	Summary   *SessionSummaryResponse `json:"summary,omitempty"`
}

// StatsResponse reports the learner's card population counts.
type StatsResponse struct {
	Total    int `json:"total"`
	Due      int `json:"due"`
	New      int `json:"new"`
	Learning int `json:"learning"`
	Mature   int `json:"mature"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:             card.ID.String(),
		Subject:        card.Subject,
		Topic:          card.Topic,
		CardType:       card.CardType,
		Front:          card.Front,
		Back:           card.Back,
		EaseFactor:     card.EaseFactor,
		IntervalDays:   card.IntervalDays,
		Repetitions:    card.Repetitions,
		DueAt:          card.DueAt,
		LastReviewedAt: card.LastReviewedAt,
		CreatedAt:      card.CreatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card))
	}
	return responses
}

func cardToPrompt(card *domain.Card) *CardPromptResponse {
	if card == nil {
		return nil
	}
	return &CardPromptResponse{
		ID:       card.ID.String(),
		Subject:  card.Subject,
		Topic:    card.Topic,
		CardType: card.CardType,
		Front:    card.Front,
	}
}

func summaryToResponse(summary *review.Summary) *SessionSummaryResponse {
	if summary == nil {
		return nil
	}
	return &SessionSummaryResponse{
		ReviewedCount:  summary.ReviewedCount,
		CorrectCount:   summary.CorrectCount,
		Accuracy:       summary.Accuracy,
		AverageQuality: summary.AverageQuality,
	}
}

func countsToResponse(counts review.Counts) StatsResponse {
	return StatsResponse{
		Total:    counts.Total,
		Due:      counts.Due,
		New:      counts.New,
		Learning: counts.Learning,
		Mature:   counts.Mature,
	}
}
