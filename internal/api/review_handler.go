// Package api provides the HTTP handlers for the review engine.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lexcram/recall-api/internal/api/shared"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/platform/logger"
	"github.com/lexcram/recall-api/internal/platform/metrics"
	"github.com/lexcram/recall-api/internal/service/review"
)

// ReviewHandler handles the review engine's HTTP requests: card
// ingestion and listing, the due queue, stats, and session lifecycle.
type ReviewHandler struct {
	service  *review.Service
	sessions *review.SessionManager
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(
	service *review.Service,
	sessions *review.SessionManager,
	recorder metrics.Recorder,
	log *slog.Logger,
) *ReviewHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReviewHandler{
		service:  service,
		sessions: sessions,
		recorder: recorder,
		logger:   log.With(slog.String("component", "review_handler")),
	}
}

// IngestCards handles POST /review/cards. The whole batch is stored
// atomically or not at all.
func (h *ReviewHandler) IngestCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req IngestCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	inputs := make([]review.CardInput, 0, len(req.Cards))
	for _, payload := range req.Cards {
		inputs = append(inputs, review.CardInput{
			Subject:  payload.Subject,
			Topic:    payload.Topic,
			CardType: payload.CardType,
			Front:    payload.Front,
			Back:     payload.Back,
		})
	}

	cards, err := h.service.IngestCards(r.Context(), userID, inputs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.recorder.RecordCardsIngested(len(cards))
	log.Debug("ingested cards",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}

// ListCards handles GET /review/cards with optional subject and topic
// query filters.
func (h *ReviewHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	cards, err := h.service.ListCards(r.Context(), userID,
		r.URL.Query().Get("subject"), r.URL.Query().Get("topic"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetDueCards handles GET /review/due. An empty queue is a normal state
// and returns an empty array, not an error.
func (h *ReviewHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
		return
	}

	cards, err := h.service.BuildQueue(r.Context(), userID, r.URL.Query().Get("subject"), limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetStats handles GET /review/stats with an optional subject filter.
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	counts, err := h.service.Stats(r.Context(), userID, r.URL.Query().Get("subject"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, countsToResponse(counts))
}

// StartSession handles POST /review/sessions. When nothing is due the
// response is 204 No Content rather than an empty session.
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := shared.ValidateRequest(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}

	result, err := h.sessions.StartSession(r.Context(), userID, req.Subject, req.Limit)
	if errors.Is(err, review.ErrNoCardsDue) {
		log.Debug("no cards due for review", slog.String("user_id", userID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to start review session", err)
		return
	}

	h.recorder.RecordSessionStarted(result.QueueSize)
	log.Debug("started review session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", result.SessionID.String()),
		slog.Int("queue_size", result.QueueSize))

	shared.RespondWithJSON(w, r, http.StatusCreated, StartSessionResponse{
		SessionID: result.SessionID.String(),
		QueueSize: result.QueueSize,
		Card:      cardToPrompt(result.FirstCard),
	})
}

// RevealAnswer handles POST /review/sessions/{sessionID}/reveal.
func (h *ReviewHandler) RevealAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	back, err := h.sessions.Reveal(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RevealResponse{Back: back})
}

// GradeCard handles POST /review/sessions/{sessionID}/grade.
func (h *ReviewHandler) GradeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	var req GradeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.sessions.Grade(r.Context(), userID, sessionID, domain.Quality(*req.Quality))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.recorder.RecordGrade(*req.Quality)
	if result.Summary != nil {
		h.recorder.RecordSessionCompleted(result.Summary.ReviewedCount)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GradeResponse{
		NextCard:  cardToPrompt(result.NextCard),
		Remaining: result.Remaining,
		Summary:   summaryToResponse(result.Summary),
	})
}

// GetSessionSummary handles GET /review/sessions/{sessionID}. Before
// completion it reflects only the cards graded so far.
func (h *ReviewHandler) GetSessionSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	sessionID, ok := parseSessionID(w, r)
	if !ok {
		return
	}

	summary, err := h.sessions.GetSummary(r.Context(), userID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(&summary))
}

// requireUserID extracts the authenticated learner from the request
// context, responding with 401 when absent.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

func parseSessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return sessionID, true
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}
