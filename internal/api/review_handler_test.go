package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcram/recall-api/internal/api/shared"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/domain/srs"
	"github.com/lexcram/recall-api/internal/mocks"
	"github.com/lexcram/recall-api/internal/service/review"
)

// testEnv wires a handler onto a router with a stubbed authenticated
// learner, backed by the in-memory card store.
type testEnv struct {
	router    chi.Router
	cardStore *mocks.CardStore
	userID    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cardStore := mocks.NewCardStore()
	svc := review.NewService(cardStore, srs.NewDefaultService(), nil)
	sessions := review.NewSessionManager(svc, nil, time.Hour)
	handler := NewReviewHandler(svc, sessions, nil, nil)

	env := &testEnv{
		cardStore: cardStore,
		userID:    uuid.New(),
	}

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, env.userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Route("/review", func(r chi.Router) {
		r.Post("/cards", handler.IngestCards)
		r.Get("/cards", handler.ListCards)
		r.Get("/due", handler.GetDueCards)
		r.Get("/stats", handler.GetStats)
		r.Post("/sessions", handler.StartSession)
		r.Get("/sessions/{sessionID}", handler.GetSessionSummary)
		r.Post("/sessions/{sessionID}/reveal", handler.RevealAnswer)
		r.Post("/sessions/{sessionID}/grade", handler.GradeCard)
	})
	env.router = router
	return env
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedDueCard(subject string) *domain.Card {
	card := &domain.Card{
		ID:         uuid.New(),
		UserID:     env.userID,
		Subject:    subject,
		CardType:   domain.CardTypeConcept,
		Front:      "What is consideration?",
		Back:       "A bargained-for exchange.",
		EaseFactor: domain.DefaultEaseFactor,
		DueAt:      time.Now().UTC().Add(-time.Hour),
		CreatedAt:  time.Now().UTC().Add(-24 * time.Hour),
	}
	env.cardStore.Seed(card)
	return card
}

func TestIngestCardsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/review/cards", IngestCardsRequest{
		Cards: []CardPayload{
			{Subject: "contracts", Topic: "formation", CardType: "rule", Front: "Offer?", Back: "Manifestation of willingness."},
			{Subject: "contracts", Front: "Acceptance?", Back: "Assent to the offer's terms."},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created []CardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Len(t, created, 2)
	assert.Equal(t, "rule", created[0].CardType)
	assert.Equal(t, "concept", created[1].CardType)
	assert.Equal(t, 0, created[0].Repetitions)
}

func TestIngestCardsEndpointValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Missing front
	rec := env.do(t, http.MethodPost, "/review/cards", IngestCardsRequest{
		Cards: []CardPayload{{Subject: "torts", Back: "b"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty batch
	rec = env.do(t, http.MethodPost, "/review/cards", IngestCardsRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed body
	req := httptest.NewRequest(http.MethodPost, "/review/cards", bytes.NewBufferString("{not json"))
	out := httptest.NewRecorder()
	env.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestGetDueCardsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	card := env.seedDueCard("contracts")

	rec := env.do(t, http.MethodGet, "/review/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var due []CardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&due))
	require.Len(t, due, 1)
	assert.Equal(t, card.ID.String(), due[0].ID)

	// An empty queue is 200 with an empty array, not an error.
	rec = env.do(t, http.MethodGet, "/review/due?subject=property", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&due))
	assert.Empty(t, due)

	rec = env.do(t, http.MethodGet, "/review/due?limit=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.seedDueCard("contracts")

	rec := env.do(t, http.MethodGet, "/review/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats StatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Due)
	assert.Equal(t, 1, stats.New)
}

func TestStartSessionEndpointNoCardsDue(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/review/sessions", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStartSessionEndpointHidesBack(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	card := env.seedDueCard("contracts")

	rec := env.do(t, http.MethodPost, "/review/sessions", StartSessionRequest{Subject: "contracts"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var started StartSessionResponse
	body := rec.Body.String()
	require.NoError(t, json.Unmarshal([]byte(body), &started))
	assert.Equal(t, 1, started.QueueSize)
	require.NotNil(t, started.Card)
	assert.Equal(t, card.ID.String(), started.Card.ID)
	assert.Equal(t, card.Front, started.Card.Front)

	// The answer must not appear anywhere in the presentation payload.
	assert.NotContains(t, body, card.Back)
}

func TestSessionFlowEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	card := env.seedDueCard("contracts")

	rec := env.do(t, http.MethodPost, "/review/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var started StartSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&started))

	base := fmt.Sprintf("/review/sessions/%s", started.SessionID)

	// Grading before revealing is a conflict.
	quality := 5
	rec = env.do(t, http.MethodPost, base+"/grade", GradeRequest{Quality: &quality})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, base+"/reveal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var revealed RevealResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&revealed))
	assert.Equal(t, card.Back, revealed.Back)

	// Out-of-range quality never reaches the session.
	bad := 6
	rec = env.do(t, http.MethodPost, base+"/grade", GradeRequest{Quality: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Quality zero is a legal grade and must survive validation.
	zero := 0
	rec = env.do(t, http.MethodPost, base+"/grade", GradeRequest{Quality: &zero})
	require.Equal(t, http.StatusOK, rec.Code)
	var graded GradeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&graded))
	require.NotNil(t, graded.Summary)
	assert.Nil(t, graded.NextCard)
	assert.Equal(t, 1, graded.Summary.ReviewedCount)
	assert.Equal(t, 0, graded.Summary.CorrectCount)

	// The summary endpoint agrees.
	rec = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary SessionSummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 1, summary.ReviewedCount)
}

func TestSessionEndpointsUnknownSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	base := fmt.Sprintf("/review/sessions/%s", uuid.New())
	rec := env.do(t, http.MethodPost, base+"/reveal", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	quality := 3
	rec = env.do(t, http.MethodPost, base+"/grade", GradeRequest{Quality: &quality})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/review/sessions/not-a-uuid/reveal", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
