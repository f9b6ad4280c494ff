package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/platform/logger"
)

// sessionState tracks where a session is in its lifecycle.
type sessionState int

const (
	// statePresenting: the current card's front is shown, answer hidden.
	statePresenting sessionState = iota
	// stateRevealed: the current card's back is visible; grading is legal.
	stateRevealed
	// stateComplete: the queue is exhausted; only the summary remains.
	stateComplete
)

// GradeRecord is one tallied grade within a session.
type GradeRecord struct {
	CardID  uuid.UUID      `json:"card_id"`
	Quality domain.Quality `json:"quality"`
}

// Summary aggregates a finished (or in-flight) session's tally.
type Summary struct {
	ReviewedCount  int     `json:"reviewed_count"`
	CorrectCount   int     `json:"correct_count"`
	Accuracy       float64 `json:"accuracy"`
	AverageQuality float64 `json:"average_quality"`
}

// Session is one sitting of review: a frozen snapshot of the due queue, a
// cursor, a revealed flag, and a running tally. Sessions are ephemeral and
// never persisted; abandoning one loses nothing beyond the summary, since
// every graded card was written back as it was graded.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Subject   string
	StartedAt time.Time

	queue       []*domain.Card
	cursor      int
	state       sessionState
	tally       []GradeRecord
	lastTouched time.Time
}

// newSession freezes the given queue into a session. An empty queue
// produces a session that is already complete.
func newSession(userID uuid.UUID, subject string, queue []*domain.Card, now time.Time) *Session {
	sess := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		Subject:     subject,
		StartedAt:   now,
		queue:       queue,
		cursor:      0,
		state:       statePresenting,
		tally:       make([]GradeRecord, 0, len(queue)),
		lastTouched: now,
	}
	if len(queue) == 0 {
		sess.state = stateComplete
	}
	return sess
}

// CurrentCard returns the card at the cursor, or nil once complete.
func (s *Session) CurrentCard() *domain.Card {
	if s.state == stateComplete {
		return nil
	}
	return s.queue[s.cursor]
}

// QueueLength returns the frozen queue's size.
func (s *Session) QueueLength() int {
	return len(s.queue)
}

// Remaining returns how many cards have not yet been graded.
func (s *Session) Remaining() int {
	return len(s.queue) - s.cursor
}

// IsComplete reports whether the session has graded its whole queue.
func (s *Session) IsComplete() bool {
	return s.state == stateComplete
}

// Summary computes the tally aggregate. Accuracy is zero when nothing was
// reviewed.
func (s *Session) Summary() Summary {
	summary := Summary{ReviewedCount: len(s.tally)}
	if summary.ReviewedCount == 0 {
		return summary
	}

	qualitySum := 0
	for _, record := range s.tally {
		if record.Quality.IsCorrect() {
			summary.CorrectCount++
		}
		qualitySum += int(record.Quality)
	}
	summary.Accuracy = float64(summary.CorrectCount) / float64(summary.ReviewedCount)
	summary.AverageQuality = float64(qualitySum) / float64(summary.ReviewedCount)
	return summary
}

// reveal flips the current card to the revealed state and returns its back
// text. Idempotent: revealing an already-revealed card is a no-op.
func (s *Session) reveal() (string, error) {
	if s.state == stateComplete {
		return "", ErrSessionComplete
	}
	s.state = stateRevealed
	return s.queue[s.cursor].Back, nil
}

// advance records a grade against the current card and moves the cursor,
// transitioning to complete when the queue is exhausted. The caller has
// already persisted the updated card.
func (s *Session) advance(updated *domain.Card, quality domain.Quality) {
	s.queue[s.cursor] = updated
	s.tally = append(s.tally, GradeRecord{CardID: updated.ID, Quality: quality})
	s.cursor++
	if s.cursor < len(s.queue) {
		s.state = statePresenting
	} else {
		s.state = stateComplete
	}
}

// StartResult is the outcome of starting a session.
type StartResult struct {
	SessionID uuid.UUID
	QueueSize int
	FirstCard *domain.Card
}

// GradeResult is the outcome of grading the current card: either the next
// card to present, or the final summary when the session completed.
type GradeResult struct {
	NextCard  *domain.Card
	Remaining int
	Summary   *Summary
}

// SessionManager owns the active review sessions. Each session is driven
// by a single learner, but the HTTP layer is concurrent, so access to the
// registry and to each session goes through one mutex. Expired sessions
// are evicted lazily on access; there is no timer.
type SessionManager struct {
	service *Service
	logger  *slog.Logger
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewSessionManager creates a SessionManager on top of the review service.
// ttl bounds how long an untouched session is retained; abandoned sessions
// are dropped after it elapses with no data loss.
func NewSessionManager(service *Service, log *slog.Logger, ttl time.Duration) *SessionManager {
	if service == nil {
		panic("service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &SessionManager{
		service:  service,
		logger:   log.With(slog.String("component", "session_manager")),
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// StartSession builds a due queue once, freezes it as a new session's
// snapshot, and presents the first card. Cards that become due while the
// session runs are not injected mid-session. Returns ErrNoCardsDue when
// the queue comes back empty.
func (m *SessionManager) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
	limit int,
) (*StartResult, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	queue, err := m.service.BuildQueue(ctx, userID, subject, limit)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, ErrNoCardsDue
	}

	sess := newSession(userID, subject, queue, m.service.now())

	m.mu.Lock()
	m.evictExpiredLocked()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.Debug("started review session",
		slog.String("session_id", sess.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("queue_size", len(queue)))

	return &StartResult{
		SessionID: sess.ID,
		QueueSize: len(queue),
		FirstCard: sess.CurrentCard(),
	}, nil
}

// Reveal returns the back text of the session's current card. Idempotent.
func (m *SessionManager) Reveal(ctx context.Context, userID, sessionID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookupLocked(userID, sessionID)
	if err != nil {
		return "", err
	}

	back, err := sess.reveal()
	if err != nil {
		return "", err
	}
	sess.lastTouched = m.service.now()
	return back, nil
}

// Grade applies the quality grade to the session's current card: it runs
// the scheduler, writes the new state back as a single-card atomic update,
// tallies the grade, and advances the cursor.
//
// Grading is only legal from the revealed state. An out-of-range quality
// leaves everything untouched. If the write-back fails the cursor does not
// advance and no tally entry is made, so the caller may safely retry; the
// scheduler is deterministic given the same pre-state.
func (m *SessionManager) Grade(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	quality domain.Quality,
) (*GradeResult, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookupLocked(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if sess.state == stateComplete {
		return nil, ErrSessionComplete
	}
	if sess.state != stateRevealed {
		return nil, ErrAnswerNotRevealed
	}
	if !quality.IsValid() {
		return nil, domain.ErrInvalidQuality
	}

	now := m.service.now()
	card := sess.CurrentCard()

	updated, err := m.service.srsService.Grade(card, quality, now)
	if err != nil {
		return nil, newServiceError("grade", "scheduler rejected grade", err)
	}

	if err := m.service.cardStore.UpdateSchedule(ctx, updated); err != nil {
		log.Error("failed to write back card schedule",
			slog.String("session_id", sessionID.String()),
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to persist graded card: %w", err)
	}

	sess.advance(updated, quality)
	sess.lastTouched = now

	log.Debug("graded card",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", card.ID.String()),
		slog.Int("quality", int(quality)),
		slog.Int("remaining", sess.Remaining()))

	if sess.IsComplete() {
		summary := sess.Summary()
		return &GradeResult{Summary: &summary}, nil
	}
	return &GradeResult{
		NextCard:  sess.CurrentCard(),
		Remaining: sess.Remaining(),
	}, nil
}

// GetSummary returns the session's current tally aggregate. Valid in any
// state; before completion it reflects only the cards graded so far.
func (m *SessionManager) GetSummary(ctx context.Context, userID, sessionID uuid.UUID) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.lookupLocked(userID, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return sess.Summary(), nil
}

// lookupLocked resolves a session handle, enforcing learner ownership.
// Callers must hold m.mu.
func (m *SessionManager) lookupLocked(userID, sessionID uuid.UUID) (*Session, error) {
	m.evictExpiredLocked()

	sess, ok := m.sessions[sessionID]
	if !ok || sess.UserID != userID {
		// An unknown handle and someone else's handle are indistinguishable
		// to the caller.
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// evictExpiredLocked drops sessions idle past the TTL. Callers must hold
// m.mu. Eviction loses nothing durable: graded cards were written back at
// grade time and ungraded cards will reappear in a future queue.
func (m *SessionManager) evictExpiredLocked() {
	cutoff := m.service.now().Add(-m.ttl)
	for id, sess := range m.sessions {
		if sess.lastTouched.Before(cutoff) {
			delete(m.sessions, id)
			m.logger.Debug("evicted idle review session",
				slog.String("session_id", id.String()),
				slog.Int("graded", len(sess.tally)))
		}
	}
}
