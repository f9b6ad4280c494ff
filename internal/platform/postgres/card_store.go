package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexcram/recall-api/internal/domain"
	"github.com/lexcram/recall-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the
// CardStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

const cardColumns = `id, user_id, subject, topic, card_type, front, back,
	ease_factor, interval_days, repetitions, due_at, last_reviewed_at, created_at`

// CreateMultiple implements store.CardStore.CreateMultiple. The batch is
// inserted atomically: when the store holds a root connection it opens its
// own transaction; when it was derived via WithTx it joins the caller's.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).(*PostgresCardStore).insertAll(ctx, cards)
		})
	}
	return s.insertAll(ctx, cards)
}

func (s *PostgresCardStore) insertAll(ctx context.Context, cards []*domain.Card) error {
	for _, card := range cards {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO cards (`+cardColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			card.ID, card.UserID, card.Subject, nullString(card.Topic), card.CardType,
			card.Front, card.Back,
			card.EaseFactor, card.IntervalDays, card.Repetitions,
			card.DueAt, card.LastReviewedAt, card.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: card %s", store.ErrDuplicate, card.ID)
			}
			return store.NewStoreError("card", "create", "failed to insert card", err)
		}
	}

	s.logger.DebugContext(ctx, "created cards", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)

	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCardNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("card", "get", "failed to query card", err)
	}

	return card, nil
}

// GetDue implements store.CardStore.GetDue. Ordering is pushed into SQL so
// the (user_id, subject, due_at) index serves the query; the id tiebreak
// keeps results deterministic when due times collide.
func (s *PostgresCardStore) GetDue(ctx context.Context, filter store.DueFilter) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1 AND due_at <= $2`
	args := []any{filter.UserID, filter.Now}

	if filter.Subject != "" {
		args = append(args, filter.Subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}

	query += " ORDER BY due_at ASC, id ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return s.queryCards(ctx, "get_due", query, args...)
}

// List implements store.CardStore.List.
func (s *PostgresCardStore) List(ctx context.Context, filter store.ListFilter) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1`
	args := []any{filter.UserID}

	if filter.Subject != "" {
		args = append(args, filter.Subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		query += fmt.Sprintf(" AND topic = $%d", len(args))
	}

	query += " ORDER BY created_at DESC, id ASC"

	return s.queryCards(ctx, "list", query, args...)
}

// GetStatsRows implements store.CardStore.GetStatsRows. The front/back
// payloads are not needed for counting, so empty placeholders are selected
// instead of the text columns.
func (s *PostgresCardStore) GetStatsRows(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) ([]*domain.Card, error) {
	query := `SELECT id, user_id, subject, topic, card_type, '' AS front, '' AS back,
		ease_factor, interval_days, repetitions, due_at, last_reviewed_at, created_at
		FROM cards WHERE user_id = $1`
	args := []any{userID}

	if subject != "" {
		args = append(args, subject)
		query += fmt.Sprintf(" AND subject = $%d", len(args))
	}

	return s.queryCards(ctx, "get_stats_rows", query, args...)
}

// UpdateSchedule implements store.CardStore.UpdateSchedule.
// A single-row UPDATE is atomic in PostgreSQL, which is exactly the
// granularity the engine requires; concurrent sessions grading the same
// card resolve last-write-wins.
func (s *PostgresCardStore) UpdateSchedule(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards
		 SET ease_factor = $2, interval_days = $3, repetitions = $4,
		     due_at = $5, last_reviewed_at = $6
		 WHERE id = $1`,
		card.ID, card.EaseFactor, card.IntervalDays, card.Repetitions,
		card.DueAt, card.LastReviewedAt,
	)
	if err != nil {
		return store.NewStoreError("card", "update_schedule", "failed to update card schedule", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("card", "update_schedule", "failed to read rows affected", err)
	}
	if affected == 0 {
		return store.ErrCardNotFound
	}

	s.logger.DebugContext(ctx, "updated card schedule",
		slog.String("card_id", card.ID.String()),
		slog.Int("interval_days", card.IntervalDays),
		slog.Float64("ease_factor", card.EaseFactor))
	return nil
}

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresCardStore) queryCards(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("card", operation, "query failed", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.WarnContext(ctx, "failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", operation, "scan failed", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", operation, "row iteration failed", err)
	}

	return cards, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	card := &domain.Card{}
	var topic sql.NullString
	var lastReviewedAt sql.NullTime

	err := row.Scan(
		&card.ID, &card.UserID, &card.Subject, &topic, &card.CardType,
		&card.Front, &card.Back,
		&card.EaseFactor, &card.IntervalDays, &card.Repetitions,
		&card.DueAt, &lastReviewedAt, &card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if topic.Valid {
		card.Topic = topic.String
	}
	if lastReviewedAt.Valid {
		t := lastReviewedAt.Time
		card.LastReviewedAt = &t
	}

	return card, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
