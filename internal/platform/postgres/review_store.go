package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface using a
// PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, topic_id, quality, ease_factor, interval_days,
		                     repetitions, scheduled_for, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		review.ID,
		review.UserID,
		review.TopicID,
		review.Quality,
		review.EaseFactor,
		review.IntervalDays,
		review.Repetitions,
		review.ScheduledFor,
		review.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", mapError(err))
	}

	return nil
}

// QualityImprovement implements store.ReviewStore.QualityImprovement
func (s *PostgresReviewStore) QualityImprovement(
	ctx context.Context,
	userID uuid.UUID,
) (*float64, error) {
	// Mean quality of the 5 newest completed reviews minus the mean of the
	// 5 before them. Either AVG is NULL when its batch is empty, which
	// makes the whole expression NULL and the signal absent.
	query := `
		WITH ordered_reviews AS (
			SELECT quality,
			       ROW_NUMBER() OVER (ORDER BY completed_at DESC) AS rn
			FROM reviews
			WHERE user_id = $1 AND quality IS NOT NULL AND completed_at IS NOT NULL
		)
		SELECT AVG(CASE WHEN rn <= 5 THEN quality END) -
		       AVG(CASE WHEN rn > 5 AND rn <= 10 THEN quality END)
		FROM ordered_reviews
		WHERE rn <= 10`

	var improvement sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&improvement); err != nil {
		return nil, fmt.Errorf("failed to compute quality improvement: %w", mapError(err))
	}

	if !improvement.Valid {
		return nil, nil
	}
	return &improvement.Float64, nil
}

// ListQualityObservations implements store.ReviewStore.ListQualityObservations
func (s *PostgresReviewStore) ListQualityObservations(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]domain.QualityObservation, error) {
	query := `
		SELECT completed_at, quality
		FROM reviews
		WHERE user_id = $1 AND completed_at IS NOT NULL AND quality IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list quality observations: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	observations := []domain.QualityObservation{}
	for rows.Next() {
		var obs domain.QualityObservation
		if err := rows.Scan(&obs.CompletedAt, &obs.Quality); err != nil {
			return nil, fmt.Errorf("failed to scan quality observation: %w", err)
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quality observations: %w", err)
	}

	return observations, nil
}

// LatestStateForTopic implements store.ReviewStore.LatestStateForTopic
func (s *PostgresReviewStore) LatestStateForTopic(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (domain.SchedulingState, string, error) {
	query := `
		SELECT r.ease_factor, r.interval_days, r.repetitions, t.name
		FROM reviews r
		JOIN topics t ON r.topic_id = t.id
		WHERE r.user_id = $1 AND r.topic_id = $2
		ORDER BY r.scheduled_for DESC
		LIMIT 1`

	var state domain.SchedulingState
	var topicName string
	err := s.db.QueryRowContext(ctx, query, userID, topicID).Scan(
		&state.EaseFactor,
		&state.IntervalDays,
		&state.Repetitions,
		&topicName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SchedulingState{}, "", store.ErrReviewNotFound
	}
	if err != nil {
		return domain.SchedulingState{}, "", fmt.Errorf(
			"failed to get latest review state: %w", mapError(err))
	}

	return state, topicName, nil
}

// ListByUser implements store.ReviewStore.ListByUser
func (s *PostgresReviewStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]domain.Review, error) {
	query := `
		SELECT r.id, r.user_id, r.topic_id, t.name, r.quality, r.ease_factor,
		       r.interval_days, r.repetitions, r.scheduled_for, r.completed_at
		FROM reviews r
		JOIN topics t ON r.topic_id = t.id
		WHERE r.user_id = $1
		ORDER BY r.scheduled_for DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	reviews := []domain.Review{}
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.TopicID,
			&review.TopicName,
			&review.Quality,
			&review.EaseFactor,
			&review.IntervalDays,
			&review.Repetitions,
			&review.ScheduledFor,
			&review.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}
