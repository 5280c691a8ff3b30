package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO study_sessions (id, user_id, topic_id, duration_minutes, difficulty, notes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.TopicID,
		session.DurationMinutes,
		session.Difficulty,
		session.Notes,
		session.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create study session: %w", mapError(err))
	}

	return nil
}

// ListByUserSince implements store.SessionStore.ListByUserSince
func (s *PostgresSessionStore) ListByUserSince(
	ctx context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.StudySession, error) {
	query := `
		SELECT s.id, s.user_id, s.topic_id, t.name, s.duration_minutes, s.difficulty,
		       COALESCE(s.notes, ''), s.completed_at
		FROM study_sessions s
		JOIN topics t ON s.topic_id = t.id
		WHERE s.user_id = $1 AND s.completed_at > $2
		ORDER BY s.completed_at`

	rows, err := s.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list study sessions: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	sessions := []domain.StudySession{}
	for rows.Next() {
		var session domain.StudySession
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.TopicID,
			&session.TopicName,
			&session.DurationMinutes,
			&session.Difficulty,
			&session.Notes,
			&session.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}

	return sessions, nil
}

// TopicDifficultyAvg implements store.SessionStore.TopicDifficultyAvg
func (s *PostgresSessionStore) TopicDifficultyAvg(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*float64, error) {
	query := `
		SELECT AVG(difficulty)
		FROM study_sessions
		WHERE user_id = $1 AND topic_id = $2`

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, userID, topicID).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to compute topic difficulty: %w", mapError(err))
	}

	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// BestPerformanceHour implements store.SessionStore.BestPerformanceHour
func (s *PostgresSessionStore) BestPerformanceHour(
	ctx context.Context,
	userID uuid.UUID,
) (*int, error) {
	// Sessions at or below difficulty 3 count as successes; ties between
	// hours break toward the earlier hour for determinism.
	query := `
		SELECT EXTRACT(HOUR FROM completed_at)::int AS hour,
		       AVG(CASE WHEN difficulty <= 3 THEN 1 ELSE 0 END) AS success_rate
		FROM study_sessions
		WHERE user_id = $1
		GROUP BY 1
		ORDER BY success_rate DESC, hour
		LIMIT 1`

	var hour int
	var successRate float64
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&hour, &successRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find best performance hour: %w", mapError(err))
	}

	return &hour, nil
}

// CountCompletedOn implements store.SessionStore.CountCompletedOn
func (s *PostgresSessionStore) CountCompletedOn(
	ctx context.Context,
	userID uuid.UUID,
	day time.Time,
) (int, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT COUNT(*)
		FROM study_sessions
		WHERE user_id = $1 AND completed_at >= $2 AND completed_at < $3`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, dayStart, dayEnd).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count today's sessions: %w", mapError(err))
	}

	return count, nil
}
