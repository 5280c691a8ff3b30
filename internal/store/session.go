package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
)

// SessionStore defines the interface for reading study session history.
// Sessions are written by the main StudyFlow backend; this service only
// aggregates them, so the interface is read-oriented apart from Create,
// which exists for seeding test data.
type SessionStore interface {
	// Create saves a new study session. It handles domain validation
	// internally and returns validation errors if the data is invalid.
	Create(ctx context.Context, session *domain.StudySession) error

	// ListByUserSince retrieves all sessions completed by the user after
	// the given time, oldest first. Returns an empty slice when the user
	// has no sessions; never an error for an empty history.
	ListByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.StudySession, error)

	// TopicDifficultyAvg returns the mean self-reported difficulty across
	// the user's sessions for one topic. Returns nil when the topic has no
	// sessions, so the caller can treat the signal as absent.
	TopicDifficultyAvg(ctx context.Context, userID, topicID uuid.UUID) (*float64, error)

	// BestPerformanceHour returns the hour of day with the user's highest
	// session success rate (sessions with difficulty <= 3 counted as
	// successes). Returns nil when the user has no sessions.
	BestPerformanceHour(ctx context.Context, userID uuid.UUID) (*int, error)

	// CountCompletedOn returns the number of sessions the user completed
	// on the calendar day containing the given time.
	CountCompletedOn(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)
}
