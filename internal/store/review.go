package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
)

// ReviewStore defines the interface for reading spaced-repetition review
// history from the shared StudyFlow schema.
type ReviewStore interface {
	// Create saves a new review record. It handles domain validation
	// internally and returns validation errors if the data is invalid.
	Create(ctx context.Context, review *domain.Review) error

	// QualityImprovement returns the difference between the mean quality of
	// the user's 5 most recent completed reviews and the 5 before those.
	// Returns nil when fewer than two batches exist, so the caller can
	// treat the signal as absent.
	QualityImprovement(ctx context.Context, userID uuid.UUID) (*float64, error)

	// ListQualityObservations retrieves up to limit of the user's most
	// recent completed reviews as timestamped quality grades, newest first.
	ListQualityObservations(ctx context.Context, userID uuid.UUID, limit int) ([]domain.QualityObservation, error)

	// LatestStateForTopic retrieves the scheduling state of the most
	// recently scheduled review for a topic, along with the topic name.
	// Returns ErrReviewNotFound when the topic has never been reviewed.
	LatestStateForTopic(ctx context.Context, userID, topicID uuid.UUID) (domain.SchedulingState, string, error)

	// ListByUser retrieves all of the user's reviews, pending and
	// completed, newest first, for compliance and priority analysis.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Review, error)
}
