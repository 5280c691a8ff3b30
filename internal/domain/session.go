package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for StudySession and Review
var (
	ErrEmptySessionUserID  = errors.New("study session user ID cannot be empty")
	ErrEmptySessionTopicID = errors.New("study session topic ID cannot be empty")
	ErrInvalidDuration     = errors.New("study session duration must be positive")
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 5")
)

// StudySession is one completed block of study time, as recorded by the main
// StudyFlow backend in the shared database. The intelligence service only
// reads these records; it never creates or mutates them outside of tests.
type StudySession struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	TopicID         uuid.UUID `json:"topic_id"`
	TopicName       string    `json:"topic_name"`
	DurationMinutes int       `json:"duration"`
	Difficulty      float64   `json:"difficulty"`
	Notes           string    `json:"notes,omitempty"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Validate checks if the StudySession has valid data.
func (s *StudySession) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if s.TopicID == uuid.Nil {
		return ErrEmptySessionTopicID
	}

	if s.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}

	if s.Difficulty < 1 || s.Difficulty > 5 {
		return ErrInvalidDifficulty
	}

	return nil
}

// Review is one spaced-repetition review of a topic, with its scheduling
// state at the time the review was graded. CompletedAt is nil while the
// review is still pending.
type Review struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	TopicID      uuid.UUID  `json:"topic_id"`
	TopicName    string     `json:"topic_name"`
	Quality      *int       `json:"quality,omitempty"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	Repetitions  int        `json:"repetitions"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the review has been graded.
func (r *Review) Completed() bool {
	return r.CompletedAt != nil && r.Quality != nil
}
