package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/store"
)

// optimalTimesHistoryLimit bounds how many recent completed reviews feed the
// optimal review time analysis.
const optimalTimesHistoryLimit = 200

// SchedulerError is a custom error type for scheduler service errors.
type SchedulerError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SchedulerError.
func (e *SchedulerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scheduler %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("scheduler %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SchedulerError) Unwrap() error {
	return e.Err
}

// NewSchedulerError creates a new SchedulerError.
func NewSchedulerError(operation, message string, err error) *SchedulerError {
	return &SchedulerError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ScheduleOutcome is the full result of one grading event: the updated
// scheduling state plus the performance context that personalized it.
type ScheduleOutcome struct {
	Result *domain.ScheduleResult `json:"next_review"`

	// Context holds the behavioral signals that were applied. Empty when the
	// user has no usable history.
	Context domain.PerformanceContext `json:"performance_data"`

	// PersonalizationApplied reports whether any signal in Context was set.
	PersonalizationApplied bool `json:"personalization_applied"`
}

// RetentionForecast is a day-by-day retention curve for one topic, anchored
// at the topic's most recent scheduling state.
type RetentionForecast struct {
	TopicID             uuid.UUID               `json:"topic_id"`
	TopicName           string                  `json:"topic_name"`
	CurrentIntervalDays int                     `json:"current_interval"`
	Repetitions         int                     `json:"repetitions"`
	Points              []domain.RetentionPoint `json:"retention_forecast"`
}

// SchedulerService orchestrates grading events end to end: it aggregates the
// performance context from stored history, invokes the scheduling core, and
// serves the analysis endpoints built on review history.
type SchedulerService interface {
	// CalculateNextReview applies one grading event for the user, personalized
	// by whatever historical signals the stores can produce. topicID is
	// optional; without it the subject difficulty signal is skipped.
	CalculateNextReview(
		ctx context.Context,
		userID uuid.UUID,
		topicID *uuid.UUID,
		quality int,
		repetitions int,
		easeFactor float64,
		intervalDays int,
	) (*ScheduleOutcome, error)

	// OptimalReviewTimes analyzes the user's recent completed reviews for the
	// hour of day and day of week with the best mean quality. Returns
	// ErrNoReviewData when the user has no completed reviews.
	OptimalReviewTimes(ctx context.Context, userID uuid.UUID) (*domain.OptimalTimes, error)

	// RetentionForecast predicts retention probability for a topic over the
	// next daysAhead days, starting from its latest scheduling state. Returns
	// store.ErrReviewNotFound when the topic has never been reviewed.
	RetentionForecast(
		ctx context.Context,
		userID uuid.UUID,
		topicID uuid.UUID,
		daysAhead int,
	) (*RetentionForecast, error)
}

// schedulerServiceImpl implements the SchedulerService interface.
type schedulerServiceImpl struct {
	sessions store.SessionStore
	reviews  store.ReviewStore
	srs      srs.Service
	logger   *slog.Logger
	now      func() time.Time
}

// NewSchedulerService creates a new SchedulerService.
// It returns an error if any of the required dependencies are nil.
func NewSchedulerService(
	sessions store.SessionStore,
	reviews store.ReviewStore,
	srsService srs.Service,
	logger *slog.Logger,
) (SchedulerService, error) {
	if sessions == nil {
		return nil, fmt.Errorf("scheduler service: session store cannot be nil")
	}
	if reviews == nil {
		return nil, fmt.Errorf("scheduler service: review store cannot be nil")
	}
	if srsService == nil {
		return nil, fmt.Errorf("scheduler service: srs service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &schedulerServiceImpl{
		sessions: sessions,
		reviews:  reviews,
		srs:      srsService,
		logger:   logger.With(slog.String("component", "scheduler_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// CalculateNextReview implements SchedulerService.CalculateNextReview.
func (s *schedulerServiceImpl) CalculateNextReview(
	ctx context.Context,
	userID uuid.UUID,
	topicID *uuid.UUID,
	quality int,
	repetitions int,
	easeFactor float64,
	intervalDays int,
) (*ScheduleOutcome, error) {
	now := s.now()

	perf, err := s.aggregateContext(ctx, userID, topicID, now)
	if err != nil {
		return nil, NewSchedulerError("calculate_next_review", "failed to aggregate performance context", err)
	}

	result, err := s.srs.ComputeNextState(quality, repetitions, easeFactor, intervalDays, perf, now)
	if err != nil {
		// Validation errors pass through untouched so the API layer can map
		// them to 400.
		if errors.Is(err, srs.ErrInvalidInput) {
			return nil, err
		}
		return nil, NewSchedulerError("calculate_next_review", "scheduling computation failed", err)
	}

	s.logger.DebugContext(ctx, "calculated next review",
		slog.String("user_id", userID.String()),
		slog.Int("quality", quality),
		slog.Int("next_interval_days", result.IntervalDays),
		slog.Bool("personalized", !perf.IsEmpty()))

	outcome := &ScheduleOutcome{
		Result:                 result,
		PersonalizationApplied: !perf.IsEmpty(),
	}
	if perf != nil {
		outcome.Context = *perf
	}
	return outcome, nil
}

// aggregateContext collects the optional personalization signals from the
// stores. A missing signal is left nil; only store failures are errors.
func (s *schedulerServiceImpl) aggregateContext(
	ctx context.Context,
	userID uuid.UUID,
	topicID *uuid.UUID,
	now time.Time,
) (*domain.PerformanceContext, error) {
	perf := &domain.PerformanceContext{}

	if topicID != nil {
		avg, err := s.sessions.TopicDifficultyAvg(ctx, userID, *topicID)
		if err != nil {
			return nil, fmt.Errorf("topic difficulty average: %w", err)
		}
		perf.SubjectDifficultyAvg = avg
	}

	bestHour, err := s.sessions.BestPerformanceHour(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("best performance hour: %w", err)
	}
	perf.BestPerformanceHour = bestHour

	count, err := s.sessions.CountCompletedOn(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("session count today: %w", err)
	}
	if count > 0 {
		perf.SessionCountToday = &count
	}

	improvement, err := s.reviews.QualityImprovement(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("quality improvement: %w", err)
	}
	perf.AvgQualityImprovement = improvement

	return perf, nil
}

// OptimalReviewTimes implements SchedulerService.OptimalReviewTimes.
func (s *schedulerServiceImpl) OptimalReviewTimes(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.OptimalTimes, error) {
	history, err := s.reviews.ListQualityObservations(ctx, userID, optimalTimesHistoryLimit)
	if err != nil {
		return nil, NewSchedulerError("optimal_review_times", "failed to list review history", err)
	}
	if len(history) == 0 {
		return nil, ErrNoReviewData
	}

	times := s.srs.FindOptimalTimes(history)
	return &times, nil
}

// RetentionForecast implements SchedulerService.RetentionForecast.
func (s *schedulerServiceImpl) RetentionForecast(
	ctx context.Context,
	userID uuid.UUID,
	topicID uuid.UUID,
	daysAhead int,
) (*RetentionForecast, error) {
	state, topicName, err := s.reviews.LatestStateForTopic(ctx, userID, topicID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewSchedulerError("retention_forecast", "failed to load latest review state", err)
	}

	points, err := s.srs.ForecastRetention(state.EaseFactor, state.IntervalDays, state.Repetitions, daysAhead)
	if err != nil {
		return nil, err
	}

	return &RetentionForecast{
		TopicID:             topicID,
		TopicName:           topicName,
		CurrentIntervalDays: state.IntervalDays,
		Repetitions:         state.Repetitions,
		Points:              points,
	}, nil
}
