package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/store"
)

func newTestScheduler(
	t *testing.T,
	sessions *fakeSessionStore,
	reviews *fakeReviewStore,
	now time.Time,
) SchedulerService {
	t.Helper()
	svc, err := NewSchedulerService(sessions, reviews, srs.NewDefaultService(), slog.Default())
	require.NoError(t, err)
	svc.(*schedulerServiceImpl).now = func() time.Time { return now }
	return svc
}

func TestNewSchedulerServiceNilDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewSchedulerService(nil, &fakeReviewStore{}, srs.NewDefaultService(), nil)
	assert.Error(t, err)

	_, err = NewSchedulerService(&fakeSessionStore{}, nil, srs.NewDefaultService(), nil)
	assert.Error(t, err)

	_, err = NewSchedulerService(&fakeSessionStore{}, &fakeReviewStore{}, nil, nil)
	assert.Error(t, err)
}

func TestCalculateNextReviewWithoutHistory(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	svc := newTestScheduler(t, &fakeSessionStore{}, &fakeReviewStore{}, now)

	outcome, err := svc.CalculateNextReview(context.Background(), uuid.New(), nil, 4, 2, 2.5, 6)
	require.NoError(t, err)

	assert.False(t, outcome.PersonalizationApplied)
	assert.Equal(t, 15, outcome.Result.IntervalDays)
	assert.Equal(t, 3, outcome.Result.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 15), outcome.Result.NextReviewAt)
}

func TestCalculateNextReviewAppliesContext(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	difficulty := 4.2
	bestHour := 14
	improvement := 0.8
	sessions := &fakeSessionStore{
		difficultyAvg: &difficulty,
		bestHour:      &bestHour,
		countToday:    2,
	}
	reviews := &fakeReviewStore{improvement: &improvement}
	svc := newTestScheduler(t, sessions, reviews, now)

	topicID := uuid.New()
	outcome, err := svc.CalculateNextReview(context.Background(), uuid.New(), &topicID, 4, 2, 2.5, 6)
	require.NoError(t, err)

	assert.True(t, outcome.PersonalizationApplied)
	require.NotNil(t, outcome.Context.SubjectDifficultyAvg)
	assert.Equal(t, 4.2, *outcome.Context.SubjectDifficultyAvg)
	require.NotNil(t, outcome.Context.BestPerformanceHour)
	assert.Equal(t, 14, *outcome.Context.BestPerformanceHour)
	require.NotNil(t, outcome.Context.SessionCountToday)
	assert.Equal(t, 2, *outcome.Context.SessionCountToday)
	require.NotNil(t, outcome.Context.AvgQualityImprovement)

	// Hard subject (-0.1) cancels against fast learner (+0.15) and the zero
	// time-of-day penalty at the best hour, so the ease lands above baseline.
	assert.InDelta(t, 2.55, outcome.Result.EaseFactor, 1e-9)
}

func TestCalculateNextReviewSkipsTopicSignalsWithoutTopic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	difficulty := 4.2
	sessions := &fakeSessionStore{difficultyAvg: &difficulty}
	svc := newTestScheduler(t, sessions, &fakeReviewStore{}, now)

	outcome, err := svc.CalculateNextReview(context.Background(), uuid.New(), nil, 4, 2, 2.5, 6)
	require.NoError(t, err)
	assert.Nil(t, outcome.Context.SubjectDifficultyAvg)
}

func TestCalculateNextReviewInvalidInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	svc := newTestScheduler(t, &fakeSessionStore{}, &fakeReviewStore{}, now)

	_, err := svc.CalculateNextReview(context.Background(), uuid.New(), nil, 6, 2, 2.5, 6)
	assert.ErrorIs(t, err, srs.ErrInvalidInput)
}

func TestCalculateNextReviewStoreFailure(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	storeErr := errors.New("connection refused")
	svc := newTestScheduler(t, &fakeSessionStore{err: storeErr}, &fakeReviewStore{}, now)

	_, err := svc.CalculateNextReview(context.Background(), uuid.New(), nil, 4, 2, 2.5, 6)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	var schedErr *SchedulerError
	assert.ErrorAs(t, err, &schedErr)
}

func TestOptimalReviewTimesNoData(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	svc := newTestScheduler(t, &fakeSessionStore{}, &fakeReviewStore{}, now)

	_, err := svc.OptimalReviewTimes(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoReviewData)
}

func TestOptimalReviewTimes(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	// Monday 2026-03-02; two observations at 09:00 so the hour survives
	// the minimum sample filter.
	reviews := &fakeReviewStore{
		observations: []domain.QualityObservation{
			{CompletedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Quality: 5},
			{CompletedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), Quality: 4},
		},
	}
	svc := newTestScheduler(t, &fakeSessionStore{}, reviews, now)

	times, err := svc.OptimalReviewTimes(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 9, times.BestHour)
	assert.Equal(t, 0, times.BestDayOfWeek)
}

func TestRetentionForecast(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	reviews := &fakeReviewStore{
		state:     domain.SchedulingState{EaseFactor: 2.5, IntervalDays: 10, Repetitions: 3},
		topicName: "Linear Algebra",
	}
	svc := newTestScheduler(t, &fakeSessionStore{}, reviews, now)

	topicID := uuid.New()
	forecast, err := svc.RetentionForecast(context.Background(), uuid.New(), topicID, 30)
	require.NoError(t, err)

	assert.Equal(t, topicID, forecast.TopicID)
	assert.Equal(t, "Linear Algebra", forecast.TopicName)
	assert.Equal(t, 10, forecast.CurrentIntervalDays)
	assert.Equal(t, 3, forecast.Repetitions)
	assert.Len(t, forecast.Points, 30)
}

func TestRetentionForecastUnknownTopic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	reviews := &fakeReviewStore{stateErr: store.ErrReviewNotFound}
	svc := newTestScheduler(t, &fakeSessionStore{}, reviews, now)

	_, err := svc.RetentionForecast(context.Background(), uuid.New(), uuid.New(), 30)
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}

func TestRetentionForecastInvalidHorizon(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	reviews := &fakeReviewStore{
		state: domain.SchedulingState{EaseFactor: 2.5, IntervalDays: 10, Repetitions: 3},
	}
	svc := newTestScheduler(t, &fakeSessionStore{}, reviews, now)

	_, err := svc.RetentionForecast(context.Background(), uuid.New(), uuid.New(), 0)
	assert.ErrorIs(t, err, srs.ErrInvalidHorizon)
}
