package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflow/intelligence-api/internal/api"
	"github.com/studyflow/intelligence-api/internal/api/shared"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/service"
	"github.com/studyflow/intelligence-api/internal/store"
)

// fakeScheduler returns canned answers for the review endpoints.
type fakeScheduler struct {
	outcome  *service.ScheduleOutcome
	times    *domain.OptimalTimes
	forecast *service.RetentionForecast
	err      error
}

func (f *fakeScheduler) CalculateNextReview(
	_ context.Context,
	_ uuid.UUID,
	_ *uuid.UUID,
	quality, repetitions int,
	easeFactor float64,
	intervalDays int,
) (*service.ScheduleOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeScheduler) OptimalReviewTimes(_ context.Context, _ uuid.UUID) (*domain.OptimalTimes, error) {
	return f.times, f.err
}

func (f *fakeScheduler) RetentionForecast(
	_ context.Context,
	_, _ uuid.UUID,
	_ int,
) (*service.RetentionForecast, error) {
	return f.forecast, f.err
}

type fakeAnalytics struct {
	analysis *service.PatternAnalysis
	velocity *service.VelocityMetrics
	err      error
}

func (f *fakeAnalytics) AnalyzeStudyPatterns(
	_ context.Context,
	_ uuid.UUID,
	_ int,
) (*service.PatternAnalysis, error) {
	return f.analysis, f.err
}

func (f *fakeAnalytics) LearningVelocity(
	_ context.Context,
	_ uuid.UUID,
	_ *uuid.UUID,
) (*service.VelocityMetrics, error) {
	return f.velocity, f.err
}

type fakeRecommendations struct {
	plan *service.StudyPlan
	err  error
}

func (f *fakeRecommendations) GenerateStudyPlan(
	_ context.Context,
	_ uuid.UUID,
	_ float64,
) (*service.StudyPlan, error) {
	return f.plan, f.err
}

// authenticated injects the user ID the auth middleware would have set.
func authenticated(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}

func sampleOutcome() *service.ScheduleOutcome {
	return &service.ScheduleOutcome{
		Result: &domain.ScheduleResult{
			IntervalDays: 15,
			EaseFactor:   2.5,
			Repetitions:  3,
			Quality:      4,
			Confidence:   0.71,
			NextReviewAt: time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
		},
		PersonalizationApplied: false,
	}
}

func TestCalculateNextReview(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{outcome: sampleOutcome()}, nil, slog.Default())
	userID := uuid.New()

	body, err := json.Marshal(map[string]interface{}{
		"quality":     4,
		"repetitions": 2,
		"ease_factor": 2.5,
		"interval":    6,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/calculate-next-review", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CalculateNextReview(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.NextReviewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, userID.String(), resp.UserID)
	assert.Equal(t, 15, resp.NextReview.IntervalDays)
	assert.False(t, resp.PersonalizationApplied)
}

func TestCalculateNextReviewZeroQuality(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{outcome: sampleOutcome()}, nil, slog.Default())

	// Quality 0 is a valid grade and must pass request validation.
	body := []byte(`{"quality":0,"repetitions":0,"ease_factor":2.5,"interval":1}`)
	req := httptest.NewRequest(http.MethodPost, "/calculate-next-review", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CalculateNextReview(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalculateNextReviewValidation(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{outcome: sampleOutcome()}, nil, slog.Default())

	tests := []struct {
		name string
		body string
	}{
		{"missing quality", `{"repetitions":2,"ease_factor":2.5,"interval":6}`},
		{"quality too high", `{"quality":6,"repetitions":2,"ease_factor":2.5,"interval":6}`},
		{"negative repetitions", `{"quality":4,"repetitions":-1,"ease_factor":2.5,"interval":6}`},
		{"zero interval", `{"quality":4,"repetitions":2,"ease_factor":2.5,"interval":0}`},
		{"bad topic id", `{"quality":4,"repetitions":2,"ease_factor":2.5,"interval":6,"topic_id":"nope"}`},
		{"not json", `quality=4`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(
				http.MethodPost, "/calculate-next-review", bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			handler.CalculateNextReview(rec, authenticated(req, uuid.New()))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCalculateNextReviewUnauthenticated(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{}, nil, slog.Default())
	body := []byte(`{"quality":4,"repetitions":2,"ease_factor":2.5,"interval":6}`)
	req := httptest.NewRequest(http.MethodPost, "/calculate-next-review", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CalculateNextReview(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalculateNextReviewDomainValidationError(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{err: srs.ErrInvalidEaseFactor}, nil, slog.Default())
	body := []byte(`{"quality":4,"repetitions":2,"ease_factor":9.9,"interval":6}`)
	req := httptest.NewRequest(http.MethodPost, "/calculate-next-review", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CalculateNextReview(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// routeRequest runs the request through a chi router so URL parameters are
// populated.
func routeRequest(method, pattern string, fn http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, fn)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	return rec
}

func TestGetOptimalReviewTimes(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	scheduler := &fakeScheduler{
		times: &domain.OptimalTimes{
			BestHour:          9,
			BestDayOfWeek:     0,
			PerformanceByHour: map[int]float64{9: 4.5},
			PerformanceByDay:  map[int]float64{0: 4.5},
			Summary:           "Your best performance is at 9:00 on Mondays",
		},
	}
	handler := api.NewReviewHandler(scheduler, nil, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/optimal-review-times/"+userID.String(), nil)
	rec := routeRequest(http.MethodGet, "/optimal-review-times/{userID}",
		handler.GetOptimalReviewTimes, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.OptimalTimesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 9, resp.OptimalTimes.BestHour)
}

func TestGetOptimalReviewTimesForbiddenForOtherUser(t *testing.T) {
	t.Parallel()

	handler := api.NewReviewHandler(&fakeScheduler{}, nil, slog.Default())

	otherUser := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/optimal-review-times/"+otherUser.String(), nil)
	rec := routeRequest(http.MethodGet, "/optimal-review-times/{userID}",
		handler.GetOptimalReviewTimes, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetOptimalReviewTimesNoData(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := api.NewReviewHandler(&fakeScheduler{err: service.ErrNoReviewData}, nil, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/optimal-review-times/"+userID.String(), nil)
	rec := routeRequest(http.MethodGet, "/optimal-review-times/{userID}",
		handler.GetOptimalReviewTimes, authenticated(req, userID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRetentionForecast(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	topicID := uuid.New()
	scheduler := &fakeScheduler{
		forecast: &service.RetentionForecast{
			TopicID:             topicID,
			TopicName:           "Linear Algebra",
			CurrentIntervalDays: 10,
			Repetitions:         3,
			Points: []domain.RetentionPoint{
				{Day: 1, RetentionProbability: 0.97, ReviewRecommended: false},
			},
		},
	}
	handler := api.NewReviewHandler(scheduler, nil, slog.Default())

	target := "/retention-forecast/" + userID.String() + "/" + topicID.String()
	req := httptest.NewRequest(http.MethodGet, target+"?days_ahead=7", nil)
	rec := routeRequest(http.MethodGet, "/retention-forecast/{userID}/{topicID}",
		handler.GetRetentionForecast, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.RetentionForecastResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Linear Algebra", resp.TopicName)
	assert.Equal(t, 10, resp.CurrentInterval)
	assert.Len(t, resp.RetentionForecast, 1)
}

func TestGetRetentionForecastUnknownTopic(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := api.NewReviewHandler(&fakeScheduler{err: store.ErrReviewNotFound}, nil, slog.Default())

	target := "/retention-forecast/" + userID.String() + "/" + uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := routeRequest(http.MethodGet, "/retention-forecast/{userID}/{topicID}",
		handler.GetRetentionForecast, authenticated(req, userID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzePatterns(t *testing.T) {
	t.Parallel()

	analytics := &fakeAnalytics{
		analysis: &service.PatternAnalysis{
			SummaryStats:    service.SummaryStats{TotalSessions: 6},
			Recommendations: []string{"Your optimal session length is 52 minutes"},
		},
	}
	handler := api.NewAnalyticsHandler(analytics, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/analyze-patterns?days=14", nil)
	rec := httptest.NewRecorder()
	handler.AnalyzePatterns(rec, authenticated(req, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.AnalyzePatternsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 14, resp.AnalysisPeriodDays)
	assert.Equal(t, 6, resp.Analysis.SummaryStats.TotalSessions)
}

func TestAnalyzePatternsInvalidDays(t *testing.T) {
	t.Parallel()

	handler := api.NewAnalyticsHandler(&fakeAnalytics{}, slog.Default())

	for _, days := range []string{"0", "-3", "9000", "soon"} {
		req := httptest.NewRequest(http.MethodPost, "/analyze-patterns?days="+days, nil)
		rec := httptest.NewRecorder()
		handler.AnalyzePatterns(rec, authenticated(req, uuid.New()))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "days=%s", days)
	}
}

func TestGetLearningVelocity(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	analytics := &fakeAnalytics{
		velocity: &service.VelocityMetrics{
			Status:          service.VelocityStatusOK,
			CurrentVelocity: 200,
			VelocityTrend:   service.TrendIncreasing,
		},
	}
	handler := api.NewAnalyticsHandler(analytics, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/learning-velocity/"+userID.String(), nil)
	rec := routeRequest(http.MethodGet, "/learning-velocity/{userID}",
		handler.GetLearningVelocity, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.LearningVelocityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 200.0, resp.VelocityMetrics.CurrentVelocity)
}

func TestGetLearningVelocityNoData(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := api.NewAnalyticsHandler(&fakeAnalytics{err: service.ErrNoSessionData}, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/learning-velocity/"+userID.String(), nil)
	rec := routeRequest(http.MethodGet, "/learning-velocity/{userID}",
		handler.GetLearningVelocity, authenticated(req, userID))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateStudyPlan(t *testing.T) {
	t.Parallel()

	recommendations := &fakeRecommendations{
		plan: &service.StudyPlan{
			DailySchedule: service.DailySchedule{
				RecommendedSessions: 2,
				SessionLength:       45,
				BreakDuration:       10,
			},
		},
	}
	handler := api.NewRecommendationHandler(recommendations, slog.Default())

	body := []byte(`{"available_hours_per_day": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/study-plan", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.GenerateStudyPlan(rec, authenticated(req, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.StudyPlanResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 45, resp.StudyPlan.DailySchedule.SessionLength)
}

func TestGenerateStudyPlanEmptyBody(t *testing.T) {
	t.Parallel()

	recommendations := &fakeRecommendations{plan: &service.StudyPlan{}}
	handler := api.NewRecommendationHandler(recommendations, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/study-plan", nil)
	rec := httptest.NewRecorder()
	handler.GenerateStudyPlan(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateStudyPlanInvalidHours(t *testing.T) {
	t.Parallel()

	handler := api.NewRecommendationHandler(&fakeRecommendations{}, slog.Default())

	body := []byte(`{"available_hours_per_day": 30}`)
	req := httptest.NewRequest(http.MethodPost, "/study-plan", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.GenerateStudyPlan(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
