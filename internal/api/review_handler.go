package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/api/middleware"
	"github.com/studyflow/intelligence-api/internal/api/shared"
	"github.com/studyflow/intelligence-api/internal/domain/srs"
	"github.com/studyflow/intelligence-api/internal/platform/logger"
	"github.com/studyflow/intelligence-api/internal/platform/metrics"
	"github.com/studyflow/intelligence-api/internal/service"
)

// defaultForecastDays is the horizon used when days_ahead is not given.
const defaultForecastDays = 30

// ReviewHandler handles the spaced-repetition HTTP endpoints.
type ReviewHandler struct {
	scheduler service.SchedulerService
	metrics   *metrics.Manager
	logger    *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler. A nil metrics manager
// disables metric recording.
func NewReviewHandler(
	scheduler service.SchedulerService,
	metricsManager *metrics.Manager,
	logger *slog.Logger,
) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	if metricsManager == nil {
		metricsManager = metrics.NoOpManager()
	}

	return &ReviewHandler{
		scheduler: scheduler,
		metrics:   metricsManager,
		logger:    logger.With(slog.String("component", "review_handler")),
	}
}

// CalculateNextReview handles POST /spaced-repetition/calculate-next-review.
// It applies one grading event for the authenticated user, personalized by
// their study history.
func (h *ReviewHandler) CalculateNextReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req NextReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	var topicID *uuid.UUID
	if req.TopicID != "" {
		parsed, err := uuid.Parse(req.TopicID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid topic_id format")
			return
		}
		topicID = &parsed
	}

	outcome, err := h.scheduler.CalculateNextReview(
		r.Context(), userID, topicID,
		*req.Quality, *req.Repetitions, req.EaseFactor, req.Interval,
	)
	if err != nil {
		if errors.Is(err, srs.ErrInvalidInput) {
			shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(err))
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to calculate next review", err)
		return
	}

	h.metrics.RecordScheduleCalculation(outcome.PersonalizationApplied)

	log.Debug("calculated next review",
		slog.String("user_id", userID.String()),
		slog.Int("interval_days", outcome.Result.IntervalDays))

	shared.RespondWithJSON(w, r, http.StatusOK, NextReviewResponse{
		Status:                 "success",
		UserID:                 userID.String(),
		PersonalizationApplied: outcome.PersonalizationApplied,
		PerformanceData:        outcome.Context,
		NextReview:             outcome.Result,
	})
}

// GetOptimalReviewTimes handles GET /spaced-repetition/optimal-review-times/{userID}.
func (h *ReviewHandler) GetOptimalReviewTimes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedPathUser(w, r)
	if !ok {
		return
	}

	times, err := h.scheduler.OptimalReviewTimes(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, OptimalTimesResponse{
		Status:       "success",
		UserID:       userID.String(),
		OptimalTimes: times,
	})
}

// GetRetentionForecast handles
// GET /spaced-repetition/retention-forecast/{userID}/{topicID}?days_ahead=30.
func (h *ReviewHandler) GetRetentionForecast(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedPathUser(w, r)
	if !ok {
		return
	}

	topicID, err := uuid.Parse(chi.URLParam(r, "topicID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid topic ID format")
		return
	}

	daysAhead := defaultForecastDays
	if raw := r.URL.Query().Get("days_ahead"); raw != "" {
		daysAhead, err = strconv.Atoi(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid days_ahead value")
			return
		}
	}

	forecast, err := h.scheduler.RetentionForecast(r.Context(), userID, topicID, daysAhead)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RetentionForecastResponse{
		Status:            "success",
		UserID:            userID.String(),
		TopicID:           topicID.String(),
		TopicName:         forecast.TopicName,
		CurrentInterval:   forecast.CurrentIntervalDays,
		Repetitions:       forecast.Repetitions,
		RetentionForecast: forecast.Points,
	})
}

// authorizedPathUser parses the {userID} path parameter and verifies it
// matches the authenticated user. History belongs to its owner only.
func (h *ReviewHandler) authorizedPathUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	authUserID, ok := middleware.GetUserID(r)
	if !ok || authUserID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}

	pathUserID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	if pathUserID != authUserID {
		log.Warn("user attempted to access another user's history",
			slog.String("auth_user_id", authUserID.String()),
			slog.String("path_user_id", pathUserID.String()))
		shared.RespondWithError(w, r, http.StatusForbidden, "Access denied")
		return uuid.Nil, false
	}

	return pathUserID, true
}
