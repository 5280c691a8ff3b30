package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/api/middleware"
	"github.com/studyflow/intelligence-api/internal/api/shared"
	"github.com/studyflow/intelligence-api/internal/platform/logger"
	"github.com/studyflow/intelligence-api/internal/service"
)

// Bounds for the analyze-patterns window.
const (
	defaultAnalysisDays = 30
	maxAnalysisDays     = 365
)

// AnalyticsHandler handles the analytics HTTP endpoints.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnalyticsHandler")
	}

	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger.With(slog.String("component", "analytics_handler")),
	}
}

// AnalyzePatterns handles POST /analytics/analyze-patterns?days=30 for the
// authenticated user.
func (h *AnalyticsHandler) AnalyzePatterns(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	days := defaultAnalysisDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxAnalysisDays {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid days value")
			return
		}
		days = parsed
	}

	analysis, err := h.analytics.AnalyzeStudyPatterns(r.Context(), userID, days)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to analyze study patterns", err)
		return
	}

	log.Debug("analyzed study patterns",
		slog.String("user_id", userID.String()),
		slog.Int("days", days),
		slog.Int("sessions", analysis.SummaryStats.TotalSessions))

	shared.RespondWithJSON(w, r, http.StatusOK, AnalyzePatternsResponse{
		Status:             "success",
		UserID:             userID.String(),
		AnalysisPeriodDays: days,
		Analysis:           analysis,
	})
}

// GetLearningVelocity handles GET /analytics/learning-velocity/{userID}?topic_id=.
func (h *AnalyticsHandler) GetLearningVelocity(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	authUserID, ok := middleware.GetUserID(r)
	if !ok || authUserID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	pathUserID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	if pathUserID != authUserID {
		shared.RespondWithError(w, r, http.StatusForbidden, "Access denied")
		return
	}

	var topicID *uuid.UUID
	if raw := r.URL.Query().Get("topic_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid topic_id format")
			return
		}
		topicID = &parsed
	}

	velocity, err := h.analytics.LearningVelocity(r.Context(), pathUserID, topicID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		shared.RespondWithErrorAndLog(w, r, statusCode, GetSafeErrorMessage(err), err)
		return
	}

	resp := LearningVelocityResponse{
		Status:          "success",
		UserID:          pathUserID.String(),
		VelocityMetrics: velocity,
	}
	if topicID != nil {
		resp.TopicID = topicID.String()
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
