package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/api/middleware"
	"github.com/studyflow/intelligence-api/internal/api/shared"
	"github.com/studyflow/intelligence-api/internal/platform/logger"
	"github.com/studyflow/intelligence-api/internal/service"
)

// defaultAvailableHours is assumed when the request does not say how much
// time the user has per day.
const defaultAvailableHours = 2.0

// RecommendationHandler handles the recommendation HTTP endpoints.
type RecommendationHandler struct {
	recommendations service.RecommendationService
	logger          *slog.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(
	recommendations service.RecommendationService,
	logger *slog.Logger,
) *RecommendationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for RecommendationHandler")
	}

	return &RecommendationHandler{
		recommendations: recommendations,
		logger:          logger.With(slog.String("component", "recommendation_handler")),
	}
}

// GenerateStudyPlan handles POST /recommendations/study-plan. An empty body
// is allowed and falls back to the default available hours.
func (h *RecommendationHandler) GenerateStudyPlan(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StudyPlanRequest
	if err := shared.DecodeJSON(r, &req); err != nil && err != io.EOF {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	availableHours := req.AvailableHoursPerDay
	if availableHours == 0 {
		availableHours = defaultAvailableHours
	}

	plan, err := h.recommendations.GenerateStudyPlan(r.Context(), userID, availableHours)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to generate study plan", err)
		return
	}

	log.Debug("generated study plan",
		slog.String("user_id", userID.String()),
		slog.Int("topic_priorities", len(plan.TopicPriorities)))

	shared.RespondWithJSON(w, r, http.StatusOK, StudyPlanResponse{
		Status:    "success",
		UserID:    userID.String(),
		StudyPlan: plan,
	})
}
