package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/studyflow/intelligence-api/internal/api"
	apiMiddleware "github.com/studyflow/intelligence-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Middleware)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	reviewHandler := api.NewReviewHandler(app.schedulerService, app.metrics, app.logger)
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsService, app.logger)
	recommendationHandler := api.NewRecommendationHandler(app.recommendationService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Spaced repetition endpoints
			r.Post("/spaced-repetition/calculate-next-review", reviewHandler.CalculateNextReview)
			r.Get("/spaced-repetition/optimal-review-times/{userID}", reviewHandler.GetOptimalReviewTimes)
			r.Get(
				"/spaced-repetition/retention-forecast/{userID}/{topicID}",
				reviewHandler.GetRetentionForecast,
			)

			// Analytics endpoints
			r.Post("/analytics/analyze-patterns", analyticsHandler.AnalyzePatterns)
			r.Get("/analytics/learning-velocity/{userID}", analyticsHandler.GetLearningVelocity)

			// Recommendation endpoints
			r.Post("/recommendations/study-plan", recommendationHandler.GenerateStudyPlan)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Prometheus exposition endpoint
	r.Get("/metrics", app.metrics.Handler().ServeHTTP)

	return r
}
