// Package service contains the application-specific use cases of the
// intelligence API. It orchestrates interactions between domain objects,
// the scheduling core (internal/domain/srs), and the store interfaces
// (internal/store) to fulfill application features.
//
// Each service focuses on one area: SchedulerService handles grading events
// and retention forecasts, AnalyticsService computes descriptive study
// pattern metrics, and RecommendationService generates study plans.
//
// Services receive their dependencies through constructor injection and
// translate store errors into application-level errors that the API layer
// maps to HTTP status codes.
package service
