// Package api provides HTTP handlers for the API.
package api

import (
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/service"
)

// NextReviewRequest is the body of POST /spaced-repetition/calculate-next-review.
// Quality and Repetitions are pointers because zero is a meaningful value.
type NextReviewRequest struct {
	Quality     *int    `json:"quality"      validate:"required,min=0,max=5"`
	Repetitions *int    `json:"repetitions"  validate:"required,min=0"`
	EaseFactor  float64 `json:"ease_factor"  validate:"required,gt=0"`
	Interval    int     `json:"interval"     validate:"required,min=1"`
	TopicID     string  `json:"topic_id,omitempty" validate:"omitempty,uuid"`
}

// NextReviewResponse is the result of a grading event.
type NextReviewResponse struct {
	Status                 string                    `json:"status"`
	UserID                 string                    `json:"user_id"`
	PersonalizationApplied bool                      `json:"personalization_applied"`
	PerformanceData        domain.PerformanceContext `json:"performance_data"`
	NextReview             *domain.ScheduleResult    `json:"next_review"`
}

// OptimalTimesResponse wraps the optimal review time analysis.
type OptimalTimesResponse struct {
	Status       string               `json:"status"`
	UserID       string               `json:"user_id"`
	OptimalTimes *domain.OptimalTimes `json:"optimal_times"`
}

// RetentionForecastResponse wraps a retention forecast for one topic.
type RetentionForecastResponse struct {
	Status            string                  `json:"status"`
	UserID            string                  `json:"user_id"`
	TopicID           string                  `json:"topic_id"`
	TopicName         string                  `json:"topic_name"`
	CurrentInterval   int                     `json:"current_interval"`
	Repetitions       int                     `json:"repetitions"`
	RetentionForecast []domain.RetentionPoint `json:"retention_forecast"`
}

// AnalyzePatternsResponse wraps a study pattern report.
type AnalyzePatternsResponse struct {
	Status             string                   `json:"status"`
	UserID             string                   `json:"user_id"`
	AnalysisPeriodDays int                      `json:"analysis_period_days"`
	Analysis           *service.PatternAnalysis `json:"analysis"`
}

// LearningVelocityResponse wraps the weekly velocity metrics.
type LearningVelocityResponse struct {
	Status          string                   `json:"status"`
	UserID          string                   `json:"user_id"`
	TopicID         string                   `json:"topic_id,omitempty"`
	VelocityMetrics *service.VelocityMetrics `json:"velocity_metrics"`
}

// StudyPlanRequest is the body of POST /recommendations/study-plan.
type StudyPlanRequest struct {
	AvailableHoursPerDay float64 `json:"available_hours_per_day" validate:"omitempty,gt=0,lte=24"`
}

// StudyPlanResponse wraps a generated study plan.
type StudyPlanResponse struct {
	Status    string             `json:"status"`
	UserID    string             `json:"user_id"`
	StudyPlan *service.StudyPlan `json:"study_plan"`
}
