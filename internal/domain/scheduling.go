package domain

import (
	"time"
)

// Quality grade bounds for a single review (0 = total failure, 5 = perfect recall).
const (
	MinQuality = 0
	MaxQuality = 5
)

// SchedulingState tracks a learner's spaced repetition state for a single item.
// It implements the inputs and outputs of an SM-2 variant: the ease factor
// controls how quickly intervals grow, the interval is the number of days
// until the next review, and repetitions counts consecutive successful
// recalls since the last reset. Validation lives with the algorithm in the
// srs package, which owns the ease factor bounds.
type SchedulingState struct {
	EaseFactor   float64 `json:"ease_factor"`
	IntervalDays int     `json:"interval_days"`
	Repetitions  int     `json:"repetitions"`
}

// ScheduleResult is the outcome of processing a single grading event.
// It carries the updated scheduling state, the quality grade that produced
// it, a retention confidence score in [0, 1], and the concrete time of the
// next scheduled review. Results are value objects created per call: the
// caller owns persistence.
type ScheduleResult struct {
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	Repetitions  int       `json:"repetitions"`
	Quality      int       `json:"quality"`
	Confidence   float64   `json:"confidence"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// State returns the scheduling state embedded in the result.
func (r ScheduleResult) State() SchedulingState {
	return SchedulingState{
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		Repetitions:  r.Repetitions,
	}
}

// PerformanceContext carries pre-aggregated behavioral signals used to
// personalize the scheduling recurrence. Every field is independently
// optional; a nil pointer means the signal was unavailable and its
// adjustment must be skipped. The context is produced by the store layer
// from historical sessions and reviews, never by the algorithm itself.
type PerformanceContext struct {
	// BestPerformanceHour is the hour of day (0-23) at which the learner
	// historically performs best.
	BestPerformanceHour *int `json:"best_performance_hour,omitempty"`

	// SubjectDifficultyAvg is the mean self-reported difficulty (1-5) of
	// recent sessions for the item's topic.
	SubjectDifficultyAvg *float64 `json:"subject_difficulty_avg,omitempty"`

	// AvgQualityImprovement is the quality delta between the learner's most
	// recent reviews and the batch before them. Positive means improving.
	AvgQualityImprovement *float64 `json:"avg_quality_improvement,omitempty"`

	// SessionCountToday is the number of study sessions completed today,
	// used to dampen intervals under fatigue.
	SessionCountToday *int `json:"session_count_today,omitempty"`
}

// IsEmpty reports whether no signal is present at all.
func (c *PerformanceContext) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.BestPerformanceHour == nil &&
		c.SubjectDifficultyAvg == nil &&
		c.AvgQualityImprovement == nil &&
		c.SessionCountToday == nil
}

// QualityObservation is a single timestamped quality grade, the unit of
// input for the optimal review time analysis.
type QualityObservation struct {
	CompletedAt time.Time `json:"completed_at"`
	Quality     float64   `json:"quality"`
}

// OptimalTimes describes when a learner historically performs best.
// Day-of-week values use Monday=0 through Sunday=6.
type OptimalTimes struct {
	BestHour          int             `json:"best_hour"`
	BestDayOfWeek     int             `json:"best_day_of_week"`
	PerformanceByHour map[int]float64 `json:"performance_by_hour"`
	PerformanceByDay  map[int]float64 `json:"performance_by_day"`
	Summary           string          `json:"recommendation"`
}

// RetentionPoint is one day of a retention forecast: the modeled probability
// that the item is still remembered, and whether a review is recommended
// because that probability fell below the configured threshold.
type RetentionPoint struct {
	Day                  int     `json:"day"`
	RetentionProbability float64 `json:"retention_probability"`
	ReviewRecommended    bool    `json:"review_recommended"`
}
