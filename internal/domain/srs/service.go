package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// ErrInvalidInput is the base error for every input validation failure.
// Callers can match it with errors.Is to distinguish bad input from other
// failure modes. There is nothing to retry: the input must be fixed.
var ErrInvalidInput = errors.New("invalid input")

// Specific validation failures, all wrapping ErrInvalidInput.
var (
	ErrInvalidQuality     = fmt.Errorf("%w: quality must be between 0 and 5", ErrInvalidInput)
	ErrInvalidRepetitions = fmt.Errorf("%w: repetitions cannot be negative", ErrInvalidInput)
	ErrInvalidInterval    = fmt.Errorf("%w: interval must be at least 1 day", ErrInvalidInput)
	ErrInvalidEaseFactor  = fmt.Errorf("%w: ease factor is outside the allowed bounds", ErrInvalidInput)
	ErrInvalidHorizon     = fmt.Errorf("%w: days ahead must be at least 1", ErrInvalidInput)
	ErrInvalidStrength    = fmt.Errorf("%w: decay strength must be positive", ErrInvalidInput)
)

// Service defines the scheduling algorithm operations. Every method is a
// pure function of its arguments: no I/O, no shared state, safe for any
// number of concurrent calls. The wall clock is supplied by the caller as
// now, read once per grading event.
type Service interface {
	// ComputeNextState applies one grading event to the prior scheduling
	// state and returns the updated state, the confidence estimate, and the
	// next review time. The optional performance context personalizes the
	// ease factor and dampens the interval for fatigue.
	ComputeNextState(
		quality int,
		repetitions int,
		easeFactor float64,
		intervalDays int,
		perf *domain.PerformanceContext,
		now time.Time,
	) (*domain.ScheduleResult, error)

	// Confidence returns the standalone retention-confidence estimate for a
	// quality grade and repetition count.
	Confidence(quality, repetitions int) (float64, error)

	// FindOptimalTimes analyzes a quality history for the hour of day and
	// day of week with the best mean quality. Empty history returns
	// well-defined defaults, never an error.
	FindOptimalTimes(history []domain.QualityObservation) domain.OptimalTimes

	// ForecastRetention produces a day-by-day retention probability curve
	// for the given scheduling state using an exponential decay model.
	ForecastRetention(
		easeFactor float64,
		intervalDays int,
		repetitions int,
		daysAhead int,
	) ([]domain.RetentionPoint, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// ComputeNextState implements the Service interface.
func (s *defaultService) ComputeNextState(
	quality int,
	repetitions int,
	easeFactor float64,
	intervalDays int,
	perf *domain.PerformanceContext,
	now time.Time,
) (*domain.ScheduleResult, error) {
	if quality < domain.MinQuality || quality > domain.MaxQuality {
		return nil, ErrInvalidQuality
	}

	if repetitions < 0 {
		return nil, ErrInvalidRepetitions
	}

	if intervalDays < 1 {
		return nil, ErrInvalidInterval
	}

	// Bounds apply to the incoming ease factor before personalization.
	if easeFactor < s.params.MinEaseFactor || easeFactor > s.params.MaxEaseFactor {
		return nil, ErrInvalidEaseFactor
	}

	return calculateNextState(quality, repetitions, easeFactor, intervalDays, perf, now, s.params), nil
}

// Confidence implements the Service interface.
func (s *defaultService) Confidence(quality, repetitions int) (float64, error) {
	if quality < domain.MinQuality || quality > domain.MaxQuality {
		return 0, ErrInvalidQuality
	}

	if repetitions < 0 {
		return 0, ErrInvalidRepetitions
	}

	return calculateConfidence(quality, repetitions, s.params), nil
}
