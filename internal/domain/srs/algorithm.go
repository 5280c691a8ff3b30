package srs

import (
	"math"
	"time"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor from a quality grade.
//
// The ease factor represents how quickly the review interval grows - higher
// values mean the item is easier and intervals expand faster. The update is
// the SM-2 recurrence: a quality of 5 earns the largest increase (+0.1),
// while lower grades are penalized increasingly steeply by the quadratic
// term in (5 - quality).
//
// The result is always clamped to [params.MinEaseFactor, params.MaxEaseFactor].
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	miss := float64(domain.MaxQuality - quality)
	newEF := currentEF + (0.1 - miss*(0.08+miss*0.02))

	return clampEase(newEF, params)
}

// clampEase bounds an ease factor to the configured limits.
func clampEase(ef float64, params *Params) float64 {
	if ef < params.MinEaseFactor {
		return params.MinEaseFactor
	}
	if ef > params.MaxEaseFactor {
		return params.MaxEaseFactor
	}
	return ef
}

// calculateNewInterval determines the next interval in days after a review.
//
// Successful recalls (quality >= 3) climb the SM-2 ladder: the first earns
// params.FirstInterval, the second params.SecondInterval, and every later
// one multiplies the current interval by the new ease factor. A failed
// recall (quality < 3) is a hard reset back to a one-day interval,
// regardless of ease or how long the prior interval was.
func calculateNewInterval(
	currentInterval int,
	repetitions int,
	newEaseFactor float64,
	quality int,
	params *Params,
) int {
	if quality < successThreshold {
		return params.FirstInterval
	}

	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * newEaseFactor))
	}
}

// successThreshold is the minimum quality grade that counts as a successful
// recall. Anything below it resets progress.
const successThreshold = 3

// calculateConfidence derives a retention-confidence score in [0, 1] from a
// quality grade and a repetition count.
//
// The base is the normalized quality weighted by ConfidenceQualityWeight;
// each repetition adds RepetitionBonusStep up to RepetitionBonusCap. The
// result is monotonically non-decreasing in both inputs and capped at 1.
func calculateConfidence(quality, repetitions int, params *Params) float64 {
	base := float64(quality) / float64(domain.MaxQuality)
	bonus := math.Min(params.RepetitionBonusCap, float64(repetitions)*params.RepetitionBonusStep)

	return math.Min(1.0, base*params.ConfidenceQualityWeight+bonus)
}

// calculateNextState runs the full recurrence for one grading event and
// returns the complete schedule result. It orchestrates the ease update,
// the optional personalization and fatigue adjustments, the interval
// progression, and the confidence estimate. The result is a new value;
// nothing is mutated and nothing outside the argument list is read, so the
// same inputs always produce the same result.
func calculateNextState(
	quality int,
	repetitions int,
	easeFactor float64,
	intervalDays int,
	perf *domain.PerformanceContext,
	now time.Time,
	params *Params,
) *domain.ScheduleResult {
	newEF := calculateNewEaseFactor(easeFactor, quality, params)

	if perf != nil {
		newEF = adjustEase(newEF, perf, now, params)
	}

	newInterval := calculateNewInterval(intervalDays, repetitions, newEF, quality, params)

	newRepetitions := 0
	if quality >= successThreshold {
		newRepetitions = repetitions + 1
	}

	if perf != nil && perf.SessionCountToday != nil {
		newInterval = dampenForFatigue(newInterval, *perf.SessionCountToday, params)
	}

	return &domain.ScheduleResult{
		IntervalDays: newInterval,
		EaseFactor:   newEF,
		Repetitions:  newRepetitions,
		Quality:      quality,
		Confidence:   calculateConfidence(quality, newRepetitions, params),
		NextReviewAt: now.AddDate(0, 0, newInterval),
	}
}
