package srs

import (
	"math"
	"time"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// adjustmentRule computes one personalization delta for the ease factor.
// It returns the delta and whether its source signal was present in the
// context; an absent signal contributes nothing.
type adjustmentRule func(perf *domain.PerformanceContext, now time.Time, params *Params) (float64, bool)

// adjustmentRules is the fixed, ordered set of personalization adjustments.
// Each rule is independent; their deltas are summed and the ease factor is
// clamped once at the end.
var adjustmentRules = []adjustmentRule{
	timeOfDayAdjustment,
	subjectDifficultyAdjustment,
	learningSpeedAdjustment,
}

// adjustEase applies every applicable personalization rule to the ease
// factor and re-clamps the result to the configured bounds.
func adjustEase(
	easeFactor float64,
	perf *domain.PerformanceContext,
	now time.Time,
	params *Params,
) float64 {
	total := 0.0
	for _, rule := range adjustmentRules {
		if delta, ok := rule(perf, now, params); ok {
			total += delta
		}
	}

	return clampEase(easeFactor+total, params)
}

// timeOfDayAdjustment penalizes studying far from the learner's best
// performance hour. The distance is the shorter circular hour difference
// (0-12), scaled linearly up to params.MaxTimePenalty at a full 12-hour
// misalignment. Perfect alignment contributes nothing.
func timeOfDayAdjustment(perf *domain.PerformanceContext, now time.Time, params *Params) (float64, bool) {
	if perf.BestPerformanceHour == nil {
		return 0, false
	}

	hourDiff := math.Abs(float64(now.Hour() - *perf.BestPerformanceHour))
	if hourDiff > 12 {
		hourDiff = 24 - hourDiff
	}

	return -(hourDiff / 12) * params.MaxTimePenalty, true
}

// subjectDifficultyAdjustment lowers the ease factor for hard subjects and
// raises it for easy ones. Subjects in the middle band contribute nothing.
func subjectDifficultyAdjustment(perf *domain.PerformanceContext, _ time.Time, params *Params) (float64, bool) {
	if perf.SubjectDifficultyAvg == nil {
		return 0, false
	}

	avg := *perf.SubjectDifficultyAvg
	switch {
	case avg > params.HardSubjectThreshold:
		return -params.SubjectAdjustment, true
	case avg < params.EasySubjectThreshold:
		return params.SubjectAdjustment, true
	default:
		return 0, true
	}
}

// learningSpeedAdjustment rewards a rising quality trend and eases off for
// a falling one. A flat trend contributes nothing.
func learningSpeedAdjustment(perf *domain.PerformanceContext, _ time.Time, params *Params) (float64, bool) {
	if perf.AvgQualityImprovement == nil {
		return 0, false
	}

	improvement := *perf.AvgQualityImprovement
	switch {
	case improvement > params.FastLearnerThreshold:
		return params.LearningSpeedAdjustment, true
	case improvement < params.StrugglingThreshold:
		return -params.LearningSpeedAdjustment, true
	default:
		return 0, true
	}
}

// dampenForFatigue shrinks an interval when the learner has already studied
// a lot today. The multiplier steps down as the session count crosses the
// configured thresholds; the result never drops below one day and never
// exceeds the input interval.
func dampenForFatigue(intervalDays, sessionCountToday int, params *Params) int {
	multiplier := 1.0
	switch {
	case sessionCountToday > params.HeavyFatigueSessions:
		multiplier = params.HeavyFatigueMultiplier
	case sessionCountToday > params.MildFatigueSessions:
		multiplier = params.MildFatigueMultiplier
	}

	dampened := int(math.Round(float64(intervalDays) * multiplier))
	if dampened < 1 {
		return 1
	}
	return dampened
}
