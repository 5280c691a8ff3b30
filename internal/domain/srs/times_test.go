package srs

import (
	"testing"
	"time"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// obs builds a QualityObservation on a fixed date at the given weekday
// offset and hour. March 2, 2026 is a Monday.
func obs(dayOffset, hour int, quality float64) domain.QualityObservation {
	return domain.QualityObservation{
		CompletedAt: time.Date(2026, 3, 2+dayOffset, hour, 15, 0, 0, time.UTC),
		Quality:     quality,
	}
}

func TestFindOptimalTimesEmptyHistory(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	result := svc.FindOptimalTimes(nil)

	if result.BestHour != 10 {
		t.Errorf("Expected default best hour 10, got %d", result.BestHour)
	}
	if result.BestDayOfWeek != 1 {
		t.Errorf("Expected default best day 1 (Tuesday), got %d", result.BestDayOfWeek)
	}
	if len(result.PerformanceByHour) != 0 || len(result.PerformanceByDay) != 0 {
		t.Error("Expected empty breakdowns for empty history")
	}
	if result.Summary == "" {
		t.Error("Expected a summary even for empty history")
	}
}

func TestFindOptimalTimesHourlyMinimumSamples(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	// Hour 9 has a single perfect observation; hour 14 has two mediocre
	// ones. The single observation must be filtered out.
	history := []domain.QualityObservation{
		obs(0, 9, 5),
		obs(0, 14, 3),
		obs(1, 14, 3),
	}

	result := svc.FindOptimalTimes(history)

	if result.BestHour != 14 {
		t.Errorf("Expected best hour 14, got %d", result.BestHour)
	}
	if _, ok := result.PerformanceByHour[9]; ok {
		t.Error("Hour with a single observation should be excluded from the breakdown")
	}
	if mean := result.PerformanceByHour[14]; mean != 3 {
		t.Errorf("Expected mean quality 3 for hour 14, got %v", mean)
	}
}

func TestFindOptimalTimesAllHoursFiltered(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	// Every hour has exactly one observation, so the hourly ranking falls
	// back to the default while days are still ranked.
	history := []domain.QualityObservation{
		obs(0, 8, 4),
		obs(1, 12, 5),
		obs(2, 18, 3),
	}

	result := svc.FindOptimalTimes(history)

	if result.BestHour != 10 {
		t.Errorf("Expected default best hour 10, got %d", result.BestHour)
	}
	if result.BestDayOfWeek != 1 { // Tuesday has the quality-5 observation
		t.Errorf("Expected best day 1, got %d", result.BestDayOfWeek)
	}
	if len(result.PerformanceByHour) != 0 {
		t.Errorf("Expected empty hourly breakdown, got %v", result.PerformanceByHour)
	}
	if len(result.PerformanceByDay) != 3 {
		t.Errorf("Expected 3 day entries, got %v", result.PerformanceByDay)
	}
}

func TestFindOptimalTimesTieBreaksToEarliest(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	// Hours 8 and 16 both average quality 4; the earlier hour wins.
	// Monday and Wednesday both average 4 as well; Monday (0) wins.
	history := []domain.QualityObservation{
		obs(0, 8, 4),
		obs(0, 8, 4),
		obs(2, 16, 4),
		obs(2, 16, 4),
	}

	result := svc.FindOptimalTimes(history)

	if result.BestHour != 8 {
		t.Errorf("Expected tie to break to hour 8, got %d", result.BestHour)
	}
	if result.BestDayOfWeek != 0 {
		t.Errorf("Expected tie to break to Monday (0), got %d", result.BestDayOfWeek)
	}
}

func TestFindOptimalTimesDayIndexing(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	// Sunday March 8, 2026 must land in bucket 6 under Monday=0 indexing.
	history := []domain.QualityObservation{
		obs(6, 10, 5),
		obs(6, 10, 5),
	}

	result := svc.FindOptimalTimes(history)

	if result.BestDayOfWeek != 6 {
		t.Errorf("Expected Sunday to map to 6, got %d", result.BestDayOfWeek)
	}
	if result.Summary != "Your best performance is at 10:00 on Sundays" {
		t.Errorf("Unexpected summary: %q", result.Summary)
	}
}
