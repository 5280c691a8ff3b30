package srs

import (
	"fmt"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// dayNames indexes day-of-week names with the Monday=0 convention used
// throughout the performance breakdowns.
var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// mondayIndexed converts a timestamp's weekday to Monday=0..Sunday=6.
func mondayIndexed(obs domain.QualityObservation) int {
	return (int(obs.CompletedAt.Weekday()) + 6) % 7
}

// meanAccumulator collects quality grades for one hour or day bucket.
type meanAccumulator struct {
	sum   float64
	count int
}

func (a meanAccumulator) mean() float64 {
	return a.sum / float64(a.count)
}

// FindOptimalTimes implements the Service interface.
//
// The history is grouped by hour of day and, independently, by day of week.
// Hours with fewer than MinHourlySamples observations are excluded from the
// hourly ranking so a single lucky session cannot dominate; the day-of-week
// ranking has no such filter. Ties break toward the smallest hour or day
// value. An empty history, or one where every hour is filtered out, falls
// back to the configured defaults.
func (s *defaultService) FindOptimalTimes(history []domain.QualityObservation) domain.OptimalTimes {
	if len(history) == 0 {
		return domain.OptimalTimes{
			BestHour:          s.params.DefaultBestHour,
			BestDayOfWeek:     s.params.DefaultBestDayOfWeek,
			PerformanceByHour: map[int]float64{},
			PerformanceByDay:  map[int]float64{},
			Summary: summaryText(
				s.params.DefaultBestHour,
				s.params.DefaultBestDayOfWeek,
			),
		}
	}

	var byHour, byDay [24]meanAccumulator
	for _, obs := range history {
		hour := obs.CompletedAt.Hour()
		byHour[hour].sum += obs.Quality
		byHour[hour].count++

		day := mondayIndexed(obs)
		byDay[day].sum += obs.Quality
		byDay[day].count++
	}

	performanceByHour := make(map[int]float64)
	bestHour := s.params.DefaultBestHour
	bestHourMean := 0.0
	foundHour := false
	for hour := 0; hour < 24; hour++ {
		if byHour[hour].count < s.params.MinHourlySamples {
			continue
		}
		mean := byHour[hour].mean()
		performanceByHour[hour] = mean
		if !foundHour || mean > bestHourMean {
			bestHour = hour
			bestHourMean = mean
			foundHour = true
		}
	}

	performanceByDay := make(map[int]float64)
	bestDay := s.params.DefaultBestDayOfWeek
	bestDayMean := 0.0
	foundDay := false
	for day := 0; day < 7; day++ {
		if byDay[day].count == 0 {
			continue
		}
		mean := byDay[day].mean()
		performanceByDay[day] = mean
		if !foundDay || mean > bestDayMean {
			bestDay = day
			bestDayMean = mean
			foundDay = true
		}
	}

	return domain.OptimalTimes{
		BestHour:          bestHour,
		BestDayOfWeek:     bestDay,
		PerformanceByHour: performanceByHour,
		PerformanceByDay:  performanceByDay,
		Summary:           summaryText(bestHour, bestDay),
	}
}

// summaryText renders the human-readable recommendation sentence.
func summaryText(bestHour, bestDay int) string {
	return fmt.Sprintf("Your best performance is at %d:00 on %ss", bestHour, dayNames[bestDay])
}
