package srs

import (
	"math"

	"github.com/studyflow/intelligence-api/internal/domain"
)

// ForecastRetention implements the Service interface.
//
// The model is the classic forgetting curve R = e^(-t/S), where S is the
// memory strength derived from the current scheduling state: the interval
// times the ease factor, boosted by RepetitionStrengthBonus per successful
// repetition. Probabilities are reported rounded to three decimals, and a
// review is recommended on every day where retention falls below
// RetentionReviewThreshold.
//
// Returns ErrInvalidHorizon for a non-positive horizon and ErrInvalidStrength
// when the state would make the decay model undefined (zero or negative
// interval, ease, or a repetition count that drives strength non-positive).
func (s *defaultService) ForecastRetention(
	easeFactor float64,
	intervalDays int,
	repetitions int,
	daysAhead int,
) ([]domain.RetentionPoint, error) {
	if daysAhead < 1 {
		return nil, ErrInvalidHorizon
	}

	strength := float64(intervalDays) * easeFactor * (1 + float64(repetitions)*s.params.RepetitionStrengthBonus)
	if strength <= 0 {
		return nil, ErrInvalidStrength
	}

	curve := make([]domain.RetentionPoint, 0, daysAhead)
	for day := 1; day <= daysAhead; day++ {
		retention := math.Exp(-float64(day) / strength)
		curve = append(curve, domain.RetentionPoint{
			Day:                  day,
			RetentionProbability: math.Round(retention*1000) / 1000,
			ReviewRecommended:    retention < s.params.RetentionReviewThreshold,
		})
	}

	return curve, nil
}
