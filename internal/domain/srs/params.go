package srs

// Default policy values shared by every call. These are read-only constants,
// exposed by name so tests can assert against them directly.
const (
	// DefaultMinEaseFactor is the floor for every ease factor the algorithm
	// ever produces.
	DefaultMinEaseFactor = 1.3

	// DefaultMaxEaseFactor is the ceiling for every ease factor the
	// algorithm ever produces.
	DefaultMaxEaseFactor = 3.0

	// DefaultBaseEaseFactor is the ease factor assigned to an item before
	// its first review, when no prior state exists.
	DefaultBaseEaseFactor = 2.5

	// DefaultRetentionReviewThreshold is the retention probability below
	// which a review is recommended in forecasts.
	DefaultRetentionReviewThreshold = 0.8
)

// Params defines all configurable parameters for the scheduling algorithm.
type Params struct {
	// Core ease factor limits
	MinEaseFactor  float64
	MaxEaseFactor  float64
	BaseEaseFactor float64

	// First two intervals of the successful-recall ladder, in days
	FirstInterval  int
	SecondInterval int

	// Time-of-day personalization: maximum ease penalty at a 12-hour
	// misalignment from the learner's best performance hour
	MaxTimePenalty float64

	// Subject difficulty personalization
	HardSubjectThreshold float64
	EasySubjectThreshold float64
	SubjectAdjustment    float64

	// Learning-speed personalization
	FastLearnerThreshold    float64
	StrugglingThreshold     float64
	LearningSpeedAdjustment float64

	// Fatigue dampening: interval multipliers applied above session-count
	// thresholds for the current day
	HeavyFatigueSessions   int
	HeavyFatigueMultiplier float64
	MildFatigueSessions    int
	MildFatigueMultiplier  float64

	// Confidence estimation
	ConfidenceQualityWeight float64
	RepetitionBonusStep     float64
	RepetitionBonusCap      float64

	// Retention forecasting
	RepetitionStrengthBonus  float64
	RetentionReviewThreshold float64

	// Defaults for the optimal review time analysis when history is empty
	// or too sparse. Day of week uses Monday=0 indexing.
	DefaultBestHour      int
	DefaultBestDayOfWeek int
	MinHourlySamples     int
}

// ParamsConfig allows overriding the externally configurable parameters when
// creating a new Params instance. Zero values leave the default in place.
type ParamsConfig struct {
	MinEaseFactor            float64
	MaxEaseFactor            float64
	BaseEaseFactor           float64
	RetentionReviewThreshold float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  DefaultMinEaseFactor,
		MaxEaseFactor:  DefaultMaxEaseFactor,
		BaseEaseFactor: DefaultBaseEaseFactor,

		FirstInterval:  1,
		SecondInterval: 6,

		MaxTimePenalty: 0.2,

		HardSubjectThreshold: 3.5,
		EasySubjectThreshold: 2.5,
		SubjectAdjustment:    0.1,

		FastLearnerThreshold:    0.5,
		StrugglingThreshold:     -0.2,
		LearningSpeedAdjustment: 0.15,

		HeavyFatigueSessions:   5,
		HeavyFatigueMultiplier: 0.8,
		MildFatigueSessions:    3,
		MildFatigueMultiplier:  0.9,

		ConfidenceQualityWeight: 0.7,
		RepetitionBonusStep:     0.05,
		RepetitionBonusCap:      0.3,

		RepetitionStrengthBonus:  0.1,
		RetentionReviewThreshold: DefaultRetentionReviewThreshold,

		DefaultBestHour:      10,
		DefaultBestDayOfWeek: 1, // Tuesday
		MinHourlySamples:     2,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Only the externally tunable values can be overridden; the personalization
// and fatigue thresholds are fixed policy.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}
	if config.BaseEaseFactor > 0 {
		params.BaseEaseFactor = config.BaseEaseFactor
	}
	if config.RetentionReviewThreshold > 0 {
		params.RetentionReviewThreshold = config.RetentionReviewThreshold
	}

	return params
}
