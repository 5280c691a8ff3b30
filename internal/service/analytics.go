package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
	"github.com/studyflow/intelligence-api/internal/store"
)

// Velocity metric status values.
const (
	VelocityStatusOK               = "success"
	VelocityStatusInsufficientData = "insufficient_data"
)

// Difficulty and velocity trend labels.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Burnout risk levels.
const (
	BurnoutRiskLow    = "low"
	BurnoutRiskMedium = "medium"
	BurnoutRiskHigh   = "high"
)

// trendSlopeThreshold separates a real difficulty trend from noise.
const trendSlopeThreshold = 0.01

// SummaryStats are the headline numbers for an analysis window.
type SummaryStats struct {
	TotalSessions       int     `json:"total_sessions"`
	TotalMinutes        int     `json:"total_minutes"`
	TotalHours          float64 `json:"total_hours"`
	AvgSessionLength    float64 `json:"avg_session_length"`
	MedianSessionLength float64 `json:"median_session_length"`
	StudyDays           int     `json:"study_days"`
	SessionsPerDay      float64 `json:"sessions_per_day"`
	LongestSession      int     `json:"longest_session"`
	ShortestSession     int     `json:"shortest_session"`
}

// BucketStats aggregates the sessions that fell into one hour-of-day or
// day-of-week bucket.
type BucketStats struct {
	Sessions       int     `json:"sessions"`
	TotalMinutes   int     `json:"total_minutes"`
	MeanDuration   float64 `json:"mean_duration"`
	MeanDifficulty float64 `json:"mean_difficulty"`
}

// PeakHours identifies when the user studies best and most often. Nil means
// no sessions were available to rank.
type PeakHours struct {
	MostProductive *int `json:"most_productive"`
	MostFrequent   *int `json:"most_frequent"`
}

// TimePatterns describes when the user studies. Day-of-week keys use
// Monday=0 through Sunday=6.
type TimePatterns struct {
	PeakHours          PeakHours           `json:"peak_hours"`
	HourlyDistribution map[int]BucketStats `json:"hourly_distribution"`
	WeeklyDistribution map[int]BucketStats `json:"weekly_distribution"`

	// StudyConsistency is the share of calendar days in the window with at
	// least one session, as a percentage.
	StudyConsistency float64 `json:"study_consistency"`
}

// DifficultyAnalysis tracks how hard the material feels over time.
type DifficultyAnalysis struct {
	CurrentAvgDifficulty float64            `json:"current_avg_difficulty"`
	Trend                string             `json:"difficulty_trend"`
	TrendStrength        float64            `json:"trend_strength"`
	Consistency          float64            `json:"consistency"`
	ByTopic              map[string]float64 `json:"difficulty_by_topic"`
	Recommendation       string             `json:"recommendation"`
}

// ProductivityMetrics summarizes how effectively the user studies.
type ProductivityMetrics struct {
	FocusScore            float64 `json:"focus_score"`
	EfficiencyImprovement float64 `json:"efficiency_improvement"`
	OptimalSessionLength  int     `json:"optimal_session_length"`
	BurnoutRisk           string  `json:"burnout_risk"`
}

// TopicStats aggregates the sessions spent on one topic.
type TopicStats struct {
	Sessions       int     `json:"sessions"`
	TotalMinutes   int     `json:"total_minutes"`
	MeanDuration   float64 `json:"mean_duration"`
	MeanDifficulty float64 `json:"mean_difficulty"`
	DifficultyStd  float64 `json:"difficulty_std"`
}

// TopicPerformance scores mastery per topic. Mastery runs 0-100; falling
// self-reported difficulty over time reads as rising mastery.
type TopicPerformance struct {
	Statistics       map[string]TopicStats `json:"topic_statistics"`
	MasteryScores    map[string]float64    `json:"mastery_scores"`
	RecommendedFocus string                `json:"recommended_focus,omitempty"`
}

// VelocityMetrics tracks weekly study volume. Status is
// VelocityStatusInsufficientData when fewer than two study weeks exist.
type VelocityMetrics struct {
	Status           string  `json:"status"`
	CurrentVelocity  float64 `json:"current_velocity,omitempty"`
	VelocityTrend    string  `json:"velocity_trend,omitempty"`
	WeeklyAverage    float64 `json:"weekly_average,omitempty"`
	ConsistencyScore float64 `json:"consistency_score,omitempty"`
}

// PatternAnalysis is the full study pattern report. The section pointers are
// nil when the window holds no sessions.
type PatternAnalysis struct {
	SummaryStats        SummaryStats         `json:"summary_stats"`
	TimePatterns        *TimePatterns        `json:"time_patterns"`
	DifficultyAnalysis  *DifficultyAnalysis  `json:"difficulty_analysis"`
	ProductivityMetrics *ProductivityMetrics `json:"productivity_metrics"`
	TopicPerformance    *TopicPerformance    `json:"topic_performance"`
	LearningVelocity    *VelocityMetrics     `json:"learning_velocity"`
	Recommendations     []string             `json:"recommendations"`
}

// AnalyticsService computes descriptive analytics over study session history.
type AnalyticsService interface {
	// AnalyzeStudyPatterns builds the full pattern report from the user's
	// sessions in the last `days` days. An empty window yields a report with
	// zeroed summary stats, not an error.
	AnalyzeStudyPatterns(ctx context.Context, userID uuid.UUID, days int) (*PatternAnalysis, error)

	// LearningVelocity computes the weekly velocity metrics across the
	// user's whole history, optionally restricted to one topic. Returns
	// ErrNoSessionData when no sessions match.
	LearningVelocity(ctx context.Context, userID uuid.UUID, topicID *uuid.UUID) (*VelocityMetrics, error)
}

// analyticsServiceImpl implements the AnalyticsService interface.
type analyticsServiceImpl struct {
	sessions store.SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(sessions store.SessionStore, logger *slog.Logger) (AnalyticsService, error) {
	if sessions == nil {
		return nil, fmt.Errorf("analytics service: session store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &analyticsServiceImpl{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "analytics_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// AnalyzeStudyPatterns implements AnalyticsService.AnalyzeStudyPatterns.
func (s *analyticsServiceImpl) AnalyzeStudyPatterns(
	ctx context.Context,
	userID uuid.UUID,
	days int,
) (*PatternAnalysis, error) {
	now := s.now()
	since := now.AddDate(0, 0, -days)

	sessions, err := s.sessions.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("analyze study patterns: %w", err)
	}

	s.logger.DebugContext(ctx, "analyzing study patterns",
		slog.String("user_id", userID.String()),
		slog.Int("days", days),
		slog.Int("sessions", len(sessions)))

	return analyzeStudyPatterns(sessions, now), nil
}

// LearningVelocity implements AnalyticsService.LearningVelocity.
func (s *analyticsServiceImpl) LearningVelocity(
	ctx context.Context,
	userID uuid.UUID,
	topicID *uuid.UUID,
) (*VelocityMetrics, error) {
	sessions, err := s.sessions.ListByUserSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("learning velocity: %w", err)
	}

	if topicID != nil {
		filtered := sessions[:0]
		for _, sess := range sessions {
			if sess.TopicID == *topicID {
				filtered = append(filtered, sess)
			}
		}
		sessions = filtered
	}

	if len(sessions) == 0 {
		return nil, ErrNoSessionData
	}

	velocity := calculateLearningVelocity(sessions)
	return &velocity, nil
}

// analyzeStudyPatterns builds the full report from an ascending-ordered
// session history. now anchors the recency-sensitive metrics.
func analyzeStudyPatterns(sessions []domain.StudySession, now time.Time) *PatternAnalysis {
	if len(sessions) == 0 {
		return &PatternAnalysis{
			Recommendations: []string{"Start studying to get personalized insights!"},
		}
	}

	timePatterns := analyzeTimePatterns(sessions)
	difficulty := analyzeDifficultyProgression(sessions)
	productivity := calculateProductivityMetrics(sessions, now)
	topics := analyzeTopicPerformance(sessions)
	velocity := calculateLearningVelocity(sessions)

	analysis := &PatternAnalysis{
		SummaryStats:        calculateSummaryStats(sessions),
		TimePatterns:        &timePatterns,
		DifficultyAnalysis:  &difficulty,
		ProductivityMetrics: &productivity,
		TopicPerformance:    &topics,
		LearningVelocity:    &velocity,
	}
	analysis.Recommendations = generateRecommendations(analysis)
	return analysis
}

func calculateSummaryStats(sessions []domain.StudySession) SummaryStats {
	durations := make([]float64, len(sessions))
	days := make(map[string]struct{})
	total := 0
	longest := sessions[0].DurationMinutes
	shortest := sessions[0].DurationMinutes

	for i, sess := range sessions {
		durations[i] = float64(sess.DurationMinutes)
		total += sess.DurationMinutes
		days[dateKey(sess.CompletedAt)] = struct{}{}
		if sess.DurationMinutes > longest {
			longest = sess.DurationMinutes
		}
		if sess.DurationMinutes < shortest {
			shortest = sess.DurationMinutes
		}
	}

	return SummaryStats{
		TotalSessions:       len(sessions),
		TotalMinutes:        total,
		TotalHours:          round1(float64(total) / 60),
		AvgSessionLength:    round1(mean(durations)),
		MedianSessionLength: median(durations),
		StudyDays:           len(days),
		SessionsPerDay:      round1(float64(len(sessions)) / float64(len(days))),
		LongestSession:      longest,
		ShortestSession:     shortest,
	}
}

func analyzeTimePatterns(sessions []domain.StudySession) TimePatterns {
	type bucketAcc struct {
		count      int
		minutes    int
		difficulty float64
	}
	var hourly [24]bucketAcc
	var daily [7]bucketAcc

	minDate := sessions[0].CompletedAt
	maxDate := sessions[0].CompletedAt
	for _, sess := range sessions {
		h := sess.CompletedAt.Hour()
		d := mondayIndexedWeekday(sess.CompletedAt)
		hourly[h].count++
		hourly[h].minutes += sess.DurationMinutes
		hourly[h].difficulty += sess.Difficulty
		daily[d].count++
		daily[d].minutes += sess.DurationMinutes
		daily[d].difficulty += sess.Difficulty
		if sess.CompletedAt.Before(minDate) {
			minDate = sess.CompletedAt
		}
		if sess.CompletedAt.After(maxDate) {
			maxDate = sess.CompletedAt
		}
	}

	hourlyDist := make(map[int]BucketStats)
	var mostProductive, mostFrequent *int
	bestMinutes, bestCount := 0, 0
	for h := 0; h < 24; h++ {
		acc := hourly[h]
		if acc.count == 0 {
			continue
		}
		hourlyDist[h] = BucketStats{
			Sessions:       acc.count,
			TotalMinutes:   acc.minutes,
			MeanDuration:   round2(float64(acc.minutes) / float64(acc.count)),
			MeanDifficulty: round2(acc.difficulty / float64(acc.count)),
		}
		if acc.minutes > bestMinutes {
			bestMinutes = acc.minutes
			hour := h
			mostProductive = &hour
		}
		if acc.count > bestCount {
			bestCount = acc.count
			hour := h
			mostFrequent = &hour
		}
	}

	weeklyDist := make(map[int]BucketStats)
	for d := 0; d < 7; d++ {
		acc := daily[d]
		if acc.count == 0 {
			continue
		}
		weeklyDist[d] = BucketStats{
			Sessions:       acc.count,
			TotalMinutes:   acc.minutes,
			MeanDuration:   round2(float64(acc.minutes) / float64(acc.count)),
			MeanDifficulty: round2(acc.difficulty / float64(acc.count)),
		}
	}

	return TimePatterns{
		PeakHours: PeakHours{
			MostProductive: mostProductive,
			MostFrequent:   mostFrequent,
		},
		HourlyDistribution: hourlyDist,
		WeeklyDistribution: weeklyDist,
		StudyConsistency:   calculateConsistencyScore(sessions, minDate, maxDate),
	}
}

// calculateConsistencyScore is the percentage of calendar days between the
// first and last session that saw at least one session.
func calculateConsistencyScore(sessions []domain.StudySession, minDate, maxDate time.Time) float64 {
	days := make(map[string]struct{})
	for _, sess := range sessions {
		days[dateKey(sess.CompletedAt)] = struct{}{}
	}

	first := truncateToDay(minDate)
	last := truncateToDay(maxDate)
	dateRange := int(last.Sub(first).Hours()/24) + 1
	if dateRange <= 0 {
		return 0
	}
	return round1(float64(len(days)) / float64(dateRange) * 100)
}

func analyzeDifficultyProgression(sessions []domain.StudySession) DifficultyAnalysis {
	difficulties := make([]float64, len(sessions))
	byTopic := make(map[string][]float64)
	for i, sess := range sessions {
		difficulties[i] = sess.Difficulty
		byTopic[sess.TopicName] = append(byTopic[sess.TopicName], sess.Difficulty)
	}
	avg := mean(difficulties)

	trend := TrendInsufficientData
	var slope, r float64
	if len(sessions) > 5 {
		slope, r = linearRegression(difficulties)
		switch {
		case slope > trendSlopeThreshold:
			trend = TrendIncreasing
		case slope < -trendSlopeThreshold:
			trend = TrendDecreasing
		default:
			trend = TrendStable
		}
	}

	topicMeans := make(map[string]float64, len(byTopic))
	for name, vals := range byTopic {
		topicMeans[name] = round2(mean(vals))
	}

	return DifficultyAnalysis{
		CurrentAvgDifficulty: round2(avg),
		Trend:                trend,
		TrendStrength:        math.Abs(slope),
		Consistency:          r * r,
		ByTopic:              topicMeans,
		Recommendation:       difficultyRecommendation(trend, avg),
	}
}

func difficultyRecommendation(trend string, avgDifficulty float64) string {
	switch {
	case trend == TrendIncreasing && avgDifficulty > 3.5:
		return "Consider reviewing fundamentals or taking breaks between difficult topics"
	case trend == TrendDecreasing:
		return "Great progress! You're mastering the material"
	case avgDifficulty < 2:
		return "Consider challenging yourself with harder topics"
	}
	return "Maintain your current study approach"
}

func calculateProductivityMetrics(sessions []domain.StudySession, now time.Time) ProductivityMetrics {
	durations := make([]float64, len(sessions))
	for i, sess := range sessions {
		durations[i] = float64(sess.DurationMinutes)
	}

	// 60-minute average sessions score 100.
	focusScore := math.Min(100, mean(durations)/60*100)

	// Falling difficulty between the oldest and newest sessions reads as
	// improved efficiency.
	window := len(sessions)
	if window > 10 {
		window = 10
	}
	olderAvg := meanDifficulty(sessions[:window])
	recentAvg := meanDifficulty(sessions[len(sessions)-window:])
	var efficiency float64
	if olderAvg > 0 {
		efficiency = (olderAvg - recentAvg) / olderAvg * 100
	}

	return ProductivityMetrics{
		FocusScore:            round1(focusScore),
		EfficiencyImprovement: round1(efficiency),
		OptimalSessionLength:  calculateOptimalSessionLength(sessions),
		BurnoutRisk:           calculateBurnoutRisk(sessions, now),
	}
}

func meanDifficulty(sessions []domain.StudySession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, sess := range sessions {
		sum += sess.Difficulty
	}
	return sum / float64(len(sessions))
}

// durationBuckets are (lower, upper] minute ranges, with the midpoint
// reported as the recommended length.
var durationBuckets = []struct {
	lower, upper int
	mid          int
}{
	{0, 15, 7},
	{15, 30, 22},
	{30, 45, 37},
	{45, 60, 52},
	{60, 120, 90},
	{120, 500, 310},
}

// calculateOptimalSessionLength picks the duration bucket whose sessions had
// the lowest mean difficulty.
func calculateOptimalSessionLength(sessions []domain.StudySession) int {
	type acc struct {
		sum   float64
		count int
	}
	accs := make([]acc, len(durationBuckets))
	for _, sess := range sessions {
		for i, b := range durationBuckets {
			if sess.DurationMinutes > b.lower && sess.DurationMinutes <= b.upper {
				accs[i].sum += sess.Difficulty
				accs[i].count++
				break
			}
		}
	}

	best := -1
	bestMean := 0.0
	for i, a := range accs {
		if a.count == 0 {
			continue
		}
		m := a.sum / float64(a.count)
		if best == -1 || m < bestMean {
			best = i
			bestMean = m
		}
	}
	if best == -1 {
		return 30
	}
	return durationBuckets[best].mid
}

func calculateBurnoutRisk(sessions []domain.StudySession, now time.Time) string {
	const recentDays = 7
	cutoff := now.AddDate(0, 0, -recentDays)

	var recent []domain.StudySession
	for _, sess := range sessions {
		if sess.CompletedAt.After(cutoff) {
			recent = append(recent, sess)
		}
	}
	if len(recent) == 0 {
		return BurnoutRiskLow
	}

	sessionsPerDay := float64(len(recent)) / recentDays
	avgDifficulty := meanDifficulty(recent)
	var totalMinutes int
	for _, sess := range recent {
		totalMinutes += sess.DurationMinutes
	}
	avgDuration := float64(totalMinutes) / float64(len(recent))

	risk := 0
	switch {
	case sessionsPerDay > 5:
		risk += 2
	case sessionsPerDay > 3:
		risk++
	}
	switch {
	case avgDifficulty > 4:
		risk += 2
	case avgDifficulty > 3.5:
		risk++
	}
	if avgDuration > 90 {
		risk++
	}

	switch {
	case risk >= 4:
		return BurnoutRiskHigh
	case risk >= 2:
		return BurnoutRiskMedium
	}
	return BurnoutRiskLow
}

func analyzeTopicPerformance(sessions []domain.StudySession) TopicPerformance {
	byTopic := make(map[string][]domain.StudySession)
	for _, sess := range sessions {
		byTopic[sess.TopicName] = append(byTopic[sess.TopicName], sess)
	}

	stats := make(map[string]TopicStats, len(byTopic))
	mastery := make(map[string]float64, len(byTopic))
	names := make([]string, 0, len(byTopic))
	for name, topicSessions := range byTopic {
		names = append(names, name)

		difficulties := make([]float64, len(topicSessions))
		var minutes int
		for i, sess := range topicSessions {
			difficulties[i] = sess.Difficulty
			minutes += sess.DurationMinutes
		}
		stats[name] = TopicStats{
			Sessions:       len(topicSessions),
			TotalMinutes:   minutes,
			MeanDuration:   round2(float64(minutes) / float64(len(topicSessions))),
			MeanDifficulty: round2(mean(difficulties)),
			DifficultyStd:  round2(stdDev(difficulties)),
		}

		if len(topicSessions) > 1 {
			slope, _ := linearRegression(difficulties)
			mastery[name] = math.Max(0, math.Min(100, 50-slope*50))
		} else {
			mastery[name] = 50
		}
	}

	// Deterministic tie-break for the weakest topic.
	sort.Strings(names)
	var focus string
	for _, name := range names {
		if focus == "" || mastery[name] < mastery[focus] {
			focus = name
		}
	}

	return TopicPerformance{
		Statistics:       stats,
		MasteryScores:    mastery,
		RecommendedFocus: focus,
	}
}

func calculateLearningVelocity(sessions []domain.StudySession) VelocityMetrics {
	if len(sessions) < 5 {
		return VelocityMetrics{Status: VelocityStatusInsufficientData}
	}

	type weekKey struct {
		year, week int
	}
	totals := make(map[weekKey]int)
	var order []weekKey
	for _, sess := range sessions {
		y, w := sess.CompletedAt.ISOWeek()
		k := weekKey{y, w}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += sess.DurationMinutes
	}
	if len(order) < 2 {
		return VelocityMetrics{Status: VelocityStatusInsufficientData}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].week < order[j].week
	})

	weekly := make([]float64, len(order))
	for i, k := range order {
		weekly[i] = float64(totals[k])
	}

	slope, _ := linearRegression(weekly)
	trend := TrendDecreasing
	if slope > 0 {
		trend = TrendIncreasing
	}

	avg := mean(weekly)
	var consistency float64
	if avg > 0 {
		consistency = round1((1 - stdDev(weekly)/avg) * 100)
	}

	return VelocityMetrics{
		Status:           VelocityStatusOK,
		CurrentVelocity:  round1(weekly[len(weekly)-1]),
		VelocityTrend:    trend,
		WeeklyAverage:    round1(avg),
		ConsistencyScore: consistency,
	}
}

// generateRecommendations derives up to five actionable suggestions from the
// completed report sections.
func generateRecommendations(analysis *PatternAnalysis) []string {
	var recs []string

	if tp := analysis.TimePatterns; tp != nil && tp.PeakHours.MostProductive != nil {
		recs = append(recs, fmt.Sprintf(
			"Schedule important study sessions around %d:00 when you're most productive",
			*tp.PeakHours.MostProductive))
	}

	if da := analysis.DifficultyAnalysis; da != nil && da.CurrentAvgDifficulty > 4 {
		recs = append(recs,
			"Current material is very challenging. Consider breaking topics into smaller chunks")
	}

	if pm := analysis.ProductivityMetrics; pm != nil {
		if pm.BurnoutRisk == BurnoutRiskHigh {
			recs = append(recs,
				"High burnout risk detected. Schedule regular breaks and vary your study topics")
		}
		if pm.OptimalSessionLength > 0 {
			recs = append(recs, fmt.Sprintf(
				"Your optimal session length is %d minutes", pm.OptimalSessionLength))
		}
	}

	if tperf := analysis.TopicPerformance; tperf != nil && tperf.RecommendedFocus != "" {
		recs = append(recs, fmt.Sprintf(
			"Focus more on '%s' which needs improvement", tperf.RecommendedFocus))
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayIndexedWeekday maps time.Weekday (Sunday=0) to Monday=0..Sunday=6.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
