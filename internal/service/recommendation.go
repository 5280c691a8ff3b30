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

// Focus levels derived from recent session lengths.
const (
	FocusLevelLow    = "low"
	FocusLevelMedium = "medium"
	FocusLevelHigh   = "high"
)

// Performance trend labels for the current-state analysis.
const (
	PerformanceImproving  = "improving"
	PerformanceStable     = "stable"
	PerformanceStruggling = "struggling"
)

// DailySchedule is the recommended shape of a study day.
type DailySchedule struct {
	RecommendedSessions int      `json:"recommended_sessions"`
	SessionLength       int      `json:"session_length"`
	BreakDuration       int      `json:"break_duration"`
	BestTimes           []string `json:"best_times,omitempty"`
	TotalTime           int      `json:"total_time"`
}

// TopicPriority ranks one topic for upcoming study attention.
type TopicPriority struct {
	Topic          string  `json:"topic"`
	PriorityScore  int     `json:"priority_score"`
	LastStudied    string  `json:"last_studied"`
	TotalMinutes   int     `json:"total_time"`
	MeanDifficulty float64 `json:"difficulty"`
	Recommendation string  `json:"recommendation"`
}

// HundredHourMilestone predicts when total study time reaches 100 hours.
type HundredHourMilestone struct {
	Weeks        float64 `json:"weeks"`
	Date         string  `json:"date"`
	CurrentHours float64 `json:"current_hours"`
}

// DifficultyMilestone predicts when the material will start feeling
// comfortable, assuming steady improvement.
type DifficultyMilestone struct {
	WeeksToComfortable float64 `json:"weeks_to_comfortable"`
	CurrentDifficulty  float64 `json:"current_difficulty"`
}

// MilestonePredictions holds the forecastable milestones. Nil fields mean
// not enough history to predict.
type MilestonePredictions struct {
	Status                string                `json:"status"`
	Next100Hours          *HundredHourMilestone `json:"next_100_hours,omitempty"`
	DifficultyImprovement *DifficultyMilestone  `json:"difficulty_improvement,omitempty"`
}

// CurrentState is a snapshot of the learner's recent behavior used to shape
// the plan.
type CurrentState struct {
	AvgDailyMinutes  float64 `json:"avg_daily_minutes"`
	CurrentStreak    int     `json:"current_streak"`
	PerformanceTrend string  `json:"performance_trend"`
	FocusLevel       string  `json:"focus_level"`
	ReviewCompliance float64 `json:"review_compliance"`
}

// StudyPlan is the full personalized plan.
type StudyPlan struct {
	DailySchedule        DailySchedule        `json:"daily_schedule"`
	TopicPriorities      []TopicPriority      `json:"topic_priorities"`
	StudyTechniques      []string             `json:"study_techniques"`
	MilestonePredictions MilestonePredictions `json:"milestone_predictions"`
	PersonalizedTips     []string             `json:"personalized_tips"`
}

// RecommendationService generates personalized study plans from session and
// review history.
type RecommendationService interface {
	// GenerateStudyPlan builds a plan sized to availableHours of study time
	// per day. Users without history get a sensible default plan.
	GenerateStudyPlan(ctx context.Context, userID uuid.UUID, availableHours float64) (*StudyPlan, error)
}

// recommendationServiceImpl implements the RecommendationService interface.
type recommendationServiceImpl struct {
	sessions store.SessionStore
	reviews  store.ReviewStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(
	sessions store.SessionStore,
	reviews store.ReviewStore,
	logger *slog.Logger,
) (RecommendationService, error) {
	if sessions == nil {
		return nil, fmt.Errorf("recommendation service: session store cannot be nil")
	}
	if reviews == nil {
		return nil, fmt.Errorf("recommendation service: review store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &recommendationServiceImpl{
		sessions: sessions,
		reviews:  reviews,
		logger:   logger.With(slog.String("component", "recommendation_service")),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// GenerateStudyPlan implements RecommendationService.GenerateStudyPlan.
func (s *recommendationServiceImpl) GenerateStudyPlan(
	ctx context.Context,
	userID uuid.UUID,
	availableHours float64,
) (*StudyPlan, error) {
	sessions, err := s.sessions.ListByUserSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}

	now := s.now()
	if len(sessions) == 0 {
		s.logger.DebugContext(ctx, "no session history, using default plan",
			slog.String("user_id", userID.String()))
		return defaultStudyPlan(availableHours), nil
	}

	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}

	return buildStudyPlan(sessions, reviews, availableHours, now), nil
}

// defaultStudyPlan is the plan for users with no history yet.
func defaultStudyPlan(availableHours float64) *StudyPlan {
	sessionLength := 45
	if half := int(availableHours * 60 / 2); half < sessionLength {
		sessionLength = half
	}
	return &StudyPlan{
		DailySchedule: DailySchedule{
			RecommendedSessions: 2,
			SessionLength:       sessionLength,
			BreakDuration:       10,
			BestTimes:           []string{"10:00-12:00"},
			TotalTime:           2 * (sessionLength + 10),
		},
		StudyTechniques: []string{
			"Start with 25-minute focused sessions (Pomodoro Technique)",
			"Review notes immediately after each session",
			"Use active recall instead of passive reading",
		},
		MilestonePredictions: MilestonePredictions{Status: VelocityStatusInsufficientData},
		PersonalizedTips: []string{
			"Build a consistent daily study habit",
			"Track your progress to stay motivated",
		},
	}
}

func buildStudyPlan(
	sessions []domain.StudySession,
	reviews []domain.Review,
	availableHours float64,
	now time.Time,
) *StudyPlan {
	state := analyzeCurrentState(sessions, reviews, now)
	patterns := identifyLearningPatterns(sessions)

	return &StudyPlan{
		DailySchedule:        createDailySchedule(patterns, availableHours, state),
		TopicPriorities:      prioritizeTopics(sessions, reviews, now),
		StudyTechniques:      recommendTechniques(patterns),
		MilestonePredictions: predictMilestones(sessions, now),
		PersonalizedTips:     generateTips(patterns, state),
	}
}

// analyzeCurrentState summarizes the last 7 days of behavior plus overall
// review compliance.
func analyzeCurrentState(sessions []domain.StudySession, reviews []domain.Review, now time.Time) CurrentState {
	state := CurrentState{
		PerformanceTrend: PerformanceStable,
		FocusLevel:       FocusLevelMedium,
	}

	cutoff := now.AddDate(0, 0, -7)
	var recent []domain.StudySession
	for _, sess := range sessions {
		if sess.CompletedAt.After(cutoff) {
			recent = append(recent, sess)
		}
	}

	if len(recent) > 0 {
		dailyMinutes := make(map[string]int)
		dates := make(map[string]struct{})
		var totalMinutes int
		for _, sess := range recent {
			key := dateKey(sess.CompletedAt)
			dailyMinutes[key] += sess.DurationMinutes
			dates[key] = struct{}{}
			totalMinutes += sess.DurationMinutes
		}

		var sum float64
		for _, minutes := range dailyMinutes {
			sum += float64(minutes)
		}
		state.AvgDailyMinutes = sum / float64(len(dailyMinutes))

		state.CurrentStreak = currentStreak(dates, now)

		// Falling difficulty between the oldest and newest recent sessions
		// reads as improvement.
		if len(recent) > 3 {
			older := meanDifficulty(recent[:3])
			newer := meanDifficulty(recent[len(recent)-3:])
			if newer < older-0.3 {
				state.PerformanceTrend = PerformanceImproving
			} else if newer > older+0.3 {
				state.PerformanceTrend = PerformanceStruggling
			}
		}

		avgDuration := float64(totalMinutes) / float64(len(recent))
		if avgDuration > 60 {
			state.FocusLevel = FocusLevelHigh
		} else if avgDuration < 30 {
			state.FocusLevel = FocusLevelLow
		}
	}

	var due, completed int
	for _, r := range reviews {
		if r.ScheduledFor.After(now) {
			continue
		}
		due++
		if r.Completed() {
			completed++
		}
	}
	if due > 0 {
		state.ReviewCompliance = float64(completed) / float64(due)
	}

	return state
}

// currentStreak counts consecutive study days walking back from today.
// Today itself is forgiven if no session happened yet.
func currentStreak(dates map[string]struct{}, now time.Time) int {
	day := truncateToDay(now)
	streak := 0
	if _, ok := dates[dateKey(day)]; ok {
		streak++
	}
	day = day.AddDate(0, 0, -1)
	for {
		if _, ok := dates[dateKey(day)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// dayparts bucket the clock into coarse study windows.
var dayparts = []struct {
	name       string
	start, end int
}{
	{"morning", 5, 12},
	{"afternoon", 12, 18},
	{"evening", 18, 23},
	{"night", 23, 5},
}

// patternProfile describes the sessions that fell into one daypart.
type patternProfile struct {
	AvgDuration   float64 `json:"avg_duration"`
	AvgDifficulty float64 `json:"avg_difficulty"`
	PreferredHour int     `json:"preferred_hour"`
	SessionCount  int     `json:"session_count"`
}

// learningPatterns groups sessions by daypart and names the dominant one.
type learningPatterns struct {
	Analyzed        bool                      `json:"analyzed"`
	DominantPattern string                    `json:"dominant_pattern,omitempty"`
	Patterns        map[string]patternProfile `json:"patterns,omitempty"`
	VarietyScore    float64                   `json:"variety_score,omitempty"`
}

func daypartFor(hour int) string {
	for _, p := range dayparts {
		if p.start < p.end {
			if hour >= p.start && hour < p.end {
				return p.name
			}
		} else if hour >= p.start || hour < p.end {
			return p.name
		}
	}
	return "night"
}

// identifyLearningPatterns buckets the history by daypart. Too little
// history yields an unanalyzed result and the generic defaults downstream.
func identifyLearningPatterns(sessions []domain.StudySession) learningPatterns {
	if len(sessions) < 10 {
		return learningPatterns{}
	}

	type acc struct {
		minutes    int
		difficulty float64
		count      int
		hourCounts [24]int
	}
	accs := make(map[string]*acc)
	for _, sess := range sessions {
		part := daypartFor(sess.CompletedAt.Hour())
		a := accs[part]
		if a == nil {
			a = &acc{}
			accs[part] = a
		}
		a.minutes += sess.DurationMinutes
		a.difficulty += sess.Difficulty
		a.count++
		a.hourCounts[sess.CompletedAt.Hour()]++
	}

	profiles := make(map[string]patternProfile, len(accs))
	var dominant string
	dominantCount := 0
	for _, part := range dayparts {
		a := accs[part.name]
		if a == nil {
			continue
		}
		preferred := 0
		for h, c := range a.hourCounts {
			if c > a.hourCounts[preferred] {
				preferred = h
			}
		}
		profiles[part.name] = patternProfile{
			AvgDuration:   float64(a.minutes) / float64(a.count),
			AvgDifficulty: a.difficulty / float64(a.count),
			PreferredHour: preferred,
			SessionCount:  a.count,
		}
		if a.count > dominantCount {
			dominantCount = a.count
			dominant = part.name
		}
	}

	return learningPatterns{
		Analyzed:        true,
		DominantPattern: dominant,
		Patterns:        profiles,
		VarietyScore:    float64(len(profiles)) / float64(len(dayparts)),
	}
}

func createDailySchedule(patterns learningPatterns, availableHours float64, state CurrentState) DailySchedule {
	schedule := DailySchedule{
		RecommendedSessions: 2,
		SessionLength:       45,
		BreakDuration:       15,
	}

	if patterns.Analyzed {
		dominant := patterns.Patterns[patterns.DominantPattern]

		length := int(dominant.AvgDuration)
		if length < 25 {
			length = 25
		}
		if length > 90 {
			length = 90
		}
		schedule.SessionLength = length

		h := dominant.PreferredHour
		schedule.BestTimes = []string{
			fmt.Sprintf("%02d:00-%02d:00", h, (h+1)%24),
			fmt.Sprintf("%02d:00-%02d:00", (h+2)%24, (h+3)%24),
		}
	}

	maxSessions := int(availableHours * 60 / float64(schedule.SessionLength+schedule.BreakDuration))
	if maxSessions < schedule.RecommendedSessions {
		schedule.RecommendedSessions = maxSessions
	}
	if schedule.RecommendedSessions > 3 {
		schedule.RecommendedSessions = 3
	}

	switch state.FocusLevel {
	case FocusLevelLow:
		if schedule.SessionLength > 30 {
			schedule.SessionLength = 30
		}
		schedule.BreakDuration = 20
	case FocusLevelHigh:
		if schedule.SessionLength > 60 {
			schedule.SessionLength = 60
		}
	}

	schedule.TotalTime = schedule.RecommendedSessions * (schedule.SessionLength + schedule.BreakDuration)
	return schedule
}

func prioritizeTopics(sessions []domain.StudySession, reviews []domain.Review, now time.Time) []TopicPriority {
	type topicAcc struct {
		minutes        int
		difficultySum  float64
		lastDifficulty float64
		lastStudied    time.Time
		count          int
	}
	byTopic := make(map[string]*topicAcc)
	var names []string
	for _, sess := range sessions {
		a := byTopic[sess.TopicName]
		if a == nil {
			a = &topicAcc{}
			byTopic[sess.TopicName] = a
			names = append(names, sess.TopicName)
		}
		a.minutes += sess.DurationMinutes
		a.difficultySum += sess.Difficulty
		a.count++
		if sess.CompletedAt.After(a.lastStudied) {
			a.lastStudied = sess.CompletedAt
			a.lastDifficulty = sess.Difficulty
		}
	}

	reviewQuality := make(map[string][]float64)
	for _, r := range reviews {
		if r.Completed() {
			reviewQuality[r.TopicName] = append(reviewQuality[r.TopicName], float64(*r.Quality))
		}
	}

	priorities := make([]TopicPriority, 0, len(names))
	for _, name := range names {
		a := byTopic[name]
		score := 0

		daysSince := int(now.Sub(a.lastStudied).Hours() / 24)
		if daysSince > 7 {
			score += 20
		} else if daysSince > 3 {
			score += 10
		}

		if a.lastDifficulty > 3.5 {
			score += 15
		}

		if float64(a.minutes)/60 < 2 {
			score += 10
		}

		if qualities := reviewQuality[name]; len(qualities) > 0 && mean(qualities) < 3 {
			score += 15
		}

		priorities = append(priorities, TopicPriority{
			Topic:          name,
			PriorityScore:  score,
			LastStudied:    a.lastStudied.Format("2006-01-02"),
			TotalMinutes:   a.minutes,
			MeanDifficulty: round1(a.difficultySum / float64(a.count)),
			Recommendation: topicRecommendation(score, a.lastDifficulty, a.minutes),
		})
	}

	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].PriorityScore > priorities[j].PriorityScore
	})
	if len(priorities) > 5 {
		priorities = priorities[:5]
	}
	return priorities
}

func topicRecommendation(score int, lastDifficulty float64, totalMinutes int) string {
	switch {
	case score > 40:
		return "High priority - schedule a session today"
	case score > 25:
		return "Medium priority - review within 3 days"
	case lastDifficulty > 4:
		return "Difficult topic - consider breaking into subtopics"
	case totalMinutes < 60:
		return "Needs more practice time"
	}
	return "On track - maintain regular review"
}

func recommendTechniques(patterns learningPatterns) []string {
	var techniques []string

	if patterns.Analyzed {
		dominant := patterns.Patterns[patterns.DominantPattern]

		if dominant.AvgDuration < 30 {
			techniques = append(techniques,
				"Try the Pomodoro Technique: 25 minutes focused study, 5 minute break")
		} else if dominant.AvgDuration > 60 {
			techniques = append(techniques,
				"Use the 50-10 rule: 50 minutes study, 10 minute break",
				"Include active breaks with light physical activity")
		}

		if dominant.AvgDifficulty > 3.5 {
			techniques = append(techniques,
				"Break complex topics into smaller, manageable chunks",
				"Use the Feynman Technique: explain concepts in simple terms")
		} else if dominant.AvgDifficulty < 2.5 {
			techniques = append(techniques,
				"Challenge yourself with practice problems",
				"Try teaching the material to someone else")
		}
	}

	techniques = append(techniques,
		"Use active recall instead of passive re-reading",
		"Create visual summaries or mind maps",
		"Test yourself regularly with practice problems")

	if len(techniques) > 5 {
		techniques = techniques[:5]
	}
	return techniques
}

func predictMilestones(sessions []domain.StudySession, now time.Time) MilestonePredictions {
	if len(sessions) < 5 {
		return MilestonePredictions{Status: VelocityStatusInsufficientData}
	}

	type weekKey struct {
		year, week int
	}
	weeklyTotals := make(map[weekKey]int)
	var totalMinutes int
	for _, sess := range sessions {
		y, w := sess.CompletedAt.ISOWeek()
		weeklyTotals[weekKey{y, w}] += sess.DurationMinutes
		totalMinutes += sess.DurationMinutes
	}
	if len(weeklyTotals) < 2 {
		return MilestonePredictions{Status: VelocityStatusInsufficientData}
	}

	var weeklySum int
	for _, minutes := range weeklyTotals {
		weeklySum += minutes
	}
	avgWeeklyMinutes := float64(weeklySum) / float64(len(weeklyTotals))

	predictions := MilestonePredictions{Status: VelocityStatusOK}

	// 100 hours of total study time.
	const hundredHoursMinutes = 6000
	if avgWeeklyMinutes > 0 {
		remaining := math.Max(0, hundredHoursMinutes-float64(totalMinutes))
		weeks := remaining / avgWeeklyMinutes
		predictions.Next100Hours = &HundredHourMilestone{
			Weeks:        round1(weeks),
			Date:         now.Add(time.Duration(weeks * 7 * 24 * float64(time.Hour))).Format("2006-01-02"),
			CurrentHours: round1(float64(totalMinutes) / 60),
		}
	}

	if len(sessions) > 10 {
		recentAvg := meanDifficulty(sessions[len(sessions)-5:])
		// Assumes roughly 0.1 difficulty reduction per week of practice.
		const improvementRate = 0.1
		weeks := math.Max(0, (recentAvg-2.0)/improvementRate)
		predictions.DifficultyImprovement = &DifficultyMilestone{
			WeeksToComfortable: round1(weeks),
			CurrentDifficulty:  round1(recentAvg),
		}
	}

	return predictions
}

func generateTips(patterns learningPatterns, state CurrentState) []string {
	var tips []string

	if state.CurrentStreak > 7 {
		tips = append(tips, "Great streak! Keep the momentum going")
	} else if state.CurrentStreak == 0 {
		tips = append(tips, "Start a new streak today - consistency is key")
	}

	switch state.PerformanceTrend {
	case PerformanceImproving:
		tips = append(tips, "You're making great progress! Consider challenging yourself more")
	case PerformanceStruggling:
		tips = append(tips, "Take time to review fundamentals before moving forward")
	}

	if state.ReviewCompliance < 0.7 {
		tips = append(tips, "Complete your reviews on time for better retention")
	}

	switch state.FocusLevel {
	case FocusLevelLow:
		tips = append(tips,
			"Try studying in a distraction-free environment",
			"Start with just 15-minute sessions and build up")
	case FocusLevelHigh:
		tips = append(tips, "Your focus is excellent! Ensure you take breaks to avoid burnout")
	}

	if patterns.Analyzed && patterns.VarietyScore < 0.5 {
		tips = append(tips, "Try varying your study times and session lengths")
	}

	if len(tips) > 5 {
		tips = tips[:5]
	}
	return tips
}
