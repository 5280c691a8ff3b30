package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/intelligence-api/internal/domain"
)

// fakeSessionStore is a hand-rolled SessionStore backed by slices and
// canned aggregate answers.
type fakeSessionStore struct {
	sessions      []domain.StudySession
	difficultyAvg *float64
	bestHour      *int
	countToday    int
	err           error
}

func (f *fakeSessionStore) Create(_ context.Context, session *domain.StudySession) error {
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionStore) ListByUserSince(
	_ context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]domain.StudySession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.StudySession
	for _, s := range f.sessions {
		if s.UserID == userID && s.CompletedAt.After(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) TopicDifficultyAvg(
	_ context.Context,
	_, _ uuid.UUID,
) (*float64, error) {
	return f.difficultyAvg, f.err
}

func (f *fakeSessionStore) BestPerformanceHour(_ context.Context, _ uuid.UUID) (*int, error) {
	return f.bestHour, f.err
}

func (f *fakeSessionStore) CountCompletedOn(
	_ context.Context,
	_ uuid.UUID,
	_ time.Time,
) (int, error) {
	return f.countToday, f.err
}

// fakeReviewStore is the ReviewStore counterpart.
type fakeReviewStore struct {
	reviews      []domain.Review
	improvement  *float64
	observations []domain.QualityObservation
	state        domain.SchedulingState
	topicName    string
	stateErr     error
	err          error
}

func (f *fakeReviewStore) Create(_ context.Context, review *domain.Review) error {
	if f.err != nil {
		return f.err
	}
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeReviewStore) QualityImprovement(_ context.Context, _ uuid.UUID) (*float64, error) {
	return f.improvement, f.err
}

func (f *fakeReviewStore) ListQualityObservations(
	_ context.Context,
	_ uuid.UUID,
	limit int,
) ([]domain.QualityObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.observations) > limit {
		return f.observations[:limit], nil
	}
	return f.observations, nil
}

func (f *fakeReviewStore) LatestStateForTopic(
	_ context.Context,
	_, _ uuid.UUID,
) (domain.SchedulingState, string, error) {
	if f.stateErr != nil {
		return domain.SchedulingState{}, "", f.stateErr
	}
	return f.state, f.topicName, nil
}

func (f *fakeReviewStore) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
