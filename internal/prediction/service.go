package prediction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/metrics"
	"github.com/abhisek/mnemos/internal/store"
)

// Repos is the store surface the service reads and writes.
type Repos interface {
	mastery.Reader
	Cards() store.CardRepo
	Events() store.ReviewEventRepo
	Predictions() store.PredictionRepo
}

// Service runs the engine against stored learner data.
type Service struct {
	repos  Repos
	engine *Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a prediction service.
func NewService(repos Repos, engine *Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repos: repos, engine: engine, logger: logger, now: time.Now}
}

// Predict loads a learner's topic signals and scores the course.
func (s *Service) Predict(ctx context.Context, learnerID string, course *catalog.Course) (*Result, error) {
	signals, err := mastery.LoadSignals(ctx, s.repos, learnerID, course)
	if err != nil {
		return nil, err
	}
	res := s.engine.Predict(course, signals)
	metrics.Inc(metrics.PredictionsTotal)
	s.logger.Debug("prediction",
		"learner", learnerID,
		"course", course.Code,
		"weighted_mastery", res.WeightedMastery,
		"pass_probability", res.PassProbability)
	return res, nil
}

// Save records a prediction in the snapshot history.
func (s *Service) Save(ctx context.Context, learnerID string, res *Result) (store.PredictionSnapshot, error) {
	snap := store.PredictionSnapshot{
		SnapshotID:      uuid.NewString(),
		LearnerID:       learnerID,
		CourseCode:      res.CourseCode,
		PredictedScore:  res.PredictedScore,
		PassProbability: res.PassProbability,
		WeightedMastery: res.WeightedMastery,
		WeakTopicCount:  res.WeakTopicCount,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repos.Predictions().Save(ctx, snap); err != nil {
		return store.PredictionSnapshot{}, err
	}
	return snap, nil
}

// History returns saved snapshots, newest first.
func (s *Service) History(ctx context.Context, learnerID, courseCode string, limit int) ([]store.PredictionSnapshot, error) {
	return s.repos.Predictions().List(ctx, learnerID, courseCode, limit)
}

// ROI estimates study time for a learner on a course.
func (s *Service) ROI(ctx context.Context, learnerID string, course *catalog.Course) (ROIResult, error) {
	total, err := s.repos.Cards().CountByCourse(ctx, course.Code)
	if err != nil {
		return ROIResult{}, err
	}
	states, err := s.repos.CardStates().ListByLearner(ctx, learnerID, course.Code)
	if err != nil {
		return ROIResult{}, err
	}
	mastered := 0
	for _, st := range states {
		if mastery.IsMastered(st.CardState) {
			mastered++
		}
	}
	count, latency, err := s.repos.Events().LatencyStats(ctx, learnerID, course.Code)
	if err != nil {
		return ROIResult{}, err
	}
	return s.engine.ROI(ROIInput{
		TotalCards:        total,
		MasteredCards:     mastered,
		ReviewCount:       count,
		TotalResponseTime: latency,
	}), nil
}
