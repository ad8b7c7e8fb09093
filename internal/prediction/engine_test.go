package prediction

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/store"
)

const testCourse = `
code: TST
name: Test Exam
version: 1.0.0
passing_score: 0.75
topics:
  - id: s1
    name: Section One
    weight_pct: 60
    children:
      - {id: t1, name: Topic One, weight_pct: 50}
      - {id: t2, name: Topic Two, weight_pct: 50}
  - {id: t3, name: Topic Three, weight_pct: 40}
`

func mustCourse(t *testing.T) *catalog.Course {
	t.Helper()
	c, err := catalog.ParseCourse([]byte(testCourse))
	if err != nil {
		t.Fatalf("ParseCourse: %v", err)
	}
	return c
}

func mustEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func signalsWithScores(t *testing.T, course *catalog.Course, scores map[string]float64) []mastery.TopicSignal {
	t.Helper()
	var records []store.TopicMasteryRecord
	for id, score := range scores {
		records = append(records, store.TopicMasteryRecord{LearnerID: "alice", TopicID: id, Score: score, TotalReviews: 1})
	}
	return mastery.Signals(course, records, nil)
}

func TestPredict_AtPassingScore(t *testing.T) {
	course := mustCourse(t)
	e := mustEngine(t, DefaultConfig())

	res := e.Predict(course, signalsWithScores(t, course, map[string]float64{"t1": 0.75, "t2": 0.75, "t3": 0.75}))

	if math.Abs(res.WeightedMastery-0.75) > 1e-9 {
		t.Errorf("WeightedMastery = %v, want 0.75", res.WeightedMastery)
	}
	if math.Abs(res.PassProbability-0.5) > 1e-6 {
		t.Errorf("PassProbability = %v, want 0.5", res.PassProbability)
	}
	if math.Abs(res.PredictedScore-75) > 1e-6 {
		t.Errorf("PredictedScore = %v, want 75", res.PredictedScore)
	}
	if len(res.WeakTopics) != 0 {
		t.Errorf("expected no weak topics, got %v", res.WeakTopics)
	}
	if res.TotalTopics != 3 || res.StudiedTopics != 3 {
		t.Errorf("topics = %d/%d, want 3/3", res.StudiedTopics, res.TotalTopics)
	}
	if res.Recommendation.Readiness != ReadinessFoundations {
		t.Errorf("Readiness = %v, want foundations", res.Recommendation.Readiness)
	}
}

func TestPredict_NothingStudied(t *testing.T) {
	course := mustCourse(t)
	e := mustEngine(t, Config{DefaultSecondsPerCard: 120})

	res := e.Predict(course, mastery.Signals(course, nil, nil))

	if res.PredictedScore != 0 || res.WeightedMastery != 0 {
		t.Errorf("score = %v mastery = %v, want 0", res.PredictedScore, res.WeightedMastery)
	}
	if res.StudiedTopics != 0 {
		t.Errorf("StudiedTopics = %d, want 0", res.StudiedTopics)
	}
	var ids []string
	for _, w := range res.WeakTopics {
		ids = append(ids, w.ID)
	}
	want := []string{"t3", "t1", "t2"}
	if len(ids) != len(want) {
		t.Fatalf("weak topics = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("weak topics = %v, want %v", ids, want)
		}
	}
	if res.Recommendation.Readiness != ReadinessStart {
		t.Errorf("Readiness = %v, want start", res.Recommendation.Readiness)
	}
}

func TestPredict_WeakTopicOrderingAndLimit(t *testing.T) {
	course := mustCourse(t)
	e := mustEngine(t, Config{WeakTopicLimit: 2, DefaultSecondsPerCard: 120})

	// priorities: t1 30*0.9=27, t2 30*0.6=18, t3 40*0.6=24
	res := e.Predict(course, signalsWithScores(t, course, map[string]float64{"t1": 0.1, "t2": 0.4, "t3": 0.4}))

	if res.WeakTopicCount != 3 {
		t.Errorf("WeakTopicCount = %d, want 3", res.WeakTopicCount)
	}
	if len(res.WeakTopics) != 2 {
		t.Fatalf("len(WeakTopics) = %d, want 2", len(res.WeakTopics))
	}
	if res.WeakTopics[0].ID != "t1" || res.WeakTopics[1].ID != "t3" {
		t.Errorf("order = %s, %s; want t1, t3", res.WeakTopics[0].ID, res.WeakTopics[1].ID)
	}
}

func TestPredict_ExposesLapseMastery(t *testing.T) {
	course := mustCourse(t)
	e := mustEngine(t, DefaultConfig())
	signals := mastery.Signals(course, nil, []store.TopicCardState{{TopicID: "t3"}})

	res := e.Predict(course, signals)
	for _, w := range res.WeakTopics {
		want := 0.0
		if w.ID == "t3" {
			want = 1
		}
		if w.LapseMastery != want {
			t.Errorf("%s LapseMastery = %v, want %v", w.ID, w.LapseMastery, want)
		}
	}
}

func TestPassProbability_Monotone(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		p := PassProbability(float64(i)/100, 0.7)
		if p < prev {
			t.Fatalf("PassProbability decreased at %d: %v < %v", i, p, prev)
		}
		if p <= 0 || p >= 1 {
			t.Fatalf("PassProbability(%v) = %v out of (0,1)", float64(i)/100, p)
		}
		prev = p
	}
}

func TestRecommendation_Ladder(t *testing.T) {
	tests := []struct {
		p    float64
		want Readiness
	}{
		{0, ReadinessStart},
		{0.29, ReadinessStart},
		{0.3, ReadinessFoundations},
		{0.59, ReadinessFoundations},
		{0.6, ReadinessFocus},
		{0.84, ReadinessFocus},
		{0.85, ReadinessReady},
		{1, ReadinessReady},
	}
	prev := ReadinessStart
	for _, tt := range tests {
		got := recommend(tt.p, 2)
		if got.Readiness != tt.want {
			t.Errorf("recommend(%v) = %v, want %v", tt.p, got.Readiness, tt.want)
		}
		if got.Readiness < prev {
			t.Errorf("readiness not monotone at %v", tt.p)
		}
		if got.Message == "" {
			t.Errorf("empty message at %v", tt.p)
		}
		prev = got.Readiness
	}
}

func TestROI(t *testing.T) {
	e := mustEngine(t, DefaultConfig())

	t.Run("default pace", func(t *testing.T) {
		got := e.ROI(ROIInput{TotalCards: 100, MasteredCards: 10})
		if got.RemainingCards != 90 || got.SecondsPerCard != 120 {
			t.Errorf("got %+v", got)
		}
		if math.Abs(got.EstimatedHoursRemaining-3) > 1e-9 {
			t.Errorf("EstimatedHoursRemaining = %v, want 3", got.EstimatedHoursRemaining)
		}
		if got.TotalStudyHours != 0 {
			t.Errorf("TotalStudyHours = %v, want 0", got.TotalStudyHours)
		}
	})

	t.Run("observed pace", func(t *testing.T) {
		got := e.ROI(ROIInput{TotalCards: 10, MasteredCards: 4, ReviewCount: 60, TotalResponseTime: time.Hour})
		if got.SecondsPerCard != 60 {
			t.Errorf("SecondsPerCard = %v, want 60", got.SecondsPerCard)
		}
		if math.Abs(got.EstimatedHoursRemaining-0.1) > 1e-9 {
			t.Errorf("EstimatedHoursRemaining = %v, want 0.1", got.EstimatedHoursRemaining)
		}
		if got.TotalStudyHours != 1 {
			t.Errorf("TotalStudyHours = %v, want 1", got.TotalStudyHours)
		}
		if math.Abs(got.Coverage-0.4) > 1e-9 {
			t.Errorf("Coverage = %v, want 0.4", got.Coverage)
		}
	})

	t.Run("remaining floors at zero", func(t *testing.T) {
		got := e.ROI(ROIInput{TotalCards: 3, MasteredCards: 5})
		if got.RemainingCards != 0 || got.EstimatedHoursRemaining != 0 {
			t.Errorf("got %+v", got)
		}
	})
}

func TestNewEngine_RejectsBadPace(t *testing.T) {
	if _, err := NewEngine(Config{}); err == nil {
		t.Error("expected error for zero seconds per card")
	}
}
