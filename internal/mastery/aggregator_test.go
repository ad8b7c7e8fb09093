package mastery

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

type mockTopics map[string]string

func (m mockTopics) TopicForCard(_ context.Context, cardID string) (string, bool, error) {
	id, ok := m[cardID]
	return id, ok, nil
}

type mockMasteryRepo struct {
	records map[string]store.TopicMasteryRecord
}

func newMockMasteryRepo() *mockMasteryRepo {
	return &mockMasteryRepo{records: make(map[string]store.TopicMasteryRecord)}
}

func (m *mockMasteryRepo) Get(_ context.Context, learnerID, topicID string) (*store.TopicMasteryRecord, error) {
	rec, ok := m.records[learnerID+"/"+topicID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (m *mockMasteryRepo) Upsert(_ context.Context, rec store.TopicMasteryRecord) error {
	m.records[rec.LearnerID+"/"+rec.TopicID] = rec
	return nil
}

func (m *mockMasteryRepo) ListByLearner(_ context.Context, learnerID string) ([]store.TopicMasteryRecord, error) {
	var out []store.TopicMasteryRecord
	for _, rec := range m.records {
		if rec.LearnerID == learnerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TopicID < out[j].TopicID })
	return out, nil
}

func (m *mockMasteryRepo) DeleteByLearner(_ context.Context, learnerID string) error {
	for k, rec := range m.records {
		if rec.LearnerID == learnerID {
			delete(m.records, k)
		}
	}
	return nil
}

type mockEventLog []spacedrep.ReviewEvent

func (m mockEventLog) ListByLearner(_ context.Context, learnerID string, _ store.QueryOpts) ([]spacedrep.ReviewEvent, error) {
	var out []spacedrep.ReviewEvent
	for _, ev := range m {
		if ev.LearnerID == learnerID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func reviewEvent(card string, rating spacedrep.Rating, at time.Time) spacedrep.ReviewEvent {
	return spacedrep.ReviewEvent{
		ID:           card + at.Format(time.RFC3339),
		LearnerID:    "alice",
		CardID:       card,
		Rating:       rating,
		ResponseTime: 4 * time.Second,
		ReviewedAt:   at,
	}
}

func TestAggregator_Apply(t *testing.T) {
	ctx := context.Background()
	repo := newMockMasteryRepo()
	agg := NewAggregator(mockTopics{"c1": "t1", "c2": "t1"}, repo, nil)
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	m, err := agg.Apply(ctx, reviewEvent("c1", spacedrep.Good, at))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Score != 0.3 {
		t.Errorf("Score = %v, want 0.3", m.Score)
	}

	m, err = agg.Apply(ctx, reviewEvent("c2", spacedrep.Again, at.Add(time.Minute)))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.TotalReviews != 2 || m.CorrectReviews != 1 {
		t.Errorf("counts = %d/%d, want 1/2", m.CorrectReviews, m.TotalReviews)
	}
	if want := 0.7 * 0.3; math.Abs(m.Score-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", m.Score, want)
	}

	rec, err := repo.Get(ctx, "alice", "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.AvgResponseMs != 4000 {
		t.Errorf("AvgResponseMs = %v, want 4000", rec.AvgResponseMs)
	}
	if !rec.UpdatedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("UpdatedAt = %v", rec.UpdatedAt)
	}
}

func TestAggregator_ApplySkipsUnmappedCard(t *testing.T) {
	repo := newMockMasteryRepo()
	agg := NewAggregator(mockTopics{}, repo, nil)

	m, err := agg.Apply(context.Background(), reviewEvent("orphan", spacedrep.Good, time.Now()))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil mastery for unmapped card, got %+v", m)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected no records, got %d", len(repo.records))
	}
}

type failingTopics struct{}

func (failingTopics) TopicForCard(context.Context, string) (string, bool, error) {
	return "", false, errors.New("boom")
}

func TestAggregator_ApplyLookupError(t *testing.T) {
	agg := NewAggregator(failingTopics{}, newMockMasteryRepo(), nil)
	if _, err := agg.Apply(context.Background(), reviewEvent("c1", spacedrep.Good, time.Now())); err == nil {
		t.Fatal("expected error")
	}
}

func TestAggregator_RebuildMatchesIncremental(t *testing.T) {
	ctx := context.Background()
	topics := mockTopics{"c1": "t1", "c2": "t2", "c3": "t1"}
	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	ratings := []spacedrep.Rating{
		spacedrep.Good, spacedrep.Again, spacedrep.Easy, spacedrep.Hard,
		spacedrep.Again, spacedrep.Good, spacedrep.Good, spacedrep.Again,
	}
	cards := []string{"c1", "c2", "c3", "orphan"}

	var log mockEventLog
	incremental := newMockMasteryRepo()
	live := NewAggregator(topics, incremental, nil)
	for i, r := range ratings {
		ev := reviewEvent(cards[i%len(cards)], r, start.Add(time.Duration(i)*time.Hour))
		log = append(log, ev)
		if _, err := live.Apply(ctx, ev); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}

	rebuilt := newMockMasteryRepo()
	rebuilt.records["alice/stale"] = store.TopicMasteryRecord{LearnerID: "alice", TopicID: "stale", Score: 1}
	res, err := NewAggregator(topics, rebuilt, nil).Rebuild(ctx, "alice", log)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if res.Events != 8 || res.Topics != 2 || res.Skipped != 2 {
		t.Errorf("result = %+v, want 8 events, 2 topics, 2 skipped", res)
	}
	if len(rebuilt.records) != len(incremental.records) {
		t.Fatalf("rebuilt %d records, incremental %d", len(rebuilt.records), len(incremental.records))
	}
	for k, want := range incremental.records {
		got, ok := rebuilt.records[k]
		if !ok {
			t.Fatalf("missing rebuilt record %s", k)
		}
		if got != want {
			t.Errorf("record %s = %+v, want %+v", k, got, want)
		}
	}
}

const testCourse = `
code: TST
name: Test Exam
version: 1.0.0
passing_score: 0.6
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

func TestSignals(t *testing.T) {
	course := mustCourse(t)
	records := []store.TopicMasteryRecord{
		{LearnerID: "alice", TopicID: "t1", Score: 0.8, TotalReviews: 5, CorrectReviews: 4},
		{LearnerID: "alice", TopicID: "elsewhere", Score: 1, TotalReviews: 9},
	}
	states := []store.TopicCardState{
		{CardState: spacedrep.CardState{State: spacedrep.Review, Stability: 40, Lapses: 1}, TopicID: "t1"},
		{CardState: spacedrep.CardState{State: spacedrep.Relearning, Stability: 2, Lapses: 2}, TopicID: "t1"},
		{CardState: spacedrep.CardState{State: spacedrep.Learning}, TopicID: "t3"},
		{CardState: spacedrep.CardState{State: spacedrep.Review, Stability: 99}, TopicID: "elsewhere"},
	}

	got := Signals(course, records, states)
	if len(got) != 3 {
		t.Fatalf("got %d signals, want 3", len(got))
	}

	t1 := got[0]
	if t1.ID != "t1" || t1.WeightPct != 30 || t1.Section != "Section One" {
		t.Errorf("t1 topic = %+v", t1.WeightedTopic)
	}
	if t1.Score != 0.8 || !t1.Studied() {
		t.Errorf("t1 score = %v studied = %v", t1.Score, t1.Studied())
	}
	if t1.Cards != 2 || t1.Lapses != 3 || t1.MasteredCards != 1 {
		t.Errorf("t1 cards = %d lapses = %d mastered = %d", t1.Cards, t1.Lapses, t1.MasteredCards)
	}
	if t1.LapseMastery != 0.5 {
		t.Errorf("t1 lapse mastery = %v, want 0.5", t1.LapseMastery)
	}

	t2 := got[1]
	if t2.Studied() || t2.Score != 0 || t2.Cards != 0 || t2.LapseMastery != 0 {
		t.Errorf("t2 = %+v, want empty", t2)
	}

	t3 := got[2]
	if t3.WeightPct != 40 || t3.Cards != 1 || t3.LapseMastery != 1 {
		t.Errorf("t3 = %+v", t3)
	}
}
