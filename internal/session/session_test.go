package session

import (
	"testing"
	"time"

	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func testQueue() []Item {
	return []Item{
		{Card: store.Card{CardID: "c1", TopicID: "t1", Front: "front 1", Back: "back 1"}},
		{Card: store.Card{CardID: "c2", TopicID: "t2", Front: "front 2", Back: "back 2"}},
	}
}

func outcome(card string, rating spacedrep.Rating, before, after spacedrep.State, score float64) *review.Outcome {
	return &review.Outcome{
		State: spacedrep.CardState{CardID: card, State: after},
		Event: spacedrep.ReviewEvent{CardID: card, Rating: rating, StateBefore: before, StateAfter: after},
		Mastery: &mastery.TopicMastery{
			Score: score,
		},
	}
}

func TestNewEmptyQueueIsDone(t *testing.T) {
	s := New("alice", nil, nil, t0)
	if s.Phase != PhaseDone {
		t.Errorf("Phase = %v, want PhaseDone", s.Phase)
	}
	if s.Current() != nil {
		t.Error("expected no current card")
	}
	if s.Progress() != 1 {
		t.Errorf("Progress = %v, want 1", s.Progress())
	}
}

func TestRevealAndSubmit(t *testing.T) {
	s := New("alice", nil, testQueue(), t0)

	if _, ok := s.BeginSubmit(spacedrep.Good, t0); ok {
		t.Fatal("submit allowed before reveal")
	}
	s.Reveal()
	if s.Phase != PhaseBack {
		t.Fatalf("Phase = %v, want PhaseBack", s.Phase)
	}
	if _, ok := s.BeginSubmit(spacedrep.Rating(9), t0); ok {
		t.Fatal("submit allowed with invalid rating")
	}

	sub, ok := s.BeginSubmit(spacedrep.Good, t0.Add(7*time.Second))
	if !ok {
		t.Fatal("expected submission")
	}
	if sub.CardID != "c1" || sub.LearnerID != "alice" || sub.ResponseTime != 7*time.Second {
		t.Errorf("submission = %+v", sub)
	}
	if s.Phase != PhaseSubmitting {
		t.Errorf("Phase = %v, want PhaseSubmitting", s.Phase)
	}

	s.Fail()
	if s.Phase != PhaseBack {
		t.Errorf("Phase after Fail = %v, want PhaseBack", s.Phase)
	}
}

func TestRecordAdvancesAndTallies(t *testing.T) {
	s := New("alice", nil, testQueue(), t0)

	s.Reveal()
	s.BeginSubmit(spacedrep.Easy, t0)
	s.Record(outcome("c1", spacedrep.Easy, spacedrep.New, spacedrep.Review, 0.3), t0.Add(10*time.Second))

	if s.Index != 1 || s.Phase != PhaseFront {
		t.Fatalf("index = %d phase = %v", s.Index, s.Phase)
	}
	if s.Current().Card.CardID != "c2" {
		t.Errorf("current = %s, want c2", s.Current().Card.CardID)
	}

	s.Reveal()
	s.BeginSubmit(spacedrep.Again, t0.Add(20*time.Second))
	s.Record(outcome("c2", spacedrep.Again, spacedrep.Review, spacedrep.Relearning, 0), t0.Add(20*time.Second))

	if s.TotalReviewed != 2 || s.TotalCorrect != 1 || s.Lapses != 1 {
		t.Errorf("reviewed=%d correct=%d lapses=%d", s.TotalReviewed, s.TotalCorrect, s.Lapses)
	}
	// c2 went to relearning and comes back once more.
	if len(s.Queue) != 3 || s.Queue[2].Card.CardID != "c2" {
		t.Fatalf("queue = %+v", s.Queue)
	}
	if s.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", s.Remaining())
	}

	sum := BuildSummary(s)
	if sum.TotalReviewed != 2 || sum.Accuracy != 0.5 || sum.Duration != 20*time.Second {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.TopicResults) != 2 || sum.TopicResults[0].TopicID != "t1" {
		t.Fatalf("topics = %+v", sum.TopicResults)
	}
	if sum.TopicResults[0].Score != 0.3 || sum.TopicResults[1].Lapses != 1 {
		t.Errorf("topics = %+v", sum.TopicResults)
	}
	if sum.Ratings[spacedrep.Again] != 1 || sum.Ratings[spacedrep.Easy] != 1 {
		t.Errorf("ratings = %v", sum.Ratings)
	}
}

func TestRequeueIsBounded(t *testing.T) {
	s := New("alice", nil, testQueue()[:1], t0)
	for i := 0; i < MaxRequeue+1; i++ {
		if s.Phase == PhaseDone {
			t.Fatalf("done after %d reviews", i)
		}
		s.Reveal()
		s.BeginSubmit(spacedrep.Again, t0)
		s.Record(outcome("c1", spacedrep.Again, spacedrep.Learning, spacedrep.Learning, 0), t0)
	}
	if s.Phase != PhaseDone {
		t.Errorf("Phase = %v, want PhaseDone after %d requeues", s.Phase, MaxRequeue)
	}
	if len(s.Queue) != MaxRequeue+1 {
		t.Errorf("queue length = %d, want %d", len(s.Queue), MaxRequeue+1)
	}
}

func TestEnd(t *testing.T) {
	s := New("alice", nil, testQueue(), t0)
	s.End(t0.Add(time.Minute))
	if s.Phase != PhaseDone || s.Elapsed != time.Minute {
		t.Errorf("phase = %v elapsed = %v", s.Phase, s.Elapsed)
	}
}
