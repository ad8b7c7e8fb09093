// Package session tracks the runtime state of one study sitting: the card
// queue, the reveal/grade cycle and the per-topic tallies shown at the end.
package session

import (
	"time"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

// Phase is where the learner is in the card cycle.
type Phase int

const (
	PhaseLoading Phase = iota // Loading the due queue
	PhaseFront                // Question shown
	PhaseBack                 // Answer revealed, waiting for a grade
	PhaseSubmitting           // Grade sent, waiting for the commit
	PhaseDone                 // Queue exhausted or session ended
)

// MaxRequeue bounds how many times one card can come back in a sitting.
const MaxRequeue = 3

// Item is a queued card with the memory state it was queued with.
type Item struct {
	Card  store.Card
	State spacedrep.CardState
}

// TopicResult tracks per-topic performance within a sitting.
type TopicResult struct {
	TopicID   string
	TopicName string
	Reviewed  int
	Correct   int
	Lapses    int
	// Score is the topic's mastery after the latest review, -1 if unknown.
	Score float64
}

// State is the runtime state of a study sitting.
type State struct {
	LearnerID string
	Course    *catalog.Course

	Queue []Item
	Index int
	Phase Phase

	StartTime   time.Time
	Elapsed     time.Duration
	CardShownAt time.Time

	TotalReviewed int
	TotalCorrect  int
	Lapses        int
	Ratings       map[spacedrep.Rating]int

	// LastOutcome is the most recent committed review.
	LastOutcome *review.Outcome

	topics     map[string]*TopicResult
	topicOrder []string
	requeued   map[string]int
}

// New starts a sitting over queue.
func New(learnerID string, course *catalog.Course, queue []Item, now time.Time) *State {
	s := &State{
		LearnerID:   learnerID,
		Course:      course,
		Queue:       queue,
		StartTime:   now,
		CardShownAt: now,
		Ratings:     make(map[spacedrep.Rating]int),
		topics:      make(map[string]*TopicResult),
		requeued:    make(map[string]int),
		Phase:       PhaseFront,
	}
	if len(queue) == 0 {
		s.Phase = PhaseDone
	}
	return s
}

// Current returns the card on screen, or nil when the queue is exhausted.
func (s *State) Current() *Item {
	if s.Index >= len(s.Queue) {
		return nil
	}
	return &s.Queue[s.Index]
}

// Remaining is the number of cards still to grade, the current one included.
func (s *State) Remaining() int {
	if s.Index >= len(s.Queue) {
		return 0
	}
	return len(s.Queue) - s.Index
}

// Progress is the graded share of the queue in [0,1].
func (s *State) Progress() float64 {
	if len(s.Queue) == 0 {
		return 1
	}
	return float64(s.Index) / float64(len(s.Queue))
}

// Reveal flips the current card.
func (s *State) Reveal() {
	if s.Phase == PhaseFront {
		s.Phase = PhaseBack
	}
}

// BeginSubmit marks the current card as graded and returns the submission.
func (s *State) BeginSubmit(rating spacedrep.Rating, now time.Time) (review.Submission, bool) {
	cur := s.Current()
	if cur == nil || s.Phase != PhaseBack || !rating.Valid() {
		return review.Submission{}, false
	}
	s.Phase = PhaseSubmitting
	return review.Submission{
		LearnerID:    s.LearnerID,
		CardID:       cur.Card.CardID,
		Rating:       rating,
		ResponseTime: now.Sub(s.CardShownAt),
		ReviewedAt:   now,
	}, true
}

// Record applies a committed review and moves to the next card. Cards left
// in a short learning step are queued again, at most MaxRequeue times.
func (s *State) Record(out *review.Outcome, now time.Time) {
	cur := s.Current()
	if cur == nil || out == nil {
		return
	}
	ev := out.Event

	s.LastOutcome = out
	s.TotalReviewed++
	s.Ratings[ev.Rating]++
	if ev.Correct() {
		s.TotalCorrect++
	}
	if ev.Lapsed() {
		s.Lapses++
	}

	if tr := s.topic(cur.Card.TopicID); tr != nil {
		tr.Reviewed++
		if ev.Correct() {
			tr.Correct++
		}
		if ev.Lapsed() {
			tr.Lapses++
		}
		if out.Mastery != nil {
			tr.Score = out.Mastery.Score
		}
	}

	switch out.State.State {
	case spacedrep.Learning, spacedrep.Relearning:
		if s.requeued[cur.Card.CardID] < MaxRequeue {
			s.requeued[cur.Card.CardID]++
			s.Queue = append(s.Queue, Item{Card: cur.Card, State: out.State})
		}
	}

	s.Index++
	s.Elapsed = now.Sub(s.StartTime)
	s.CardShownAt = now
	if s.Index >= len(s.Queue) {
		s.Phase = PhaseDone
	} else {
		s.Phase = PhaseFront
	}
}

// Fail returns to the answer side after a failed submission.
func (s *State) Fail() {
	if s.Phase == PhaseSubmitting {
		s.Phase = PhaseBack
	}
}

// End stops the sitting early.
func (s *State) End(now time.Time) {
	s.Elapsed = now.Sub(s.StartTime)
	s.Phase = PhaseDone
}

func (s *State) topic(id string) *TopicResult {
	if id == "" {
		return nil
	}
	if tr, ok := s.topics[id]; ok {
		return tr
	}
	name := id
	if s.Course != nil {
		if t, err := s.Course.Topic(id); err == nil {
			name = t.Name
		}
	}
	tr := &TopicResult{TopicID: id, TopicName: name, Score: -1}
	s.topics[id] = tr
	s.topicOrder = append(s.topicOrder, id)
	return tr
}
