package mastery

import (
	"context"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/store"
)

// TopicSignal is everything known about one catalog leaf for a learner.
type TopicSignal struct {
	catalog.WeightedTopic

	// Score is the online EMA mastery; 0 for unreviewed topics.
	Score          float64
	TotalReviews   int
	CorrectReviews int

	Cards         int
	Lapses        int
	MasteredCards int
	// LapseMastery is the lapse-ratio mastery over the topic's tracked cards.
	LapseMastery float64
}

// Studied reports whether the learner reviewed the topic at least once.
func (s TopicSignal) Studied() bool { return s.TotalReviews > 0 }

// Signals joins topic records and card states onto a course's leaf topics.
// Records and states for topics outside the course are ignored.
func Signals(course *catalog.Course, records []store.TopicMasteryRecord, states []store.TopicCardState) []TopicSignal {
	leaves := course.Leaves()
	out := make([]TopicSignal, len(leaves))
	index := make(map[string]int, len(leaves))
	for i, leaf := range leaves {
		out[i] = TopicSignal{WeightedTopic: leaf}
		index[leaf.ID] = i
	}

	for _, rec := range records {
		i, ok := index[rec.TopicID]
		if !ok {
			continue
		}
		out[i].Score = clamp(rec.Score, 0, 1)
		out[i].TotalReviews = rec.TotalReviews
		out[i].CorrectReviews = rec.CorrectReviews
	}

	for _, st := range states {
		i, ok := index[st.TopicID]
		if !ok {
			continue
		}
		out[i].Cards++
		out[i].Lapses += st.Lapses
		if IsMastered(st.CardState) {
			out[i].MasteredCards++
		}
	}

	for i := range out {
		out[i].LapseMastery = LapseMastery(out[i].Cards, out[i].Lapses)
	}
	return out
}

// Reader is the read side of the store used to assemble signals.
type Reader interface {
	Mastery() store.TopicMasteryRepo
	CardStates() store.CardStateRepo
}

// LoadSignals reads a learner's topic records and card states and joins them
// onto the course.
func LoadSignals(ctx context.Context, r Reader, learnerID string, course *catalog.Course) ([]TopicSignal, error) {
	records, err := r.Mastery().ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	states, err := r.CardStates().ListByLearner(ctx, learnerID, course.Code)
	if err != nil {
		return nil, err
	}
	return Signals(course, records, states), nil
}
