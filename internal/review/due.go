package review

import (
	"context"

	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

// DueQuery scopes a due-card listing.
type DueQuery struct {
	LearnerID string
	// CourseCode restricts the listing to one course. Empty means all.
	CourseCode string
	// TopicID restricts the listing to cards of one leaf topic.
	TopicID string
	// Limit caps the result. Zero or less means unlimited.
	Limit int
	// NewCards adds up to this many never-reviewed cards in scope as fresh
	// New states. Ignored unless a course or topic is given.
	NewCards int
}

// Due returns the learner's due cards in review order.
func (s *Service) Due(ctx context.Context, q DueQuery) ([]spacedrep.CardState, error) {
	now := s.now().UTC()
	tracked, err := s.store.CardStates().ListByLearner(ctx, q.LearnerID, q.CourseCode)
	if err != nil {
		return nil, err
	}
	states := make([]spacedrep.CardState, 0, len(tracked))
	seen := make(map[string]bool, len(tracked))
	for _, t := range tracked {
		if q.TopicID != "" && t.TopicID != q.TopicID {
			continue
		}
		states = append(states, t.CardState)
		seen[t.CardID] = true
	}

	if (q.CourseCode != "" || q.TopicID != "") && q.NewCards > 0 {
		cards, err := s.store.Cards().List(ctx, store.CardFilter{CourseCode: q.CourseCode, TopicID: q.TopicID})
		if err != nil {
			return nil, err
		}
		added := 0
		for _, c := range cards {
			if added == q.NewCards {
				break
			}
			if seen[c.CardID] {
				continue
			}
			states = append(states, s.scheduler.NewCard(q.LearnerID, c.CardID, now))
			added++
		}
	}
	return spacedrep.SelectDue(states, now, q.Limit), nil
}
