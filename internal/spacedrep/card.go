package spacedrep

import "time"

// CardState is the memory state of one card for one learner.
type CardState struct {
	LearnerID      string     `json:"learner_id"`
	CardID         string     `json:"card_id"`
	State          State      `json:"state"`
	Step           int        `json:"step"`
	Difficulty     float64    `json:"difficulty"`
	Stability      float64    `json:"stability"`
	Retrievability float64    `json:"retrievability"`
	Due            time.Time  `json:"due"`
	LastReview     *time.Time `json:"last_review,omitempty"`
	Reps           int        `json:"reps"`
	Lapses         int        `json:"lapses"`
}

// NewCardState returns a fresh card seeded with the default-weight priors.
func NewCardState(learnerID, cardID string, now time.Time) CardState {
	return newCardState(DefaultWeights, learnerID, cardID, now)
}

func newCardState(w Weights, learnerID, cardID string, now time.Time) CardState {
	return CardState{
		LearnerID:      learnerID,
		CardID:         cardID,
		State:          New,
		Difficulty:     w.initDifficulty(Good),
		Stability:      w.initStability(Good),
		Retrievability: 1,
		Due:            now,
	}
}

// IsDue returns true if the card is due at or before now.
func (c CardState) IsDue(now time.Time) bool {
	return !now.Before(c.Due)
}

// ElapsedDays returns fractional days since the last review, or 0 if the
// card was never reviewed or the clock went backwards.
func (c CardState) ElapsedDays(now time.Time) float64 {
	if c.LastReview == nil {
		return 0
	}
	d := now.Sub(*c.LastReview).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// RetrievabilityAt derives recall probability at now from stability and the
// time since the last review. The cached Retrievability field is only the
// value at the last review.
func (c CardState) RetrievabilityAt(now time.Time) float64 {
	if c.LastReview == nil || c.State == New {
		return 1
	}
	s := c.Stability
	if !(s > 0) {
		s = MinStability
	}
	return forgettingCurve(c.ElapsedDays(now), s)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (c CardState) OverdueDays(now time.Time) float64 {
	if now.Before(c.Due) {
		return 0
	}
	return now.Sub(c.Due).Hours() / 24
}
