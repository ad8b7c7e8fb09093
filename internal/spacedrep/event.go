package spacedrep

import (
	"strings"
	"time"
)

// Adjustment records input corrections applied during a review.
type Adjustment uint8

const (
	AdjustedElapsed Adjustment = 1 << iota
	AdjustedStability
	AdjustedDifficulty
	AdjustedRetention
)

// Has reports whether every flag in f is set.
func (a Adjustment) Has(f Adjustment) bool {
	return a&f == f
}

func (a Adjustment) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag Adjustment
		name string
	}{
		{AdjustedElapsed, "elapsed"},
		{AdjustedStability, "stability"},
		{AdjustedDifficulty, "difficulty"},
		{AdjustedRetention, "retention"},
	} {
		if a.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// ReviewEvent is the immutable record of a single graded review.
// ID, Sequence and ResponseTime are filled in by the caller that persists it.
type ReviewEvent struct {
	ID               string        `json:"id"`
	Sequence         int64         `json:"sequence"`
	LearnerID        string        `json:"learner_id"`
	CardID           string        `json:"card_id"`
	Rating           Rating        `json:"rating"`
	StateBefore      State         `json:"state_before"`
	StateAfter       State         `json:"state_after"`
	DifficultyBefore float64       `json:"difficulty_before"`
	DifficultyAfter  float64       `json:"difficulty_after"`
	StabilityBefore  float64       `json:"stability_before"`
	StabilityAfter   float64       `json:"stability_after"`
	Retrievability   float64       `json:"retrievability"`
	ElapsedDays      float64       `json:"elapsed_days"`
	ScheduledDays    float64       `json:"scheduled_days"`
	ResponseTime     time.Duration `json:"response_time"`
	ReviewedAt       time.Time     `json:"reviewed_at"`
	Due              time.Time     `json:"due"`
	Adjustments      Adjustment    `json:"adjustments"`
}

// Correct reports whether the review counts as a successful recall.
func (e ReviewEvent) Correct() bool {
	return e.Rating.Correct()
}

// Lapsed reports whether the review moved the card from Review into Relearning.
func (e ReviewEvent) Lapsed() bool {
	return e.StateBefore == Review && e.StateAfter == Relearning
}
