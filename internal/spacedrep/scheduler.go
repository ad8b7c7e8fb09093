package spacedrep

import (
	"fmt"
	"math"
	"slices"
	"time"
)

const day = 24 * time.Hour

// Scheduler computes memory-state transitions for graded reviews.
// It holds only immutable policy and is safe for concurrent use.
type Scheduler struct {
	cfg Config
}

// NewScheduler validates cfg and returns a scheduler using it.
func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.LearningSteps = slices.Clone(cfg.LearningSteps)
	cfg.RelearningSteps = slices.Clone(cfg.RelearningSteps)
	return &Scheduler{cfg: cfg}, nil
}

// Config returns a copy of the scheduler policy.
func (s *Scheduler) Config() Config {
	cfg := s.cfg
	cfg.LearningSteps = slices.Clone(s.cfg.LearningSteps)
	cfg.RelearningSteps = slices.Clone(s.cfg.RelearningSteps)
	return cfg
}

// NewCard returns a fresh New card, due immediately.
func (s *Scheduler) NewCard(learnerID, cardID string, now time.Time) CardState {
	return newCardState(s.cfg.Weights, learnerID, cardID, now)
}

// Review applies a graded review to card and returns the updated state and
// the event describing the transition. The input card is not modified.
//
// The result depends only on the arguments: the seed drives interval fuzz.
// A rating outside Again..Easy returns ErrInvalidRating and no state.
// Out-of-domain numbers (negative elapsed time, non-positive stability,
// difficulty outside [1,10], retention outside [0.70,0.99]) are clamped and
// reported through ReviewEvent.Adjustments.
func (s *Scheduler) Review(card CardState, rating Rating, now time.Time, desiredRetention float64, seed uint64) (CardState, ReviewEvent, error) {
	if !rating.Valid() {
		return CardState{}, ReviewEvent{}, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	var adj Adjustment
	dr := desiredRetention
	switch {
	case math.IsNaN(dr):
		dr = DefaultDesiredRetention
		adj |= AdjustedRetention
	case dr < MinDesiredRetention || dr > MaxDesiredRetention:
		dr = clamp(dr, MinDesiredRetention, MaxDesiredRetention)
		adj |= AdjustedRetention
	}

	prev := card
	if !prev.State.Valid() {
		prev.State = New
	}
	first := prev.State == New
	if !first {
		if !(prev.Stability > 0) {
			prev.Stability = MinStability
			adj |= AdjustedStability
		}
		if !(prev.Difficulty >= MinDifficulty && prev.Difficulty <= MaxDifficulty) {
			if math.IsNaN(prev.Difficulty) {
				prev.Difficulty = s.cfg.Weights.initDifficulty(Good)
			}
			prev.Difficulty = clampDifficulty(prev.Difficulty)
			adj |= AdjustedDifficulty
		}
	}

	elapsed := 0.0
	r := 1.0
	if !first && prev.LastReview != nil {
		elapsed = now.Sub(*prev.LastReview).Hours() / 24
		if elapsed < 0 {
			elapsed = 0
			adj |= AdjustedElapsed
		}
		r = forgettingCurve(elapsed, prev.Stability)
	}

	next := prev
	w := s.cfg.Weights
	if first {
		next.Difficulty = w.initDifficulty(rating)
		next.Stability = w.initStability(rating)
	} else {
		switch {
		case rating == Again:
			next.Stability = w.forgetStability(prev.Difficulty, prev.Stability, r)
		case elapsed < 1:
			next.Stability = w.shortTermStability(prev.Stability, rating)
		default:
			next.Stability = w.recallStability(prev.Difficulty, prev.Stability, r, rating, dr)
		}
		next.Difficulty = w.nextDifficulty(prev.Difficulty, rating)
	}
	if !(next.Stability >= MinStability) {
		next.Stability = MinStability
		adj |= AdjustedStability
	}

	var interval time.Duration
	switch prev.State {
	case New, Learning:
		step := 0
		if prev.State == Learning {
			step = prev.Step
		}
		var graduated bool
		next.Step, interval, graduated = s.learningStep(step, rating)
		next.State = Learning
		if graduated {
			next.State = Review
			next.Step = 0
			interval = s.reviewInterval(next.Stability, dr, seed)
		}
	case Review:
		if rating == Again {
			next.State = Relearning
			next.Step = 0
			next.Lapses++
			interval = roundStep(s.cfg.RelearningSteps[0])
		} else {
			next.State = Review
			interval = s.reviewInterval(next.Stability, dr, seed)
		}
	case Relearning:
		if rating == Again {
			next.State = Relearning
			next.Step = 0
			interval = roundStep(s.cfg.RelearningSteps[0])
		} else {
			next.State = Review
			next.Step = 0
			interval = s.reviewInterval(next.Stability, dr, seed)
		}
	}

	reviewedAt := now
	next.LastReview = &reviewedAt
	next.Due = now.Add(interval)
	next.Reps++
	next.Retrievability = 1

	ev := ReviewEvent{
		LearnerID:        card.LearnerID,
		CardID:           card.CardID,
		Rating:           rating,
		StateBefore:      prev.State,
		StateAfter:       next.State,
		DifficultyBefore: prev.Difficulty,
		DifficultyAfter:  next.Difficulty,
		StabilityBefore:  prev.Stability,
		StabilityAfter:   next.Stability,
		Retrievability:   r,
		ElapsedDays:      elapsed,
		ScheduledDays:    interval.Hours() / 24,
		ReviewedAt:       now,
		Due:              next.Due,
		Adjustments:      adj,
	}
	return next, ev, nil
}

// Preview returns the state each rating would produce, without side effects.
func (s *Scheduler) Preview(card CardState, now time.Time, desiredRetention float64, seed uint64) map[Rating]CardState {
	out := make(map[Rating]CardState, len(Ratings))
	for _, r := range Ratings {
		next, _, err := s.Review(card, r, now, desiredRetention, seed)
		if err != nil {
			continue
		}
		out[r] = next
	}
	return out
}

// learningStep advances through the learning steps. It returns the new step
// index, the wait until the next review, and whether the card graduates.
func (s *Scheduler) learningStep(step int, rating Rating) (int, time.Duration, bool) {
	steps := s.cfg.LearningSteps
	if step < 0 {
		step = 0
	}
	if step >= len(steps) {
		step = len(steps) - 1
	}
	switch rating {
	case Again:
		return 0, roundStep(steps[0]), false
	case Hard:
		return step, roundStep(hardStep(steps, step)), false
	case Good:
		if step+1 < len(steps) {
			return step + 1, roundStep(steps[step+1]), false
		}
		return 0, 0, true
	default:
		return 0, 0, true
	}
}

// hardStep repeats the current step. On the first step it waits halfway to
// the second one, or 1.5x the step when there is only one.
func hardStep(steps []time.Duration, step int) time.Duration {
	if step == 0 {
		if len(steps) == 1 {
			return steps[0] * 3 / 2
		}
		return (steps[0] + steps[1]) / 2
	}
	return steps[step]
}

// reviewInterval converts stability into a whole-day interval, bounded and fuzzed.
func (s *Scheduler) reviewInterval(stability, dr float64, seed uint64) time.Duration {
	days := clampInt(int(math.Round(intervalDays(stability, dr))), 1, s.cfg.MaximumIntervalDays)
	if s.cfg.EnableFuzz {
		days = fuzzDays(days, s.cfg.FuzzFactor, seed, s.cfg.MaximumIntervalDays)
	}
	return time.Duration(days) * day
}

func roundStep(d time.Duration) time.Duration {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return time.Minute
	}
	return d
}
