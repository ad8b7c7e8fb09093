// Package mastery turns review outcomes into per-topic mastery estimates.
//
// Two signals are kept per topic. The online score is an exponential moving
// average of correct/incorrect outcomes, updated on every review. The lapse
// ratio is derived on demand from the card memory states mapped to the topic.
package mastery

import (
	"math"
	"time"

	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

const (
	// Alpha is the EMA smoothing factor for topic scores and response time.
	Alpha = 0.3

	// MasteredStabilityDays is the stability a Review card must exceed to
	// count as mastered.
	MasteredStabilityDays = 21.0

	// LapseAllowance is the number of lapses per card that drives the
	// lapse-ratio mastery to zero.
	LapseAllowance = 3.0
)

// TopicMastery is a learner's running mastery of one topic.
type TopicMastery struct {
	LearnerID       string
	TopicID         string
	Score           float64
	TotalReviews    int
	CorrectReviews  int
	AvgResponseTime time.Duration
	UpdatedAt       time.Time
}

// NewTopicMastery returns an unreviewed topic with score 0.
func NewTopicMastery(learnerID, topicID string) *TopicMastery {
	return &TopicMastery{LearnerID: learnerID, TopicID: topicID}
}

// EMA folds one outcome into a score.
func EMA(prev float64, correct bool) float64 {
	outcome := 0.0
	if correct {
		outcome = 1
	}
	return clamp(Alpha*outcome+(1-Alpha)*prev, 0, 1)
}

// Apply records one review outcome.
func (m *TopicMastery) Apply(correct bool, responseTime time.Duration, at time.Time) {
	m.TotalReviews++
	if correct {
		m.CorrectReviews++
	}
	m.Score = EMA(m.Score, correct)

	if responseTime > 0 {
		if m.AvgResponseTime == 0 {
			m.AvgResponseTime = responseTime
		} else {
			avg := Alpha*float64(responseTime) + (1-Alpha)*float64(m.AvgResponseTime)
			m.AvgResponseTime = time.Duration(math.Round(avg))
		}
	}
	m.UpdatedAt = at
}

// Accuracy returns the share of correct reviews, or 0 with no reviews.
func (m *TopicMastery) Accuracy() float64 {
	if m.TotalReviews == 0 {
		return 0
	}
	return float64(m.CorrectReviews) / float64(m.TotalReviews)
}

// LapseMastery returns max(0, 1 - lapses/(cards*LapseAllowance)), or 0 when
// no cards are tracked.
func LapseMastery(cards, lapses int) float64 {
	if cards <= 0 {
		return 0
	}
	return clamp(1-float64(lapses)/(float64(cards)*LapseAllowance), 0, 1)
}

// IsMastered reports whether a card is in long-term review with enough stability.
func IsMastered(st spacedrep.CardState) bool {
	return st.State == spacedrep.Review && st.Stability > MasteredStabilityDays
}

func fromRecord(rec store.TopicMasteryRecord) *TopicMastery {
	return &TopicMastery{
		LearnerID:       rec.LearnerID,
		TopicID:         rec.TopicID,
		Score:           clamp(rec.Score, 0, 1),
		TotalReviews:    rec.TotalReviews,
		CorrectReviews:  rec.CorrectReviews,
		AvgResponseTime: time.Duration(rec.AvgResponseMs * float64(time.Millisecond)),
		UpdatedAt:       rec.UpdatedAt,
	}
}

func (m *TopicMastery) record() store.TopicMasteryRecord {
	return store.TopicMasteryRecord{
		LearnerID:      m.LearnerID,
		TopicID:        m.TopicID,
		Score:          m.Score,
		TotalReviews:   m.TotalReviews,
		CorrectReviews: m.CorrectReviews,
		AvgResponseMs:  float64(m.AvgResponseTime) / float64(time.Millisecond),
		UpdatedAt:      m.UpdatedAt,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
