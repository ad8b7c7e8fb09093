// Package prediction estimates exam readiness from topic mastery.
package prediction

import (
	"fmt"
	"math"
	"sort"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/mastery"
)

const (
	// Steepness is the slope k of the pass-probability sigmoid.
	Steepness = 10.0

	// WeakThreshold is the mastery below which a topic is reported as weak.
	WeakThreshold = 0.5

	DefaultWeakTopicLimit = 5
	DefaultSecondsPerCard = 120.0
)

// Config tunes presentation and ROI defaults. The scoring model itself is fixed.
type Config struct {
	// WeakTopicLimit caps the weak topics returned. Zero or less returns all.
	WeakTopicLimit int
	// DefaultSecondsPerCard is used by ROI when no latency has been recorded.
	DefaultSecondsPerCard float64
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		WeakTopicLimit:        DefaultWeakTopicLimit,
		DefaultSecondsPerCard: DefaultSecondsPerCard,
	}
}

// Engine computes predictions. It holds no state beyond its config and is
// safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.DefaultSecondsPerCard <= 0 {
		return nil, fmt.Errorf("default seconds per card must be positive, got %v", cfg.DefaultSecondsPerCard)
	}
	return &Engine{cfg: cfg}, nil
}

// WeakTopic is a topic below WeakThreshold with both mastery signals.
type WeakTopic struct {
	ID           string  `json:"topic_id"`
	Name         string  `json:"topic_name"`
	Section      string  `json:"section"`
	WeightPct    float64 `json:"weight_pct"`
	Mastery      float64 `json:"mastery_score"`
	LapseMastery float64 `json:"lapse_mastery"`
	Priority     float64 `json:"priority"`
}

// Result is a readiness estimate for one learner and course.
type Result struct {
	CourseCode      string      `json:"course_code"`
	PassingScore    float64     `json:"passing_score"`
	WeightedMastery float64     `json:"weighted_mastery"`
	PredictedScore  float64     `json:"predicted_score"`
	PassProbability float64     `json:"pass_probability"`
	WeakTopics      []WeakTopic `json:"weak_topics"`
	// WeakTopicCount counts every weak topic, before the limit is applied.
	WeakTopicCount int            `json:"weak_topic_count"`
	TotalTopics    int            `json:"total_topics"`
	StudiedTopics  int            `json:"studied_topics"`
	Recommendation Recommendation `json:"recommendation"`
}

// PassProbability maps weighted mastery onto a sigmoid centred on the
// passing score.
func PassProbability(weightedMastery, passingScore float64) float64 {
	return 1 / (1 + math.Exp(-Steepness*(weightedMastery-passingScore)))
}

// Predict scores a course from its topic signals.
func (e *Engine) Predict(course *catalog.Course, signals []mastery.TopicSignal) *Result {
	res := &Result{
		CourseCode:   course.Code,
		PassingScore: course.PassingScore,
		TotalTopics:  len(signals),
		WeakTopics:   []WeakTopic{},
	}
	if len(signals) == 0 {
		res.Recommendation = recommend(0, 0)
		return res
	}

	var totalWeight, weighted float64
	for _, s := range signals {
		m := clamp01(s.Score)
		totalWeight += s.WeightPct
		weighted += s.WeightPct * m
		if s.Studied() {
			res.StudiedTopics++
		}
		if m < WeakThreshold {
			res.WeakTopics = append(res.WeakTopics, WeakTopic{
				ID:           s.ID,
				Name:         s.Name,
				Section:      s.Section,
				WeightPct:    s.WeightPct,
				Mastery:      m,
				LapseMastery: s.LapseMastery,
				Priority:     s.WeightPct * (1 - m),
			})
		}
	}
	if totalWeight > 0 {
		res.WeightedMastery = clamp01(weighted / totalWeight)
	}
	res.PredictedScore = 100 * res.WeightedMastery
	res.PassProbability = PassProbability(res.WeightedMastery, course.PassingScore)

	sortWeak(res.WeakTopics)
	res.WeakTopicCount = len(res.WeakTopics)
	if e.cfg.WeakTopicLimit > 0 && len(res.WeakTopics) > e.cfg.WeakTopicLimit {
		res.WeakTopics = res.WeakTopics[:e.cfg.WeakTopicLimit]
	}
	res.Recommendation = recommend(res.PassProbability, res.WeakTopicCount)
	return res
}

func sortWeak(ws []WeakTopic) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].Priority != ws[j].Priority {
			return ws[i].Priority > ws[j].Priority
		}
		if ws[i].WeightPct != ws[j].WeightPct {
			return ws[i].WeightPct > ws[j].WeightPct
		}
		return ws[i].ID < ws[j].ID
	})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
