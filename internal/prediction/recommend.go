package prediction

import "fmt"

// Readiness is a coarse band of pass probability. Higher is better.
type Readiness int

const (
	ReadinessStart Readiness = iota
	ReadinessFoundations
	ReadinessFocus
	ReadinessReady
)

var readinessNames = [...]string{"start", "foundations", "focus", "ready"}

func (r Readiness) String() string {
	if r < 0 || int(r) >= len(readinessNames) {
		return fmt.Sprintf("Readiness(%d)", int(r))
	}
	return readinessNames[r]
}

func (r Readiness) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Readiness) UnmarshalText(b []byte) error {
	for i, name := range readinessNames {
		if name == string(b) {
			*r = Readiness(i)
			return nil
		}
	}
	return fmt.Errorf("unknown readiness %q", b)
}

// Ladder thresholds on pass probability.
const (
	ReadyThreshold       = 0.85
	FocusThreshold       = 0.6
	FoundationsThreshold = 0.3
)

// Recommendation is the next-step advice for a prediction.
type Recommendation struct {
	Readiness Readiness `json:"readiness"`
	Message   string    `json:"message"`
}

func recommend(passProbability float64, weakTopics int) Recommendation {
	switch {
	case passProbability >= ReadyThreshold:
		return Recommendation{ReadinessReady, "You are in the passing zone. Sit full mock exams to get used to exam conditions."}
	case passProbability >= FocusThreshold:
		return Recommendation{ReadinessFocus, fmt.Sprintf("Keep going and concentrate on your %d weak topic(s).", weakTopics)}
	case passProbability >= FoundationsThreshold:
		return Recommendation{ReadinessFoundations, "Build the foundations first: review low-difficulty cards before new material."}
	default:
		return Recommendation{ReadinessStart, "Start studying and cover the core concepts of every topic."}
	}
}
