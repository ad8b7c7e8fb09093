package spacedrep

import (
	"fmt"
	"time"
)

// Bounds on the memory model.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0

	// MinStability is the floor applied when a stability value is
	// non-positive or would drop below it.
	MinStability = 0.01

	MinDesiredRetention     = 0.70
	MaxDesiredRetention     = 0.99
	DefaultDesiredRetention = 0.90

	DefaultMaximumIntervalDays = 36500
	// MaxIntervalDaysLimit bounds MaximumIntervalDays well below the point
	// where a day count overflows time.Duration.
	MaxIntervalDaysLimit = 36500
	DefaultFuzzFactor          = 0.05

	// FuzzMinIntervalDays is the shortest review interval that gets fuzzed.
	FuzzMinIntervalDays = 3
)

// Forgetting curve R(t) = (1 + t/(CurveScale*S))^-1. With CurveScale = 9
// recall probability is exactly ReferenceRetention when t = S.
const (
	CurveScale         = 9.0
	ReferenceRetention = 0.9

	// RetentionGrowthExponent shapes how strongly the desired retention
	// scales stability growth relative to ReferenceRetention.
	RetentionGrowthExponent = 0.5
)

// Weights are the 19 model parameters.
//
//	w0..w3   initial stability per rating
//	w4, w5   initial difficulty
//	w6       difficulty delta per grade
//	w7       mean reversion towards D0(Easy)
//	w8..w10  recall stability growth
//	w11..w14 post-lapse stability
//	w15      hard penalty
//	w16      easy bonus
//	w17, w18 same-day (short-term) stability
type Weights [19]float64

// DefaultWeights are the published FSRS-5 defaults.
var DefaultWeights = Weights{
	0.40255, 1.18385, 3.173, 15.69105,
	7.1949, 0.5345, 1.4604, 0.0046,
	1.54575, 0.1192, 1.01925,
	1.9395, 0.11, 0.29605, 2.2698,
	0.2315, 2.9898,
	0.51655, 0.6621,
}

// Config holds the tunable scheduler policy.
type Config struct {
	Weights             Weights
	LearningSteps       []time.Duration
	RelearningSteps     []time.Duration
	MaximumIntervalDays int
	FuzzFactor          float64
	EnableFuzz          bool
}

// DefaultConfig returns the stock scheduler policy.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights,
		LearningSteps:       []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps:     []time.Duration{10 * time.Minute},
		MaximumIntervalDays: DefaultMaximumIntervalDays,
		FuzzFactor:          DefaultFuzzFactor,
		EnableFuzz:          true,
	}
}

// Validate checks that the config can drive the state machine.
func (c Config) Validate() error {
	if len(c.LearningSteps) == 0 {
		return fmt.Errorf("%w: at least one learning step is required", ErrInvalidConfig)
	}
	// A successful relearning review returns the card to Review, so only one
	// relearning step is ever reachable.
	if len(c.RelearningSteps) != 1 {
		return fmt.Errorf("%w: exactly one relearning step is required, got %d", ErrInvalidConfig, len(c.RelearningSteps))
	}
	for _, d := range append(append([]time.Duration{}, c.LearningSteps...), c.RelearningSteps...) {
		if d <= 0 {
			return fmt.Errorf("%w: step %s must be positive", ErrInvalidConfig, d)
		}
	}
	if c.MaximumIntervalDays < 1 || c.MaximumIntervalDays > MaxIntervalDaysLimit {
		return fmt.Errorf("%w: maximum interval %d days out of [1,%d]", ErrInvalidConfig, c.MaximumIntervalDays, MaxIntervalDaysLimit)
	}
	if c.FuzzFactor < 0 || c.FuzzFactor >= 1 {
		return fmt.Errorf("%w: fuzz factor %.2f out of [0,1)", ErrInvalidConfig, c.FuzzFactor)
	}
	for i := 0; i < 4; i++ {
		if c.Weights[i] <= 0 {
			return fmt.Errorf("%w: initial stability weight w%d must be positive", ErrInvalidConfig, i)
		}
	}
	return nil
}
