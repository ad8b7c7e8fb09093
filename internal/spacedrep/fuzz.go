package spacedrep

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ReviewSeed derives a stable fuzz seed for the review of a card at a given
// repetition count, so a retried submission reproduces the same due date.
func ReviewSeed(learnerID, cardID string, reps int) uint64 {
	return xxhash.Sum64String(learnerID + "/" + cardID + "/" + strconv.Itoa(reps))
}

// fuzzDays spreads an interval by up to ±factor using the seed.
// Intervals shorter than FuzzMinIntervalDays are returned unchanged.
func fuzzDays(days int, factor float64, seed uint64, maxDays int) int {
	if factor <= 0 || days < FuzzMinIntervalDays {
		return days
	}
	rng := rand.New(rand.NewSource(int64(seed)))
	f := 1 + (rng.Float64()*2-1)*factor
	return clampInt(int(math.Round(float64(days)*f)), 1, maxDays)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
