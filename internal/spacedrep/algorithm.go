package spacedrep

import "math"

// forgettingCurve returns recall probability after elapsed days at stability s.
func forgettingCurve(elapsedDays, s float64) float64 {
	r := 1 / (1 + elapsedDays/(CurveScale*s))
	return clamp(r, math.SmallestNonzeroFloat64, 1)
}

// intervalDays inverts the forgetting curve: days until recall falls to dr.
func intervalDays(s, dr float64) float64 {
	return CurveScale * s * (1/dr - 1)
}

// retentionGrowth scales recall stability growth. Targets above
// ReferenceRetention grow stability more slowly.
func retentionGrowth(dr float64) float64 {
	return math.Pow((1-dr)/(1-ReferenceRetention), RetentionGrowthExponent)
}

func (w Weights) initStability(r Rating) float64 {
	return math.Max(w[int(r)-1], MinStability)
}

func (w Weights) rawInitDifficulty(r Rating) float64 {
	return w[4] - math.Exp(w[5]*float64(r-1)) + 1
}

func (w Weights) initDifficulty(r Rating) float64 {
	return clampDifficulty(w.rawInitDifficulty(r))
}

// nextDifficulty applies the grade delta with linear damping near the
// ceiling, then reverts towards the Easy prior.
func (w Weights) nextDifficulty(d float64, r Rating) float64 {
	delta := -w[6] * float64(r-3)
	damped := d + delta*(MaxDifficulty-d)/9
	reverted := w[7]*w.rawInitDifficulty(Easy) + (1-w[7])*damped
	return clampDifficulty(reverted)
}

// recallStability grows s after a successful review.
func (w Weights) recallStability(d, s, r float64, rating Rating, dr float64) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if rating == Easy {
		easyBonus = w[16]
	}
	inc := math.Exp(w[8]) *
		(11 - d) *
		math.Pow(s, -w[9]) *
		(math.Exp((1-r)*w[10]) - 1) *
		hardPenalty * easyBonus * retentionGrowth(dr)
	return s * (1 + inc)
}

// forgetStability shrinks s after a lapse. The second bound keeps the
// result below the prior stability.
func (w Weights) forgetStability(d, s, r float64) float64 {
	long := w[11] *
		math.Pow(d, -w[12]) *
		(math.Pow(s+1, w[13]) - 1) *
		math.Exp((1-r)*w[14])
	short := s / math.Exp(w[17]*w[18])
	return math.Min(long, short)
}

// shortTermStability handles a success within the same day. The factor is
// floored at 1 so a success never shrinks stability.
func (w Weights) shortTermStability(s float64, rating Rating) float64 {
	inc := math.Exp(w[17] * (float64(rating) - 3 + w[18]))
	return s * math.Max(inc, 1)
}

func clampDifficulty(d float64) float64 {
	return clamp(d, MinDifficulty, MaxDifficulty)
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
