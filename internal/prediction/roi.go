package prediction

import "time"

// ROIInput is the raw material for a study-time estimate.
type ROIInput struct {
	TotalCards        int
	MasteredCards     int
	ReviewCount       int
	TotalResponseTime time.Duration
}

// ROIResult estimates remaining and spent study time.
type ROIResult struct {
	TotalCards              int     `json:"total_cards"`
	MasteredCards           int     `json:"mastered_cards"`
	RemainingCards          int     `json:"remaining_cards"`
	Coverage                float64 `json:"coverage"`
	SecondsPerCard          float64 `json:"seconds_per_card"`
	EstimatedHoursRemaining float64 `json:"estimated_hours_remaining"`
	TotalStudyHours         float64 `json:"total_study_hours"`
}

// ROI estimates the hours left to master the remaining cards. The observed
// mean response time is used when any latency has been recorded.
func (e *Engine) ROI(in ROIInput) ROIResult {
	remaining := in.TotalCards - in.MasteredCards
	if remaining < 0 {
		remaining = 0
	}

	perCard := e.cfg.DefaultSecondsPerCard
	if in.ReviewCount > 0 && in.TotalResponseTime > 0 {
		perCard = in.TotalResponseTime.Seconds() / float64(in.ReviewCount)
	}

	out := ROIResult{
		TotalCards:              in.TotalCards,
		MasteredCards:           in.MasteredCards,
		RemainingCards:          remaining,
		SecondsPerCard:          perCard,
		EstimatedHoursRemaining: float64(remaining) * perCard / 3600,
		TotalStudyHours:         in.TotalResponseTime.Hours(),
	}
	if in.TotalCards > 0 {
		out.Coverage = clamp01(float64(in.MasteredCards) / float64(in.TotalCards))
	}
	return out
}
