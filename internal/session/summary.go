package session

import (
	"time"

	"github.com/abhisek/mnemos/internal/spacedrep"
)

// Summary holds the data displayed on the summary screen.
type Summary struct {
	CourseCode    string
	Duration      time.Duration
	TotalReviewed int
	TotalCorrect  int
	Accuracy      float64
	Lapses        int
	Ratings       map[spacedrep.Rating]int
	TopicResults  []TopicResult
}

// BuildSummary creates a Summary from the session state. Topics appear in
// the order they were first reviewed.
func BuildSummary(state *State) *Summary {
	results := make([]TopicResult, 0, len(state.topicOrder))
	for _, id := range state.topicOrder {
		results = append(results, *state.topics[id])
	}

	var accuracy float64
	if state.TotalReviewed > 0 {
		accuracy = float64(state.TotalCorrect) / float64(state.TotalReviewed)
	}

	ratings := make(map[spacedrep.Rating]int, len(state.Ratings))
	for r, n := range state.Ratings {
		ratings[r] = n
	}

	code := ""
	if state.Course != nil {
		code = state.Course.Code
	}
	return &Summary{
		CourseCode:    code,
		Duration:      state.Elapsed,
		TotalReviewed: state.TotalReviewed,
		TotalCorrect:  state.TotalCorrect,
		Accuracy:      accuracy,
		Lapses:        state.Lapses,
		Ratings:       ratings,
		TopicResults:  results,
	}
}
