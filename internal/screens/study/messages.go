package study

import (
	"github.com/abhisek/mnemos/internal/review"
	sess "github.com/abhisek/mnemos/internal/session"
)

// queueLoadedMsg is sent when the due queue has been read.
type queueLoadedMsg struct {
	Items []sess.Item
	Err   error
}

// reviewCommittedMsg is sent when a graded card has been persisted.
type reviewCommittedMsg struct {
	Outcome *review.Outcome
	Err     error
}
