// Package study is the flashcard screen: it loads the due queue, shows each
// card front, reveals the back and submits the learner's grade.
package study

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/screens/summary"
	sess "github.com/abhisek/mnemos/internal/session"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
	"github.com/abhisek/mnemos/internal/ui/layout"
)

// Reviewer lists due cards and commits grades.
type Reviewer interface {
	Due(ctx context.Context, q review.DueQuery) ([]spacedrep.CardState, error)
	Submit(ctx context.Context, sub review.Submission) (*review.Outcome, error)
}

// CardLookup resolves card content.
type CardLookup interface {
	Get(ctx context.Context, cardID string) (*store.Card, error)
}

// Options scopes a sitting.
type Options struct {
	LearnerID string
	Course    *catalog.Course
	// Limit caps the queue length. Zero means unlimited.
	Limit int
	// NewCards is how many unseen cards may join the queue.
	NewCards int
}

// StudyScreen implements screen.Screen for a review sitting.
type StudyScreen struct {
	reviewer Reviewer
	cards    CardLookup
	opts     Options
	state    *sess.State
	errMsg   string
	// submitErr is shown under the card after a failed commit.
	submitErr string
	now       func() time.Time
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

// New creates a StudyScreen.
func New(reviewer Reviewer, cards CardLookup, opts Options) *StudyScreen {
	return &StudyScreen{
		reviewer: reviewer,
		cards:    cards,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return s.loadQueue()
}

func (s *StudyScreen) Title() string {
	return "Study"
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.state == nil || s.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.state.Phase {
	case sess.PhaseFront:
		return []layout.KeyHint{
			{Key: "Space", Description: "Show answer"},
			{Key: "Q", Description: "Finish"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseBack:
		return []layout.KeyHint{
			{Key: "1", Description: "Again"},
			{Key: "2", Description: "Hard"},
			{Key: "3", Description: "Good"},
			{Key: "4", Description: "Easy"},
			{Key: "Q", Description: "Finish"},
		}
	case sess.PhaseSubmitting:
		return []layout.KeyHint{{Key: "…", Description: "Saving"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case queueLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.state = sess.New(s.opts.LearnerID, s.opts.Course, msg.Items, s.now())
		return s, nil

	case reviewCommittedMsg:
		return s.handleCommitted(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.state == nil {
		return s, nil
	}
	key := msg.String()

	switch s.state.Phase {
	case sess.PhaseFront:
		switch key {
		case "space", "enter":
			s.state.Reveal()
			s.submitErr = ""
		case "q":
			return s.finish()
		}

	case sess.PhaseBack:
		if key == "q" {
			return s.finish()
		}
		rating, err := spacedrep.ParseRating(key)
		if err != nil {
			return s, nil
		}
		sub, ok := s.state.BeginSubmit(rating, s.now())
		if !ok {
			return s, nil
		}
		return s, s.submit(sub)

	case sess.PhaseDone:
		if key == "enter" || key == "q" {
			return s.finish()
		}
	}
	return s, nil
}

func (s *StudyScreen) handleCommitted(msg reviewCommittedMsg) (screen.Screen, tea.Cmd) {
	if s.state == nil {
		return s, nil
	}
	if msg.Err != nil {
		s.state.Fail()
		s.submitErr = msg.Err.Error()
		return s, nil
	}
	s.submitErr = ""
	s.state.Record(msg.Outcome, s.now())
	if s.state.Phase == sess.PhaseDone {
		return s.finish()
	}
	return s, nil
}

// finish ends the sitting and swaps in the summary. A sitting with no
// graded cards just closes.
func (s *StudyScreen) finish() (screen.Screen, tea.Cmd) {
	if s.state == nil || s.state.TotalReviewed == 0 {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.state.Phase != sess.PhaseDone {
		s.state.End(s.now())
	}
	sum := sess.BuildSummary(s.state)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(sum)}
	}
}

// loadQueue reads the due cards and their content.
func (s *StudyScreen) loadQueue() tea.Cmd {
	reviewer, cards, opts := s.reviewer, s.cards, s.opts
	return func() tea.Msg {
		ctx := context.Background()
		q := review.DueQuery{
			LearnerID: opts.LearnerID,
			Limit:     opts.Limit,
			NewCards:  opts.NewCards,
		}
		if opts.Course != nil {
			q.CourseCode = opts.Course.Code
		}
		states, err := reviewer.Due(ctx, q)
		if err != nil {
			return queueLoadedMsg{Err: err}
		}

		items := make([]sess.Item, 0, len(states))
		for _, st := range states {
			card, err := cards.Get(ctx, st.CardID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return queueLoadedMsg{Err: err}
			}
			items = append(items, sess.Item{Card: *card, State: st})
		}
		return queueLoadedMsg{Items: items}
	}
}

// submit commits a grade in the background.
func (s *StudyScreen) submit(sub review.Submission) tea.Cmd {
	reviewer := s.reviewer
	return func() tea.Msg {
		out, err := reviewer.Submit(context.Background(), sub)
		return reviewCommittedMsg{Outcome: out, Err: err}
	}
}
