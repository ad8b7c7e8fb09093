package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/screens/summary"
	sess "github.com/abhisek/mnemos/internal/session"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// mockReviewer implements Reviewer for testing.
type mockReviewer struct {
	due       []spacedrep.CardState
	dueErr    error
	submitErr error
	submitted []review.Submission
	lastQuery review.DueQuery
}

func (m *mockReviewer) Due(_ context.Context, q review.DueQuery) ([]spacedrep.CardState, error) {
	m.lastQuery = q
	return m.due, m.dueErr
}

func (m *mockReviewer) Submit(_ context.Context, sub review.Submission) (*review.Outcome, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.submitted = append(m.submitted, sub)
	after := spacedrep.Review
	if sub.Rating == spacedrep.Again {
		after = spacedrep.Learning
	}
	return &review.Outcome{
		State: spacedrep.CardState{CardID: sub.CardID, State: after, Due: sub.ReviewedAt.Add(72 * time.Hour)},
		Event: spacedrep.ReviewEvent{
			CardID:      sub.CardID,
			Rating:      sub.Rating,
			StateBefore: spacedrep.New,
			StateAfter:  after,
			ReviewedAt:  sub.ReviewedAt,
		},
		Mastery: &mastery.TopicMastery{Score: 0.3},
	}, nil
}

// mockCards implements CardLookup for testing.
type mockCards map[string]store.Card

func (m mockCards) Get(_ context.Context, id string) (*store.Card, error) {
	c, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testCards() mockCards {
	return mockCards{
		"c1": {CardID: "c1", TopicID: "t1", Front: "What is an audit charter?", Back: "A mandate document"},
		"c2": {CardID: "c2", TopicID: "t1", Front: "Define materiality", Back: "Significance threshold"},
	}
}

func testScreen(rev *mockReviewer) *StudyScreen {
	s := New(rev, testCards(), Options{LearnerID: "alice", Limit: 20, NewCards: 5})
	s.now = func() time.Time { return t0 }
	return s
}

// load runs the screen's Init command and feeds the result back.
func load(t *testing.T, s *StudyScreen) *StudyScreen {
	t.Helper()
	msg := s.Init()()
	scr, _ := s.Update(msg)
	return scr.(*StudyScreen)
}

func TestStudyScreen_Title(t *testing.T) {
	s := testScreen(&mockReviewer{})
	if s.Title() != "Study" {
		t.Errorf("Title = %q, want %q", s.Title(), "Study")
	}
}

func TestStudyScreen_LoadSkipsMissingCards(t *testing.T) {
	rev := &mockReviewer{due: []spacedrep.CardState{
		{CardID: "c1"}, {CardID: "gone"}, {CardID: "c2"},
	}}
	s := load(t, testScreen(rev))

	if s.state == nil {
		t.Fatal("expected state after load")
	}
	if len(s.state.Queue) != 2 {
		t.Errorf("queue = %d, want 2", len(s.state.Queue))
	}
	if rev.lastQuery.LearnerID != "alice" || rev.lastQuery.Limit != 20 || rev.lastQuery.NewCards != 5 {
		t.Errorf("query = %+v", rev.lastQuery)
	}
	if !strings.Contains(s.View(100, 30), "audit charter") {
		t.Error("expected card front in view")
	}
}

func TestStudyScreen_LoadError(t *testing.T) {
	s := load(t, testScreen(&mockReviewer{dueErr: errors.New("db closed")}))
	if s.errMsg != "db closed" {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if !strings.Contains(s.View(80, 24), "db closed") {
		t.Error("expected error in view")
	}
}

func TestStudyScreen_NothingDue(t *testing.T) {
	s := load(t, testScreen(&mockReviewer{}))
	if s.state.Phase != sess.PhaseDone {
		t.Fatalf("Phase = %v, want PhaseDone", s.state.Phase)
	}
	if !strings.Contains(s.View(80, 24), "Nothing is due") {
		t.Error("expected empty-queue message")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestStudyScreen_RateBeforeRevealIgnored(t *testing.T) {
	rev := &mockReviewer{due: []spacedrep.CardState{{CardID: "c1"}}}
	s := load(t, testScreen(rev))

	_, cmd := s.Update(keyPress('3'))
	if cmd != nil {
		t.Error("grade before reveal should be ignored")
	}
	if s.state.Phase != sess.PhaseFront {
		t.Errorf("Phase = %v, want PhaseFront", s.state.Phase)
	}
}

func TestStudyScreen_FullSitting(t *testing.T) {
	rev := &mockReviewer{due: []spacedrep.CardState{{CardID: "c1"}, {CardID: "c2"}}}
	s := load(t, testScreen(rev))

	var scr screen.Screen = s

	// First card: reveal, grade Good.
	scr, _ = scr.Update(keyPress(' '))
	if s.state.Phase != sess.PhaseBack {
		t.Fatalf("Phase = %v, want PhaseBack", s.state.Phase)
	}
	if !strings.Contains(s.View(100, 30), "mandate document") {
		t.Error("expected back of card after reveal")
	}
	scr, cmd := scr.Update(keyPress('3'))
	if cmd == nil {
		t.Fatal("expected submit command")
	}
	if s.state.Phase != sess.PhaseSubmitting {
		t.Errorf("Phase = %v, want PhaseSubmitting", s.state.Phase)
	}
	scr, _ = scr.Update(cmd())
	if s.state.Index != 1 {
		t.Fatalf("Index = %d, want 1", s.state.Index)
	}
	if !strings.Contains(s.View(100, 30), "back in 3d") {
		t.Error("expected last outcome line")
	}

	// Second card: reveal, grade Easy, which ends the sitting.
	scr, _ = scr.Update(keyPress(' '))
	scr, cmd = scr.Update(keyPress('4'))
	_, cmd = scr.Update(cmd())
	if cmd == nil {
		t.Fatal("expected summary command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement = %T, want *summary.SummaryScreen", msg.Screen)
	}

	if len(rev.submitted) != 2 {
		t.Fatalf("submitted = %d, want 2", len(rev.submitted))
	}
	if rev.submitted[0].CardID != "c1" || rev.submitted[0].Rating != spacedrep.Good {
		t.Errorf("first submission = %+v", rev.submitted[0])
	}
	if rev.submitted[1].Rating != spacedrep.Easy || rev.submitted[1].LearnerID != "alice" {
		t.Errorf("second submission = %+v", rev.submitted[1])
	}
}

func TestStudyScreen_SubmitFailureReturnsToBack(t *testing.T) {
	rev := &mockReviewer{
		due:       []spacedrep.CardState{{CardID: "c1"}},
		submitErr: errors.New("locked"),
	}
	s := load(t, testScreen(rev))

	s.Update(keyPress(' '))
	_, cmd := s.Update(keyPress('2'))
	s.Update(cmd())

	if s.state.Phase != sess.PhaseBack {
		t.Errorf("Phase = %v, want PhaseBack", s.state.Phase)
	}
	if s.state.TotalReviewed != 0 {
		t.Errorf("TotalReviewed = %d, want 0", s.state.TotalReviewed)
	}
	if !strings.Contains(s.View(100, 30), "locked") {
		t.Error("expected submit error in view")
	}
}

func TestStudyScreen_FinishEarly(t *testing.T) {
	rev := &mockReviewer{due: []spacedrep.CardState{{CardID: "c1"}, {CardID: "c2"}}}
	s := load(t, testScreen(rev))

	// Quit before any grade just closes.
	_, cmd := s.Update(keyPress('q'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg with no reviews")
	}

	s.Update(keyPress(' '))
	_, cmd = s.Update(keyPress('1'))
	s.Update(cmd())

	// Card c1 was requeued after Again; quitting now shows the summary.
	_, cmd = s.Update(keyPress('q'))
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg after a graded card")
	}
	if s.state.Phase != sess.PhaseDone {
		t.Errorf("Phase = %v, want PhaseDone", s.state.Phase)
	}
}

func TestStudyScreen_KeyHints(t *testing.T) {
	s := load(t, testScreen(&mockReviewer{due: []spacedrep.CardState{{CardID: "c1"}}}))
	if len(s.KeyHints()) != 3 {
		t.Errorf("front hints = %d, want 3", len(s.KeyHints()))
	}
	s.Update(keyPress(' '))
	if len(s.KeyHints()) != 5 {
		t.Errorf("back hints = %d, want 5", len(s.KeyHints()))
	}
}

func TestFormatInterval(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "<1m"},
		{10 * time.Minute, "10m"},
		{6 * time.Hour, "6h"},
		{4 * 24 * time.Hour, "4d"},
		{90 * 24 * time.Hour, "3mo"},
	}
	for _, tt := range tests {
		if got := FormatInterval(tt.d); got != tt.want {
			t.Errorf("FormatInterval(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
