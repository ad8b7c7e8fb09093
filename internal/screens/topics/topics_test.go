package topics

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/store"
)

const testCourse = `
code: TST
name: Test Exam
version: 1.0.0
passing_score: 0.75
topics:
  - id: s1
    name: Section One
    weight_pct: 60
    children:
      - {id: t1, name: Topic One, weight_pct: 50, keywords: [alpha, beta]}
      - {id: t2, name: Topic Two, weight_pct: 50}
  - {id: t3, name: Topic Three, weight_pct: 40}
`

func setup(t *testing.T) *TopicsScreen {
	t.Helper()
	course, err := catalog.ParseCourse([]byte(testCourse))
	if err != nil {
		t.Fatalf("ParseCourse: %v", err)
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "topics.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	err = st.Mastery().Upsert(context.Background(), store.TopicMasteryRecord{
		LearnerID: "alice", TopicID: "t1", Score: 0.8, TotalReviews: 4, CorrectReviews: 3,
		UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	s := New(st, "alice", course)
	scr, _ := s.Update(s.Init()())
	return scr.(*TopicsScreen)
}

func TestTopicsScreen_Rows(t *testing.T) {
	s := setup(t)

	if len(s.rows) != 5 {
		t.Fatalf("rows = %d, want 5 (2 headers, 3 topics)", len(s.rows))
	}
	if s.rows[0].kind != rowSectionHeader || s.rows[0].section != "Section One" {
		t.Errorf("first row = %+v", s.rows[0])
	}
	if s.cursor != 1 || s.rows[s.cursor].signal.ID != "t1" {
		t.Errorf("cursor = %d, want first topic", s.cursor)
	}
	if s.rows[1].signal.Score != 0.8 {
		t.Errorf("t1 score = %v, want 0.8", s.rows[1].signal.Score)
	}

	view := s.View(120, 30)
	for _, want := range []string{"SECTION ONE", "Topic One", "Topic Three", "80%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTopicsScreen_Navigation(t *testing.T) {
	s := setup(t)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.rows[s.cursor].signal.ID != "t2" {
		t.Errorf("after down = %s, want t2", s.rows[s.cursor].signal.ID)
	}
	// Skips the section header.
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.rows[s.cursor].signal.ID != "t3" {
		t.Errorf("after down = %s, want t3", s.rows[s.cursor].signal.ID)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.rows[s.cursor].signal.ID != "t3" {
		t.Error("cursor moved past the last topic")
	}

	// Tab wraps to the first section.
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.rows[s.cursor].signal.ID != "t1" {
		t.Errorf("after tab = %s, want t1", s.rows[s.cursor].signal.ID)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.rows[s.cursor].signal.ID != "t3" {
		t.Errorf("after tab = %s, want t3", s.rows[s.cursor].signal.ID)
	}
}

func TestTopicsScreen_Detail(t *testing.T) {
	s := setup(t)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	d, ok := msg.Screen.(*TopicDetailScreen)
	if !ok {
		t.Fatalf("pushed %T", msg.Screen)
	}
	if d.Title() != "Topic One" {
		t.Errorf("Title = %q", d.Title())
	}
	view := d.View(100, 30)
	for _, want := range []string{"Accuracy", "75%", "alpha, beta", "30.0% of the exam"} {
		if !strings.Contains(view, want) {
			t.Errorf("detail missing %q", want)
		}
	}
}

func TestTopicsScreen_Loading(t *testing.T) {
	s := New(nil, "alice", nil)
	if !strings.Contains(s.View(80, 24), "Loading") {
		t.Error("expected loading view")
	}
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command before load")
	}
}
