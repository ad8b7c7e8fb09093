package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/prediction"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/screens/study"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

type mockReviewer struct {
	due []spacedrep.CardState
}

func (m *mockReviewer) Due(context.Context, review.DueQuery) ([]spacedrep.CardState, error) {
	return m.due, nil
}

func (m *mockReviewer) Submit(context.Context, review.Submission) (*review.Outcome, error) {
	return nil, errors.New("not used")
}

type mockPredictor struct {
	res *prediction.Result
	err error
}

func (m *mockPredictor) Predict(context.Context, string, *catalog.Course) (*prediction.Result, error) {
	return m.res, m.err
}

func (m *mockPredictor) History(context.Context, string, string, int) ([]store.PredictionSnapshot, error) {
	return nil, nil
}

func testDeps(pred *mockPredictor) Deps {
	return Deps{
		LearnerID: "alice",
		Course:    &catalog.Course{Code: "CISA", Name: "Certified Information Systems Auditor"},
		Reviewer:  &mockReviewer{due: make([]spacedrep.CardState, 4)},
		Predictor: pred,
	}
}

func testResult() *prediction.Result {
	return &prediction.Result{
		CourseCode:      "CISA",
		PassingScore:    0.65,
		WeightedMastery: 0.55,
		PassProbability: 0.27,
		WeakTopicCount:  2,
		TotalTopics:     5,
		StudiedTopics:   3,
		Recommendation: prediction.Recommendation{
			Readiness: prediction.ReadinessFoundations,
			Message:   "Build foundations",
		},
	}
}

func TestHomeScreen_Dashboard(t *testing.T) {
	h := New(testDeps(&mockPredictor{res: testResult()}))

	_, cmd := h.Update(h.Init()())
	if cmd == nil {
		t.Fatal("expected status command")
	}
	if got := cmd(); got != screen.StatusMsg("CISA · 4 due") {
		t.Errorf("status = %v", got)
	}
	if h.due != 4 {
		t.Errorf("due = %d, want 4", h.due)
	}

	view := h.View(100, 30)
	for _, want := range []string{"CISA", "FOUNDATIONS", "Pass probability", "27%", "STUDY", "4 due"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHomeScreen_PredictError(t *testing.T) {
	h := New(testDeps(&mockPredictor{err: errors.New("db gone")}))
	h.Update(h.Init()())
	if !strings.Contains(h.View(100, 30), "db gone") {
		t.Error("expected error in view")
	}
}

func TestHomeScreen_NoCourse(t *testing.T) {
	deps := testDeps(&mockPredictor{})
	deps.Course = nil
	h := New(deps)

	if h.Init() != nil {
		t.Error("expected no load without a course")
	}
	if !strings.Contains(h.View(100, 30), "No active course") {
		t.Error("expected enroll hint")
	}
	// Only QUIT is enabled.
	if h.menu.Selected != 3 {
		t.Errorf("Selected = %d, want 3", h.menu.Selected)
	}
}

func TestHomeScreen_StudyPushesScreen(t *testing.T) {
	h := New(testDeps(&mockPredictor{res: testResult()}))

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*study.StudyScreen); !ok {
		t.Errorf("pushed %T, want *study.StudyScreen", msg.Screen)
	}
}

func TestHomeScreen_Title(t *testing.T) {
	if New(testDeps(&mockPredictor{})).Title() != "Home" {
		t.Error("unexpected title")
	}
}
