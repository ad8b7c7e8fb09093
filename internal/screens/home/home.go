package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/prediction"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/screens/history"
	"github.com/abhisek/mnemos/internal/screens/study"
	"github.com/abhisek/mnemos/internal/screens/topics"
	"github.com/abhisek/mnemos/internal/store"
	"github.com/abhisek/mnemos/internal/ui/components"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

// Predictor scores a course for a learner.
type Predictor interface {
	Predict(ctx context.Context, learnerID string, course *catalog.Course) (*prediction.Result, error)
	History(ctx context.Context, learnerID, courseCode string, limit int) ([]store.PredictionSnapshot, error)
}

// Deps are the services reachable from the home screen.
type Deps struct {
	LearnerID string
	// Course is the active course. Nil disables the study screens.
	Course    *catalog.Course
	Reviewer  study.Reviewer
	Cards     study.CardLookup
	Signals   mastery.Reader
	Predictor Predictor
	Events    store.ReviewEventRepo
	// Limit and NewCards size each study sitting.
	Limit    int
	NewCards int
}

type dashboardMsg struct {
	Due    int
	Result *prediction.Result
	Err    error
}

// HomeScreen is the main dashboard of the application.
type HomeScreen struct {
	deps   Deps
	menu   components.Menu
	due    int
	result *prediction.Result
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	deps := h.deps
	noCourse := deps.Course == nil
	push := func(s func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s()} }
		}
	}

	return []components.MenuItem{
		{Label: "STUDY", Disabled: noCourse, Action: push(func() screen.Screen {
			return study.New(deps.Reviewer, deps.Cards, study.Options{
				LearnerID: deps.LearnerID,
				Course:    deps.Course,
				Limit:     deps.Limit,
				NewCards:  deps.NewCards,
			})
		})},
		{Label: "TOPICS", Disabled: noCourse, Action: push(func() screen.Screen {
			return topics.New(deps.Signals, deps.LearnerID, deps.Course)
		})},
		{Label: "HISTORY", Disabled: noCourse, Action: push(func() screen.Screen {
			return history.New(deps.Predictor, deps.Events, deps.LearnerID, deps.Course)
		})},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.deps.Course == nil {
		return nil
	}
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		due, err := deps.Reviewer.Due(ctx, review.DueQuery{
			LearnerID:  deps.LearnerID,
			CourseCode: deps.Course.Code,
			NewCards:   deps.NewCards,
		})
		if err != nil {
			return dashboardMsg{Err: err}
		}
		res, err := deps.Predictor.Predict(ctx, deps.LearnerID, deps.Course)
		if err != nil {
			return dashboardMsg{Err: err}
		}
		return dashboardMsg{Due: len(due), Result: res}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(dashboardMsg); ok {
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.due = msg.Due
		h.result = msg.Result
		h.menu.Items[0].Hint = fmt.Sprintf("%d due", h.due)
		status := fmt.Sprintf("%s · %d due", h.deps.Course.Code, h.due)
		return h, func() tea.Msg { return screen.StatusMsg(status) }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(max(width-6, 20), 64)

	var sections []string
	sections = append(sections, h.renderTitle(cw))

	switch {
	case h.deps.Course == nil:
		sections = append(sections, lipgloss.NewStyle().
			Width(cw).
			Foreground(theme.TextDim).
			Render("No active course. Enroll with `mnemos enroll <course>` and pass --course."))
	case h.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().
			Width(cw).
			Foreground(theme.Error).
			Render("Error: "+h.errMsg))
	case !h.loaded:
		sections = append(sections, theme.Hint.Render("Loading dashboard..."))
	default:
		sections = append(sections, h.renderReadiness(cw))
	}

	sections = append(sections, h.menu.View())

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) renderTitle(cw int) string {
	title := "mnemos"
	if h.deps.Course != nil {
		title = fmt.Sprintf("%s  ·  %s", h.deps.Course.Code, h.deps.Course.Name)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(title)
}

// renderReadiness renders the prediction box.
func (h *HomeScreen) renderReadiness(cw int) string {
	res := h.result
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.MasteryColor(res.PassProbability)).
		Bold(true).
		Render(strings.ToUpper(res.Recommendation.Readiness.String())))
	b.WriteString("\n")
	b.WriteString(dim.Render(res.Recommendation.Message))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Pass probability", res.PassProbability, true, cw-4)
	bar.ByMastery = true
	b.WriteString(bar.View())
	b.WriteString("\n")
	b.WriteString(dim.Render("Weighted mastery ") + val.Render(fmt.Sprintf("%.0f%%", res.WeightedMastery*100)))
	b.WriteString(dim.Render("   Passing ") + val.Render(fmt.Sprintf("%.0f%%", res.PassingScore*100)))
	b.WriteString(dim.Render("   Studied ") + val.Render(fmt.Sprintf("%d/%d", res.StudiedTopics, res.TotalTopics)))
	b.WriteString("\n")
	b.WriteString(dim.Render("Due now ") + val.Render(fmt.Sprintf("%d", h.due)))
	b.WriteString(dim.Render("   Weak topics ") + val.Render(fmt.Sprintf("%d", res.WeakTopicCount)))

	return lipgloss.NewStyle().
		Width(cw).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(b.String())
}
