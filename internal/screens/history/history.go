package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
	"github.com/abhisek/mnemos/internal/ui/layout"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

const (
	snapshotLimit = 50
	recentWindow  = 7 * 24 * time.Hour
	recentLimit   = 15
)

// Snapshots lists saved predictions.
type Snapshots interface {
	History(ctx context.Context, learnerID, courseCode string, limit int) ([]store.PredictionSnapshot, error)
}

type historyLoadedMsg struct {
	Snapshots []store.PredictionSnapshot
	Recent    []spacedrep.ReviewEvent
	Err       error
}

// HistoryScreen displays saved predictions and the latest reviews.
type HistoryScreen struct {
	snapshots Snapshots
	events    store.ReviewEventRepo
	learnerID string
	course    *catalog.Course
	snaps     []store.PredictionSnapshot
	recent    []spacedrep.ReviewEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
	now       func() time.Time
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(snapshots Snapshots, events store.ReviewEventRepo, learnerID string, course *catalog.Course) *HistoryScreen {
	return &HistoryScreen{
		snapshots: snapshots,
		events:    events,
		learnerID: learnerID,
		course:    course,
		expanded:  make(map[int]bool),
		now:       time.Now,
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	snapshots, events, learnerID, course := s.snapshots, s.events, s.learnerID, s.course
	from := s.now().Add(-recentWindow)
	return func() tea.Msg {
		ctx := context.Background()

		snaps, err := snapshots.History(ctx, learnerID, course.Code, snapshotLimit)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		recent, err := events.ListByLearner(ctx, learnerID, store.QueryOpts{From: from})
		if err != nil {
			return historyLoadedMsg{Snapshots: snaps}
		}
		if len(recent) > recentLimit {
			recent = recent[len(recent)-recentLimit:]
		}
		// Newest first.
		for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
			recent[i], recent[j] = recent[j], recent[i]
		}
		return historyLoadedMsg{Snapshots: snaps, Recent: recent}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.snaps = msg.Snapshots
			s.recent = msg.Recent
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.snaps)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(sectionTitle(width, "Predictions"))

	if len(s.snaps) == 0 {
		b.WriteString(placeCentered(width, theme.Hint.Render("No saved predictions. Run `mnemos predict --save`.")))
	}
	for i, snap := range s.snaps {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  score %5.1f  pass %3.0f%%  %s",
			prefix,
			snap.CreatedAt.Local().Format("Jan 02, 2006 15:04"),
			snap.PredictedScore,
			snap.PassProbability*100,
			trend(s.snaps, i))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(placeCentered(width, style.Render(line)))

		if s.expanded[i] {
			detail := fmt.Sprintf("    weighted mastery %.0f%%  ·  %d weak topics  ·  %s",
				snap.WeightedMastery*100, snap.WeakTopicCount, snap.SnapshotID)
			b.WriteString(placeCentered(width, theme.Hint.Render(detail)))
		}
	}

	b.WriteString("\n")
	b.WriteString(sectionTitle(width, "Recent reviews"))
	if len(s.recent) == 0 {
		b.WriteString(placeCentered(width, theme.Hint.Render("No reviews in the last 7 days.")))
	}
	for _, ev := range s.recent {
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if !ev.Correct() {
			style = style.Foreground(theme.Error)
		}
		line := fmt.Sprintf("%s  %-16s %-6s %s → %s",
			ev.ReviewedAt.Local().Format("Jan 02 15:04"),
			ev.CardID, ev.Rating, ev.StateBefore, ev.StateAfter)
		b.WriteString(placeCentered(width, style.Render(line)))
	}

	return b.String()
}

// trend compares a snapshot with the one saved before it. Snapshots are
// newest first.
func trend(snaps []store.PredictionSnapshot, i int) string {
	if i+1 >= len(snaps) {
		return ""
	}
	delta := snaps[i].PredictedScore - snaps[i+1].PredictedScore
	switch {
	case delta > 0.05:
		return lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("▲ %.1f", delta))
	case delta < -0.05:
		return lipgloss.NewStyle().Foreground(theme.Error).Render(fmt.Sprintf("▼ %.1f", -delta))
	default:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Render("=")
	}
}

func sectionTitle(width int, title string) string {
	return placeCentered(width, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(title)) + "\n"
}

func placeCentered(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s) + "\n"
}
