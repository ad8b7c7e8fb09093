package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/session"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/ui/components"
	"github.com/abhisek/mnemos/internal/ui/layout"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

// SummaryScreen displays the end-of-sitting summary.
type SummaryScreen struct {
	summary *session.Summary
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary) *SummaryScreen {
	return &SummaryScreen{summary: summary}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Session Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Session complete!"))
	b.WriteString("\n\n")

	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s   Duration: %d:%02d", sum.CourseCode, mins, secs)))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Reviewed: %d        Recalled: %d        Accuracy: %.0f%%        Lapses: %d",
		sum.TotalReviewed, sum.TotalCorrect, sum.Accuracy*100, sum.Lapses)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(statsLine))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(ratingsLine(sum.Ratings)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Topics")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	for _, tr := range sum.TopicResults {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			topicLine(tr, min(width-8, 60))))
		b.WriteString("\n")
	}
	if len(sum.TopicResults) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Render("No mapped topics in this session")))
		b.WriteString("\n")
	}

	return b.String()
}

func ratingsLine(ratings map[spacedrep.Rating]int) string {
	parts := make([]string, 0, len(spacedrep.Ratings))
	for _, r := range spacedrep.Ratings {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.RatingColor(int(r))).
			Render(fmt.Sprintf("%s %d", r, ratings[r])))
	}
	return strings.Join(parts, "   ")
}

func topicLine(tr session.TopicResult, width int) string {
	name := tr.TopicName
	if len(name) > 24 {
		name = name[:23] + "…"
	}
	label := fmt.Sprintf("%-24s %d/%d", name, tr.Correct, tr.Reviewed)
	if tr.Lapses > 0 {
		label += fmt.Sprintf(" (%d lapsed)", tr.Lapses)
	}
	if tr.Score < 0 {
		return lipgloss.NewStyle().Foreground(theme.Text).Render(label)
	}
	bar := components.NewProgressBar(label, tr.Score, true, width)
	bar.ByMastery = true
	return bar.View()
}
