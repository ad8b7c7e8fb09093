package topics

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/ui/components"
	"github.com/abhisek/mnemos/internal/ui/layout"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

// TopicDetailScreen shows every signal known for one topic.
type TopicDetailScreen struct {
	signal mastery.TopicSignal
}

var _ screen.Screen = (*TopicDetailScreen)(nil)
var _ screen.KeyHintProvider = (*TopicDetailScreen)(nil)

func newTopicDetail(sig mastery.TopicSignal) *TopicDetailScreen {
	return &TopicDetailScreen{signal: sig}
}

func (d *TopicDetailScreen) Init() tea.Cmd { return nil }
func (d *TopicDetailScreen) Title() string { return d.signal.Name }

func (d *TopicDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *TopicDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *TopicDetailScreen) View(width, height int) string {
	sig := d.signal
	contentWidth := min(width-8, 70)

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)
	headStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render("  " + sig.Name))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  ·  %s  ·  %.1f%% of the exam", sig.ID, sig.Section, sig.WeightPct)))
	b.WriteString("\n\n")

	b.WriteString(headStyle.Render("  Mastery"))
	b.WriteString("\n")
	ema := components.NewProgressBar("Recall   ", sig.Score, true, contentWidth)
	ema.ByMastery = true
	b.WriteString("  " + ema.View() + "\n")
	lapse := components.NewProgressBar("Stability", sig.LapseMastery, true, contentWidth)
	lapse.ByMastery = true
	b.WriteString("  " + lapse.View() + "\n\n")

	b.WriteString(headStyle.Render("  Reviews"))
	b.WriteString("\n")
	accuracy := "n/a"
	if sig.TotalReviews > 0 {
		accuracy = fmt.Sprintf("%.0f%%", float64(sig.CorrectReviews)/float64(sig.TotalReviews)*100)
	}
	b.WriteString(dimStyle.Render("  Total:     ") + valStyle.Render(fmt.Sprintf("%d", sig.TotalReviews)) + "\n")
	b.WriteString(dimStyle.Render("  Accuracy:  ") + valStyle.Render(accuracy) + "\n\n")

	b.WriteString(headStyle.Render("  Cards"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  Tracked:   ") + valStyle.Render(fmt.Sprintf("%d", sig.Cards)) + "\n")
	b.WriteString(dimStyle.Render("  Mastered:  ") + valStyle.Render(fmt.Sprintf("%d", sig.MasteredCards)) + "\n")
	b.WriteString(dimStyle.Render("  Lapses:    ") + valStyle.Render(fmt.Sprintf("%d", sig.Lapses)) + "\n")

	if len(sig.Keywords) > 0 {
		b.WriteString("\n")
		b.WriteString(headStyle.Render("  Keywords"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(strings.Join(sig.Keywords, ", ")))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
