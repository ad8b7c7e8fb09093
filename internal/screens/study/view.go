package study

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/mnemos/internal/session"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/ui/components"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.state == nil {
		return renderCentered(width, theme.TextDim, "\n\n\n  Loading due cards...")
	}
	if s.state.Phase == sess.PhaseDone && s.state.TotalReviewed == 0 {
		return renderCentered(width, theme.TextDim,
			"\n\n\n  Nothing is due right now.\n\n  Press Enter to go back.")
	}
	return s.renderCard(width)
}

func (s *StudyScreen) renderCard(width int) string {
	state := s.state
	item := state.Current()
	if item == nil {
		return renderCentered(width, theme.TextDim, "\n\n\n  Wrapping up...")
	}

	var b strings.Builder

	// Info line.
	topic := item.Card.TopicID
	if state.Course != nil && topic != "" {
		if t, err := state.Course.Topic(topic); err == nil {
			topic = t.Name
		}
	}
	if topic == "" {
		topic = "Unassigned"
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + topic)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s  %d left  %s %d/%d",
			item.State.State,
			state.Remaining(),
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			state.TotalCorrect,
			state.TotalReviewed,
		))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	bar := components.NewProgressBar("", state.Progress(), true, max(width-8, 10))
	b.WriteString("  " + bar.View())
	b.WriteString("\n\n")

	cardWidth := min(width-8, 72)
	front := theme.Card.
		Width(cardWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(item.Card.Front)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, front))
	b.WriteString("\n\n")

	switch state.Phase {
	case sess.PhaseFront:
		b.WriteString(renderCentered(width, theme.TextDim, "Press Space to show the answer"))
	case sess.PhaseBack, sess.PhaseSubmitting:
		back := theme.Card.
			Width(cardWidth).
			Foreground(theme.Secondary).
			Render(item.Card.Back)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, back))
		b.WriteString("\n\n")
		if state.Phase == sess.PhaseSubmitting {
			b.WriteString(renderCentered(width, theme.TextDim, "Saving..."))
		} else {
			b.WriteString(renderCentered(width, theme.Text, ratingPrompt()))
		}
	}

	if s.submitErr != "" {
		b.WriteString("\n\n")
		b.WriteString(renderCentered(width, theme.Error, "Could not save: "+s.submitErr))
	} else if line := s.lastOutcomeLine(); line != "" {
		b.WriteString("\n\n")
		b.WriteString(renderCentered(width, theme.TextDim, line))
	}

	return b.String()
}

// lastOutcomeLine describes the previous grade and when that card returns.
func (s *StudyScreen) lastOutcomeLine() string {
	out := s.state.LastOutcome
	if out == nil {
		return ""
	}
	line := fmt.Sprintf("Last: %s, back in %s", out.Event.Rating, FormatInterval(out.State.Due.Sub(out.Event.ReviewedAt)))
	if out.Mastery != nil {
		line += fmt.Sprintf(", topic mastery %.0f%%", out.Mastery.Score*100)
	}
	return line
}

func ratingPrompt() string {
	parts := make([]string, 0, len(spacedrep.Ratings))
	for _, r := range spacedrep.Ratings {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(theme.RatingColor(int(r))).
			Render(fmt.Sprintf("[%d] %s", int(r), r)))
	}
	return strings.Join(parts, "   ")
}

// FormatInterval renders a scheduling gap compactly: 10m, 6h, 4d, 3mo.
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 60*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dmo", int(d.Hours()/24/30))
	}
}

func renderCentered(width int, fg color.Color, text string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(fg).
		Render(text)
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return renderCentered(width, theme.Error,
		fmt.Sprintf("\n\n\n  Error: %s\n\n  Press Esc to go back.", errMsg))
}
