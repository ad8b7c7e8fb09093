package components

import (
	"fmt"
	"image/color"

	"charm.land/bubbles/v2/progress"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/ui/theme"
)

// ProgressBar displays a labelled horizontal bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	// ByMastery colors the fill by the mastery band of Percent instead of
	// the default blend.
	ByMastery bool
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	opts := []progress.Option{progress.WithoutPercentage(), progress.WithWidth(barWidth)}
	if p.ByMastery {
		opts = append(opts, progress.WithColorFunc(func(total, _ float64) color.Color {
			return theme.MasteryColor(total)
		}))
	} else {
		opts = append(opts, progress.WithColors(theme.Secondary))
	}
	bar := progress.New(opts...)
	bar.EmptyColor = theme.Border

	result += bar.ViewAs(clampPercent(p.Percent))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(clampPercent(p.Percent)*100)))
	}

	return result
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
