package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette, muted for long reading sessions.
var (
	Primary   = lipgloss.Color("#6366F1") // indigo
	Secondary = lipgloss.Color("#14B8A6") // teal
	Accent    = lipgloss.Color("#F59E0B") // amber
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	// Card frames the front and back of a flashcard.
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Mastery bands used for bars and topic rows.
const (
	StrongMastery = 0.85
	FairMastery   = 0.6
	WeakMastery   = 0.3
)

// MasteryColor maps a mastery score in [0,1] to a display color.
func MasteryColor(score float64) color.Color {
	switch {
	case score >= StrongMastery:
		return Success
	case score >= FairMastery:
		return Secondary
	case score >= WeakMastery:
		return Accent
	default:
		return Error
	}
}

// RatingColor colors a review grade, 1 (again) to 4 (easy).
func RatingColor(grade int) color.Color {
	switch grade {
	case 1:
		return Error
	case 2:
		return Accent
	case 3:
		return Secondary
	case 4:
		return Success
	default:
		return TextDim
	}
}
