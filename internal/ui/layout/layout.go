package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	// barPadding is the border plus the inner margin of header and footer.
	barPadding = 4
	hintGap    = "   "
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) + " " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// ContentHeight returns the rows left for a screen between header and footer.
func ContentHeight(totalHeight int) int {
	return max(totalHeight-HeaderHeight-FooterHeight, 0)
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("mnemos needs at least %d x %d\n\nwindow is %d x %d", MinWidth, MinHeight, width, height))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader draws the top bar: app name, the screen title centred and
// status on the right, typically the active course and its due count. The
// title is cut when the three do not fit.
func RenderHeader(title, status string, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  mnemos")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-barPadding, 0)
	room := inner - lipgloss.Width(name) - lipgloss.Width(right) - 2
	center := lipgloss.NewStyle().Foreground(theme.Text).MaxWidth(max(room, 0)).Render(title)

	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(name), 1)
	rightGap := max(inner-lipgloss.Width(name)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	row := name + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right
	return bar(width).Render(row)
}

// RenderFooter draws the key hints. Hints that would overflow the bar are
// dropped from the end.
func RenderFooter(hints []KeyHint, width int) string {
	inner := max(width-barPadding, 0)
	row := " "
	for i, h := range hints {
		part := h.render()
		if i > 0 {
			part = hintGap + part
		}
		if lipgloss.Width(row)+lipgloss.Width(part) > inner {
			break
		}
		row += part
	}
	return bar(width).Render(" " + row)
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the rows between them.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
