package topics

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/prediction"
	"github.com/abhisek/mnemos/internal/router"
	"github.com/abhisek/mnemos/internal/screen"
	"github.com/abhisek/mnemos/internal/ui/components"
	"github.com/abhisek/mnemos/internal/ui/layout"
	"github.com/abhisek/mnemos/internal/ui/theme"
)

type rowKind int

const (
	rowSectionHeader rowKind = iota
	rowTopic
)

type row struct {
	kind    rowKind
	section string
	signal  *mastery.TopicSignal
}

type signalsLoadedMsg struct {
	Signals []mastery.TopicSignal
	Err     error
}

// TopicsScreen lists a course's topics by section with their mastery.
type TopicsScreen struct {
	reader       mastery.Reader
	learnerID    string
	course       *catalog.Course
	rows         []row
	cursor       int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a new TopicsScreen.
func New(reader mastery.Reader, learnerID string, course *catalog.Course) *TopicsScreen {
	return &TopicsScreen{reader: reader, learnerID: learnerID, course: course}
}

func (s *TopicsScreen) Init() tea.Cmd {
	reader, learnerID, course := s.reader, s.learnerID, s.course
	return func() tea.Msg {
		signals, err := mastery.LoadSignals(context.Background(), reader, learnerID, course)
		return signalsLoadedMsg{Signals: signals, Err: err}
	}
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signalsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.setRows(msg.Signals)
	case tea.KeyMsg:
		if len(s.rows) == 0 {
			return s, nil
		}
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextSection()
		case "enter":
			return s, s.selectTopic()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// setRows groups signals under their section headers in syllabus order.
func (s *TopicsScreen) setRows(signals []mastery.TopicSignal) {
	s.rows = s.rows[:0]
	section := ""
	for i := range signals {
		sig := &signals[i]
		if i == 0 || sig.Section != section {
			section = sig.Section
			s.rows = append(s.rows, row{kind: rowSectionHeader, section: section})
		}
		s.rows = append(s.rows, row{kind: rowTopic, section: section, signal: sig})
	}
	s.cursor = 0
	for i, r := range s.rows {
		if r.kind == rowTopic {
			s.cursor = i
			break
		}
	}
}

func (s *TopicsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading topics...")
	}
	if len(s.rows) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  This course has no topics.")
	}

	s.adjustScroll(height)

	var lines []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}
		switch r.kind {
		case rowSectionHeader:
			lines = append(lines, renderSectionHeader(r.section, width))
		case rowTopic:
			lines = append(lines, renderTopicRow(r, i == s.cursor, width))
		}
		visible++
	}
	return strings.Join(lines, "\n")
}

func (s *TopicsScreen) Title() string {
	return "Topics"
}

// KeyHints returns the key binding hints for the footer.
func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Section"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping section headers.
func (s *TopicsScreen) moveCursor(delta int) {
	for next := s.cursor + delta; next >= 0 && next < len(s.rows); next += delta {
		if s.rows[next].kind == rowTopic {
			s.cursor = next
			return
		}
	}
}

// nextSection jumps to the first topic of the next section, wrapping.
func (s *TopicsScreen) nextSection() {
	current := s.rows[s.cursor].section
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowTopic && s.rows[i].section != current {
			s.cursor = i
			return
		}
	}
	for i, r := range s.rows {
		if r.kind == rowTopic {
			s.cursor = i
			return
		}
	}
}

// adjustScroll keeps the cursor, and its section header when possible,
// inside the viewport.
func (s *TopicsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowSectionHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *TopicsScreen) selectTopic() tea.Cmd {
	r := s.rows[s.cursor]
	if r.kind != rowTopic || r.signal == nil {
		return nil
	}
	detail := newTopicDetail(*r.signal)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

func renderSectionHeader(section string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(strings.ToUpper(section))
}

// renderTopicRow renders one topic with its mastery bar.
func renderTopicRow(r row, selected bool, width int) string {
	sig := r.signal

	nameWidth := max(width/3, 16)
	name := sig.Name
	if len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}

	nameStyle := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	case !sig.Studied():
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	case sig.Score < prediction.WeakThreshold:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Error)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	label := fmt.Sprintf("%s%s %s",
		cursor,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("%5.1f%%", sig.WeightPct)),
	)
	bar := components.NewProgressBar("", sig.Score, true, max(width-lipgloss.Width(label)-6, 10))
	bar.ByMastery = true
	return "  " + label + "  " + bar.View()
}
