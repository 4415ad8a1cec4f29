package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/winsize/size"
	"github.com/drake/winsize/ui"
)

const (
	maxOutputLines   = 200 // Retained script output
	shownOutputLines = 5
	frameCacheSize   = 64
)

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	styles Styles
	keys   keyMap
	help   help.Model
	frames *frameCache

	// Shown under the title, e.g. "throttle 300ms"
	caption string

	// Raw window size as Bubble Tea reports it, unthrottled
	width     int
	height    int
	rawEvents int

	// Rate-limited size pushed by the session
	published size.Dimensions
	updates   int

	output   []string
	outbound chan<- ui.Event
	quitting bool
}

// NewModel creates a new TUI model.
func NewModel(outbound chan<- ui.Event, caption string) Model {
	styles := DefaultStyles()
	return Model{
		styles:   styles,
		keys:     defaultKeyMap(),
		help:     help.New(),
		frames:   newFrameCache(styles, frameCacheSize),
		caption:  caption,
		outbound: outbound,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rawEvents++
		m.help.Width = msg.Width
		return m, nil

	case ui.SizeMsg:
		m.published = size.Dimensions(msg)
		m.updates++
		return m, nil

	case ui.PrintMsg:
		m.output = append(m.output, splitOutput(string(msg))...)
		if len(m.output) > maxOutputLines {
			m.output = m.output[len(m.output)-maxOutputLines:]
		}
		return m, nil

	case tea.ResumeMsg:
		m.sendOutbound(ui.EventResumed)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Suspend):
		return m, tea.Suspend

	case key.Matches(msg, m.keys.Reload):
		m.sendOutbound(ui.EventReload)

	case key.Matches(msg, m.keys.Clear):
		m.output = nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// sendOutbound forwards a request to the session without blocking the
// Bubble Tea loop.
func (m Model) sendOutbound(ev ui.Event) {
	if m.outbound == nil {
		return
	}
	select {
	case m.outbound <- ev:
	default:
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	header := m.renderHeader()
	output := m.renderOutput()
	status := m.renderStatus()
	helpView := m.help.View(m.keys)

	used := lipgloss.Height(header) + lipgloss.Height(status) + lipgloss.Height(helpView)
	if output != "" {
		used += lipgloss.Height(output)
	}
	areaH := max(m.height-used, 1)

	parts := []string{header, m.frames.render(m.published, m.width, areaH)}
	if output != "" {
		parts = append(parts, output)
	}
	parts = append(parts, status, helpView)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	title := m.styles.Dimension.Render("winsize")
	if m.caption == "" {
		return title
	}
	return title + m.styles.Muted.Render("  "+m.caption)
}

func (m Model) renderOutput() string {
	if len(m.output) == 0 {
		return ""
	}
	lines := m.output
	if len(lines) > shownOutputLines {
		lines = lines[len(lines)-shownOutputLines:]
	}
	fitted := make([]string, len(lines))
	for i, line := range lines {
		fitted[i] = fitLine(line, m.width-m.styles.Output.GetHorizontalFrameSize())
	}
	return m.styles.Output.Render(strings.Join(fitted, "\n"))
}

func (m Model) renderStatus() string {
	s := m.styles
	field := func(label string, value any) string {
		return s.StatusLabel.Render(label+" ") + s.StatusValue.Render(fmt.Sprint(value))
	}

	terminal := field("terminal", fmt.Sprintf("%dx%d", m.width, m.height))
	if m.published != (size.Dimensions{Width: m.width, Height: m.height}) {
		terminal = s.StatusLabel.Render("terminal ") + s.Pending.Render(fmt.Sprintf("%dx%d", m.width, m.height))
	}

	return s.StatusBar.Render(strings.Join([]string{
		terminal,
		field("resize events", m.rawEvents),
		field("updates", m.updates),
	}, s.Muted.Render(" · ")))
}
