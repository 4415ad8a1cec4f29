package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all the lipgloss styles for the TUI.
type Styles struct {
	// Size box
	Box       lipgloss.Style
	Dimension lipgloss.Style
	Separator lipgloss.Style
	Caption   lipgloss.Style

	// Status line
	StatusBar   lipgloss.Style
	StatusLabel lipgloss.Style
	StatusValue lipgloss.Style
	Pending     lipgloss.Style

	// Script output
	Output lipgloss.Style

	// Misc
	Muted lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 4),
		Dimension: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Bold(true),
		Separator: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Caption: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		StatusLabel: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")), // Gray
		StatusValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color("71")), // Muted green
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("179")), // Muted yellow

		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}
