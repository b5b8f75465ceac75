package render

import "github.com/charmbracelet/lipgloss"

// Styles decorates rows after layout, the zero value renders plain text
type Styles struct {
	enabled bool

	Banner  lipgloss.Style
	Current lipgloss.Style
	Panel   lipgloss.Style
	Footer  lipgloss.Style
	Notice  lipgloss.Style
}

// PlainStyles renders every row unchanged
func PlainStyles() Styles {
	return Styles{}
}

// ColorStyles returns the default colour scheme
func ColorStyles() Styles {
	return Styles{
		enabled: true,
		Banner:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Current: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Panel:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Footer:  lipgloss.NewStyle().Faint(true),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (s Styles) apply(style lipgloss.Style, row string) string {
	if !s.enabled {
		return row
	}
	return style.Render(row)
}
