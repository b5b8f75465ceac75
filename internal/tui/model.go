// Package tui implements the recording browser behind tdb view.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/trace"
)

// Entry is one row of the browser
type Entry struct {
	Event    domain.EventRecord
	VarNames []string
	Locals   map[string]any
}

const (
	sideWidth     = 32
	chromeHeight  = 3 // header, blank, footer
	defaultWidth  = 80
	defaultHeight = 24
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	kindStyles    = map[string]lipgloss.Style{
		string(trace.KindCall):      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		string(trace.KindReturn):    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		string(trace.KindException): lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
	sideStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			PaddingLeft(1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Model is the bubbletea model of the browser
type Model struct {
	title      string
	entries    []Entry
	selected   int
	showLocals bool

	viewport viewport.Model
	keys     KeyMap
	width    int
	height   int
	ready    bool
}

// New creates a browser over entries
func New(title string, entries []Entry) Model {
	m := Model{
		title:      title,
		entries:    entries,
		showLocals: true,
		keys:       DefaultKeyMap(),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Selected returns the index of the selected entry
func (m Model) Selected() int { return m.selected }

// Init implements tea.Model
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.ready = true
	case tea.KeyMsg:
		page := max(1, m.viewport.Height-1)
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.PageUp):
			m.move(-page)
		case key.Matches(msg, m.keys.PageDown):
			m.move(page)
		case key.Matches(msg, m.keys.Home):
			m.move(-len(m.entries))
		case key.Matches(msg, m.keys.End):
			m.move(len(m.entries))
		case key.Matches(msg, m.keys.Locals):
			m.showLocals = !m.showLocals
			m.resize(m.width, m.height)
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	if len(m.entries) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.entries)-1)
	m.refresh()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	listWidth := width
	if m.showLocals {
		listWidth = max(1, width-sideWidth-1)
	}
	m.viewport = viewport.New(listWidth, max(1, height-chromeHeight))
	m.refresh()
}

// refresh re-renders the list and scrolls the selection into view
func (m *Model) refresh() {
	rows := make([]string, len(m.entries))
	for i, e := range m.entries {
		row := ansi.Truncate(m.row(e), m.viewport.Width, "…")
		if i == m.selected {
			row = selectedStyle.Render(row)
		} else if style, ok := kindStyles[e.Event.Kind]; ok {
			row = style.Render(row)
		}
		rows[i] = row
	}
	m.viewport.SetContent(strings.Join(rows, "\n"))

	switch {
	case m.selected < m.viewport.YOffset:
		m.viewport.SetYOffset(m.selected)
	case m.selected >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.selected - m.viewport.Height + 1)
	}
}

func (m Model) row(e Entry) string {
	ev := e.Event
	return fmt.Sprintf("%4d %-9s %s:%d %s", ev.Seq, ev.Kind, ev.Function, ev.Line, ev.Description)
}

// View implements tea.Model
func (m Model) View() string {
	header := titleStyle.Render(fmt.Sprintf("tdb view %s", m.title))
	if len(m.entries) > 0 {
		header += fmt.Sprintf("  %d/%d", m.selected+1, len(m.entries))
	}

	body := m.viewport.View()
	if len(m.entries) == 0 {
		body = "(no events)"
	}
	if m.showLocals {
		side := sideStyle.Width(sideWidth).Height(m.viewport.Height).Render(m.localsPanel())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, side)
	}

	help := lo.Map(m.keys.ShortHelp(), func(b key.Binding, _ int) string {
		return b.Help().Key + " " + b.Help().Desc
	})
	footer := footerStyle.Render(strings.Join(help, " • "))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// localsPanel lists the selected frame's locals, declared names first
func (m Model) localsPanel() string {
	if len(m.entries) == 0 {
		return ""
	}
	e := m.entries[m.selected]
	if len(e.Locals) == 0 {
		return "no locals"
	}

	names := lo.Filter(e.VarNames, func(name string, _ int) bool {
		_, ok := e.Locals[name]
		return ok
	})
	var rest []string
	for name := range e.Locals {
		if !lo.Contains(names, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	names = append(names, rest...)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, ansi.Truncate(fmt.Sprintf("%s = %s", name, trace.Repr(e.Locals[name])), sideWidth-2, "…"))
	}
	return strings.Join(lines, "\n")
}
