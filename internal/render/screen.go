// Package render lays out one screen of debugger state
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/session"
	"github.com/vburojevic/tdb/internal/trace"
)

const (
	// DefaultBanner is shown above the frame headers
	DefaultBanner = " > Minimal Interactive Trace Debugger"
	// DefaultContextBefore is how far above the current line the window starts
	DefaultContextBefore = 5
	// DefaultHeight is used when the terminal reports no usable height
	DefaultHeight = 15

	endOfFile = "[EOF]"
	filler    = " ||"
	noCaller  = "none"
)

// Screen holds the layout settings for one render
type Screen struct {
	Width         int
	Height        int
	Banner        string
	ContextBefore int
	Styles        Styles
}

// View is the state a screen is rendered from
type View struct {
	Frame       trace.Frame
	Session     *session.State
	Breakpoints map[int]bool
	Source      trace.SourceReader
	// Notice is shown below the footer, usually an error from the last cycle
	Notice string
}

// WindowRows returns the number of rows the source window occupies
func (s Screen) WindowRows() int {
	h := s.Height
	if h <= 0 {
		h = DefaultHeight
	}
	return h/2 + 1
}

// Render lays out the screen, returning a full layout even with a source error
func (s Screen) Render(v View) ([]string, error) {
	var rows []string

	rows = append(rows, s.fit(""))
	if s.Banner != "" {
		for _, line := range strings.Split(s.Banner, "\n") {
			rows = append(rows, s.Styles.apply(s.Styles.Banner, s.fit(line)))
		}
	}

	caller := noCaller
	if c := v.Frame.Caller(); c != nil {
		caller = c.Function()
	}
	rows = append(rows,
		s.fit(" (prev) "+caller),
		s.fit(" (curr) "+v.Frame.Function()),
		s.fit(""),
	)

	window, err := s.SourceWindow(v.Frame, v.Breakpoints, v.Source)
	rows = append(rows, window...)

	locals := v.Frame.Locals()
	if watched := present(v.Session.Watches(), locals); len(watched) > 0 {
		rows = append(rows, s.fit(""))
		for _, name := range watched {
			rows = append(rows, s.Styles.apply(s.Styles.Panel, s.fit(panelRow(" watching> ", name, locals[name]))))
		}
	}

	if v.Session.ShowLocals() {
		if visible := present(v.Session.VisibleVariables(), locals); len(visible) > 0 {
			rows = append(rows, s.fit(""))
			for _, name := range visible {
				rows = append(rows, s.fit(panelRow("   locals> ", name, locals[name])))
			}
		}
	}

	rows = append(rows, s.fit(""), s.Styles.apply(s.Styles.Footer, s.fit(" previous> "+v.Session.Previous())))
	if v.Notice != "" {
		rows = append(rows, s.Styles.apply(s.Styles.Notice, s.fit(" ! "+v.Notice)))
	}

	return rows, err
}

// SourceWindow renders exactly WindowRows numbered rows around the current line
func (s Screen) SourceWindow(frame trace.Frame, breakpoints map[int]bool, src trace.SourceReader) ([]string, error) {
	before := s.ContextBefore
	if before < 0 {
		before = 0
	}
	size := s.WindowRows()
	first := max(1, frame.Line()-before)
	last := first + size - 1

	rows := make([]string, 0, size)
	var err error
	for lineno := first; lineno <= last; lineno++ {
		var (
			text string
			ok   bool
		)
		if src != nil {
			text, ok, err = src.SourceLine(frame.File(), lineno)
		}
		if !ok {
			rows = append(rows, s.fit(endOfFile))
			break
		}

		row := s.fit(sourceRow(lineno, text, breakpoints[lineno], lineno == frame.Line()))
		if lineno == frame.Line() {
			row = s.Styles.apply(s.Styles.Current, row)
		}
		rows = append(rows, row)
	}

	for len(rows) < size {
		rows = append(rows, s.fit(filler))
	}
	return rows, err
}

func sourceRow(lineno int, text string, breakpoint, current bool) string {
	bp := " "
	if breakpoint {
		bp = "B"
	}
	marker := "  "
	if current {
		marker = "->"
	}
	text = strings.ReplaceAll(strings.TrimRight(text, "\r\n"), "\t", "    ")
	return fmt.Sprintf("%3d %s%s %s", lineno, bp, marker, text)
}

func panelRow(label, name string, value any) string {
	return fmt.Sprintf("%s%7s : %s", label, name, trace.Repr(value))
}

// present keeps the names bound in locals, in order
func present(names []string, locals map[string]any) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		_, ok := locals[name]
		return ok
	})
}

// fit clips and pads row to the screen width, a width <= 0 leaves it alone
func (s Screen) fit(row string) string {
	if s.Width <= 0 {
		return row
	}
	row = ansi.Truncate(row, s.Width, "")
	if pad := s.Width - ansi.StringWidth(row); pad > 0 {
		row += strings.Repeat(" ", pad)
	}
	return row
}
