package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/vburojevic/tdb/internal/config"
	"github.com/vburojevic/tdb/internal/render"
	"golang.org/x/term"
)

// shouldUseColor respects NO_COLOR (https://no-color.org/), CLICOLOR and
// CLICOLOR_FORCE, and otherwise colors only a terminal.
func shouldUseColor(out io.Writer) bool {
	// NO_COLOR takes precedence - any value disables color
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if _, exists := os.LookupEnv("CLICOLOR_FORCE"); exists {
		return true
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// debuggerStyles picks the screen styles for a color mode
func debuggerStyles(mode string, out io.Writer) render.Styles {
	switch mode {
	case config.ColorNever:
		return render.PlainStyles()
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
		return render.ColorStyles()
	}
	if !shouldUseColor(out) {
		return render.PlainStyles()
	}
	if f, ok := out.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		// forced color on a pipe; lipgloss would detect no colors
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
	return render.ColorStyles()
}
