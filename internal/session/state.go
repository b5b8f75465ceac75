// Package session holds the per-run UI state of the debugger
package session

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/trace"
)

// NoEvent is the event text before anything has happened
const NoEvent = "none"

// State is the live state of one debugging session, owned by the event loop
type State struct {
	previous string
	current  string

	visible    []string
	watches    []string
	showLocals bool

	stats Stats
}

// Stats counts what happened during a session
type Stats struct {
	Calls      int
	Lines      int
	Returns    int
	Exceptions int
	Commands   int
}

// Events returns the total number of events
func (s Stats) Events() int {
	return s.Calls + s.Lines + s.Returns + s.Exceptions
}

// New creates session state with the given locals panel setting
func New(showLocals bool) *State {
	return &State{
		previous:   NoEvent,
		current:    NoEvent,
		showLocals: showLocals,
	}
}

// RecordEvent shifts the current description to previous and stores text
func (s *State) RecordEvent(text string) {
	s.previous = s.current
	s.current = text
}

// Previous returns the description of the event before the current one
func (s *State) Previous() string { return s.previous }

// Current returns the description of the latest event
func (s *State) Current() string { return s.current }

// SetVisibleVariables replaces the names shown in the locals panel
func (s *State) SetVisibleVariables(names []string) {
	s.visible = slices.Clone(names)
}

func (s *State) VisibleVariables() []string {
	return slices.Clone(s.visible)
}

// AddWatch starts watching name, ignoring blanks and duplicates
func (s *State) AddWatch(name string) {
	name = strings.TrimSpace(name)
	if name == "" || lo.Contains(s.watches, name) {
		return
	}
	s.watches = append(s.watches, name)
}

// RemoveWatch stops watching name
func (s *State) RemoveWatch(name string) {
	s.watches = lo.Without(s.watches, strings.TrimSpace(name))
}

// Watches returns the watched names in insertion order
func (s *State) Watches() []string {
	return slices.Clone(s.watches)
}

// ToggleLocals flips the locals panel
func (s *State) ToggleLocals() {
	s.showLocals = !s.showLocals
}

func (s *State) ShowLocals() bool { return s.showLocals }

// CountEvent adds one event of kind to the stats
func (s *State) CountEvent(kind trace.Kind) {
	switch kind {
	case trace.KindCall:
		s.stats.Calls++
	case trace.KindLine:
		s.stats.Lines++
	case trace.KindReturn:
		s.stats.Returns++
	case trace.KindException:
		s.stats.Exceptions++
	}
}

// CountCommand adds one dispatched command to the stats
func (s *State) CountCommand() {
	s.stats.Commands++
}

// Stats returns the current statistics
func (s *State) Stats() Stats { return s.stats }

// Summary returns the statistics in transcript form
func (s *State) Summary(elapsed time.Duration) domain.SessionSummary {
	return domain.SessionSummary{
		Events:          s.stats.Events(),
		Calls:           s.stats.Calls,
		Lines:           s.stats.Lines,
		Returns:         s.stats.Returns,
		Exceptions:      s.stats.Exceptions,
		Commands:        s.stats.Commands,
		DurationSeconds: int(elapsed.Seconds()),
	}
}
