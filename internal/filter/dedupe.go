package filter

import (
	"fmt"

	"github.com/vburojevic/tdb/internal/domain"
)

// Collapsed is an event together with the number of identical events that
// followed it directly.
type Collapsed struct {
	Event *domain.EventRecord
	Count int // 1 = no repeats
}

// Collapser folds consecutive identical events, such as a loop body stepped
// through line by line.
type Collapser struct {
	lastKey string
	current *Collapsed
}

// NewCollapser creates a new collapser
func NewCollapser() *Collapser {
	return &Collapser{}
}

// Add feeds the next event. When ev differs from the previous one the
// finished group is returned.
func (c *Collapser) Add(ev *domain.EventRecord) (done *Collapsed) {
	key := eventKey(ev)
	if c.current != nil && key == c.lastKey {
		c.current.Count++
		return nil
	}

	done = c.current
	c.current = &Collapsed{Event: ev, Count: 1}
	c.lastKey = key
	return done
}

// Flush returns the pending group, if any
func (c *Collapser) Flush() *Collapsed {
	done := c.current
	c.current = nil
	c.lastKey = ""
	return done
}

// Collapse folds a whole slice of events
func Collapse(events []domain.EventRecord) []Collapsed {
	c := NewCollapser()
	var out []Collapsed
	for i := range events {
		if done := c.Add(&events[i]); done != nil {
			out = append(out, *done)
		}
	}
	if done := c.Flush(); done != nil {
		out = append(out, *done)
	}
	return out
}

func eventKey(ev *domain.EventRecord) string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%d\x00%s", ev.Kind, ev.Function, ev.File, ev.Line, ev.Description)
}
