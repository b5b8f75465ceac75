package debugger

import "fmt"

// State is a state of the controller's event loop
type State int

const (
	AwaitingEvent State = iota
	Rendering
	AwaitingCommand
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitingEvent:
		return "awaiting_event"
	case Rendering:
		return "rendering"
	case AwaitingCommand:
		return "awaiting_command"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}
