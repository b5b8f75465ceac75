// Package trace defines the contract between the debugger and an event source
package trace

import (
	"context"
	"errors"
)

// ErrQuit is returned by a Handler to stop the source cleanly
var ErrQuit = errors.New("debugging ended")

// Kind identifies the boundary a trace event was reported at
type Kind string

const (
	KindCall      Kind = "call"
	KindLine      Kind = "line"
	KindReturn    Kind = "return"
	KindException Kind = "exception"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCall, KindLine, KindReturn, KindException:
		return true
	}
	return false
}

// Frame is a read-only view of a paused execution point
type Frame interface {
	Function() string
	Line() int
	File() string
	// Locals maps bound local variable names to their values
	Locals() map[string]any
	// VariableNames lists declared locals in order, bound or not
	VariableNames() []string
	// Caller returns nil for the outermost frame
	Caller() Frame
}

// Exception describes an exception raised in a frame
type Exception struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// Handler receives trace events; the source waits for each callback to return
type Handler interface {
	OnCall(ctx context.Context, frame Frame, args string) error
	OnLine(ctx context.Context, frame Frame) error
	OnReturn(ctx context.Context, frame Frame, value any) error
	OnException(ctx context.Context, frame Frame, exc Exception) error
}

// Source produces trace events and takes stepping requests during callbacks
type Source interface {
	// Run delivers events to h until the program ends or h fails; ErrQuit yields nil
	Run(ctx context.Context, h Handler) error

	RequestStep()
	RequestNext(frame Frame)
	RequestReturn(frame Frame)
	RequestQuit()

	// Breakpoints returns the lines of file that carry a breakpoint
	Breakpoints(file string) map[int]bool
}

// SourceReader looks up source text, ok is false past the end of the file
type SourceReader interface {
	SourceLine(file string, line int) (text string, ok bool, err error)
}

// Depth returns the number of callers above frame
func Depth(frame Frame) int {
	depth := 0
	for f := frame.Caller(); f != nil; f = f.Caller() {
		depth++
	}
	return depth
}

// HasAncestor reports whether ancestor is among frame's callers
func HasAncestor(frame, ancestor Frame) bool {
	if frame == nil || ancestor == nil {
		return false
	}
	for f := frame.Caller(); f != nil; f = f.Caller() {
		if f == ancestor {
			return true
		}
	}
	return false
}
