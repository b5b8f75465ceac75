// Package debugger turns trace events into a paint and prompt cycle and
// drives the source's stepping mode from the commands typed at the prompt.
// Commands that resume return from the event callback, anything else
// repaints and prompts again on the same frame
package debugger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/tdb/internal/command"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/render"
	"github.com/vburojevic/tdb/internal/session"
	"github.com/vburojevic/tdb/internal/terminal"
	"github.com/vburojevic/tdb/internal/trace"
	"go.uber.org/zap"
)

// DefaultPrompt lists the commands
const DefaultPrompt = " [ ]next [s]tep-in [r]eturn [w]atch [u]nwatch [v]ars [j]ump [q]uit\n $ "

// Farewell is written when the session ends
const Farewell = " bye."

// Transcript receives a record of everything that happens in a session
type Transcript interface {
	WriteSessionStart(*domain.SessionStart) error
	WriteEvent(*domain.EventRecord) error
	WriteCommand(*domain.CommandRecord) error
	WriteSessionEnd(*domain.SessionEnd) error
}

// Options configures a Controller, an empty Prompt selects DefaultPrompt
type Options struct {
	Banner        string
	Prompt        string
	ContextBefore int
	HideLocals    bool
	Styles        render.Styles

	// Source looks up the text shown in the source window
	Source trace.SourceReader

	Transcript Transcript
	SessionID  string
	Recording  string

	Logger *zap.SugaredLogger
	Clock  clock.Clock
}

type handlerFunc func(arg string) error

// Controller is the debugger's event loop and a trace.Handler
type Controller struct {
	source trace.Source
	term   terminal.Terminal
	opts   Options
	log    *zap.SugaredLogger
	clock  clock.Clock

	session  *session.State
	handlers map[command.Action]handlerFunc

	state   State
	frame   trace.Frame
	seq     int
	notice  string
	reason  string
	err     error
	started time.Time
}

// New creates a controller that debugs src on term
func New(src trace.Source, term terminal.Terminal, opts Options) *Controller {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	c := &Controller{
		source:  src,
		term:    term,
		opts:    opts,
		log:     opts.Logger,
		clock:   opts.Clock,
		session: session.New(!opts.HideLocals),
		state:   AwaitingEvent,
	}
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	if c.clock == nil {
		c.clock = clock.New()
	}

	c.handlers = map[command.Action]handlerFunc{
		command.ActionQuit:       c.quit,
		command.ActionStep:       c.step,
		command.ActionNext:       c.next,
		command.ActionReturn:     c.stepReturn,
		command.ActionToggleVars: c.toggleVars,
		command.ActionWatch:      c.watch,
		command.ActionUnwatch:    c.unwatch,
		command.ActionJump:       c.jump,
	}
	return c
}

// State returns the current state of the event loop
func (c *Controller) State() State { return c.state }

// Session returns the session state
func (c *Controller) Session() *session.State { return c.session }

// Run debugs until the traced program finishes or the session ends.
// Quitting, closed input and a cancelled context all return nil
func (c *Controller) Run(ctx context.Context) error {
	c.started = c.clock.Now()
	c.transcribe(func(t Transcript) error {
		return t.WriteSessionStart(domain.NewSessionStart(c.opts.SessionID, c.opts.Recording, c.started))
	})

	err := c.source.Run(ctx, c)
	switch {
	case err == nil:
		c.terminate(domain.EndFinished)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		c.terminate(domain.EndInterrupted)
		err = nil
	default:
		c.terminate(domain.EndInterrupted)
	}
	if err == nil {
		err = c.err
	}

	if werr := c.term.WriteLine(Farewell); werr != nil && err == nil {
		err = werr
	}

	summary := c.session.Summary(c.clock.Since(c.started))
	c.transcribe(func(t Transcript) error {
		return t.WriteSessionEnd(domain.NewSessionEnd(c.opts.SessionID, c.reason, summary, c.clock.Now()))
	})
	c.log.Debugw("session ended", "reason", c.reason, "events", summary.Events, "commands", summary.Commands)
	return err
}

// OnCall implements trace.Handler
func (c *Controller) OnCall(ctx context.Context, frame trace.Frame, args string) error {
	return c.handle(ctx, trace.KindCall, frame, trace.DescribeCall(frame, args))
}

// OnLine implements trace.Handler
func (c *Controller) OnLine(ctx context.Context, frame trace.Frame) error {
	return c.handle(ctx, trace.KindLine, frame, trace.DescribeLine(frame, c.opts.Source))
}

// OnReturn implements trace.Handler
func (c *Controller) OnReturn(ctx context.Context, frame trace.Frame, value any) error {
	return c.handle(ctx, trace.KindReturn, frame, trace.DescribeReturn(value))
}

// OnException implements trace.Handler
func (c *Controller) OnException(ctx context.Context, frame trace.Frame, exc trace.Exception) error {
	return c.handle(ctx, trace.KindException, frame, trace.DescribeException(exc))
}

func (c *Controller) handle(ctx context.Context, kind trace.Kind, frame trace.Frame, description string) error {
	if c.state == Terminated {
		return trace.ErrQuit
	}

	c.seq++
	c.frame = frame
	c.session.RecordEvent(description)
	c.session.SetVisibleVariables(frame.VariableNames())
	c.session.CountEvent(kind)

	c.transcribe(func(t Transcript) error {
		ev := domain.NewEventRecord(c.seq, string(kind), frame.Function(), frame.File(), frame.Line(), description)
		ev.Timestamp = c.clock.Now().UTC().Format(time.RFC3339Nano)
		return t.WriteEvent(ev)
	})

	return c.interact(ctx)
}

// interact paints and prompts until a command resumes the source
func (c *Controller) interact(ctx context.Context) error {
	for {
		c.setState(Rendering)
		c.paint()

		c.setState(AwaitingCommand)
		input, err := c.term.ReadLine(ctx, c.opts.Prompt)
		if err != nil {
			c.inputFailed(err)
			return trace.ErrQuit
		}

		resume, err := c.dispatch(ctx, input)
		if err != nil {
			c.notice = err.Error()
		}
		if c.state == Terminated {
			return trace.ErrQuit
		}
		if resume {
			c.setState(AwaitingEvent)
			return nil
		}
	}
}

// dispatch runs one command; failures and panics come back as the next notice
func (c *Controller) dispatch(ctx context.Context, input string) (resume bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			resume = false
			err = fmt.Errorf("command %q failed: %v", input, r)
		}
	}()

	action, err := command.Parse(input)
	if err != nil {
		return false, err
	}
	c.session.CountCommand()

	arg := ""
	if prompt := action.Prompt(); prompt != "" {
		arg, err = c.term.ReadLine(ctx, prompt)
		if err != nil {
			c.inputFailed(err)
			return false, nil
		}
	}

	c.log.Debugw("command", "seq", c.seq, "action", action.String(), "argument", arg)
	c.transcribe(func(t Transcript) error {
		return t.WriteCommand(&domain.CommandRecord{
			Type:          "command",
			SchemaVersion: domain.SchemaVersion,
			Seq:           c.seq,
			Input:         input,
			Action:        action.String(),
			Argument:      arg,
			Timestamp:     c.clock.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	handler, ok := c.handlers[action]
	if !ok {
		return false, fmt.Errorf("no handler for %s", action)
	}
	if err := handler(arg); err != nil {
		return false, err
	}
	return action.Resumes(), nil
}

// paint clears the terminal and writes one screen
func (c *Controller) paint() {
	defer func() {
		if r := recover(); r != nil {
			c.notice = fmt.Sprintf("render failed: %v", r)
		}
	}()

	if err := c.term.Clear(); err != nil {
		c.log.Debugw("clear failed", "error", err)
	}
	width, height := c.term.Size()
	screen := render.Screen{
		Width:         width,
		Height:        height,
		Banner:        c.opts.Banner,
		ContextBefore: c.opts.ContextBefore,
		Styles:        c.opts.Styles,
	}

	notice := c.notice
	c.notice = ""
	rows, err := screen.Render(render.View{
		Frame:       c.frame,
		Session:     c.session,
		Breakpoints: c.source.Breakpoints(c.frame.File()),
		Source:      c.opts.Source,
		Notice:      notice,
	})
	if err != nil {
		c.notice = err.Error()
	}

	for _, row := range rows {
		if err := c.term.WriteLine(row); err != nil {
			c.notice = fmt.Sprintf("write failed: %v", err)
			return
		}
	}
}

func (c *Controller) inputFailed(err error) {
	switch {
	case errors.Is(err, io.EOF):
		c.terminate(domain.EndInputClosed)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		c.terminate(domain.EndInterrupted)
	default:
		c.err = fmt.Errorf("failed to read command: %w", err)
		c.terminate(domain.EndInterrupted)
	}
	c.source.RequestQuit()
}

func (c *Controller) terminate(reason string) {
	if c.state == Terminated {
		return
	}
	c.reason = reason
	c.setState(Terminated)
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debugw("state", "from", c.state.String(), "to", s.String(), "seq", c.seq)
	c.state = s
}

// transcribe writes to the transcript; a failing one is reported once and dropped
func (c *Controller) transcribe(write func(Transcript) error) {
	if c.opts.Transcript == nil {
		return
	}
	if err := write(c.opts.Transcript); err != nil {
		c.notice = fmt.Sprintf("transcript disabled: %v", err)
		c.opts.Transcript = nil
	}
}
