package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/vburojevic/tdb/internal/trace"
	"go.uber.org/zap"
)

type stepMode int

const (
	modeStep stepMode = iota
	modeNext
	modeReturn
	modeQuit
)

func (m stepMode) String() string {
	switch m {
	case modeStep:
		return "step"
	case modeNext:
		return "next"
	case modeReturn:
		return "return"
	case modeQuit:
		return "quit"
	}
	return "unknown"
}

// Player is a trace.Source that replays a Recording
type Player struct {
	rec *Recording
	log *zap.SugaredLogger

	frames map[int]*frame

	mode        stepMode
	stopFrame   trace.Frame
	returnFrame trace.Frame
}

// Option configures a Player
type Option func(*Player)

// WithLogger logs stepping decisions at debug level
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Player) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPlayer creates a player for rec
func NewPlayer(rec *Recording, opts ...Option) *Player {
	p := &Player{
		rec: rec,
		log: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run implements trace.Source, starting in step mode
func (p *Player) Run(ctx context.Context, h trace.Handler) error {
	p.frames = make(map[int]*frame)
	p.RequestStep()

	for i := range p.rec.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.mode == modeQuit {
			return nil
		}

		ev := &p.rec.Events[i]
		f := p.enter(ev)
		if p.stopHere(ev, f) {
			err := p.deliver(ctx, h, ev, f)
			if errors.Is(err, trace.ErrQuit) {
				p.RequestQuit()
				return nil
			}
			if err != nil {
				return fmt.Errorf("event %d: %w", ev.Seq, err)
			}
		}
		if ev.Kind == trace.KindReturn {
			delete(p.frames, ev.Frame.ID)
		}
	}

	p.log.Debugw("recording finished", "events", len(p.rec.Events))
	return nil
}

// enter updates the live frame for the event's activation
func (p *Player) enter(ev *Event) *frame {
	f, ok := p.frames[ev.Frame.ID]
	if !ok {
		f = &frame{}
		p.frames[ev.Frame.ID] = f
	}
	f.rec = ev.Frame
	f.caller = p.frames[ev.Frame.Caller]
	return f
}

func (p *Player) stopHere(ev *Event, f *frame) bool {
	switch p.mode {
	case modeQuit:
		return false
	case modeStep:
		return true
	}

	if ev.Kind == trace.KindLine && p.Breakpoints(f.File())[f.Line()] {
		return true
	}
	if p.mode == modeReturn && ev.Kind == trace.KindReturn && trace.Frame(f) == p.returnFrame {
		return true
	}
	if p.stopFrame == nil || trace.Frame(f) == p.stopFrame {
		return true
	}
	return !trace.HasAncestor(f, p.stopFrame)
}

func (p *Player) deliver(ctx context.Context, h trace.Handler, ev *Event, f *frame) error {
	switch ev.Kind {
	case trace.KindCall:
		return h.OnCall(ctx, f, ev.Args)
	case trace.KindLine:
		return h.OnLine(ctx, f)
	case trace.KindReturn:
		return h.OnReturn(ctx, f, ev.Value)
	case trace.KindException:
		return h.OnException(ctx, f, ev.Exception)
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

// RequestStep implements trace.Source
func (p *Player) RequestStep() {
	p.setMode(modeStep, nil, nil)
}

// RequestNext implements trace.Source
func (p *Player) RequestNext(f trace.Frame) {
	p.setMode(modeNext, f, nil)
}

// RequestReturn stops when f returns or control is back in a caller
func (p *Player) RequestReturn(f trace.Frame) {
	var caller trace.Frame
	if f != nil {
		caller = f.Caller()
	}
	p.setMode(modeReturn, caller, f)
}

// RequestQuit implements trace.Source
func (p *Player) RequestQuit() {
	p.setMode(modeQuit, nil, nil)
}

// Breakpoints implements trace.Source
func (p *Player) Breakpoints(file string) map[int]bool {
	return p.rec.Breakpoints[file]
}

func (p *Player) setMode(mode stepMode, stop, ret trace.Frame) {
	p.mode = mode
	p.stopFrame = stop
	p.returnFrame = ret
	p.log.Debugw("stepping mode", "mode", mode.String())
}

var _ trace.Source = (*Player)(nil)
