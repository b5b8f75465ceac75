package debugger

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/replay"
	"github.com/vburojevic/tdb/internal/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFrame struct {
	name   string
	file   string
	line   int
	locals map[string]any
	names  []string
	caller trace.Frame
	panics bool
}

func (f *fakeFrame) Function() string { return f.name }
func (f *fakeFrame) Line() int        { return f.line }
func (f *fakeFrame) File() string     { return f.file }
func (f *fakeFrame) Locals() map[string]any {
	if f.panics {
		f.panics = false
		panic("locals unavailable")
	}
	return f.locals
}
func (f *fakeFrame) VariableNames() []string { return f.names }
func (f *fakeFrame) Caller() trace.Frame     { return f.caller }

// fakeTerm records every screen painted between clears and answers prompts
// from a script. Writes after a prompt and before the next clear go to tail
type fakeTerm struct {
	inputs   []string
	prompts  []string
	screens  [][]string
	tail     []string
	prompted bool
	onRead   func(prompt string)
	readErr  error
}

func (t *fakeTerm) Clear() error {
	t.screens = append(t.screens, nil)
	t.prompted = false
	return nil
}

func (t *fakeTerm) Size() (int, int) { return 60, 16 }

func (t *fakeTerm) ReadLine(ctx context.Context, prompt string) (string, error) {
	t.prompts = append(t.prompts, prompt)
	t.prompted = true
	if t.onRead != nil {
		t.onRead(prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(t.inputs) == 0 {
		if t.readErr != nil {
			return "", t.readErr
		}
		return "", io.EOF
	}
	line := t.inputs[0]
	t.inputs = t.inputs[1:]
	return line, nil
}

func (t *fakeTerm) WriteLine(text string) error {
	if len(t.screens) == 0 || t.prompted {
		t.tail = append(t.tail, text)
		return nil
	}
	t.screens[len(t.screens)-1] = append(t.screens[len(t.screens)-1], text)
	return nil
}

func (t *fakeTerm) screen(i int) string {
	return strings.Join(t.screens[i], "\n")
}

func (t *fakeTerm) last() string {
	if len(t.tail) == 0 {
		return ""
	}
	return t.tail[len(t.tail)-1]
}

// fakeSource delivers scripted events and records stepping requests
type fakeSource struct {
	events   []func(context.Context, trace.Handler) error
	requests []string
	quit     bool
	bps      map[int]bool
}

func (s *fakeSource) Run(ctx context.Context, h trace.Handler) error {
	for _, ev := range s.events {
		if s.quit {
			return nil
		}
		if err := ev(ctx, h); err != nil {
			if errors.Is(err, trace.ErrQuit) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *fakeSource) RequestStep()              { s.requests = append(s.requests, "step") }
func (s *fakeSource) RequestNext(f trace.Frame) { s.requests = append(s.requests, "next:"+f.Function()) }
func (s *fakeSource) RequestReturn(f trace.Frame) {
	s.requests = append(s.requests, "return:"+f.Function())
}
func (s *fakeSource) RequestQuit()                     { s.quit = true; s.requests = append(s.requests, "quit") }
func (s *fakeSource) Breakpoints(string) map[int]bool { return s.bps }

type sourceLines []string

func (l sourceLines) SourceLine(_ string, n int) (string, bool, error) {
	if n < 1 || n > len(l) {
		return "", false, nil
	}
	return l[n-1], true, nil
}

type failingSource struct{}

func (failingSource) SourceLine(string, int) (string, bool, error) {
	return "", false, errors.New("source demo.py unavailable")
}

func line(f trace.Frame) func(context.Context, trace.Handler) error {
	return func(ctx context.Context, h trace.Handler) error { return h.OnLine(ctx, f) }
}

// memTranscript keeps transcript records in memory
type memTranscript struct {
	start    *domain.SessionStart
	events   []*domain.EventRecord
	commands []*domain.CommandRecord
	end      *domain.SessionEnd
}

func (m *memTranscript) WriteSessionStart(s *domain.SessionStart) error { m.start = s; return nil }
func (m *memTranscript) WriteEvent(e *domain.EventRecord) error {
	m.events = append(m.events, e)
	return nil
}
func (m *memTranscript) WriteCommand(c *domain.CommandRecord) error {
	m.commands = append(m.commands, c)
	return nil
}
func (m *memTranscript) WriteSessionEnd(e *domain.SessionEnd) error { m.end = e; return nil }

func newController(src trace.Source, term *fakeTerm, opts Options) *Controller {
	if opts.Source == nil {
		opts.Source = sourceLines{"x = 1", "y = 2", "z = x + y"}
	}
	return New(src, term, opts)
}

func TestWatchFollowsValueAcrossEvents(t *testing.T) {
	first := &fakeFrame{name: "main", file: "demo.py", line: 1, locals: map[string]any{"x": 1, "y": 2}, names: []string{"x", "y"}}
	second := &fakeFrame{name: "main", file: "demo.py", line: 2, locals: map[string]any{"x": 5}, names: []string{"x"}}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(first), line(second)}}
	term := &fakeTerm{inputs: []string{"w", "x", "n", "u", "x", "q"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, term.screens, 4)
	assert.NotContains(t, term.screen(0), "watching>")
	assert.Contains(t, term.screen(1), " watching>       x : 1")
	assert.Contains(t, term.screen(2), " watching>       x : 5")
	assert.NotContains(t, term.screen(3), "watching>")

	assert.Equal(t, []string{"next:main", "quit"}, src.requests)
	assert.Equal(t, Terminated, c.State())
	assert.Equal(t, Farewell, term.last())
	assert.Contains(t, term.prompts, " (enter variable name) ")
}

func TestUnknownCommandRepromptsOnSameFrame(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1, locals: map[string]any{"x": 1}, names: []string{"x"}}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}

	inputs := make([]string, 0, 1001)
	for i := 0; i < 1000; i++ {
		inputs = append(inputs, "zz")
	}
	inputs = append(inputs, "q")
	term := &fakeTerm{inputs: inputs}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, term.screens, 1001)
	assert.NotContains(t, term.screen(0), "unknown command")
	assert.Contains(t, term.screen(1), ` ! unknown command "zz"`)
	assert.Equal(t, term.screen(1), term.screen(1000), "same frame, same state")
	assert.Equal(t, []string{Farewell}, term.tail)
	assert.Equal(t, []string{"quit"}, src.requests)
	assert.Equal(t, 1, c.Session().Stats().Commands, "unknown input is not a command")
}

func TestQuitStopsFurtherEvents(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{}
	term := &fakeTerm{inputs: []string{"q"}}
	c := newController(src, term, Options{})

	assert.ErrorIs(t, c.OnLine(context.Background(), frame), trace.ErrQuit)
	assert.Equal(t, Terminated, c.State())
	require.Len(t, term.screens, 1)

	// nothing is rendered or prompted once terminated
	assert.ErrorIs(t, c.OnLine(context.Background(), frame), trace.ErrQuit)
	assert.ErrorIs(t, c.OnCall(context.Background(), frame, ""), trace.ErrQuit)
	assert.Len(t, term.screens, 1)
	assert.Len(t, term.prompts, 1)
}

func TestToggleVarsRepaintsWithoutResuming(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1, locals: map[string]any{"x": 1}, names: []string{"x"}}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"v", "v", "s"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, term.screens, 3)
	assert.Contains(t, term.screen(0), "locals>       x : 1")
	assert.NotContains(t, term.screen(1), "locals>")
	assert.Contains(t, term.screen(2), "locals>       x : 1")
	assert.Equal(t, []string{"step"}, src.requests)
	assert.True(t, c.Session().ShowLocals())
}

func TestHideLocalsOption(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1, locals: map[string]any{"x": 1}, names: []string{"x"}}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"q"}}

	c := newController(src, term, Options{HideLocals: true})
	require.NoError(t, c.Run(context.Background()))
	assert.NotContains(t, term.screen(0), "locals>")
}

func TestEventsRotateAndReplaceVariables(t *testing.T) {
	outer := &fakeFrame{name: "main", file: "demo.py", line: 1, names: []string{"a", "b"}}
	inner := &fakeFrame{name: "helper", file: "demo.py", line: 3, names: []string{"c"}, caller: outer}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{
		func(ctx context.Context, h trace.Handler) error { return h.OnCall(ctx, outer, "") },
		line(outer),
		func(ctx context.Context, h trace.Handler) error { return h.OnCall(ctx, inner, "c=3") },
		func(ctx context.Context, h trace.Handler) error { return h.OnReturn(ctx, inner, 3) },
		func(ctx context.Context, h trace.Handler) error {
			return h.OnException(ctx, outer, trace.Exception{Type: "ValueError", Message: "bad"})
		},
	}}
	term := &fakeTerm{inputs: []string{"s", "s", "r", "n"}}
	c := newController(src, term, Options{})

	var previous []string
	var visible [][]string
	term.onRead = func(prompt string) {
		previous = append(previous, c.Session().Previous())
		visible = append(visible, c.Session().VisibleVariables())
	}

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, []string{
		"none",
		"called main, args: ",
		"executed [1] x = 1",
		"called helper, args: c=3",
		"returned 3",
	}, previous)
	assert.Equal(t, []string{"c"}, visible[2], "no leakage from the caller's variables")
	assert.Equal(t, []string{"a", "b"}, visible[4])
	assert.Equal(t, "raised exception ValueError: bad", c.Session().Current())
	assert.Equal(t, []string{"step", "step", "return:helper", "next:helper", "quit"}, src.requests)
	assert.Contains(t, term.screen(2), " (prev) main")
	assert.Contains(t, term.screen(2), " (curr) helper")
}

func TestJumpReadsAndDiscardsLine(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"j", "12", "q"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))

	assert.Len(t, term.screens, 2)
	assert.Contains(t, term.prompts, " (enter line) ")
	assert.Equal(t, []string{"quit"}, src.requests)
}

func TestClosedInputEndsSession(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame), line(frame)}}
	term := &fakeTerm{}
	tr := &memTranscript{}

	c := newController(src, term, Options{Transcript: tr, SessionID: "s-1"})
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, Terminated, c.State())
	assert.Len(t, term.screens, 1)
	assert.Equal(t, Farewell, term.last())
	require.NotNil(t, tr.end)
	assert.Equal(t, domain.EndInputClosed, tr.end.Reason)
	assert.Equal(t, []string{"quit"}, src.requests)
}

func TestClosedInputDuringFollowUpPrompt(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"w"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, Terminated, c.State())
	assert.Empty(t, c.Session().Watches())
}

func TestReadErrorIsReturned(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{readErr: errors.New("device gone")}

	c := newController(src, term, Options{})
	err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
	assert.Equal(t, Farewell, term.last())
}

func TestCancelledContextIsInterrupted(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	ctx, cancel := context.WithCancel(context.Background())
	term := &fakeTerm{onRead: func(string) { cancel() }}
	tr := &memTranscript{}

	c := newController(src, term, Options{Transcript: tr})
	require.NoError(t, c.Run(ctx))
	assert.Equal(t, domain.EndInterrupted, tr.end.Reason)
}

func TestRenderFailureBecomesNotice(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1, panics: true}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"v", "q"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))

	require.Len(t, term.screens, 2)
	assert.Contains(t, term.screen(1), "render failed: locals unavailable")
}

func TestSourceErrorBecomesNotice(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"v", "q"}}

	c := newController(src, term, Options{Source: failingSource{}})
	require.NoError(t, c.Run(context.Background()))

	assert.Contains(t, term.screen(0), "[EOF]")
	assert.Contains(t, term.screen(1), " ! source demo.py unavailable")
}

func TestBreakpointsAreShown(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}, bps: map[int]bool{3: true}}
	term := &fakeTerm{inputs: []string{"q"}}

	c := newController(src, term, Options{})
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, term.screen(0), "  3 B   z = x + y")
}

func TestTranscript(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1, locals: map[string]any{"x": 1}}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	mock := clock.NewMock()
	term := &fakeTerm{inputs: []string{"w", "x", "q"}, onRead: func(string) { mock.Add(30 * time.Second) }}
	tr := &memTranscript{}

	c := newController(src, term, Options{Transcript: tr, SessionID: "s-1", Recording: "demo.ndjson", Clock: mock})
	require.NoError(t, c.Run(context.Background()))

	require.NotNil(t, tr.start)
	assert.Equal(t, "s-1", tr.start.SessionID)
	assert.Equal(t, "demo.ndjson", tr.start.Recording)

	require.Len(t, tr.events, 1)
	assert.Equal(t, "executed [1] x = 1", tr.events[0].Description)

	require.Len(t, tr.commands, 2)
	assert.Equal(t, "watch", tr.commands[0].Action)
	assert.Equal(t, "x", tr.commands[0].Argument)
	assert.Equal(t, "quit", tr.commands[1].Action)

	require.NotNil(t, tr.end)
	assert.Equal(t, domain.EndQuit, tr.end.Reason)
	assert.Equal(t, 1, tr.end.Summary.Lines)
	assert.Equal(t, 2, tr.end.Summary.Commands)
	assert.Equal(t, 90, tr.end.Summary.DurationSeconds)
}

func TestLogsStateTransitions(t *testing.T) {
	frame := &fakeFrame{name: "main", file: "demo.py", line: 1}
	src := &fakeSource{events: []func(context.Context, trace.Handler) error{line(frame)}}
	term := &fakeTerm{inputs: []string{"s"}}
	core, logs := observer.New(zap.DebugLevel)

	c := newController(src, term, Options{Logger: zap.New(core).Sugar()})
	require.NoError(t, c.Run(context.Background()))

	states := logs.FilterMessage("state").All()
	require.NotEmpty(t, states)
	assert.Equal(t, "rendering", states[0].ContextMap()["to"])
	assert.Equal(t, int64(1), states[0].ContextMap()["seq"])
	assert.Equal(t, "terminated", states[len(states)-1].ContextMap()["to"])

	commands := logs.FilterMessage("command").All()
	require.Len(t, commands, 1)
	assert.Equal(t, "step", commands[0].ContextMap()["action"])

	ended := logs.FilterMessage("session ended").All()
	require.Len(t, ended, 1)
	assert.Equal(t, domain.EndFinished, ended[0].ContextMap()["reason"])
}

const demoRecording = `{"type":"source","file":"demo.py","lines":["def add(a, b):","    c = a + b","    return c","","x = 1","y = add(x, 2)","print(y)"]}
{"type":"call","frame":{"id":1,"function":"<module>","file":"demo.py","line":5,"varnames":["x","y"]},"args":""}
{"type":"line","frame":{"id":1,"function":"<module>","file":"demo.py","line":5,"varnames":["x","y"]}}
{"type":"line","frame":{"id":1,"function":"<module>","file":"demo.py","line":6,"varnames":["x","y"],"locals":{"x":1}}}
{"type":"call","frame":{"id":2,"caller":1,"function":"add","file":"demo.py","line":1,"varnames":["a","b","c"],"locals":{"a":1,"b":2}},"args":"a=1, b=2"}
{"type":"line","frame":{"id":2,"caller":1,"function":"add","file":"demo.py","line":2,"varnames":["a","b","c"],"locals":{"a":1,"b":2}}}
{"type":"return","frame":{"id":2,"caller":1,"function":"add","file":"demo.py","line":2,"varnames":["a","b","c"],"locals":{"a":1,"b":2,"c":3}},"value":3}
{"type":"line","frame":{"id":1,"function":"<module>","file":"demo.py","line":7,"varnames":["x","y"],"locals":{"x":1,"y":3}}}
{"type":"return","frame":{"id":1,"function":"<module>","file":"demo.py","line":7,"varnames":["x","y"],"locals":{"x":1,"y":3}},"value":null}
`

func TestReplaySession(t *testing.T) {
	rec, err := replay.Load(strings.NewReader(demoRecording))
	require.NoError(t, err)

	player := replay.NewPlayer(rec)
	term := &fakeTerm{inputs: []string{"w", "y", "", "", "", "", ""}}
	tr := &memTranscript{}

	c := New(player, term, Options{Source: rec.SourceCache(), Transcript: tr})
	require.NoError(t, c.Run(context.Background()))

	// call, line 5, line 6, (add stepped over), line 7, return
	require.Len(t, tr.events, 5)
	assert.Equal(t, "executed [7] print(y)", tr.events[3].Description)
	assert.Equal(t, "returned None", tr.events[4].Description)
	assert.Equal(t, domain.EndFinished, tr.end.Reason)

	assert.Contains(t, term.screen(4), " watching>       y : 3")
	assert.Contains(t, term.screen(4), "  7  -> print(y)")
	assert.Equal(t, Farewell, term.last())
}
