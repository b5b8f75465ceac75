// Package terminal is the debugger's line-oriented view of the user's terminal
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Terminal defines the operations the debugger needs from a terminal
type Terminal interface {
	Clear() error
	// Size returns the current width and height in cells
	Size() (width, height int)
	// ReadLine shows prompt and blocks for a line, io.EOF or ctx
	ReadLine(ctx context.Context, prompt string) (string, error)
	WriteLine(text string) error
}

// Options configures a Console
type Options struct {
	// ClearCommand clears the screen, eg. "clear"; empty writes the ANSI sequence
	ClearCommand string

	// Used when the size cannot be queried
	FallbackWidth  int
	FallbackHeight int

	// Dimensions overrides the size query
	Dimensions func() (width, height int, err error)
}

type readResult struct {
	line string
	err  error
}

// Console is a Terminal over a reader and a writer, normally stdin and stdout
type Console struct {
	in   io.Reader
	out  io.Writer
	opts Options

	inTTY  bool
	outTTY bool

	startReader sync.Once
	lines       chan readResult
	closeOnce   sync.Once
	done        chan struct{}
}

// NewConsole creates a console reading from in and writing to out
func NewConsole(in io.Reader, out io.Writer, opts Options) *Console {
	return &Console{
		in:     in,
		out:    out,
		opts:   opts,
		inTTY:  isTTY(in),
		outTTY: isTTY(out),
		lines:  make(chan readResult),
		done:   make(chan struct{}),
	}
}

func isTTY(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Interactive reports whether both ends of the console are a real terminal
func (c *Console) Interactive() bool {
	return c.inTTY && c.outTTY
}

// Clear implements Terminal, output that is not a terminal is never cleared
func (c *Console) Clear() error {
	if !c.outTTY {
		return nil
	}
	if fields := strings.Fields(c.opts.ClearCommand); len(fields) > 0 {
		cmd := exec.Command(fields[0], fields[1:]...)
		cmd.Stdout = c.out
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("clear screen: %w", err)
		}
		return nil
	}
	termenv.NewOutput(c.out).ClearScreen()
	return nil
}

// Size implements Terminal
func (c *Console) Size() (int, int) {
	var (
		w, h int
		err  error
	)
	switch {
	case c.opts.Dimensions != nil:
		w, h, err = c.opts.Dimensions()
	case c.outTTY:
		w, h, err = term.GetSize(int(c.out.(*os.File).Fd()))
	default:
		err = fmt.Errorf("output is not a terminal")
	}
	if err != nil || w <= 0 {
		w = c.opts.FallbackWidth
	}
	if err != nil || h <= 0 {
		h = c.opts.FallbackHeight
	}
	return w, h
}

// ReadLine implements Terminal, the trailing newline is removed
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if c.inTTY || c.outTTY {
		if _, err := io.WriteString(c.out, prompt); err != nil {
			return "", err
		}
	}

	c.startReader.Do(func() { go c.readLoop() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", io.EOF
	case r, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// Close stops delivering input; the reader exits once its pending read returns
func (c *Console) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// readLoop owns the reader so a blocked read never holds up cancellation
func (c *Console) readLoop() {
	defer close(c.lines)
	r := bufio.NewReader(c.in)
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if err != nil {
			if line != "" && !c.send(readResult{line: line}) {
				return
			}
			if err != io.EOF {
				c.send(readResult{err: err})
			}
			return
		}
		if !c.send(readResult{line: line}) {
			return
		}
	}
}

// send hands r to ReadLine, false once the console is closed
func (c *Console) send(r readResult) bool {
	select {
	case c.lines <- r:
		return true
	case <-c.done:
		return false
	}
}

// WriteLine implements Terminal
func (c *Console) WriteLine(text string) error {
	_, err := fmt.Fprintln(c.out, text)
	return err
}

var _ Terminal = (*Console)(nil)
