package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/vburojevic/tdb/internal/debugger"
	"github.com/vburojevic/tdb/internal/replay"
	"github.com/vburojevic/tdb/internal/terminal"
	"golang.org/x/term"
)

// RunCmd debugs a recording interactively
type RunCmd struct {
	Trace    string `arg:"" type:"existingfile" help:"Trace recording (NDJSON) to debug"`
	Record   string `short:"r" help:"Write a session transcript (NDJSON) to this file"`
	NoLocals bool   `help:"Start with the locals panel hidden"`
	Width    int    `help:"Screen width in columns (0 = detect)"`
	Height   int    `help:"Screen height in rows (0 = detect)"`
}

// Run executes the run command
func (c *RunCmd) Run(globals *Globals) error {
	if err := validateFlags(globals, c); err != nil {
		return err
	}

	rec, err := replay.LoadFile(c.Trace)
	if err != nil {
		return outputErrorCommon(globals, codeRecordingInvalid, err.Error(), "list it with 'tdb events' or print the format with 'tdb schema -t recording'")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	sessionID := uuid.NewString()
	log := globals.Logger().With("session_id", sessionID)
	defer log.Sync()

	cfg := globals.config().Debugger
	opts := debugger.Options{
		Banner:        cfg.Banner,
		Prompt:        cfg.Prompt,
		ContextBefore: cfg.ContextBefore,
		HideLocals:    c.NoLocals || !cfg.ShowLocals,
		Styles:        debuggerStyles(cfg.Color, globals.Stdout),
		Source:        rec.SourceCache(),
		SessionID:     sessionID,
		Recording:     c.Trace,
		Logger:        log,
	}

	if c.Record != "" {
		rf, err := openRecordFile(c.Record)
		if err != nil {
			return outputErrorCommon(globals, codeRecordFailed, err.Error(), "check that the directory is writable")
		}
		defer func() {
			if err := rf.Close(); err != nil {
				globals.hint("Warning: transcript %s may be incomplete: %v", rf.path, err)
			}
		}()
		opts.Transcript = rf
	}

	console := terminal.NewConsole(globals.Stdin, globals.Stdout, terminal.Options{
		ClearCommand:   cfg.ClearCommand,
		FallbackWidth:  cfg.FallbackWidth,
		FallbackHeight: cfg.FallbackHeight,
		Dimensions:     c.dimensions(globals.Stdout),
	})
	defer console.Close()

	log.Debugw("starting session", "recording", c.Trace, "events", len(rec.Events), "interactive", console.Interactive())
	player := replay.NewPlayer(rec, replay.WithLogger(log))
	return debugger.New(player, console, opts).Run(ctx)
}

// dimensions overrides the detected size with --width/--height. A zero
// flag keeps the detected value.
func (c *RunCmd) dimensions(out io.Writer) func() (int, int, error) {
	if c.Width == 0 && c.Height == 0 {
		return nil
	}
	return func() (int, int, error) {
		w, h := c.Width, c.Height
		if f, ok := out.(*os.File); ok && (w == 0 || h == 0) {
			if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
				if w == 0 {
					w = tw
				}
				if h == 0 {
					h = th
				}
			}
		}
		return w, h, nil
	}
}
