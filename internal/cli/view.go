package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/vburojevic/tdb/internal/domain"
	"github.com/vburojevic/tdb/internal/replay"
	"github.com/vburojevic/tdb/internal/tui"
)

// ViewCmd browses a recording in a full screen viewer
type ViewCmd struct {
	Trace string `arg:"" type:"existingfile" help:"Trace recording (NDJSON) to browse"`
}

// Run executes the view command
func (c *ViewCmd) Run(globals *Globals) error {
	if globals.ndjson() {
		return outputErrorCommon(globals, codeInvalidFlags, "view is interactive and has no ndjson output", "use 'tdb events --format ndjson'")
	}

	rec, err := replay.LoadFile(c.Trace)
	if err != nil {
		return outputErrorCommon(globals, codeRecordingInvalid, err.Error())
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

	model := tui.New(filepath.Base(c.Trace), viewEntries(rec))
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(globals.Stdin),
		tea.WithOutput(globals.Stdout),
	)

	globals.Debug("starting viewer for %s (%d events)", c.Trace, len(rec.Events))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return outputErrorCommon(globals, codeTUIFailed, fmt.Sprintf("viewer failed: %v", err))
	}
	return nil
}

func viewEntries(rec *replay.Recording) []tui.Entry {
	records := rec.EventRecords(rec.SourceCache())
	return lo.Map(records, func(ev domain.EventRecord, i int) tui.Entry {
		frame := rec.Events[i].Frame
		return tui.Entry{Event: ev, VarNames: frame.VarNames, Locals: frame.Locals}
	})
}
