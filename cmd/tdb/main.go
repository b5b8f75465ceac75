package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/tdb/internal/cli"
	"github.com/vburojevic/tdb/internal/config"
)

const quickStart = `tdb - interactive terminal trace debugger

Quick start:
  tdb run trace.ndjson                  Step through a recording
  tdb run trace.ndjson --record s.ndjson
                                        ...and keep a session transcript
  tdb events trace.ndjson -w kind=call  List matching events
  tdb view trace.ndjson                 Browse a recording

For help:
  tdb --help                            All commands and flags
  tdb schema -t recording               Recording file format
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config values become flag defaults; flags still win
	vars := kong.Vars{
		"config_format": cfg.Format,
	}

	ctx := kong.Parse(&c,
		kong.Name("tdb"),
		kong.Description("tdb: step through recorded program traces in the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
