package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vburojevic/tdb/internal/config"
	"go.uber.org/zap"
)

// Version information, set at build time
var (
	Version = "dev"
	Commit  = "none"
)

// CLI is the root command
type CLI struct {
	Format  string `short:"f" enum:"text,ndjson" default:"${config_format}" help:"Output format (text or ndjson)"`
	Quiet   bool   `short:"q" help:"Suppress summaries and hints"`
	Verbose bool   `short:"v" help:"Write debug logs (JSON) to log_file"`

	Run     RunCmd     `cmd:"" help:"Debug a trace recording interactively"`
	Events  EventsCmd  `cmd:"" help:"List the events of a recording"`
	View    ViewCmd    `cmd:"" help:"Browse a recording in a full screen viewer"`
	Schema  SchemaCmd  `cmd:"" help:"Print JSON Schema for recordings and transcripts"`
	Config  ConfigCmd  `cmd:"" help:"Show or generate configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Globals holds the settings every command runs with
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config *config.Config

	log *zap.SugaredLogger
}

// NewGlobalsWithConfig merges parsed flags with the loaded configuration.
// Flags win; quiet and verbose are enabled by either.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:  c.Format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	if g.Format == "" {
		g.Format = cfg.Format
	}
	return g
}

// Logger returns the debug logger, building it on first use
func (g *Globals) Logger() *zap.SugaredLogger {
	if g.log == nil {
		g.log = newLogger(g)
	}
	return g.log
}

// Debug logs a formatted debug message when verbose
func (g *Globals) Debug(format string, args ...interface{}) {
	g.Logger().Debugf(format, args...)
}

func (g *Globals) config() *config.Config {
	if g.Config == nil {
		g.Config = config.Default()
	}
	return g.Config
}

func (g *Globals) ndjson() bool {
	return g.Format == "ndjson"
}

// hint prints a text-mode hint unless quiet
func (g *Globals) hint(format string, args ...interface{}) {
	if g.Quiet || g.ndjson() {
		return
	}
	fmt.Fprintf(g.Stderr, format+"\n", args...)
}
