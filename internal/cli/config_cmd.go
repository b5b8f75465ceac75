package cli

import (
	"fmt"

	"github.com/vburojevic/tdb/internal/config"
	"github.com/vburojevic/tdb/internal/output"
)

// ConfigCmd groups the configuration subcommands
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show the effective configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show which config file is used"`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file"`
}

// ConfigShowCmd shows the effective configuration
type ConfigShowCmd struct{}

// ConfigOutput is the NDJSON form of the effective configuration
type ConfigOutput struct {
	Type          string                `json:"type"`
	SchemaVersion int                   `json:"schemaVersion"`
	File          string                `json:"file,omitempty"`
	Format        string                `json:"format"`
	Quiet         bool                  `json:"quiet"`
	Verbose       bool                  `json:"verbose"`
	LogFile       string                `json:"log_file"`
	Debugger      config.DebuggerConfig `json:"debugger"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.config()
	file := config.ConfigFile()

	if globals.ndjson() {
		return output.NewNDJSONWriter(globals.Stdout).Write(ConfigOutput{
			Type:          "config",
			SchemaVersion: output.SchemaVersion,
			File:          file,
			Format:        cfg.Format,
			Quiet:         cfg.Quiet,
			Verbose:       cfg.Verbose,
			LogFile:       cfg.LogFile,
			Debugger:      cfg.Debugger,
		})
	}

	w := globals.Stdout
	fmt.Fprintln(w, "Current Configuration:")
	if file != "" {
		fmt.Fprintf(w, "  (from %s)\n", file)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  format:   %s\n", cfg.Format)
	fmt.Fprintf(w, "  quiet:    %t\n", cfg.Quiet)
	fmt.Fprintf(w, "  verbose:  %t\n", cfg.Verbose)
	fmt.Fprintf(w, "  log_file: %s\n", cfg.LogFile)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Debugger:")
	d := cfg.Debugger
	fmt.Fprintf(w, "  context_before:  %d\n", d.ContextBefore)
	fmt.Fprintf(w, "  fallback_width:  %d\n", d.FallbackWidth)
	fmt.Fprintf(w, "  fallback_height: %d\n", d.FallbackHeight)
	fmt.Fprintf(w, "  show_locals:     %t\n", d.ShowLocals)
	fmt.Fprintf(w, "  clear_command:   %q\n", d.ClearCommand)
	fmt.Fprintf(w, "  color:           %s\n", d.Color)
	fmt.Fprintf(w, "  prompt:          %q\n", d.Prompt)
	fmt.Fprintf(w, "  banner:          %q\n", d.Banner)
	return nil
}

// ConfigPathCmd shows the config file in use
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	file := config.ConfigFile()

	if globals.ndjson() {
		return output.NewNDJSONWriter(globals.Stdout).Write(map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          file,
		})
	}

	if file == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		globals.hint("Create one with: tdb config generate > tdb.yaml")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", file)
	return nil
}

// ConfigGenerateCmd prints a sample config file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, config.Sample())
	return err
}
