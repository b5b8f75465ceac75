package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`
	LogFile string `mapstructure:"log_file"`

	Debugger DebuggerConfig `mapstructure:"debugger"`
}

// DebuggerConfig holds the settings of an interactive session
type DebuggerConfig struct {
	// Source window
	ContextBefore int `mapstructure:"context_before" json:"context_before"`

	// Used when the terminal size cannot be determined
	FallbackWidth  int `mapstructure:"fallback_width" json:"fallback_width"`
	FallbackHeight int `mapstructure:"fallback_height" json:"fallback_height"`

	ShowLocals   bool   `mapstructure:"show_locals" json:"show_locals"`
	ClearCommand string `mapstructure:"clear_command" json:"clear_command"`
	Color        string `mapstructure:"color" json:"color"`
	Prompt       string `mapstructure:"prompt" json:"prompt"`
	Banner       string `mapstructure:"banner" json:"banner"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// configNames are searched in order, each in every config path
var configNames = []string{"tdb", ".tdb", ".tdbrc"}

var configExts = []string{".yaml", ".yml"}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Quiet:   false,
		Verbose: false,
		LogFile: "stderr",
		Debugger: DebuggerConfig{
			ContextBefore:  5,
			FallbackWidth:  80,
			FallbackHeight: 15,
			ShowLocals:     true,
			Color:          ColorAuto,
			Prompt:         " [ ]next [s]tep-in [r]eturn [w]atch [u]nwatch [v]ars [j]ump [q]uit\n $ ",
			Banner:         " > Minimal Interactive Trace Debugger",
		},
	}
}

// Validate checks values that viper cannot type check
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "ndjson":
	default:
		return fmt.Errorf("invalid format %q: must be text or ndjson", c.Format)
	}
	switch c.Debugger.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid debugger.color %q: must be auto, always or never", c.Debugger.Color)
	}
	if c.Debugger.ContextBefore < 0 {
		return fmt.Errorf("debugger.context_before must be >= 0, got %d", c.Debugger.ContextBefore)
	}
	if c.Debugger.FallbackWidth < 0 || c.Debugger.FallbackHeight < 0 {
		return errors.New("debugger fallback size must be >= 0")
	}
	return nil
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := newViper()

	// Try to read config file (ignore if not found)
	if path := findConfigFile(); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the path to the config file that Load reads, or ""
func ConfigFile() string {
	return findConfigFile()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Environment variables: TDB_FORMAT, TDB_DEBUGGER_COLOR, ...
	v.SetEnvPrefix("TDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees environment overrides
	cfg := Default()
	v.SetDefault("format", cfg.Format)
	v.SetDefault("quiet", cfg.Quiet)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("debugger.context_before", cfg.Debugger.ContextBefore)
	v.SetDefault("debugger.fallback_width", cfg.Debugger.FallbackWidth)
	v.SetDefault("debugger.fallback_height", cfg.Debugger.FallbackHeight)
	v.SetDefault("debugger.show_locals", cfg.Debugger.ShowLocals)
	v.SetDefault("debugger.clear_command", cfg.Debugger.ClearCommand)
	v.SetDefault("debugger.color", cfg.Debugger.Color)
	v.SetDefault("debugger.prompt", cfg.Debugger.Prompt)
	v.SetDefault("debugger.banner", cfg.Debugger.Banner)
	return v
}

// configPaths lists directories in order of precedence, highest first
func configPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "tdb"))
	}
	return append(paths, "/etc/tdb")
}

func findConfigFile() string {
	for _, dir := range configPaths() {
		for _, name := range configNames {
			for _, ext := range configExts {
				path := filepath.Join(dir, name+ext)
				if info, err := os.Stat(path); err == nil && !info.IsDir() {
					if abs, err := filepath.Abs(path); err == nil {
						return abs
					}
					return path
				}
			}
		}
	}
	return ""
}

// Sample returns a commented config file with the default values
func Sample() string {
	cfg := Default()
	var b strings.Builder
	b.WriteString("# tdb configuration\n")
	b.WriteString("# Place as tdb.yaml, .tdb.yaml or .tdbrc.yaml in the current directory,\n")
	b.WriteString("# your home directory, the user config dir (tdb/) or /etc/tdb/.\n\n")
	fmt.Fprintf(&b, "format: %s # text or ndjson\n", cfg.Format)
	fmt.Fprintf(&b, "quiet: %t\n", cfg.Quiet)
	fmt.Fprintf(&b, "verbose: %t\n", cfg.Verbose)
	fmt.Fprintf(&b, "log_file: %s\n\n", cfg.LogFile)
	b.WriteString("debugger:\n")
	fmt.Fprintf(&b, "  context_before: %d\n", cfg.Debugger.ContextBefore)
	fmt.Fprintf(&b, "  fallback_width: %d\n", cfg.Debugger.FallbackWidth)
	fmt.Fprintf(&b, "  fallback_height: %d\n", cfg.Debugger.FallbackHeight)
	fmt.Fprintf(&b, "  show_locals: %t\n", cfg.Debugger.ShowLocals)
	b.WriteString("  clear_command: \"\" # e.g. clear; empty uses an ANSI clear\n")
	fmt.Fprintf(&b, "  color: %s # auto, always or never\n", cfg.Debugger.Color)
	fmt.Fprintf(&b, "  prompt: %q\n", cfg.Debugger.Prompt)
	fmt.Fprintf(&b, "  banner: %q\n", cfg.Debugger.Banner)
	return b.String()
}
