package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the working, home and config directories at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", filepath.Join(dir, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "text", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "stderr", cfg.LogFile)
	assert.Equal(t, 5, cfg.Debugger.ContextBefore)
	assert.Equal(t, 80, cfg.Debugger.FallbackWidth)
	assert.Equal(t, 15, cfg.Debugger.FallbackHeight)
	assert.True(t, cfg.Debugger.ShowLocals)
	assert.Empty(t, cfg.Debugger.ClearCommand)
	assert.Equal(t, ColorAuto, cfg.Debugger.Color)
	assert.Equal(t, " > Minimal Interactive Trace Debugger", cfg.Debugger.Banner)
	assert.Contains(t, cfg.Debugger.Prompt, "[j]ump [q]uit\n $ ")
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, Default(), cfg)
	})

	t.Run("loads tdb.yaml from the current directory", func(t *testing.T) {
		dir := isolate(t)
		content := `
format: ndjson
debugger:
  context_before: 2
  color: never
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tdb.yaml"), []byte(content), 0644))

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.Equal(t, 2, cfg.Debugger.ContextBefore)
		assert.Equal(t, ColorNever, cfg.Debugger.Color)
		// untouched keys keep their defaults
		assert.Equal(t, 80, cfg.Debugger.FallbackWidth)
		assert.True(t, cfg.Debugger.ShowLocals)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		dir := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tdbrc.yaml"), []byte("format: xml\n"), 0644))

		cfg, err := Load()
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("returns error for non-existent file", func(t *testing.T) {
		cfg, err := LoadFromFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("parses all config fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configContent := `
format: ndjson
quiet: true
verbose: true
log_file: /tmp/tdb.log
debugger:
  context_before: 3
  fallback_width: 120
  fallback_height: 40
  show_locals: false
  clear_command: clear
  color: always
  prompt: "> "
  banner: " my debugger"
`
		configPath := filepath.Join(tmpDir, "tdb.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)

		assert.Equal(t, "ndjson", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "/tmp/tdb.log", cfg.LogFile)
		assert.Equal(t, 3, cfg.Debugger.ContextBefore)
		assert.Equal(t, 120, cfg.Debugger.FallbackWidth)
		assert.Equal(t, 40, cfg.Debugger.FallbackHeight)
		assert.False(t, cfg.Debugger.ShowLocals)
		assert.Equal(t, "clear", cfg.Debugger.ClearCommand)
		assert.Equal(t, ColorAlways, cfg.Debugger.Color)
		assert.Equal(t, "> ", cfg.Debugger.Prompt)
		assert.Equal(t, " my debugger", cfg.Debugger.Banner)
	})

	t.Run("sample round trips to defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "tdb.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(Sample()), 0644))

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
}

func TestConfigEnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("TDB_FORMAT", "ndjson")
	t.Setenv("TDB_DEBUGGER_SHOW_LOCALS", "false")
	t.Setenv("TDB_DEBUGGER_CONTEXT_BEFORE", "9")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ndjson", cfg.Format)
	assert.False(t, cfg.Debugger.ShowLocals)
	assert.Equal(t, 9, cfg.Debugger.ContextBefore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"ndjson", func(c *Config) { c.Format = "ndjson" }, true},
		{"unknown format", func(c *Config) { c.Format = "yaml" }, false},
		{"unknown color", func(c *Config) { c.Debugger.Color = "sometimes" }, false},
		{"negative context", func(c *Config) { c.Debugger.ContextBefore = -1 }, false},
		{"negative width", func(c *Config) { c.Debugger.FallbackWidth = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if tt.ok {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("finds .tdb.yaml in current directory", func(t *testing.T) {
		dir := isolate(t)

		configPath := filepath.Join(dir, ".tdb.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("format: text"), 0644))

		found := ConfigFile()
		// Resolve symlinks for comparison (macOS /var -> /private/var)
		expectedPath, _ := filepath.EvalSymlinks(configPath)
		foundPath, _ := filepath.EvalSymlinks(found)
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("prefers tdb.yaml over .tdbrc.yml", func(t *testing.T) {
		dir := isolate(t)

		yamlPath := filepath.Join(dir, "tdb.yaml")
		require.NoError(t, os.WriteFile(yamlPath, []byte("format: text"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".tdbrc.yml"), []byte("format: ndjson"), 0644))

		expectedPath, _ := filepath.EvalSymlinks(yamlPath)
		foundPath, _ := filepath.EvalSymlinks(findConfigFile())
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("finds config in home directory", func(t *testing.T) {
		dir := isolate(t)
		home := filepath.Join(dir, "home")
		require.NoError(t, os.MkdirAll(home, 0o755))
		configPath := filepath.Join(home, ".tdbrc.yml")
		require.NoError(t, os.WriteFile(configPath, []byte("format: text"), 0644))

		expectedPath, _ := filepath.EvalSymlinks(configPath)
		foundPath, _ := filepath.EvalSymlinks(findConfigFile())
		assert.Equal(t, expectedPath, foundPath)
	})

	t.Run("returns empty string when no config found", func(t *testing.T) {
		isolate(t)
		assert.Empty(t, findConfigFile())
	})
}
