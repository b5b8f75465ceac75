package cli

import (
	"fmt"
	"runtime"

	"github.com/vburojevic/tdb/internal/output"
)

// VersionCmd shows version information
type VersionCmd struct{}

// VersionOutput represents the NDJSON output for version information
type VersionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	GoVersion     string `json:"go_version"`
}

const goInstallCmd = "go install github.com/vburojevic/tdb/cmd/tdb@latest"

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.ndjson() {
		return output.NewNDJSONWriter(globals.Stdout).Write(VersionOutput{
			Type:          "version",
			SchemaVersion: output.SchemaVersion,
			Version:       Version,
			Commit:        Commit,
			GoVersion:     runtime.Version(),
		})
	}

	fmt.Fprintf(globals.Stdout, "tdb %s (%s, %s)\n", Version, Commit, runtime.Version())
	globals.hint("To upgrade: %s", goInstallCmd)
	return nil
}
