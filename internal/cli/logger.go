package cli

import (
	"fmt"

	"go.uber.org/zap"
)

// newLogger builds the verbose debug logger: JSON at debug level, written to
// log_file. Without --verbose it discards everything.
func newLogger(globals *Globals) *zap.SugaredLogger {
	if globals == nil || !globals.Verbose {
		return zap.NewNop().Sugar()
	}

	path := "stderr"
	if globals.Config != nil && globals.Config.LogFile != "" {
		path = globals.Config.LogFile
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.Sampling = nil
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(globals.Stderr, "Warning: failed to open log file %s: %v\n", path, err)
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
