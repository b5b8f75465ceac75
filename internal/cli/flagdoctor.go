package cli

// validateFlags centralizes flag combinations the run command rejects.
func validateFlags(globals *Globals, cmd *RunCmd) error {
	// run is interactive; there is nothing to keep quiet
	if globals != nil && globals.Quiet {
		return outputErrorCommon(globals, codeInvalidFlags, "--quiet is not supported by run", "drop --quiet (or quiet: true in the config file)")
	}
	if cmd.Width < 0 || cmd.Height < 0 {
		return outputErrorCommon(globals, codeInvalidFlags, "--width and --height must be >= 0", "use 0 to detect the terminal size")
	}
	return nil
}
