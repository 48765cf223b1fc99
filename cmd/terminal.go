package cmd

import (
	"os"

	"golang.org/x/term"
)

// isTerminal reports whether stdout is an interactive terminal worth
// animating. CI runs and dumb terminals get plain output.
func isTerminal() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
