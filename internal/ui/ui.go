// Package ui renders layer's terminal output: the status dashboard, the
// interactive tree picker and confirmation prompts.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// IsInputTTY checks if input is a terminal.
func IsInputTTY(r io.Reader) bool {
	if f, ok := r.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Interactive reports whether prompts can be shown: both ends are terminals
// and we are not running under CI.
func Interactive(in io.Reader, out io.Writer) bool {
	return IsInputTTY(in) && IsTTY(out) && !DetectCI()
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}

// UseColor decides whether to colour output written to w.
func UseColor(w io.Writer, noColor bool) bool {
	return !noColor && !DetectNoColor() && IsTTY(w)
}
