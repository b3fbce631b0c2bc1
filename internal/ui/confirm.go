package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question on out and reads the answer from in.
// An empty answer returns def.
func Confirm(in io.Reader, out io.Writer, prompt string, def bool) (bool, error) {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	_, _ = fmt.Fprintf(out, "%s [%s] ", prompt, choices)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return def, nil
		}
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
