// Package output provides icon-prefixed CLI lines for command results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Icons used by layer commands.
const (
	IconOK      = "✓"
	IconWarn    = "!"
	IconError   = "✗"
	IconAdd     = "+"
	IconRemove  = "-"
	IconSkip    = "·"
	IconHint    = "→"
	IconDryRun  = "~"
	indentBlank = "  "
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool

	ok   lipgloss.Style
	warn lipgloss.Style
	err  lipgloss.Style
	dim  lipgloss.Style
}

// New creates a Writer without colour.
func New(out io.Writer) *Writer {
	return NewWithColor(out, false)
}

// NewWithColor creates a Writer that colours icons when useColor is set.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	w := &Writer{
		out:      out,
		useColor: useColor,
		ok:       lipgloss.NewStyle(),
		warn:     lipgloss.NewStyle(),
		err:      lipgloss.NewStyle(),
		dim:      lipgloss.NewStyle(),
	}
	if useColor {
		w.ok = w.ok.Foreground(lipgloss.Color("154"))
		w.warn = w.warn.Foreground(lipgloss.Color("220"))
		w.err = w.err.Foreground(lipgloss.Color("196"))
		w.dim = w.dim.Foreground(lipgloss.Color("245"))
	}
	return w
}

// Out returns the underlying writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", w.paint(icon), msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "%s%s\n", indentBlank, msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (w *Writer) Success(msg string) {
	w.Status(IconOK, msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(IconWarn, msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(IconError, msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Hint prints a dimmed follow-up suggestion.
func (w *Writer) Hint(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s%s %s\n", indentBlank, w.paint(IconHint), w.dim.Render(msg))
}

// Hintf prints a formatted hint.
func (w *Writer) Hintf(format string, args ...any) {
	w.Hint(fmt.Sprintf(format, args...))
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "    %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// List prints items indented under a heading.
func (w *Writer) List(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w.out, heading)
	for _, it := range items {
		_, _ = fmt.Fprintf(w.out, "%s%s\n", indentBlank, it)
	}
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

func (w *Writer) paint(icon string) string {
	switch icon {
	case IconOK, IconAdd:
		return w.ok.Render(icon)
	case IconWarn, IconDryRun:
		return w.warn.Render(icon)
	case IconError, IconRemove:
		return w.err.Render(icon)
	case IconSkip, IconHint:
		return w.dim.Render(icon)
	default:
		return icon
	}
}
