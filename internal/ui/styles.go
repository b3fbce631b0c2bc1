package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. Cyan is the accent; status colours follow the marks.
const (
	ColorCyan     = "45"  // Accent, selection, discovered
	ColorWhite    = "255" // Headers
	ColorGray     = "245" // Secondary text, hints
	ColorDarkGray = "238" // Layered paths, borders
	ColorRed      = "196" // Stale, errors
	ColorYellow   = "220" // Exposed, warnings
)

// Status marks printed before each dashboard section.
const (
	MarkLayered    = "✓"
	MarkExposed    = "!"
	MarkDiscovered = "+"
	MarkStale      = "x"
	MarkIgnored    = "-"
	MarkChecked    = "✓"
	MarkUnchecked  = "○"
)

// Styles holds all UI styles for terminal rendering.
type Styles struct {
	Header     lipgloss.Style
	Layered    lipgloss.Style
	Exposed    lipgloss.Style
	Discovered lipgloss.Style
	Stale      lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Dim        lipgloss.Style

	// Picker
	Active    lipgloss.Style
	Checked   lipgloss.Style
	Unchecked lipgloss.Style
	Note      lipgloss.Style
}

// DefaultStyles returns the coloured styles.
func DefaultStyles() Styles {
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Layered:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Exposed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorYellow)),
		Discovered: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Stale:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Warning:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),

		Active:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Checked:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Unchecked: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Note:      lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:     plain,
		Layered:    plain,
		Exposed:    plain,
		Discovered: plain,
		Stale:      plain,
		Warning:    plain,
		Error:      plain,
		Dim:        plain,
		Active:     plain,
		Checked:    plain,
		Unchecked:  plain,
		Note:       plain,
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
