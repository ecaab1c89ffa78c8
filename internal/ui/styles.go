package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors.
const (
	ColorAccent    = "86"  // cyan/green: titles
	ColorHighlight = "205" // magenta: borders, focused field
	ColorDanger    = "196" // red: failures, SOS
	ColorMuted     = "241" // gray: hints
	ColorText      = "252"
	ColorOK        = "42" // green: success
)

// Styles holds the shared styles.
var Styles = struct {
	Title       lipgloss.Style
	TitleDanger lipgloss.Style
	Box         lipgloss.Style
	BoxDanger   lipgloss.Style
	Label       lipgloss.Style
	Focused     lipgloss.Style
	Normal      lipgloss.Style
	Hint        lipgloss.Style
	Muted       lipgloss.Style
	OK          lipgloss.Style
	Error       lipgloss.Style
	SOS         lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleDanger: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Margin(1),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2).
		Margin(1),
	Label: lipgloss.NewStyle().
		Width(12),
	Focused: lipgloss.NewStyle().
		Width(12).
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	OK: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorOK)),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	SOS: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("231")).
		Background(lipgloss.Color(ColorDanger)).
		Padding(0, 2),
}
