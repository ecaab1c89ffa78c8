// Package textutil measures and fits text to terminal columns.
package textutil

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the number of terminal columns s occupies. ANSI styling is
// ignored.
func Width(s string) int {
	return lipgloss.Width(s)
}

// Truncate shortens plain text s to at most maxWidth columns, ending in
// Ellipsis when cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= runewidth.StringWidth(Ellipsis) {
		return Ellipsis
	}
	return runewidth.Truncate(s, maxWidth, Ellipsis)
}

// PadRight pads or truncates plain text s to exactly width columns.
func PadRight(s string, width int) string {
	if runewidth.StringWidth(s) >= width {
		return Truncate(s, width)
	}
	return runewidth.FillRight(s, width)
}
