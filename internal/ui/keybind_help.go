package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// RenderKeybindHelp renders the one-line key help for mode.
func RenderKeybindHelp(reg *KeybindRegistry, mode AppMode, width int) string {
	if reg == nil {
		return ""
	}
	h := help.New()
	h.Width = width
	h.Styles.ShortKey = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true)
	h.Styles.ShortDesc = Styles.Hint
	h.Styles.ShortSeparator = Styles.Hint
	return h.View(NewKeyMap(reg, mode))
}
