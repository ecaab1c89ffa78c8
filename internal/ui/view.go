package ui

import tea "github.com/charmbracelet/bubbletea"

// View is a screen or modal with its own update and render.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
}
