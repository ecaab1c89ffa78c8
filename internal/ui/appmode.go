package ui

import "distress/internal/dom"

// AppMode is the screen the app is showing.
type AppMode int

const (
	ModeLogin AppMode = iota
	ModeRegister
	ModeMain
)

func (m AppMode) String() string {
	switch m {
	case ModeLogin:
		return "Login"
	case ModeRegister:
		return "Register"
	case ModeMain:
		return "Main"
	default:
		return "Unknown"
	}
}

// ModeOf derives the mode from the document's visible views.
func ModeOf(doc *dom.Document) AppMode {
	switch {
	case doc.Visible(dom.MainContent):
		return ModeMain
	case doc.Visible(dom.RegisterForm):
		return ModeRegister
	default:
		return ModeLogin
	}
}
