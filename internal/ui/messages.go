package ui

import (
	"distress/internal/geo"
)

// DismissModalMsg closes the top overlay.
type DismissModalMsg struct{}

// ToggleAuthMsg switches between the login and register forms (ctrl+r).
type ToggleAuthMsg struct{}

// SubmitLoginMsg is sent when Enter is pressed on the login form.
type SubmitLoginMsg struct{}

// SubmitRegisterMsg is sent when Enter is pressed on the register form.
type SubmitRegisterMsg struct{}

// SendSOSMsg triggers the distress signal (s on the main screen).
type SendSOSMsg struct{}

// LogoutMsg signs out (l on the main screen).
type LogoutMsg struct{}

// ShowActivityMsg opens the activity window (a on the main screen).
type ShowActivityMsg struct{}

// opDoneMsg reports that a controller operation has returned.
type opDoneMsg struct {
	op string
}

// locationMsg carries the result of a position lookup for the main screen.
type locationMsg struct {
	loc geo.Location
	err error
}
