// Package ui is the terminal front end. It renders a dom.Document as one
// of three screens (login, register, main) and turns key presses into
// SessionUI operations.
//
// Core pieces:
//   - AppModel: root model; derives its mode from which views the document shows
//   - FormView: textinput form whose values are mirrored into the document
//   - MainView: signed-in screen with the SOS and logout actions
//   - OverlayStack: modal alerts and the activity window; the top one takes input
//   - KeybindRegistry: mode-filtered key bindings rendered with bubbles/help
//
// Server calls run in tea.Cmds and report back with opDoneMsg, after which
// the model resyncs its mode and turns pending alerts into modals.
package ui
