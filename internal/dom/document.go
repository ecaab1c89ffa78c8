// Package dom is an in-memory model of the client's page: a fixed set of
// elements addressed by id, each with a visibility flag, text content and
// (for inputs) a value, plus the queue of alert dialogs shown to the user.
//
// The controller writes to a Document; front ends (terminal UI, headless
// commands, tests) read from it.
package dom

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// Container and view ids.
const (
	AuthContainer = "auth-container"
	LoginForm     = "login-form"
	RegisterForm  = "register-form"
	MainContent   = "main-content"
	UserEmail     = "user-email"
)

// Input ids.
const (
	LoginEmail        = "login-email"
	LoginPassword     = "login-password"
	RegisterName      = "register-name"
	RegisterEmail     = "register-email"
	RegisterPassword  = "register-password"
	RegisterLatitude  = "register-latitude"
	RegisterLongitude = "register-longitude"
)

type element struct {
	visible bool
	text    string
	value   string
}

// Document holds element state and alerts. Safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	elements map[string]*element
	alerts   []string // every alert ever shown
	pending  []string // alerts not yet drained by a front end
	alertW   io.Writer
	onChange []func()
}

// Option configures a Document.
type Option func(*Document)

// WithAlertWriter echoes every alert as a line to w.
func WithAlertWriter(w io.Writer) Option {
	return func(d *Document) { d.alertW = w }
}

// NewDocument returns a Document in the initial page state: the auth
// container with the login form visible, register form and main content
// hidden.
func NewDocument(opts ...Option) *Document {
	d := &Document{elements: make(map[string]*element)}
	for _, id := range []string{AuthContainer, LoginForm, RegisterForm, MainContent, UserEmail,
		LoginEmail, LoginPassword, RegisterName, RegisterEmail, RegisterPassword,
		RegisterLatitude, RegisterLongitude} {
		d.elements[id] = &element{visible: true}
	}
	d.elements[RegisterForm].visible = false
	d.elements[MainContent].visible = false
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnChange registers fn to run after every mutation. fn runs without the
// document lock held.
func (d *Document) OnChange(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = append(d.onChange, fn)
}

// Show makes the element visible.
func (d *Document) Show(id string) {
	d.mutate(func() { d.el(id).visible = true })
}

// Hide makes the element invisible.
func (d *Document) Hide(id string) {
	d.mutate(func() { d.el(id).visible = false })
}

// SetText sets the element's text content.
func (d *Document) SetText(id, text string) {
	d.mutate(func() { d.el(id).text = text })
}

// SetValue sets an input's value.
func (d *Document) SetValue(id, value string) {
	d.mutate(func() { d.el(id).value = value })
}

// Alert records a dialog for the user.
func (d *Document) Alert(msg string) {
	d.mutate(func() {
		d.alerts = append(d.alerts, msg)
		d.pending = append(d.pending, msg)
		if d.alertW != nil {
			fmt.Fprintln(d.alertW, msg)
		}
	})
}

// Visible reports whether the element is shown. Unknown ids are hidden.
func (d *Document) Visible(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.elements[id]
	return ok && e.visible
}

// Text returns the element's text content.
func (d *Document) Text(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[id]; ok {
		return e.text
	}
	return ""
}

// Value returns an input's value.
func (d *Document) Value(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.elements[id]; ok {
		return e.value
	}
	return ""
}

// Alerts returns every alert shown so far, oldest first.
func (d *Document) Alerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.alerts...)
}

// LastAlert returns the most recent alert, or "".
func (d *Document) LastAlert() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.alerts) == 0 {
		return ""
	}
	return d.alerts[len(d.alerts)-1]
}

// DrainAlerts returns alerts raised since the previous drain.
func (d *Document) DrainAlerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.pending
	d.pending = nil
	return out
}

// VisibleIDs lists visible elements, sorted. Handy in test failure output.
func (d *Document) VisibleIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []string
	for id, e := range d.elements {
		if e.visible {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// el returns the element for id, creating it on first use.
// Must be called with d.mu held.
func (d *Document) el(id string) *element {
	e, ok := d.elements[id]
	if !ok {
		e = &element{}
		d.elements[id] = e
	}
	return e
}

func (d *Document) mutate(fn func()) {
	d.mu.Lock()
	fn()
	listeners := append([]func(){}, d.onChange...)
	d.mu.Unlock()
	for _, l := range listeners {
		l()
	}
}
