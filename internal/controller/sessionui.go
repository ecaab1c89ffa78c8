// Package controller implements SessionUI, the login/register/SOS
// controller. It owns the session state, drives the page through a
// Renderer, and talks to the server through a Backend. Each operation turns
// one user action into at most one server call and one view update; errors
// are reported to the user through Renderer.Alert, never returned.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"distress/internal/api"
	"distress/internal/dom"
	"distress/internal/geo"
	"distress/internal/helpers"
	"distress/internal/progress"
	"distress/internal/session"
)

// User-facing messages.
const (
	MsgRegistered     = "Registration successful! Please login."
	MsgLoginFirst     = "Please login first"
	MsgSOSSent        = "SOS signal sent successfully!"
	prefixLogin       = "Login failed: "
	prefixRegister    = "Registration failed: "
	prefixLogout      = "Logout failed: "
	prefixSOSRejected = "Failed to send SOS: "
	prefixSOSError    = "Error sending SOS: "
)

// Backend is the server capability SessionUI needs. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) (session.User, error)
	Register(ctx context.Context, r api.Registration) error
	Logout(ctx context.Context) error
	SendSOS(ctx context.Context, s api.SOS) error
}

// Renderer is the page capability SessionUI needs. *dom.Document implements it.
type Renderer interface {
	Show(id string)
	Hide(id string)
	SetText(id, text string)
	Alert(msg string)
}

// FormReader reads input values by element id. *dom.Document implements it.
type FormReader interface {
	Value(id string) string
}

// SessionUI is the controller.
type SessionUI struct {
	backend   Backend
	view      Renderer
	state     *session.State
	locator   geo.Locator
	directory helpers.Directory
	events    progress.Emitter
	logger    *slog.Logger
}

// Option configures a SessionUI.
type Option func(*SessionUI)

// WithState shares an existing session state.
func WithState(s *session.State) Option {
	return func(c *SessionUI) { c.state = s }
}

// WithLocator sets the geolocation provider.
func WithLocator(l geo.Locator) Option {
	return func(c *SessionUI) { c.locator = l }
}

// WithDirectory sets how the SOS recipient is chosen.
func WithDirectory(d helpers.Directory) Option {
	return func(c *SessionUI) { c.directory = d }
}

// WithEmitter sets the activity event sink.
func WithEmitter(e progress.Emitter) Option {
	return func(c *SessionUI) { c.events = e }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *SessionUI) { c.logger = l }
}

// New creates a SessionUI. Without options it starts signed out, has no
// location fix, and sends signals to helpers.PlaceholderRecipient.
func New(backend Backend, view Renderer, opts ...Option) *SessionUI {
	c := &SessionUI{
		backend:   backend,
		view:      view,
		state:     session.New(),
		locator:   &geo.StaticLocator{},
		directory: helpers.Static(helpers.PlaceholderRecipient),
		events:    progress.Discard{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the session state.
func (c *SessionUI) State() *session.State {
	return c.state
}

// CurrentUser returns the signed-in user, if any.
func (c *SessionUI) CurrentUser() (session.User, bool) {
	return c.state.Current()
}

// ShowLogin switches the auth container to the login form.
func (c *SessionUI) ShowLogin() {
	c.view.Hide(dom.RegisterForm)
	c.view.Show(dom.LoginForm)
}

// ShowRegister switches the auth container to the register form.
func (c *SessionUI) ShowRegister() {
	c.view.Hide(dom.LoginForm)
	c.view.Show(dom.RegisterForm)
}

// ShowMainContent replaces the auth container with the main view and
// renders the current user's email. Signed out, the email renders empty.
func (c *SessionUI) ShowMainContent() {
	c.view.Hide(dom.AuthContainer)
	c.view.Show(dom.MainContent)
	c.view.SetText(dom.UserEmail, c.state.Email())
}

// showAuth is the inverse of ShowMainContent.
func (c *SessionUI) showAuth() {
	c.view.Hide(dom.MainContent)
	c.view.Show(dom.AuthContainer)
	c.ShowLogin()
}

// Login authenticates. On success the returned user becomes the current
// user and the main view is shown; otherwise the state is untouched and
// the failure is alerted. Inputs are sent as given.
func (c *SessionUI) Login(ctx context.Context, email, password string) {
	done := c.begin(api.OpLogin)
	user, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.report(done, err, "", prefixLogin)
		return
	}
	c.state.SignIn(user)
	c.ShowMainContent()
	c.logger.Info("signed in", "email", user.Email)
	done(nil, "signed in as "+user.Email)
}

// SubmitLogin reads the login form fields and calls Login.
func (c *SessionUI) SubmitLogin(ctx context.Context, form FormReader) {
	c.Login(ctx, form.Value(dom.LoginEmail), form.Value(dom.LoginPassword))
}

// Register creates an account and returns to the login form on success.
// It never changes the session state.
func (c *SessionUI) Register(ctx context.Context, r api.Registration) {
	done := c.begin(api.OpRegister)
	if err := c.backend.Register(ctx, r); err != nil {
		c.report(done, err, "", prefixRegister)
		return
	}
	c.view.Alert(MsgRegistered)
	c.ShowLogin()
	done(nil, "registered "+r.Email)
}

// SubmitRegister reads the register form fields and calls Register.
func (c *SessionUI) SubmitRegister(ctx context.Context, form FormReader) {
	c.Register(ctx, api.Registration{
		Name:      form.Value(dom.RegisterName),
		Email:     form.Value(dom.RegisterEmail),
		Password:  form.Value(dom.RegisterPassword),
		Latitude:  form.Value(dom.RegisterLatitude),
		Longitude: form.Value(dom.RegisterLongitude),
	})
}

// Logout ends the session on the server and locally, then shows the login
// form. The local session is cleared even when the request fails, so the
// main view is never left up without a user behind it.
func (c *SessionUI) Logout(ctx context.Context) {
	done := c.begin(api.OpLogout)
	err := c.backend.Logout(ctx)
	if u, ok := c.state.SignOut(); ok {
		c.logger.Info("signed out", "email", u.Email)
	}
	c.view.SetText(dom.UserEmail, "")
	c.showAuth()
	if err != nil {
		c.report(done, err, prefixLogout, prefixLogout)
		return
	}
	done(nil, "signed out")
}

// SendDistressSignal sends the current position to the recipient chosen by
// the helper directory. It requires a signed-in user and makes no network
// call otherwise.
func (c *SessionUI) SendDistressSignal(ctx context.Context) {
	if _, err := c.state.Require(); err != nil {
		c.view.Alert(MsgLoginFirst)
		return
	}
	done := c.begin(api.OpSendSOS)

	loc, err := c.locator.Locate(ctx)
	if err != nil {
		c.report(done, err, prefixSOSError, prefixSOSError)
		return
	}
	recipient, err := c.directory.Recipient(ctx, loc)
	if err != nil {
		c.report(done, err, prefixSOSError, prefixSOSError)
		return
	}
	c.logger.Info("sending distress signal", "location", loc.String(), "recipient", recipient)

	err = c.backend.SendSOS(ctx, api.SOS{
		Latitude:       loc.Latitude,
		Longitude:      loc.Longitude,
		RecipientEmail: recipient,
	})
	if err != nil {
		c.report(done, err, prefixSOSRejected, prefixSOSError)
		return
	}
	c.view.Alert(MsgSOSSent)
	done(nil, "SOS sent to "+recipient, "recipient", recipient, "maps", geo.MapsURL(loc))
}

// finish closes out an operation's activity events.
type finish func(err error, msg string, meta ...string)

func (c *SessionUI) begin(op string) finish {
	start := time.Now()
	c.events.Emit(progress.Event{Op: op, Status: progress.StatusRunning, Message: op + "…", Timestamp: start})
	return func(err error, msg string, meta ...string) {
		ev := progress.Event{Op: op, Status: progress.StatusDone, Message: msg, Timestamp: time.Now()}
		if err != nil {
			ev.Status = progress.StatusError
		}
		if len(meta) > 1 {
			ev.Metadata = make(map[string]string, len(meta)/2)
			for i := 0; i+1 < len(meta); i += 2 {
				ev.Metadata[meta[i]] = meta[i+1]
			}
		}
		c.events.Emit(ev)
		c.logger.Debug("operation finished", "op", op, "status", ev.Status, "elapsed", time.Since(start))
	}
}

// report alerts err. Server rejections use appPrefix (shown verbatim when
// empty); everything else uses failPrefix plus the raw error text.
func (c *SessionUI) report(done finish, err error, appPrefix, failPrefix string) {
	var msg string
	var ae *api.ApplicationError
	if errors.As(err, &ae) {
		msg = appPrefix + ae.Message
	} else {
		msg = failPrefix + err.Error()
	}
	c.view.Alert(msg)
	done(err, msg)
}
