package controller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"distress/internal/api"
	"distress/internal/dom"
	"distress/internal/geo"
	"distress/internal/helpers"
	"distress/internal/progress"
	"distress/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records calls and returns canned results.
type fakeBackend struct {
	mu sync.Mutex

	loginUser session.User
	loginErr  error
	regErr    error
	logoutErr error
	sosErr    error

	logins    [][2]string
	regs      []api.Registration
	logouts   int
	sosCalls  []api.SOS
	callCount int
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.logins = append(f.logins, [2]string{email, password})
	return f.loginUser, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, r api.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.regs = append(f.regs, r)
	return f.regErr
}

func (f *fakeBackend) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.logouts++
	return f.logoutErr
}

func (f *fakeBackend) SendSOS(_ context.Context, s api.SOS) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.sosCalls = append(f.sosCalls, s)
	return f.sosErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

var here = geo.Location{Latitude: 12.9716, Longitude: 77.5946}

func newTestUI(t *testing.T, be *fakeBackend, opts ...Option) (*SessionUI, *dom.Document) {
	t.Helper()
	doc := dom.NewDocument()
	opts = append([]Option{WithLocator(geo.Fixed(here))}, opts...)
	return New(be, doc, opts...), doc
}

// assertInvariant checks CurrentUser present <=> main content visible.
func assertInvariant(t *testing.T, ui *SessionUI, doc *dom.Document) {
	t.Helper()
	_, signedIn := ui.CurrentUser()
	assert.Equal(t, signedIn, doc.Visible(dom.MainContent), "visible: %v", doc.VisibleIDs())
}

func appErr(msg string) error {
	return &api.ApplicationError{Op: "test", StatusCode: http.StatusUnauthorized, Message: msg}
}

func transportErr(msg string) error {
	return &api.TransportError{Op: "test", Err: errors.New(msg)}
}

func TestViewToggles(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{})

	ui.ShowRegister()
	assert.False(t, doc.Visible(dom.LoginForm))
	assert.True(t, doc.Visible(dom.RegisterForm))

	ui.ShowLogin()
	assert.True(t, doc.Visible(dom.LoginForm))
	assert.False(t, doc.Visible(dom.RegisterForm))
}

func TestShowMainContent_WithoutUserRendersEmpty(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{})
	doc.SetText(dom.UserEmail, "stale")
	ui.ShowMainContent()
	assert.True(t, doc.Visible(dom.MainContent))
	assert.False(t, doc.Visible(dom.AuthContainer))
	assert.Equal(t, "", doc.Text(dom.UserEmail))
}

func TestLogin_Success(t *testing.T) {
	want := session.User{Email: "a@b.com", Name: "Ada", ID: 4}
	be := &fakeBackend{loginUser: want}
	ui, doc := newTestUI(t, be)

	ui.Login(context.Background(), "a@b.com", "x")

	got, ok := ui.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, doc.Visible(dom.MainContent))
	assert.False(t, doc.Visible(dom.AuthContainer))
	assert.Equal(t, "a@b.com", doc.Text(dom.UserEmail))
	assert.Empty(t, doc.Alerts())
	assert.Equal(t, [][2]string{{"a@b.com", "x"}}, be.logins)
	assertInvariant(t, ui, doc)
}

func TestLogin_Rejected(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{loginErr: appErr("bad credentials")})

	ui.Login(context.Background(), "a@b.com", "x")

	assert.Equal(t, []string{"bad credentials"}, doc.Alerts())
	_, ok := ui.CurrentUser()
	assert.False(t, ok)
	assert.True(t, doc.Visible(dom.LoginForm))
	assert.True(t, doc.Visible(dom.AuthContainer))
	assertInvariant(t, ui, doc)
}

func TestLogin_RejectedKeepsPreviousUser(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "first@x.io"}}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "first@x.io", "x")

	be.loginErr = appErr("bad credentials")
	ui.Login(context.Background(), "second@x.io", "y")

	assert.Equal(t, "first@x.io", ui.State().Email())
	assert.Equal(t, "first@x.io", doc.Text(dom.UserEmail))
}

func TestLogin_TransportError(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{loginErr: transportErr("connection refused")})

	ui.Login(context.Background(), "a@b.com", "x")

	assert.Equal(t, "Login failed: connection refused", doc.LastAlert())
	assert.Equal(t, session.Uninitialized, ui.State().Phase())
	assertInvariant(t, ui, doc)
}

func TestLogin_EmptyFieldsAreSent(t *testing.T) {
	be := &fakeBackend{loginErr: appErr("Email and password required")}
	ui, _ := newTestUI(t, be)
	ui.Login(context.Background(), "", "")
	assert.Equal(t, [][2]string{{"", ""}}, be.logins)
}

func TestSubmitLogin_ReadsForm(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "f@x.io"}}
	ui, doc := newTestUI(t, be)
	doc.SetValue(dom.LoginEmail, "f@x.io")
	doc.SetValue(dom.LoginPassword, "pw")

	ui.SubmitLogin(context.Background(), doc)

	assert.Equal(t, [][2]string{{"f@x.io", "pw"}}, be.logins)
	assert.Equal(t, "f@x.io", doc.Text(dom.UserEmail))
}

func TestRegister_Success(t *testing.T) {
	be := &fakeBackend{}
	ui, doc := newTestUI(t, be)
	ui.ShowRegister()

	reg := api.Registration{Name: "Ada", Email: "ada@x.io", Password: "pw", Latitude: "1", Longitude: "2"}
	ui.Register(context.Background(), reg)

	assert.Equal(t, []string{MsgRegistered}, doc.Alerts())
	assert.True(t, doc.Visible(dom.LoginForm))
	assert.False(t, doc.Visible(dom.RegisterForm))
	assert.False(t, doc.Visible(dom.MainContent), "register must not log in")
	assert.Equal(t, []api.Registration{reg}, be.regs)
	assert.Equal(t, session.Uninitialized, ui.State().Phase())
}

func TestRegister_Rejected(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{regErr: appErr("This email is already registered.")})
	ui.ShowRegister()

	ui.Register(context.Background(), api.Registration{})

	assert.Equal(t, "This email is already registered.", doc.LastAlert())
	assert.True(t, doc.Visible(dom.RegisterForm))
	assert.False(t, doc.Visible(dom.LoginForm))
}

func TestRegister_NetworkDown(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{regErr: transportErr("Network down")})
	ui.ShowRegister()

	ui.Register(context.Background(), api.Registration{Name: "n"})

	assert.Equal(t, "Registration failed: Network down", doc.LastAlert())
	assert.True(t, doc.Visible(dom.RegisterForm))
}

func TestRegister_NeverTouchesCurrentUser(t *testing.T) {
	for _, regErr := range []error{nil, appErr("nope"), transportErr("down")} {
		be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}, regErr: regErr}
		ui, _ := newTestUI(t, be)
		ui.Login(context.Background(), "a@b.com", "x")
		ui.Register(context.Background(), api.Registration{Email: "other@x.io"})
		assert.Equal(t, "a@b.com", ui.State().Email(), "regErr=%v", regErr)
	}
}

func TestSubmitRegister_ReadsForm(t *testing.T) {
	be := &fakeBackend{}
	ui, doc := newTestUI(t, be)
	doc.SetValue(dom.RegisterName, "Ada")
	doc.SetValue(dom.RegisterEmail, "ada@x.io")
	doc.SetValue(dom.RegisterPassword, "pw")
	doc.SetValue(dom.RegisterLatitude, "12.9")
	doc.SetValue(dom.RegisterLongitude, "77.5")

	ui.SubmitRegister(context.Background(), doc)

	require.Len(t, be.regs, 1)
	assert.Equal(t, api.Registration{Name: "Ada", Email: "ada@x.io", Password: "pw", Latitude: "12.9", Longitude: "77.5"}, be.regs[0])
}

func TestLogout_Success(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "a@b.com", "x")

	ui.Logout(context.Background())

	_, ok := ui.CurrentUser()
	assert.False(t, ok)
	assert.True(t, doc.Visible(dom.AuthContainer))
	assert.True(t, doc.Visible(dom.LoginForm))
	assert.False(t, doc.Visible(dom.MainContent))
	assert.Empty(t, doc.Alerts())
	assert.Equal(t, 1, be.logouts)
	assertInvariant(t, ui, doc)
}

func TestLogout_FromRegisterFormShowsLogin(t *testing.T) {
	ui, doc := newTestUI(t, &fakeBackend{})
	ui.ShowRegister()
	ui.Logout(context.Background())
	assert.True(t, doc.Visible(dom.LoginForm))
	assert.False(t, doc.Visible(dom.RegisterForm))
}

func TestLogout_TransportErrorStillClearsSession(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}, logoutErr: transportErr("Failed to fetch")}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "a@b.com", "x")

	ui.Logout(context.Background())

	assert.Equal(t, "Logout failed: Failed to fetch", doc.LastAlert())
	assert.Equal(t, session.Uninitialized, ui.State().Phase())
	assert.True(t, doc.Visible(dom.LoginForm))
	assertInvariant(t, ui, doc)
}

func TestSendDistressSignal_RequiresLogin(t *testing.T) {
	be := &fakeBackend{}
	ui, doc := newTestUI(t, be)

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, []string{MsgLoginFirst}, doc.Alerts())
	assert.Equal(t, 0, be.calls(), "no network call without a user")
}

func TestSendDistressSignal_Success(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	require.Len(t, be.sosCalls, 1)
	assert.Equal(t, api.SOS{Latitude: here.Latitude, Longitude: here.Longitude, RecipientEmail: helpers.PlaceholderRecipient}, be.sosCalls[0])
	assert.Equal(t, MsgSOSSent, doc.LastAlert())
}

func TestSendDistressSignal_AlwaysPlaceholderByDefault(t *testing.T) {
	// A user record with its own coordinates and email must not leak into
	// the recipient.
	be := &fakeBackend{loginUser: session.User{Email: "me@x.io", Latitude: 1, Longitude: 2}}
	ui, _ := newTestUI(t, be)
	ui.Login(context.Background(), "me@x.io", "x")
	ui.SendDistressSignal(context.Background())
	ui.SendDistressSignal(context.Background())

	require.Len(t, be.sosCalls, 2)
	for _, s := range be.sosCalls {
		assert.Equal(t, "helper@example.com", s.RecipientEmail)
	}
}

func TestSendDistressSignal_Rejected(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}, sosErr: appErr("Email credentials missing")}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, "Failed to send SOS: Email credentials missing", doc.LastAlert())
}

func TestSendDistressSignal_TransportError(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}, sosErr: transportErr("Network down")}
	ui, doc := newTestUI(t, be)
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, "Error sending SOS: Network down", doc.LastAlert())
}

func TestSendDistressSignal_LocationDenied(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	denied := geo.LocatorFunc(func(context.Context) (geo.Location, error) {
		return geo.Location{}, errors.New("User denied Geolocation")
	})
	ui, doc := newTestUI(t, be, WithLocator(denied))
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, "Error sending SOS: User denied Geolocation", doc.LastAlert())
	assert.Empty(t, be.sosCalls)
}

func TestSendDistressSignal_NoLocationFix(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, doc := newTestUI(t, be, WithLocator(&geo.StaticLocator{}))
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, "Error sending SOS: location unavailable", doc.LastAlert())
}

type fixedDirectory struct {
	to  string
	err error
	got []geo.Location
}

func (d *fixedDirectory) Recipient(_ context.Context, loc geo.Location) (string, error) {
	d.got = append(d.got, loc)
	return d.to, d.err
}

func TestSendDistressSignal_UsesDirectory(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	dir := &fixedDirectory{to: "near@x.io"}
	ui, _ := newTestUI(t, be, WithDirectory(dir))
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, []geo.Location{here}, dir.got)
	require.Len(t, be.sosCalls, 1)
	assert.Equal(t, "near@x.io", be.sosCalls[0].RecipientEmail)
}

func TestSendDistressSignal_DirectoryError(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, doc := newTestUI(t, be, WithDirectory(&fixedDirectory{err: helpers.ErrNoHelpers}))
	ui.Login(context.Background(), "a@b.com", "x")

	ui.SendDistressSignal(context.Background())

	assert.Equal(t, "Error sending SOS: no helpers in range", doc.LastAlert())
	assert.Empty(t, be.sosCalls)
}

func TestEmitsProgressEvents(t *testing.T) {
	var events []progress.Event
	be := &fakeBackend{loginErr: appErr("bad credentials")}
	ui, _ := newTestUI(t, be, WithEmitter(progress.EmitterFunc(func(ev progress.Event) {
		events = append(events, ev)
	})))

	ui.Login(context.Background(), "a@b.com", "x")

	require.Len(t, events, 2)
	assert.Equal(t, progress.StatusRunning, events[0].Status)
	assert.Equal(t, api.OpLogin, events[0].Op)
	assert.Equal(t, progress.StatusError, events[1].Status)
	assert.Equal(t, "bad credentials", events[1].Message)
}

func TestSOSEventMetadata(t *testing.T) {
	var last progress.Event
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, _ := newTestUI(t, be, WithEmitter(progress.EmitterFunc(func(ev progress.Event) { last = ev })))
	ui.Login(context.Background(), "a@b.com", "x")
	ui.SendDistressSignal(context.Background())

	assert.Equal(t, progress.StatusDone, last.Status)
	assert.Equal(t, helpers.PlaceholderRecipient, last.Metadata["recipient"])
	assert.Equal(t, geo.MapsURL(here), last.Metadata["maps"])
}

func TestConcurrentLogins_LastWriteWins(t *testing.T) {
	be := &fakeBackend{loginUser: session.User{Email: "a@b.com"}}
	ui, doc := newTestUI(t, be)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ui.Login(context.Background(), "a@b.com", "x")
		}()
	}
	wg.Wait()

	assert.Len(t, be.logins, 10, "logins are not de-duplicated")
	assert.Equal(t, "a@b.com", doc.Text(dom.UserEmail))
	assertInvariant(t, ui, doc)
}

func TestWithState_Shared(t *testing.T) {
	st := session.New()
	st.SignIn(session.User{Email: "pre@x.io"})
	be := &fakeBackend{}
	ui, _ := newTestUI(t, be, WithState(st))

	ui.SendDistressSignal(context.Background())
	assert.Len(t, be.sosCalls, 1)
}
