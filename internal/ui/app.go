package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"distress/internal/api"
	"distress/internal/controller"
	"distress/internal/dom"
	"distress/internal/geo"
	"distress/internal/progress"
	"distress/internal/ui/textutil"
)

// AppModel is the root model. The document is the source of truth for
// which screen is up; the model only mirrors it after each operation.
type AppModel struct {
	Mode       AppMode
	Doc        *dom.Document
	Controller *controller.SessionUI
	Locator    geo.Locator
	Login      *FormView
	Register   *FormView
	Main       *MainView
	Overlays   OverlayStack
	Keys       *KeybindRegistry
	Events     <-chan progress.Event
	Activity   []progress.Event
	Busy       bool // an operation is in flight; further submits are ignored

	ctx    context.Context
	width  int
	height int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// NewAppModel creates the root model. events may be nil; locator may be
// nil, in which case the main screen shows no position.
func NewAppModel(ctx context.Context, ctrl *controller.SessionUI, doc *dom.Document, locator geo.Locator, events <-chan progress.Event) *AppModel {
	m := &AppModel{
		Doc:        doc,
		Controller: ctrl,
		Locator:    locator,
		Login:      NewLoginForm(doc),
		Register:   NewRegisterForm(doc),
		Main:       NewMainView(doc),
		Keys:       defaultKeybinds(),
		Events:     events,
		ctx:        ctx,
	}
	m.Mode = ModeOf(doc)
	return m
}

func defaultKeybinds() *KeybindRegistry {
	msg := func(m tea.Msg) tea.Cmd { return func() tea.Msg { return m } }
	reg := NewKeybindRegistry()
	reg.Bind("ctrl+c", tea.Quit, "")
	reg.Bind("ctrl+r", msg(ToggleAuthMsg{}), "login/register", ModeLogin, ModeRegister)
	reg.Bind("s", msg(SendSOSMsg{}), "send SOS", ModeMain)
	reg.Bind("l", msg(LogoutMsg{}), "logout", ModeMain)
	reg.Bind("a", msg(ShowActivityMsg{}), "activity", ModeMain)
	reg.Bind("q", tea.Quit, "quit", ModeMain)
	reg.Bind("esc", tea.Quit, "quit", ModeLogin, ModeRegister)
	return reg
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return tea.Batch(a.currentView().Init(), a.waitForEvent())
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, a.Overlays.Broadcast(msg)
	case progress.Event:
		a.Activity = appendEvent(a.Activity, msg)
		if top, ok := a.Overlays.Peek(); ok {
			if _, isActivity := top.(*ActivityWindow); isActivity {
				a.Overlays.UpdateTop(msg)
			}
		}
		return a, a.waitForEvent()
	case opDoneMsg:
		a.Busy = false
		return a, a.sync()
	case locationMsg:
		a.Main.SetLocation(msg.loc, msg.err)
		return a, nil
	case DismissModalMsg:
		a.Overlays.Pop()
		return a, nil
	case ToggleAuthMsg:
		if a.Mode == ModeLogin {
			a.Controller.ShowRegister()
		} else if a.Mode == ModeRegister {
			a.Controller.ShowLogin()
		}
		return a, a.sync()
	case SubmitLoginMsg:
		return a, a.run(api.OpLogin, func(ctx context.Context) { a.Controller.SubmitLogin(ctx, a.Doc) })
	case SubmitRegisterMsg:
		return a, a.run(api.OpRegister, func(ctx context.Context) { a.Controller.SubmitRegister(ctx, a.Doc) })
	case SendSOSMsg:
		return a, a.run(api.OpSendSOS, a.Controller.SendDistressSignal)
	case LogoutMsg:
		return a, a.run(api.OpLogout, a.Controller.Logout)
	case ShowActivityMsg:
		w := NewActivityWindow(a.Activity)
		if a.width > 0 {
			w.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		}
		a.Overlays.Push(w)
		return a, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		// Overlays capture all input while open.
		if cmd, ok := a.Overlays.UpdateTop(msg); ok {
			return a, cmd
		}
		if cmd := a.Keys.Lookup(msg.String(), a.Mode); cmd != nil {
			return a, cmd
		}
	}

	v, cmd := a.currentView().Update(msg)
	a.setCurrentView(v)
	return a, cmd
}

// run executes op off the update loop. Only one operation runs at a time.
func (a *appModelAdapter) run(op string, fn func(context.Context)) tea.Cmd {
	if a.Busy || a.Controller == nil {
		return nil
	}
	a.Busy = true
	ctx := a.ctx
	return func() tea.Msg {
		fn(ctx)
		return opDoneMsg{op: op}
	}
}

// sync re-derives the mode from the document and queues pending alerts as
// modals, oldest on top.
func (a *appModelAdapter) sync() tea.Cmd {
	prev := a.Mode
	a.Mode = ModeOf(a.Doc)

	alerts := a.Doc.DrainAlerts()
	for i := len(alerts) - 1; i >= 0; i-- {
		a.Overlays.Push(NewAlertModal(alerts[i]))
	}

	if a.Mode == prev {
		return nil
	}
	if a.Mode == ModeMain {
		return tea.Batch(a.currentView().Init(), a.locate())
	}
	return a.currentView().Init()
}

func (a *appModelAdapter) locate() tea.Cmd {
	if a.Locator == nil {
		return nil
	}
	loc, ctx := a.Locator, a.ctx
	return func() tea.Msg {
		l, err := loc.Locate(ctx)
		return locationMsg{loc: l, err: err}
	}
}

func (a *appModelAdapter) waitForEvent() tea.Cmd {
	if a.Events == nil {
		return nil
	}
	ch := a.Events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	if top, ok := a.Overlays.Peek(); ok {
		if a.width > 0 && a.height > 0 {
			return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, top.View())
		}
		return top.View()
	}
	return a.currentView().View() + "\n" + a.footer()
}

// footer renders the latest activity line and the key help.
func (a *appModelAdapter) footer() string {
	width := a.width
	if width <= 0 {
		width = 80
	}
	status := ""
	if n := len(a.Activity); n > 0 {
		ev := a.Activity[n-1]
		line := textutil.Truncate(statusIcon(ev.Status)+" "+ev.Message, width)
		switch ev.Status {
		case progress.StatusError:
			status = Styles.Error.Render(line)
		case progress.StatusDone:
			status = Styles.OK.Render(line)
		default:
			status = Styles.Hint.Render(line)
		}
	}
	return status + "\n" + RenderKeybindHelp(a.Keys, a.Mode, width)
}

func (a *appModelAdapter) currentView() View {
	switch a.Mode {
	case ModeRegister:
		return a.Register
	case ModeMain:
		return a.Main
	default:
		return a.Login
	}
}

func (a *appModelAdapter) setCurrentView(v View) {
	switch v := v.(type) {
	case *FormView:
		if a.Mode == ModeRegister {
			a.Register = v
		} else if a.Mode == ModeLogin {
			a.Login = v
		}
	case *MainView:
		a.Main = v
	}
}
