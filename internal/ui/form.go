package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"distress/internal/dom"
)

type formField struct {
	id    string
	label string
	input textinput.Model
}

// FormView is a column of text inputs bound to document input ids.
// Every edit is written through to the document, so the controller reads
// the same values the user sees.
type FormView struct {
	Title  string
	doc    *dom.Document
	fields []*formField
	focus  FocusManager
	submit func() tea.Msg
}

var _ View = (*FormView)(nil)

type fieldSpec struct {
	id, label, placeholder string
	secret                 bool
}

func newFormView(doc *dom.Document, title string, submit func() tea.Msg, specs ...fieldSpec) *FormView {
	f := &FormView{Title: title, doc: doc, submit: submit}
	for _, s := range specs {
		ti := textinput.New()
		ti.Placeholder = s.placeholder
		ti.Width = 36
		ti.Prompt = ""
		ti.Cursor.SetMode(cursor.CursorStatic)
		if s.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.SetValue(doc.Value(s.id))
		f.fields = append(f.fields, &formField{id: s.id, label: s.label, input: ti})
		f.focus.Order = append(f.focus.Order, s.id)
	}
	f.focus.OnChange = func(from, to string) {
		if ff := f.field(from); ff != nil {
			ff.input.Blur()
		}
		if ff := f.field(to); ff != nil {
			ff.input.Focus()
		}
	}
	if len(f.fields) > 0 {
		f.focus.SetFocus(f.fields[0].id)
	}
	return f
}

// NewLoginForm builds the login form.
func NewLoginForm(doc *dom.Document) *FormView {
	return newFormView(doc, "Login", func() tea.Msg { return SubmitLoginMsg{} },
		fieldSpec{id: dom.LoginEmail, label: "Email", placeholder: "you@example.com"},
		fieldSpec{id: dom.LoginPassword, label: "Password", secret: true},
	)
}

// NewRegisterForm builds the register form.
func NewRegisterForm(doc *dom.Document) *FormView {
	return newFormView(doc, "Register", func() tea.Msg { return SubmitRegisterMsg{} },
		fieldSpec{id: dom.RegisterName, label: "Name"},
		fieldSpec{id: dom.RegisterEmail, label: "Email", placeholder: "you@example.com"},
		fieldSpec{id: dom.RegisterPassword, label: "Password", secret: true},
		fieldSpec{id: dom.RegisterLatitude, label: "Latitude", placeholder: "12.97"},
		fieldSpec{id: dom.RegisterLongitude, label: "Longitude", placeholder: "77.59"},
	)
}

func (f *FormView) field(id string) *formField {
	for _, ff := range f.fields {
		if ff.id == id {
			return ff
		}
	}
	return nil
}

// Focused returns the id of the focused input.
func (f *FormView) Focused() string {
	return f.focus.Current
}

// Value returns the current text of input id.
func (f *FormView) Value(id string) string {
	if ff := f.field(id); ff != nil {
		return ff.input.Value()
	}
	return ""
}

// Init implements View. The cursor does not blink, so there is nothing to start.
func (f *FormView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (f *FormView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab", "down":
			f.focus.Next()
			return f, nil
		case "shift+tab", "up":
			f.focus.Prev()
			return f, nil
		case "enter":
			if f.submit != nil {
				return f, f.submit
			}
			return f, nil
		}
	}
	ff := f.field(f.focus.Current)
	if ff == nil {
		return f, nil
	}
	var cmd tea.Cmd
	ff.input, cmd = ff.input.Update(msg)
	if v := ff.input.Value(); v != f.doc.Value(ff.id) {
		f.doc.SetValue(ff.id, v)
	}
	return f, cmd
}

// View implements View.
func (f *FormView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render(f.Title) + "\n\n")
	for _, ff := range f.fields {
		label := Styles.Label.Render(ff.label)
		if ff.id == f.focus.Current {
			label = Styles.Focused.Render(ff.label)
		}
		b.WriteString(label + " " + ff.input.View() + "\n")
	}
	b.WriteString("\n" + Styles.Hint.Render("Tab: next field  Enter: submit"))
	return Styles.Box.Render(b.String())
}
