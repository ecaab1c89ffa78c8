package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"distress/internal/dom"
	"distress/internal/geo"
)

// MainView is the signed-in screen.
type MainView struct {
	doc      *dom.Document
	location string
	mapsURL  string
}

var _ View = (*MainView)(nil)

// NewMainView creates the main screen.
func NewMainView(doc *dom.Document) *MainView {
	return &MainView{doc: doc}
}

// SetLocation records the last position lookup.
func (v *MainView) SetLocation(loc geo.Location, err error) {
	switch {
	case errors.Is(err, geo.ErrUnavailable):
		v.location, v.mapsURL = "unavailable", ""
	case err != nil:
		v.location, v.mapsURL = err.Error(), ""
	default:
		v.location, v.mapsURL = loc.String(), geo.MapsURL(loc)
	}
}

// Location returns the rendered position line.
func (v *MainView) Location() string {
	return v.location
}

// Init implements View.
func (v *MainView) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (v *MainView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(locationMsg); ok {
		v.SetLocation(msg.loc, msg.err)
	}
	return v, nil
}

// View implements View.
func (v *MainView) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("Distress") + "\n\n")
	b.WriteString("Signed in as " + Styles.OK.Render(v.doc.Text(dom.UserEmail)) + "\n")
	if v.location != "" {
		b.WriteString("Position     " + v.location + "\n")
	}
	if v.mapsURL != "" {
		b.WriteString(Styles.Hint.Render(v.mapsURL) + "\n")
	}
	b.WriteString("\n" + Styles.SOS.Render("s  SEND SOS") + "\n")
	return Styles.Box.Render(b.String())
}
