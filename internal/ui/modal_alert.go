package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// AlertModal shows one alert message. Enter or Esc dismisses it.
type AlertModal struct {
	Message string
	failure bool
}

var _ View = (*AlertModal)(nil)

// NewAlertModal creates an alert; failures get the danger style.
func NewAlertModal(msg string) *AlertModal {
	return &AlertModal{Message: msg, failure: isFailure(msg)}
}

func isFailure(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "fail") ||
		strings.Contains(lower, "error") ||
		strings.HasPrefix(lower, "please login")
}

// Failure reports whether the alert is rendered as an error.
func (m *AlertModal) Failure() bool {
	return m.failure
}

// Init implements View.
func (m *AlertModal) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (m *AlertModal) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "esc", " ":
			return m, func() tea.Msg { return DismissModalMsg{} }
		}
	}
	return m, nil
}

// View implements View.
func (m *AlertModal) View() string {
	box, title := Styles.Box, Styles.Title
	if m.failure {
		box, title = Styles.BoxDanger, Styles.TitleDanger
	}
	content := title.Render("Alert") + "\n\n"
	content += Styles.Normal.Render(m.Message)
	content += "\n\n" + Styles.Hint.Render("Enter/Esc: OK")
	return box.Render(content)
}
