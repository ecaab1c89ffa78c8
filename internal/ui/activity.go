package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"distress/internal/progress"
)

const (
	defaultActivityWidth  = 70
	defaultActivityHeight = 14
	maxActivity           = 200
)

// ActivityWindow lists operation events with scrollback. Esc closes it.
type ActivityWindow struct {
	events   []progress.Event
	viewport viewport.Model
}

var _ View = (*ActivityWindow)(nil)

// NewActivityWindow creates a window showing events.
func NewActivityWindow(events []progress.Event) *ActivityWindow {
	vp := viewport.New(defaultActivityWidth, defaultActivityHeight)
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1)
	w := &ActivityWindow{events: append([]progress.Event(nil), events...), viewport: vp}
	w.refresh()
	return w
}

// Init implements View.
func (w *ActivityWindow) Init() tea.Cmd {
	return nil
}

// Update implements View.
func (w *ActivityWindow) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case progress.Event:
		w.events = appendEvent(w.events, msg)
		w.refresh()
		return w, nil
	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "q" {
			return w, func() tea.Msg { return DismissModalMsg{} }
		}
	case tea.WindowSizeMsg:
		w.viewport.Width = max(msg.Width-4, 40)
		w.viewport.Height = max(msg.Height/2, 8)
		w.refresh()
		return w, nil
	}
	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)
	return w, cmd
}

// View implements View.
func (w *ActivityWindow) View() string {
	header := Styles.Title.Render("Activity") + Styles.Hint.Render("  Esc: close")
	return header + "\n" + w.viewport.View()
}

func (w *ActivityWindow) refresh() {
	var lines []string
	for _, ev := range w.events {
		lines = append(lines, formatEvent(ev))
		keys := make([]string, 0, len(ev.Metadata))
		for k := range ev.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("      %s: %s", k, ev.Metadata[k]))
		}
	}
	content := strings.Join(lines, "\n")
	if content == "" {
		content = Styles.Muted.Render("No activity yet")
	}
	w.viewport.SetContent(content)
	w.viewport.GotoBottom()
}

func formatEvent(ev progress.Event) string {
	return fmt.Sprintf("[%s] %s %s", ev.Timestamp.Format("15:04:05"), statusIcon(ev.Status), ev.Message)
}

func appendEvent(events []progress.Event, ev progress.Event) []progress.Event {
	events = append(events, ev)
	if len(events) > maxActivity {
		events = events[len(events)-maxActivity:]
	}
	return events
}

func statusIcon(s progress.Status) string {
	switch s {
	case progress.StatusRunning:
		return "●"
	case progress.StatusDone:
		return "✓"
	case progress.StatusError:
		return "✗"
	default:
		return "•"
	}
}
