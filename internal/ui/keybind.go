package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type binding struct {
	seq   string
	desc  string
	cmd   tea.Cmd
	modes []AppMode // empty = all modes
}

func (b binding) appliesTo(mode AppMode) bool {
	return len(b.modes) == 0 || slices.Contains(b.modes, mode)
}

// KeybindRegistry maps keys (tea.KeyMsg.String() form) to commands per mode.
// Form screens only get ctrl/tab bindings so printable keys reach the inputs.
type KeybindRegistry struct {
	bindings []binding
}

// NewKeybindRegistry creates an empty registry.
func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{}
}

// Bind registers seq for the given modes (all modes if none given).
// A later binding for the same key and mode shadows an earlier one.
func (r *KeybindRegistry) Bind(seq string, cmd tea.Cmd, desc string, modes ...AppMode) {
	r.bindings = append(r.bindings, binding{seq: seq, desc: desc, cmd: cmd, modes: modes})
}

// Lookup returns the command bound to seq in mode, or nil.
func (r *KeybindRegistry) Lookup(seq string, mode AppMode) tea.Cmd {
	for i := len(r.bindings) - 1; i >= 0; i-- {
		b := r.bindings[i]
		if b.seq == seq && b.appliesTo(mode) {
			return b.cmd
		}
	}
	return nil
}

// Hints returns the described bindings active in mode, in registration order.
func (r *KeybindRegistry) Hints(mode AppMode) []key.Binding {
	var out []key.Binding
	seen := make(map[string]bool)
	for _, b := range r.bindings {
		if b.desc == "" || b.cmd == nil || !b.appliesTo(mode) || seen[b.seq] {
			continue
		}
		seen[b.seq] = true
		out = append(out, key.NewBinding(key.WithKeys(b.seq), key.WithHelp(b.seq, b.desc)))
	}
	return out
}

// KeyMap adapts the registry to help.KeyMap for one mode.
type KeyMap struct {
	registry *KeybindRegistry
	mode     AppMode
}

var _ help.KeyMap = KeyMap{}

// NewKeyMap creates a KeyMap for mode.
func NewKeyMap(registry *KeybindRegistry, mode AppMode) KeyMap {
	return KeyMap{registry: registry, mode: mode}
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	if km.registry == nil {
		return nil
	}
	return km.registry.Hints(km.mode)
}

// FullHelp implements help.KeyMap.
func (km KeyMap) FullHelp() [][]key.Binding {
	short := km.ShortHelp()
	if len(short) == 0 {
		return nil
	}
	return [][]key.Binding{short}
}
