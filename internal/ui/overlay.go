package ui

import tea "github.com/charmbracelet/bubbletea"

// OverlayStack holds modal views; the topmost receives input first.
type OverlayStack struct {
	Stack []View
}

// Push adds a view to the top of the stack.
func (s *OverlayStack) Push(v View) {
	s.Stack = append(s.Stack, v)
}

// Pop removes and returns the top view.
func (s *OverlayStack) Pop() (View, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	top := s.Stack[len(s.Stack)-1]
	s.Stack = s.Stack[:len(s.Stack)-1]
	return top, true
}

// Peek returns the top view without removing it.
func (s *OverlayStack) Peek() (View, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	return s.Stack[len(s.Stack)-1], true
}

// Len returns the number of views in the stack.
func (s *OverlayStack) Len() int {
	return len(s.Stack)
}

// UpdateTop passes msg to the top view and stores the result.
// The caller must run the returned cmd.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	i := len(s.Stack) - 1
	v, cmd := s.Stack[i].Update(msg)
	s.Stack[i] = v
	return cmd, true
}

// Broadcast passes msg to every view, e.g. a tea.WindowSizeMsg.
func (s *OverlayStack) Broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, v := range s.Stack {
		nv, cmd := v.Update(msg)
		s.Stack[i] = nv
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}
