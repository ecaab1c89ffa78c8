package ui

import "slices"

// FocusManager tracks which form field has focus and rotates through them.
type FocusManager struct {
	Current  string   // id of the focused field
	Order    []string // tab order
	OnChange func(from, to string)
}

// Next moves focus forward, wrapping at the end. Returns the new id.
func (f *FocusManager) Next() string {
	return f.move(1)
}

// Prev moves focus backward, wrapping at the start. Returns the new id.
func (f *FocusManager) Prev() string {
	return f.move(-1)
}

func (f *FocusManager) move(step int) string {
	n := len(f.Order)
	if n == 0 {
		return ""
	}
	idx := slices.Index(f.Order, f.Current)
	if idx < 0 && step < 0 {
		idx = 0
	}
	f.set(f.Order[((idx+step)%n+n)%n])
	return f.Current
}

// SetFocus focuses id. Returns false if id is not in Order.
func (f *FocusManager) SetFocus(id string) bool {
	if !slices.Contains(f.Order, id) {
		return false
	}
	f.set(id)
	return true
}

func (f *FocusManager) set(id string) {
	from := f.Current
	f.Current = id
	if f.OnChange != nil && from != id {
		f.OnChange(from, id)
	}
}
