// Package progress carries activity events from controller operations to
// whoever is displaying them (the terminal UI footer, logs).
package progress

import "time"

// Status indicates the state of an operation.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports one step of an operation (login, register, logout, sos).
type Event struct {
	Op        string
	Message   string
	Status    Status
	Timestamp time.Time
	Metadata  map[string]string // optional: recipient, location, etc.
}

// Emitter receives events.
type Emitter interface {
	Emit(Event)
}

// Discard drops every event.
type Discard struct{}

// Emit implements Emitter.
func (Discard) Emit(Event) {}

// ChanEmitter emits events to a channel.
type ChanEmitter struct {
	Ch chan<- Event
}

// Emit sends the event to the channel (non-blocking; drops if full).
func (e *ChanEmitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	select {
	case e.Ch <- ev:
	default:
		// Channel full; drop rather than stall the operation
	}
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

// Emit implements Emitter.
func (f EmitterFunc) Emit(ev Event) { f(ev) }
