// Package window provides the global event target that key events are delivered on.
//
// A Window plays the role of the host environment: listeners subscribe to named events,
// producers call Dispatch, and delayed callbacks are scheduled with SetTimeout.
// Listeners and timer callbacks are serialized, so at most one of them runs at any time.
package window

import (
	"sync"
	"time"
)

// Names of the events delivered for keyboard input
const (
	KeyDown = "keydown"
	KeyUp   = "keyup"
)

// Event is a keyboard event
type Event struct {
	// Type is the name of the event, typically KeyDown or KeyUp
	Type string

	// Key is the value of the key.
	// Printable keys use the character they produce, other keys a name such as "Enter" or "Escape".
	Key string

	// IsComposing indicates the event is part of an input method composition
	IsComposing bool
}

// Listener receives events from a Window.
//
// Listeners are compared by identity, so implementations must be comparable.
// Pointer types are recommended.
type Listener interface {
	HandleEvent(event Event)
}

// Handler is a Listener that calls a function
type Handler struct {
	fn func(Event)
}

// NewHandler creates a new Handler calling fn.
// Each call returns a distinct listener.
func NewHandler(fn func(Event)) *Handler {
	return &Handler{fn: fn}
}

// HandleEvent calls the underlying function
func (h *Handler) HandleEvent(event Event) {
	h.fn(event)
}

// TimerID identifies a callback scheduled with SetTimeout.
// The zero TimerID never identifies a timer.
type TimerID uint64

// Window is a global event target.
// The zero value is not ready for use, create one with New.
type Window struct {
	dispatch sync.Mutex // held while a listener or timer callback runs

	m         sync.Mutex // protects the fields below
	listeners map[string][]Listener
	timers    map[TimerID]*time.Timer
	lastID    TimerID
	closed    bool
}

// New creates a new Window
func New() *Window {
	return &Window{
		listeners: make(map[string][]Listener),
		timers:    make(map[TimerID]*time.Timer),
	}
}

// AddEventListener attaches listener to the given event.
// Attaching the same listener to the same event twice has no effect.
func (w *Window) AddEventListener(event string, listener Listener) {
	w.m.Lock()
	defer w.m.Unlock()

	for _, l := range w.listeners[event] {
		if l == listener {
			return
		}
	}
	w.listeners[event] = append(w.listeners[event], listener)
}

// RemoveEventListener detaches listener from the given event.
// Removing a listener that is not attached is a no-op.
func (w *Window) RemoveEventListener(event string, listener Listener) {
	w.m.Lock()
	defer w.m.Unlock()

	listeners := w.listeners[event]
	for i, l := range listeners {
		if l != listener {
			continue
		}

		// copy, so that a concurrent Dispatch keeps its snapshot
		next := make([]Listener, 0, len(listeners)-1)
		next = append(next, listeners[:i]...)
		next = append(next, listeners[i+1:]...)

		if len(next) == 0 {
			delete(w.listeners, event)
		} else {
			w.listeners[event] = next
		}
		return
	}
}

// ListenerCount returns the number of listeners attached to event
func (w *Window) ListenerCount(event string) int {
	w.m.Lock()
	defer w.m.Unlock()

	return len(w.listeners[event])
}

// Dispatch delivers event to every listener attached to event.Type, in the order they were attached.
// The set of listeners is determined when Dispatch is called.
//
// Dispatch must not be called from within a listener or a timer callback.
func (w *Window) Dispatch(event Event) {
	w.dispatch.Lock()
	defer w.dispatch.Unlock()

	w.m.Lock()
	listeners := w.listeners[event.Type]
	w.m.Unlock()

	for _, l := range listeners {
		l.HandleEvent(event)
	}
}

// SetTimeout schedules fn to be called once after delay.
// A negative delay is treated as zero.
//
// fn is called in the same way as listeners, never concurrently with a listener or another timer.
func (w *Window) SetTimeout(fn func(), delay time.Duration) TimerID {
	if delay < 0 {
		delay = 0
	}

	w.m.Lock()
	defer w.m.Unlock()

	if w.closed {
		return 0
	}

	w.lastID++
	id := w.lastID
	w.timers[id] = time.AfterFunc(delay, func() {
		w.dispatch.Lock()
		defer w.dispatch.Unlock()

		// take the timer, unless it was cleared in the meantime
		w.m.Lock()
		_, ok := w.timers[id]
		delete(w.timers, id)
		w.m.Unlock()

		if ok {
			fn()
		}
	})
	return id
}

// ClearTimeout cancels the timer with the given id.
// After ClearTimeout returns, the timer's callback is guaranteed not to be called, unless it is already running.
// Clearing an unknown or already fired timer is a no-op.
func (w *Window) ClearTimeout(id TimerID) {
	w.m.Lock()
	defer w.m.Unlock()

	if t, ok := w.timers[id]; ok {
		t.Stop()
		delete(w.timers, id)
	}
}

// PendingTimers returns the number of timers that have neither fired nor been cleared
func (w *Window) PendingTimers() int {
	w.m.Lock()
	defer w.m.Unlock()

	return len(w.timers)
}

// Close cancels all pending timers and prevents new ones from being scheduled.
// Listeners stay attached.
func (w *Window) Close() {
	w.m.Lock()
	defer w.m.Unlock()

	w.closed = true
	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}
