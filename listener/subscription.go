// Package listener keeps a single listener attached to an event target while it is enabled.
package listener

import (
	"sync"

	"github.com/tkw1536/keyseq/window"
)

// Target is an event target that listeners can be attached to.
// It is implemented by *window.Window.
type Target interface {
	AddEventListener(event string, listener window.Listener)
	RemoveEventListener(event string, listener window.Listener)
}

// Subscription manages the attachment of at most one listener to one event of a Target.
//
// Update should be called whenever the desired state changes.
// Close must be called when the owner of the subscription goes away.
type Subscription struct {
	target Target

	m        sync.Mutex
	attached bool
	event    string
	listener window.Listener
}

// New creates a new Subscription on target, initially detached
func New(target Target) *Subscription {
	return &Subscription{target: target}
}

// Update sets the desired state of this subscription.
//
// When enabled is true, listener is attached to event.
// If a different event or listener was attached previously, it is detached first.
//
// When enabled is false, any attachment made by this subscription is removed.
// Listeners attached by anything else, including other subscriptions, are left alone.
func (s *Subscription) Update(enabled bool, event string, listener window.Listener) {
	s.m.Lock()
	defer s.m.Unlock()

	if s.attached && (!enabled || s.event != event || s.listener != listener) {
		s.target.RemoveEventListener(s.event, s.listener)
		s.attached = false
	}

	if !enabled {
		s.event, s.listener = event, listener
		return
	}

	if !s.attached {
		s.target.AddEventListener(event, listener)
		s.attached = true
	}
	s.event, s.listener = event, listener
}

// Active reports if a listener is currently attached
func (s *Subscription) Active() bool {
	s.m.Lock()
	defer s.m.Unlock()

	return s.attached
}

// Close detaches the listener, if any.
// It is safe to call Close multiple times.
func (s *Subscription) Close() {
	s.m.Lock()
	defer s.m.Unlock()

	if s.attached {
		s.target.RemoveEventListener(s.event, s.listener)
		s.attached = false
	}
}
