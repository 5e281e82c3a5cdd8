package testutil

import (
	"sync"

	"photomirror/internal/eventbus"
)

// EventRecorder subscribes to a Bus and records every event delivered,
// in order, for assertion in tests.
type EventRecorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

// NewEventRecorder subscribes to bus and returns the recorder together
// with its unsubscribe func.
func NewEventRecorder(bus *eventbus.Bus) (*EventRecorder, func()) {
	r := &EventRecorder{}
	unsub := eventbus.Subscribe(bus, func(ev eventbus.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	})
	return r, unsub
}

// Events returns a snapshot of the recorded events.
func (r *EventRecorder) Events() []eventbus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]eventbus.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Labels returns the sequence of labels recorded so far.
func (r *EventRecorder) Labels() []eventbus.Label {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]eventbus.Label, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Label
	}
	return out
}
