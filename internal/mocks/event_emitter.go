package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/account-service/internal/events"
)

// RecordingEmitter implements events.EventEmitter by keeping every event.
type RecordingEmitter struct {
	// Err is returned from EmitEvent after the event is recorded
	Err error

	mu     sync.Mutex
	events []*events.AccountEvent
}

// EmitEvent implements events.EventEmitter
func (r *RecordingEmitter) EmitEvent(ctx context.Context, event *events.AccountEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of the recorded events in emission order.
func (r *RecordingEmitter) Events() []*events.AccountEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*events.AccountEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in emission order.
func (r *RecordingEmitter) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)
