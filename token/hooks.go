package token

import (
	"sync"

	stellartoken "github.com/stellar-connect/token-sdk-go"
)

// HookRegistry manages lifecycle event handlers for token state changes.
// It implements the observer pattern, allowing integrators to register
// callbacks that execute sequentially when token lifecycle events occur.
//
// Handlers are stored per event type and execute in registration order.
// The registry is thread-safe for concurrent registration and triggering.
type HookRegistry struct {
	handlers map[stellartoken.EventType][]func(*stellartoken.Event)
	mu       sync.RWMutex
}

// NewHookRegistry creates a new lifecycle hook registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		handlers: make(map[stellartoken.EventType][]func(*stellartoken.Event)),
	}
}

// On registers a handler function for a specific lifecycle event.
// Multiple handlers can be registered for the same event and will execute
// sequentially in registration order when the event is triggered.
//
// Handlers should be quick, non-blocking operations. If a handler panics,
// the panic propagates and prevents subsequent handlers from executing.
func (r *HookRegistry) On(event stellartoken.EventType, handler func(*stellartoken.Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[event] = append(r.handlers[event], handler)
}

// Trigger executes all registered handlers for a specific lifecycle event,
// passing the event record. Handlers execute sequentially in registration
// order.
func (r *HookRegistry) Trigger(event stellartoken.EventType, record *stellartoken.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handlers, ok := r.handlers[event]
	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(record)
	}
}
