package stream

import (
	"context"
	"sync"
	"time"
)

// Binding ties a transport connection to a session. At most one session is
// active per connection; re-registration replaces the prior binding.
type Binding struct {
	ConnectionID string
	SessionID    string
	RegisteredAt time.Time
}

// streamHandle identifies one active delivery so a replacement or stop can
// cancel exactly that delivery.
type streamHandle struct {
	cancel context.CancelFunc
}

// Registry tracks connection→session bindings and the active delivery per
// connection. Starting a new delivery on a connection atomically cancels
// the previous one. Safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	bindings map[string]Binding
	streams  map[string]*streamHandle
	now      func() time.Time
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
		streams:  make(map[string]*streamHandle),
		now:      time.Now,
	}
}

// Register binds a connection to a session, replacing any prior binding for
// the same connection.
func (r *Registry) Register(connectionID, sessionID string) Binding {
	b := Binding{
		ConnectionID: connectionID,
		SessionID:    sessionID,
		RegisteredAt: r.now(),
	}
	r.mu.Lock()
	r.bindings[connectionID] = b
	r.mu.Unlock()
	return b
}

// SessionFor returns the session bound to a connection.
func (r *Registry) SessionFor(connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bindings[connectionID]
	return b.SessionID, ok
}

// Unregister drops a connection's binding and cancels its active delivery.
// Called on disconnect.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	delete(r.bindings, connectionID)
	h := r.streams[connectionID]
	delete(r.streams, connectionID)
	r.mu.Unlock()
	if h != nil {
		h.cancel()
	}
}

// BeginStream registers a new delivery for a connection, cancelling any
// previous one in the same atomic step. The returned context governs the
// delivery; the release func must be called when the delivery ends.
func (r *Registry) BeginStream(parent context.Context, connectionID string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	h := &streamHandle{cancel: cancel}

	r.mu.Lock()
	prev := r.streams[connectionID]
	r.streams[connectionID] = h
	r.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}

	release := func() {
		r.mu.Lock()
		if r.streams[connectionID] == h {
			delete(r.streams, connectionID)
		}
		r.mu.Unlock()
		cancel()
	}
	return ctx, release
}

// StopStream cancels the connection's active delivery, if any.
func (r *Registry) StopStream(connectionID string) {
	r.mu.Lock()
	h := r.streams[connectionID]
	delete(r.streams, connectionID)
	r.mu.Unlock()
	if h != nil {
		h.cancel()
	}
}

// ActiveStreams reports how many deliveries are currently running.
func (r *Registry) ActiveStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// Connections reports how many bindings are registered.
func (r *Registry) Connections() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bindings)
}
