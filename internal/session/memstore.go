package session

import (
	"context"
	"sync"
	"time"

	"github.com/voxaura-ai/voxaura/internal/fault"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// Sessions live for the process lifetime; there is no eviction.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// now is swappable for tests that assert CreatedAt behaviour.
	now func() time.Time
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// GetOrCreate implements [Store.GetOrCreate].
func (s *MemStore) GetOrCreate(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id), nil
}

// Append implements [Store.Append].
func (s *MemStore) Append(_ context.Context, id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.getOrCreateLocked(id)
		sess = s.sessions[id]
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

// Get implements [Store.Get].
func (s *MemStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fault.ErrNotFound
	}
	return snapshot(sess), nil
}

// Clear implements [Store.Clear].
func (s *MemStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions. Used by health checks and tests.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// getOrCreateLocked returns a copy of the session for id, creating it if
// absent. Caller must hold s.mu for writing.
func (s *MemStore) getOrCreateLocked(id string) Session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: s.now().UTC()}
		s.sessions[id] = sess
	}
	return snapshot(sess)
}

// snapshot copies sess so callers cannot mutate the stored transcript.
func snapshot(sess *Session) Session {
	msgs := make([]Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	return Session{ID: sess.ID, Messages: msgs, CreatedAt: sess.CreatedAt}
}
