package realtime

import (
	"sync"
)

// Registry is the presence registry: it maps a user ID to at most one live
// session. It is the source of truth for "is this user reachable right now"
// and holds no persistent state; a restart means everyone is offline until
// they reconnect.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Register maps userID to session, unconditionally replacing any previous
// mapping. The displaced session (if any) is returned; it is not closed
// here, it just stops being reachable through the registry.
func (r *Registry) Register(userID string, s *Session) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.sessions[userID]
	r.sessions[userID] = s
	return previous
}

// Unregister removes the mapping for userID. No-op if absent.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// UnregisterSession removes the mapping only if it still points at s, so a
// superseded connection's teardown cannot evict its replacement. Reports
// whether the mapping was removed.
func (r *Registry) UnregisterSession(userID string, s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sessions[userID]; ok && current == s {
		delete(r.sessions, userID)
		return true
	}
	return false
}

// Lookup returns the live session for userID, if any.
func (r *Registry) Lookup(userID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Online reports whether userID currently has a live session.
func (r *Registry) Online(userID string) bool {
	_, ok := r.Lookup(userID)
	return ok
}

// Sessions returns a snapshot of all live sessions.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
