package service

import (
	"sync"

	"pickpack-service/internal/picking"
)

// activeSession pairs a running pick session with the Redis lock token that
// owns the picker's session slot. The mutex serializes all mutations of one
// session: the core assumes a single actor, and HTTP handlers may race.
type activeSession struct {
	mu        sync.Mutex
	session   *picking.Session
	lockToken string
}

// sessionRegistry holds the active session per picker. Exactly one entry per
// picker at a time.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*activeSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*activeSession)}
}

func (r *sessionRegistry) get(picker string) (*activeSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[picker]
	return s, ok
}

// put registers a session unless the picker already has one.
func (r *sessionRegistry) put(picker string, s *activeSession) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[picker]; exists {
		return false
	}
	r.sessions[picker] = s
	return true
}

func (r *sessionRegistry) remove(picker string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, picker)
}
