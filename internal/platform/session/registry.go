package session

import (
	"sort"
	"sync"
	"time"
)

// Session is the registry's record of one live session.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
	Requests  int64     `json:"requests"`
}

// Stats summarizes registry state for health and metrics reporting.
type Stats struct {
	ActiveSessions int   `json:"active_sessions"`
	TotalRequests  int64 `json:"total_requests"`
}

// Registry tracks every session the server has seen since boot.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Touch records a request for the session, provisioning the record on first
// sight.
func (r *Registry) Touch(id string) {
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id, CreatedAt: now}
		r.sessions[id] = s
	}
	s.LastSeen = now
	s.Requests++
}

// Get returns a copy of the session record.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Count returns the number of sessions seen since boot.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List returns copies of all session records, oldest first.
func (r *Registry) List() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Stats returns aggregate counters across all sessions.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Stats{ActiveSessions: len(r.sessions)}
	for _, s := range r.sessions {
		st.TotalRequests += s.Requests
	}
	return st
}
