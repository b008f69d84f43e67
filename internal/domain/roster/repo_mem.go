package roster

import (
	"context"
	"sync"

	"github.com/viatra/viatra/internal/platform/session"
)

type rosterState struct {
	mu      sync.Mutex
	entries []Entry
}

type rosterRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*rosterState
}

func NewRosterRepoMem() RosterRepository {
	return &rosterRepoMem{sessions: make(map[string]*rosterState)}
}

func (r *rosterRepoMem) state(ctx context.Context) *rosterState {
	sid := session.IDFromContext(ctx)

	r.mu.RLock()
	st, ok := r.sessions[sid]
	r.mu.RUnlock()
	if ok {
		return st
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.sessions[sid]; ok {
		return st
	}
	st = &rosterState{}
	r.sessions[sid] = st
	return st
}

func (r *rosterRepoMem) Add(ctx context.Context, e Entry) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.entries = append(st.entries, e)
	return nil
}

func (r *rosterRepoMem) Entries(ctx context.Context) ([]Entry, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Entry, len(st.entries))
	copy(out, st.entries)
	return out, nil
}
