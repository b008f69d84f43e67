package pilot

import (
	"context"
	"sync"
	"time"

	"github.com/viatra/viatra/internal/platform/session"
)

type requestState struct {
	mu       sync.Mutex
	requests []Request
}

type requestRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*requestState
}

func NewRequestRepoMem() RequestRepository {
	return &requestRepoMem{sessions: make(map[string]*requestState)}
}

func (r *requestRepoMem) state(ctx context.Context) *requestState {
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
	st = &requestState{}
	r.sessions[sid] = st
	return st
}

func (r *requestRepoMem) Append(ctx context.Context, req *Request) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	req.Created = time.Now().UTC()
	st.requests = append(st.requests, *req)
	return nil
}

func (r *requestRepoMem) Requests(ctx context.Context) ([]Request, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Request, len(st.requests))
	copy(out, st.requests)
	return out, nil
}
