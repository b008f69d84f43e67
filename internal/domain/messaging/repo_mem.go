package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viatra/viatra/internal/platform/session"
)

// =========== Chat Repository ===========

type chatState struct {
	mu       sync.Mutex
	messages []Message
}

type chatRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*chatState
}

func NewChatRepoMem() ChatRepository {
	return &chatRepoMem{sessions: make(map[string]*chatState)}
}

func (r *chatRepoMem) state(ctx context.Context) *chatState {
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
	st = &chatState{}
	r.sessions[sid] = st
	return st
}

func (r *chatRepoMem) Append(ctx context.Context, m Message) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.messages = append(st.messages, m)
	return nil
}

func (r *chatRepoMem) Messages(ctx context.Context) ([]Message, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Message, len(st.messages))
	copy(out, st.messages)
	return out, nil
}

// =========== Consult Repository ===========

type consultState struct {
	mu       sync.Mutex
	requests []ConsultRequest
}

type consultRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*consultState
}

func NewConsultRepoMem() ConsultRepository {
	return &consultRepoMem{sessions: make(map[string]*consultState)}
}

func (r *consultRepoMem) state(ctx context.Context) *consultState {
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
	st = &consultState{}
	r.sessions[sid] = st
	return st
}

func (r *consultRepoMem) Append(ctx context.Context, cr *ConsultRequest) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	cr.ID = uuid.New()
	cr.Created = time.Now().UTC()
	st.requests = append(st.requests, *cr)
	return nil
}

func (r *consultRepoMem) Requests(ctx context.Context) ([]ConsultRequest, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]ConsultRequest, len(st.requests))
	copy(out, st.requests)
	return out, nil
}
