package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viatra/viatra/internal/platform/session"
)

type registryState struct {
	mu       sync.Mutex
	patients []*Patient
	notes    []Note
}

// patientRepoMem is a thread-safe in-memory PatientRepository keyed by the
// session carried in the request context.
type patientRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*registryState
}

func NewPatientRepoMem() PatientRepository {
	return &patientRepoMem{sessions: make(map[string]*registryState)}
}

func (r *patientRepoMem) state(ctx context.Context) *registryState {
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
	st = &registryState{}
	r.sessions[sid] = st
	return st
}

func (r *patientRepoMem) Upsert(ctx context.Context, p *Patient) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	kept := st.patients[:0]
	for _, existing := range st.patients {
		if existing.ID != p.ID {
			kept = append(kept, existing)
		}
	}
	cp := *p
	st.patients = append(kept, &cp)
	return nil
}

func (r *patientRepoMem) Patients(ctx context.Context) ([]*Patient, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*Patient, 0, len(st.patients))
	for _, p := range st.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *patientRepoMem) AddNote(ctx context.Context, n *Note) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.hasPatient(n.PatientID) {
		return fmt.Errorf("patient %q: %w", n.PatientID, ErrInvalidReference)
	}
	n.Timestamp = time.Now().UTC()
	st.notes = append(st.notes, *n)
	return nil
}

func (r *patientRepoMem) Notes(ctx context.Context, patientID string) ([]Note, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Note, 0, len(st.notes))
	for _, n := range st.notes {
		if patientID == "" || n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (st *registryState) hasPatient(id string) bool {
	for _, p := range st.patients {
		if p.ID == id {
			return true
		}
	}
	return false
}
