package profile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/viatra/viatra/internal/platform/session"
)

// DefaultProfileName is the profile every session starts with.
const DefaultProfileName = "Me"

// sessionState holds one session's consumer-hub data. Its mutex serializes
// requests within the session; distinct sessions proceed concurrently.
type sessionState struct {
	mu         sync.Mutex
	active     string
	order      []string // profile names in insertion order
	profiles   map[string]*Profile
	vitals     map[string][]VitalsEntry
	passports  map[string]Passport
	meds       map[string][]string
	records    map[string][]*Record
	challenges map[string]*Challenge // lazy, absent until first started or advanced
}

func newSessionState() *sessionState {
	st := &sessionState{
		profiles:   make(map[string]*Profile),
		vitals:     make(map[string][]VitalsEntry),
		passports:  make(map[string]Passport),
		meds:       make(map[string][]string),
		records:    make(map[string][]*Record),
		challenges: make(map[string]*Challenge),
	}
	st.addProfile(&Profile{Name: DefaultProfileName})
	st.active = DefaultProfileName
	return st
}

// addProfile registers a profile and its sub-collections together. Duplicate
// names are a no-op so re-adding never resets existing data.
func (st *sessionState) addProfile(p *Profile) {
	if _, ok := st.profiles[p.Name]; ok {
		return
	}
	cp := *p
	st.profiles[p.Name] = &cp
	st.order = append(st.order, p.Name)
	st.vitals[p.Name] = []VitalsEntry{}
	st.passports[p.Name] = emptyPassport()
	st.meds[p.Name] = []string{}
	st.records[p.Name] = []*Record{}
}

// resolve maps an empty name to the active profile and verifies existence.
func (st *sessionState) resolve(name string) (string, error) {
	if name == "" {
		name = st.active
	}
	if _, ok := st.profiles[name]; !ok {
		return "", fmt.Errorf("profile %q: %w", name, ErrInvalidReference)
	}
	return name, nil
}

// profileRepoMem is a thread-safe in-memory ProfileRepository keyed by the
// session carried in the request context. Sessions are provisioned lazily on
// first touch, pre-seeded with the default profile.
type profileRepoMem struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
}

func NewProfileRepoMem() ProfileRepository {
	return &profileRepoMem{sessions: make(map[string]*sessionState)}
}

func (r *profileRepoMem) state(ctx context.Context) *sessionState {
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
	st = newSessionState()
	r.sessions[sid] = st
	return st
}

func (r *profileRepoMem) AddProfile(ctx context.Context, p *Profile) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.addProfile(p)
	return nil
}

func (r *profileRepoMem) Profiles(ctx context.Context) ([]*Profile, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]*Profile, 0, len(st.order))
	for _, name := range st.order {
		out = append(out, copyProfile(st.profiles[name]))
	}
	return out, nil
}

func (r *profileRepoMem) Active(ctx context.Context) (string, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.active, nil
}

func (r *profileRepoMem) SetActive(ctx context.Context, name string) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.profiles[name]; !ok {
		return fmt.Errorf("profile %q: %w", name, ErrInvalidReference)
	}
	st.active = name
	return nil
}

func (r *profileRepoMem) ResolveProfile(ctx context.Context, name string) (string, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.resolve(name)
}

func (r *profileRepoMem) AppendVitals(ctx context.Context, profile string, e VitalsEntry) ([]VitalsEntry, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return nil, err
	}
	st.vitals[name] = append(st.vitals[name], e)
	return copyVitals(st.vitals[name]), nil
}

func (r *profileRepoMem) Vitals(ctx context.Context, profile string) ([]VitalsEntry, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return nil, err
	}
	return copyVitals(st.vitals[name]), nil
}

func (r *profileRepoMem) Passport(ctx context.Context, profile string) (Passport, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return Passport{}, err
	}
	return copyPassport(st.passports[name]), nil
}

func (r *profileRepoMem) SetPassport(ctx context.Context, profile string, p Passport) (Passport, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return Passport{}, err
	}
	st.passports[name] = copyPassport(p)
	return copyPassport(st.passports[name]), nil
}

func (r *profileRepoMem) Medications(ctx context.Context, profile string) ([]string, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return nil, err
	}
	return copyStrings(st.meds[name]), nil
}

func (r *profileRepoMem) SetMedications(ctx context.Context, profile string, meds []string) ([]string, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return nil, err
	}
	st.meds[name] = copyStrings(meds)
	return copyStrings(st.meds[name]), nil
}

func (r *profileRepoMem) AddRecord(ctx context.Context, profile string, rec *Record) error {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return err
	}
	rec.ID = uuid.New()
	rec.Uploaded = time.Now().UTC()
	cp := *rec
	st.records[name] = append(st.records[name], &cp)
	return nil
}

func (r *profileRepoMem) Records(ctx context.Context, profile string) ([]*Record, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(st.records[name]))
	for _, rec := range st.records[name] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *profileRepoMem) Challenge(ctx context.Context, profile string) (Challenge, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	name, err := st.resolve(profile)
	if err != nil {
		return Challenge{}, err
	}
	ch, ok := st.challenges[name]
	if !ok {
		return Challenge{}, nil
	}
	return copyChallenge(ch), nil
}

func (r *profileRepoMem) StartChallenge(ctx context.Context, profile string, name string) (Challenge, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	p, err := st.resolve(profile)
	if err != nil {
		return Challenge{}, err
	}
	now := time.Now().UTC()
	st.challenges[p] = &Challenge{Name: &name, Progress: 0, Started: &now}
	return copyChallenge(st.challenges[p]), nil
}

func (r *profileRepoMem) AdvanceChallenge(ctx context.Context, profile string, delta int) (Challenge, error) {
	st := r.state(ctx)
	st.mu.Lock()
	defer st.mu.Unlock()

	p, err := st.resolve(profile)
	if err != nil {
		return Challenge{}, err
	}
	ch, ok := st.challenges[p]
	if !ok {
		ch = &Challenge{}
		st.challenges[p] = ch
	}
	ch.Progress = clampProgress(ch.Progress + delta)
	return copyChallenge(ch), nil
}

func clampProgress(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Copy helpers keep store internals isolated from callers.

func copyProfile(p *Profile) *Profile {
	cp := *p
	if p.DOB != nil {
		v := *p.DOB
		cp.DOB = &v
	}
	if p.Gender != nil {
		v := *p.Gender
		cp.Gender = &v
	}
	return &cp
}

func copyVitals(entries []VitalsEntry) []VitalsEntry {
	out := make([]VitalsEntry, len(entries))
	copy(out, entries)
	return out
}

func copyStrings(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	return out
}

func copyPassport(p Passport) Passport {
	return Passport{
		Immunizations: copyStrings(p.Immunizations),
		Allergies:     copyStrings(p.Allergies),
		Conditions:    copyStrings(p.Conditions),
	}
}

func copyChallenge(ch *Challenge) Challenge {
	cp := *ch
	if ch.Name != nil {
		v := *ch.Name
		cp.Name = &v
	}
	if ch.Started != nil {
		v := *ch.Started
		cp.Started = &v
	}
	return cp
}
