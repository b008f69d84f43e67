// Package interpreter is the health-interpreter placeholder. The product
// advertises AI interpretation of pasted lab or prescription text; the demo
// deliberately does none, echoing back a truncated copy of the input with a
// fixed warning. The last submission is kept per session, not per profile.
package interpreter

import (
	"context"
	"sync"

	"github.com/viatra/viatra/internal/platform/session"
)

// SummaryLimit is how many characters of the submission the summary echoes.
const SummaryLimit = 1000

// Disclaimer accompanies every interpretation.
const Disclaimer = "This demo uses heuristic parsing. Integrate LLMs with clinical guardrails in production."

// Interpretation is the response document for a submission.
type Interpretation struct {
	Summary    string `json:"summary"`
	Disclaimer string `json:"disclaimer"`
}

// InputRepository stores each session's last submitted text.
type InputRepository interface {
	SetLastInput(ctx context.Context, text string) error
	LastInput(ctx context.Context) (string, error)
}

type inputRepoMem struct {
	mu     sync.RWMutex
	inputs map[string]string
}

func NewInputRepoMem() InputRepository {
	return &inputRepoMem{inputs: make(map[string]string)}
}

func (r *inputRepoMem) SetLastInput(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[session.IDFromContext(ctx)] = text
	return nil
}

func (r *inputRepoMem) LastInput(ctx context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inputs[session.IDFromContext(ctx)], nil
}

type Service struct {
	inputs InputRepository
}

func NewService(inputs InputRepository) *Service {
	return &Service{inputs: inputs}
}

// Interpret stores the submission as the session's last input and returns the
// placeholder interpretation: the first SummaryLimit characters verbatim.
func (s *Service) Interpret(ctx context.Context, text string) (Interpretation, error) {
	if err := s.inputs.SetLastInput(ctx, text); err != nil {
		return Interpretation{}, err
	}
	return Interpretation{Summary: truncate(text, SummaryLimit), Disclaimer: Disclaimer}, nil
}

// LastInput returns the session's last submission, empty when there was none.
func (s *Service) LastInput(ctx context.Context) (string, error) {
	return s.inputs.LastInput(ctx)
}

// truncate cuts at a character boundary, not a byte one, so multi-byte input
// never ends in a broken rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
