package pilot

import (
	"context"
	"fmt"
)

// DefaultRecent is how many leads the landing page shows.
const DefaultRecent = 5

var validUseCases = map[string]bool{
	UseCaseConsumer:    true,
	UseCaseHospital:    true,
	UseCaseIntegration: true,
	UseCaseResearch:    true,
}

type Service struct {
	requests RequestRepository
}

func NewService(requests RequestRepository) *Service {
	return &Service{requests: requests}
}

// Append records a pilot lead stamped with the current UTC clock.
func (s *Service) Append(ctx context.Context, r *Request) (*Request, error) {
	if !validUseCases[r.UseCase] {
		return nil, fmt.Errorf("use case %q not offered: %w", r.UseCase, ErrValidation)
	}
	if err := s.requests.Append(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Requests returns the whole lead log in insertion order.
func (s *Service) Requests(ctx context.Context) ([]Request, error) {
	return s.requests.Requests(ctx)
}

// Recent returns the last min(n, len) leads in insertion order.
func (s *Service) Recent(ctx context.Context, n int) ([]Request, error) {
	if n <= 0 {
		return nil, fmt.Errorf("last must be positive: %w", ErrValidation)
	}
	requests, err := s.requests.Requests(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(requests) {
		requests = requests[len(requests)-n:]
	}
	return requests, nil
}
