package pilot

import "context"

// RequestRepository is the per-session pilot request store.
type RequestRepository interface {
	Append(ctx context.Context, r *Request) error
	Requests(ctx context.Context) ([]Request, error)
}
