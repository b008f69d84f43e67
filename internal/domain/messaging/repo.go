package messaging

import "context"

// ChatRepository is the per-session chat log store.
type ChatRepository interface {
	Append(ctx context.Context, m Message) error
	Messages(ctx context.Context) ([]Message, error)
}

// ConsultRepository is the per-session micro-consult request store.
type ConsultRepository interface {
	Append(ctx context.Context, cr *ConsultRequest) error
	Requests(ctx context.Context) ([]ConsultRequest, error)
}

// ProfileDirectory is the slice of the consumer-profile store this package
// needs: consult requests must reference an existing profile, and an empty
// name resolves to the session's active profile.
type ProfileDirectory interface {
	ResolveProfile(ctx context.Context, name string) (string, error)
}
