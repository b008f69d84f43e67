package roster

import "context"

// RosterRepository is the per-session duty roster store.
type RosterRepository interface {
	Add(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
}
