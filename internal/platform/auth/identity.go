// Package auth carries the acting clinician identity through a request.
//
// There is no login. Every request acts as a demo clinician, which keeps the
// sandbox open while still giving notes and chat messages an author. Callers
// may override the identity per request with the X-Actor-ID and X-Actor-Name
// headers.
package auth

import (
	"context"

	"github.com/labstack/echo/v4"
)

type contextKey string

const identityKey contextKey = "identity"

// Header names for per-request identity overrides.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
)

// Identity is the acting clinician attached to a request.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultIdentity returns the built-in demo clinician.
func DefaultIdentity() Identity {
	return Identity{ID: "dr-demo", Name: "Dr. Demo"}
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity carried by ctx, falling back to the demo
// clinician when none is set.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok && id.ID != "" {
		return id
	}
	return DefaultIdentity()
}

// DemoIdentity returns middleware that attaches the acting identity to every
// request. Header overrides apply field by field, so a request may rename
// the actor without changing its ID.
func DemoIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := DefaultIdentity()

			if v := c.Request().Header.Get(HeaderActorID); v != "" {
				id.ID = v
			}
			if v := c.Request().Header.Get(HeaderActorName); v != "" {
				id.Name = v
			}

			ctx := WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("actor_id", id.ID)
			c.Set("actor_name", id.Name)

			return next(c)
		}
	}
}
