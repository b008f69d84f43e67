// Package session resolves the isolated workspace every request operates in.
//
// A session is addressed by ID. All domain stores key their state by the
// session ID carried in the request context, so two sessions never observe
// each other's data. Sessions are provisioned lazily: the first request that
// names an ID creates it.
package session

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// DefaultID is the session used when a request carries no addressing at all.
const DefaultID = "demo"

// HeaderSessionID is the header clients use to address a session directly.
const HeaderSessionID = "X-Session-ID"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidID reports whether id is a well-formed session identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// WithID returns a context carrying the given session ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// IDFromContext returns the session ID carried by ctx, or DefaultID when the
// context has none. Stores always resolve to some session, so callers that
// skip the HTTP layer (tests, seeding) still work.
func IDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id
	}
	return DefaultID
}

// Middleware resolves the session for each request and stamps it into the
// request context. Resolution order: bearer token claim, X-Session-ID
// header, session query parameter, then the configured default.
func Middleware(reg *Registry, secret []byte, defaultID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolveID(c, secret, defaultID)
			if err != nil {
				return err
			}

			if !ValidID(id) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid session identifier")
			}

			if reg != nil {
				reg.Touch(id)
			}

			ctx := WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("session_id", id)

			return next(c)
		}
	}
}

func resolveID(c echo.Context, secret []byte, defaultID string) (string, error) {
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
		}
		id, err := ParseToken(secret, parts[1])
		if err != nil {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
		}
		return id, nil
	}

	if id := c.Request().Header.Get(HeaderSessionID); id != "" {
		return id, nil
	}

	if id := c.QueryParam("session"); id != "" {
		return id, nil
	}

	if defaultID != "" {
		return defaultID, nil
	}
	return DefaultID, nil
}
