package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestValidID(t *testing.T) {
	valid := []string{"demo", "ward-7", "Team_A", "a", "X9"}
	for _, id := range valid {
		if !ValidID(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}

	invalid := []string{"", "ward 7", "a/b", "demo!", "über"}
	for _, id := range invalid {
		if ValidID(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestIDFromContext_Default(t *testing.T) {
	if got := IDFromContext(context.Background()); got != DefaultID {
		t.Errorf("expected %q, got %q", DefaultID, got)
	}
}

func TestIDFromContext_RoundTrip(t *testing.T) {
	ctx := WithID(context.Background(), "clinic-1")
	if got := IDFromContext(ctx); got != "clinic-1" {
		t.Errorf("expected clinic-1, got %q", got)
	}
}

func TestMiddleware_DefaultSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reg := NewRegistry()
	var seen string
	handler := func(c echo.Context) error {
		seen = IDFromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	mw := Middleware(reg, []byte("secret"), "demo")
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen != "demo" {
		t.Errorf("expected session demo, got %q", seen)
	}
	if _, ok := reg.Get("demo"); !ok {
		t.Error("expected registry to track the demo session")
	}
}

func TestMiddleware_HeaderWins(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?session=query-session", nil)
	req.Header.Set(HeaderSessionID, "header-session")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := func(c echo.Context) error {
		seen = IDFromContext(c.Request().Context())
		return nil
	}

	mw := Middleware(NewRegistry(), []byte("secret"), "demo")
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "header-session" {
		t.Errorf("expected header-session, got %q", seen)
	}
}

func TestMiddleware_QueryParam(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?session=trial-9", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := func(c echo.Context) error {
		seen = IDFromContext(c.Request().Context())
		return nil
	}

	mw := Middleware(NewRegistry(), []byte("secret"), "demo")
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "trial-9" {
		t.Errorf("expected trial-9, got %q", seen)
	}
}

func TestMiddleware_BearerToken(t *testing.T) {
	secret := []byte("secret")
	token, err := MintToken(secret, "token-session", time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(HeaderSessionID, "ignored")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := func(c echo.Context) error {
		seen = IDFromContext(c.Request().Context())
		return nil
	}

	mw := Middleware(NewRegistry(), secret, "demo")
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "token-session" {
		t.Errorf("expected token-session, got %q", seen)
	}
}

func TestMiddleware_BadToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return nil }

	mw := Middleware(NewRegistry(), []byte("secret"), "demo")
	err := mw(handler)(c)
	if err == nil {
		t.Fatal("expected error for invalid bearer token")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestMiddleware_MalformedSessionID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderSessionID, "bad id!")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return nil }

	mw := Middleware(NewRegistry(), []byte("secret"), "demo")
	err := mw(handler)(c)
	if err == nil {
		t.Fatal("expected error for malformed session ID")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestRegistry_Touch(t *testing.T) {
	reg := NewRegistry()
	reg.Touch("a")
	reg.Touch("a")
	reg.Touch("b")

	if reg.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", reg.Count())
	}

	s, ok := reg.Get("a")
	if !ok {
		t.Fatal("expected session a to exist")
	}
	if s.Requests != 2 {
		t.Errorf("expected 2 requests for a, got %d", s.Requests)
	}

	st := reg.Stats()
	if st.ActiveSessions != 2 {
		t.Errorf("expected 2 active sessions, got %d", st.ActiveSessions)
	}
	if st.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", st.TotalRequests)
	}
}

func TestRegistry_ListOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Touch("first")
	reg.Touch("second")

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}
	for _, s := range list {
		if s.Requests != 1 {
			t.Errorf("expected 1 request for %s, got %d", s.ID, s.Requests)
		}
	}
}
