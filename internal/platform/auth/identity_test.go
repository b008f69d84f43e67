package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Default(t *testing.T) {
	id := FromContext(context.Background())
	if id.ID != "dr-demo" {
		t.Errorf("expected dr-demo, got %q", id.ID)
	}
	if id.Name != "Dr. Demo" {
		t.Errorf("expected Dr. Demo, got %q", id.Name)
	}
}

func TestFromContext_RoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{ID: "dr-osei", Name: "Dr. Osei"})
	id := FromContext(ctx)
	if id.Name != "Dr. Osei" {
		t.Errorf("expected Dr. Osei, got %q", id.Name)
	}
}

func TestDemoIdentity_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen Identity
	handler := func(c echo.Context) error {
		seen = FromContext(c.Request().Context())
		return c.String(http.StatusOK, "ok")
	}

	if err := DemoIdentity()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen.ID != "dr-demo" {
		t.Errorf("expected dr-demo, got %q", seen.ID)
	}
	if got := c.Get("actor_id").(string); got != "dr-demo" {
		t.Errorf("expected actor_id dr-demo, got %q", got)
	}
}

func TestDemoIdentity_HeaderOverride(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderActorName, "Dr. Chen")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen Identity
	handler := func(c echo.Context) error {
		seen = FromContext(c.Request().Context())
		return nil
	}

	if err := DemoIdentity()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seen.Name != "Dr. Chen" {
		t.Errorf("expected Dr. Chen, got %q", seen.Name)
	}
	if seen.ID != "dr-demo" {
		t.Errorf("expected ID to keep its default, got %q", seen.ID)
	}
}
