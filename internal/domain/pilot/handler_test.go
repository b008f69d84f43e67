package pilot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(newTestService())
	e := echo.New()
	return h, e
}

func TestHandler_AppendRequest(t *testing.T) {
	h, e := newTestHandler()
	body := `{"org":"Mercy General","email":"cio@mercy.example","use_case":"Hospital pilot","notes":"triage"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.AppendRequest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var r Request
	json.Unmarshal(rec.Body.Bytes(), &r)
	if r.UseCase != UseCaseHospital || r.Created.IsZero() {
		t.Errorf("unexpected request: %+v", r)
	}
}

func TestHandler_AppendRequest_BadUseCase(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"org":"x","use_case":"Other"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h.AppendRequest(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_RecentRequests(t *testing.T) {
	h, e := newTestHandler()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		h.svc.Append(ctx, &Request{Org: "org", UseCase: UseCaseConsumer})
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.RecentRequests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var requests []Request
	json.Unmarshal(rec.Body.Bytes(), &requests)
	if len(requests) != DefaultRecent {
		t.Errorf("expected default window of %d, got %d", DefaultRecent, len(requests))
	}
}

func TestHandler_GetPitch(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetPitch(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"title", "value_prop", "vision", "differentiation", "traction", "asks", "metrics", "north_star"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("pitch missing key %q", key)
		}
	}
}
