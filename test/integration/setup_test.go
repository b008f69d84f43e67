// Package integration exercises the assembled HTTP surface: echo, the
// session middleware, and every domain handler wired together the way the
// server binary wires them. No network dependencies; everything is in-memory.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/viatra/viatra/internal/config"
	"github.com/viatra/viatra/internal/domain/insights"
	"github.com/viatra/viatra/internal/domain/interpreter"
	"github.com/viatra/viatra/internal/domain/messaging"
	"github.com/viatra/viatra/internal/domain/pilot"
	"github.com/viatra/viatra/internal/domain/prescription"
	"github.com/viatra/viatra/internal/domain/profile"
	"github.com/viatra/viatra/internal/domain/registry"
	"github.com/viatra/viatra/internal/domain/roster"
	"github.com/viatra/viatra/internal/platform/auth"
	"github.com/viatra/viatra/internal/platform/sandbox"
	"github.com/viatra/viatra/internal/platform/session"
)

// newServer assembles the API surface for tests: the session middleware in
// front of every domain handler, mirroring the serve command's wiring.
func newServer() *httptest.Server {
	e := echo.New()
	e.HideBanner = true

	sessions := session.NewRegistry()
	e.Use(auth.DemoIdentity())
	e.Use(session.Middleware(sessions, []byte(config.DevSessionSecret), "demo"))

	api := e.Group("/api/v1")

	profileRepo := profile.NewProfileRepoMem()
	profileSvc := profile.NewService(profileRepo)
	profile.NewHandler(profileSvc).RegisterRoutes(api)

	registrySvc := registry.NewService(registry.NewPatientRepoMem())
	registry.NewHandler(registrySvc).RegisterRoutes(api)

	rosterSvc := roster.NewService(roster.NewRosterRepoMem())
	roster.NewHandler(rosterSvc).RegisterRoutes(api)

	messagingSvc := messaging.NewService(messaging.NewChatRepoMem(), messaging.NewConsultRepoMem(), profileRepo)
	messaging.NewHandler(messagingSvc).RegisterRoutes(api)

	pilot.NewHandler(pilot.NewService(pilot.NewRequestRepoMem())).RegisterRoutes(api)
	prescription.NewHandler(prescription.NewService()).RegisterRoutes(api)
	interpreter.NewHandler(interpreter.NewService(interpreter.NewInputRepoMem())).RegisterRoutes(api)
	insights.NewHandler(insights.NewService()).RegisterRoutes(api)

	seeder := sandbox.NewSeeder(profileSvc, registrySvc, rosterSvc, messagingSvc)
	sandbox.NewSeedHandler(seeder).RegisterRoutes(api.Group("/sandbox"))

	return httptest.NewServer(e)
}

// client issues requests against one session.
type client struct {
	t       *testing.T
	base    string
	session string
	headers map[string]string
}

func newClient(t *testing.T, srv *httptest.Server, sessionID string) *client {
	t.Helper()
	return &client{t: t, base: srv.URL + "/api/v1", session: sessionID}
}

func (c *client) withHeader(key, value string) *client {
	if c.headers == nil {
		c.headers = map[string]string{}
	}
	c.headers[key] = value
	return c
}

// do issues a request and decodes the JSON response into out (when non-nil).
// It returns the status code.
func (c *client) do(method, path, payload string, out interface{}) int {
	c.t.Helper()

	var body io.Reader
	if payload != "" {
		body = strings.NewReader(payload)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session != "" {
		req.Header.Set(session.HeaderSessionID, c.session)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			c.t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (c *client) get(path string, out interface{}) int {
	return c.do(http.MethodGet, path, "", out)
}

func (c *client) post(path, payload string, out interface{}) int {
	return c.do(http.MethodPost, path, payload, out)
}

func (c *client) put(path, payload string, out interface{}) int {
	return c.do(http.MethodPut, path, payload, out)
}

// listResponse is the paginated envelope the collection endpoints return.
type listResponse struct {
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	HasMore bool            `json:"has_more"`
}
