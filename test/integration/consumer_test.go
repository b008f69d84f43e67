package integration

import (
	"net/http"
	"testing"

	"github.com/viatra/viatra/internal/domain/profile"
)

// TestConsumerJourney walks the consumer hub end to end in one session:
// add a family member, log vitals against them, fill the passport, save
// medications, and export the share document.
func TestConsumerJourney(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "family-1")

	// A fresh session starts with the default profile.
	var roster profile.Roster
	if code := c.get("/profiles", &roster); code != http.StatusOK {
		t.Fatalf("list profiles: expected 200, got %d", code)
	}
	if roster.Active != "Me" || len(roster.Profiles) != 1 {
		t.Fatalf("expected fresh roster with active Me, got %+v", roster)
	}

	// Add a family member and switch to them.
	if code := c.post("/profiles", `{"name":"Sam"}`, &roster); code != http.StatusOK {
		t.Fatalf("add profile: expected 200, got %d", code)
	}
	if len(roster.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %+v", roster)
	}
	if code := c.put("/profiles/active", `{"name":"Sam"}`, &roster); code != http.StatusOK {
		t.Fatalf("select active: expected 200, got %d", code)
	}
	if roster.Active != "Sam" {
		t.Fatalf("expected Sam active, got %+v", roster)
	}

	// Vitals logged without naming a profile land on the active one.
	var entries []profile.VitalsEntry
	if code := c.post("/vitals", `{"systolic":118,"diastolic":76,"hr":64,"glucose":92}`, &entries); code != http.StatusCreated {
		t.Fatalf("append vitals: expected 201, got %d", code)
	}
	c.post("/vitals", `{"systolic":121,"diastolic":79,"hr":70,"glucose":88}`, &entries)

	entries = nil
	if code := c.get("/vitals?last=1", &entries); code != http.StatusOK {
		t.Fatalf("list vitals: expected 200, got %d", code)
	}
	if len(entries) != 1 || entries[0].Systolic != 121 {
		t.Fatalf("expected tail of 1 with latest reading, got %+v", entries)
	}

	// Passport accepts comma-separated strings and replaces wholesale.
	var passport profile.Passport
	code := c.put("/passport", `{"immunizations":"MMR, Tetanus","allergies":["penicillin"],"conditions":""}`, &passport)
	if code != http.StatusOK {
		t.Fatalf("update passport: expected 200, got %d", code)
	}
	if len(passport.Immunizations) != 2 || passport.Immunizations[1] != "Tetanus" {
		t.Errorf("expected split immunizations, got %+v", passport.Immunizations)
	}
	if len(passport.Conditions) != 0 {
		t.Errorf("expected empty conditions, got %+v", passport.Conditions)
	}

	var meds []string
	if code := c.put("/medications", `{"medications":"metformin, , lisinopril"}`, &meds); code != http.StatusOK {
		t.Fatalf("save medications: expected 200, got %d", code)
	}
	if len(meds) != 2 {
		t.Errorf("expected 2 medications after trimming, got %+v", meds)
	}

	// The export names the profile and carries the passport lists.
	var export profile.PassportExport
	if code := c.get("/passport/export", &export); code != http.StatusOK {
		t.Fatalf("export passport: expected 200, got %d", code)
	}
	if export.Profile != "Sam" {
		t.Errorf("expected export for Sam, got %s", export.Profile)
	}
	if len(export.Allergies) != 1 || export.Allergies[0] != "penicillin" {
		t.Errorf("expected allergies in export, got %+v", export.Allergies)
	}
	if len(export.Immunizations) != 2 {
		t.Errorf("expected immunizations in export, got %+v", export.Immunizations)
	}
}

func TestConsumerValidation(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "family-2")

	// Out-of-range vitals are rejected.
	if code := c.post("/vitals", `{"systolic":500}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range systolic, got %d", code)
	}

	// Operations against an unknown profile are 404.
	if code := c.get("/passport?profile=Nobody", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown profile, got %d", code)
	}
	if code := c.put("/profiles/active", `{"name":"Nobody"}`, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 selecting unknown profile, got %d", code)
	}

	// Adding a duplicate name is a silent no-op.
	c.post("/profiles", `{"name":"Asha"}`, nil)
	var roster profile.Roster
	if code := c.post("/profiles", `{"name":"Asha"}`, &roster); code != http.StatusOK {
		t.Errorf("expected 200 for duplicate profile, got %d", code)
	}
	if len(roster.Profiles) != 2 {
		t.Errorf("expected duplicate add to change nothing, got %+v", roster)
	}
}

func TestRecordsAndChallenge(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "family-3")

	var rec struct {
		Name string `json:"name"`
	}
	if code := c.post("/records", `{"name":"discharge-summary.pdf"}`, &rec); code != http.StatusCreated {
		t.Fatalf("add record: expected 201, got %d", code)
	}
	if rec.Name != "discharge-summary.pdf" {
		t.Errorf("unexpected record: %+v", rec)
	}

	var ch profile.Challenge
	if code := c.post("/challenge", `{"name":"10k steps"}`, &ch); code != http.StatusOK {
		t.Fatalf("start challenge: expected 200, got %d", code)
	}
	if code := c.do(http.MethodPatch, "/challenge", `{"delta":3}`, &ch); code != http.StatusOK {
		t.Fatalf("advance challenge: expected 200, got %d", code)
	}
	if ch.Progress != 3 {
		t.Errorf("expected progress 3, got %d", ch.Progress)
	}
}

func TestSessionIsolation(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	a := newClient(t, srv, "iso-a")
	b := newClient(t, srv, "iso-b")

	a.post("/profiles", `{"name":"Sam"}`, nil)

	var roster profile.Roster
	b.get("/profiles", &roster)
	if len(roster.Profiles) != 1 || roster.Active != "Me" {
		t.Errorf("session iso-b saw iso-a's data: %+v", roster)
	}
}

func TestSandboxSeedIsSessionScoped(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	seeded := newClient(t, srv, "seeded")
	empty := newClient(t, srv, "untouched")

	if code := seeded.post("/sandbox/seed", `{"seed":9}`, nil); code != http.StatusOK {
		t.Fatalf("seed: expected 200, got %d", code)
	}

	var list listResponse
	seeded.get("/patients", &list)
	if list.Total == 0 {
		t.Error("expected seeded patients in the seeded session")
	}

	empty.get("/patients", &list)
	if list.Total != 0 {
		t.Errorf("expected no patients in the untouched session, got %d", list.Total)
	}
}
