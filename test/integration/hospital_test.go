package integration

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/viatra/viatra/internal/domain/registry"
	"github.com/viatra/viatra/internal/domain/roster"
	"github.com/viatra/viatra/internal/platform/auth"
)

// TestHospitalJourney covers the hospital hub: patient upserts, bedside
// notes, and the duty roster, all inside one session.
func TestHospitalJourney(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "ward-1")

	// Upsert by ID is idempotent: the second submission replaces the row.
	if code := c.put("/patients", `{"id":"P001","name":"Jane Okafor","age":44,"sex":"F"}`, nil); code != http.StatusOK {
		t.Fatalf("upsert patient: expected 200, got %d", code)
	}
	if code := c.put("/patients", `{"id":"P001","name":"Jane Okafor","age":45,"sex":"F","allergies":"penicillin"}`, nil); code != http.StatusOK {
		t.Fatalf("re-upsert patient: expected 200, got %d", code)
	}

	var list listResponse
	c.get("/patients", &list)
	if list.Total != 1 {
		t.Fatalf("expected 1 patient after re-upsert, got %d", list.Total)
	}
	var patients []registry.Patient
	json.Unmarshal(list.Data, &patients)
	if patients[0].Age != 45 || patients[0].Allergies != "penicillin" {
		t.Errorf("expected replaced row, got %+v", patients[0])
	}

	// Notes reference a registered patient; unknown IDs are 404.
	var note registry.Note
	if code := c.post("/patients/P001/notes", `{"note":"Vitals stable overnight."}`, &note); code != http.StatusCreated {
		t.Fatalf("add note: expected 201, got %d", code)
	}
	if note.Author != auth.DefaultIdentity().Name {
		t.Errorf("expected note author to default to %s, got %s", auth.DefaultIdentity().Name, note.Author)
	}
	if code := c.post("/patients/P999/notes", `{"note":"ghost"}`, nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown patient, got %d", code)
	}

	// The roster lists collated by default: date, then shift string.
	today := time.Now().UTC().Format("2006-01-02")
	c.post("/roster", `{"date":"`+today+`","shift":"Night","doctor":"Dr. Osei"}`, nil)
	c.post("/roster", `{"date":"`+today+`","shift":"Morning","doctor":"Dr. Varga"}`, nil)
	c.post("/roster", `{"date":"`+today+`","shift":"Evening","doctor":"Dr. Tanaka"}`, nil)

	c.get("/roster", &list)
	var entries []roster.Entry
	json.Unmarshal(list.Data, &entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 roster entries, got %d", len(entries))
	}
	if entries[0].Shift != "Evening" || entries[1].Shift != "Morning" || entries[2].Shift != "Night" {
		t.Errorf("expected Evening/Morning/Night collation, got %+v", entries)
	}

	// Invalid shift enumerations are rejected.
	if code := c.post("/roster", `{"date":"`+today+`","shift":"Dawn","doctor":"Dr. Osei"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown shift, got %d", code)
	}
}

func TestPatientValidation(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "ward-2")

	if code := c.put("/patients", `{"id":"","name":"No ID","age":30,"sex":"M"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing id, got %d", code)
	}
	if code := c.put("/patients", `{"id":"P001","name":"Too Old","age":130,"sex":"M"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for age out of range, got %d", code)
	}
	if code := c.put("/patients", `{"id":"P001","name":"Bad Sex","age":30,"sex":"X"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown sex, got %d", code)
	}
}

func TestPrescriptionGeneration(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "ward-3")

	var doc struct {
		Patient string   `json:"patient"`
		Meds    []string `json:"meds"`
	}
	code := c.post("/prescriptions", `{"patient":"Jane Okafor","meds":"metformin, lisinopril","instructions":"after meals"}`, &doc)
	if code != http.StatusOK {
		t.Fatalf("generate prescription: expected 200, got %d", code)
	}
	if doc.Patient != "Jane Okafor" || len(doc.Meds) != 2 {
		t.Errorf("unexpected document: %+v", doc)
	}

	if code := c.post("/prescriptions", `{"meds":"metformin"}`, nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing patient, got %d", code)
	}
}

func TestAppointmentInsights(t *testing.T) {
	srv := newServer()
	defer srv.Close()
	c := newClient(t, srv, "ward-4")

	var points []struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	if code := c.get("/insights/appointments?days=14", &points); code != http.StatusOK {
		t.Fatalf("insights: expected 200, got %d", code)
	}
	if len(points) != 14 {
		t.Fatalf("expected 14 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Count < 5 {
			t.Errorf("count below floor on %s: %d", p.Date, p.Count)
		}
	}
	if points[13].Date != time.Now().UTC().Format("2006-01-02") {
		t.Errorf("expected series to end today, got %s", points[13].Date)
	}
}
