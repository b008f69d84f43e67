package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/viatra/viatra/internal/platform/auth"
	"github.com/viatra/viatra/internal/platform/session"
)

func newTestService() *Service {
	return NewService(NewPatientRepoMem())
}

func jane() *Patient {
	return &Patient{ID: "A1", Name: "Jane", Age: 34, Sex: "F", Allergies: "none", Comorbidities: "none"}
}

// =========== Patient registry ===========

func TestUpsertPatient_Insert(t *testing.T) {
	svc := newTestService()
	stored, err := svc.UpsertPatient(context.Background(), jane())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ID != "A1" || stored.Age != 34 {
		t.Errorf("unexpected stored patient: %+v", stored)
	}
}

func TestUpsertPatient_IdempotentResubmission(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())
	svc.UpsertPatient(ctx, jane())

	patients, err := svc.Patients(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(patients))
	}
}

func TestUpsertPatient_SecondValuesWin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())
	svc.UpsertPatient(ctx, &Patient{ID: "A1", Name: "Jane", Age: 35, Sex: "F", Allergies: "penicillin", Comorbidities: "asthma"})

	patients, _ := svc.Patients(ctx)
	if len(patients) != 1 {
		t.Fatalf("expected one record, got %d", len(patients))
	}
	p := patients[0]
	if p.Age != 35 || p.Allergies != "penicillin" || p.Comorbidities != "asthma" {
		t.Errorf("expected second submission to win entirely, got %+v", p)
	}
}

func TestUpsertPatient_MovesToEnd(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())
	svc.UpsertPatient(ctx, &Patient{ID: "B2", Name: "Omar", Age: 51, Sex: "M"})
	svc.UpsertPatient(ctx, &Patient{ID: "A1", Name: "Jane", Age: 35, Sex: "F"})

	patients, _ := svc.Patients(ctx)
	if len(patients) != 2 {
		t.Fatalf("expected 2 records, got %d", len(patients))
	}
	if patients[0].ID != "B2" || patients[1].ID != "A1" {
		t.Errorf("expected re-upserted record at the end, got [%s %s]", patients[0].ID, patients[1].ID)
	}
}

func TestUpsertPatient_AgeBounds(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, age := range []int{-1, 121} {
		p := jane()
		p.Age = age
		if _, err := svc.UpsertPatient(ctx, p); !errors.Is(err, ErrValidation) {
			t.Errorf("age %d: expected ErrValidation, got %v", age, err)
		}
	}
	for _, age := range []int{0, 120} {
		p := jane()
		p.Age = age
		if _, err := svc.UpsertPatient(ctx, p); err != nil {
			t.Errorf("age %d: unexpected error: %v", age, err)
		}
	}
}

func TestUpsertPatient_SexEnum(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, sex := range []string{"", "X", "female"} {
		p := jane()
		p.Sex = sex
		if _, err := svc.UpsertPatient(ctx, p); !errors.Is(err, ErrValidation) {
			t.Errorf("sex %q: expected ErrValidation, got %v", sex, err)
		}
	}
	for _, sex := range []string{"M", "F", "Other"} {
		p := jane()
		p.Sex = sex
		if _, err := svc.UpsertPatient(ctx, p); err != nil {
			t.Errorf("sex %q: unexpected error: %v", sex, err)
		}
	}
}

func TestUpsertPatient_EmptyID(t *testing.T) {
	svc := newTestService()
	if _, err := svc.UpsertPatient(context.Background(), &Patient{Name: "Jane", Age: 34, Sex: "F"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestUpsertPatient_RejectedLeavesStoreUntouched(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())

	bad := jane()
	bad.Age = 300
	svc.UpsertPatient(ctx, bad)

	patients, _ := svc.Patients(ctx)
	if len(patients) != 1 || patients[0].Age != 34 {
		t.Errorf("rejected upsert mutated the registry: %+v", patients)
	}
}

func TestListPatients_Empty(t *testing.T) {
	svc := newTestService()
	patients, err := svc.Patients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("expected empty registry, got %d", len(patients))
	}
}

// =========== Bedside notes ===========

func TestAddNote(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())

	n, err := svc.AddNote(ctx, "A1", "Dr. Osei", "sleeping well")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Author != "Dr. Osei" || n.Text != "sleeping well" {
		t.Errorf("unexpected note: %+v", n)
	}
	if n.Timestamp.IsZero() {
		t.Error("expected stamped timestamp")
	}
}

func TestAddNote_DefaultAuthor(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())

	n, err := svc.AddNote(ctx, "A1", "", "vitals stable")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Author != auth.DefaultIdentity().Name {
		t.Errorf("expected demo author, got %q", n.Author)
	}
}

func TestAddNote_UnknownPatient(t *testing.T) {
	svc := newTestService()
	if _, err := svc.AddNote(context.Background(), "Z9", "", "hello"); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestAddNote_EmptyText(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())
	if _, err := svc.AddNote(ctx, "A1", "", "  "); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNotes_FilterByPatient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.UpsertPatient(ctx, jane())
	svc.UpsertPatient(ctx, &Patient{ID: "B2", Name: "Omar", Age: 51, Sex: "M"})
	svc.AddNote(ctx, "A1", "", "first")
	svc.AddNote(ctx, "B2", "", "second")
	svc.AddNote(ctx, "A1", "", "third")

	notes, err := svc.Notes(ctx, "A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 || notes[0].Text != "first" || notes[1].Text != "third" {
		t.Errorf("expected A1 notes in order, got %+v", notes)
	}

	all, _ := svc.Notes(ctx, "")
	if len(all) != 3 {
		t.Errorf("expected all 3 notes, got %d", len(all))
	}
}

// =========== Session scoping ===========

func TestRegistrySessions_Isolated(t *testing.T) {
	svc := newTestService()
	clinicA := session.WithID(context.Background(), "clinic-a")
	clinicB := session.WithID(context.Background(), "clinic-b")

	svc.UpsertPatient(clinicA, jane())

	patients, err := svc.Patients(clinicB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("session leak: clinic-b sees %d patients", len(patients))
	}
}
