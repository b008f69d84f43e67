package registry

import "context"

// PatientRepository is the per-session patient registry store.
type PatientRepository interface {
	// Upsert removes any patient sharing p's ID, then appends p. The store
	// never holds two rows with the same ID.
	Upsert(ctx context.Context, p *Patient) error
	Patients(ctx context.Context) ([]*Patient, error)

	// Bedside notes
	AddNote(ctx context.Context, n *Note) error
	// Notes filters by patient ID; an empty ID returns every note.
	Notes(ctx context.Context, patientID string) ([]Note, error)
}
