package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/viatra/viatra/internal/platform/auth"
)

// Patient ages accepted by the registry, inclusive.
const (
	minAge = 0
	maxAge = 120
)

var validSexes = map[string]bool{
	"M": true, "F": true, "Other": true,
}

type Service struct {
	patients PatientRepository
}

func NewService(patients PatientRepository) *Service {
	return &Service{patients: patients}
}

// UpsertPatient validates and stores a registry row. Repeat submission with
// the same ID replaces the row and moves it to the end of the registry.
func (s *Service) UpsertPatient(ctx context.Context, p *Patient) (*Patient, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return nil, fmt.Errorf("patient id is required: %w", ErrValidation)
	}
	if p.Age < minAge || p.Age > maxAge {
		return nil, fmt.Errorf("age %d outside %d-%d: %w", p.Age, minAge, maxAge, ErrValidation)
	}
	if !validSexes[p.Sex] {
		return nil, fmt.Errorf("sex must be M, F or Other: %w", ErrValidation)
	}
	if err := s.patients.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Patients lists the registry in store order, most recent upsert last.
func (s *Service) Patients(ctx context.Context) ([]*Patient, error) {
	return s.patients.Patients(ctx)
}

// AddNote appends a bedside note for a registered patient. The author
// defaults to the acting clinician when not supplied.
func (s *Service) AddNote(ctx context.Context, patientID, author, text string) (Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, fmt.Errorf("note text is required: %w", ErrValidation)
	}
	if author == "" {
		author = auth.FromContext(ctx).Name
	}
	n := Note{PatientID: patientID, Author: author, Text: text}
	if err := s.patients.AddNote(ctx, &n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Notes lists bedside notes in insertion order, filtered by patient when an
// ID is given.
func (s *Service) Notes(ctx context.Context, patientID string) ([]Note, error) {
	return s.patients.Notes(ctx, patientID)
}
