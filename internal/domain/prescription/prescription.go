// Package prescription generates e-prescription documents for the hospital
// hub. Nothing is stored; the generator is a pure function over its input.
package prescription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viatra/viatra/pkg/textlist"
)

// ErrValidation reports a prescription without a patient name.
var ErrValidation = errors.New("invalid input")

// Document is one generated e-prescription.
type Document struct {
	Patient      string   `json:"patient"`
	Meds         []string `json:"meds"`
	Instructions string   `json:"instructions"`
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Generate builds a prescription document. Medications accept either a typed
// list or comma-separated free text; both are normalized the same way.
func (s *Service) Generate(patient string, meds textlist.List, instructions string) (Document, error) {
	patient = strings.TrimSpace(patient)
	if patient == "" {
		return Document{}, fmt.Errorf("patient name is required: %w", ErrValidation)
	}
	return Document{
		Patient:      patient,
		Meds:         textlist.Normalize(meds),
		Instructions: instructions,
	}, nil
}
