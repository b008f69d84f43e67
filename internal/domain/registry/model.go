// Package registry implements the hospital hub: the per-session patient
// registry and its bedside notes log.
package registry

import (
	"errors"
	"time"
)

var (
	// ErrValidation reports input outside the accepted ranges or enumerations.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidReference reports a patient ID that is not in the registry.
	ErrInvalidReference = errors.New("unknown patient")
)

// Patient is one row of the hospital registry. The ID is the identity:
// upserting an existing ID removes the old row and appends the new one.
type Patient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Sex           string `json:"sex"`
	Allergies     string `json:"allergies"`
	Comorbidities string `json:"comorbidities"`
}

// Note is one bedside note. Notes are append-only and always reference a
// registered patient.
type Note struct {
	PatientID string    `json:"patient_id"`
	Timestamp time.Time `json:"timestamp"`
	Author    string    `json:"author"`
	Text      string    `json:"note"`
}
