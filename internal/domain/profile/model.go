// Package profile implements the consumer hub: the per-session family
// roster and the sub-collections every profile owns (vitals log, health
// passport, medication list, record locker, wellness challenge).
package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/viatra/viatra/pkg/textlist"
)

var (
	// ErrValidation reports input outside the accepted ranges or enumerations.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidReference reports a profile name that is not in the roster.
	ErrInvalidReference = errors.New("unknown profile")
)

// Profile is one family member tracked in a session's health hub.
type Profile struct {
	Name   string  `json:"name"`
	DOB    *string `json:"dob,omitempty"`
	Gender *string `json:"gender,omitempty"`
}

// Roster is the session's profile collection plus its active-profile pointer.
type Roster struct {
	Active   string     `json:"active"`
	Profiles []*Profile `json:"profiles"`
}

// VitalsEntry is a single vitals reading. Entries are immutable once
// appended; the log supports no update or delete.
type VitalsEntry struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Systolic  int    `json:"systolic"`
	Diastolic int    `json:"diastolic"`
	HeartRate int    `json:"hr"`
	Glucose   int    `json:"glucose"`
}

// Passport is a profile's health passport. Updates replace the whole
// document, never merge into it.
type Passport struct {
	Immunizations []string `json:"immunizations"`
	Allergies     []string `json:"allergies"`
	Conditions    []string `json:"conditions"`
}

// PassportInput is the update-passport request document. Each field accepts
// either a JSON array of strings or a single comma-separated string; both
// forms are trimmed and stripped of empty fragments.
type PassportInput struct {
	Immunizations textlist.List `json:"immunizations"`
	Allergies     textlist.List `json:"allergies"`
	Conditions    textlist.List `json:"conditions"`
}

// PassportExport is the serializable passport export payload.
type PassportExport struct {
	Profile       string   `json:"profile"`
	Immunizations []string `json:"immunizations"`
	Allergies     []string `json:"allergies"`
	Conditions    []string `json:"conditions"`
}

// Record is one document reference in a profile's universal locker.
type Record struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Uploaded time.Time `json:"uploaded"`
}

// Challenge is a profile's wellness challenge state. A profile that never
// started one reports the zero document.
type Challenge struct {
	Name     *string    `json:"name"`
	Progress int        `json:"progress"`
	Started  *time.Time `json:"started"`
}

func emptyPassport() Passport {
	return Passport{
		Immunizations: []string{},
		Allergies:     []string{},
		Conditions:    []string{},
	}
}
