// Package pilot implements the landing-page lead capture: the pilot request
// log and the downloadable product pitch document.
package pilot

import (
	"errors"
	"time"
)

// ErrValidation reports a use case outside the accepted enumeration.
var ErrValidation = errors.New("invalid input")

// Use cases offered on the pilot request form.
const (
	UseCaseConsumer    = "Consumer pilot"
	UseCaseHospital    = "Hospital pilot"
	UseCaseIntegration = "Integration partner"
	UseCaseResearch    = "Research collaboration"
)

// Request is one pilot lead. The log is append-only.
type Request struct {
	Org     string    `json:"org"`
	Email   string    `json:"email"`
	UseCase string    `json:"use_case"`
	Notes   string    `json:"notes"`
	Created time.Time `json:"created"`
}
