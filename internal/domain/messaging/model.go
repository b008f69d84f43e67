// Package messaging implements the care-team chat log and the consumer
// micro-consult request queue.
package messaging

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrValidation reports a request missing its required fields.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidReference reports a consult request naming an unknown profile.
	ErrInvalidReference = errors.New("unknown reference")
)

// Message is one chat log entry. The log is append-only.
type Message struct {
	When time.Time `json:"when"`
	Who  string    `json:"who"`
	Msg  string    `json:"msg"`
}

// ConsultRequest is one queued tele-consult request.
type ConsultRequest struct {
	ID      uuid.UUID `json:"id"`
	Profile string    `json:"profile"`
	Topic   string    `json:"topic"`
	Notes   string    `json:"notes"`
	Created time.Time `json:"created"`
}
