// Package roster implements the on-call duty roster of the hospital hub.
package roster

import "errors"

// ErrValidation reports a shift outside the accepted enumeration or a
// malformed date.
var ErrValidation = errors.New("invalid input")

// Entry is one duty-roster row. The log is append-only and duplicates are
// permitted.
type Entry struct {
	Date   string `json:"date"`
	Shift  string `json:"shift"`
	Doctor string `json:"doctor"`
}
