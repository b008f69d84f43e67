// Package textlist normalizes comma-separated free-text lists.
//
// Several endpoints accept lists typed by hand ("penicillin, latex,") as
// well as proper JSON arrays. This package holds the single parsing rule
// both forms go through: split on commas, trim whitespace, drop empties.
package textlist

import (
	"encoding/json"
	"strings"
)

// Split parses a comma-separated string into a normalized list. Items are
// trimmed of surrounding whitespace and empty items are dropped, so
// " aspirin ,  , ibuprofen" yields ["aspirin", "ibuprofen"].
func Split(s string) []string {
	return Normalize(strings.Split(s, ","))
}

// Normalize trims every item and drops the empty ones. The result is never
// nil so callers can marshal it as [] rather than null.
func Normalize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// List is a []string that unmarshals from either a JSON array of strings or
// a single comma-separated JSON string. Both forms go through the same
// trim/drop-empty normalization.
type List []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Split(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = Normalize(items)
	return nil
}

// Strings returns the list as a plain []string, never nil.
func (l List) Strings() []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}
