package roster

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

var validShifts = map[string]bool{
	"Morning": true, "Evening": true, "Night": true,
}

type Service struct {
	roster RosterRepository
}

func NewService(roster RosterRepository) *Service {
	return &Service{roster: roster}
}

// Add appends a duty entry. The date defaults to today (UTC) when omitted;
// duplicates are allowed.
func (s *Service) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.Date == "" {
		e.Date = time.Now().UTC().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return Entry{}, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrValidation)
	}
	if !validShifts[e.Shift] {
		return Entry{}, fmt.Errorf("shift must be Morning, Evening or Night: %w", ErrValidation)
	}
	if err := s.roster.Add(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// List returns the roster. Unsorted, entries come back in insertion order.
// Sorted, they are ordered by date ascending and then by shift, shifts
// collating by their literal strings: Evening, Morning, Night.
func (s *Service) List(ctx context.Context, sorted bool) ([]Entry, error) {
	entries, err := s.roster.Entries(ctx)
	if err != nil {
		return nil, err
	}
	if sorted {
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Date != entries[j].Date {
				return entries[i].Date < entries[j].Date
			}
			return entries[i].Shift < entries[j].Shift
		})
	}
	return entries, nil
}
