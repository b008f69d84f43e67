package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viatra/viatra/pkg/textlist"
)

// DefaultVitalsTail is the slice of the vitals log shown when the caller
// does not say how much history it wants.
const DefaultVitalsTail = 6

// Accepted vitals ranges, inclusive.
const (
	minSystolic, maxSystolic   = 80, 220
	minDiastolic, maxDiastolic = 40, 130
	minHeartRate, maxHeartRate = 40, 200
	minGlucose, maxGlucose     = 60, 400
)

// Form prefills applied when a reading omits a measurement.
const (
	defaultSystolic  = 120
	defaultDiastolic = 80
	defaultHeartRate = 72
	defaultGlucose   = 95
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Service struct {
	profiles ProfileRepository
}

func NewService(profiles ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// -- Roster --

// AddProfile registers a family member and returns the resulting roster.
// An empty or duplicate name changes nothing and is not an error.
func (s *Service) AddProfile(ctx context.Context, p *Profile) (*Roster, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name != "" {
		if err := s.profiles.AddProfile(ctx, p); err != nil {
			return nil, err
		}
	}
	return s.Roster(ctx)
}

func (s *Service) Roster(ctx context.Context) (*Roster, error) {
	active, err := s.profiles.Active(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.profiles.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	return &Roster{Active: active, Profiles: profiles}, nil
}

func (s *Service) SelectActive(ctx context.Context, name string) (*Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if err := s.profiles.SetActive(ctx, name); err != nil {
		return nil, err
	}
	return s.Roster(ctx)
}

// -- Vitals log --

// AppendVitals validates a reading and appends it, returning the updated
// ordered sequence. Omitted measurements take the form prefills; an omitted
// date or time takes the current UTC clock.
func (s *Service) AppendVitals(ctx context.Context, profile string, e VitalsEntry) ([]VitalsEntry, error) {
	applyVitalsDefaults(&e)
	if err := validateVitals(e); err != nil {
		return nil, err
	}
	return s.profiles.AppendVitals(ctx, profile, e)
}

// Vitals returns the last min(last, len) entries in insertion order.
func (s *Service) Vitals(ctx context.Context, profile string, last int) ([]VitalsEntry, error) {
	if last <= 0 {
		return nil, fmt.Errorf("last must be positive: %w", ErrValidation)
	}
	entries, err := s.profiles.Vitals(ctx, profile)
	if err != nil {
		return nil, err
	}
	if last < len(entries) {
		entries = entries[len(entries)-last:]
	}
	return entries, nil
}

func applyVitalsDefaults(e *VitalsEntry) {
	now := time.Now().UTC()
	if e.Date == "" {
		e.Date = now.Format(dateLayout)
	}
	if e.Time == "" {
		e.Time = now.Format(timeLayout)
	}
	if e.Systolic == 0 {
		e.Systolic = defaultSystolic
	}
	if e.Diastolic == 0 {
		e.Diastolic = defaultDiastolic
	}
	if e.HeartRate == 0 {
		e.HeartRate = defaultHeartRate
	}
	if e.Glucose == 0 {
		e.Glucose = defaultGlucose
	}
}

func validateVitals(e VitalsEntry) error {
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", ErrValidation)
	}
	if !validClock(e.Time) {
		return fmt.Errorf("time must be HH:MM: %w", ErrValidation)
	}
	if err := checkRange("systolic", e.Systolic, minSystolic, maxSystolic); err != nil {
		return err
	}
	if err := checkRange("diastolic", e.Diastolic, minDiastolic, maxDiastolic); err != nil {
		return err
	}
	if err := checkRange("hr", e.HeartRate, minHeartRate, maxHeartRate); err != nil {
		return err
	}
	return checkRange("glucose", e.Glucose, minGlucose, maxGlucose)
}

func validClock(s string) bool {
	for _, layout := range []string{timeLayout, "15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s %d outside %d-%d: %w", field, v, lo, hi, ErrValidation)
	}
	return nil
}

// -- Health passport --

// UpdatePassport replaces the whole passport document with the normalized
// input lists and returns the new document.
func (s *Service) UpdatePassport(ctx context.Context, profile string, in PassportInput) (Passport, error) {
	p := Passport{
		Immunizations: textlist.Normalize(in.Immunizations),
		Allergies:     textlist.Normalize(in.Allergies),
		Conditions:    textlist.Normalize(in.Conditions),
	}
	return s.profiles.SetPassport(ctx, profile, p)
}

func (s *Service) Passport(ctx context.Context, profile string) (Passport, error) {
	return s.profiles.Passport(ctx, profile)
}

// ExportPassport builds the share document for a profile. It reads state
// without changing it.
func (s *Service) ExportPassport(ctx context.Context, profile string) (*PassportExport, error) {
	name, err := s.profiles.ResolveProfile(ctx, profile)
	if err != nil {
		return nil, err
	}
	p, err := s.profiles.Passport(ctx, name)
	if err != nil {
		return nil, err
	}
	return &PassportExport{
		Profile:       name,
		Immunizations: p.Immunizations,
		Allergies:     p.Allergies,
		Conditions:    p.Conditions,
	}, nil
}

// -- Medication list --

// SaveMedications replaces the whole medication list and returns it.
func (s *Service) SaveMedications(ctx context.Context, profile string, meds textlist.List) ([]string, error) {
	return s.profiles.SetMedications(ctx, profile, textlist.Normalize(meds))
}

func (s *Service) Medications(ctx context.Context, profile string) ([]string, error) {
	return s.profiles.Medications(ctx, profile)
}

// -- Record locker --

func (s *Service) AddRecord(ctx context.Context, profile, name string) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("record name is required: %w", ErrValidation)
	}
	rec := &Record{Name: name}
	if err := s.profiles.AddRecord(ctx, profile, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Records(ctx context.Context, profile string) ([]*Record, error) {
	return s.profiles.Records(ctx, profile)
}

// -- Wellness challenge --

func (s *Service) Challenge(ctx context.Context, profile string) (Challenge, error) {
	return s.profiles.Challenge(ctx, profile)
}

// StartChallenge begins a fresh challenge: progress resets to zero and the
// start time is stamped, replacing any previous challenge.
func (s *Service) StartChallenge(ctx context.Context, profile, name string) (Challenge, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Challenge{}, fmt.Errorf("challenge name is required: %w", ErrValidation)
	}
	return s.profiles.StartChallenge(ctx, profile, name)
}

// AdvanceChallenge shifts progress by delta, clamped into 0-100.
func (s *Service) AdvanceChallenge(ctx context.Context, profile string, delta int) (Challenge, error) {
	return s.profiles.AdvanceChallenge(ctx, profile, delta)
}
