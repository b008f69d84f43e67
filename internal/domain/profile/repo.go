package profile

import (
	"context"
)

// ProfileRepository is the per-session store behind the consumer hub: the
// profile roster, the active-profile pointer, and the sub-collections each
// profile owns. Profiles and their sub-collections are created together and
// never diverge; methods taking a profile name resolve an empty name to the
// active profile.
type ProfileRepository interface {
	AddProfile(ctx context.Context, p *Profile) error
	Profiles(ctx context.Context) ([]*Profile, error)
	Active(ctx context.Context) (string, error)
	SetActive(ctx context.Context, name string) error
	// ResolveProfile maps an empty name to the active profile and verifies
	// the profile exists, returning its canonical name.
	ResolveProfile(ctx context.Context, name string) (string, error)

	// Vitals log
	AppendVitals(ctx context.Context, profile string, e VitalsEntry) ([]VitalsEntry, error)
	Vitals(ctx context.Context, profile string) ([]VitalsEntry, error)

	// Health passport
	Passport(ctx context.Context, profile string) (Passport, error)
	SetPassport(ctx context.Context, profile string, p Passport) (Passport, error)

	// Medication list
	Medications(ctx context.Context, profile string) ([]string, error)
	SetMedications(ctx context.Context, profile string, meds []string) ([]string, error)

	// Record locker
	AddRecord(ctx context.Context, profile string, r *Record) error
	Records(ctx context.Context, profile string) ([]*Record, error)

	// Wellness challenge
	Challenge(ctx context.Context, profile string) (Challenge, error)
	StartChallenge(ctx context.Context, profile string, name string) (Challenge, error)
	AdvanceChallenge(ctx context.Context, profile string, delta int) (Challenge, error)
}
