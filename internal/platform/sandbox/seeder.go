// Package sandbox populates a session with reproducible synthetic demo data.
// The seeder drives the regular domain services rather than writing to the
// stores directly, so seeded data obeys the same validation as user input.
package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viatra/viatra/internal/domain/messaging"
	"github.com/viatra/viatra/internal/domain/profile"
	"github.com/viatra/viatra/internal/domain/registry"
	"github.com/viatra/viatra/internal/domain/roster"
	"github.com/viatra/viatra/pkg/textlist"
)

// SeedConfig controls the volume of generated demo data.
type SeedConfig struct {
	ProfileCount     int   `json:"profileCount"`
	VitalsPerProfile int   `json:"vitalsPerProfile"`
	PatientCount     int   `json:"patientCount"`
	NotesPerPatient  int   `json:"notesPerPatient"`
	RosterDays       int   `json:"rosterDays"`
	ChatMessages     int   `json:"chatMessages"`
	Seed             int64 `json:"seed"`
}

// DefaultSeedConfig returns the volumes used by the hosted demo.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		ProfileCount:     3,
		VitalsPerProfile: 6,
		PatientCount:     8,
		NotesPerPatient:  1,
		RosterDays:       7,
		ChatMessages:     5,
	}
}

// SeedResult summarizes what one seed run created.
type SeedResult struct {
	Profiles      int           `json:"profiles"`
	VitalsEntries int           `json:"vitalsEntries"`
	Patients      int           `json:"patients"`
	Notes         int           `json:"notes"`
	RosterEntries int           `json:"rosterEntries"`
	ChatMessages  int           `json:"chatMessages"`
	Duration      time.Duration `json:"duration"`
}

var (
	profileNames = []string{
		"Sam", "Asha", "Grandpa", "Maya", "Leo", "Nana", "Ravi", "Ida",
	}
	patientNames = []string{
		"Jane Okafor", "Omar Haddad", "Mei Lin", "Piotr Nowak", "Lucia Marino",
		"Amara Diallo", "Tomás Silva", "Hana Suzuki", "Noor Rahman", "Elena Petrova",
	}
	doctorNames = []string{
		"Dr. Osei", "Dr. Lindqvist", "Dr. Varga", "Dr. Mbeki", "Dr. Tanaka",
	}
	sexes = []string{"M", "F", "Other"}

	allergyPool = []string{
		"penicillin", "latex", "peanuts", "aspirin", "shellfish", "none",
	}
	comorbidityPool = []string{
		"asthma", "hypertension", "type 2 diabetes", "none", "migraine",
	}
	immunizationPool = []string{
		"MMR", "Tetanus", "Hepatitis B", "Influenza", "COVID-19",
	}
	conditionPool = []string{
		"seasonal rhinitis", "mild asthma", "hypothyroidism", "GERD",
	}
	medicationPool = []string{
		"metformin", "lisinopril", "levothyroxine", "albuterol", "omeprazole",
	}
	notePool = []string{
		"Vitals stable overnight.", "Tolerating oral intake.",
		"Family updated at bedside.", "Pain controlled, ambulating.",
	}
	chatPool = []string{
		"Handover done for ward B.", "Bed 4 labs are back.",
		"Rounds moved to 09:30.", "Pharmacy confirmed the substitution.",
		"Discharge summary ready for review.",
	}
	shifts = []string{"Morning", "Evening", "Night"}
)

// Seeder generates demo data through the domain services.
type Seeder struct {
	profiles  *profile.Service
	patients  *registry.Service
	duty      *roster.Service
	messaging *messaging.Service
}

func NewSeeder(profiles *profile.Service, patients *registry.Service, duty *roster.Service, msg *messaging.Service) *Seeder {
	return &Seeder{profiles: profiles, patients: patients, duty: duty, messaging: msg}
}

// Seed populates the session carried by ctx. The same seed value always
// produces the same data.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	start := time.Now()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	result := &SeedResult{}

	for i := 0; i < cfg.ProfileCount && i < len(profileNames); i++ {
		name := profileNames[i]
		if _, err := s.profiles.AddProfile(ctx, &profile.Profile{Name: name}); err != nil {
			return nil, fmt.Errorf("seed profile %s: %w", name, err)
		}
		result.Profiles++

		for j := 0; j < cfg.VitalsPerProfile; j++ {
			day := time.Now().UTC().AddDate(0, 0, j-cfg.VitalsPerProfile+1)
			entry := profile.VitalsEntry{
				Date:      day.Format("2006-01-02"),
				Time:      fmt.Sprintf("%02d:%02d", 7+rng.Intn(12), rng.Intn(60)),
				Systolic:  100 + rng.Intn(40),
				Diastolic: 65 + rng.Intn(25),
				HeartRate: 58 + rng.Intn(40),
				Glucose:   75 + rng.Intn(60),
			}
			if _, err := s.profiles.AppendVitals(ctx, name, entry); err != nil {
				return nil, fmt.Errorf("seed vitals for %s: %w", name, err)
			}
			result.VitalsEntries++
		}

		passport := profile.PassportInput{
			Immunizations: pickSome(rng, immunizationPool, 2),
			Allergies:     pickSome(rng, allergyPool, 1),
			Conditions:    pickSome(rng, conditionPool, 1),
		}
		if _, err := s.profiles.UpdatePassport(ctx, name, passport); err != nil {
			return nil, fmt.Errorf("seed passport for %s: %w", name, err)
		}
		if _, err := s.profiles.SaveMedications(ctx, name, pickSome(rng, medicationPool, 2)); err != nil {
			return nil, fmt.Errorf("seed medications for %s: %w", name, err)
		}
	}

	for i := 0; i < cfg.PatientCount && i < len(patientNames); i++ {
		p := &registry.Patient{
			ID:            fmt.Sprintf("P%03d", i+1),
			Name:          patientNames[i],
			Age:           18 + rng.Intn(80),
			Sex:           sexes[rng.Intn(len(sexes))],
			Allergies:     allergyPool[rng.Intn(len(allergyPool))],
			Comorbidities: comorbidityPool[rng.Intn(len(comorbidityPool))],
		}
		if _, err := s.patients.UpsertPatient(ctx, p); err != nil {
			return nil, fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
		result.Patients++

		for j := 0; j < cfg.NotesPerPatient; j++ {
			note := notePool[rng.Intn(len(notePool))]
			if _, err := s.patients.AddNote(ctx, p.ID, doctorNames[rng.Intn(len(doctorNames))], note); err != nil {
				return nil, fmt.Errorf("seed note for %s: %w", p.ID, err)
			}
			result.Notes++
		}
	}

	for i := 0; i < cfg.RosterDays; i++ {
		day := time.Now().UTC().AddDate(0, 0, i)
		entry := roster.Entry{
			Date:   day.Format("2006-01-02"),
			Shift:  shifts[rng.Intn(len(shifts))],
			Doctor: doctorNames[rng.Intn(len(doctorNames))],
		}
		if _, err := s.duty.Add(ctx, entry); err != nil {
			return nil, fmt.Errorf("seed roster day %d: %w", i, err)
		}
		result.RosterEntries++
	}

	for i := 0; i < cfg.ChatMessages; i++ {
		author := doctorNames[rng.Intn(len(doctorNames))]
		if _, err := s.messaging.AppendMessage(ctx, author, chatPool[i%len(chatPool)]); err != nil {
			return nil, fmt.Errorf("seed chat message %d: %w", i, err)
		}
		result.ChatMessages++
	}

	result.Duration = time.Since(start)
	return result, nil
}

// pickSome draws n distinct items from the pool.
func pickSome(rng *rand.Rand, pool []string, n int) textlist.List {
	if n >= len(pool) {
		n = len(pool)
	}
	picked := make(textlist.List, 0, n)
	taken := make(map[int]bool, n)
	for len(picked) < n {
		i := rng.Intn(len(pool))
		if taken[i] {
			continue
		}
		taken[i] = true
		picked = append(picked, pool[i])
	}
	return picked
}

// SeedHandler exposes seeding over HTTP. The target session is the one the
// request resolves to, so each caller seeds only its own workspace.
type SeedHandler struct {
	seeder *Seeder
}

func NewSeedHandler(seeder *Seeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

func (h *SeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/seed", h.handleSeed)
}

func (h *SeedHandler) handleSeed(c echo.Context) error {
	cfg := DefaultSeedConfig()
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.seeder.Seed(c.Request().Context(), cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
