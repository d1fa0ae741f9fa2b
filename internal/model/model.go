// Package model defines the competition domain records shared by the import,
// scheduling and result pipelines.
//
// Optional scalar fields use pgtype values (Valid=false means absent) so the
// same structs travel unchanged between parsing, reconciliation and storage.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/athletix/internal/mark"
)

// CompetitionStatus is the lifecycle state of a competition.
type CompetitionStatus string

const (
	StatusDraft      CompetitionStatus = "draft"
	StatusOpen       CompetitionStatus = "open"
	StatusInProgress CompetitionStatus = "in_progress"
	StatusCompleted  CompetitionStatus = "completed"
)

// Competition owns events, registrations and schedules.
type Competition struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	StartDate time.Time         `json:"startDate"`
	EndDate   time.Time         `json:"endDate"`
	Public    bool              `json:"public"`
	Status    CompetitionStatus `json:"status"`
}

// DisciplineKind separates events run on the track from field events.
type DisciplineKind string

const (
	Track DisciplineKind = "track"
	Field DisciplineKind = "field"
)

// Event is one round of one discipline within a competition.
type Event struct {
	ID            uuid.UUID      `json:"id"`
	CompetitionID uuid.UUID      `json:"competitionId"`
	Discipline    string         `json:"discipline"`
	Kind          DisciplineKind `json:"kind"`
	MarkKind      mark.Kind      `json:"markKind"`
	Round         Round          `json:"round"`
	Series        int            `json:"series,omitempty"`
	Finalists     int            `json:"finalists,omitempty"`
	WindMeasured  bool           `json:"windMeasured,omitempty"`
}

// SeasonMark is a season best together with the season it was set in.
type SeasonMark struct {
	Mark   mark.Mark `json:"mark"`
	Season int       `json:"season"`
}

// Athlete is a standalone entity referenced by registrations and results.
// License, when present, is unique across athletes.
type Athlete struct {
	ID            uuid.UUID             `json:"id"`
	FirstName     string                `json:"firstName"`
	LastName      string                `json:"lastName"`
	NameKey       string                `json:"-"`
	BirthDate     pgtype.Date           `json:"birthDate"`
	BirthYear     int                   `json:"birthYear,omitempty"`
	Club          pgtype.Text           `json:"club"`
	License       pgtype.Text           `json:"license"`
	PersonalBests map[string]mark.Mark  `json:"personalBests,omitempty"`
	SeasonBests   map[string]SeasonMark `json:"seasonBests,omitempty"`
}

// FullName returns "First Last".
func (a Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// YearOfBirth returns the birth year from the full date when known,
// otherwise the stored year (0 when unknown).
func (a Athlete) YearOfBirth() int {
	if a.BirthDate.Valid {
		return a.BirthDate.Time.Year()
	}
	return a.BirthYear
}

// Registration links an athlete to an event. Unique per (athlete, event).
type Registration struct {
	ID            uuid.UUID   `json:"id"`
	CompetitionID uuid.UUID   `json:"competitionId"`
	EventID       uuid.UUID   `json:"eventId"`
	AthleteID     uuid.UUID   `json:"athleteId"`
	Bib           pgtype.Text `json:"bib"`
	SeedMark      mark.Mark   `json:"seedMark"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// ErrInvalidTransition is returned when a state change is not allowed.
var ErrInvalidTransition = errors.New("invalid state transition")

// ParseDisciplineKind accepts "track" or "field" in any case.
func ParseDisciplineKind(s string) (DisciplineKind, error) {
	switch DisciplineKind(strings.ToLower(strings.TrimSpace(s))) {
	case Track:
		return Track, nil
	case Field:
		return Field, nil
	default:
		return "", fmt.Errorf("unknown discipline kind %q", s)
	}
}
