// Package store defines the record-store contracts used by the import,
// scheduling and result pipelines.
//
// Implementations live in subpackages: memory (tests, CLI dry runs) and
// postgres (pgx). Lookups return ErrNotFound when no record matches;
// creates return ErrConflict when a unique key is already taken.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Athletes stores standalone athlete records.
type Athletes interface {
	AthleteByID(ctx context.Context, id uuid.UUID) (model.Athlete, error)
	AthleteByLicense(ctx context.Context, license string) (model.Athlete, error)
	AthletesByNameKey(ctx context.Context, nameKey string) ([]model.Athlete, error)
	CreateAthlete(ctx context.Context, a model.Athlete) error
	UpdateAthlete(ctx context.Context, a model.Athlete) error
}

// Registrations stores athlete entries into events.
type Registrations interface {
	Registration(ctx context.Context, athleteID, eventID uuid.UUID) (model.Registration, error)
	RegistrationByBib(ctx context.Context, eventID uuid.UUID, bib string) (model.Registration, error)
	RegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error)
	CreateRegistration(ctx context.Context, r model.Registration) error
	UpdateRegistration(ctx context.Context, r model.Registration) error
}

// Competitions stores competitions and their events.
type Competitions interface {
	Competition(ctx context.Context, id uuid.UUID) (model.Competition, error)
	CreateCompetition(ctx context.Context, c model.Competition) error
	Event(ctx context.Context, id uuid.UUID) (model.Event, error)
	EventsByCompetition(ctx context.Context, competitionID uuid.UUID) ([]model.Event, error)
	CreateEvent(ctx context.Context, e model.Event) error
}

// Results stores classified results, one per ResultKey.
type Results interface {
	ResultByKey(ctx context.Context, key model.ResultKey) (model.Result, error)
	ResultsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]model.Result, error)
	ResultsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Result, error)
	// UpsertResult replaces any stored result with the same key.
	UpsertResult(ctx context.Context, r model.Result) error
}

// Schedules stores versioned schedules with their items.
type Schedules interface {
	Schedule(ctx context.Context, id uuid.UUID) (model.Schedule, error)
	LatestSchedule(ctx context.Context, competitionID uuid.UUID) (model.Schedule, error)
	CreateSchedule(ctx context.Context, s model.Schedule) error
	UpdateSchedule(ctx context.Context, s model.Schedule) error
}

// RelayTeams stores relay teams and their member slots.
type RelayTeams interface {
	RelayTeam(ctx context.Context, id uuid.UUID) (model.RelayTeam, error)
	RelayTeamByName(ctx context.Context, eventID uuid.UUID, name string) (model.RelayTeam, error)
	SaveRelayTeam(ctx context.Context, t model.RelayTeam) error
}

// Store is the full record store.
type Store interface {
	Athletes
	Registrations
	Competitions
	Results
	Schedules
	RelayTeams
	Close()
}
