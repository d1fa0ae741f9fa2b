package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

const athleteColumns = `id, first_name, last_name, name_key, birth_date, birth_year,
	club, license, personal_bests, season_bests`

func scanAthlete(row pgx.Row) (model.Athlete, error) {
	var a model.Athlete
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.NameKey, &a.BirthDate, &a.BirthYear,
		&a.Club, &a.License, &a.PersonalBests, &a.SeasonBests)
	return a, err
}

func (s *Store) AthleteByID(ctx context.Context, id uuid.UUID) (model.Athlete, error) {
	a, err := scanAthlete(s.pool.QueryRow(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE id = $1`, id))
	return a, mapErr(err, fmt.Sprintf("athlete %s", id))
}

func (s *Store) AthleteByLicense(ctx context.Context, license string) (model.Athlete, error) {
	a, err := scanAthlete(s.pool.QueryRow(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE license = $1`, license))
	return a, mapErr(err, fmt.Sprintf("athlete with license %q", license))
}

func (s *Store) AthletesByNameKey(ctx context.Context, nameKey string) ([]model.Athlete, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+athleteColumns+` FROM athletes WHERE name_key = $1 ORDER BY id`, nameKey)
	return collect(rows, err, "athletes by name", scanAthlete)
}

func (s *Store) CreateAthlete(ctx context.Context, a model.Athlete) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO athletes (`+athleteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.FirstName, a.LastName, a.NameKey, a.BirthDate, a.BirthYear,
		a.Club, a.License, a.PersonalBests, a.SeasonBests)
	return mapErr(err, fmt.Sprintf("create athlete %s", a.ID))
}

func (s *Store) UpdateAthlete(ctx context.Context, a model.Athlete) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE athletes SET first_name = $2, last_name = $3, name_key = $4, birth_date = $5,
			birth_year = $6, club = $7, license = $8, personal_bests = $9, season_bests = $10
		WHERE id = $1`,
		a.ID, a.FirstName, a.LastName, a.NameKey, a.BirthDate, a.BirthYear,
		a.Club, a.License, a.PersonalBests, a.SeasonBests)
	return expectOne(tag, err, fmt.Sprintf("update athlete %s", a.ID))
}

// ----- registrations -----

const registrationColumns = `id, competition_id, event_id, athlete_id, bib,
	seed_kind, seed_value, created_at, updated_at`

func scanRegistration(row pgx.Row) (model.Registration, error) {
	var (
		r    model.Registration
		kind int16
	)
	err := row.Scan(&r.ID, &r.CompetitionID, &r.EventID, &r.AthleteID, &r.Bib,
		&kind, &r.SeedMark.Value, &r.CreatedAt, &r.UpdatedAt)
	r.SeedMark.Kind = mark.Kind(kind)
	return r, err
}

func (s *Store) Registration(ctx context.Context, athleteID, eventID uuid.UUID) (model.Registration, error) {
	r, err := scanRegistration(s.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE athlete_id = $1 AND event_id = $2`,
		athleteID, eventID))
	return r, mapErr(err, "registration")
}

func (s *Store) RegistrationByBib(ctx context.Context, eventID uuid.UUID, bib string) (model.Registration, error) {
	r, err := scanRegistration(s.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 AND bib = $2 LIMIT 1`,
		eventID, bib))
	return r, mapErr(err, fmt.Sprintf("registration with bib %q", bib))
}

func (s *Store) RegistrationsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = $1 ORDER BY created_at`, eventID)
	return collect(rows, err, "registrations by event", scanRegistration)
}

func (s *Store) CreateRegistration(ctx context.Context, r model.Registration) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.CompetitionID, r.EventID, r.AthleteID, r.Bib,
		int16(r.SeedMark.Kind), r.SeedMark.Value, r.CreatedAt, r.UpdatedAt)
	return mapErr(err, fmt.Sprintf("create registration for athlete %s", r.AthleteID))
}

func (s *Store) UpdateRegistration(ctx context.Context, r model.Registration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE registrations SET bib = $3, seed_kind = $4, seed_value = $5, updated_at = $6
		WHERE athlete_id = $1 AND event_id = $2`,
		r.AthleteID, r.EventID, r.Bib, int16(r.SeedMark.Kind), r.SeedMark.Value, r.UpdatedAt)
	return expectOne(tag, err, fmt.Sprintf("update registration %s", r.ID))
}
