package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

const resultColumns = `id, athlete_id, team_id, event_id, registration_id, raw, mark_kind, mark_value,
	position, points, wind, reaction_time, splits, result_date,
	is_valid, is_dnf, is_dns, is_dq, is_personal_best, is_season_best,
	is_national_record, is_world_record, is_wind_assisted`

func scanResult(row pgx.Row) (model.Result, error) {
	var (
		r    model.Result
		kind int16
	)
	err := row.Scan(&r.ID, &r.AthleteID, &r.TeamID, &r.EventID, &r.RegistrationID, &r.Raw,
		&kind, &r.Mark.Value, &r.Position, &r.Points, &r.Wind, &r.ReactionTime, &r.Splits, &r.Date,
		&r.IsValid, &r.IsDNF, &r.IsDNS, &r.IsDQ, &r.IsPersonalBest, &r.IsSeasonBest,
		&r.IsNationalRecord, &r.IsWorldRecord, &r.IsWindAssisted)
	r.Mark.Kind = mark.Kind(kind)
	return r, err
}

func (s *Store) ResultByKey(ctx context.Context, key model.ResultKey) (model.Result, error) {
	r, err := scanResult(s.pool.QueryRow(ctx, `
		SELECT `+resultColumns+` FROM results
		WHERE athlete_id = $1 AND team_id = $2 AND event_id = $3 AND registration_id = $4`,
		key.AthleteID, key.TeamID, key.EventID, key.RegistrationID))
	return r, mapErr(err, "result")
}

func (s *Store) ResultsByAthlete(ctx context.Context, athleteID uuid.UUID) ([]model.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results WHERE athlete_id = $1 ORDER BY result_date, id`, athleteID)
	return collect(rows, err, fmt.Sprintf("results of athlete %s", athleteID), scanResult)
}

func (s *Store) ResultsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results WHERE event_id = $1 ORDER BY id`, eventID)
	return collect(rows, err, fmt.Sprintf("results of event %s", eventID), scanResult)
}

// UpsertResult replaces any stored result with the same key. The stored id
// is kept when the key already exists.
func (s *Store) UpsertResult(ctx context.Context, r model.Result) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO results (`+resultColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)
		ON CONFLICT (athlete_id, team_id, event_id, registration_id) DO UPDATE SET
			raw = EXCLUDED.raw,
			mark_kind = EXCLUDED.mark_kind,
			mark_value = EXCLUDED.mark_value,
			position = EXCLUDED.position,
			points = EXCLUDED.points,
			wind = EXCLUDED.wind,
			reaction_time = EXCLUDED.reaction_time,
			splits = EXCLUDED.splits,
			result_date = EXCLUDED.result_date,
			is_valid = EXCLUDED.is_valid,
			is_dnf = EXCLUDED.is_dnf,
			is_dns = EXCLUDED.is_dns,
			is_dq = EXCLUDED.is_dq,
			is_personal_best = EXCLUDED.is_personal_best,
			is_season_best = EXCLUDED.is_season_best,
			is_national_record = EXCLUDED.is_national_record,
			is_world_record = EXCLUDED.is_world_record,
			is_wind_assisted = EXCLUDED.is_wind_assisted`,
		r.ID, r.AthleteID, r.TeamID, r.EventID, r.RegistrationID, r.Raw,
		int16(r.Mark.Kind), r.Mark.Value, r.Position, r.Points, r.Wind, r.ReactionTime, r.Splits, r.Date,
		r.IsValid, r.IsDNF, r.IsDNS, r.IsDQ, r.IsPersonalBest, r.IsSeasonBest,
		r.IsNationalRecord, r.IsWorldRecord, r.IsWindAssisted)
	return mapErr(err, fmt.Sprintf("upsert result %s", r.ID))
}
