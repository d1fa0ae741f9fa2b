package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

func (s *Store) Competition(ctx context.Context, id uuid.UUID) (model.Competition, error) {
	var c model.Competition
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, start_date, end_date, public, status
		FROM competitions WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.Public, &c.Status)
	return c, mapErr(err, fmt.Sprintf("competition %s", id))
}

func (s *Store) CreateCompetition(ctx context.Context, c model.Competition) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO competitions (id, name, start_date, end_date, public, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.StartDate, c.EndDate, c.Public, string(c.Status))
	return mapErr(err, fmt.Sprintf("create competition %s", c.ID))
}

const eventColumns = `id, competition_id, discipline, kind, mark_kind, round, series, finalists, wind_measured`

func scanEvent(row pgx.Row) (model.Event, error) {
	var (
		e    model.Event
		kind int16
	)
	err := row.Scan(&e.ID, &e.CompetitionID, &e.Discipline, &e.Kind, &kind, &e.Round,
		&e.Series, &e.Finalists, &e.WindMeasured)
	e.MarkKind = mark.Kind(kind)
	return e, err
}

func (s *Store) Event(ctx context.Context, id uuid.UUID) (model.Event, error) {
	e, err := scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	return e, mapErr(err, fmt.Sprintf("event %s", id))
}

// EventsByCompetition returns events in creation order.
func (s *Store) EventsByCompetition(ctx context.Context, competitionID uuid.UUID) ([]model.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE competition_id = $1 ORDER BY created_at, id`, competitionID)
	return collect(rows, err, "events by competition", scanEvent)
}

func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CompetitionID, e.Discipline, string(e.Kind), int16(e.MarkKind), string(e.Round),
		e.Series, e.Finalists, e.WindMeasured)
	return mapErr(err, fmt.Sprintf("create event %s", e.ID))
}
