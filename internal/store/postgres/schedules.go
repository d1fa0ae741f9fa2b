package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/athletix/internal/model"
)

const scheduleColumns = `id, competition_id, name, version, state, created_at, published_at`

const itemColumns = `id, schedule_id, event_id, item_order, timeline, start_time, actual_start,
	duration_seconds, round, series, finalists, notes`

func scanSchedule(row pgx.Row) (model.Schedule, error) {
	var sc model.Schedule
	err := row.Scan(&sc.ID, &sc.CompetitionID, &sc.Name, &sc.Version, &sc.State, &sc.CreatedAt, &sc.PublishedAt)
	return sc, err
}

func scanItem(row pgx.Row) (model.ScheduleItem, error) {
	var (
		it      model.ScheduleItem
		seconds int
	)
	err := row.Scan(&it.ID, &it.ScheduleID, &it.EventID, &it.Order, &it.Timeline, &it.StartTime,
		&it.ActualStart, &seconds, &it.Round, &it.Series, &it.Finalists, &it.Notes)
	it.Duration = time.Duration(seconds) * time.Second
	return it, err
}

func loadItems(ctx context.Context, db DBTX, sc *model.Schedule) error {
	rows, err := db.Query(ctx, `
		SELECT `+itemColumns+` FROM schedule_items
		WHERE schedule_id = $1 ORDER BY timeline DESC, item_order`, sc.ID)
	items, err := collect(rows, err, fmt.Sprintf("items of schedule %s", sc.ID), scanItem)
	if err != nil {
		return err
	}
	sc.Items = items
	return nil
}

func (s *Store) Schedule(ctx context.Context, id uuid.UUID) (model.Schedule, error) {
	sc, err := scanSchedule(s.pool.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id))
	if err != nil {
		return model.Schedule{}, mapErr(err, fmt.Sprintf("schedule %s", id))
	}
	if err := loadItems(ctx, s.pool, &sc); err != nil {
		return model.Schedule{}, err
	}
	return sc, nil
}

func (s *Store) LatestSchedule(ctx context.Context, competitionID uuid.UUID) (model.Schedule, error) {
	sc, err := scanSchedule(s.pool.QueryRow(ctx, `
		SELECT `+scheduleColumns+` FROM schedules
		WHERE competition_id = $1 ORDER BY version DESC LIMIT 1`, competitionID))
	if err != nil {
		return model.Schedule{}, mapErr(err, fmt.Sprintf("schedule for competition %s", competitionID))
	}
	if err := loadItems(ctx, s.pool, &sc); err != nil {
		return model.Schedule{}, err
	}
	return sc, nil
}

// CreateSchedule stores the schedule and its items in one transaction. A
// taken (competition, version) pair is reported as store.ErrConflict.
func (s *Store) CreateSchedule(ctx context.Context, sc model.Schedule) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO schedules (`+scheduleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sc.ID, sc.CompetitionID, sc.Name, sc.Version, string(sc.State), sc.CreatedAt, sc.PublishedAt)
		if err != nil {
			return mapErr(err, fmt.Sprintf("schedule version %d", sc.Version))
		}
		return insertItems(ctx, tx, sc.Items)
	})
}

// UpdateSchedule rewrites the schedule header and replaces its items.
func (s *Store) UpdateSchedule(ctx context.Context, sc model.Schedule) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE schedules SET name = $2, state = $3, published_at = $4 WHERE id = $1`,
			sc.ID, sc.Name, string(sc.State), sc.PublishedAt)
		if err := expectOne(tag, err, fmt.Sprintf("schedule %s", sc.ID)); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schedule_items WHERE schedule_id = $1`, sc.ID); err != nil {
			return mapErr(err, "clear schedule items")
		}
		return insertItems(ctx, tx, sc.Items)
	})
}

func insertItems(ctx context.Context, tx pgx.Tx, items []model.ScheduleItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO schedule_items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			it.ID, it.ScheduleID, it.EventID, it.Order, string(it.Timeline), it.StartTime, it.ActualStart,
			int(it.Duration/time.Second), string(it.Round), it.Series, it.Finalists, it.Notes)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return mapErr(err, "insert schedule items")
	}
	return nil
}

// ----- relay teams -----

func (s *Store) loadTeam(ctx context.Context, query string, args ...any) (model.RelayTeam, error) {
	var t model.RelayTeam
	err := s.pool.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CompetitionID, &t.EventID, &t.Name)
	if err != nil {
		return model.RelayTeam{}, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT athlete_id, position, reserve FROM relay_team_members
		WHERE team_id = $1 ORDER BY reserve, position`, t.ID)
	members, err := collect(rows, err, "relay team members", func(r pgx.Row) (model.RelayTeamMember, error) {
		var m model.RelayTeamMember
		err := r.Scan(&m.AthleteID, &m.Position, &m.Reserve)
		return m, err
	})
	if err != nil {
		return model.RelayTeam{}, err
	}
	if err := t.SetMembers(members); err != nil {
		return model.RelayTeam{}, fmt.Errorf("relay team %s: %w", t.ID, err)
	}
	return t, nil
}

func (s *Store) RelayTeam(ctx context.Context, id uuid.UUID) (model.RelayTeam, error) {
	t, err := s.loadTeam(ctx, `SELECT id, competition_id, event_id, name FROM relay_teams WHERE id = $1`, id)
	return t, mapErr(err, fmt.Sprintf("relay team %s", id))
}

func (s *Store) RelayTeamByName(ctx context.Context, eventID uuid.UUID, name string) (model.RelayTeam, error) {
	t, err := s.loadTeam(ctx, `
		SELECT id, competition_id, event_id, name FROM relay_teams
		WHERE event_id = $1 AND name = $2`, eventID, name)
	return t, mapErr(err, fmt.Sprintf("relay team %q", name))
}

// SaveRelayTeam upserts the team and replaces its member list.
func (s *Store) SaveRelayTeam(ctx context.Context, t model.RelayTeam) error {
	members := t.Members()
	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO relay_teams (id, competition_id, event_id, name)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			t.ID, t.CompetitionID, t.EventID, t.Name)
		if err != nil {
			return mapErr(err, fmt.Sprintf("relay team %q", t.Name))
		}
		if _, err := tx.Exec(ctx, `DELETE FROM relay_team_members WHERE team_id = $1`, t.ID); err != nil {
			return mapErr(err, "clear relay team members")
		}
		for _, m := range members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO relay_team_members (team_id, athlete_id, position, reserve)
				VALUES ($1, $2, $3, $4)`, t.ID, m.AthleteID, m.Position, m.Reserve); err != nil {
				return mapErr(err, fmt.Sprintf("relay member %s", m.AthleteID))
			}
		}
		return nil
	})
}
