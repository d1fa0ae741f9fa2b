package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/logging"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/schedule"
	"github.com/JonMunkholm/athletix/internal/store"
)

// scheduleVersionAttempts bounds retries when two generations race for the
// same version number.
const scheduleVersionAttempts = 3

// GenerateSchedule builds a new draft version of a competition's minute
// program from ordered track and field event lists.
func (s *Service) GenerateSchedule(ctx context.Context, req ScheduleRequest) (model.Schedule, error) {
	comp, err := s.store.Competition(ctx, req.CompetitionID)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("competition %s: %w", req.CompetitionID, err)
	}

	track, err := s.competitionEvents(ctx, comp.ID, req.TrackEventIDs)
	if err != nil {
		return model.Schedule{}, err
	}
	field, err := s.competitionEvents(ctx, comp.ID, req.FieldEventIDs)
	if err != nil {
		return model.Schedule{}, err
	}

	start, err := schedule.ParseStart(req.Date, req.Time, s.loc)
	if err != nil {
		return model.Schedule{}, err
	}

	genReq := schedule.Request{Start: start, Track: track, Field: field}
	if req.BreakMinutes != nil {
		brk := time.Duration(*req.BreakMinutes) * time.Minute
		genReq.Break = &brk
	}
	items, err := s.generator.Generate(genReq)
	if err != nil {
		return model.Schedule{}, err
	}

	for attempt := 1; ; attempt++ {
		version := 1
		latest, err := s.store.LatestSchedule(ctx, comp.ID)
		switch {
		case err == nil:
			version = latest.Version + 1
		case !errors.Is(err, store.ErrNotFound):
			return model.Schedule{}, fmt.Errorf("latest schedule: %w", err)
		}

		sc := model.Schedule{
			ID:            uuid.New(),
			CompetitionID: comp.ID,
			Name:          strings.TrimSpace(req.Name),
			Version:       version,
			State:         model.ScheduleDraft,
			CreatedAt:     s.now(),
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("%s v%d", comp.Name, version)
		}
		sc.Items = make([]model.ScheduleItem, len(items))
		for i, it := range items {
			it.ScheduleID = sc.ID
			sc.Items[i] = it
		}

		err = s.store.CreateSchedule(ctx, sc)
		if errors.Is(err, store.ErrConflict) && attempt < scheduleVersionAttempts {
			continue
		}
		if err != nil {
			return model.Schedule{}, fmt.Errorf("store schedule: %w", err)
		}

		logging.WithFields(ctx, "competition_id", comp.ID, "schedule_id", sc.ID).
			Info("schedule generated", "version", sc.Version, "items", len(sc.Items), "start", start)
		return sc, nil
	}
}

// competitionEvents loads events by id in the given order and checks that
// each belongs to the competition.
func (s *Service) competitionEvents(ctx context.Context, competitionID uuid.UUID, ids []uuid.UUID) ([]model.Event, error) {
	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		ev, err := s.store.Event(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", id, err)
		}
		if ev.CompetitionID != competitionID {
			return nil, fmt.Errorf("%w: %s", ErrForeignEvent, id)
		}
		out = append(out, ev)
	}
	return out, nil
}

// PublishSchedule moves a draft schedule to published.
func (s *Service) PublishSchedule(ctx context.Context, id uuid.UUID) (model.Schedule, error) {
	sc, err := s.store.Schedule(ctx, id)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("schedule %s: %w", id, err)
	}
	if err := sc.Publish(s.now()); err != nil {
		return model.Schedule{}, err
	}
	if err := s.store.UpdateSchedule(ctx, sc); err != nil {
		return model.Schedule{}, fmt.Errorf("store schedule: %w", err)
	}
	logging.FromContext(ctx).Info("schedule published", "schedule_id", sc.ID, "version", sc.Version)
	return sc, nil
}

// RecordActualStart stores when an event really started. Officials do this
// on published schedules too.
func (s *Service) RecordActualStart(ctx context.Context, scheduleID, itemID uuid.UUID, at time.Time) (model.Schedule, error) {
	sc, err := s.store.Schedule(ctx, scheduleID)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("schedule %s: %w", scheduleID, err)
	}

	found := false
	for i := range sc.Items {
		if sc.Items[i].ID == itemID {
			sc.Items[i].ActualStart = &at
			found = true
			break
		}
	}
	if !found {
		return model.Schedule{}, fmt.Errorf("schedule item %s: %w", itemID, store.ErrNotFound)
	}

	if err := s.store.UpdateSchedule(ctx, sc); err != nil {
		return model.Schedule{}, fmt.Errorf("store schedule: %w", err)
	}
	return sc, nil
}

// CreateRelayTeam stores an empty relay team for an event.
func (s *Service) CreateRelayTeam(ctx context.Context, eventID uuid.UUID, name string) (model.RelayTeam, error) {
	ev, err := s.store.Event(ctx, eventID)
	if err != nil {
		return model.RelayTeam{}, fmt.Errorf("event %s: %w", eventID, err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.RelayTeam{}, fmt.Errorf("%w: relay team name is required", ErrInvalidInput)
	}

	team := model.RelayTeam{
		ID:            uuid.New(),
		CompetitionID: ev.CompetitionID,
		EventID:       ev.ID,
		Name:          name,
	}
	if err := s.store.SaveRelayTeam(ctx, team); err != nil {
		return model.RelayTeam{}, fmt.Errorf("store relay team: %w", err)
	}
	return team, nil
}

// AssignRelayMember places an athlete on a relay position (1-6). A second
// non-reserve athlete on an occupied position is rejected.
func (s *Service) AssignRelayMember(ctx context.Context, teamID uuid.UUID, position int, athleteID uuid.UUID, reserve bool) (model.RelayTeam, error) {
	team, err := s.store.RelayTeam(ctx, teamID)
	if err != nil {
		return model.RelayTeam{}, fmt.Errorf("relay team %s: %w", teamID, err)
	}
	if _, err := s.store.AthleteByID(ctx, athleteID); err != nil {
		return model.RelayTeam{}, fmt.Errorf("athlete %s: %w", athleteID, err)
	}
	if err := team.Assign(position, athleteID, reserve); err != nil {
		return model.RelayTeam{}, err
	}
	if err := s.store.SaveRelayTeam(ctx, team); err != nil {
		return model.RelayTeam{}, fmt.Errorf("store relay team: %w", err)
	}
	return team, nil
}

// ReleaseRelayMember frees a runner position. Reserves listed for the
// position stay on the team; releasing a free position is a no-op.
func (s *Service) ReleaseRelayMember(ctx context.Context, teamID uuid.UUID, position int) (model.RelayTeam, error) {
	team, err := s.store.RelayTeam(ctx, teamID)
	if err != nil {
		return model.RelayTeam{}, fmt.Errorf("relay team %s: %w", teamID, err)
	}
	athleteID, held := team.Runner(position)
	if err := team.Release(position); err != nil {
		return model.RelayTeam{}, err
	}
	if !held {
		return team, nil
	}
	if err := s.store.SaveRelayTeam(ctx, team); err != nil {
		return model.RelayTeam{}, fmt.Errorf("store relay team: %w", err)
	}
	logging.FromContext(ctx).Info("relay runner released", "team_id", teamID, "position", position, "athlete_id", athleteID)
	return team, nil
}
