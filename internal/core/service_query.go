package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
)

// Competition returns one competition.
func (s *Service) Competition(ctx context.Context, id uuid.UUID) (model.Competition, error) {
	c, err := s.store.Competition(ctx, id)
	if err != nil {
		return model.Competition{}, fmt.Errorf("competition %s: %w", id, err)
	}
	return c, nil
}

// Events lists a competition's events in creation order.
func (s *Service) Events(ctx context.Context, competitionID uuid.UUID) ([]model.Event, error) {
	if _, err := s.store.Competition(ctx, competitionID); err != nil {
		return nil, fmt.Errorf("competition %s: %w", competitionID, err)
	}
	events, err := s.store.EventsByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("events of competition %s: %w", competitionID, err)
	}
	return events, nil
}

// Registrations lists the entries of an event.
func (s *Service) Registrations(ctx context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	if _, err := s.store.Event(ctx, eventID); err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	regs, err := s.store.RegistrationsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("registrations of event %s: %w", eventID, err)
	}
	return regs, nil
}

// Athlete returns one athlete with their stored bests.
func (s *Service) Athlete(ctx context.Context, id uuid.UUID) (model.Athlete, error) {
	a, err := s.store.AthleteByID(ctx, id)
	if err != nil {
		return model.Athlete{}, fmt.Errorf("athlete %s: %w", id, err)
	}
	return a, nil
}

// Schedule returns one schedule version with its items.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) (model.Schedule, error) {
	sc, err := s.store.Schedule(ctx, id)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("schedule %s: %w", id, err)
	}
	return sc, nil
}

// LatestSchedule returns the highest schedule version of a competition.
func (s *Service) LatestSchedule(ctx context.Context, competitionID uuid.UUID) (model.Schedule, error) {
	sc, err := s.store.LatestSchedule(ctx, competitionID)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("latest schedule of %s: %w", competitionID, err)
	}
	return sc, nil
}

// RelayTeam returns a relay team with its members.
func (s *Service) RelayTeam(ctx context.Context, id uuid.UUID) (model.RelayTeam, error) {
	t, err := s.store.RelayTeam(ctx, id)
	if err != nil {
		return model.RelayTeam{}, fmt.Errorf("relay team %s: %w", id, err)
	}
	return t, nil
}

// Event returns one event.
func (s *Service) Event(ctx context.Context, id uuid.UUID) (model.Event, error) {
	ev, err := s.store.Event(ctx, id)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %s: %w", id, err)
	}
	return ev, nil
}
