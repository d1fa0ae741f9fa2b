// Package memory is an in-process record store. It backs tests and CLI dry
// runs and enforces the same unique keys as the postgres schema.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/store"
)

type regKey struct {
	athleteID uuid.UUID
	eventID   uuid.UUID
}

type teamRecord struct {
	team    model.RelayTeam
	members []model.RelayTeamMember
}

// Store keeps every record in maps guarded by one RWMutex.
type Store struct {
	mu sync.RWMutex

	athletes      map[uuid.UUID]model.Athlete
	byLicense     map[string]uuid.UUID
	competitions  map[uuid.UUID]model.Competition
	events        map[uuid.UUID]model.Event
	eventOrder    []uuid.UUID
	registrations map[regKey]model.Registration
	results       map[model.ResultKey]model.Result
	schedules     map[uuid.UUID]model.Schedule
	teams         map[uuid.UUID]teamRecord
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		athletes:      make(map[uuid.UUID]model.Athlete),
		byLicense:     make(map[string]uuid.UUID),
		competitions:  make(map[uuid.UUID]model.Competition),
		events:        make(map[uuid.UUID]model.Event),
		registrations: make(map[regKey]model.Registration),
		results:       make(map[model.ResultKey]model.Result),
		schedules:     make(map[uuid.UUID]model.Schedule),
		teams:         make(map[uuid.UUID]teamRecord),
	}
}

// Close is a no-op.
func (s *Store) Close() {}

// Counts reports how many athletes and registrations are stored.
func (s *Store) Counts() (athletes, registrations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.athletes), len(s.registrations)
}

func cloneAthlete(a model.Athlete) model.Athlete {
	a.PersonalBests = maps.Clone(a.PersonalBests)
	a.SeasonBests = maps.Clone(a.SeasonBests)
	return a
}

// ----- athletes -----

func (s *Store) AthleteByID(_ context.Context, id uuid.UUID) (model.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.athletes[id]
	if !ok {
		return model.Athlete{}, fmt.Errorf("athlete %s: %w", id, store.ErrNotFound)
	}
	return cloneAthlete(a), nil
}

func (s *Store) AthleteByLicense(_ context.Context, license string) (model.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byLicense[license]
	if !ok {
		return model.Athlete{}, fmt.Errorf("athlete with license %q: %w", license, store.ErrNotFound)
	}
	return cloneAthlete(s.athletes[id]), nil
}

func (s *Store) AthletesByNameKey(_ context.Context, nameKey string) ([]model.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Athlete
	for _, a := range s.athletes {
		if a.NameKey == nameKey {
			out = append(out, cloneAthlete(a))
		}
	}
	slices.SortFunc(out, func(a, b model.Athlete) int { return compareUUID(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreateAthlete(_ context.Context, a model.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.athletes[a.ID]; exists {
		return fmt.Errorf("athlete %s: %w", a.ID, store.ErrConflict)
	}
	if a.License.Valid {
		if _, taken := s.byLicense[a.License.String]; taken {
			return fmt.Errorf("license %q: %w", a.License.String, store.ErrConflict)
		}
		s.byLicense[a.License.String] = a.ID
	}
	s.athletes[a.ID] = cloneAthlete(a)
	return nil
}

func (s *Store) UpdateAthlete(_ context.Context, a model.Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.athletes[a.ID]
	if !ok {
		return fmt.Errorf("athlete %s: %w", a.ID, store.ErrNotFound)
	}
	if a.License.Valid {
		if owner, taken := s.byLicense[a.License.String]; taken && owner != a.ID {
			return fmt.Errorf("license %q: %w", a.License.String, store.ErrConflict)
		}
	}
	if prev.License.Valid {
		delete(s.byLicense, prev.License.String)
	}
	if a.License.Valid {
		s.byLicense[a.License.String] = a.ID
	}
	s.athletes[a.ID] = cloneAthlete(a)
	return nil
}

// ----- registrations -----

func (s *Store) Registration(_ context.Context, athleteID, eventID uuid.UUID) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[regKey{athleteID, eventID}]
	if !ok {
		return model.Registration{}, fmt.Errorf("registration: %w", store.ErrNotFound)
	}
	return r, nil
}

func (s *Store) RegistrationByBib(_ context.Context, eventID uuid.UUID, bib string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.registrations {
		if r.EventID == eventID && r.Bib.Valid && r.Bib.String == bib {
			return r, nil
		}
	}
	return model.Registration{}, fmt.Errorf("registration with bib %q: %w", bib, store.ErrNotFound)
}

func (s *Store) RegistrationsByEvent(_ context.Context, eventID uuid.UUID) ([]model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Registration
	for _, r := range s.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.Registration) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *Store) CreateRegistration(_ context.Context, r model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := regKey{r.AthleteID, r.EventID}
	if _, exists := s.registrations[k]; exists {
		return fmt.Errorf("registration for athlete %s: %w", r.AthleteID, store.ErrConflict)
	}
	s.registrations[k] = r
	return nil
}

func (s *Store) UpdateRegistration(_ context.Context, r model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := regKey{r.AthleteID, r.EventID}
	if _, exists := s.registrations[k]; !exists {
		return fmt.Errorf("registration %s: %w", r.ID, store.ErrNotFound)
	}
	s.registrations[k] = r
	return nil
}

// ----- competitions and events -----

func (s *Store) Competition(_ context.Context, id uuid.UUID) (model.Competition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.competitions[id]
	if !ok {
		return model.Competition{}, fmt.Errorf("competition %s: %w", id, store.ErrNotFound)
	}
	return c, nil
}

func (s *Store) CreateCompetition(_ context.Context, c model.Competition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.competitions[c.ID]; exists {
		return fmt.Errorf("competition %s: %w", c.ID, store.ErrConflict)
	}
	s.competitions[c.ID] = c
	return nil
}

func (s *Store) Event(_ context.Context, id uuid.UUID) (model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return model.Event{}, fmt.Errorf("event %s: %w", id, store.ErrNotFound)
	}
	return e, nil
}

// EventsByCompetition returns events in creation order.
func (s *Store) EventsByCompetition(_ context.Context, competitionID uuid.UUID) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Event
	for _, id := range s.eventOrder {
		if e := s.events[id]; e.CompetitionID == competitionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CreateEvent(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.ID]; exists {
		return fmt.Errorf("event %s: %w", e.ID, store.ErrConflict)
	}
	s.events[e.ID] = e
	s.eventOrder = append(s.eventOrder, e.ID)
	return nil
}

// ----- results -----

func (s *Store) ResultByKey(_ context.Context, key model.ResultKey) (model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[key]
	if !ok {
		return model.Result{}, fmt.Errorf("result: %w", store.ErrNotFound)
	}
	return r, nil
}

func (s *Store) ResultsByAthlete(_ context.Context, athleteID uuid.UUID) ([]model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Result
	for _, r := range s.results {
		if r.AthleteID == athleteID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.Result) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (s *Store) ResultsByEvent(_ context.Context, eventID uuid.UUID) ([]model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Result
	for _, r := range s.results {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b model.Result) int { return compareUUID(a.ID, b.ID) })
	return out, nil
}

func (s *Store) UpsertResult(_ context.Context, r model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Key()] = r
	return nil
}

// ----- schedules -----

func (s *Store) Schedule(_ context.Context, id uuid.UUID) (model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules[id]
	if !ok {
		return model.Schedule{}, fmt.Errorf("schedule %s: %w", id, store.ErrNotFound)
	}
	sc.Items = slices.Clone(sc.Items)
	return sc, nil
}

func (s *Store) LatestSchedule(_ context.Context, competitionID uuid.UUID) (model.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest model.Schedule
		found  bool
	)
	for _, sc := range s.schedules {
		if sc.CompetitionID == competitionID && (!found || sc.Version > latest.Version) {
			latest, found = sc, true
		}
	}
	if !found {
		return model.Schedule{}, fmt.Errorf("schedule for competition %s: %w", competitionID, store.ErrNotFound)
	}
	latest.Items = slices.Clone(latest.Items)
	return latest, nil
}

func (s *Store) CreateSchedule(_ context.Context, sc model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.schedules {
		if other.ID == sc.ID || (other.CompetitionID == sc.CompetitionID && other.Version == sc.Version) {
			return fmt.Errorf("schedule version %d: %w", sc.Version, store.ErrConflict)
		}
	}
	sc.Items = slices.Clone(sc.Items)
	s.schedules[sc.ID] = sc
	return nil
}

func (s *Store) UpdateSchedule(_ context.Context, sc model.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[sc.ID]; !ok {
		return fmt.Errorf("schedule %s: %w", sc.ID, store.ErrNotFound)
	}
	sc.Items = slices.Clone(sc.Items)
	s.schedules[sc.ID] = sc
	return nil
}

// ----- relay teams -----

func (s *Store) RelayTeam(_ context.Context, id uuid.UUID) (model.RelayTeam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.teams[id]
	if !ok {
		return model.RelayTeam{}, fmt.Errorf("relay team %s: %w", id, store.ErrNotFound)
	}
	return rec.restore()
}

func (s *Store) RelayTeamByName(_ context.Context, eventID uuid.UUID, name string) (model.RelayTeam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.teams {
		if rec.team.EventID == eventID && rec.team.Name == name {
			return rec.restore()
		}
	}
	return model.RelayTeam{}, fmt.Errorf("relay team %q: %w", name, store.ErrNotFound)
}

func (s *Store) SaveRelayTeam(_ context.Context, t model.RelayTeam) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.teams {
		if id != t.ID && rec.team.EventID == t.EventID && rec.team.Name == t.Name {
			return fmt.Errorf("relay team %q: %w", t.Name, store.ErrConflict)
		}
	}
	s.teams[t.ID] = teamRecord{team: t, members: t.Members()}
	return nil
}

func (r teamRecord) restore() (model.RelayTeam, error) {
	t := model.RelayTeam{
		ID:            r.team.ID,
		CompetitionID: r.team.CompetitionID,
		EventID:       r.team.EventID,
		Name:          r.team.Name,
	}
	if err := t.SetMembers(r.members); err != nil {
		return model.RelayTeam{}, err
	}
	return t, nil
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}
