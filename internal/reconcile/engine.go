// Package reconcile matches start-list candidates against stored athletes
// and registrations and decides whether to create, update or skip.
//
// Matching precedence:
//  1. exact license number
//  2. folded first and last name plus date of birth, within the same club
//     when both sides name one
//
// Create-or-update decisions for the same athlete are serialized, so two
// imports naming the same new athlete never create it twice.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/store"
	"github.com/JonMunkholm/athletix/internal/textfold"
)

var (
	ErrUnmatched = errors.New("athlete not found and creation is disabled")
	ErrAmbiguous = errors.New("several athletes match this row")
)

// Policy controls what the engine may write.
type Policy struct {
	UpdateExisting        bool `json:"updateExisting"`
	CreateMissingAthletes bool `json:"createMissingAthletes"`
}

// Action is the decision taken for one candidate.
type Action string

const (
	ActionUnchanged           Action = "unchanged"
	ActionRegistrationUpdated Action = "registration_updated"
	ActionRegistrationCreated Action = "registration_created"
	ActionAthleteCreated      Action = "athlete_created"
	ActionSkipped             Action = "skipped"
)

// Outcome is the result of reconciling one candidate. Skipped outcomes carry
// the reason in Err.
type Outcome struct {
	Action         Action
	AthleteID      uuid.UUID
	RegistrationID uuid.UUID
	Err            error
}

// Store is what the engine needs from the record store.
type Store interface {
	store.Athletes
	store.Registrations
}

// Engine reconciles candidates. It is safe for concurrent use.
type Engine struct {
	store  Store
	locks  *keyLock
	now    func() time.Time
	season func(time.Time) int
}

// NewEngine creates an engine backed by s. season names the season a day
// belongs to, the same way the result classifier does; nil means the
// calendar year.
func NewEngine(s Store, season func(time.Time) int) *Engine {
	if season == nil {
		season = func(t time.Time) int { return t.Year() }
	}
	return &Engine{store: s, locks: newKeyLock(), now: time.Now, season: season}
}

// seasonOf is the season a declared season best belongs to: the /YY suffix
// when the row carries one, otherwise the season of the row's day.
func (e *Engine) seasonOf(c Candidate) int {
	if c.SeasonBestYear != 0 {
		return c.SeasonBestYear
	}
	day := c.Date
	if day.IsZero() {
		day = e.now()
	}
	return e.season(day)
}

// Reconcile applies the decision table for one candidate and event.
// Store failures are returned as errors; every other failure is an Outcome.
func (e *Engine) Reconcile(ctx context.Context, ev model.Event, c Candidate, p Policy) (Outcome, error) {
	unlock := e.locks.Lock("athlete:" + c.NameKey())
	athlete, found, err := e.resolveAthlete(ctx, ev, c, p)
	unlock()
	if err != nil {
		var skip skipError
		if errors.As(err, &skip) {
			return Outcome{Action: ActionSkipped, Err: skip.err}, nil
		}
		return Outcome{}, err
	}
	if !found {
		return Outcome{Action: ActionSkipped, Err: ErrUnmatched}, nil
	}

	unlock = e.locks.Lock("registration:" + athlete.ID.String() + ":" + ev.ID.String())
	defer unlock()

	out, err := e.reconcileRegistration(ctx, ev, athlete, c, p)
	if err != nil {
		return Outcome{}, err
	}
	if athlete.created {
		out.Action = ActionAthleteCreated
	}
	return out, nil
}

type skipError struct{ err error }

func (s skipError) Error() string { return s.err.Error() }

func (s skipError) Unwrap() error { return s.err }

type resolved struct {
	model.Athlete
	created bool
}

func (e *Engine) resolveAthlete(ctx context.Context, ev model.Event, c Candidate, p Policy) (resolved, bool, error) {
	a, found, err := e.Match(ctx, c)
	if err != nil {
		return resolved{}, false, err
	}
	if found {
		if p.UpdateExisting {
			if merged, changed := mergeAthlete(a, ev, c, e.seasonOf(c)); changed {
				if err := e.store.UpdateAthlete(ctx, merged); err != nil {
					return resolved{}, false, fmt.Errorf("update athlete %s: %w", a.ID, err)
				}
				a = merged
			}
		}
		return resolved{Athlete: a}, true, nil
	}
	if !p.CreateMissingAthletes {
		return resolved{}, false, nil
	}

	a = newAthlete(ev, c, e.seasonOf(c))
	if err := e.store.CreateAthlete(ctx, a); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return resolved{}, false, fmt.Errorf("create athlete: %w", err)
		}
		// The license was claimed by another import under a different name.
		existing, found, matchErr := e.Match(ctx, c)
		if matchErr != nil || !found {
			return resolved{}, false, fmt.Errorf("create athlete: %w", err)
		}
		return resolved{Athlete: existing}, true, nil
	}
	return resolved{Athlete: a, created: true}, true, nil
}

// Match finds the stored athlete for a candidate without writing anything.
// It returns found=false when nothing matches and a skip error when several do.
func (e *Engine) Match(ctx context.Context, c Candidate) (model.Athlete, bool, error) {
	if c.License != "" {
		a, err := e.store.AthleteByLicense(ctx, c.License)
		switch {
		case err == nil:
			return a, true, nil
		case !errors.Is(err, store.ErrNotFound):
			return model.Athlete{}, false, fmt.Errorf("find athlete by license: %w", err)
		}
	}

	same, err := e.store.AthletesByNameKey(ctx, c.NameKey())
	if err != nil {
		return model.Athlete{}, false, fmt.Errorf("find athlete by name: %w", err)
	}

	var matches []model.Athlete
	for _, a := range same {
		if c.License != "" && a.License.Valid && a.License.String != c.License {
			continue
		}
		if !sameBirth(a, c) || !sameClub(a, c) {
			continue
		}
		matches = append(matches, a)
	}

	switch len(matches) {
	case 0:
		return model.Athlete{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		return model.Athlete{}, false, skipError{fmt.Errorf("%w: %d candidates for %s %s", ErrAmbiguous, len(matches), c.FirstName, c.LastName)}
	}
}

// sameBirth compares full dates when both sides have one and years
// otherwise. A side without any birth data is compatible with anything.
func sameBirth(a model.Athlete, c Candidate) bool {
	if a.BirthDate.Valid && c.BirthDate.Valid {
		return a.BirthDate.Time.Equal(c.BirthDate.Time)
	}
	ay, cy := a.YearOfBirth(), c.YearOfBirth()
	if ay == 0 || cy == 0 {
		return true
	}
	return ay == cy
}

func sameClub(a model.Athlete, c Candidate) bool {
	if !a.Club.Valid || c.Club == "" {
		return true
	}
	return textfold.Equal(a.Club.String, c.Club)
}

func (e *Engine) reconcileRegistration(ctx context.Context, ev model.Event, a resolved, c Candidate, p Policy) (Outcome, error) {
	now := e.now()
	seed := seedMark(c)

	reg, err := e.store.Registration(ctx, a.ID, ev.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		reg = model.Registration{
			ID:            uuid.New(),
			CompetitionID: ev.CompetitionID,
			EventID:       ev.ID,
			AthleteID:     a.ID,
			Bib:           rows.ToPgText(c.Bib),
			SeedMark:      seed,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := e.store.CreateRegistration(ctx, reg); err != nil {
			return Outcome{}, fmt.Errorf("create registration: %w", err)
		}
		return Outcome{Action: ActionRegistrationCreated, AthleteID: a.ID, RegistrationID: reg.ID}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("find registration: %w", err)
	}

	out := Outcome{Action: ActionUnchanged, AthleteID: a.ID, RegistrationID: reg.ID}
	if !p.UpdateExisting {
		return out, nil
	}

	changed := false
	if !seed.IsZero() && seed != reg.SeedMark {
		reg.SeedMark = seed
		changed = true
	}
	if c.Bib != "" && (!reg.Bib.Valid || reg.Bib.String != c.Bib) {
		reg.Bib = rows.ToPgText(c.Bib)
		changed = true
	}
	if !changed {
		return out, nil
	}

	reg.UpdatedAt = now
	if err := e.store.UpdateRegistration(ctx, reg); err != nil {
		return Outcome{}, fmt.Errorf("update registration: %w", err)
	}
	out.Action = ActionRegistrationUpdated
	return out, nil
}

// seedMark is the declared entry mark, falling back to SB and then PB.
func seedMark(c Candidate) mark.Mark {
	switch {
	case !c.SeedMark.IsZero():
		return c.SeedMark
	case !c.SeasonBest.IsZero():
		return c.SeasonBest
	default:
		return c.PersonalBest
	}
}

func newAthlete(ev model.Event, c Candidate, season int) model.Athlete {
	a := model.Athlete{
		ID:        uuid.New(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		NameKey:   c.NameKey(),
		BirthDate: c.BirthDate,
		BirthYear: c.YearOfBirth(),
		Club:      rows.ToPgText(c.Club),
		License:   rows.ToPgText(c.License),
	}
	a, _ = mergeBests(a, ev, c, season)
	return a
}

// mergeAthlete fills identity fields the stored athlete lacks and keeps the
// better of stored and declared bests. Stored names are never rewritten.
func mergeAthlete(a model.Athlete, ev model.Event, c Candidate, season int) (model.Athlete, bool) {
	changed := false
	if !a.License.Valid && c.License != "" {
		a.License = rows.ToPgText(c.License)
		changed = true
	}
	if !a.BirthDate.Valid && c.BirthDate.Valid {
		a.BirthDate = c.BirthDate
		a.BirthYear = c.BirthDate.Time.Year()
		changed = true
	}
	if a.BirthYear == 0 && c.BirthYear != 0 {
		a.BirthYear = c.BirthYear
		changed = true
	}
	if !a.Club.Valid && c.Club != "" {
		a.Club = rows.ToPgText(c.Club)
		changed = true
	}

	a, bestsChanged := mergeBests(a, ev, c, season)
	return a, changed || bestsChanged
}

func mergeBests(a model.Athlete, ev model.Event, c Candidate, season int) (model.Athlete, bool) {
	key := model.DisciplineKey(ev.Discipline)
	changed := false

	if !c.PersonalBest.IsZero() && c.PersonalBest.Better(a.PersonalBests[key]) {
		if a.PersonalBests == nil {
			a.PersonalBests = make(map[string]mark.Mark)
		}
		a.PersonalBests[key] = c.PersonalBest
		changed = true
	}

	if !c.SeasonBest.IsZero() {
		prev, ok := a.SeasonBests[key]
		if !ok || prev.Season < season || (prev.Season == season && c.SeasonBest.Better(prev.Mark)) {
			if a.SeasonBests == nil {
				a.SeasonBests = make(map[string]model.SeasonMark)
			}
			a.SeasonBests[key] = model.SeasonMark{Mark: c.SeasonBest, Season: season}
			changed = true
		}
	}
	return a, changed
}
