package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/athletix/internal/logging"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/store"
)

// SubmitResult classifies one result and stores it, replacing any earlier
// result with the same key. A malformed mark is rejected and nothing is
// stored.
func (s *Service) SubmitResult(ctx context.Context, req SubmitRequest) (model.Result, error) {
	ev, err := s.store.Event(ctx, req.EventID)
	if err != nil {
		return model.Result{}, fmt.Errorf("event %s: %w", req.EventID, err)
	}

	sub := req.Submission
	if sub.AthleteID != uuid.Nil && sub.RegistrationID == uuid.Nil {
		reg, err := s.store.Registration(ctx, sub.AthleteID, ev.ID)
		if errors.Is(err, store.ErrNotFound) {
			return model.Result{}, fmt.Errorf("%w: athlete %s", ErrNotRegistered, sub.AthleteID)
		}
		if err != nil {
			return model.Result{}, err
		}
		sub.RegistrationID = reg.ID
	}
	if sub.TeamID != uuid.Nil {
		team, err := s.store.RelayTeam(ctx, sub.TeamID)
		if err != nil {
			return model.Result{}, fmt.Errorf("relay team %s: %w", sub.TeamID, err)
		}
		if team.EventID != ev.ID {
			return model.Result{}, fmt.Errorf("%w: relay team %s is not entered in event %s", ErrInvalidInput, team.ID, ev.ID)
		}
	}

	r, _, err := s.submit(ctx, ev, sub, req.Thresholds)
	return r, err
}

// SubmitResults stores a batch of results concurrently. Submissions of the
// same competitor run in input order on one goroutine so that each sees the
// results stored before it. Rejected submissions are reported per item; the
// returned error is set only for store or context failures.
func (s *Service) SubmitResults(ctx context.Context, reqs []SubmitRequest) ([]SubmitOutcome, error) {
	out := make([]SubmitOutcome, len(reqs))

	groups := make(map[uuid.UUID][]int)
	var order []uuid.UUID
	for i, req := range reqs {
		out[i].Index = i
		key := req.AthleteID
		if key == uuid.Nil {
			key = req.TeamID
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.submitWorkers)
	for _, key := range order {
		idxs := groups[key]
		g.Go(func() error {
			for _, i := range idxs {
				r, err := s.SubmitResult(gctx, reqs[i])
				switch {
				case err == nil:
					out[i].Result = &r
				case isRejection(err):
					msg := MapError(err)
					out[i].Error = &msg
				default:
					return fmt.Errorf("submission %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// isRejection reports whether err is about the submission itself rather than
// the infrastructure.
func isRejection(err error) bool {
	return errors.Is(err, results.ErrMalformedMark) ||
		errors.Is(err, results.ErrMissingCompetitor) ||
		errors.Is(err, ErrNotRegistered) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, store.ErrNotFound)
}

// submit classifies against the competitor's history and upserts. replaced
// reports whether a stored result with the same key existed.
func (s *Service) submit(ctx context.Context, ev model.Event, sub results.Submission, th results.Thresholds) (model.Result, bool, error) {
	logger := logging.WithFields(ctx, "event_id", ev.ID, "athlete_id", sub.AthleteID, "team_id", sub.TeamID)
	if id := GetImportIDFromContext(ctx); id != "" {
		logger = logger.With("import_id", id)
	}

	var h results.History
	if sub.AthleteID != uuid.Nil {
		var err error
		if h, err = s.history(ctx, sub.AthleteID, ev, sub.RegistrationID); err != nil {
			return model.Result{}, false, err
		}
	}

	r, err := s.classifier.Classify(sub, ev, h, th)
	if err != nil {
		logger.Warn("result rejected", "raw", sub.Raw, "error", err)
		return model.Result{}, false, err
	}

	prev, err := s.store.ResultByKey(ctx, r.Key())
	replaced := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return model.Result{}, false, fmt.Errorf("load previous result: %w", err)
	}
	if replaced {
		r.ID = prev.ID
		r.Position, r.Points = prev.Position, prev.Points
	}

	if err := s.store.UpsertResult(ctx, r); err != nil {
		return model.Result{}, false, fmt.Errorf("store result: %w", err)
	}
	logger.Debug("result stored", "mark", r.Mark.String(), "valid", r.IsValid, "pb", r.IsPersonalBest, "sb", r.IsSeasonBest, "replaced", replaced)
	return r, replaced, nil
}

// history gathers the athlete's stored bests and prior legal marks in the
// event's discipline. The result being replaced (same event and
// registration) is left out.
func (s *Service) history(ctx context.Context, athleteID uuid.UUID, ev model.Event, registrationID uuid.UUID) (results.History, error) {
	a, err := s.store.AthleteByID(ctx, athleteID)
	if err != nil {
		return results.History{}, fmt.Errorf("athlete %s: %w", athleteID, err)
	}

	key := model.DisciplineKey(ev.Discipline)
	h := results.History{
		PersonalBest: a.PersonalBests[key],
		SeasonBest:   a.SeasonBests[key],
	}

	prior, err := s.store.ResultsByAthlete(ctx, athleteID)
	if err != nil {
		return results.History{}, fmt.Errorf("results of athlete %s: %w", athleteID, err)
	}

	disciplines := map[uuid.UUID]string{ev.ID: key}
	for _, r := range prior {
		if !r.IsValid || r.TeamID != uuid.Nil {
			continue
		}
		if r.EventID == ev.ID && r.RegistrationID == registrationID {
			continue
		}
		d, ok := disciplines[r.EventID]
		if !ok {
			pe, err := s.store.Event(ctx, r.EventID)
			if err != nil {
				return results.History{}, fmt.Errorf("event %s: %w", r.EventID, err)
			}
			d = model.DisciplineKey(pe.Discipline)
			disciplines[r.EventID] = d
		}
		if d != key || r.Mark.Kind != ev.MarkKind {
			continue
		}
		h.Prior = append(h.Prior, results.PriorMark{Mark: r.Mark, Date: r.Date, WindAssisted: r.IsWindAssisted})
	}
	return h, nil
}

// RankEvent orders the stored results of an event, assigns positions and
// points and stores them.
func (s *Service) RankEvent(ctx context.Context, eventID uuid.UUID) ([]model.Result, error) {
	if _, err := s.store.Event(ctx, eventID); err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}
	stored, err := s.store.ResultsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("results of event %s: %w", eventID, err)
	}

	ranked := results.Rank(stored, s.points)
	before := make(map[uuid.UUID]model.Result, len(stored))
	for _, r := range stored {
		before[r.ID] = r
	}
	for _, r := range ranked {
		if b := before[r.ID]; b.Position == r.Position && b.Points == r.Points {
			continue
		}
		if err := s.store.UpsertResult(ctx, r); err != nil {
			return nil, fmt.Errorf("store ranking: %w", err)
		}
	}

	logging.FromContext(ctx).Info("event ranked", "event_id", eventID, "results", len(ranked))
	return ranked, nil
}

// EventResults returns the stored results of an event in ranking order
// without writing anything.
func (s *Service) EventResults(ctx context.Context, eventID uuid.UUID) ([]model.Result, error) {
	stored, err := s.store.ResultsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("results of event %s: %w", eventID, err)
	}
	return results.Rank(stored, s.points), nil
}
