package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/logging"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/store"
)

// importRun carries the per-import state shared by the row handlers.
type importRun struct {
	req    ImportRequest
	comp   model.Competition
	events *reconcile.EventIndex
	sheet  *rows.Sheet
	result *ImportResult
	logger *slog.Logger
}

// ImportStartlist reads a start-list file and reconciles every row into
// athletes and registrations.
func (s *Service) ImportStartlist(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	return s.runImport(ctx, ImportStartlist, rows.StartlistSchema, req, s.startlistRow)
}

// ImportResults reads a results file, matches each row to a registered
// athlete or relay team and stores the classified result.
func (s *Service) ImportResults(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	return s.runImport(ctx, ImportResults, rows.ResultsSchema, req, s.resultRow)
}

type rowHandler func(ctx context.Context, run *importRun, row rows.Row) (RowOutcome, error)

// runImport is the shared pipeline: limit, normalize, parse, then hand each
// row to handle. Only an empty buffer or a store failure returns an error;
// everything else is reported per row.
func (s *Service) runImport(ctx context.Context, kind ImportKind, schema rows.Schema, req ImportRequest, handle rowHandler) (*ImportResult, error) {
	start := s.now()

	if len(req.Data) == 0 {
		return nil, rows.ErrEmptyInput
	}
	if int64(len(req.Data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(req.Data), s.maxFileSize)
	}
	if req.Format == "" {
		req.Format = rows.FormatPZLA
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	comp, err := s.store.Competition(ctx, req.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("competition %s: %w", req.CompetitionID, err)
	}
	events, err := s.store.EventsByCompetition(ctx, comp.ID)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	importID := uuid.New()
	ctx = ContextWithImportID(ctx, importID.String())
	logger := logging.WithFields(ctx,
		"import_id", importID,
		"kind", kind,
		"competition_id", comp.ID,
		"format", req.Format,
		"file", req.FileName,
		"source", GetSourceFromContext(ctx),
	)

	text := s.normalizer.Normalize(req.Data)
	out := &ImportResult{
		ImportID:      importID,
		Kind:          kind,
		CompetitionID: comp.ID,
		FileName:      req.FileName,
		Format:        req.Format,
		Encoding:      text.Encoding,
		Rows:          []RowOutcome{},
	}
	if text.Ambiguous {
		out.Warnings = append(out.Warnings, MessageEncodingAmbiguous)
		logger.Warn("encoding ambiguous, replacement decoding used", "encoding", text.Encoding)
	}

	sheet, err := rows.NewParser(req.Format, schema).Parse(text.Text)
	if err != nil {
		return nil, err
	}
	out.Delimiter = string(sheet.Delimiter)
	logger.Info("import started", "encoding", text.Encoding, "delimiter", out.Delimiter, "policy", req.Policy)

	run := &importRun{
		req:    req,
		comp:   comp,
		events: reconcile.NewEventIndex(events),
		sheet:  sheet,
		result: out,
		logger: logger,
	}

	for row, rowErr := range sheet.All() {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		var o RowOutcome
		if rowErr != nil {
			o = errorOutcome(row.Line, rowErr)
		} else {
			o, err = handle(ctx, run, row)
			if err != nil {
				logger.Error("import aborted", "line", row.Line, "error", err)
				return out, fmt.Errorf("line %d: %w", row.Line, err)
			}
		}
		out.record(o)

		if o.Status == RowError && req.Mode == rows.Strict {
			out.Aborted = true
			break
		}
	}

	out.Duration = time.Since(start)
	logger.Info("import finished",
		"total", out.Summary.Total,
		"created", out.Summary.Created,
		"updated", out.Summary.Updated,
		"skipped", out.Summary.Skipped,
		"errors", out.Summary.Errors,
		"aborted", out.Aborted,
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// errorOutcome reports a row that could not be processed.
func errorOutcome(line int, err error) RowOutcome {
	var re *rows.RowError
	if errors.As(err, &re) && re.Line > 0 {
		line = re.Line
	}
	return RowOutcome{
		Line:   line,
		Status: RowError,
		Reason: err.Error(),
		Code:   MapError(err).Code,
	}
}

// skippedOutcome reports a row that was understood but deliberately not applied.
func skippedOutcome(line int, action string, err error) RowOutcome {
	return RowOutcome{
		Line:   line,
		Status: RowSkipped,
		Action: action,
		Reason: err.Error(),
		Code:   MapError(err).Code,
	}
}

func (s *Service) startlistRow(ctx context.Context, run *importRun, row rows.Row) (RowOutcome, error) {
	ev, err := run.events.Resolve(row.Value(rows.FieldEvent), row.Value(rows.FieldRound))
	if err != nil {
		return errorOutcome(row.Line, err), nil
	}
	c, err := reconcile.CandidateFromRow(row, run.req.Format, ev.MarkKind)
	if err != nil {
		return errorOutcome(row.Line, err), nil
	}
	c.Date = run.comp.StartDate

	res, err := s.engine.Reconcile(ctx, ev, c, run.req.Policy)
	if err != nil {
		return RowOutcome{}, err
	}

	o := RowOutcome{
		Line:           row.Line,
		Action:         string(res.Action),
		AthleteID:      res.AthleteID,
		EventID:        ev.ID,
		RegistrationID: res.RegistrationID,
	}
	switch res.Action {
	case reconcile.ActionAthleteCreated, reconcile.ActionRegistrationCreated:
		o.Status = RowCreated
	case reconcile.ActionRegistrationUpdated:
		o.Status = RowUpdated
	case reconcile.ActionUnchanged:
		o.Status = RowSkipped
		o.Reason = "registration already exists"
		o.Code = msgDuplicate.Code
	default:
		o = skippedOutcome(row.Line, string(res.Action), res.Err)
		o.EventID = ev.ID
		run.logger.Debug("row skipped", "line", row.Line, "reason", res.Err)
	}
	return o, nil
}

func (s *Service) resultRow(ctx context.Context, run *importRun, row rows.Row) (RowOutcome, error) {
	ev, err := run.events.Resolve(row.Value(rows.FieldEvent), row.Value(rows.FieldRound))
	if err != nil {
		return errorOutcome(row.Line, err), nil
	}

	sub, err := s.resultCompetitor(ctx, run, ev, row)
	if err != nil {
		if isSkip(err) {
			o := skippedOutcome(row.Line, string(reconcile.ActionSkipped), err)
			o.EventID = ev.ID
			return o, nil
		}
		return RowOutcome{}, err
	}

	sub.EventID = ev.ID
	sub.Raw = row.Value(rows.FieldResult)
	sub.Date = run.comp.StartDate
	if v, ok := row.Get(rows.FieldStatus); ok {
		st, known := results.ParseStatus(v)
		switch {
		case known:
			sub.Status = st
		case sub.Raw == "":
			return errorOutcome(row.Line, fmt.Errorf("%w: unknown status %q", results.ErrMalformedMark, v)), nil
		}
		// Other remarks next to a mark ("PB", "q") are informational.
	}
	if w, ok := row.Float(rows.FieldWind); ok {
		sub.Wind = &w
	}
	if rt, ok := row.Float(rows.FieldReactionTime); ok {
		sub.ReactionTime = &rt
	}
	if sub.Splits, err = row.Splits(); err != nil {
		return errorOutcome(row.Line, err), nil
	}

	r, replaced, err := s.submit(ctx, ev, sub, results.Thresholds{})
	if err != nil {
		if isRejection(err) {
			return errorOutcome(row.Line, err), nil
		}
		return RowOutcome{}, err
	}

	o := RowOutcome{
		Line:           row.Line,
		Status:         RowCreated,
		Action:         "result_created",
		AthleteID:      r.AthleteID,
		TeamID:         r.TeamID,
		EventID:        ev.ID,
		RegistrationID: r.RegistrationID,
		ResultID:       r.ID,
	}
	if replaced {
		o.Status = RowUpdated
		o.Action = "result_replaced"
	}
	return o, nil
}

// resultCompetitor finds who a results row belongs to. A row that names a
// team and no individual is a relay result. Rows that cannot be attributed
// return an error for which isSkip reports true.
func (s *Service) resultCompetitor(ctx context.Context, run *importRun, ev model.Event, row rows.Row) (results.Submission, error) {
	individual := row.Has(rows.FieldLicense) || row.Has(rows.FieldFirstName) ||
		row.Has(rows.FieldFullName) || row.Has(rows.FieldBib)

	if !individual {
		team, err := s.relayTeamForRow(ctx, run, ev, row.Value(rows.FieldTeam))
		if err != nil {
			return results.Submission{}, err
		}
		return results.Submission{TeamID: team.ID}, nil
	}

	if bib, ok := row.Get(rows.FieldBib); ok {
		reg, err := s.store.RegistrationByBib(ctx, ev.ID, bib)
		switch {
		case err == nil:
			return results.Submission{AthleteID: reg.AthleteID, RegistrationID: reg.ID}, nil
		case !errors.Is(err, store.ErrNotFound):
			return results.Submission{}, err
		}
		// Unknown bib: fall back to name matching.
	}

	c := reconcile.Candidate{
		License: row.Value(rows.FieldLicense),
		Club:    row.Value(rows.FieldClub),
	}
	if first, ok := row.Get(rows.FieldFirstName); ok {
		c.FirstName, c.LastName = first, row.Value(rows.FieldLastName)
	} else {
		c.FirstName, c.LastName = reconcile.SplitFullName(row.Value(rows.FieldFullName), run.req.Format)
	}
	if v, ok := row.Get(rows.FieldBirthDate); ok {
		c.BirthDate = rows.ParseDate(v)
	}
	if y, ok := row.Int(rows.FieldBirthYear); ok {
		c.BirthYear = y
	}

	athlete, found, err := s.engine.Match(ctx, c)
	if err != nil {
		return results.Submission{}, err
	}
	if !found {
		return results.Submission{}, fmt.Errorf("%w: %s %s", reconcile.ErrUnmatched, c.FirstName, c.LastName)
	}

	reg, err := s.store.Registration(ctx, athlete.ID, ev.ID)
	if errors.Is(err, store.ErrNotFound) {
		return results.Submission{}, fmt.Errorf("%w: %s", ErrNotRegistered, athlete.FullName())
	}
	if err != nil {
		return results.Submission{}, err
	}
	return results.Submission{AthleteID: athlete.ID, RegistrationID: reg.ID}, nil
}

// isSkip reports whether err means the row was understood but belongs to
// nobody the store knows.
func isSkip(err error) bool {
	return errors.Is(err, reconcile.ErrUnmatched) ||
		errors.Is(err, reconcile.ErrAmbiguous) ||
		errors.Is(err, ErrNotRegistered)
}

// relayTeamForRow looks a team up by name, creating it when the policy
// allows creating missing competitors.
func (s *Service) relayTeamForRow(ctx context.Context, run *importRun, ev model.Event, name string) (model.RelayTeam, error) {
	team, err := s.store.RelayTeamByName(ctx, ev.ID, name)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return team, err
	}
	if !run.req.Policy.CreateMissingAthletes {
		return model.RelayTeam{}, fmt.Errorf("%w: relay team %q", reconcile.ErrUnmatched, name)
	}
	return s.CreateRelayTeam(ctx, ev.ID, name)
}
