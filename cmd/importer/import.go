package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/athletix/internal/application"
	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/rows"
)

// target selects the competition a command works on: an existing one by id,
// or a scratch competition holding the listed events.
type target struct {
	competition string
	events      []string
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.competition, "competition", "", "Existing competition id")
	cmd.Flags().StringArrayVar(&t.events, "event", nil,
		`Scratch event "discipline[:track|field[:round]]"; repeatable, used without --competition`)
}

// resolve returns the competition id, creating the scratch competition and
// its events when no id was given.
func (t *target) resolve(ctx context.Context, svc *core.Service) (uuid.UUID, []model.Event, error) {
	if t.competition != "" {
		id, err := uuid.Parse(strings.TrimSpace(t.competition))
		if err != nil {
			return uuid.Nil, nil, withCode(exitUsage, fmt.Errorf("invalid --competition: %w", err))
		}
		events, err := svc.Events(ctx, id)
		if err != nil {
			return uuid.Nil, nil, withCode(exitStoreError, err)
		}
		return id, events, nil
	}

	specs := joinSpecs(t.events)
	if len(specs) == 0 {
		return uuid.Nil, nil, withCode(exitUsage, fmt.Errorf("either --competition or at least one --event is required"))
	}
	return scratchCompetition(ctx, svc, specs)
}

func scratchCompetition(ctx context.Context, svc *core.Service, specs []string) (uuid.UUID, []model.Event, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	comp, err := svc.CreateCompetition(ctx, model.Competition{
		Name:      "Dry run " + today.Format(time.DateOnly),
		StartDate: today,
		EndDate:   today,
	})
	if err != nil {
		return uuid.Nil, nil, err
	}

	events := make([]model.Event, 0, len(specs))
	for _, spec := range specs {
		ev, err := parseEventSpec(spec)
		if err != nil {
			return uuid.Nil, nil, withCode(exitUsage, err)
		}
		ev.CompetitionID = comp.ID
		created, err := svc.CreateEvent(ctx, ev)
		if err != nil {
			return uuid.Nil, nil, withCode(exitUsage, fmt.Errorf("event %q: %w", spec, err))
		}
		events = append(events, created)
	}
	slog.Info("scratch competition created", "competition_id", comp.ID, "events", len(events))
	return comp.ID, events, nil
}

// parseEventSpec reads "discipline[:kind[:round]]".
func parseEventSpec(spec string) (model.Event, error) {
	parts := strings.Split(spec, ":")
	ev := model.Event{Discipline: strings.TrimSpace(parts[0]), Kind: model.Track}
	if ev.Discipline == "" {
		return model.Event{}, fmt.Errorf("event %q: discipline is empty", spec)
	}
	if len(parts) > 3 {
		return model.Event{}, fmt.Errorf("event %q: expected discipline[:kind[:round]]", spec)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		kind, err := model.ParseDisciplineKind(parts[1])
		if err != nil {
			return model.Event{}, fmt.Errorf("event %q: %w", spec, err)
		}
		ev.Kind = kind
	}
	if len(parts) > 2 {
		round, err := model.ParseRound(parts[2])
		if err != nil {
			return model.Event{}, fmt.Errorf("event %q: %w", spec, err)
		}
		ev.Round = round
	}
	return ev, nil
}

type importOptions struct {
	target
	format         string
	strict         bool
	updateExisting bool
	createMissing  bool
	startlist      string
}

func newImportCmd(state *loaded) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a start list or a results list",
	}
	cmd.AddCommand(
		newImportKindCmd(state, core.ImportStartlist),
		newImportKindCmd(state, core.ImportResults),
	)
	return cmd
}

func newImportKindCmd(state *loaded, kind core.ImportKind) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   string(kind) + " FILE",
		Short: "Import a " + string(kind) + " file and print the per-row report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, state, kind, opts, args[0])
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.format, "format", "", "Header dialect: pzla or international (default IMPORT_DEFAULT_FORMAT)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Stop at the first bad row (default IMPORT_STRICT)")
	cmd.Flags().BoolVar(&opts.updateExisting, "update-existing", false, "Overwrite stored records that differ (default IMPORT_UPDATE_EXISTING)")
	cmd.Flags().BoolVar(&opts.createMissing, "create-missing", true, "Create athletes not found in the store (default IMPORT_CREATE_MISSING_ATHLETES)")
	if kind == core.ImportResults {
		cmd.Flags().StringVar(&opts.startlist, "startlist", "", "Start list imported first, for dry runs against a scratch competition")
	}
	return cmd
}

func runImport(cmd *cobra.Command, state *loaded, kind core.ImportKind, opts importOptions, path string) error {
	ctx := core.ContextWithSource(cmd.Context(), "cli")

	app, err := application.Open(ctx, state.cfg)
	if err != nil {
		return withCode(exitStoreError, err)
	}
	defer app.Close()

	competitionID, _, err := opts.resolve(ctx, app.Service)
	if err != nil {
		return err
	}

	base := core.ImportRequest{
		CompetitionID: competitionID,
		Format:        app.Defaults.Format,
		Mode:          app.Defaults.Mode,
		Policy:        app.Defaults.Policy,
	}
	flags := cmd.Flags()
	if opts.format != "" {
		if base.Format, err = rows.ParseFormat(opts.format); err != nil {
			return withCode(exitUsage, err)
		}
	}
	if flags.Changed("strict") {
		base.Mode = rows.BestEffort
		if opts.strict {
			base.Mode = rows.Strict
		}
	}
	if flags.Changed("update-existing") {
		base.Policy.UpdateExisting = opts.updateExisting
	}
	if flags.Changed("create-missing") {
		base.Policy.CreateMissingAthletes = opts.createMissing
	}

	if opts.startlist != "" {
		pre, err := importFile(cmd, state, app.Service.ImportStartlist, base, opts.startlist)
		if err != nil {
			return err
		}
		slog.Info("start list imported", "file", opts.startlist,
			"created", pre.Summary.Created, "errors", pre.Summary.Errors)
	}

	run := app.Service.ImportStartlist
	if kind == core.ImportResults {
		run = app.Service.ImportResults
	}
	res, err := importFile(cmd, state, run, base, path)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if res.Aborted || res.Summary.Errors > 0 {
		return withCode(exitRowErrors, fmt.Errorf("%d of %d rows failed", res.Summary.Errors, res.Summary.Total))
	}
	return nil
}

func importFile(cmd *cobra.Command, state *loaded, run func(context.Context, core.ImportRequest) (*core.ImportResult, error), req core.ImportRequest, path string) (*core.ImportResult, error) {
	data, err := readInput(cmd, path, state.cfg.Import.MaxFileSize)
	if err != nil {
		return nil, err
	}
	req.FileName = filepath.Base(path)
	req.Data = data

	ctx := core.ContextWithSource(cmd.Context(), "cli")
	res, err := run(ctx, req)
	if err != nil {
		slog.Error("import failed", "file", req.FileName, "error", err)
		return nil, withCode(exitFailure, core.NewUserError(err))
	}
	return res, nil
}
