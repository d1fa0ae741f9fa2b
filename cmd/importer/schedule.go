package main

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/athletix/internal/application"
	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/model"
)

type scheduleOptions struct {
	target
	name         string
	date         string
	start        string
	breakMinutes int
	track        []string
	field        []string
	publish      bool
}

func newScheduleCmd(state *loaded) *cobra.Command {
	var opts scheduleOptions

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate a competition schedule and print it",
		Long: "Orders track events back to back from the start time and runs field events\n" +
			"in parallel. Without --track/--field every event of the competition is\n" +
			"scheduled in creation order, split by kind.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, state, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.name, "name", "", "Schedule name")
	cmd.Flags().StringVar(&opts.date, "date", "", "Competition day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&opts.start, "time", "", "First start, HH:MM (required)")
	cmd.Flags().IntVar(&opts.breakMinutes, "break", -1, "Minutes between track events (default SCHEDULE_DEFAULT_BREAK)")
	cmd.Flags().StringArrayVar(&opts.track, "track", nil, "Track event ids in running order; repeatable")
	cmd.Flags().StringArrayVar(&opts.field, "field", nil, "Field event ids; repeatable")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "Publish the generated draft")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func runSchedule(cmd *cobra.Command, state *loaded, opts scheduleOptions) error {
	ctx := core.ContextWithSource(cmd.Context(), "cli")

	app, err := application.Open(ctx, state.cfg)
	if err != nil {
		return withCode(exitStoreError, err)
	}
	defer app.Close()

	competitionID, events, err := opts.resolve(ctx, app.Service)
	if err != nil {
		return err
	}

	req := core.ScheduleRequest{
		CompetitionID: competitionID,
		Name:          opts.name,
		Date:          opts.date,
		Time:          opts.start,
	}
	if opts.breakMinutes >= 0 {
		req.BreakMinutes = &opts.breakMinutes
	}
	if req.TrackEventIDs, err = parseIDs("track", opts.track); err != nil {
		return err
	}
	if req.FieldEventIDs, err = parseIDs("field", opts.field); err != nil {
		return err
	}
	if len(req.TrackEventIDs) == 0 && len(req.FieldEventIDs) == 0 {
		req.TrackEventIDs, req.FieldEventIDs = splitByKind(events)
	}

	sc, err := app.Service.GenerateSchedule(ctx, req)
	if err != nil {
		slog.Error("schedule generation failed", "competition_id", competitionID, "error", err)
		return withCode(exitUsage, core.NewUserError(err))
	}
	if opts.publish {
		if sc, err = app.Service.PublishSchedule(ctx, sc.ID); err != nil {
			return withCode(exitStoreError, err)
		}
	}
	return writeJSON(cmd.OutOrStdout(), sc)
}

func parseIDs(flag string, values []string) ([]uuid.UUID, error) {
	specs := joinSpecs(values)
	ids := make([]uuid.UUID, 0, len(specs))
	for _, s := range specs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, withCode(exitUsage, fmt.Errorf("invalid --%s id %q: %w", flag, s, err))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitByKind(events []model.Event) (track, field []uuid.UUID) {
	for _, ev := range events {
		if ev.Kind == model.Field {
			field = append(field, ev.ID)
		} else {
			track = append(track, ev.ID)
		}
	}
	return track, field
}
