package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/athletix/internal/charset"
	"github.com/JonMunkholm/athletix/internal/config"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/schedule"
)

// OptionsFromConfig translates loaded configuration into service options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	normalizer, err := charset.NewNormalizer(
		charset.NewAlphabet(strings.ToLower(cfg.Encoding.Alphabet), cfg.Encoding.ExtraLetters),
		cfg.Encoding.Legacy,
	)
	if err != nil {
		return Options{}, fmt.Errorf("encoding: %w", err)
	}

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return Options{}, fmt.Errorf("schedule timezone: %w", err)
	}

	points, err := results.ParsePointsTable(strings.Join(cfg.Results.Points, ","))
	if err != nil {
		return Options{}, fmt.Errorf("points table: %w", err)
	}

	return Options{
		Normalizer: normalizer,
		Schedule: schedule.Config{
			DefaultBreak:         cfg.Schedule.DefaultBreak,
			DefaultTrackDuration: cfg.Schedule.DefaultTrackDuration,
			DefaultFieldDuration: cfg.Schedule.DefaultFieldDuration,
			PerSeries:            cfg.Schedule.PerSeries,
			PerAthlete:           cfg.Schedule.PerAthlete,
			Lanes:                cfg.Schedule.Lanes,
		},
		Location:      loc,
		SeasonStart:   time.Month(cfg.Results.SeasonStartMonth),
		WindLimit:     cfg.Results.WindLimit,
		Points:        points,
		MaxFileSize:   cfg.Import.MaxFileSize,
		MaxConcurrent: cfg.Import.MaxConcurrent,
		MaxWait:       cfg.Import.MaxWaitTime,
		SubmitWorkers: cfg.Import.SubmitWorkers,
	}, nil
}

// ImportDefaults are the request values used when a caller leaves them out.
type ImportDefaults struct {
	Format rows.Format
	Mode   rows.Mode
	Policy reconcile.Policy
}

// ImportDefaultsFromConfig reads the default format, mode and policy.
func ImportDefaultsFromConfig(cfg *config.Config) (ImportDefaults, error) {
	format, err := rows.ParseFormat(cfg.Import.DefaultFormat)
	if err != nil {
		return ImportDefaults{}, err
	}
	d := ImportDefaults{
		Format: format,
		Policy: reconcile.Policy{
			UpdateExisting:        cfg.Import.UpdateExisting,
			CreateMissingAthletes: cfg.Import.CreateMissingAthletes,
		},
	}
	if cfg.Import.Strict {
		d.Mode = rows.Strict
	}
	return d, nil
}
