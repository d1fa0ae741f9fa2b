package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/charset"
	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/schedule"
	"github.com/JonMunkholm/athletix/internal/store"
)

// DefaultMaxFileSize is the import buffer limit when none is configured.
const DefaultMaxFileSize = 10 << 20

// Options configures a Service. Zero values select defaults.
type Options struct {
	Normalizer    *charset.Normalizer
	Schedule      schedule.Config
	Location      *time.Location
	SeasonStart   time.Month
	WindLimit     float64
	Points        results.PointsTable
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	// SubmitWorkers bounds the goroutines of SubmitResults.
	SubmitWorkers int
}

// Service provides the import, scheduling and result operations.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	store      store.Store
	engine     *reconcile.Engine
	classifier *results.Classifier
	generator  *schedule.Generator
	normalizer *charset.Normalizer
	limiter    *ImportLimiter

	loc           *time.Location
	points        results.PointsTable
	maxFileSize   int64
	submitWorkers int
	now           func() time.Time
}

// NewService creates a Service backed by st.
func NewService(st store.Store, opts Options) *Service {
	if opts.Normalizer == nil {
		opts.Normalizer = charset.Default()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Points == nil {
		opts.Points = results.DefaultPoints
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.SubmitWorkers <= 0 {
		opts.SubmitWorkers = 4
	}

	classifier := results.NewClassifier(opts.SeasonStart, opts.WindLimit)
	return &Service{
		store:         st,
		engine:        reconcile.NewEngine(st, classifier.Season),
		classifier:    classifier,
		generator:     schedule.NewGenerator(opts.Schedule),
		normalizer:    opts.Normalizer,
		limiter:       NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		loc:           opts.Location,
		points:        opts.Points,
		maxFileSize:   opts.MaxFileSize,
		submitWorkers: opts.SubmitWorkers,
		now:           time.Now,
	}
}

// Limiter exposes the import limiter for status reporting and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// CreateCompetition validates and stores a new competition.
func (s *Service) CreateCompetition(ctx context.Context, c model.Competition) (model.Competition, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return model.Competition{}, fmt.Errorf("%w: competition name is required", ErrInvalidInput)
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return model.Competition{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	if err := s.store.CreateCompetition(ctx, c); err != nil {
		return model.Competition{}, fmt.Errorf("create competition: %w", err)
	}
	return c, nil
}

// CreateEvent validates and stores a new event of an existing competition.
// The mark kind defaults to time for track and distance for field events.
func (s *Service) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	if _, err := s.store.Competition(ctx, ev.CompetitionID); err != nil {
		return model.Event{}, fmt.Errorf("competition %s: %w", ev.CompetitionID, err)
	}

	ev.Discipline = strings.TrimSpace(ev.Discipline)
	if ev.Discipline == "" {
		return model.Event{}, fmt.Errorf("%w: discipline is required", ErrInvalidInput)
	}
	kind, err := model.ParseDisciplineKind(string(ev.Kind))
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ev.Kind = kind
	if ev.Round == "" {
		ev.Round = model.RoundFinal
	}
	if !ev.Round.Valid() {
		return model.Event{}, fmt.Errorf("%w: unknown round %q", ErrInvalidInput, ev.Round)
	}
	if ev.Series < 0 || ev.Finalists < 0 {
		return model.Event{}, fmt.Errorf("%w: series and finalists must not be negative", ErrInvalidInput)
	}
	if ev.Kind == model.Field && ev.MarkKind == mark.Time {
		ev.MarkKind = mark.Distance
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	if err := s.store.CreateEvent(ctx, ev); err != nil {
		return model.Event{}, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}
