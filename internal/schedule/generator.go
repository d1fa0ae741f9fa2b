// Package schedule builds the minute program of a competition.
//
// Track and field events run on two independent timelines that both start
// at the requested time. Items on one timeline are placed back to back with
// a fixed break between them; nothing is shifted across timelines. Within a
// discipline, qualification groups come first and back to back, then the
// semifinal, then the final. Otherwise the caller's order is kept.
package schedule

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
)

var (
	ErrNoEvents       = errors.New("no events to schedule")
	ErrDuplicateEvent = errors.New("event listed more than once")
	ErrInvalidStart   = errors.New("invalid start date or time")
)

// Config holds the duration rules.
type Config struct {
	DefaultBreak         time.Duration
	DefaultTrackDuration time.Duration
	DefaultFieldDuration time.Duration
	PerSeries            time.Duration
	PerAthlete           time.Duration
	Lanes                int
}

// DefaultConfig returns the rules used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		DefaultBreak:         5 * time.Minute,
		DefaultTrackDuration: 10 * time.Minute,
		DefaultFieldDuration: 60 * time.Minute,
		PerSeries:            5 * time.Minute,
		PerAthlete:           6 * time.Minute,
		Lanes:                8,
	}
}

// Request describes one generation run.
type Request struct {
	Start time.Time
	// Break overrides Config.DefaultBreak when non-nil.
	Break *time.Duration
	Track []model.Event
	Field []model.Event
}

// Generator assigns start times. It holds no state between calls.
type Generator struct {
	cfg Config
}

// NewGenerator creates a generator, filling zero config values with defaults.
func NewGenerator(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.DefaultTrackDuration <= 0 {
		cfg.DefaultTrackDuration = def.DefaultTrackDuration
	}
	if cfg.DefaultFieldDuration <= 0 {
		cfg.DefaultFieldDuration = def.DefaultFieldDuration
	}
	if cfg.PerSeries <= 0 {
		cfg.PerSeries = def.PerSeries
	}
	if cfg.PerAthlete <= 0 {
		cfg.PerAthlete = def.PerAthlete
	}
	if cfg.Lanes <= 0 {
		cfg.Lanes = def.Lanes
	}
	if cfg.DefaultBreak < 0 {
		cfg.DefaultBreak = def.DefaultBreak
	}
	return &Generator{cfg: cfg}
}

// Generate returns draft items covering every event exactly once, ordered by
// start time with track before field at equal times.
func (g *Generator) Generate(req Request) ([]model.ScheduleItem, error) {
	if len(req.Track)+len(req.Field) == 0 {
		return nil, ErrNoEvents
	}
	if req.Start.IsZero() {
		return nil, ErrInvalidStart
	}

	seen := make(map[uuid.UUID]bool, len(req.Track)+len(req.Field))
	for _, ev := range slices.Concat(req.Track, req.Field) {
		if seen[ev.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEvent, ev.ID)
		}
		seen[ev.ID] = true
	}

	gap := g.cfg.DefaultBreak
	if req.Break != nil {
		if *req.Break < 0 {
			return nil, fmt.Errorf("break must not be negative, got %s", *req.Break)
		}
		gap = *req.Break
	}

	items := append(
		g.place(orderRounds(req.Track), model.TimelineTrack, req.Start, gap),
		g.place(orderRounds(req.Field), model.TimelineField, req.Start, gap)...,
	)

	slices.SortStableFunc(items, func(a, b model.ScheduleItem) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(timelineRank(a.Timeline), timelineRank(b.Timeline))
	})
	for i := range items {
		items[i].Order = i + 1
	}
	return items, nil
}

func timelineRank(t model.Timeline) int {
	if t == model.TimelineTrack {
		return 0
	}
	return 1
}

// place lays events out sequentially on one timeline.
func (g *Generator) place(events []model.Event, timeline model.Timeline, start time.Time, gap time.Duration) []model.ScheduleItem {
	items := make([]model.ScheduleItem, 0, len(events))
	at := start
	for _, ev := range events {
		d := g.Duration(ev, timeline)
		items = append(items, model.ScheduleItem{
			ID:        uuid.New(),
			EventID:   ev.ID,
			Timeline:  timeline,
			StartTime: at,
			Duration:  d,
			Round:     ev.Round,
			Series:    ev.Series,
			Finalists: ev.Finalists,
		})
		at = at.Add(d + gap)
	}
	return items
}

// Duration is the slot length of an event. More series or finalists means a
// proportionally longer slot; the default applies when neither is declared.
func (g *Generator) Duration(ev model.Event, timeline model.Timeline) time.Duration {
	if timeline == model.TimelineTrack {
		switch {
		case ev.Series > 0:
			return time.Duration(ev.Series) * g.cfg.PerSeries
		case ev.Finalists > 0:
			series := (ev.Finalists + g.cfg.Lanes - 1) / g.cfg.Lanes
			return time.Duration(series) * g.cfg.PerSeries
		default:
			return g.cfg.DefaultTrackDuration
		}
	}

	if ev.Finalists > 0 {
		return time.Duration(ev.Finalists) * g.cfg.PerAthlete
	}
	return g.cfg.DefaultFieldDuration
}

// orderRounds enforces round order within each discipline while keeping the
// caller's order of disciplines. Each input slot of a discipline takes the
// next round of that discipline; when that round is a qualification, the
// discipline's remaining qualification groups follow it directly and the
// slots they would have used are dropped. Groups run A, B, C.
func orderRounds(events []model.Event) []model.Event {
	queues := make(map[string][]model.Event)
	for _, ev := range events {
		k := model.DisciplineKey(ev.Discipline)
		queues[k] = append(queues[k], ev)
	}
	for k, q := range queues {
		slices.SortStableFunc(q, func(a, b model.Event) int {
			if c := cmp.Compare(a.Round.Stage(), b.Round.Stage()); c != 0 || !a.Round.IsQualification() {
				return c
			}
			// QUALIFICATION sorts before the lettered groups.
			return cmp.Compare(a.Round, b.Round)
		})
		queues[k] = q
	}

	skip := make(map[string]int)
	out := make([]model.Event, 0, len(events))
	for _, slot := range events {
		k := model.DisciplineKey(slot.Discipline)
		if skip[k] > 0 {
			skip[k]--
			continue
		}

		q := queues[k]
		next := q[0]
		q = q[1:]
		out = append(out, next)

		if next.Round.IsQualification() {
			for len(q) > 0 && q[0].Round.IsQualification() {
				out = append(out, q[0])
				q = q[1:]
				skip[k]++
			}
		}
		queues[k] = q
	}
	return out
}

// ParseStart combines an ISO date ("2025-06-01") and clock time ("10:00" or
// "10:00:00") in loc.
func ParseStart(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q %q", ErrInvalidStart, date, clock)
}
