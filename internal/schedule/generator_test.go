package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
)

func ev(discipline string, round model.Round, series, finalists int) model.Event {
	return model.Event{
		ID:         uuid.New(),
		Discipline: discipline,
		Round:      round,
		Series:     series,
		Finalists:  finalists,
	}
}

func at(h, m int) time.Time {
	return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
}

func byEvent(items []model.ScheduleItem) map[uuid.UUID]model.ScheduleItem {
	out := make(map[uuid.UUID]model.ScheduleItem, len(items))
	for _, it := range items {
		out[it.EventID] = it
	}
	return out
}

func TestGenerateTrackBreaks(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	brk := 5 * time.Minute

	track := []model.Event{
		ev("100m", model.RoundFinal, 2, 0),
		ev("400m", model.RoundFinal, 2, 0),
		ev("800m", model.RoundFinal, 3, 0),
	}
	field := []model.Event{
		ev("Long jump", model.RoundFinal, 0, 0),
	}

	items, err := g.Generate(Request{Start: at(10, 0), Break: &brk, Track: track, Field: field})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("Generate() items = %d, want 4", len(items))
	}

	got := byEvent(items)
	wantStarts := []time.Time{at(10, 0), at(10, 15), at(10, 30)}
	wantDur := []time.Duration{10 * time.Minute, 10 * time.Minute, 15 * time.Minute}
	for i, e := range track {
		it := got[e.ID]
		if !it.StartTime.Equal(wantStarts[i]) {
			t.Errorf("track[%d] start = %s, want %s", i, it.StartTime.Format("15:04"), wantStarts[i].Format("15:04"))
		}
		if it.Duration != wantDur[i] {
			t.Errorf("track[%d] duration = %s, want %s", i, it.Duration, wantDur[i])
		}
		if it.Timeline != model.TimelineTrack {
			t.Errorf("track[%d] timeline = %s", i, it.Timeline)
		}
	}

	lj := got[field[0].ID]
	if !lj.StartTime.Equal(at(10, 0)) {
		t.Errorf("field start = %s, want 10:00", lj.StartTime.Format("15:04"))
	}
	if lj.Timeline != model.TimelineField {
		t.Errorf("field timeline = %s", lj.Timeline)
	}

	// Track first on equal start times, then by time.
	if items[0].EventID != track[0].ID || items[1].EventID != field[0].ID {
		t.Errorf("order at 10:00 = %v, %v, want track then field", items[0].EventID, items[1].EventID)
	}
	for i, it := range items {
		if it.Order != i+1 {
			t.Errorf("items[%d].Order = %d, want %d", i, it.Order, i+1)
		}
	}
}

func TestGenerateNoOverlapPerTimeline(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	brk := time.Duration(0)

	track := []model.Event{
		ev("100m", model.RoundQualification, 0, 24),
		ev("200m", model.RoundFinal, 0, 0),
		ev("100m", model.RoundFinal, 0, 8),
	}
	field := []model.Event{
		ev("Shot put", model.RoundFinal, 0, 12),
		ev("High jump", model.RoundFinal, 0, 0),
	}

	items, err := g.Generate(Request{Start: at(9, 0), Break: &brk, Track: track, Field: field})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for i := range items {
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.Timeline == b.Timeline && a.Overlaps(b) {
				t.Errorf("items %d and %d overlap on %s", i, j, a.Timeline)
			}
		}
	}

	got := byEvent(items)
	if d := got[track[0].ID].Duration; d != 15*time.Minute {
		t.Errorf("24 finalists over 8 lanes = %s, want 15m", d)
	}
	if d := got[field[0].ID].Duration; d != 72*time.Minute {
		t.Errorf("12 field finalists = %s, want 72m", d)
	}
	if d := got[field[1].ID].Duration; d != 60*time.Minute {
		t.Errorf("default field duration = %s, want 60m", d)
	}
}

func TestOrderRounds(t *testing.T) {
	final := ev("100m", model.RoundFinal, 0, 0)
	semi := ev("100m", model.RoundSemifinal, 0, 0)
	qa := ev("100m", model.RoundQualificationA, 0, 0)
	lj := ev("Long jump", model.RoundFinal, 0, 0)
	qb := ev("100m", model.RoundQualificationB, 0, 0)
	hurdles := ev("110mH", model.RoundFinal, 0, 0)

	in := []model.Event{final, lj, semi, qa, hurdles, qb}
	got := orderRounds(in)

	want := []model.Event{qa, qb, lj, semi, hurdles, final}
	if len(got) != len(want) {
		t.Fatalf("orderRounds() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("orderRounds()[%d] = %s %s, want %s %s", i,
				got[i].Discipline, got[i].Round, want[i].Discipline, want[i].Round)
		}
	}
}

func TestOrderRoundsQualificationGroups(t *testing.T) {
	qc := ev("Long jump", model.RoundQualificationC, 0, 0)
	qb := ev("Long jump", model.RoundQualificationB, 0, 0)
	qa := ev("Long jump", model.RoundQualificationA, 0, 0)
	final := ev("Long jump", model.RoundFinal, 0, 0)

	got := orderRounds([]model.Event{qb, final, qc, qa})
	want := []model.Round{model.RoundQualificationA, model.RoundQualificationB, model.RoundQualificationC, model.RoundFinal}
	for i, r := range want {
		if got[i].Round != r {
			t.Errorf("orderRounds()[%d] = %s, want %s", i, got[i].Round, r)
		}
	}

	start := at(10, 0)
	items, err := NewGenerator(Config{}).Generate(Request{Start: start, Field: []model.Event{qb, qa}})
	if err != nil {
		t.Fatal(err)
	}
	if items[0].EventID != qa.ID || !items[0].StartTime.Equal(start) {
		t.Errorf("first item = %s at %s, want group A at %s", items[0].EventID, items[0].StartTime, start)
	}
}

func TestOrderRoundsKeepsTieOrder(t *testing.T) {
	first := ev("400m", model.RoundFinal, 0, 0)
	second := ev("400m", model.RoundFinal, 0, 0)

	got := orderRounds([]model.Event{first, second})
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Error("orderRounds() reordered two finals of one discipline")
	}
}

func TestGenerateErrors(t *testing.T) {
	g := NewGenerator(Config{})
	dup := ev("100m", model.RoundFinal, 0, 0)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"no events", Request{Start: at(10, 0)}, ErrNoEvents},
		{"duplicate across timelines", Request{Start: at(10, 0), Track: []model.Event{dup}, Field: []model.Event{dup}}, ErrDuplicateEvent},
		{"zero start", Request{Track: []model.Event{dup}}, ErrInvalidStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Generate(tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateDefaultBreak(t *testing.T) {
	g := NewGenerator(DefaultConfig())
	a, b := ev("100m", model.RoundFinal, 0, 0), ev("200m", model.RoundFinal, 0, 0)

	items, err := g.Generate(Request{Start: at(12, 0), Track: []model.Event{a, b}})
	if err != nil {
		t.Fatal(err)
	}
	if got := byEvent(items)[b.ID].StartTime; !got.Equal(at(12, 15)) {
		t.Errorf("second start = %s, want 12:15 (10m default + 5m break)", got.Format("15:04"))
	}
}

func TestParseStart(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	got, err := ParseStart("2025-06-01", "10:00", loc)
	if err != nil {
		t.Fatalf("ParseStart() error = %v", err)
	}
	if got.Hour() != 10 || got.Location() != loc {
		t.Errorf("ParseStart() = %v", got)
	}
	if _, err := ParseStart("01.06.2025", "10:00", loc); !errors.Is(err, ErrInvalidStart) {
		t.Errorf("ParseStart(bad date) error = %v, want ErrInvalidStart", err)
	}
}
