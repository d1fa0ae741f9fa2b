package results

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

var (
	run1500 = model.Event{ID: uuid.New(), Discipline: "1500m", Kind: model.Track, MarkKind: mark.Time, Round: model.RoundFinal}
	run100  = model.Event{ID: uuid.New(), Discipline: "100m", Kind: model.Track, MarkKind: mark.Time, Round: model.RoundFinal, WindMeasured: true}
	longJ   = model.Event{ID: uuid.New(), Discipline: "Long jump", Kind: model.Field, MarkKind: mark.Distance, Round: model.RoundFinal, WindMeasured: true}
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func wind(v float64) *float64 { return &v }

func TestClassifyPersonalBest(t *testing.T) {
	c := NewClassifier(time.January, 0)
	athlete := uuid.New()
	h := History{PersonalBest: mark.MustParse("3:46.10", mark.Time)}

	r, err := c.Classify(Submission{AthleteID: athlete, Raw: "3:45.00", Date: day(2025, 6, 1)}, run1500, h, Thresholds{})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !r.IsValid || !r.IsPersonalBest {
		t.Errorf("3:45.00 vs PB 3:46.10: valid=%v pb=%v, want both true", r.IsValid, r.IsPersonalBest)
	}
	if !r.IsSeasonBest {
		t.Error("first mark of the season should be a season best")
	}

	// A slower mark afterwards is not a PB; the earlier result is untouched.
	first := r
	h.Prior = append(h.Prior, PriorMark{Mark: first.Mark, Date: first.Date})
	slower, err := c.Classify(Submission{AthleteID: athlete, Raw: "3:47.00", Date: day(2025, 6, 8)}, run1500, h, Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	if slower.IsPersonalBest || slower.IsSeasonBest {
		t.Errorf("slower mark flagged pb=%v sb=%v", slower.IsPersonalBest, slower.IsSeasonBest)
	}
	if !first.IsPersonalBest {
		t.Error("earlier result lost its PB flag")
	}
}

func TestClassifyEqualIsNotBest(t *testing.T) {
	c := NewClassifier(time.January, 0)
	h := History{PersonalBest: mark.MustParse("7.45", mark.Distance)}

	r, err := c.Classify(Submission{AthleteID: uuid.New(), Raw: "7,45", Wind: wind(1.0), Date: day(2025, 6, 1)}, longJ, h, Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	if r.IsPersonalBest {
		t.Error("equalling the PB should not flag a PB")
	}
}

func TestClassifySeasonWindow(t *testing.T) {
	c := NewClassifier(time.January, 0)
	h := History{
		PersonalBest: mark.MustParse("10.40", mark.Time),
		SeasonBest:   model.SeasonMark{Mark: mark.MustParse("10.45", mark.Time), Season: 2024},
		Prior: []PriorMark{
			{Mark: mark.MustParse("10.60", mark.Time), Date: day(2025, 5, 1)},
			{Mark: mark.MustParse("10.30", mark.Time), Date: day(2025, 5, 2), WindAssisted: true},
		},
	}

	r, err := c.Classify(Submission{AthleteID: uuid.New(), Raw: "10.55", Wind: wind(0.5), Date: day(2025, 6, 1)}, run100, h, Thresholds{})
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsSeasonBest {
		t.Error("10.55 beats 10.60 from this season, want season best")
	}
	if r.IsPersonalBest {
		t.Error("10.55 does not beat the 10.40 PB")
	}
}

func TestClassifyWindAssisted(t *testing.T) {
	c := NewClassifier(time.January, 0)
	th := Thresholds{National: mark.MustParse("10.00", mark.Time)}

	r, err := c.Classify(Submission{AthleteID: uuid.New(), Raw: "9.98", Wind: wind(2.1), Date: day(2025, 6, 1)}, run100, History{}, th)
	if err != nil {
		t.Fatal(err)
	}
	if !r.IsValid || !r.IsWindAssisted {
		t.Errorf("valid=%v windAssisted=%v, want both true", r.IsValid, r.IsWindAssisted)
	}
	if r.IsPersonalBest || r.IsSeasonBest || r.IsNationalRecord {
		t.Error("wind-assisted mark must not set best or record flags")
	}

	legal, err := c.Classify(Submission{AthleteID: uuid.New(), Raw: "9.98", Wind: wind(2.0), Date: day(2025, 6, 1)}, run100, History{}, th)
	if err != nil {
		t.Fatal(err)
	}
	if !legal.IsNationalRecord || legal.IsWorldRecord {
		t.Errorf("+2.0 wind: nr=%v wr=%v, want nr only", legal.IsNationalRecord, legal.IsWorldRecord)
	}
}

func TestClassifyStatusAndMalformed(t *testing.T) {
	c := NewClassifier(time.January, 0)
	athlete := uuid.New()

	tests := []struct {
		name    string
		sub     Submission
		dnf     bool
		dns     bool
		dq      bool
		wantErr error
	}{
		{"explicit DQ ignores mark", Submission{AthleteID: athlete, Raw: "3:30.00", Status: StatusDQ}, false, false, true, nil},
		{"raw DNF token", Submission{AthleteID: athlete, Raw: "dnf"}, true, false, false, nil},
		{"polish NS token", Submission{AthleteID: athlete, Raw: "NS"}, false, true, false, nil},
		{"malformed", Submission{AthleteID: athlete, Raw: "abc"}, false, false, false, ErrMalformedMark},
		{"empty", Submission{AthleteID: athlete, Raw: ""}, false, false, false, ErrMalformedMark},
		{"no competitor", Submission{Raw: "3:40.00"}, false, false, false, ErrMissingCompetitor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Classify(tt.sub, run1500, History{}, Thresholds{})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Classify() error = %v, want %v", err, tt.wantErr)
				}
				if r.ID != uuid.Nil {
					t.Error("rejected submission produced a result")
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if r.IsValid || r.IsDNF != tt.dnf || r.IsDNS != tt.dns || r.IsDQ != tt.dq {
				t.Errorf("flags valid=%v dnf=%v dns=%v dq=%v", r.IsValid, r.IsDNF, r.IsDNS, r.IsDQ)
			}
			if r.IsPersonalBest || r.IsSeasonBest {
				t.Error("status results must not carry best flags")
			}
		})
	}
}

func TestSeasonStartMonth(t *testing.T) {
	indoor := NewClassifier(time.November, 0)
	if got := indoor.Season(day(2024, 11, 20)); got != 2025 {
		t.Errorf("Season(Nov 2024) = %d, want 2025", got)
	}
	if got := indoor.Season(day(2025, 3, 1)); got != 2025 {
		t.Errorf("Season(Mar 2025) = %d, want 2025", got)
	}
	if got := NewClassifier(time.January, 0).Season(day(2025, 12, 31)); got != 2025 {
		t.Errorf("calendar Season(Dec 2025) = %d, want 2025", got)
	}
}

func TestRank(t *testing.T) {
	ms := func(s string) mark.Mark { return mark.MustParse(s, mark.Time) }
	a, b, c, d, e, f := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()

	in := []model.Result{
		{AthleteID: a, IsDQ: true, Mark: ms("9.00")},
		{AthleteID: b, IsValid: true, Mark: ms("10.50")},
		{AthleteID: c, IsValid: true, Mark: ms("10.20")},
		{AthleteID: d, IsDNF: true},
		{AthleteID: e, IsValid: true, Mark: ms("10.50")},
		{AthleteID: f, IsValid: true, Mark: ms("10.70")},
	}

	got := Rank(in, DefaultPoints)

	want := []struct {
		id       uuid.UUID
		position int
		points   int
	}{
		{c, 1, 8},
		{b, 2, 7},
		{e, 2, 7},
		{f, 4, 5},
		{a, 0, 0},
		{d, 0, 0},
	}
	for i, w := range want {
		if got[i].AthleteID != w.id || got[i].Position != w.position || got[i].Points != w.points {
			t.Errorf("Rank()[%d] = (pos %d, pts %d), want (pos %d, pts %d)", i, got[i].Position, got[i].Points, w.position, w.points)
		}
	}
}

func TestRankDistanceHigherIsBetter(t *testing.T) {
	md := func(s string) mark.Mark { return mark.MustParse(s, mark.Distance) }
	in := []model.Result{
		{IsValid: true, Mark: md("7.10")},
		{IsValid: true, Mark: md("7.45")},
	}
	got := Rank(in, PointsTable{10})
	if got[0].Mark != md("7.45") || got[0].Points != 10 || got[1].Points != 0 {
		t.Errorf("Rank() = %+v", got)
	}
}

func TestParsePointsTable(t *testing.T) {
	got, err := ParsePointsTable("8, 7,6")
	if err != nil || len(got) != 3 || got.For(2) != 7 || got.For(4) != 0 {
		t.Errorf("ParsePointsTable() = %v, %v", got, err)
	}
	if _, err := ParsePointsTable("8,x"); err == nil {
		t.Error("ParsePointsTable(8,x) expected error")
	}
}
