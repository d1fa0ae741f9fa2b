package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/store/memory"
)

type fixture struct {
	svc    *Service
	store  *memory.Store
	comp   model.Competition
	events map[string]model.Event
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	svc := NewService(st, opts)

	comp, err := svc.CreateCompetition(ctx, model.Competition{
		Name:      "Mityng Lekkoatletyczny",
		StartDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateCompetition() error = %v", err)
	}

	f := fixture{svc: svc, store: st, comp: comp, events: make(map[string]model.Event)}
	for name, ev := range map[string]model.Event{
		"1500m":   {Discipline: "1500m", Kind: model.Track, Series: 2},
		"1500m-q": {Discipline: "1500m", Kind: model.Track, Round: model.RoundQualification},
		"100m":    {Discipline: "100m", Kind: model.Track, WindMeasured: true, Finalists: 8},
		"4x100m":  {Discipline: "4x100m", Kind: model.Track},
		"lj":      {Discipline: "Skok w dal", Kind: model.Field, Finalists: 12},
	} {
		ev.CompetitionID = comp.ID
		created, err := svc.CreateEvent(ctx, ev)
		if err != nil {
			t.Fatalf("CreateEvent(%s) error = %v", name, err)
		}
		f.events[name] = created
	}
	return f
}

func csv(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

var startlist = csv(
	"Nazwisko;Imię;Data urodzenia;Klub;Konkurencja;Runda;Wynik zgłoszeniowy;Rekord życiowy;Licencja",
	"Kowalski;Jan;12.03.2001;AZS Warszawa;1500m;Finał;3:52.10;3:46.10;PL123",
	"Nowak;Anna;1999;KS Gdańsk;100m;;11,85;;",
	"Wiśniewska;Ewa;05.07.2003;;100m;;'12.10';;",
	"Zieliński;Piotr;;;Rzut oszczepem;;60,10;;",
	"Kowalski;Jan;12.03.2001;AZS Warszawa",
)

func TestImportStartlist(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	policy := reconcile.Policy{CreateMissingAthletes: true}

	res, err := f.svc.ImportStartlist(ctx, ImportRequest{
		CompetitionID: f.comp.ID,
		FileName:      "lista.csv",
		Data:          startlist,
		Format:        rows.FormatPZLA,
		Policy:        policy,
	})
	if err != nil {
		t.Fatalf("ImportStartlist() error = %v", err)
	}

	want := ImportSummary{Total: 5, Created: 3, Errors: 2}
	if res.Summary != want {
		t.Errorf("Summary = %+v, want %+v", res.Summary, want)
	}
	if res.Delimiter != ";" || res.Encoding != "utf-8" {
		t.Errorf("Delimiter = %q, Encoding = %q", res.Delimiter, res.Encoding)
	}

	codes := map[int]string{}
	for _, o := range res.Rows {
		codes[o.Line] = o.Code
	}
	if codes[5] != "ROW004" {
		t.Errorf("line 5 code = %q, want ROW004 (unknown event)", codes[5])
	}
	if codes[6] != "ROW001" {
		t.Errorf("line 6 code = %q, want ROW001 (column count)", codes[6])
	}

	a, err := f.store.AthleteByLicense(ctx, "PL123")
	if err != nil {
		t.Fatalf("AthleteByLicense() error = %v", err)
	}
	if got := a.PersonalBests["1500m"]; got != mark.MustParse("3:46.10", mark.Time) {
		t.Errorf("PB 1500m = %v, want 3:46.10", got)
	}
	reg, err := f.store.Registration(ctx, a.ID, f.events["1500m"].ID)
	if err != nil {
		t.Fatalf("Registration() error = %v", err)
	}
	if reg.SeedMark != mark.MustParse("3:52.10", mark.Time) {
		t.Errorf("seed = %v, want 3:52.10", reg.SeedMark)
	}
}

func TestImportStartlistIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	req := ImportRequest{
		CompetitionID: f.comp.ID,
		Data:          startlist,
		Policy:        reconcile.Policy{CreateMissingAthletes: true},
	}

	if _, err := f.svc.ImportStartlist(ctx, req); err != nil {
		t.Fatal(err)
	}
	athletes, regs := f.store.Counts()

	second, err := f.svc.ImportStartlist(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if second.Summary.Created != 0 || second.Summary.Skipped != 3 {
		t.Errorf("second run Summary = %+v, want 0 created and 3 skipped", second.Summary)
	}
	for _, o := range second.Rows {
		if o.Status == RowSkipped && o.Code != "DUP001" {
			t.Errorf("line %d code = %q, want DUP001", o.Line, o.Code)
		}
	}

	// The same file saved by a legacy tool matches the same athletes.
	legacy, err := charmap.Windows1250.NewEncoder().String(string(startlist))
	if err != nil {
		t.Fatal(err)
	}
	req.Data = []byte(legacy)
	third, err := f.svc.ImportStartlist(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if third.Encoding != "windows-1250" {
		t.Errorf("legacy Encoding = %q, want windows-1250", third.Encoding)
	}

	gotAthletes, gotRegs := f.store.Counts()
	if gotAthletes != athletes || gotRegs != regs {
		t.Errorf("after re-import athletes=%d regs=%d, want %d and %d", gotAthletes, gotRegs, athletes, regs)
	}
}

func TestImportStartlistPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("no creation skips unmatched", func(t *testing.T) {
		f := newFixture(t, Options{})
		res, err := f.svc.ImportStartlist(ctx, ImportRequest{CompetitionID: f.comp.ID, Data: startlist})
		if err != nil {
			t.Fatal(err)
		}
		if res.Summary.Skipped != 3 || res.Summary.Created != 0 {
			t.Errorf("Summary = %+v, want 3 skipped", res.Summary)
		}
		for _, o := range res.Rows {
			if o.Status == RowSkipped && o.Code != "REC001" {
				t.Errorf("line %d code = %q, want REC001", o.Line, o.Code)
			}
		}
	})

	t.Run("update existing changes the seed", func(t *testing.T) {
		f := newFixture(t, Options{})
		req := ImportRequest{CompetitionID: f.comp.ID, Data: startlist, Policy: reconcile.Policy{CreateMissingAthletes: true}}
		if _, err := f.svc.ImportStartlist(ctx, req); err != nil {
			t.Fatal(err)
		}

		req.Data = csv(
			"Nazwisko;Imię;Konkurencja;Runda;Wynik zgłoszeniowy;Licencja",
			"Kowalski;Jan;1500m;F;3:49.00;PL123",
		)
		req.Policy.UpdateExisting = true
		res, err := f.svc.ImportStartlist(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if res.Summary.Updated != 1 {
			t.Errorf("Summary = %+v, want 1 updated", res.Summary)
		}
	})

	t.Run("strict mode stops at the first bad row", func(t *testing.T) {
		f := newFixture(t, Options{})
		res, err := f.svc.ImportStartlist(ctx, ImportRequest{
			CompetitionID: f.comp.ID,
			Data:          startlist,
			Policy:        reconcile.Policy{CreateMissingAthletes: true},
			Mode:          rows.Strict,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !res.Aborted || res.Summary.Total != 4 || res.Summary.Errors != 1 {
			t.Errorf("Aborted = %v, Summary = %+v, want abort after 4 rows", res.Aborted, res.Summary)
		}
	})
}

func TestImportRejectsInput(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t, Options{MaxFileSize: 16})
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, rows.ErrEmptyInput},
		{"blank lines only", []byte("\r\n\r\n"), rows.ErrEmptyInput},
		{"too large", startlist, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ImportStartlist(ctx, ImportRequest{CompetitionID: f.comp.ID, Data: tt.data})
			if !errors.Is(err, tt.want) {
				t.Errorf("ImportStartlist() error = %v, want %v", err, tt.want)
			}
		})
	}

	t.Run("busy", func(t *testing.T) {
		f := newFixture(t, Options{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond})
		if !f.svc.Limiter().TryAcquire() {
			t.Fatal("TryAcquire failed")
		}
		defer f.svc.Limiter().Release()

		_, err := f.svc.ImportStartlist(ctx, ImportRequest{CompetitionID: f.comp.ID, Data: startlist})
		if !errors.Is(err, ErrTooManyImports) {
			t.Errorf("ImportStartlist() error = %v, want ErrTooManyImports", err)
		}
	})
}

func TestImportResults(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	policy := reconcile.Policy{CreateMissingAthletes: true}

	if _, err := f.svc.ImportStartlist(ctx, ImportRequest{CompetitionID: f.comp.ID, Data: startlist, Policy: policy}); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.ImportResults(ctx, ImportRequest{
		CompetitionID: f.comp.ID,
		Data: csv(
			"Nazwisko;Imię;Konkurencja;Runda;Wynik;Wiatr;Uwagi",
			"Kowalski;Jan;1500m;Finał;3:45.00;;PB",
			"Nowak;Anna;100m;;11,70;+1,2;",
			"Wiśniewska;Ewa;100m;;;;DNF",
			"Nieznany;Adam;100m;;12.00;;",
			"Kowalski;Jan;100m;;11.00;;",
			"Nowak;Anna;100m;;abc;;",
		),
		Policy: policy,
	})
	if err != nil {
		t.Fatalf("ImportResults() error = %v", err)
	}

	want := map[int]struct {
		status RowStatus
		code   string
	}{
		2: {RowCreated, ""},
		3: {RowCreated, ""},
		4: {RowCreated, ""},
		5: {RowSkipped, "REC001"},
		6: {RowSkipped, "REC003"},
		7: {RowError, "MARK001"},
	}
	for _, o := range res.Rows {
		w := want[o.Line]
		if o.Status != w.status || o.Code != w.code {
			t.Errorf("line %d = (%s, %q), want (%s, %q)", o.Line, o.Status, o.Code, w.status, w.code)
		}
	}

	a, _ := f.store.AthleteByLicense(ctx, "PL123")
	stored, err := f.store.ResultsByAthlete(ctx, a.ID)
	if err != nil || len(stored) != 1 {
		t.Fatalf("ResultsByAthlete() = %d results, %v", len(stored), err)
	}
	if !stored[0].IsPersonalBest {
		t.Error("3:45.00 against PB 3:46.10 should be a personal best")
	}

	sprint, _ := f.svc.EventResults(ctx, f.events["100m"].ID)
	if len(sprint) != 2 || !sprint[0].IsValid || !sprint[1].IsDNF {
		t.Errorf("100m results = %+v, want valid mark then DNF", sprint)
	}
}

func TestImportRelayResults(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	data := csv(
		"Sztafeta;Konkurencja;Wynik",
		"AZS Warszawa I;4x100m;42,15",
	)

	res, err := f.svc.ImportResults(ctx, ImportRequest{CompetitionID: f.comp.ID, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Skipped != 1 || res.Rows[0].Code != "REC001" {
		t.Errorf("without creation Summary = %+v, rows = %+v", res.Summary, res.Rows)
	}

	res, err = f.svc.ImportResults(ctx, ImportRequest{
		CompetitionID: f.comp.ID,
		Data:          data,
		Policy:        reconcile.Policy{CreateMissingAthletes: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Created != 1 || res.Rows[0].TeamID == uuid.Nil {
		t.Fatalf("relay import Summary = %+v, rows = %+v", res.Summary, res.Rows)
	}

	team, err := f.store.RelayTeam(ctx, res.Rows[0].TeamID)
	if err != nil || team.Name != "AZS Warszawa I" {
		t.Errorf("RelayTeam() = %+v, %v", team, err)
	}
}

func registered(t *testing.T, f fixture) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.ImportStartlist(ctx, ImportRequest{
		CompetitionID: f.comp.ID,
		Data: csv(
			"Nazwisko;Imię;Konkurencja;Runda;Rekord życiowy;Licencja",
			"Kowalski;Jan;1500m;Finał;3:46.10;PL123",
			"Kowalski;Jan;1500m;Eliminacje;;PL123",
		),
		Policy: reconcile.Policy{CreateMissingAthletes: true},
	}); err != nil {
		t.Fatal(err)
	}
	a, err := f.store.AthleteByLicense(ctx, "PL123")
	if err != nil {
		t.Fatal(err)
	}
	return a.ID
}

func TestSubmitResultPersonalBest(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	athlete := registered(t, f)
	day := time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)

	final, err := f.svc.SubmitResult(ctx, SubmitRequest{Submission: results.Submission{
		AthleteID: athlete, EventID: f.events["1500m"].ID, Raw: "3:45.00", Date: day,
	}})
	if err != nil {
		t.Fatalf("SubmitResult() error = %v", err)
	}
	if !final.IsPersonalBest {
		t.Error("3:45.00 vs PB 3:46.10 should be a personal best")
	}

	// A slower mark in another 1500m race does not touch the stored flag.
	slower, err := f.svc.SubmitResult(ctx, SubmitRequest{Submission: results.Submission{
		AthleteID: athlete, EventID: f.events["1500m-q"].ID, Raw: "3:47.00", Date: day.Add(time.Hour),
	}})
	if err != nil {
		t.Fatal(err)
	}
	if slower.IsPersonalBest || slower.IsSeasonBest {
		t.Errorf("slower mark pb=%v sb=%v, want false", slower.IsPersonalBest, slower.IsSeasonBest)
	}
	stored, err := f.store.ResultByKey(ctx, final.Key())
	if err != nil || !stored.IsPersonalBest {
		t.Errorf("stored final lost its PB flag: %+v, %v", stored, err)
	}

	// Resubmitting the same key replaces the result and is judged without it.
	again, err := f.svc.SubmitResult(ctx, SubmitRequest{Submission: results.Submission{
		AthleteID: athlete, EventID: f.events["1500m"].ID, Raw: "3:45.00", Date: day,
	}})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != final.ID || !again.IsPersonalBest {
		t.Errorf("resubmission id=%v pb=%v, want same id and PB", again.ID, again.IsPersonalBest)
	}
}

func TestSubmitResultRejects(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	athlete := registered(t, f)

	tests := []struct {
		name string
		sub  results.Submission
		want error
	}{
		{"malformed", results.Submission{AthleteID: athlete, EventID: f.events["1500m"].ID, Raw: "abc"}, results.ErrMalformedMark},
		{"not registered", results.Submission{AthleteID: athlete, EventID: f.events["100m"].ID, Raw: "11.00"}, ErrNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.SubmitResult(ctx, SubmitRequest{Submission: tt.sub}); !errors.Is(err, tt.want) {
				t.Errorf("SubmitResult() error = %v, want %v", err, tt.want)
			}
		})
	}

	stored, _ := f.store.ResultsByAthlete(ctx, athlete)
	if len(stored) != 0 {
		t.Errorf("rejected submissions stored %d results", len(stored))
	}
}

func TestSubmitResultsAndRank(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	ev := f.events["1500m"]

	var reqs []SubmitRequest
	for i, raw := range []string{"3:50.00", "DQ", "3:41.20", "3:50.00", "x1"} {
		a := model.Athlete{ID: uuid.New(), FirstName: "A", LastName: string(rune('a' + i))}
		if err := f.store.CreateAthlete(ctx, a); err != nil {
			t.Fatal(err)
		}
		if err := f.store.CreateRegistration(ctx, model.Registration{ID: uuid.New(), CompetitionID: f.comp.ID, EventID: ev.ID, AthleteID: a.ID}); err != nil {
			t.Fatal(err)
		}
		reqs = append(reqs, SubmitRequest{Submission: results.Submission{AthleteID: a.ID, EventID: ev.ID, Raw: raw}})
	}

	out, err := f.svc.SubmitResults(ctx, reqs)
	if err != nil {
		t.Fatalf("SubmitResults() error = %v", err)
	}
	for i, o := range out {
		if o.Index != i {
			t.Errorf("out[%d].Index = %d", i, o.Index)
		}
	}
	if out[4].Error == nil || out[4].Error.Code != "MARK001" {
		t.Errorf("out[4] = %+v, want MARK001", out[4])
	}

	ranked, err := f.svc.RankEvent(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 4 {
		t.Fatalf("RankEvent() = %d results, want 4", len(ranked))
	}
	wantPos := []int{1, 2, 2, 0}
	for i, r := range ranked {
		if r.Position != wantPos[i] {
			t.Errorf("ranked[%d].Position = %d, want %d", i, r.Position, wantPos[i])
		}
	}
	if !ranked[3].IsDQ {
		t.Error("DQ entry should rank last")
	}

	stored, _ := f.store.ResultByKey(ctx, ranked[0].Key())
	if stored.Position != 1 || stored.Points != 8 {
		t.Errorf("stored winner position=%d points=%d, want 1 and 8", stored.Position, stored.Points)
	}
}

func TestGenerateAndPublishSchedule(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	brk := 5

	req := ScheduleRequest{
		CompetitionID: f.comp.ID,
		Date:          "2025-06-14",
		Time:          "10:00",
		BreakMinutes:  &brk,
		TrackEventIDs: []uuid.UUID{f.events["100m"].ID, f.events["1500m"].ID},
		FieldEventIDs: []uuid.UUID{f.events["lj"].ID},
	}

	first, err := f.svc.GenerateSchedule(ctx, req)
	if err != nil {
		t.Fatalf("GenerateSchedule() error = %v", err)
	}
	if first.Version != 1 || first.State != model.ScheduleDraft || len(first.Items) != 3 {
		t.Fatalf("schedule = v%d %s with %d items", first.Version, first.State, len(first.Items))
	}
	starts := map[uuid.UUID]string{}
	for _, it := range first.Items {
		if it.ScheduleID != first.ID {
			t.Errorf("item %s ScheduleID = %s", it.ID, it.ScheduleID)
		}
		starts[it.EventID] = it.StartTime.Format("15:04")
	}
	// 100m: 8 finalists in 8 lanes is one series (5m), then a 5m break.
	if starts[f.events["100m"].ID] != "10:00" || starts[f.events["1500m"].ID] != "10:10" || starts[f.events["lj"].ID] != "10:00" {
		t.Errorf("starts = %v", starts)
	}

	second, err := f.svc.GenerateSchedule(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if second.Version != 2 {
		t.Errorf("second Version = %d, want 2", second.Version)
	}

	published, err := f.svc.PublishSchedule(ctx, second.ID)
	if err != nil || published.State != model.SchedulePublished || published.PublishedAt == nil {
		t.Fatalf("PublishSchedule() = %+v, %v", published, err)
	}
	if _, err := f.svc.PublishSchedule(ctx, second.ID); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("second PublishSchedule() error = %v, want ErrInvalidTransition", err)
	}

	at := time.Date(2025, 6, 14, 10, 3, 0, 0, time.UTC)
	updated, err := f.svc.RecordActualStart(ctx, second.ID, second.Items[0].ID, at)
	if err != nil {
		t.Fatal(err)
	}
	if got := updated.Items[0].ActualStart; got == nil || !got.Equal(at) {
		t.Errorf("ActualStart = %v, want %v", got, at)
	}
}

func TestGenerateScheduleErrors(t *testing.T) {
	f := newFixture(t, Options{})
	other := newFixture(t, Options{})
	ctx := context.Background()
	foreign := other.events["100m"]
	if err := f.store.CreateEvent(ctx, foreign); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  ScheduleRequest
		want error
	}{
		{"no events", ScheduleRequest{CompetitionID: f.comp.ID, Date: "2025-06-14", Time: "10:00"}, nil},
		{"bad time", ScheduleRequest{CompetitionID: f.comp.ID, Date: "2025-06-14", Time: "25:99", TrackEventIDs: []uuid.UUID{f.events["100m"].ID}}, nil},
		{"foreign event", ScheduleRequest{CompetitionID: f.comp.ID, Date: "2025-06-14", Time: "10:00", TrackEventIDs: []uuid.UUID{foreign.ID}}, ErrForeignEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GenerateSchedule(ctx, tt.req)
			if err == nil {
				t.Fatal("GenerateSchedule() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("GenerateSchedule() error = %v, want %v", err, tt.want)
			}
			if code := MapError(err).Code; !strings.HasPrefix(code, "SCH") {
				t.Errorf("MapError code = %q, want SCH*", code)
			}
		})
	}
}

func TestRelayAssignment(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	team, err := f.svc.CreateRelayTeam(ctx, f.events["4x100m"].ID, "AZS I")
	if err != nil {
		t.Fatal(err)
	}
	a, b := model.Athlete{ID: uuid.New()}, model.Athlete{ID: uuid.New()}
	for _, ath := range []model.Athlete{a, b} {
		if err := f.store.CreateAthlete(ctx, ath); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.svc.AssignRelayMember(ctx, team.ID, 1, a.ID, false); err != nil {
		t.Fatalf("AssignRelayMember() error = %v", err)
	}
	if _, err := f.svc.AssignRelayMember(ctx, team.ID, 1, b.ID, false); !errors.Is(err, model.ErrSlotTaken) {
		t.Errorf("second runner on slot 1 error = %v, want ErrSlotTaken", err)
	}
	got, err := f.svc.AssignRelayMember(ctx, team.ID, 1, b.ID, true)
	if err != nil {
		t.Fatalf("reserve on slot 1 error = %v", err)
	}
	if members := got.Members(); len(members) != 2 || !members[1].Reserve {
		t.Errorf("Members() = %+v", members)
	}
	if _, err := f.svc.AssignRelayMember(ctx, team.ID, 7, b.ID, false); !errors.Is(err, model.ErrInvalidPosition) {
		t.Errorf("position 7 error = %v, want ErrInvalidPosition", err)
	}

	got, err = f.svc.ReleaseRelayMember(ctx, team.ID, 1)
	if err != nil {
		t.Fatalf("ReleaseRelayMember() error = %v", err)
	}
	if _, held := got.Runner(1); held {
		t.Error("position 1 still has a runner after release")
	}
	if members := got.Members(); len(members) != 1 || !members[0].Reserve {
		t.Errorf("Members() after release = %+v, want the reserve only", members)
	}

	// The freed position takes a new runner, and the stored team agrees.
	if _, err := f.svc.AssignRelayMember(ctx, team.ID, 1, b.ID, false); err != nil {
		t.Fatalf("assign after release error = %v", err)
	}
	stored, err := f.svc.RelayTeam(ctx, team.ID)
	if err != nil {
		t.Fatal(err)
	}
	if id, held := stored.Runner(1); !held || id != b.ID {
		t.Errorf("Runner(1) = %v, %v, want %v", id, held, b.ID)
	}
	if _, err := f.svc.ReleaseRelayMember(ctx, team.ID, 0); !errors.Is(err, model.ErrInvalidPosition) {
		t.Errorf("release position 0 error = %v, want ErrInvalidPosition", err)
	}
}
