package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseRound(t *testing.T) {
	tests := []struct {
		in      string
		want    Round
		wantErr bool
	}{
		{"", RoundQualification, false},
		{"FINAL", RoundFinal, false},
		{"final", RoundFinal, false},
		{"Finał", RoundFinal, false},
		{"Półfinał", RoundSemifinal, false},
		{"QUALIFICATION_B", RoundQualificationB, false},
		{"Grupa C", RoundQualificationC, false},
		{"eliminacje", RoundQualification, false},
		{"quarterfinal", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRound(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRound(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRound(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRound(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundStage(t *testing.T) {
	if RoundQualificationA.Stage() != RoundQualification.Stage() {
		t.Error("qualification groups should share the qualification stage")
	}
	if !(RoundQualificationC.Stage() < RoundSemifinal.Stage() && RoundSemifinal.Stage() < RoundFinal.Stage()) {
		t.Error("stages should order qualification < semifinal < final")
	}
}

func TestRelayTeamAssign(t *testing.T) {
	var team RelayTeam
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	if err := team.Assign(1, a, false); err != nil {
		t.Fatalf("Assign(1, a) error = %v", err)
	}
	if err := team.Assign(1, b, false); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("second runner on position 1: error = %v, want ErrSlotTaken", err)
	}
	if err := team.Assign(1, b, true); err != nil {
		t.Errorf("reserve on position 1: error = %v", err)
	}
	if err := team.Assign(2, a, false); !errors.Is(err, ErrAlreadyInTeam) {
		t.Errorf("same athlete twice: error = %v, want ErrAlreadyInTeam", err)
	}
	if err := team.Assign(7, c, false); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("position 7: error = %v, want ErrInvalidPosition", err)
	}
	if err := team.Assign(0, c, false); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("position 0: error = %v, want ErrInvalidPosition", err)
	}

	members := team.Members()
	if len(members) != 2 {
		t.Fatalf("Members() len = %d, want 2", len(members))
	}
	if members[0].AthleteID != a || members[0].Reserve {
		t.Errorf("Members()[0] = %+v, want runner a", members[0])
	}
	if !members[1].Reserve || members[1].AthleteID != b {
		t.Errorf("Members()[1] = %+v, want reserve b", members[1])
	}

	if err := team.Release(1); err != nil {
		t.Fatalf("Release(1) error = %v", err)
	}
	if _, ok := team.Runner(1); ok {
		t.Error("Runner(1) still occupied after Release")
	}
}

func TestRelayTeamRelease(t *testing.T) {
	var team RelayTeam
	a, b := uuid.New(), uuid.New()
	if err := team.Assign(2, a, false); err != nil {
		t.Fatal(err)
	}

	if id, ok := team.Runner(2); !ok || id != a {
		t.Errorf("Runner(2) = %v, %v, want %v", id, ok, a)
	}
	if err := team.Release(2); err != nil {
		t.Fatalf("Release(2) error = %v", err)
	}
	if _, ok := team.Runner(2); ok {
		t.Error("Runner(2) still held after Release")
	}
	if err := team.Assign(2, b, false); err != nil {
		t.Errorf("Assign after Release error = %v", err)
	}
	if err := team.Release(7); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Release(7) error = %v, want ErrInvalidPosition", err)
	}
	if _, ok := team.Runner(0); ok {
		t.Error("Runner(0) reported a runner")
	}
}

func TestRelayTeamSetMembers(t *testing.T) {
	var team RelayTeam
	a := uuid.New()
	err := team.SetMembers([]RelayTeamMember{
		{AthleteID: a, Position: 3},
		{AthleteID: uuid.New(), Position: 3},
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("SetMembers with duplicate slot: error = %v, want ErrSlotTaken", err)
	}
}

func TestSchedulePublish(t *testing.T) {
	s := Schedule{ID: uuid.New(), State: ScheduleDraft}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	if err := s.Publish(now); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if s.State != SchedulePublished || s.PublishedAt == nil {
		t.Errorf("after Publish state = %q, publishedAt = %v", s.State, s.PublishedAt)
	}
	if err := s.Publish(now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Publish error = %v, want ErrInvalidTransition", err)
	}
}

func TestScheduleItemOverlaps(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	a := ScheduleItem{StartTime: start, Duration: 10 * time.Minute}
	b := ScheduleItem{StartTime: start.Add(10 * time.Minute), Duration: 5 * time.Minute}
	c := ScheduleItem{StartTime: start.Add(5 * time.Minute), Duration: 10 * time.Minute}

	if a.Overlaps(b) {
		t.Error("back-to-back items should not overlap")
	}
	if !a.Overlaps(c) {
		t.Error("items sharing minutes 5-10 should overlap")
	}
}
