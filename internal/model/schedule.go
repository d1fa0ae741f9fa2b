package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleState is the publication state of a schedule.
type ScheduleState string

const (
	ScheduleDraft     ScheduleState = "draft"
	SchedulePublished ScheduleState = "published"
)

// Timeline identifies the execution resource an item runs on.
// Items on the same timeline never overlap; track and field run concurrently.
type Timeline string

const (
	TimelineTrack Timeline = "track"
	TimelineField Timeline = "field"
)

// Schedule is a named, versioned minute program for one competition.
type Schedule struct {
	ID            uuid.UUID      `json:"id"`
	CompetitionID uuid.UUID      `json:"competitionId"`
	Name          string         `json:"name"`
	Version       int            `json:"version"`
	State         ScheduleState  `json:"state"`
	Items         []ScheduleItem `json:"items"`
	CreatedAt     time.Time      `json:"createdAt"`
	PublishedAt   *time.Time     `json:"publishedAt,omitempty"`
}

// Publish moves a draft schedule to the published state.
func (s *Schedule) Publish(at time.Time) error {
	if s.State != ScheduleDraft {
		return fmt.Errorf("%w: schedule %s is %s", ErrInvalidTransition, s.ID, s.State)
	}
	s.State = SchedulePublished
	s.PublishedAt = &at
	return nil
}

// ScheduleItem places one event on a timeline.
type ScheduleItem struct {
	ID          uuid.UUID     `json:"id"`
	ScheduleID  uuid.UUID     `json:"scheduleId"`
	EventID     uuid.UUID     `json:"eventId"`
	Order       int           `json:"order"`
	Timeline    Timeline      `json:"timeline"`
	StartTime   time.Time     `json:"startTime"`
	ActualStart *time.Time    `json:"actualStart,omitempty"`
	Duration    time.Duration `json:"duration"`
	Round       Round         `json:"round"`
	Series      int           `json:"series,omitempty"`
	Finalists   int           `json:"finalists,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// End returns the scheduled end of the item's time window.
func (i ScheduleItem) End() time.Time {
	return i.StartTime.Add(i.Duration)
}

// Overlaps reports whether two items share any part of their time windows.
func (i ScheduleItem) Overlaps(other ScheduleItem) bool {
	return i.StartTime.Before(other.End()) && other.StartTime.Before(i.End())
}
