package core

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/model"
	"github.com/JonMunkholm/athletix/internal/reconcile"
	"github.com/JonMunkholm/athletix/internal/results"
	"github.com/JonMunkholm/athletix/internal/rows"
)

var (
	// ErrFileTooLarge rejects an import buffer above the configured limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrNotRegistered means a result names an athlete without a registration.
	ErrNotRegistered = errors.New("athlete is not registered for the event")
	// ErrForeignEvent means an event id belongs to a different competition.
	ErrForeignEvent = errors.New("event belongs to another competition")
	// ErrInvalidInput covers request fields that fail basic validation.
	ErrInvalidInput = errors.New("invalid input")
)

// ImportKind selects the import domain.
type ImportKind string

const (
	ImportStartlist ImportKind = "startlist"
	ImportResults   ImportKind = "results"
)

// ImportRequest is one uploaded file plus how to process it.
type ImportRequest struct {
	CompetitionID uuid.UUID
	FileName      string
	Data          []byte
	Format        rows.Format
	Policy        reconcile.Policy
	Mode          rows.Mode
}

// RowStatus is the per-row outcome category reported to callers.
type RowStatus string

const (
	RowCreated RowStatus = "created"
	RowUpdated RowStatus = "updated"
	RowSkipped RowStatus = "skipped"
	RowError   RowStatus = "error"
)

// RowOutcome reports what happened to one data line.
type RowOutcome struct {
	Line           int       `json:"line"`
	Status         RowStatus `json:"status"`
	Action         string    `json:"action,omitempty"`
	AthleteID      uuid.UUID `json:"athleteId,omitzero"`
	TeamID         uuid.UUID `json:"teamId,omitzero"`
	EventID        uuid.UUID `json:"eventId,omitzero"`
	RegistrationID uuid.UUID `json:"registrationId,omitzero"`
	ResultID       uuid.UUID `json:"resultId,omitzero"`
	Reason         string    `json:"reason,omitempty"`
	Code           string    `json:"code,omitempty"`
}

// ImportSummary counts row outcomes.
type ImportSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (s *ImportSummary) add(st RowStatus) {
	s.Total++
	switch st {
	case RowCreated:
		s.Created++
	case RowUpdated:
		s.Updated++
	case RowSkipped:
		s.Skipped++
	case RowError:
		s.Errors++
	}
}

// ImportResult is the full report of one import.
type ImportResult struct {
	ImportID      uuid.UUID     `json:"importId"`
	Kind          ImportKind    `json:"kind"`
	CompetitionID uuid.UUID     `json:"competitionId"`
	FileName      string        `json:"fileName,omitempty"`
	Format        rows.Format   `json:"format"`
	Encoding      string        `json:"encoding"`
	Delimiter     string        `json:"delimiter"`
	Warnings      []UserMessage `json:"warnings,omitempty"`
	Rows          []RowOutcome  `json:"rows"`
	Summary       ImportSummary `json:"summary"`
	// Aborted is set when strict mode stopped at the first bad row.
	Aborted  bool          `json:"aborted"`
	Duration time.Duration `json:"duration"`
}

func (r *ImportResult) record(o RowOutcome) {
	r.Rows = append(r.Rows, o)
	r.Summary.add(o.Status)
}

// ScheduleRequest is the input of GenerateSchedule. Date is ISO (2006-01-02),
// Time is 15:04. A nil BreakMinutes applies the configured default.
type ScheduleRequest struct {
	CompetitionID uuid.UUID   `json:"competitionId"`
	Name          string      `json:"name"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	BreakMinutes  *int        `json:"breakMinutes,omitempty"`
	TrackEventIDs []uuid.UUID `json:"trackEventIds"`
	FieldEventIDs []uuid.UUID `json:"fieldEventIds"`
}

// SubmitRequest is one result entered by an official.
type SubmitRequest struct {
	results.Submission
	Thresholds results.Thresholds
}

// SubmitOutcome is the per-item answer of SubmitResults.
type SubmitOutcome struct {
	Index  int           `json:"index"`
	Result *model.Result `json:"result,omitempty"`
	Error  *UserMessage  `json:"error,omitempty"`
}
