package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/mark"
)

// ResultKey identifies the one result allowed per competitor and event.
// Individual results use (athlete, event, registration); relay results use
// (team, event) and leave the athlete and registration nil.
type ResultKey struct {
	AthleteID      uuid.UUID
	TeamID         uuid.UUID
	EventID        uuid.UUID
	RegistrationID uuid.UUID
}

// IsRelay reports whether the key belongs to a relay team result.
func (k ResultKey) IsRelay() bool {
	return k.TeamID != uuid.Nil
}

// Result is a classified performance with its derived flags.
type Result struct {
	ID             uuid.UUID   `json:"id"`
	AthleteID      uuid.UUID   `json:"athleteId,omitempty"`
	TeamID         uuid.UUID   `json:"teamId,omitempty"`
	EventID        uuid.UUID   `json:"eventId"`
	RegistrationID uuid.UUID   `json:"registrationId,omitempty"`
	Raw            string      `json:"raw"`
	Mark           mark.Mark   `json:"mark"`
	Position       int         `json:"position,omitempty"`
	Points         int         `json:"points,omitempty"`
	Wind           *float64    `json:"wind,omitempty"`
	ReactionTime   *float64    `json:"reactionTime,omitempty"`
	Splits         []mark.Mark `json:"splits,omitempty"`
	Date           time.Time   `json:"date"`

	IsValid          bool `json:"isValid"`
	IsDNF            bool `json:"isDNF"`
	IsDNS            bool `json:"isDNS"`
	IsDQ             bool `json:"isDQ"`
	IsPersonalBest   bool `json:"isPersonalBest"`
	IsSeasonBest     bool `json:"isSeasonBest"`
	IsNationalRecord bool `json:"isNationalRecord"`
	IsWorldRecord    bool `json:"isWorldRecord"`
	IsWindAssisted   bool `json:"isWindAssisted"`
}

// Key returns the uniqueness key of the result.
func (r Result) Key() ResultKey {
	return ResultKey{
		AthleteID:      r.AthleteID,
		TeamID:         r.TeamID,
		EventID:        r.EventID,
		RegistrationID: r.RegistrationID,
	}
}
