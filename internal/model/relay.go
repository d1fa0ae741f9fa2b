package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// RelaySlots is the number of ordered member positions in a relay team.
const RelaySlots = 6

var (
	ErrInvalidPosition = errors.New("relay position must be 1-6")
	ErrSlotTaken       = errors.New("relay position already has a runner")
	ErrAlreadyInTeam   = errors.New("athlete already holds a position in this team")
)

// RelayTeamMember is one athlete of a relay team.
type RelayTeamMember struct {
	AthleteID uuid.UUID `json:"athleteId"`
	Position  int       `json:"position"`
	Reserve   bool      `json:"reserve"`
}

// RelayTeam holds at most one non-reserve runner per position.
// The runners array is indexed by position-1, uuid.Nil marks a free slot.
type RelayTeam struct {
	ID            uuid.UUID `json:"id"`
	CompetitionID uuid.UUID `json:"competitionId"`
	EventID       uuid.UUID `json:"eventId"`
	Name          string    `json:"name"`

	runners  [RelaySlots]uuid.UUID
	reserves []RelayTeamMember
}

// Assign places an athlete on a position. Reserves may share a position with
// the runner; a second runner on an occupied position is rejected.
func (t *RelayTeam) Assign(position int, athleteID uuid.UUID, reserve bool) error {
	if position < 1 || position > RelaySlots {
		return fmt.Errorf("%w: got %d", ErrInvalidPosition, position)
	}

	if reserve {
		t.reserves = append(t.reserves, RelayTeamMember{AthleteID: athleteID, Position: position, Reserve: true})
		return nil
	}

	idx := position - 1
	if t.runners[idx] != uuid.Nil {
		return fmt.Errorf("%w: position %d", ErrSlotTaken, position)
	}
	for _, id := range t.runners {
		if id == athleteID {
			return ErrAlreadyInTeam
		}
	}
	t.runners[idx] = athleteID
	return nil
}

// Release frees a runner position.
func (t *RelayTeam) Release(position int) error {
	if position < 1 || position > RelaySlots {
		return fmt.Errorf("%w: got %d", ErrInvalidPosition, position)
	}
	t.runners[position-1] = uuid.Nil
	return nil
}

// Runner returns the non-reserve athlete on a position.
func (t *RelayTeam) Runner(position int) (uuid.UUID, bool) {
	if position < 1 || position > RelaySlots {
		return uuid.Nil, false
	}
	id := t.runners[position-1]
	return id, id != uuid.Nil
}

// Members lists runners in position order followed by reserves.
func (t *RelayTeam) Members() []RelayTeamMember {
	out := make([]RelayTeamMember, 0, RelaySlots+len(t.reserves))
	for i, id := range t.runners {
		if id != uuid.Nil {
			out = append(out, RelayTeamMember{AthleteID: id, Position: i + 1})
		}
	}
	return append(out, t.reserves...)
}

// SetMembers rebuilds the team from stored members, enforcing the slot rules.
func (t *RelayTeam) SetMembers(members []RelayTeamMember) error {
	t.runners = [RelaySlots]uuid.UUID{}
	t.reserves = nil
	for _, m := range members {
		if err := t.Assign(m.Position, m.AthleteID, m.Reserve); err != nil {
			return err
		}
	}
	return nil
}
