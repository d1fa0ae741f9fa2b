package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/athletix/internal/model"
)

// ErrUnknownEvent is returned when a row names an event the competition lacks.
var ErrUnknownEvent = errors.New("event not found in competition")

// EventIndex resolves start-list event cells to competition events.
type EventIndex struct {
	byDiscipline map[string][]model.Event
}

// NewEventIndex indexes events by discipline, keeping input order.
func NewEventIndex(events []model.Event) *EventIndex {
	idx := &EventIndex{byDiscipline: make(map[string][]model.Event)}
	for _, ev := range events {
		k := model.DisciplineKey(ev.Discipline)
		idx.byDiscipline[k] = append(idx.byDiscipline[k], ev)
	}
	for k, evs := range idx.byDiscipline {
		slices.SortStableFunc(evs, func(a, b model.Event) int { return a.Round.Stage() - b.Round.Stage() })
		idx.byDiscipline[k] = evs
	}
	return idx
}

// Resolve finds the event for a discipline and optional round cell. Without
// a round the earliest round of the discipline is used.
func (x *EventIndex) Resolve(discipline, round string) (model.Event, error) {
	evs := x.byDiscipline[model.DisciplineKey(discipline)]
	if len(evs) == 0 {
		return model.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, discipline)
	}
	if strings.TrimSpace(round) == "" {
		return evs[0], nil
	}

	r, err := model.ParseRound(round)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrUnknownEvent, err)
	}
	for _, ev := range evs {
		if ev.Round == r {
			return ev, nil
		}
	}
	return model.Event{}, fmt.Errorf("%w: %q round %s", ErrUnknownEvent, discipline, r)
}
