// Package results validates submitted marks and derives result flags.
//
// A submission either carries a terminal status (DNF, DNS, DQ) or a mark
// that must match the event's grammar; malformed marks are rejected, never
// coerced. Personal and season bests are strict improvements over the
// athlete's history before this submission. National and world record flags
// compare against thresholds supplied by the caller.
package results

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/model"
)

// ErrMalformedMark rejects a submission whose mark fails grammar validation.
var ErrMalformedMark = errors.New("malformed mark")

// ErrMissingCompetitor rejects a submission without athlete or team.
var ErrMissingCompetitor = errors.New("result needs an athlete or a relay team")

// DefaultWindLimit is the legal tailwind in m/s for records and bests.
const DefaultWindLimit = 2.0

// Status is a terminal non-result outcome.
type Status string

const (
	StatusNone Status = ""
	StatusDNF  Status = "DNF"
	StatusDNS  Status = "DNS"
	StatusDQ   Status = "DQ"
)

var statusTokens = map[string]Status{
	"DNF": StatusDNF, "NU": StatusDNF, "NUK": StatusDNF,
	"DNS": StatusDNS, "NS": StatusDNS, "NST": StatusDNS,
	"DQ": StatusDQ, "DSQ": StatusDQ, "DK": StatusDQ,
}

// ParseStatus recognizes status tokens in English and Polish result lists.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusTokens[strings.ToUpper(strings.TrimSpace(s))]
	return st, ok
}

// Submission is one raw result as entered by officials or read from a file.
type Submission struct {
	AthleteID      uuid.UUID
	TeamID         uuid.UUID
	EventID        uuid.UUID
	RegistrationID uuid.UUID

	Raw    string
	Status Status

	Wind         *float64
	ReactionTime *float64
	Splits       []mark.Mark
	Date         time.Time
}

// PriorMark is an earlier valid result of the athlete in the same discipline.
type PriorMark struct {
	Mark         mark.Mark
	Date         time.Time
	WindAssisted bool
}

// History is what the classifier knows about the athlete before this
// submission. It must not include the result being replaced.
type History struct {
	PersonalBest mark.Mark
	SeasonBest   model.SeasonMark
	Prior        []PriorMark
}

// Thresholds are externally supplied record marks. Zero means unknown.
type Thresholds struct {
	National mark.Mark `json:"national"`
	World    mark.Mark `json:"world"`
}

// Classifier turns submissions into results. It holds only configuration.
type Classifier struct {
	seasonStart time.Month
	windLimit   float64
	now         func() time.Time
}

// NewClassifier creates a classifier. seasonStart is the first month of a
// season (January for outdoor calendars); windLimit <= 0 selects 2.0 m/s.
func NewClassifier(seasonStart time.Month, windLimit float64) *Classifier {
	if seasonStart < time.January || seasonStart > time.December {
		seasonStart = time.January
	}
	if windLimit <= 0 {
		windLimit = DefaultWindLimit
	}
	return &Classifier{seasonStart: seasonStart, windLimit: windLimit, now: time.Now}
}

// Season returns the season a date belongs to, named by the year it ends in.
func (c *Classifier) Season(t time.Time) int {
	if c.seasonStart > time.January && t.Month() >= c.seasonStart {
		return t.Year() + 1
	}
	return t.Year()
}

// Classify validates a submission and computes every derived flag from
// scratch. A malformed mark returns ErrMalformedMark and no result.
func (c *Classifier) Classify(sub Submission, ev model.Event, h History, th Thresholds) (model.Result, error) {
	if sub.AthleteID == uuid.Nil && sub.TeamID == uuid.Nil {
		return model.Result{}, ErrMissingCompetitor
	}

	date := sub.Date
	if date.IsZero() {
		date = c.now()
	}

	r := model.Result{
		ID:             uuid.New(),
		AthleteID:      sub.AthleteID,
		TeamID:         sub.TeamID,
		EventID:        ev.ID,
		RegistrationID: sub.RegistrationID,
		Raw:            strings.TrimSpace(sub.Raw),
		Wind:           sub.Wind,
		ReactionTime:   sub.ReactionTime,
		Splits:         sub.Splits,
		Date:           date,
	}

	status := sub.Status
	if status == StatusNone {
		if st, ok := ParseStatus(r.Raw); ok {
			status = st
		}
	}

	switch status {
	case StatusDNF:
		r.IsDNF = true
		return r, nil
	case StatusDNS:
		r.IsDNS = true
		return r, nil
	case StatusDQ:
		r.IsDQ = true
		return r, nil
	}

	m, err := mark.Parse(r.Raw, ev.MarkKind)
	if err != nil {
		return model.Result{}, fmt.Errorf("%w: %q is not a %s mark", ErrMalformedMark, r.Raw, ev.MarkKind)
	}
	r.Mark = m
	r.IsValid = true
	r.IsWindAssisted = ev.WindMeasured && sub.Wind != nil && *sub.Wind > c.windLimit

	if r.IsWindAssisted {
		return r, nil
	}

	if sub.TeamID == uuid.Nil {
		pb, sb := c.bests(h, c.Season(date))
		r.IsPersonalBest = m.Better(pb)
		r.IsSeasonBest = m.Better(sb)
	}
	r.IsNationalRecord = !th.National.IsZero() && m.Better(th.National)
	r.IsWorldRecord = !th.World.IsZero() && m.Better(th.World)
	return r, nil
}

// bests folds the stored bests and prior legal marks into the marks a new
// result has to beat.
func (c *Classifier) bests(h History, season int) (pb, sb mark.Mark) {
	pb = h.PersonalBest
	if h.SeasonBest.Season == season {
		sb = h.SeasonBest.Mark
	}
	// A stored PB is never worse than the season best.
	if sb.Better(pb) {
		pb = sb
	}

	for _, p := range h.Prior {
		if p.WindAssisted || p.Mark.IsZero() {
			continue
		}
		if p.Mark.Better(pb) {
			pb = p.Mark
		}
		if c.Season(p.Date) == season && p.Mark.Better(sb) {
			sb = p.Mark
		}
	}
	return pb, sb
}
