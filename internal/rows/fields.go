package rows

import (
	"fmt"
	"strings"
)

// Field is a canonical column name shared by every file format.
type Field string

const (
	FieldLicense       Field = "license"
	FieldFirstName     Field = "first_name"
	FieldLastName      Field = "last_name"
	FieldFullName      Field = "full_name"
	FieldBirthDate     Field = "birth_date"
	FieldBirthYear     Field = "birth_year"
	FieldClub          Field = "club"
	FieldEvent         Field = "event"
	FieldRound         Field = "round"
	FieldBib           Field = "bib"
	FieldSeedMark      Field = "seed_mark"
	FieldPersonalBest  Field = "personal_best"
	FieldSeasonBest    Field = "season_best"
	FieldResult        Field = "result"
	FieldWind          Field = "wind"
	FieldReactionTime  Field = "reaction_time"
	FieldPosition      Field = "position"
	FieldStatus        Field = "status"
	FieldTeam          Field = "team"
	FieldRelayPosition Field = "relay_position"
	FieldSplits        Field = "splits"
)

// Format selects the header alias table of an export tool.
type Format string

const (
	FormatPZLA          Format = "pzla"
	FormatInternational Format = "international"
)

// ParseFormat accepts a format name in any case. Empty selects pzla.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPZLA:
		return FormatPZLA, nil
	case FormatInternational, "intl":
		return FormatInternational, nil
	default:
		return "", fmt.Errorf("unknown file format %q", s)
	}
}

// Requirement is satisfied when every field of at least one alternative is present.
type Requirement struct {
	Name         string
	Alternatives [][]Field
}

func (r Requirement) satisfiedBy(has func(Field) bool) bool {
	for _, alt := range r.Alternatives {
		ok := true
		for _, f := range alt {
			if !has(f) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func one(name string, f Field) Requirement {
	return Requirement{Name: name, Alternatives: [][]Field{{f}}}
}

// Schema lists the requirements a row must satisfy for one import domain.
type Schema struct {
	Name     string
	Required []Requirement
}

// StartlistSchema describes athlete/registration start lists.
var StartlistSchema = Schema{
	Name: "startlist",
	Required: []Requirement{
		{Name: "athlete name", Alternatives: [][]Field{
			{FieldFirstName, FieldLastName},
			{FieldFullName},
		}},
		one("event", FieldEvent),
	},
}

// ResultsSchema describes event result lists.
var ResultsSchema = Schema{
	Name: "results",
	Required: []Requirement{
		{Name: "competitor", Alternatives: [][]Field{
			{FieldLicense},
			{FieldFirstName, FieldLastName},
			{FieldFullName},
			{FieldBib},
			{FieldTeam},
		}},
		one("event", FieldEvent),
		{Name: "result or status", Alternatives: [][]Field{
			{FieldResult},
			{FieldStatus},
		}},
	},
}

// ParseSchema returns the schema registered under name.
func ParseSchema(name string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StartlistSchema.Name:
		return StartlistSchema, nil
	case ResultsSchema.Name:
		return ResultsSchema, nil
	default:
		return Schema{}, fmt.Errorf("unknown row schema %q", name)
	}
}
