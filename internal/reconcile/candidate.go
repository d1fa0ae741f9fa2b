package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/athletix/internal/mark"
	"github.com/JonMunkholm/athletix/internal/rows"
	"github.com/JonMunkholm/athletix/internal/textfold"
)

// ErrMalformedMark is returned when a seed, PB or SB cell is not a mark.
var ErrMalformedMark = errors.New("malformed mark in start list")

// Candidate is the athlete and entry data of one start-list row.
type Candidate struct {
	License   string
	FirstName string
	LastName  string
	BirthDate pgtype.Date
	BirthYear int
	Club      string
	Bib       string

	SeedMark       mark.Mark
	PersonalBest   mark.Mark
	SeasonBest     mark.Mark
	SeasonBestYear int

	// Date is the day the list was made for; zero means today.
	Date time.Time
}

// NameKey is the folded lookup key for the candidate's name.
func (c Candidate) NameKey() string {
	return NameKey(c.FirstName, c.LastName)
}

// YearOfBirth returns the birth year from the date when known.
func (c Candidate) YearOfBirth() int {
	if c.BirthDate.Valid {
		return c.BirthDate.Time.Year()
	}
	return c.BirthYear
}

// NameKey folds first and last name into one comparison key.
func NameKey(first, last string) string {
	return textfold.Fold(first + " " + last)
}

// absentMarks are placeholders export tools write instead of leaving a cell empty.
var absentMarks = map[string]bool{
	"-": true, "--": true, "—": true, "nm": true, "n/a": true, "brak": true, "bw": true,
}

// CandidateFromRow builds a candidate from a start-list row. Marks are read
// with the event's mark kind.
func CandidateFromRow(row rows.Row, format rows.Format, kind mark.Kind) (Candidate, error) {
	c := Candidate{
		License: row.Value(rows.FieldLicense),
		Club:    row.Value(rows.FieldClub),
		Bib:     row.Value(rows.FieldBib),
	}

	if first, ok := row.Get(rows.FieldFirstName); ok {
		c.FirstName = first
		c.LastName = row.Value(rows.FieldLastName)
	} else {
		c.FirstName, c.LastName = SplitFullName(row.Value(rows.FieldFullName), format)
	}
	if c.FirstName == "" || c.LastName == "" {
		return Candidate{}, fmt.Errorf("cannot split athlete name %q", row.Value(rows.FieldFullName))
	}

	if v, ok := row.Get(rows.FieldBirthDate); ok {
		c.BirthDate = rows.ParseDate(v)
		if !c.BirthDate.Valid {
			// Some tools put only the year in the date column.
			if y, err := parseYear(v); err == nil {
				c.BirthYear = y
			} else {
				return Candidate{}, fmt.Errorf("invalid birth date %q", v)
			}
		}
	}
	if v, ok := row.Get(rows.FieldBirthYear); ok && c.BirthYear == 0 {
		y, err := parseYear(v)
		if err != nil {
			return Candidate{}, fmt.Errorf("invalid birth year %q", v)
		}
		c.BirthYear = y
	}

	var err error
	if c.SeedMark, _, err = rowMark(row, rows.FieldSeedMark, kind); err != nil {
		return Candidate{}, err
	}
	if c.PersonalBest, _, err = rowMark(row, rows.FieldPersonalBest, kind); err != nil {
		return Candidate{}, err
	}
	var suffix string
	if c.SeasonBest, suffix, err = rowMark(row, rows.FieldSeasonBest, kind); err != nil {
		return Candidate{}, err
	}
	if suffix != "" {
		if y, err := parseYear(suffix); err == nil {
			c.SeasonBestYear = y
		}
	}
	return c, nil
}

func rowMark(row rows.Row, f rows.Field, kind mark.Kind) (mark.Mark, string, error) {
	raw, suffix, ok := row.MarkWithSuffix(f)
	if !ok || absentMarks[strings.ToLower(raw)] {
		return mark.Mark{}, "", nil
	}
	m, err := mark.Parse(raw, kind)
	if err != nil {
		return mark.Mark{}, "", fmt.Errorf("%w: %s %q", ErrMalformedMark, f, raw)
	}
	return m, suffix, nil
}

// parseYear accepts four-digit years and two-digit suffixes ("25" is 2025,
// "98" is 1998).
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch len(s) {
	case 4:
		return n, nil
	case 2:
		if n <= 50 {
			return 2000 + n, nil
		}
		return 1900 + n, nil
	default:
		return 0, fmt.Errorf("invalid year %q", s)
	}
}

// SplitFullName splits a single name cell into first and last name.
//
// "Kowalski, Jan" is always last-first. Otherwise tokens written entirely in
// upper case are the last name ("Jan KOWALSKI", "KOWALSKI Jan"). Without
// that hint pzla files are last-first and international files first-last.
func SplitFullName(full string, format rows.Format) (first, last string) {
	full = strings.TrimSpace(full)
	if l, f, ok := strings.Cut(full, ","); ok {
		return strings.TrimSpace(f), strings.TrimSpace(l)
	}

	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	}

	var upper, other []string
	for _, t := range tokens {
		if isUpperWord(t) {
			upper = append(upper, t)
		} else {
			other = append(other, t)
		}
	}
	if len(upper) > 0 && len(other) > 0 {
		return strings.Join(other, " "), strings.Join(upper, " ")
	}

	if format == rows.FormatInternational {
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
	return strings.Join(tokens[1:], " "), tokens[0]
}

func isUpperWord(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 1
}
