// Package mark parses, compares and formats athletics performances.
//
// A Mark stores its value as an integer number of hundredths so that
// comparisons never depend on floating point rounding:
//
//   - Time: centiseconds ("3:45.00" is 22500)
//   - Distance: centimetres ("7.45" is 745, also used for heights)
//   - Points: whole points for combined events ("8123" is 8123)
//
// Time marks are better when lower; distance and points marks when higher.
package mark

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a raw string does not match the grammar for its kind.
var ErrMalformed = errors.New("malformed mark")

// Kind identifies how a discipline is measured.
type Kind int

const (
	Time Kind = iota
	Distance
	Points
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Time:
		return "time"
	case Distance:
		return "distance"
	case Points:
		return "points"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "":
		return Time, nil
	case "distance", "height":
		return Distance, nil
	case "points":
		return Points, nil
	default:
		return Time, fmt.Errorf("unknown mark kind %q", s)
	}
}

// LowerIsBetter reports whether smaller values rank first.
func (k Kind) LowerIsBetter() bool {
	return k == Time
}

// Mark is a typed performance. The zero Value means no mark.
type Mark struct {
	Kind  Kind  `json:"kind"`
	Value int64 `json:"value"`
}

// IsZero reports whether m holds no performance.
func (m Mark) IsZero() bool {
	return m.Value <= 0
}

// Better reports whether m is strictly better than other.
// A present mark is better than an absent one; two absent marks are equal.
func (m Mark) Better(other Mark) bool {
	if m.IsZero() {
		return false
	}
	if other.IsZero() {
		return true
	}
	if m.Kind.LowerIsBetter() {
		return m.Value < other.Value
	}
	return m.Value > other.Value
}

// Compare orders marks best first: negative when m ranks ahead of other,
// positive when behind, zero when equal. Absent marks rank last.
func (m Mark) Compare(other Mark) int {
	switch {
	case m.Better(other):
		return -1
	case other.Better(m):
		return 1
	default:
		return 0
	}
}

// String formats the mark the way result lists print it.
func (m Mark) String() string {
	if m.IsZero() {
		return ""
	}

	switch m.Kind {
	case Time:
		return formatTime(m.Value)
	case Distance:
		return fmt.Sprintf("%d.%02d", m.Value/100, m.Value%100)
	default:
		return strconv.FormatInt(m.Value, 10)
	}
}

func formatTime(cs int64) string {
	hundredths := cs % 100
	totalSeconds := cs / 100
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, hundredths)
	case minutes > 0:
		return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, hundredths)
	default:
		return fmt.Sprintf("%d.%02d", seconds, hundredths)
	}
}

var (
	// SS.cc, M:SS.cc and H:MM:SS.cc. Up to three fractional digits are
	// accepted; thousandths are rounded up to the next hundredth.
	timeSecondsRegex = regexp.MustCompile(`^(\d{1,2})(?:\.(\d{1,3}))?$`)
	timeMinutesRegex = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)(?:\.(\d{1,3}))?$`)
	timeHoursRegex   = regexp.MustCompile(`^(\d{1,2}):([0-5]\d):([0-5]\d)(?:\.(\d{1,3}))?$`)

	distanceRegex = regexp.MustCompile(`^(\d{1,3})(?:\.(\d{1,2}))?$`)
	pointsRegex   = regexp.MustCompile(`^\d{1,5}$`)
)

// Parse converts a raw result string into a Mark of the given kind.
// A decimal comma is accepted in place of the decimal point.
func Parse(raw string, kind Kind) (Mark, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return Mark{}, fmt.Errorf("%w: empty", ErrMalformed)
	}

	var (
		value int64
		ok    bool
	)
	switch kind {
	case Time:
		value, ok = parseTime(s)
	case Distance:
		value, ok = parseDistance(s)
	case Points:
		if pointsRegex.MatchString(s) {
			value, _ = strconv.ParseInt(s, 10, 64)
			ok = true
		}
	}

	if !ok || value <= 0 {
		return Mark{}, fmt.Errorf("%w: %q is not a valid %s", ErrMalformed, raw, kind)
	}
	return Mark{Kind: kind, Value: value}, nil
}

// MustParse is Parse for literals in tests and tables. It panics on error.
func MustParse(raw string, kind Kind) Mark {
	m, err := Parse(raw, kind)
	if err != nil {
		panic(err)
	}
	return m
}

func parseTime(s string) (int64, bool) {
	if m := timeHoursRegex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseInt(m[1], 10, 64)
		min, _ := strconv.ParseInt(m[2], 10, 64)
		sec, _ := strconv.ParseInt(m[3], 10, 64)
		return ((h*60+min)*60+sec)*100 + hundredthsRoundedUp(m[4]), true
	}
	if m := timeMinutesRegex.FindStringSubmatch(s); m != nil {
		min, _ := strconv.ParseInt(m[1], 10, 64)
		sec, _ := strconv.ParseInt(m[2], 10, 64)
		return (min*60+sec)*100 + hundredthsRoundedUp(m[3]), true
	}
	if m := timeSecondsRegex.FindStringSubmatch(s); m != nil {
		sec, _ := strconv.ParseInt(m[1], 10, 64)
		return sec*100 + hundredthsRoundedUp(m[2]), true
	}
	return 0, false
}

// hundredthsRoundedUp converts a fractional digit string into hundredths.
// "5" is 50, "52" is 52 and "521" rounds up to 53.
func hundredthsRoundedUp(frac string) int64 {
	if frac == "" {
		return 0
	}
	for len(frac) < 3 {
		frac += "0"
	}
	thousandths, _ := strconv.ParseInt(frac, 10, 64)
	return (thousandths + 9) / 10
}

func parseDistance(s string) (int64, bool) {
	m := distanceRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	metres, _ := strconv.ParseInt(m[1], 10, 64)
	frac := m[2]
	for len(frac) < 2 {
		frac += "0"
	}
	cm, _ := strconv.ParseInt(frac, 10, 64)
	return metres*100 + cm, true
}
