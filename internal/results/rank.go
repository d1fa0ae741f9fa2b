package results

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/JonMunkholm/athletix/internal/model"
)

// PointsTable holds the points for positions 1..N.
type PointsTable []int

// DefaultPoints is the usual 8-lane scoring.
var DefaultPoints = PointsTable{8, 7, 6, 5, 4, 3, 2, 1}

// ParsePointsTable reads a comma separated list such as "8,7,6,5,4,3,2,1".
func ParsePointsTable(s string) (PointsTable, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make(PointsTable, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid points value %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// For returns the points earned at a 1-based position.
func (t PointsTable) For(position int) int {
	if position < 1 || position > len(t) {
		return 0
	}
	return t[position-1]
}

// Rank orders results best first and assigns positions and points.
//
// Equal marks share a position and the next position is skipped (1, 2, 2, 4).
// DNF, DNS, DQ and other invalid entries come after every valid mark in
// their input order, with position and points cleared.
func Rank(in []model.Result, table PointsTable) []model.Result {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b model.Result) int {
		switch {
		case a.IsValid && !b.IsValid:
			return -1
		case !a.IsValid && b.IsValid:
			return 1
		case !a.IsValid:
			return 0
		}
		return a.Mark.Compare(b.Mark)
	})

	for i := range out {
		r := &out[i]
		if !r.IsValid {
			r.Position = 0
			r.Points = 0
			continue
		}
		if i > 0 && out[i-1].IsValid && out[i-1].Mark.Compare(r.Mark) == 0 {
			r.Position = out[i-1].Position
		} else {
			r.Position = i + 1
		}
		r.Points = table.For(r.Position)
	}
	return out
}
