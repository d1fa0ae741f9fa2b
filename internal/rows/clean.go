package rows

// clean.go normalizes individual cell values before they are typed.
//
// Export tools leave predictable noise behind:
//   - Excel text-forcing prefixes (="4:31.19")
//   - A lone apostrophe or quote used to stop spreadsheets from turning a
//     time into a number ('4:31.19')
//   - "null" written for missing values
//   - Composite marks such as "4:31.19/25" (mark and season suffix)

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// quoteRunes are stripped once from each end of a cell.
const quoteRunes = "\"'’‘´`"

// Clean trims a cell and removes quoting artifacts. The second return value
// is false when the cell holds no value, so callers can tell an absent field
// from a real one.
func Clean(s string) (string, bool) {
	s = strings.TrimSpace(s)

	// Excel formula prefix: ="..."
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	s = trimOneRune(s, true)
	s = trimOneRune(s, false)
	s = strings.TrimSpace(s)

	if s == "" || strings.EqualFold(s, "null") {
		return "", false
	}
	return s, true
}

func trimOneRune(s string, leading bool) string {
	for _, q := range quoteRunes {
		qs := string(q)
		if leading && strings.HasPrefix(s, qs) {
			return s[len(qs):]
		}
		if !leading && strings.HasSuffix(s, qs) {
			return s[:len(s)-len(qs)]
		}
	}
	return s
}

// SplitComposite splits a cleaned composite value on the first "/".
// The suffix is empty when the value is not composite.
func SplitComposite(s string) (mark, suffix string) {
	mark, suffix, _ = strings.Cut(s, "/")
	return strings.TrimSpace(mark), strings.TrimSpace(suffix)
}

// Date layouts seen in start lists. Day-first layouts come before ISO so that
// 01.02.2006 reads as the 1st of February.
var dateLayouts = []string{
	"2.1.2006", "02.01.2006",
	"2006-01-02", "2006.01.02", "2006/01/02",
	"2/1/2006", "02/01/2006",
	"2-1-2006", "02-01-2006",
	"2 Jan 2006", "02 Jan 2006", "Jan 2, 2006",
	"20060102",
}

// ParseDate converts a cleaned date cell to pgtype.Date. Returns invalid for
// empty or unrecognized input.
func ParseDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}
	return pgtype.Date{Valid: false}
}

// ToPgText converts a cleaned value to pgtype.Text.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}
