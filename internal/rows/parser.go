// Package rows splits normalized start-list and result text into
// structured rows keyed by canonical field names.
//
// The header line is mapped through a per-format alias table; columns with
// no alias are kept under their raw name. Each data line becomes a Row or a
// RowError tagged with its 1-based line number, and the caller decides
// whether to stop at the first error (Strict) or collect them (BestEffort).
package rows

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/JonMunkholm/athletix/internal/mark"
)

var (
	// ErrEmptyInput is returned when the text has no header line. It is the
	// only error fatal to a whole import.
	ErrEmptyInput = errors.New("input has no header line")

	ErrColumnCount   = errors.New("unexpected column count")
	ErrMissingField  = errors.New("required field is empty")
	ErrMissingColumn = errors.New("required column not present in header")
)

// Mode selects how Collect reacts to row errors.
type Mode int

const (
	// BestEffort collects every row error and keeps going.
	BestEffort Mode = iota
	// Strict stops at the first row error.
	Strict
)

// RowError describes a single data line that could not be parsed.
type RowError struct {
	Line   int      `json:"line"`
	Reason string   `json:"reason"`
	Data   []string `json:"data,omitempty"`
	Err    error    `json:"-"`
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error { return e.Err }

// Column is one header cell and the field it maps to.
type Column struct {
	Index int
	Name  string
	Field Field // empty when the header has no alias
}

// Row is one parsed data line. Absent values are not stored.
type Row struct {
	Line   int
	values map[Field]string
	extra  map[string]string
}

// NewRow builds a row from already-cleaned values.
func NewRow(line int, values map[Field]string) Row {
	return Row{Line: line, values: values}
}

// Get returns the cleaned value of a field.
func (r Row) Get(f Field) (string, bool) {
	v, ok := r.values[f]
	return v, ok
}

// Value returns the cleaned value of a field or "".
func (r Row) Value(f Field) string {
	return r.values[f]
}

// Has reports whether a field is present.
func (r Row) Has(f Field) bool {
	_, ok := r.values[f]
	return ok
}

// Mark returns the mark part of a composite field such as "4:31.19/25".
func (r Row) Mark(f Field) (string, bool) {
	v, ok := r.values[f]
	if !ok {
		return "", false
	}
	m, _ := SplitComposite(v)
	return m, m != ""
}

// MarkWithSuffix returns both parts of a composite field.
func (r Row) MarkWithSuffix(f Field) (m, suffix string, ok bool) {
	v, ok := r.values[f]
	if !ok {
		return "", "", false
	}
	m, suffix = SplitComposite(v)
	return m, suffix, m != ""
}

// Int parses a numeric field. Decimal commas are accepted and ignored.
func (r Row) Int(f Field) (int, bool) {
	v, ok := r.values[f]
	if !ok {
		return 0, false
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), ".")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float parses a decimal field such as wind ("+1,8") or reaction time.
func (r Row) Float(f Field) (float64, bool) {
	v, ok := r.values[f]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Splits parses a split-time list separated by spaces or "|".
func (r Row) Splits() ([]mark.Mark, error) {
	v, ok := r.values[FieldSplits]
	if !ok {
		return nil, nil
	}
	parts := strings.FieldsFunc(v, func(c rune) bool { return c == ' ' || c == '|' })
	out := make([]mark.Mark, 0, len(parts))
	for _, p := range parts {
		m, err := mark.Parse(p, mark.Time)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Extra returns an unmapped column by its raw header name.
func (r Row) Extra(name string) (string, bool) {
	v, ok := r.extra[name]
	return v, ok
}

// Parser turns normalized text into rows for one format and schema.
type Parser struct {
	format Format
	schema Schema
}

// NewParser creates a parser. Unknown formats fall back to pzla aliases.
func NewParser(format Format, schema Schema) *Parser {
	if _, ok := aliasTables[format]; !ok {
		format = FormatPZLA
	}
	return &Parser{format: format, schema: schema}
}

// Sheet is a parsed header plus a lazy sequence of data rows.
type Sheet struct {
	Delimiter  rune
	Columns    []Column
	HeaderLine int

	schema  Schema
	text    string
	missing []Requirement
}

// Parse reads the header line and prepares the data rows.
func (p *Parser) Parse(text string) (*Sheet, error) {
	headerLine, header, rest, ok := firstLine(text)
	if !ok {
		return nil, ErrEmptyInput
	}

	delim := ','
	if strings.ContainsRune(header, ';') {
		delim = ';'
	}

	cells := splitCells(header, delim)
	cols := make([]Column, len(cells))
	seen := make(map[Field]bool)
	for i, c := range cells {
		name, _ := Clean(c)
		col := Column{Index: i, Name: name}
		if f, ok := Lookup(p.format, c); ok && !seen[f] {
			col.Field = f
			seen[f] = true
		}
		cols[i] = col
	}

	s := &Sheet{
		Delimiter:  delim,
		Columns:    cols,
		HeaderLine: headerLine,
		schema:     p.schema,
		text:       rest,
	}
	for _, req := range p.schema.Required {
		if !req.satisfiedBy(func(f Field) bool { return seen[f] }) {
			s.missing = append(s.missing, req)
		}
	}
	return s, nil
}

// Fields returns the canonical fields present in the header.
func (s *Sheet) Fields() []Field {
	var out []Field
	for _, c := range s.Columns {
		if c.Field != "" {
			out = append(out, c.Field)
		}
	}
	return out
}

// All yields every non-blank data line as a Row or a *RowError.
func (s *Sheet) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		line := s.HeaderLine
		for raw := range strings.Lines(s.text) {
			line++
			raw = strings.TrimRight(raw, "\r\n")
			if strings.TrimSpace(raw) == "" {
				continue
			}

			row, err := s.parseLine(line, raw)
			if err != nil {
				if !yield(Row{Line: line}, err) {
					return
				}
				continue
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

func (s *Sheet) parseLine(line int, raw string) (Row, error) {
	cells := splitCells(raw, s.Delimiter)

	if len(s.missing) > 0 {
		return Row{}, &RowError{
			Line:   line,
			Reason: fmt.Sprintf("missing required column: %s", s.missing[0].Name),
			Data:   cells,
			Err:    ErrMissingColumn,
		}
	}

	if len(cells) < len(s.Columns) {
		return Row{}, &RowError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d columns, got %d", len(s.Columns), len(cells)),
			Data:   cells,
			Err:    ErrColumnCount,
		}
	}
	for _, extra := range cells[len(s.Columns):] {
		if _, present := Clean(extra); present {
			return Row{}, &RowError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d columns, got %d", len(s.Columns), len(cells)),
				Data:   cells,
				Err:    ErrColumnCount,
			}
		}
	}

	row := Row{Line: line, values: make(map[Field]string)}
	for _, col := range s.Columns {
		v, present := Clean(cells[col.Index])
		if !present {
			continue
		}
		if col.Field != "" {
			row.values[col.Field] = v
			continue
		}
		if row.extra == nil {
			row.extra = make(map[string]string)
		}
		row.extra[col.Name] = v
	}

	for _, req := range s.schema.Required {
		if !req.satisfiedBy(row.Has) {
			return Row{}, &RowError{
				Line:   line,
				Reason: fmt.Sprintf("required field is empty: %s", req.Name),
				Data:   cells,
				Err:    ErrMissingField,
			}
		}
	}
	return row, nil
}

// Collect drains a row sequence. In Strict mode it stops after the first
// error; in BestEffort mode it returns every row and every error.
func Collect(seq iter.Seq2[Row, error], mode Mode) ([]Row, []*RowError) {
	var (
		out  []Row
		errs []*RowError
	)
	for row, err := range seq {
		if err != nil {
			var re *RowError
			if !errors.As(err, &re) {
				re = &RowError{Line: row.Line, Reason: err.Error(), Err: err}
			}
			errs = append(errs, re)
			if mode == Strict {
				break
			}
			continue
		}
		out = append(out, row)
	}
	return out, errs
}

// firstLine returns the first non-blank line, its 1-based number and the
// text that follows it.
func firstLine(text string) (n int, line, rest string, ok bool) {
	for {
		if text == "" {
			return 0, "", "", false
		}
		n++
		line, text, _ = strings.Cut(text, "\n")
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			return n, line, text, true
		}
	}
}

// splitCells splits a line on delim. A cell that opens with a double quote
// runs to its closing quote, so quoted delimiters survive; doubled quotes
// inside it collapse to one.
func splitCells(line string, delim rune) []string {
	var (
		cells []string
		b     strings.Builder
	)
	inQuotes := false
	atStart := true
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuotes && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				b.WriteRune('"')
				i++
				continue
			}
			inQuotes = false
		case atStart && r == '"':
			inQuotes = true
			atStart = false
		case !inQuotes && r == delim:
			cells = append(cells, b.String())
			b.Reset()
			atStart = true
		default:
			b.WriteRune(r)
			if r != ' ' && r != '\t' {
				atStart = false
			}
		}
	}
	return append(cells, b.String())
}
