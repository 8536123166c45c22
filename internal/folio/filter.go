package folio

import (
	"regexp"
	"strconv"
	"strings"
)

// comparisonRe recognises an operator-prefixed numeric filter. Anything it
// does not match falls back to a case-insensitive substring test.
var comparisonRe = regexp.MustCompile(`^(<=|>=|=|<|>)\s*(-?\d+(?:\.\d+)?)`)

// Predicate is one parsed column filter. Exactly one of Comparison or
// Substring is active; an all-zero Predicate matches everything.
type Predicate struct {
	Comparison *Comparison
	Substring  string
}

// Comparison is a numeric test such as ">= 100".
type Comparison struct {
	Op    string
	Value float64
}

// ParseFilter turns raw user input into a Predicate. Whitespace-only input
// yields the match-all predicate.
func ParseFilter(input string) Predicate {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Predicate{}
	}
	if m := comparisonRe.FindStringSubmatch(trimmed); m != nil {
		v, err := strconv.ParseFloat(m[2], 64)
		if err == nil {
			return Predicate{Comparison: &Comparison{Op: m[1], Value: v}}
		}
	}
	return Predicate{Substring: strings.ToLower(trimmed)}
}

// Empty reports whether the predicate matches everything.
func (p Predicate) Empty() bool {
	return p.Comparison == nil && p.Substring == ""
}

func (c *Comparison) matches(v float64) bool {
	switch c.Op {
	case "<":
		return v < c.Value
	case ">":
		return v > c.Value
	case "<=":
		return v <= c.Value
	case ">=":
		return v >= c.Value
	case "=":
		return v == c.Value
	}
	return false
}

// MatchNumber applies the predicate to an optional numeric cell. A missing
// value only passes the match-all predicate; a substring predicate tests
// the shortest decimal rendering of the number.
func (p Predicate) MatchNumber(v *float64) bool {
	if p.Empty() {
		return true
	}
	if v == nil {
		return false
	}
	if p.Comparison != nil {
		return p.Comparison.matches(*v)
	}
	text := strconv.FormatFloat(*v, 'f', -1, 64)
	return strings.Contains(strings.ToLower(text), p.Substring)
}

// MatchText applies the predicate as a case-insensitive substring test.
// Comparison predicates never match text cells.
func (p Predicate) MatchText(s string) bool {
	if p.Empty() {
		return true
	}
	if p.Comparison != nil {
		return false
	}
	return strings.Contains(strings.ToLower(s), p.Substring)
}

// MatchDate matches a "YYYY-MM-DD" cell by exact equality against the raw
// filter text.
func (p Predicate) MatchDate(date string) bool {
	if p.Empty() {
		return true
	}
	if p.Comparison != nil {
		return false
	}
	return strings.EqualFold(date, p.Substring)
}

// MatchBool renders the flag as "yes"/"no" and substring-matches it, so
// "y", "ye" and "yes" all select the set rows.
func (p Predicate) MatchBool(v bool) bool {
	text := "no"
	if v {
		text = "yes"
	}
	return p.MatchText(text)
}

// CellKind tags the typed value a column exposes to filtering.
type CellKind int

const (
	CellText CellKind = iota
	CellNumber
	CellDate
	CellBool
)

// Cell is one typed, filterable value from a table row.
type Cell struct {
	Kind   CellKind
	Number *float64
	Text   string
	Date   string
	Bool   bool
}

// NumberCell builds a Cell from an optional numeric field.
func NumberCell(v *float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// TextCell builds a Cell from a display string.
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// DateCell builds a Cell from a "YYYY-MM-DD" value.
func DateCell(d string) Cell { return Cell{Kind: CellDate, Date: d} }

// BoolCell builds a Cell from a flag.
func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// MatchCell dispatches on the cell's kind.
func (p Predicate) MatchCell(c Cell) bool {
	switch c.Kind {
	case CellNumber:
		return p.MatchNumber(c.Number)
	case CellDate:
		return p.MatchDate(c.Date)
	case CellBool:
		return p.MatchBool(c.Bool)
	default:
		return p.MatchText(c.Text)
	}
}

// MatchRow ANDs every active filter against its column's cell. Filters for
// columns the row does not provide reject the row.
func MatchRow(filters map[string]Predicate, cells map[string]Cell) bool {
	for column, pred := range filters {
		if pred.Empty() {
			continue
		}
		cell, ok := cells[column]
		if !ok {
			return false
		}
		if !pred.MatchCell(cell) {
			return false
		}
	}
	return true
}

// ParseFilters parses a column→raw-input map, dropping empty entries.
func ParseFilters(raw map[string]string) map[string]Predicate {
	out := make(map[string]Predicate, len(raw))
	for column, input := range raw {
		p := ParseFilter(input)
		if !p.Empty() {
			out[column] = p
		}
	}
	return out
}
