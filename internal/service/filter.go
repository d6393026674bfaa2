package service

import (
	"strings"
	"time"

	"github.com/plataa/triagedash/internal/dates"
	"github.com/plataa/triagedash/internal/records"
)

// Filters are the dashboard predicates. Zero values mean "all".
type Filters struct {
	Region   string            `json:"region,omitempty"`
	TestType string            `json:"test_type,omitempty"`
	Risk     records.RiskLevel `json:"risk,omitempty"`
	Start    string            `json:"start,omitempty"`
	End      string            `json:"end,omitempty"`

	// RowLimit trims the table rows only; zero shows all.
	RowLimit int `json:"row_limit,omitempty"`
}

// IsEmpty reports whether no predicate is active.
func (f Filters) IsEmpty() bool {
	return f.Region == "" && f.TestType == "" && f.Risk == records.RiskUnknown && f.Start == "" && f.End == ""
}

type dateRange struct {
	start, end time.Time
	hasStart   bool
	hasEnd     bool
}

// Unparsable bounds are ignored rather than rejecting every row.
func (f Filters) dateRange() dateRange {
	var dr dateRange
	if t, ok := dates.Parse(f.Start); ok {
		dr.start = dates.StartOfDay(dates.Wall(t))
		dr.hasStart = true
	}
	if t, ok := dates.Parse(f.End); ok {
		dr.end = dates.EndOfDay(dates.Wall(t))
		dr.hasEnd = true
	}
	return dr
}

// ApplyFilters returns a new slice holding the rows that pass every
// active predicate. rows is never modified.
func ApplyFilters(rows []records.ScreeningRecord, f Filters) []records.ScreeningRecord {
	out := make([]records.ScreeningRecord, 0, len(rows))
	if f.IsEmpty() {
		return append(out, rows...)
	}

	dr := f.dateRange()
	for _, r := range rows {
		if f.Region != "" && !strings.EqualFold(strings.TrimSpace(r.Region), strings.TrimSpace(f.Region)) {
			continue
		}
		if f.TestType != "" && !strings.EqualFold(r.TestType, f.TestType) {
			continue
		}
		if f.Risk != records.RiskUnknown && r.Risk != f.Risk {
			continue
		}
		if dr.hasStart || dr.hasEnd {
			t, ok := dates.Parse(r.Date)
			if !ok {
				continue
			}
			t = dates.Wall(t)
			if dr.hasStart && t.Before(dr.start) {
				continue
			}
			if dr.hasEnd && t.After(dr.end) {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// LimitRows returns at most limit rows; limit <= 0 returns all of them.
func LimitRows(rows []records.ScreeningRecord, limit int) []records.ScreeningRecord {
	if limit <= 0 || limit >= len(rows) {
		return rows
	}
	return rows[:limit]
}
