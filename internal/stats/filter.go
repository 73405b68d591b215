package stats

import "strings"

// FilterSpec holds the optional row filters a query can carry.
// Min and Max apply to stat columns only, never to identity columns.
type FilterSpec struct {
	Opponent string   `json:"opponent,omitempty"`
	HomeAway string   `json:"home_away,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}

// IsZero reports whether no filter is set.
func (f *FilterSpec) IsZero() bool {
	return f == nil || (f.Opponent == "" && f.HomeAway == "" && f.MinValue == nil && f.MaxValue == nil)
}

// ApplyFilters returns the rows satisfying the filter spec. The
// opponent filter is a case-insensitive substring match; home/away
// compares lowercased; min/max keep a row only when every stat value
// is inside the bound.
func ApplyFilters(t *Table, f *FilterSpec) *Table {
	if f.IsZero() {
		return t
	}
	out := NewTable()
	for _, r := range t.Rows {
		if f.Opponent != "" && !strings.Contains(strings.ToLower(r.Opponent), strings.ToLower(f.Opponent)) {
			continue
		}
		if f.HomeAway != "" && !strings.EqualFold(r.HomeAway, f.HomeAway) {
			continue
		}
		if f.MinValue != nil && !allStatsAtLeast(r, *f.MinValue) {
			continue
		}
		if f.MaxValue != nil && !allStatsAtMost(r, *f.MaxValue) {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func allStatsAtLeast(r Row, min float64) bool {
	for name, v := range r.Stats {
		if name == "games_played" {
			continue
		}
		if v < min {
			return false
		}
	}
	return true
}

func allStatsAtMost(r Row, max float64) bool {
	for name, v := range r.Stats {
		if name == "games_played" {
			continue
		}
		if v > max {
			return false
		}
	}
	return true
}
