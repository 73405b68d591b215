package stats

import (
	"sort"
	"strconv"
)

// Row is a single observation of a player's statistics. Identity
// fields that a source could not supply are left at their zero value;
// Season and Week use 0 as "not specified".
type Row struct {
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	Position   string  `json:"position"`
	Season     int     `json:"season"`
	Week       int     `json:"week"`
	Opponent   string  `json:"opponent,omitempty"`
	HomeAway   string  `json:"home_away,omitempty"`
	Stats      map[string]float64 `json:"stats"`
}

// Stat returns the value of a stat column, zero when absent.
func (r *Row) Stat(name string) float64 {
	return r.Stats[name]
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	stats := make(map[string]float64, len(r.Stats))
	for k, v := range r.Stats {
		stats[k] = v
	}
	r.Stats = stats
	return r
}

// Table is an ordered collection of player stat rows. It is the
// tabular value that flows between sources, the cache, and the router.
type Table struct {
	Rows []Row `json:"rows"`
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{Rows: make([]Row, 0)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Append adds rows to the table.
func (t *Table) Append(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, r.Clone())
	}
	return out
}

// Concat combines tables into a new table, preserving row order.
func Concat(tables ...*Table) *Table {
	out := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, r.Clone())
		}
	}
	return out
}

// StatColumns returns the sorted union of stat column names across
// all rows.
func (t *Table) StatColumns() []string {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		for k := range r.Stats {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Project restricts the table's stat columns to the requested set.
// Identity columns (player, team, position, season, week) are always
// retained. Requested names are canonicalized; an empty request keeps
// every column.
func (t *Table) Project(requested []string) *Table {
	if len(requested) == 0 {
		return t.Clone()
	}
	want := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		want[CanonicalColumn(name)] = struct{}{}
	}

	out := &Table{Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		projected := r.Clone()
		projected.Stats = make(map[string]float64, len(want))
		for k, v := range r.Stats {
			if _, ok := want[k]; ok {
				projected.Stats[k] = v
			}
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

// FilterSeason keeps rows matching the season. season 0 keeps all.
func (t *Table) FilterSeason(season int) *Table {
	if season == 0 {
		return t
	}
	out := NewTable()
	for _, r := range t.Rows {
		if r.Season == season {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// FilterWeek keeps rows matching the week. week 0 keeps all.
func (t *Table) FilterWeek(week int) *Table {
	if week == 0 {
		return t
	}
	out := NewTable()
	for _, r := range t.Rows {
		if r.Week == week {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// FilterPlayer keeps rows whose normalized player name matches.
func (t *Table) FilterPlayer(normalized string) *Table {
	out := NewTable()
	for _, r := range t.Rows {
		if NormalizePlayerName(r.PlayerName) == normalized {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Seasons returns the sorted distinct seasons present in the table.
func (t *Table) Seasons() []int {
	seen := make(map[int]struct{})
	for _, r := range t.Rows {
		if r.Season != 0 {
			seen[r.Season] = struct{}{}
		}
	}
	seasons := make([]int, 0, len(seen))
	for s := range seen {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)
	return seasons
}

// EstimateBytes gives a rough in-memory size of the table, used for
// cache statistics only.
func (t *Table) EstimateBytes() int64 {
	var total int64
	for _, r := range t.Rows {
		total += int64(len(r.PlayerName) + len(r.Team) + len(r.Position) + len(r.Opponent) + len(r.HomeAway))
		total += 16 // season + week
		for k := range r.Stats {
			total += int64(len(k)) + 8
		}
	}
	return total
}

// parseNumber converts a raw cell to a float. Unparseable or empty
// cells coerce to zero, mirroring how stat columns treat missing data.
func parseNumber(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
