package stats

import (
	"strconv"
	"strings"
)

// columnAliases maps source-specific column names to the canonical
// schema shared by every source.
var columnAliases = map[string]string{
	"player":              "player_name",
	"player_display_name": "player_name",
	"year":                "season",
	"tm":                  "team",
	"pos":                 "position",
	"opp":                 "opponent",
	"pass_yds":            "passing_yards",
	"passingyards":        "passing_yards",
	"pass_td":             "passing_touchdowns",
	"passingtouchdowns":   "passing_touchdowns",
	"rush_yds":            "rushing_yards",
	"rushingyards":        "rushing_yards",
	"rush_td":             "rushing_touchdowns",
	"rushingtouchdowns":   "rushing_touchdowns",
	"rush_att":            "rushing_attempts",
	"rushingattempts":     "rushing_attempts",
	"rec_yds":             "receiving_yards",
	"receivingyards":      "receiving_yards",
	"rec_td":              "receiving_touchdowns",
	"receivingtouchdowns": "receiving_touchdowns",
	"rec":                 "receptions",
	"tgt":                 "targets",
	"att":                 "attempts",
	"cmp":                 "completions",
	"int":                 "interceptions",
}

// identityColumns are always retained by projection and are never
// treated as stat values.
var identityColumns = map[string]struct{}{
	"player_name": {},
	"team":        {},
	"position":    {},
	"season":      {},
	"week":        {},
	"opponent":    {},
	"home_away":   {},
}

// CanonicalColumn maps a raw column name onto the canonical schema.
// Already-canonical names pass through unchanged.
func CanonicalColumn(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := columnAliases[key]; ok {
		return canonical
	}
	return key
}

// IsIdentityColumn reports whether a canonical column identifies the
// row rather than carrying a stat value.
func IsIdentityColumn(name string) bool {
	_, ok := identityColumns[CanonicalColumn(name)]
	return ok
}

// Normalize rewrites a table onto the canonical schema: stat keys are
// renamed through the alias table and every row is filled with zero
// for stat columns present elsewhere in the table. Identity fields
// are left as the source provided them. Normalizing an already
// canonical table is a no-op.
func Normalize(t *Table) *Table {
	if t == nil {
		return nil
	}
	out := &Table{Rows: make([]Row, 0, len(t.Rows))}
	for _, r := range t.Rows {
		row := r
		row.Stats = make(map[string]float64, len(r.Stats))
		for k, v := range r.Stats {
			row.Stats[CanonicalColumn(k)] = v
		}
		out.Rows = append(out.Rows, row)
	}

	// Zero-fill stat columns missing on individual rows.
	for _, col := range out.StatColumns() {
		for i := range out.Rows {
			if _, ok := out.Rows[i].Stats[col]; !ok {
				out.Rows[i].Stats[col] = 0
			}
		}
	}
	return out
}

// FromRecords builds a table from a CSV-style header and records.
// Identity columns are routed into the row's typed fields; everything
// else becomes a numeric stat column, with unparseable cells dropped.
func FromRecords(header []string, records [][]string) *Table {
	canonical := make([]string, len(header))
	for i, h := range header {
		canonical[i] = CanonicalColumn(h)
	}

	table := &Table{Rows: make([]Row, 0, len(records))}
	for _, record := range records {
		row := Row{Stats: make(map[string]float64)}
		for i, cell := range record {
			if i >= len(canonical) {
				break
			}
			switch canonical[i] {
			case "player_name":
				row.PlayerName = strings.TrimSpace(cell)
			case "team":
				row.Team = strings.TrimSpace(cell)
			case "position":
				row.Position = strings.TrimSpace(cell)
			case "opponent":
				row.Opponent = strings.TrimSpace(cell)
			case "home_away":
				row.HomeAway = strings.ToLower(strings.TrimSpace(cell))
			case "season":
				if v, err := strconv.Atoi(strings.TrimSpace(cell)); err == nil {
					row.Season = v
				}
			case "week":
				if v, err := strconv.Atoi(strings.TrimSpace(cell)); err == nil {
					row.Week = v
				}
			default:
				if v, ok := parseNumber(strings.TrimSpace(cell)); ok {
					row.Stats[canonical[i]] = v
				}
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}
