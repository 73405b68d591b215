package stats

import "strings"

// Aggregation identifies how grouped stat columns are reduced.
type Aggregation string

const (
	AggregateSum     Aggregation = "sum"
	AggregateAverage Aggregation = "average"
	AggregateMax     Aggregation = "max"
	AggregateMin     Aggregation = "min"
)

// ParseAggregation resolves the aggregation synonyms accepted in
// queries. Empty input means no aggregation; anything unrecognized
// falls back to sum.
func ParseAggregation(raw string) (Aggregation, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", false
	case "sum", "total":
		return AggregateSum, true
	case "average", "avg", "mean":
		return AggregateAverage, true
	case "max", "maximum":
		return AggregateMax, true
	case "min", "minimum":
		return AggregateMin, true
	default:
		return AggregateSum, true
	}
}

type groupKey struct {
	player   string
	team     string
	position string
}

// Aggregate groups rows by player/team/position and reduces every
// stat column with the given aggregation. Season is kept when uniform
// within a group; week is cleared since a reduced row no longer
// describes a single week. An empty table passes through unchanged.
func Aggregate(t *Table, agg Aggregation) *Table {
	if t.Empty() || agg == "" {
		return t
	}

	type bucket struct {
		row    Row
		counts map[string]int
		season int
		mixed  bool
	}

	order := make([]groupKey, 0)
	groups := make(map[groupKey]*bucket)

	for _, r := range t.Rows {
		key := groupKey{player: r.PlayerName, team: r.Team, position: r.Position}
		b, ok := groups[key]
		if !ok {
			b = &bucket{
				row: Row{
					PlayerName: r.PlayerName,
					Team:       r.Team,
					Position:   r.Position,
					Stats:      make(map[string]float64),
				},
				counts: make(map[string]int),
				season: r.Season,
			}
			groups[key] = b
			order = append(order, key)
		}
		if r.Season != b.season {
			b.mixed = true
		}
		for name, v := range r.Stats {
			count := b.counts[name]
			current, seen := b.row.Stats[name]
			switch {
			case !seen:
				b.row.Stats[name] = v
			case agg == AggregateMax:
				if v > current {
					b.row.Stats[name] = v
				}
			case agg == AggregateMin:
				if v < current {
					b.row.Stats[name] = v
				}
			default: // sum and average both accumulate
				b.row.Stats[name] = current + v
			}
			b.counts[name] = count + 1
		}
	}

	out := NewTable()
	for _, key := range order {
		b := groups[key]
		if agg == AggregateAverage {
			for name, total := range b.row.Stats {
				if n := b.counts[name]; n > 0 {
					b.row.Stats[name] = total / float64(n)
				}
			}
		}
		if !b.mixed {
			b.row.Season = b.season
		}
		out.Rows = append(out.Rows, b.row)
	}
	return out
}
