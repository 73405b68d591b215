package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAggregation(t *testing.T) {
	tests := []struct {
		input    string
		expected Aggregation
		ok       bool
	}{
		{"sum", AggregateSum, true},
		{"total", AggregateSum, true},
		{"Average", AggregateAverage, true},
		{"avg", AggregateAverage, true},
		{"mean", AggregateAverage, true},
		{"MAX", AggregateMax, true},
		{"minimum", AggregateMin, true},
		{"", "", false},
		{"bogus", AggregateSum, true},
	}

	for _, tt := range tests {
		agg, ok := ParseAggregation(tt.input)
		assert.Equal(t, tt.expected, agg, "input %q", tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
	}
}

func weeklyRows() *Table {
	table := NewTable()
	table.Append(
		Row{PlayerName: "Patrick Mahomes", Team: "KC", Position: "QB", Season: 2022, Week: 1,
			Stats: map[string]float64{"passing_yards": 360, "passing_touchdowns": 5}},
		Row{PlayerName: "Patrick Mahomes", Team: "KC", Position: "QB", Season: 2022, Week: 2,
			Stats: map[string]float64{"passing_yards": 235, "passing_touchdowns": 2}},
		Row{PlayerName: "Josh Allen", Team: "BUF", Position: "QB", Season: 2022, Week: 1,
			Stats: map[string]float64{"passing_yards": 297, "passing_touchdowns": 3}},
	)
	return table
}

func TestAggregateSum(t *testing.T) {
	result := Aggregate(weeklyRows(), AggregateSum)
	require.Equal(t, 2, result.Len())

	mahomes := result.Rows[0]
	assert.Equal(t, "Patrick Mahomes", mahomes.PlayerName)
	assert.Equal(t, 595.0, mahomes.Stat("passing_yards"))
	assert.Equal(t, 7.0, mahomes.Stat("passing_touchdowns"))
	assert.Equal(t, 2022, mahomes.Season)
	assert.Equal(t, 0, mahomes.Week)

	allen := result.Rows[1]
	assert.Equal(t, "Josh Allen", allen.PlayerName)
	assert.Equal(t, 297.0, allen.Stat("passing_yards"))
}

func TestAggregateAverage(t *testing.T) {
	result := Aggregate(weeklyRows(), AggregateAverage)
	require.Equal(t, 2, result.Len())
	assert.Equal(t, 297.5, result.Rows[0].Stat("passing_yards"))
	assert.Equal(t, 3.5, result.Rows[0].Stat("passing_touchdowns"))
}

func TestAggregateMaxMin(t *testing.T) {
	max := Aggregate(weeklyRows(), AggregateMax)
	assert.Equal(t, 360.0, max.Rows[0].Stat("passing_yards"))

	min := Aggregate(weeklyRows(), AggregateMin)
	assert.Equal(t, 235.0, min.Rows[0].Stat("passing_yards"))
}

func TestAggregateMixedSeasonsClearsSeason(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{PlayerName: "Derrick Henry", Team: "TEN", Position: "RB", Season: 2021,
			Stats: map[string]float64{"rushing_yards": 937}},
		Row{PlayerName: "Derrick Henry", Team: "TEN", Position: "RB", Season: 2022,
			Stats: map[string]float64{"rushing_yards": 1538}},
	)

	result := Aggregate(table, AggregateSum)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, 2475.0, result.Rows[0].Stat("rushing_yards"))
	assert.Equal(t, 0, result.Rows[0].Season)
}

func TestAggregateEmptyPassesThrough(t *testing.T) {
	empty := NewTable()
	assert.Same(t, empty, Aggregate(empty, AggregateSum))
}
