package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectKeepsIdentityFields(t *testing.T) {
	table := NewTable()
	table.Append(Row{
		PlayerName: "Patrick Mahomes",
		Team:       "KC",
		Position:   "QB",
		Season:     2022,
		Week:       3,
		Stats:      map[string]float64{"passing_yards": 300, "rushing_yards": 20, "interceptions": 1},
	})

	result := table.Project([]string{"pass_yds"})
	require.Equal(t, 1, result.Len())

	row := result.Rows[0]
	assert.Equal(t, "Patrick Mahomes", row.PlayerName)
	assert.Equal(t, "KC", row.Team)
	assert.Equal(t, 2022, row.Season)
	assert.Equal(t, 3, row.Week)
	assert.Equal(t, map[string]float64{"passing_yards": 300}, row.Stats)
}

func TestProjectEmptyRequestKeepsAll(t *testing.T) {
	table := NewTable()
	table.Append(Row{Stats: map[string]float64{"passing_yards": 300, "rushing_yards": 20}})

	result := table.Project(nil)
	assert.Len(t, result.Rows[0].Stats, 2)
}

func TestProjectCloneIsIndependent(t *testing.T) {
	table := NewTable()
	table.Append(Row{Stats: map[string]float64{"passing_yards": 300}})

	result := table.Project([]string{"passing_yards"})
	result.Rows[0].Stats["passing_yards"] = 999
	assert.Equal(t, 300.0, table.Rows[0].Stat("passing_yards"))
}

func TestFilterSeasonAndWeek(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{Season: 2021, Week: 1},
		Row{Season: 2022, Week: 1},
		Row{Season: 2022, Week: 2},
	)

	assert.Equal(t, 2, table.FilterSeason(2022).Len())
	assert.Equal(t, 1, table.FilterSeason(2022).FilterWeek(2).Len())
	// Zero means no filtering.
	assert.Equal(t, 3, table.FilterSeason(0).Len())
	assert.Equal(t, 3, table.FilterWeek(0).Len())
}

func TestFilterPlayer(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{PlayerName: "Patrick Mahomes"},
		Row{PlayerName: "Josh Allen"},
	)

	assert.Equal(t, 1, table.FilterPlayer("Patrick Mahomes").Len())
	assert.Equal(t, 0, table.FilterPlayer("Tom Brady").Len())
}

func TestSeasons(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{Season: 2022},
		Row{Season: 2020},
		Row{Season: 2022},
		Row{Season: 2021},
	)
	assert.Equal(t, []int{2020, 2021, 2022}, table.Seasons())
}

func TestConcat(t *testing.T) {
	a := NewTable()
	a.Append(Row{PlayerName: "Patrick Mahomes"})
	b := NewTable()
	b.Append(Row{PlayerName: "Josh Allen"})

	combined := Concat(a, nil, b)
	require.Equal(t, 2, combined.Len())
	assert.Equal(t, "Patrick Mahomes", combined.Rows[0].PlayerName)
	assert.Equal(t, "Josh Allen", combined.Rows[1].PlayerName)
}

func TestStatColumnsSortedUnion(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{Stats: map[string]float64{"rushing_yards": 1}},
		Row{Stats: map[string]float64{"passing_yards": 1, "interceptions": 0}},
	)
	assert.Equal(t, []string{"interceptions", "passing_yards", "rushing_yards"}, table.StatColumns())
}

func TestNilTableLen(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.Empty())
}
