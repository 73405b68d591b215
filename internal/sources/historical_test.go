package sources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstats/agent/internal/cache"
)

const datasetCSV = `Player,Tm,Pos,Year,Week,Opp,pass_yds,pass_td,rush_yds
Patrick Mahomes,KC,QB,2022,1,ARI,360,5,3
Patrick Mahomes,KC,QB,2022,2,LAC,235,2,0
Patrick Mahomes,KC,QB,2021,1,CLE,337,3,18
Josh Allen,BUF,QB,2022,1,LA,297,3,56
`

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "player_stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0o644))
	return dir
}

func newHistorical(t *testing.T) *HistoricalSource {
	t.Helper()
	manager := cache.NewManager(cache.DefaultOptions(), nil)
	return NewHistoricalSource(writeDataset(t), manager, nil)
}

func TestHistoricalSourceName(t *testing.T) {
	assert.Equal(t, "historical", newHistorical(t).Name())
}

func TestHistoricalIsAvailable(t *testing.T) {
	assert.True(t, newHistorical(t).IsAvailable())

	manager := cache.NewManager(cache.DefaultOptions(), nil)
	missing := NewHistoricalSource("/nonexistent/path", manager, nil)
	assert.False(t, missing.IsAvailable())
}

func TestHistoricalGetPlayerStats(t *testing.T) {
	src := newHistorical(t)

	table, err := src.GetPlayerStats(context.Background(), "patrick mahomes", FetchOptions{Season: 2022})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, 360.0, table.Rows[0].Stat("passing_yards"))
	assert.Equal(t, "KC", table.Rows[0].Team)
}

func TestHistoricalGetPlayerStatsAllSeasons(t *testing.T) {
	src := newHistorical(t)

	table, err := src.GetPlayerStats(context.Background(), "Patrick Mahomes", FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestHistoricalGetPlayerStatsWeekFilter(t *testing.T) {
	src := newHistorical(t)

	table, err := src.GetPlayerStats(context.Background(), "Patrick Mahomes", FetchOptions{Season: 2022, Week: 2})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, 235.0, table.Rows[0].Stat("passing_yards"))
}

func TestHistoricalGetPlayerStatsProjection(t *testing.T) {
	src := newHistorical(t)

	table, err := src.GetPlayerStats(context.Background(), "Josh Allen", FetchOptions{Stats: []string{"rushing_yards"}})
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, map[string]float64{"rushing_yards": 56}, table.Rows[0].Stats)
	assert.Equal(t, "Josh Allen", table.Rows[0].PlayerName)
}

func TestHistoricalPlayerNotFound(t *testing.T) {
	src := newHistorical(t)

	_, err := src.GetPlayerStats(context.Background(), "Tom Brady", FetchOptions{Season: 2022})
	assert.True(t, IsPlayerNotFound(err))
}

func TestHistoricalCancelledContext(t *testing.T) {
	src := newHistorical(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.GetPlayerStats(ctx, "Patrick Mahomes", FetchOptions{})
	assert.True(t, IsSourceUnavailable(err))
}

func TestHistoricalUsesDatasetCache(t *testing.T) {
	manager := cache.NewManager(cache.DefaultOptions(), nil)
	dir := writeDataset(t)

	first := NewHistoricalSource(dir, manager, nil)
	_, err := first.GetPlayerStats(context.Background(), "Josh Allen", FetchOptions{})
	require.NoError(t, err)
	require.NotNil(t, manager.GetDataset())

	// A second instance pointed nowhere still works off the shared
	// dataset slot.
	second := NewHistoricalSource("/nonexistent/path", manager, nil)
	table, err := second.GetPlayerStats(context.Background(), "Josh Allen", FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestHistoricalSeasons(t *testing.T) {
	seasons, err := newHistorical(t).Seasons()
	require.NoError(t, err)
	assert.Equal(t, []int{2021, 2022}, seasons)
}

func TestHistoricalSearchPlayers(t *testing.T) {
	players, err := newHistorical(t).SearchPlayers("allen")
	require.NoError(t, err)
	assert.Equal(t, []string{"Josh Allen"}, players)
}

func TestHistoricalResolvesDirectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom-name.csv")
	require.NoError(t, os.WriteFile(path, []byte(datasetCSV), 0o644))

	manager := cache.NewManager(cache.DefaultOptions(), nil)
	src := NewHistoricalSource(path, manager, nil)
	assert.True(t, src.IsAvailable())

	table, err := src.GetPlayerStats(context.Background(), "Josh Allen", FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}
