package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstats/agent/internal/stats"
)

func testManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	return NewManager(opts, nil)
}

func sampleTable(player string, season int) *stats.Table {
	table := stats.NewTable()
	table.Append(stats.Row{
		PlayerName: player,
		Season:     season,
		Week:       1,
		Stats:      map[string]float64{"passing_yards": 300},
	})
	return table
}

func TestManagerDatasetTier(t *testing.T) {
	m := testManager(t, DefaultOptions())

	assert.Nil(t, m.GetDataset())

	data := sampleTable("Patrick Mahomes", 2022)
	m.SetDataset(data)
	assert.Same(t, data, m.GetDataset())

	info := m.DatasetInfo()
	assert.True(t, info.Cached)
	assert.Equal(t, 1, info.Records)

	m.ClearDataset()
	assert.Nil(t, m.GetDataset())
	assert.False(t, m.DatasetInfo().Cached)
}

func TestManagerDatasetTierDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.DatasetCacheEnabled = false
	m := testManager(t, opts)

	m.SetDataset(sampleTable("Patrick Mahomes", 2022))
	assert.Nil(t, m.GetDataset(), "disabled tier behaves as a permanent miss")
}

func TestManagerFeedTier(t *testing.T) {
	m := testManager(t, DefaultOptions())

	_, ok := m.GetFeed("Patrick Mahomes", 2024, 1)
	assert.False(t, ok)

	data := sampleTable("Patrick Mahomes", 2024)
	m.SetFeed("Patrick Mahomes", data, 2024, 1)

	got, ok := m.GetFeed("Patrick Mahomes", 2024, 1)
	require.True(t, ok)
	assert.Same(t, data, got)

	// Distinct week is a distinct key.
	_, ok = m.GetFeed("Patrick Mahomes", 2024, 2)
	assert.False(t, ok)
}

func TestManagerFeedExpiry(t *testing.T) {
	opts := DefaultOptions()
	opts.FeedTTL = 10 * time.Millisecond
	m := testManager(t, opts)

	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	time.Sleep(20 * time.Millisecond)

	_, ok := m.GetFeed("Patrick Mahomes", 2024, 1)
	assert.False(t, ok, "expired entry reads as a miss")

	// Purged on read, nothing left for the sweeper.
	assert.Equal(t, 0, m.CleanupFeedExpired())
}

func TestManagerFeedInvalidation(t *testing.T) {
	m := testManager(t, DefaultOptions())
	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 2)
	m.SetFeed("Josh Allen", sampleTable("Josh Allen", 2024), 2024, 1)
	m.SetFeed("Josh Allen", sampleTable("Josh Allen", 2023), 2023, 0)

	assert.Equal(t, 2, m.InvalidateFeedPlayer("Patrick Mahomes"))
	_, ok := m.GetFeed("Josh Allen", 2024, 1)
	assert.True(t, ok)

	assert.Equal(t, 1, m.InvalidateFeedSeason(2023))
	_, ok = m.GetFeed("Josh Allen", 2023, 0)
	assert.False(t, ok)
}

func TestManagerQueryTier(t *testing.T) {
	m := testManager(t, DefaultOptions())
	params := QueryParams{Players: []string{"Patrick Mahomes"}, Season: 2022}

	_, ok := m.GetQueryResult(params)
	assert.False(t, ok)

	result := sampleTable("Patrick Mahomes", 2022)
	m.SetQueryResult(params, result)

	got, ok := m.GetQueryResult(params)
	require.True(t, ok)
	assert.Same(t, result, got)

	// A logically identical request hits regardless of spelling.
	alias := QueryParams{Players: []string{"pat mahomes"}, Season: 2022}
	_, ok = m.GetQueryResult(alias)
	assert.True(t, ok)
}

func TestManagerInvalidateQueryPlayer(t *testing.T) {
	m := testManager(t, DefaultOptions())

	solo := QueryParams{Players: []string{"Patrick Mahomes"}, Season: 2022}
	pair := QueryParams{Players: []string{"Patrick Mahomes", "Josh Allen"}, Season: 2022, Comparison: true}
	other := QueryParams{Players: []string{"Josh Allen"}, Season: 2022}
	m.SetQueryResult(solo, sampleTable("Patrick Mahomes", 2022))
	m.SetQueryResult(pair, sampleTable("Patrick Mahomes", 2022))
	m.SetQueryResult(other, sampleTable("Josh Allen", 2022))

	// Nickname resolves to the same roster name used in the tags.
	assert.Equal(t, 2, m.InvalidateQueryPlayer("pat mahomes"))

	_, ok := m.GetQueryResult(other)
	assert.True(t, ok)
}

func TestManagerTiersAreIndependent(t *testing.T) {
	m := testManager(t, DefaultOptions())
	m.SetDataset(sampleTable("Patrick Mahomes", 2020))
	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	m.SetQueryResult(QueryParams{Players: []string{"Patrick Mahomes"}}, sampleTable("Patrick Mahomes", 2024))

	m.ClearFeed()

	assert.NotNil(t, m.GetDataset())
	_, ok := m.GetQueryResult(QueryParams{Players: []string{"Patrick Mahomes"}})
	assert.True(t, ok)
}

func TestManagerClearAll(t *testing.T) {
	m := testManager(t, DefaultOptions())
	m.SetDataset(sampleTable("Patrick Mahomes", 2020))
	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	m.SetQueryResult(QueryParams{Players: []string{"Patrick Mahomes"}}, sampleTable("Patrick Mahomes", 2024))

	m.ClearAll()

	assert.Nil(t, m.GetDataset())
	_, ok := m.GetFeed("Patrick Mahomes", 2024, 1)
	assert.False(t, ok)
	stats := m.Stats()
	assert.Equal(t, 0, stats.Query.Size)
	assert.Equal(t, int64(0), stats.Query.Hits)
}

func TestManagerStats(t *testing.T) {
	opts := DefaultOptions()
	opts.QueryCacheCapacity = 7
	m := testManager(t, opts)

	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	params := QueryParams{Players: []string{"Patrick Mahomes"}}
	m.SetQueryResult(params, sampleTable("Patrick Mahomes", 2024))
	m.GetQueryResult(params)

	snapshot := m.Stats()
	assert.Equal(t, 1, snapshot.Feed.TotalEntries)
	assert.Equal(t, 1, snapshot.Feed.ValidEntries)
	assert.Equal(t, 7, snapshot.Query.Capacity)
	assert.Equal(t, int64(1), snapshot.Query.Hits)
	assert.False(t, snapshot.Dataset.Cached)
}

func TestManagerCleanupExpiredReport(t *testing.T) {
	opts := DefaultOptions()
	opts.FeedTTL = 10 * time.Millisecond
	opts.QueryCacheTTL = 10 * time.Millisecond
	m := testManager(t, opts)

	m.SetFeed("Patrick Mahomes", sampleTable("Patrick Mahomes", 2024), 2024, 1)
	m.SetQueryResult(QueryParams{Players: []string{"Patrick Mahomes"}}, sampleTable("Patrick Mahomes", 2024))
	time.Sleep(20 * time.Millisecond)

	report := m.CleanupExpired()
	assert.Equal(t, 1, report.Feed)
	assert.Equal(t, 1, report.Query)
	assert.Equal(t, 2, report.Total())
}

func TestInitializeReplacesDefault(t *testing.T) {
	first := Initialize(DefaultOptions(), nil)
	assert.Same(t, first, Default())

	second := Initialize(DefaultOptions(), nil)
	assert.NotSame(t, first, second)
	assert.Same(t, second, Default())
}
