package cache

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/stats"
)

// Options configure the cache manager's three tiers.
type Options struct {
	DatasetCacheEnabled bool
	FeedTTL             time.Duration
	QueryCacheCapacity  int
	QueryCacheTTL       time.Duration
}

// DefaultOptions mirror the service defaults: dataset caching on,
// 24 hour feed TTL, 100-entry query cache with 1 hour TTL.
func DefaultOptions() Options {
	return Options{
		DatasetCacheEnabled: true,
		FeedTTL:             24 * time.Hour,
		QueryCacheCapacity:  100,
		QueryCacheTTL:       time.Hour,
	}
}

// DatasetInfo describes the dataset tier.
type DatasetInfo struct {
	Cached     bool    `json:"cached"`
	Records    int     `json:"records,omitempty"`
	MemoryMB   float64 `json:"memory_mb,omitempty"`
	LoadedAt   string  `json:"loaded_at,omitempty"`
	AgeSeconds float64 `json:"age_seconds,omitempty"`
}

// FeedStats describes the near-real-time tier.
type FeedStats struct {
	TotalEntries   int     `json:"total_entries"`
	ValidEntries   int     `json:"valid_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	TTLHours       float64 `json:"ttl_hours"`
}

// ManagerStats is the merged snapshot across all three tiers.
type ManagerStats struct {
	Dataset DatasetInfo `json:"dataset"`
	Feed    FeedStats   `json:"feed"`
	Query   StoreStats  `json:"query"`
}

// CleanupReport breaks down how many expired entries each sweepable
// tier removed.
type CleanupReport struct {
	Feed  int `json:"feed"`
	Query int `json:"query"`
}

// Total returns the combined removal count.
func (r CleanupReport) Total() int {
	return r.Feed + r.Query
}

// Manager owns the three cache tiers: a single dataset slot for the
// bulk historical table, a TTL-keyed map for near-real-time per-player
// data, and a bounded LRU for full query results. Each tier carries
// its own lock; tiers are sized, expired, and cleared independently.
// No manager operation fails: a disabled or inapplicable tier behaves
// as a permanent miss.
type Manager struct {
	opts   Options
	logger *logrus.Logger

	datasetMu       sync.RWMutex
	dataset         *stats.Table
	datasetLoadedAt time.Time

	feedMu sync.Mutex
	feed   map[string]*Entry

	query *LRUStore
}

// NewManager creates a cache manager with the given options.
func NewManager(opts Options, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.FeedTTL <= 0 {
		opts.FeedTTL = DefaultOptions().FeedTTL
	}
	if opts.QueryCacheCapacity <= 0 {
		opts.QueryCacheCapacity = DefaultOptions().QueryCacheCapacity
	}
	if opts.QueryCacheTTL <= 0 {
		opts.QueryCacheTTL = DefaultOptions().QueryCacheTTL
	}

	m := &Manager{
		opts:   opts,
		logger: logger,
		feed:   make(map[string]*Entry),
		query:  NewLRUStore(opts.QueryCacheCapacity, logger),
	}
	logger.WithFields(logrus.Fields{
		"dataset_enabled": opts.DatasetCacheEnabled,
		"feed_ttl":        opts.FeedTTL.String(),
		"query_capacity":  opts.QueryCacheCapacity,
		"query_ttl":       opts.QueryCacheTTL.String(),
	}).Info("cache manager initialized")
	return m
}

// Dataset tier

// GetDataset returns the cached historical dataset, or nil when the
// tier is disabled or empty. The returned table is shared and must be
// treated as immutable.
func (m *Manager) GetDataset() *stats.Table {
	if !m.opts.DatasetCacheEnabled {
		return nil
	}
	m.datasetMu.RLock()
	defer m.datasetMu.RUnlock()
	return m.dataset
}

// SetDataset stores the historical dataset. No-op when the tier is
// disabled.
func (m *Manager) SetDataset(data *stats.Table) {
	if !m.opts.DatasetCacheEnabled {
		m.logger.Debug("dataset caching disabled, skipping cache")
		return
	}
	m.datasetMu.Lock()
	m.dataset = data
	m.datasetLoadedAt = time.Now()
	m.datasetMu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"records":   data.Len(),
		"memory_mb": fmt.Sprintf("%.2f", float64(data.EstimateBytes())/1024/1024),
	}).Info("historical dataset cached")
}

// ClearDataset drops the dataset slot.
func (m *Manager) ClearDataset() {
	m.datasetMu.Lock()
	defer m.datasetMu.Unlock()
	if m.dataset != nil {
		m.logger.Info("clearing dataset cache")
		m.dataset = nil
		m.datasetLoadedAt = time.Time{}
	}
}

// DatasetInfo describes the dataset tier's current contents.
func (m *Manager) DatasetInfo() DatasetInfo {
	m.datasetMu.RLock()
	defer m.datasetMu.RUnlock()

	if m.dataset == nil {
		return DatasetInfo{Cached: false}
	}
	return DatasetInfo{
		Cached:     true,
		Records:    m.dataset.Len(),
		MemoryMB:   math.Round(float64(m.dataset.EstimateBytes())/1024/1024*100) / 100,
		LoadedAt:   m.datasetLoadedAt.Format(time.RFC3339),
		AgeSeconds: time.Since(m.datasetLoadedAt).Seconds(),
	}
}

// Near-real-time tier

func feedKey(player string, season, week int) string {
	return fmt.Sprintf("feed:%s:%d:%d", player, season, week)
}

// GetFeed returns cached near-real-time data for the key, expiring
// lazily on read.
func (m *Manager) GetFeed(player string, season, week int) (*stats.Table, bool) {
	key := feedKey(player, season, week)

	m.feedMu.Lock()
	defer m.feedMu.Unlock()

	entry, ok := m.feed[key]
	if !ok {
		return nil, false
	}
	if entry.IsExpired() {
		m.logger.WithField("key", key).Debug("feed cache entry expired")
		delete(m.feed, key)
		return nil, false
	}
	return entry.Access().(*stats.Table), true
}

// SetFeed caches near-real-time data under (player, season, week)
// with the configured TTL and invalidation tags.
func (m *Manager) SetFeed(player string, data *stats.Table, season, week int) {
	key := feedKey(player, season, week)
	tags := Tags{
		"source": {"feed"},
		"player": {player},
		"season": {strconv.Itoa(season)},
	}

	m.feedMu.Lock()
	m.feed[key] = NewEntry(data, m.opts.FeedTTL, tags)
	m.feedMu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"key":     key,
		"ttl":     m.opts.FeedTTL.String(),
		"records": data.Len(),
	}).Debug("feed data cached")
}

// InvalidateFeedPlayer removes every feed entry for the player. Feed
// entries are keyed by normalized name, so the input is normalized
// the same way.
func (m *Manager) InvalidateFeedPlayer(player string) int {
	return m.invalidateFeedTag("player", stats.NormalizePlayerName(player))
}

// InvalidateFeedSeason removes every feed entry for the season.
func (m *Manager) InvalidateFeedSeason(season int) int {
	return m.invalidateFeedTag("season", strconv.Itoa(season))
}

func (m *Manager) invalidateFeedTag(key, value string) int {
	m.feedMu.Lock()
	defer m.feedMu.Unlock()

	var doomed []string
	for k, entry := range m.feed {
		if entry.Tags.Match(key, value) {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		delete(m.feed, k)
	}
	if len(doomed) > 0 {
		m.logger.WithFields(logrus.Fields{
			"tag":     key + "=" + value,
			"entries": len(doomed),
		}).Info("invalidated feed cache entries")
	}
	return len(doomed)
}

// CleanupFeedExpired removes expired feed entries.
func (m *Manager) CleanupFeedExpired() int {
	m.feedMu.Lock()
	defer m.feedMu.Unlock()

	var doomed []string
	for k, entry := range m.feed {
		if entry.IsExpired() {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		delete(m.feed, k)
	}
	if len(doomed) > 0 {
		m.logger.WithField("entries", len(doomed)).Info("cleaned up expired feed cache entries")
	}
	return len(doomed)
}

// ClearFeed drops all feed entries.
func (m *Manager) ClearFeed() {
	m.feedMu.Lock()
	count := len(m.feed)
	m.feed = make(map[string]*Entry)
	m.feedMu.Unlock()
	m.logger.WithField("entries", count).Info("feed cache cleared")
}

// Query-result tier

// GetQueryResult returns the cached result for a logically identical
// request, if live.
func (m *Manager) GetQueryResult(params QueryParams) (*stats.Table, bool) {
	key := params.Key()
	value, ok := m.query.Get(key)
	if !ok {
		return nil, false
	}
	m.logger.WithField("key", key[:16]).Debug("query cache hit")
	return value.(*stats.Table), true
}

// SetQueryResult caches a combined query result, tagged by every
// player and the season for targeted invalidation.
func (m *Manager) SetQueryResult(params QueryParams, result *stats.Table) {
	canonical := params.Canonical()
	tags := Tags{
		"type":    {"query_result"},
		"players": canonical.Players,
	}
	if canonical.Season != 0 {
		tags["season"] = []string{strconv.Itoa(canonical.Season)}
	}
	key := params.Key()
	m.query.Set(key, result, m.opts.QueryCacheTTL, tags)
	m.logger.WithFields(logrus.Fields{
		"key":     key[:16],
		"records": result.Len(),
	}).Debug("query result cached")
}

// OnQueryEviction registers a callback for capacity-driven evictions
// from the query-result tier.
func (m *Manager) OnQueryEviction(fn func(key string)) {
	m.query.SetEvictionHook(fn)
}

// InvalidateQueryPlayer removes query results containing the player.
func (m *Manager) InvalidateQueryPlayer(player string) int {
	return m.query.InvalidateByTag("players", stats.NormalizePlayerName(player))
}

// ClearQueryCache drops all query results and resets its counters.
func (m *Manager) ClearQueryCache() {
	m.query.Clear()
}

// Global operations

// ClearAll clears every tier independently.
func (m *Manager) ClearAll() {
	m.logger.Info("clearing all caches")
	m.ClearDataset()
	m.ClearFeed()
	m.ClearQueryCache()
}

// CleanupExpired sweeps the feed and query tiers and reports the
// per-tier removal counts. The dataset slot never expires.
func (m *Manager) CleanupExpired() CleanupReport {
	report := CleanupReport{
		Feed:  m.CleanupFeedExpired(),
		Query: m.query.CleanupExpired(),
	}
	m.logger.WithField("entries", report.Total()).Info("cache cleanup complete")
	return report
}

// Stats returns a merged snapshot of all three tiers.
func (m *Manager) Stats() ManagerStats {
	m.feedMu.Lock()
	total := len(m.feed)
	valid := 0
	for _, entry := range m.feed {
		if !entry.IsExpired() {
			valid++
		}
	}
	m.feedMu.Unlock()

	return ManagerStats{
		Dataset: m.DatasetInfo(),
		Feed: FeedStats{
			TotalEntries:   total,
			ValidEntries:   valid,
			ExpiredEntries: total - valid,
			TTLHours:       m.opts.FeedTTL.Hours(),
		},
		Query: m.query.Stats(),
	}
}

// Process-wide default manager. Services that can take dependency
// injection should prefer NewManager; the default exists for the CLI
// and for wiring parity with single-process deployments.
var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it with default
// options on first use.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = NewManager(DefaultOptions(), logrus.StandardLogger())
	}
	return defaultManager
}

// Initialize replaces the process-wide manager with one built from
// custom options and returns it.
func Initialize(opts Options, logger *logrus.Logger) *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = NewManager(opts, logger)
	return defaultManager
}
