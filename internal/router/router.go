package router

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/metrics"
	"github.com/gridstats/agent/internal/sources"
	"github.com/gridstats/agent/internal/stats"
)

// Season bands drive source ordering. Current-season data flows
// through the weekly feed first, deep history through the bundled
// dataset, and the gap years through whichever network source answers.
const (
	bandCurrent    = "current"
	bandHistorical = "historical"
	bandGap        = "gap"
)

// Options configure routing decisions.
type Options struct {
	// CurrentSeason overrides season inference when non-zero.
	CurrentSeason int

	// HistoricalMaxSeason is the newest season covered by the bundled
	// historical dataset.
	HistoricalMaxSeason int
}

// Router resolves queries against the cache tiers and the source
// fallback chain.
type Router struct {
	historical sources.Source
	feed       sources.Source
	webapi     sources.Source

	manager *cache.Manager
	metrics *metrics.Metrics
	opts    Options
	logger  *logrus.Logger

	// now is swapped in tests to pin season inference.
	now func() time.Time
}

// New wires a router over the three adapters and the shared cache
// manager. metrics may be nil.
func New(historical, feed, webapi sources.Source, manager *cache.Manager, opts Options, m *metrics.Metrics, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.HistoricalMaxSeason <= 0 {
		opts.HistoricalMaxSeason = 2023
	}
	return &Router{
		historical: historical,
		feed:       feed,
		webapi:     webapi,
		manager:    manager,
		metrics:    m,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// SeasonForDate returns the season in play at t. Before March the
// previous year's season is still the one in play (playoffs and the
// offseason gap).
func SeasonForDate(t time.Time) int {
	if t.Month() < time.March {
		return t.Year() - 1
	}
	return t.Year()
}

// CurrentSeason returns the configured season, or infers it from the
// clock.
func (r *Router) CurrentSeason() int {
	if r.opts.CurrentSeason > 0 {
		return r.opts.CurrentSeason
	}
	return SeasonForDate(r.now())
}

func (r *Router) band(season int) string {
	switch {
	case season == 0 || season >= r.CurrentSeason():
		return bandCurrent
	case season <= r.opts.HistoricalMaxSeason:
		return bandHistorical
	default:
		return bandGap
	}
}

// PrimarySource names the first adapter tried for a season.
func (r *Router) PrimarySource(season int) string {
	switch r.band(season) {
	case bandHistorical:
		return r.historical.Name()
	default:
		return r.feed.Name()
	}
}

// FallbackSources names the adapters tried after the primary fails,
// in order.
func (r *Router) FallbackSources(season int) []string {
	switch r.band(season) {
	case bandHistorical:
		return []string{r.feed.Name(), r.webapi.Name()}
	default:
		return []string{r.webapi.Name(), r.historical.Name()}
	}
}

func (r *Router) sourceOrder(season int) []sources.Source {
	switch r.band(season) {
	case bandHistorical:
		return []sources.Source{r.historical, r.feed, r.webapi}
	default:
		return []sources.Source{r.feed, r.webapi, r.historical}
	}
}

// retrieveWithFallback walks the source chain for one player and
// returns the first non-empty result. Unavailable adapters are
// skipped, player-not-found answers count as cleanly empty, and any
// other failure taints the chain: exhausting it then reports
// DataRetrievalFailedError instead of NoDataFoundError because the
// absence of data cannot be trusted.
func (r *Router) retrieveWithFallback(ctx context.Context, player string, opts sources.FetchOptions) (*stats.Table, error) {
	var (
		tried  []string
		causes []error
	)

	for _, src := range r.sourceOrder(opts.Season) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := src.Name()
		if !src.IsAvailable() {
			r.logger.WithFields(logrus.Fields{
				"source": name,
				"player": player,
			}).Debug("Skipping unavailable source")
			r.metrics.RecordSourceAttempt(name, "unavailable")
			continue
		}
		tried = append(tried, name)

		table, err := src.GetPlayerStats(ctx, player, opts)
		switch {
		case err == nil && table != nil && !table.Empty():
			r.metrics.RecordSourceAttempt(name, "success")
			r.logger.WithFields(logrus.Fields{
				"source": name,
				"player": player,
				"season": opts.Season,
				"rows":   table.Len(),
			}).Debug("Source returned data")
			return table, nil
		case err == nil:
			r.metrics.RecordSourceAttempt(name, "empty")
		case sources.IsPlayerNotFound(err):
			r.metrics.RecordSourceAttempt(name, "not_found")
			r.logger.WithFields(logrus.Fields{
				"source": name,
				"player": player,
				"season": opts.Season,
				"week":   opts.Week,
			}).Debug("Player not found in source")
		default:
			r.metrics.RecordSourceAttempt(name, "error")
			causes = append(causes, err)
			r.logger.WithFields(logrus.Fields{
				"source": name,
				"player": player,
				"season": opts.Season,
				"week":   opts.Week,
			}).WithError(err).Warn("Source failed, trying next")
		}
	}

	if len(causes) > 0 {
		return nil, &DataRetrievalFailedError{Player: player, Season: opts.Season, Tried: tried, Causes: causes}
	}
	return nil, &NoDataFoundError{Player: player, Season: opts.Season, Tried: tried}
}

// Retrieve runs the full query pipeline: validate, check the query
// result cache, fetch per player through the fallback chain, then
// filter, aggregate and cache the combined result.
func (r *Router) Retrieve(ctx context.Context, req cache.QueryParams) (*stats.Table, error) {
	start := time.Now()
	params := req.Canonical()

	if len(params.Players) == 0 {
		return nil, &ValidationError{Field: "players", Message: "at least one player is required"}
	}
	if params.Season < 0 {
		return nil, &ValidationError{Field: "season", Message: "season cannot be negative"}
	}
	if params.Week < 0 || params.Week > 22 {
		return nil, &ValidationError{Field: "week", Message: "week must be between 0 and 22"}
	}
	for _, w := range params.SpecificWeeks {
		if w < 1 || w > 22 {
			return nil, &ValidationError{Field: "specific_weeks", Message: "weeks must be between 1 and 22"}
		}
	}

	if cached, ok := r.manager.GetQueryResult(params); ok {
		r.metrics.RecordCacheHit("query")
		r.metrics.RecordRetrieval(time.Since(start))
		return cached.Clone(), nil
	}
	r.metrics.RecordCacheMiss("query")

	week := params.Week
	if week == 0 && len(params.SpecificWeeks) == 1 {
		week = params.SpecificWeeks[0]
	}
	opts := sources.FetchOptions{
		Season: params.Season,
		Week:   week,
		Stats:  params.Statistics,
	}

	// A player whose whole chain comes up empty is skipped rather than
	// failing the query, so a comparison still returns the players that
	// do have data. The query fails only when nobody produced any.
	tables := make([]*stats.Table, 0, len(params.Players))
	var failures []error
	for _, player := range params.Players {
		table, err := r.retrieveWithFallback(ctx, player, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failures = append(failures, err)
			r.logger.WithFields(logrus.Fields{
				"player": player,
				"season": params.Season,
			}).WithError(err).Warn("No source produced data for player, skipping")
			continue
		}
		tables = append(tables, stats.Normalize(table))
	}
	if len(tables) == 0 {
		for _, err := range failures {
			if IsDataRetrievalFailed(err) {
				return nil, err
			}
		}
		return nil, failures[0]
	}

	result := stats.Concat(tables...)
	if len(params.SpecificWeeks) > 1 {
		result = filterWeeks(result, params.SpecificWeeks)
	}
	if params.Filters != nil {
		result = stats.ApplyFilters(result, params.Filters)
	}
	if agg, ok := stats.ParseAggregation(params.Aggregation); ok {
		result = stats.Aggregate(result, agg)
	}
	result = result.Project(params.Statistics)

	r.manager.SetQueryResult(params, result)
	r.metrics.RecordRetrieval(time.Since(start))
	r.logger.WithFields(logrus.Fields{
		"players":  len(params.Players),
		"season":   params.Season,
		"rows":     result.Len(),
		"duration": time.Since(start).String(),
	}).Info("Query resolved")
	return result, nil
}

func filterWeeks(t *stats.Table, weeks []int) *stats.Table {
	keep := make(map[int]struct{}, len(weeks))
	for _, w := range weeks {
		keep[w] = struct{}{}
	}
	out := stats.NewTable()
	for _, row := range t.Rows {
		if _, ok := keep[row.Week]; ok {
			out.Append(row.Clone())
		}
	}
	return out
}
