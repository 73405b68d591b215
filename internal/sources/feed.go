package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/stats"
)

// FeedSource serves near-real-time statistics from the live stats
// feed. Results are cached per (player, season, week) in the shared
// cache manager's feed tier with the configured TTL.
type FeedSource struct {
	client        *resty.Client
	manager       *cache.Manager
	throttle      *throttle
	backoff       float64
	currentSeason func() int
	logger        *logrus.Logger
}

// NewFeedSource creates the near-real-time adapter. currentSeason
// supplies the season used when a request leaves the season open.
func NewFeedSource(opts ClientOptions, manager *cache.Manager, currentSeason func() int, logger *logrus.Logger) *FeedSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.applyDefaults()

	s := &FeedSource{
		client:        newRestyClient(opts, logger),
		manager:       manager,
		throttle:      newThrottle(opts.RateLimitDelay),
		backoff:       opts.BackoffFactor,
		currentSeason: currentSeason,
		logger:        logger,
	}
	s.client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusTooManyRequests {
			s.throttle.Penalize(s.backoff)
			s.logger.WithField("delay", s.throttle.Delay().String()).Warn("feed rate limit hit, increasing inter-request delay")
		}
		return nil
	})
	return s
}

// Name implements Source.
func (s *FeedSource) Name() string { return "feed" }

// IsAvailable probes the feed's status endpoint with the configured
// timeout. A failed probe only filters this adapter out of the
// fallback walk; it is re-checked on the next request.
func (s *FeedSource) IsAvailable() bool {
	resp, err := s.client.R().Get("/status")
	if err != nil {
		s.logger.WithError(err).Debug("feed availability check failed")
		return false
	}
	return !resp.IsError()
}

// GetPlayerStats implements Source. Season 0 defaults to the current
// inferred season.
func (s *FeedSource) GetPlayerStats(ctx context.Context, playerName string, opts FetchOptions) (*stats.Table, error) {
	normalized := stats.NormalizePlayerName(playerName)
	season := opts.Season
	if season == 0 {
		season = s.currentSeason()
	}

	if cached, ok := s.manager.GetFeed(normalized, season, opts.Week); ok {
		s.logger.WithFields(logrus.Fields{
			"player": normalized,
			"season": season,
		}).Debug("returning cached feed data")
		return cached.Project(opts.Stats), nil
	}

	s.throttle.Wait()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("season", strconv.Itoa(season)).
		Get("/player-stats")
	if err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("request failed after retries: %v", err))
	}
	if resp.IsError() {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("HTTP %d from feed", resp.StatusCode()))
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("malformed feed response: %v", err))
	}

	table := stats.Normalize(tableFromJSONRows(rows))
	result := table.FilterPlayer(normalized)
	if result.Empty() {
		return nil, NewPlayerNotFoundError(s.Name(), playerName, season)
	}
	result = result.FilterWeek(opts.Week)

	s.manager.SetFeed(normalized, result, season, opts.Week)
	return result.Project(opts.Stats), nil
}
