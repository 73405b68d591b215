package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/stats"
)

// webStatAliases map the web API's camelCase stat names onto the
// canonical schema.
var webStatAliases = map[string]string{
	"passingYards":      "passing_yards",
	"passingTouchdowns": "passing_touchdowns",
	"completions":       "completions",
	"attempts":          "attempts",
	"interceptions":     "interceptions",
	"rushingYards":      "rushing_yards",
	"rushingTouchdowns": "rushing_touchdowns",
	"rushingAttempts":   "rushing_attempts",
	"receivingYards":    "receiving_yards",
	"receivingTouchdowns": "receiving_touchdowns",
	"receptions":        "receptions",
	"targets":           "targets",
}

type webAthlete struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Team        struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	Position struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
}

type webAthleteSearch struct {
	Athletes []webAthlete `json:"athletes"`
}

type webStatistics struct {
	Athlete  webAthlete `json:"athlete"`
	Team     struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	Position struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	Statistics []struct {
		Name  string             `json:"name"`
		Stats map[string]float64 `json:"stats"`
	} `json:"statistics"`
}

// WebAPISource is the supplementary adapter backed by the public web
// API. It keeps its own short-lived parsed-result cache on top of the
// shared manager tiers, since its data changes faster than the feed's.
type WebAPISource struct {
	client        *resty.Client
	local         *gocache.Cache
	throttle      *throttle
	backoff       float64
	currentSeason func() int
	logger        *logrus.Logger
}

// NewWebAPISource creates the supplementary web adapter.
func NewWebAPISource(opts ClientOptions, currentSeason func() int, logger *logrus.Logger) *WebAPISource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.applyDefaults()

	s := &WebAPISource{
		client:        newRestyClient(opts, logger),
		local:         gocache.New(time.Hour, 2*time.Hour),
		throttle:      newThrottle(opts.RateLimitDelay),
		backoff:       opts.BackoffFactor,
		currentSeason: currentSeason,
		logger:        logger,
	}
	s.client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusTooManyRequests {
			s.throttle.Penalize(s.backoff)
			s.logger.WithField("delay", s.throttle.Delay().String()).Warn("web API rate limit hit, increasing inter-request delay")
		}
		return nil
	})
	return s
}

// Name implements Source.
func (s *WebAPISource) Name() string { return "webapi" }

// IsAvailable makes a lightweight scoreboard probe.
func (s *WebAPISource) IsAvailable() bool {
	resp, err := s.client.R().Get("/scoreboard")
	if err != nil {
		s.logger.WithError(err).Debug("web API availability check failed")
		return false
	}
	return !resp.IsError()
}

// GetPlayerStats implements Source. Season 0 defaults to the current
// inferred season.
func (s *WebAPISource) GetPlayerStats(ctx context.Context, playerName string, opts FetchOptions) (*stats.Table, error) {
	normalized := stats.NormalizePlayerName(playerName)
	season := opts.Season
	if season == 0 {
		season = s.currentSeason()
	}

	cacheKey := fmt.Sprintf("webapi:%s:%d:%d", normalized, season, opts.Week)
	if cached, ok := s.local.Get(cacheKey); ok {
		s.logger.WithField("key", cacheKey).Debug("returning cached web API data")
		return cached.(*stats.Table).Project(opts.Stats), nil
	}

	athlete, err := s.findAthlete(ctx, normalized, season)
	if err != nil {
		return nil, err
	}
	if athlete == nil {
		return nil, NewPlayerNotFoundError(s.Name(), playerName, season)
	}

	result, err := s.fetchStatistics(ctx, athlete, season, opts.Week)
	if err != nil {
		return nil, err
	}

	s.local.Set(cacheKey, result, gocache.DefaultExpiration)
	return result.Project(opts.Stats), nil
}

// findAthlete searches the web API for a player whose display name
// matches the normalized name. A nil athlete with nil error means the
// player is unknown upstream.
func (s *WebAPISource) findAthlete(ctx context.Context, normalized string, season int) (*webAthlete, error) {
	s.throttle.Wait()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":  normalized,
			"season": strconv.Itoa(season),
		}).
		Get("/athletes")
	if err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("athlete search failed: %v", err))
	}
	if resp.IsError() {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("HTTP %d from athlete search", resp.StatusCode()))
	}

	var search webAthleteSearch
	if err := json.Unmarshal(resp.Body(), &search); err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("malformed athlete response: %v", err))
	}

	for i := range search.Athletes {
		if stats.NormalizePlayerName(search.Athletes[i].DisplayName) == normalized {
			return &search.Athletes[i], nil
		}
	}
	return nil, nil
}

// fetchStatistics pulls and converts one athlete's statistics.
func (s *WebAPISource) fetchStatistics(ctx context.Context, athlete *webAthlete, season, week int) (*stats.Table, error) {
	s.throttle.Wait()
	req := s.client.R().
		SetContext(ctx).
		SetQueryParam("season", strconv.Itoa(season))
	if week != 0 {
		req.SetQueryParam("week", strconv.Itoa(week))
	}

	resp, err := req.Get(fmt.Sprintf("/athletes/%s/statistics", athlete.ID))
	if err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("statistics fetch failed: %v", err))
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, NewPlayerNotFoundError(s.Name(), athlete.DisplayName, season)
	}
	if resp.IsError() {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("HTTP %d from statistics fetch", resp.StatusCode()))
	}

	var payload webStatistics
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("malformed statistics response: %v", err))
	}

	row := stats.Row{
		PlayerName: athlete.DisplayName,
		Team:       firstNonEmpty(payload.Team.Abbreviation, athlete.Team.Abbreviation),
		Position:   firstNonEmpty(payload.Position.Abbreviation, athlete.Position.Abbreviation),
		Season:     season,
		Week:       week,
		Stats:      make(map[string]float64),
	}
	for _, category := range payload.Statistics {
		for apiName, canonical := range webStatAliases {
			if value, ok := category.Stats[apiName]; ok {
				row.Stats[canonical] = value
			}
		}
	}

	table := stats.NewTable()
	table.Append(row)
	return table, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
