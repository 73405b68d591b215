package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/router"
	"github.com/gridstats/agent/internal/sources"
	"github.com/gridstats/agent/internal/stats"
)

// PlayerSearcher resolves partial player names against the bundled
// dataset.
type PlayerSearcher interface {
	SearchPlayers(partial string) ([]string, error)
	Seasons() ([]int, error)
}

// StatsHandler serves query endpoints.
type StatsHandler struct {
	router   *router.Router
	searcher PlayerSearcher
}

// NewStatsHandler creates a StatsHandler. searcher may be nil when no
// historical dataset is configured.
func NewStatsHandler(r *router.Router, searcher PlayerSearcher) *StatsHandler {
	return &StatsHandler{router: r, searcher: searcher}
}

// Query resolves a stats query through the cache tiers and source
// fallback chain.
func (h *StatsHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, "INVALID_REQUEST", err.Error())
		return
	}

	params := cache.QueryParams{
		Players:       req.Players,
		Statistics:    req.Statistics,
		Season:        req.Season,
		Week:          req.Week,
		SpecificWeeks: req.SpecificWeeks,
		Career:        req.Career,
		Aggregation:   req.Aggregation,
		Comparison:    req.Comparison,
	}
	if req.Filters != nil {
		params.Filters = &stats.FilterSpec{
			Opponent: req.Filters.Opponent,
			HomeAway: req.Filters.HomeAway,
			MinValue: req.Filters.MinValue,
			MaxValue: req.Filters.MaxValue,
		}
	}

	result, err := h.router.Retrieve(c.Request.Context(), params)
	if err != nil {
		respondWithRetrieveError(c, err)
		return
	}

	respondWithSuccess(c, http.StatusOK, QueryResponse{
		Rows:     result.Rows,
		Columns:  result.StatColumns(),
		RowCount: result.Len(),
	})
}

// SearchPlayers finds player names matching a partial query.
func (h *StatsHandler) SearchPlayers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, "MISSING_QUERY", "query parameter 'q' is required")
		return
	}
	if h.searcher == nil {
		respondWithError(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "NO_DATASET", "no historical dataset configured")
		return
	}

	players, err := h.searcher.SearchPlayers(query)
	if err != nil {
		respondWithRetrieveError(c, err)
		return
	}
	respondWithSuccess(c, http.StatusOK, SearchResponse{Query: query, Players: players})
}

// Seasons lists the seasons covered by the bundled dataset.
func (h *StatsHandler) Seasons(c *gin.Context) {
	if h.searcher == nil {
		respondWithError(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "NO_DATASET", "no historical dataset configured")
		return
	}
	seasons, err := h.searcher.Seasons()
	if err != nil {
		respondWithRetrieveError(c, err)
		return
	}
	respondWithSuccess(c, http.StatusOK, gin.H{"seasons": seasons})
}

// CacheHandler serves cache administration endpoints.
type CacheHandler struct {
	manager *cache.Manager
}

// NewCacheHandler creates a CacheHandler.
func NewCacheHandler(manager *cache.Manager) *CacheHandler {
	return &CacheHandler{manager: manager}
}

// GetStats reports per-tier cache statistics.
func (h *CacheHandler) GetStats(c *gin.Context) {
	respondWithSuccess(c, http.StatusOK, h.manager.Stats())
}

// Cleanup sweeps expired entries from the feed and query tiers.
func (h *CacheHandler) Cleanup(c *gin.Context) {
	report := h.manager.CleanupExpired()
	respondWithSuccess(c, http.StatusOK, gin.H{
		"feed":    report.Feed,
		"query":   report.Query,
		"removed": report.Total(),
	})
}

// Clear empties every cache tier.
func (h *CacheHandler) Clear(c *gin.Context) {
	h.manager.ClearAll()
	respondWithSuccess(c, http.StatusOK, gin.H{"cleared": true})
}

// InvalidatePlayer removes a player's entries from the feed and query
// tiers.
func (h *CacheHandler) InvalidatePlayer(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, "MISSING_PLAYER", "player name is required")
		return
	}

	feed := h.manager.InvalidateFeedPlayer(name)
	query := h.manager.InvalidateQueryPlayer(name)
	respondWithSuccess(c, http.StatusOK, InvalidationResponse{
		Feed:  feed,
		Query: query,
		Total: feed + query,
	})
}

// InvalidateSeason removes a season's entries from the feed tier.
func (h *CacheHandler) InvalidateSeason(c *gin.Context) {
	season, err := strconv.Atoi(c.Param("season"))
	if err != nil || season <= 0 {
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, "INVALID_SEASON", "season must be a positive integer")
		return
	}

	feed := h.manager.InvalidateFeedSeason(season)
	respondWithSuccess(c, http.StatusOK, InvalidationResponse{Feed: feed, Total: feed})
}

// HealthHandler serves liveness and source availability.
type HealthHandler struct {
	version string
	sources []sources.Source
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(version string, srcs ...sources.Source) *HealthHandler {
	return &HealthHandler{version: version, sources: srcs}
}

// GetHealth reports service status and which adapters are reachable.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	avail := make(map[string]bool, len(h.sources))
	for _, src := range h.sources {
		avail[src.Name()] = src.IsAvailable()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   h.version,
		"sources":   avail,
		"timestamp": time.Now().UTC(),
	})
}

func respondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC(),
	})
}

func respondWithError(c *gin.Context, status int, errType ErrorType, code, message string) {
	now := time.Now().UTC()
	c.JSON(status, APIResponse{
		Success: false,
		Error: &APIError{
			Type:      errType,
			Code:      code,
			Message:   message,
			RequestID: requestID(c),
			Timestamp: now,
		},
		RequestID: requestID(c),
		Timestamp: now,
	})
}

// respondWithRetrieveError maps retrieval errors onto HTTP statuses:
// bad queries are the caller's fault, clean misses are 404, and a
// tainted fallback chain is an upstream failure rather than ours.
func respondWithRetrieveError(c *gin.Context, err error) {
	switch {
	case router.IsValidation(err):
		respondWithError(c, http.StatusBadRequest, ErrorTypeValidation, "INVALID_QUERY", err.Error())
	case router.IsNoDataFound(err):
		respondWithError(c, http.StatusNotFound, ErrorTypeNotFound, "NO_DATA_FOUND", err.Error())
	case router.IsDataRetrievalFailed(err):
		respondWithError(c, http.StatusBadGateway, ErrorTypeUnavailable, "DATA_RETRIEVAL_FAILED", err.Error())
	case sources.IsSourceUnavailable(err):
		respondWithError(c, http.StatusBadGateway, ErrorTypeUnavailable, "SOURCE_UNAVAILABLE", err.Error())
	default:
		respondWithError(c, http.StatusInternalServerError, ErrorTypeInternal, "INTERNAL_ERROR", err.Error())
	}
}
