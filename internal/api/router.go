package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/metrics"
	"github.com/gridstats/agent/internal/router"
	"github.com/gridstats/agent/internal/sources"
)

// RouterConfig contains the dependencies for the API router.
type RouterConfig struct {
	Router   *router.Router
	Manager  *cache.Manager
	Searcher PlayerSearcher
	Sources  []sources.Source
	Metrics  *metrics.Metrics
	Logger   *logrus.Logger
	Version  string
}

// NewRouter creates a Gin engine with all endpoints configured.
func NewRouter(config *RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	if config.Logger != nil {
		engine.Use(LoggingMiddleware(config.Logger))
	}
	if config.Metrics != nil {
		engine.Use(config.Metrics.Middleware())
		engine.GET("/metrics", config.Metrics.Handler())
	}

	statsHandler := NewStatsHandler(config.Router, config.Searcher)
	cacheHandler := NewCacheHandler(config.Manager)
	healthHandler := NewHealthHandler(config.Version, config.Sources...)

	engine.GET("/health", healthHandler.GetHealth)

	v1 := engine.Group("/api/v1")
	{
		statsGroup := v1.Group("/stats")
		{
			statsGroup.POST("/query", statsHandler.Query)
			statsGroup.GET("/players/search", statsHandler.SearchPlayers)
			statsGroup.GET("/seasons", statsHandler.Seasons)
		}

		cacheGroup := v1.Group("/cache")
		{
			cacheGroup.GET("/stats", cacheHandler.GetStats)
			cacheGroup.POST("/cleanup", cacheHandler.Cleanup)
			cacheGroup.DELETE("", cacheHandler.Clear)
			cacheGroup.DELETE("/players/:name", cacheHandler.InvalidatePlayer)
			cacheGroup.DELETE("/seasons/:season", cacheHandler.InvalidateSeason)
		}
	}

	return engine
}
