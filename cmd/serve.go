package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gridstats/agent/internal/api"
	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/config"
	"github.com/gridstats/agent/internal/metrics"
	"github.com/gridstats/agent/internal/router"
	"github.com/gridstats/agent/internal/sources"
)

// Version is the agent release version.
const Version = "1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Start the statistics agent: build the cache tiers, wire the data source adapters, and serve the query API.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Cache.WarmOnStartup {
		warmDataset(rt, logger)
	}

	var scheduler *cron.Cron
	if cfg.Cache.CleanupSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Cache.CleanupSchedule, func() {
			report := rt.manager.CleanupExpired()
			logger.WithFields(logrus.Fields{
				"feed":  report.Feed,
				"query": report.Query,
			}).Info("Scheduled cache cleanup completed")
		})
		if err != nil {
			return fmt.Errorf("invalid cleanup schedule %q: %w", cfg.Cache.CleanupSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = rt.metrics
	}

	engine := api.NewRouter(&api.RouterConfig{
		Router:   rt.router,
		Manager:  rt.manager,
		Searcher: rt.historical,
		Sources:  []sources.Source{rt.historical, rt.feed, rt.webapi},
		Metrics:  m,
		Logger:   logger,
		Version:  Version,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    server.Addr,
			"version": Version,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// runtime holds the wired services shared by the serve and cache
// commands.
type runtime struct {
	manager    *cache.Manager
	historical *sources.HistoricalSource
	feed       *sources.FeedSource
	webapi     *sources.WebAPISource
	router     *router.Router
	metrics    *metrics.Metrics
}

func buildRuntime(cfg *config.Config, logger *logrus.Logger) (*runtime, error) {
	manager := cache.Initialize(cache.Options{
		DatasetCacheEnabled: cfg.Cache.DatasetEnabled,
		FeedTTL:             time.Duration(cfg.Cache.FeedTTLHours) * time.Hour,
		QueryCacheCapacity:  cfg.Cache.QueryCacheCapacity,
		QueryCacheTTL:       time.Duration(cfg.Cache.QueryCacheTTLHours) * time.Hour,
	}, logger)

	historical := sources.NewHistoricalSource(cfg.Sources.DatasetPath, manager, logger)

	clientOpts := func(baseURL string) sources.ClientOptions {
		return sources.ClientOptions{
			BaseURL:        baseURL,
			Timeout:        cfg.Sources.Timeout,
			MaxRetries:     cfg.Sources.MaxRetries,
			RetryDelay:     cfg.Sources.RetryDelay,
			BackoffFactor:  cfg.Sources.BackoffFactor,
			RateLimitDelay: cfg.Sources.RateLimitDelay,
		}
	}

	currentSeason := func() int {
		if cfg.Router.CurrentSeason > 0 {
			return cfg.Router.CurrentSeason
		}
		return router.SeasonForDate(time.Now())
	}
	feed := sources.NewFeedSource(clientOpts(cfg.Sources.FeedBaseURL), manager, currentSeason, logger)
	webapi := sources.NewWebAPISource(clientOpts(cfg.Sources.WebAPIBaseURL), currentSeason, logger)

	m := metrics.New(cfg.Metrics.Namespace)
	manager.OnQueryEviction(func(string) {
		m.CacheEvictions.WithLabelValues("query").Inc()
	})
	r := router.New(historical, feed, webapi, manager, router.Options{
		CurrentSeason:       cfg.Router.CurrentSeason,
		HistoricalMaxSeason: cfg.Router.HistoricalMaxSeason,
	}, m, logger)

	return &runtime{
		manager:    manager,
		historical: historical,
		feed:       feed,
		webapi:     webapi,
		router:     r,
		metrics:    m,
	}, nil
}

func warmDataset(rt *runtime, logger *logrus.Logger) {
	if !rt.historical.IsAvailable() {
		logger.Warn("Historical dataset not found, skipping cache warm")
		return
	}
	seasons, err := rt.historical.Seasons()
	if err != nil {
		logger.WithError(err).Warn("Failed to warm dataset cache")
		return
	}
	logger.WithField("seasons", len(seasons)).Info("Dataset cache warmed")
}
