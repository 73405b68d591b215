package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache administration operations",
	Long:  `Inspect, warm, clean up, clear and invalidate the agent's cache tiers.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Preload the historical dataset into the dataset cache",
	RunE:  runCacheWarm,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Sweep expired entries from the feed and query tiers",
	RunE:  runCacheCleanup,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every cache tier",
	RunE:  runCacheClear,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Invalidate cached entries by player or season",
	RunE:  runCacheInvalidate,
}

var (
	invalidatePlayer string
	invalidateSeason int
)

func init() {
	cacheCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text|json)")
	cacheInvalidateCmd.Flags().StringVar(&invalidatePlayer, "player", "", "player name to invalidate")
	cacheInvalidateCmd.Flags().IntVar(&invalidateSeason, "season", 0, "season to invalidate")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	rt, err := cacheRuntime()
	if err != nil {
		return err
	}

	stats := rt.manager.Stats()
	if outputFormat == "json" {
		return printJSON(stats)
	}

	fmt.Printf("Dataset tier: cached=%t records=%d memory_mb=%.2f\n",
		stats.Dataset.Cached, stats.Dataset.Records, stats.Dataset.MemoryMB)
	fmt.Printf("Feed tier:    entries=%d valid=%d expired=%d\n",
		stats.Feed.TotalEntries, stats.Feed.ValidEntries, stats.Feed.ExpiredEntries)
	fmt.Printf("Query tier:   size=%d/%d hits=%d misses=%d hit_rate=%.2f%%\n",
		stats.Query.Size, stats.Query.Capacity, stats.Query.Hits, stats.Query.Misses, stats.Query.HitRate)
	return nil
}

func runCacheWarm(cmd *cobra.Command, args []string) error {
	rt, err := cacheRuntime()
	if err != nil {
		return err
	}

	if !rt.historical.IsAvailable() {
		return fmt.Errorf("historical dataset not found")
	}
	seasons, err := rt.historical.Seasons()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	info := rt.manager.DatasetInfo()
	if outputFormat == "json" {
		return printJSON(info)
	}
	fmt.Printf("Dataset loaded: %d records, %d seasons\n", info.Records, len(seasons))
	return nil
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	rt, err := cacheRuntime()
	if err != nil {
		return err
	}

	report := rt.manager.CleanupExpired()
	if outputFormat == "json" {
		return printJSON(report)
	}
	fmt.Printf("Removed %d expired entries (feed=%d query=%d)\n", report.Total(), report.Feed, report.Query)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	rt, err := cacheRuntime()
	if err != nil {
		return err
	}

	rt.manager.ClearAll()
	fmt.Println("All cache tiers cleared")
	return nil
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	if invalidatePlayer == "" && invalidateSeason == 0 {
		return fmt.Errorf("either --player or --season is required")
	}

	rt, err := cacheRuntime()
	if err != nil {
		return err
	}

	removed := 0
	if invalidatePlayer != "" {
		removed += rt.manager.InvalidateFeedPlayer(invalidatePlayer)
		removed += rt.manager.InvalidateQueryPlayer(invalidatePlayer)
	}
	if invalidateSeason != 0 {
		removed += rt.manager.InvalidateFeedSeason(invalidateSeason)
	}

	fmt.Printf("Invalidated %d cache entries\n", removed)
	return nil
}

func cacheRuntime() (*runtime, error) {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return nil, err
	}
	return buildRuntime(cfg, logger)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
