package sources

import (
	"context"

	"github.com/gridstats/agent/internal/stats"
)

// FetchOptions narrow a player-stats fetch. Season 0 means "current
// or most relevant" for network sources and "all seasons" for the
// historical source; week 0 means season aggregate or all weeks;
// an empty Stats list returns every available column.
type FetchOptions struct {
	Season int
	Week   int
	Stats  []string
}

// Source is the uniform contract every data source adapter exposes.
// Implementations normalize player names identically so cache keys
// and result joins agree across sources.
type Source interface {
	// Name returns the stable adapter name used in logs and errors.
	Name() string

	// IsAvailable is a cheap local check filtering out adapters known
	// to be unusable. It never guarantees a subsequent fetch succeeds.
	IsAvailable() bool

	// GetPlayerStats retrieves statistics for one player. It returns
	// a PlayerNotFoundError when no rows match the player, and a
	// SourceUnavailableError for connectivity or auth failures after
	// the retry budget is spent.
	GetPlayerStats(ctx context.Context, playerName string, opts FetchOptions) (*stats.Table, error)
}
