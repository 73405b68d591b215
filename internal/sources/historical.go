package sources

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gridstats/agent/internal/cache"
	"github.com/gridstats/agent/internal/stats"
)

// conventionalDatasetFiles are tried in order when the dataset path is
// a directory; failing those, the first *.csv file found is used.
var conventionalDatasetFiles = []string{
	"nfl_player_stats.csv",
	"player_stats.csv",
	"stats.csv",
}

// HistoricalSource serves the bulk historical dataset loaded from a
// CSV file. The first access pays a one-time file load; after that
// the table lives in the manager's dataset slot and is treated as
// immutable, safe for concurrent reads.
type HistoricalSource struct {
	dataPath string
	manager  *cache.Manager
	logger   *logrus.Logger

	mu     sync.Mutex
	table  *stats.Table
	loaded bool
}

// NewHistoricalSource creates the historical adapter reading from
// dataPath (a CSV file or a directory containing one).
func NewHistoricalSource(dataPath string, manager *cache.Manager, logger *logrus.Logger) *HistoricalSource {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HistoricalSource{
		dataPath: dataPath,
		manager:  manager,
		logger:   logger,
	}
}

// Name implements Source.
func (s *HistoricalSource) Name() string { return "historical" }

// IsAvailable reports whether a dataset file exists. Cheap: a file
// stat, never a load.
func (s *HistoricalSource) IsAvailable() bool {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return true
	}
	_, err := s.resolveFile()
	return err == nil
}

// GetPlayerStats implements Source. Season 0 returns all seasons for
// the player; week 0 returns all weeks.
func (s *HistoricalSource) GetPlayerStats(ctx context.Context, playerName string, opts FetchOptions) (*stats.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewSourceUnavailableError(s.Name(), err.Error())
	}

	table, err := s.load()
	if err != nil {
		return nil, err
	}

	normalized := stats.NormalizePlayerName(playerName)
	result := table.FilterPlayer(normalized)
	if result.Empty() {
		return nil, NewPlayerNotFoundError(s.Name(), playerName, opts.Season)
	}

	result = result.FilterSeason(opts.Season).FilterWeek(opts.Week)
	return result.Project(opts.Stats), nil
}

// Seasons returns the sorted seasons covered by the dataset.
func (s *HistoricalSource) Seasons() ([]int, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	return table.Seasons(), nil
}

// SearchPlayers returns dataset player names containing the partial
// name, for spelling suggestions.
func (s *HistoricalSource) SearchPlayers(partial string) ([]string, error) {
	table, err := s.load()
	if err != nil {
		return nil, err
	}
	return table.SearchPlayers(partial), nil
}

// load returns the dataset table, reading the CSV file once and
// caching through the manager's dataset slot.
func (s *HistoricalSource) load() (*stats.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table != nil {
		return s.table, nil
	}
	if cached := s.manager.GetDataset(); cached != nil {
		s.logger.Info("using historical dataset from cache manager")
		s.table = cached
		s.loaded = true
		return cached, nil
	}

	file, err := s.resolveFile()
	if err != nil {
		return nil, NewSourceUnavailableError(s.Name(), err.Error())
	}

	s.logger.WithField("file", file).Info("loading historical dataset")
	table, err := readCSVTable(file)
	if err != nil {
		return nil, NewSourceUnavailableError(s.Name(), fmt.Sprintf("failed to load dataset: %v", err))
	}

	table = stats.Normalize(table)
	s.table = table
	s.loaded = true
	s.logger.WithField("records", table.Len()).Info("historical dataset loaded")

	s.manager.SetDataset(table)
	return table, nil
}

// resolveFile locates the dataset CSV under the configured path.
func (s *HistoricalSource) resolveFile() (string, error) {
	info, err := os.Stat(s.dataPath)
	if err != nil {
		return "", fmt.Errorf("data path does not exist: %s", s.dataPath)
	}
	if !info.IsDir() {
		return s.dataPath, nil
	}

	for _, name := range conventionalDatasetFiles {
		candidate := filepath.Join(s.dataPath, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(s.dataPath, "*.csv"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no CSV files found in %s", s.dataPath)
	}
	return matches[0], nil
}

func readCSVTable(path string) (*stats.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return stats.NewTable(), nil
	}
	return stats.FromRecords(rows[0], rows[1:]), nil
}
