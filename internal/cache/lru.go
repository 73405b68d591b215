package cache

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StoreStats is a point-in-time snapshot of an LRU store.
type StoreStats struct {
	Size           int     `json:"size"`
	Capacity       int     `json:"capacity"`
	Hits           int64   `json:"hits"`
	Misses         int64   `json:"misses"`
	HitRate        float64 `json:"hit_rate"`
	ExpiredEntries int     `json:"expired_entries"`
}

// LRUStore is a fixed-capacity store evicting the least recently used
// entry. The access-order slice keeps LRU at the front and MRU at the
// tail; ties fall back to insertion order. All operations are guarded
// by the store's own mutex.
type LRUStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*Entry
	order    []string
	hits     int64
	misses   int64
	onEvict  func(key string)
	logger   *logrus.Logger
}

// NewLRUStore creates a store holding at most capacity entries.
func NewLRUStore(capacity int, logger *logrus.Logger) *LRUStore {
	if capacity <= 0 {
		capacity = 100
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LRUStore{
		capacity: capacity,
		entries:  make(map[string]*Entry),
		order:    make([]string, 0, capacity),
		logger:   logger,
	}
}

// Get returns the live value for key. An absent key is a miss. An
// expired key is removed and counted as a miss. A valid hit moves the
// key to most-recently-used position.
func (s *LRUStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}
	if entry.IsExpired() {
		s.logger.WithField("key", key).Debug("cache entry expired")
		s.remove(key)
		s.misses++
		return nil, false
	}

	s.touch(key)
	s.hits++
	return entry.Access(), true
}

// Set inserts a value at most-recently-used position. An existing
// entry under the same key is replaced outright, which counts as a
// fresh insert for LRU ordering, not an access. When the store is
// full, exactly one least-recently-used entry is evicted.
func (s *LRUStore) Set(key string, value interface{}, ttl time.Duration, tags Tags) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.remove(key)
	}
	if len(s.entries) >= s.capacity {
		evicted := s.order[0]
		entry := s.entries[evicted]
		s.remove(evicted)
		s.logger.WithFields(logrus.Fields{
			"key":      evicted,
			"age":      entry.Age().String(),
			"accesses": entry.AccessCount,
		}).Debug("cache capacity reached, evicted entry")
		if s.onEvict != nil {
			s.onEvict(evicted)
		}
	}

	s.entries[key] = NewEntry(value, ttl, tags)
	s.order = append(s.order, key)
}

// SetEvictionHook registers a callback invoked with the key of every
// capacity-driven eviction. The hook runs under the store lock and
// must not call back into the store.
func (s *LRUStore) SetEvictionHook(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Delete removes the key, reporting whether it was present.
func (s *LRUStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return false
	}
	s.remove(key)
	return true
}

// InvalidateByTag removes every entry whose tag matches and returns
// the count removed.
func (s *LRUStore) InvalidateByTag(tagKey, tagValue string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for key, entry := range s.entries {
		if entry.Tags.Match(tagKey, tagValue) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		s.remove(key)
	}
	if len(doomed) > 0 {
		s.logger.WithFields(logrus.Fields{
			"tag":     tagKey + "=" + tagValue,
			"entries": len(doomed),
		}).Info("invalidated cache entries by tag")
	}
	return len(doomed)
}

// CleanupExpired removes all currently expired entries. Hit and miss
// counters are untouched.
func (s *LRUStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for key, entry := range s.entries {
		if entry.IsExpired() {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		s.remove(key)
	}
	if len(doomed) > 0 {
		s.logger.WithField("entries", len(doomed)).Info("cleaned up expired cache entries")
	}
	return len(doomed)
}

// Clear removes all entries and resets the hit/miss counters.
func (s *LRUStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.entries)
	s.entries = make(map[string]*Entry)
	s.order = s.order[:0]
	s.hits = 0
	s.misses = 0
	s.logger.WithField("entries", count).Info("cache cleared")
}

// Len returns the current number of entries, expired or not.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns a snapshot of the store's counters.
func (s *LRUStore) Stats() StoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rate float64
	if total := s.hits + s.misses; total > 0 {
		rate = math.Round(float64(s.hits)/float64(total)*100*100) / 100
	}
	expired := 0
	for _, entry := range s.entries {
		if entry.IsExpired() {
			expired++
		}
	}
	return StoreStats{
		Size:           len(s.entries),
		Capacity:       s.capacity,
		Hits:           s.hits,
		Misses:         s.misses,
		HitRate:        rate,
		ExpiredEntries: expired,
	}
}

// remove deletes the key from both the map and the order slice.
// Callers hold the lock.
func (s *LRUStore) remove(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// touch moves the key to most-recently-used position. Callers hold
// the lock.
func (s *LRUStore) touch(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.order = append(s.order, key)
}
