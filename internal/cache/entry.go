package cache

import (
	"time"
)

// Tags carry entry metadata used for bulk invalidation. A tag key may
// hold several values (a query result caches under every player it
// contains), so matching succeeds when any value equals.
type Tags map[string][]string

// Match reports whether the tag key holds the given value.
func (t Tags) Match(key, value string) bool {
	for _, v := range t[key] {
		if v == value {
			return true
		}
	}
	return false
}

// Entry is a single timestamped cache value with access accounting.
// A zero TTL means the entry never expires. Expiration is checked
// lazily on read; nothing sweeps entries in the background.
type Entry struct {
	Data         interface{}
	CreatedAt    time.Time
	TTL          time.Duration
	LastAccessed time.Time
	AccessCount  int64
	Tags         Tags
}

// NewEntry creates an entry owning the given payload.
func NewEntry(data interface{}, ttl time.Duration, tags Tags) *Entry {
	now := time.Now()
	if tags == nil {
		tags = Tags{}
	}
	return &Entry{
		Data:         data,
		CreatedAt:    now,
		TTL:          ttl,
		LastAccessed: now,
		Tags:         tags,
	}
}

// IsExpired reports whether the entry's TTL has elapsed. Pure with
// respect to the entry; no side effects.
func (e *Entry) IsExpired() bool {
	if e.TTL <= 0 {
		return false
	}
	return time.Since(e.CreatedAt) > e.TTL
}

// Access returns the payload and records the access. The payload
// itself is never mutated.
func (e *Entry) Access() interface{} {
	e.LastAccessed = time.Now()
	e.AccessCount++
	return e.Data
}

// Age returns how long ago the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}
