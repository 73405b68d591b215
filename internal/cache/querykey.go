package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/gridstats/agent/internal/stats"
)

// QueryParams is the canonical shape of a retrieval request used for
// query-result caching. The fixed field set keeps serialization
// deterministic: two logically identical requests produce the same
// key no matter how the caller assembled them.
type QueryParams struct {
	Players       []string          `json:"players"`
	Statistics    []string          `json:"statistics,omitempty"`
	Season        int               `json:"season,omitempty"`
	Week          int               `json:"week,omitempty"`
	SpecificWeeks []int             `json:"specific_weeks,omitempty"`
	Career        bool              `json:"career,omitempty"`
	Filters       *stats.FilterSpec `json:"filters,omitempty"`
	Aggregation   string            `json:"aggregation,omitempty"`
	Comparison    bool              `json:"comparison,omitempty"`
}

// Canonical returns a normalized copy: player names run through the
// shared normalization, statistic names map to the canonical schema
// and sort (projection is order-independent), and the aggregation
// keyword lowercases. Player order is kept; it carries presentation
// meaning for comparisons.
func (p QueryParams) Canonical() QueryParams {
	out := p

	out.Players = make([]string, 0, len(p.Players))
	for _, name := range p.Players {
		if normalized := stats.NormalizePlayerName(name); normalized != "" {
			out.Players = append(out.Players, normalized)
		}
	}

	if len(p.Statistics) > 0 {
		out.Statistics = make([]string, 0, len(p.Statistics))
		for _, s := range p.Statistics {
			out.Statistics = append(out.Statistics, stats.CanonicalColumn(s))
		}
		sort.Strings(out.Statistics)
	}

	out.Aggregation = strings.ToLower(strings.TrimSpace(p.Aggregation))
	if p.Filters.IsZero() {
		out.Filters = nil
	}
	return out
}

// Key derives the stable cache key for the request: an md5 digest of
// the canonicalized parameters' JSON form.
func (p QueryParams) Key() string {
	canonical := p.Canonical()
	payload, err := json.Marshal(canonical)
	if err != nil {
		// Marshaling a plain value struct cannot fail; guard anyway.
		payload = []byte(strings.Join(canonical.Players, ","))
	}
	digest := md5.Sum(payload)
	return "query:" + hex.EncodeToString(digest[:])
}
