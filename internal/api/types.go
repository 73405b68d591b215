package api

import (
	"time"

	"github.com/gridstats/agent/internal/stats"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError is a structured error payload.
type APIError struct {
	Type      ErrorType `json:"type"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorType categorizes error responses.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeInternal    ErrorType = "internal"
)

// FilterRequest narrows query results before aggregation.
type FilterRequest struct {
	Opponent string   `json:"opponent,omitempty"`
	HomeAway string   `json:"home_away,omitempty" binding:"omitempty,oneof=home away"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
}

// QueryRequest is the body of a stats query.
type QueryRequest struct {
	Players       []string       `json:"players" binding:"required,min=1"`
	Statistics    []string       `json:"statistics,omitempty"`
	Season        int            `json:"season,omitempty" binding:"omitempty,min=1920"`
	Week          int            `json:"week,omitempty" binding:"omitempty,min=1,max=22"`
	SpecificWeeks []int          `json:"specific_weeks,omitempty"`
	Career        bool           `json:"career,omitempty"`
	Filters       *FilterRequest `json:"filters,omitempty"`
	Aggregation   string         `json:"aggregation,omitempty"`
	Comparison    bool           `json:"comparison,omitempty"`
}

// QueryResponse carries a resolved result table.
type QueryResponse struct {
	Rows     []stats.Row `json:"rows"`
	Columns  []string    `json:"columns"`
	RowCount int         `json:"row_count"`
}

// InvalidationResponse reports how many cache entries an invalidation
// removed per tier.
type InvalidationResponse struct {
	Feed  int `json:"feed"`
	Query int `json:"query"`
	Total int `json:"total"`
}

// SearchResponse lists players matching a partial name.
type SearchResponse struct {
	Query   string   `json:"query"`
	Players []string `json:"players"`
}
