package sources

import (
	"errors"
	"fmt"
)

// SourceError is the base error carried by adapter failures.
type SourceError struct {
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *SourceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

// PlayerNotFoundError means an adapter found no rows for the player
// after applying its filters.
type PlayerNotFoundError struct {
	*SourceError
}

// NewPlayerNotFoundError builds a not-found error for a player at a
// specific source.
func NewPlayerNotFoundError(source, player string, season int) *PlayerNotFoundError {
	return &PlayerNotFoundError{
		SourceError: &SourceError{
			Message: fmt.Sprintf("player %q not found in %s data", player, source),
			Code:    "PLAYER_NOT_FOUND",
			Details: map[string]interface{}{
				"source": source,
				"player": player,
				"season": season,
			},
		},
	}
}

// SourceUnavailableError means the adapter could not be reached after
// exhausting its retry budget, or failed a connectivity/auth check.
type SourceUnavailableError struct {
	*SourceError
}

// NewSourceUnavailableError builds an unavailability error.
func NewSourceUnavailableError(source, reason string) *SourceUnavailableError {
	return &SourceUnavailableError{
		SourceError: &SourceError{
			Message: fmt.Sprintf("%s is unavailable: %s", source, reason),
			Code:    "SOURCE_UNAVAILABLE",
			Details: map[string]interface{}{
				"source": source,
			},
		},
	}
}

// IsPlayerNotFound reports whether err is a PlayerNotFoundError.
func IsPlayerNotFound(err error) bool {
	var target *PlayerNotFoundError
	return errors.As(err, &target)
}

// IsSourceUnavailable reports whether err is a SourceUnavailableError.
func IsSourceUnavailable(err error) bool {
	var target *SourceUnavailableError
	return errors.As(err, &target)
}
