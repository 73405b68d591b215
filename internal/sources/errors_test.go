package sources

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerNotFoundError(t *testing.T) {
	err := NewPlayerNotFoundError("feed", "Tom Brady", 2024)
	assert.True(t, IsPlayerNotFound(err))
	assert.False(t, IsSourceUnavailable(err))
	assert.Contains(t, err.Error(), "PLAYER_NOT_FOUND")
	assert.Contains(t, err.Error(), "Tom Brady")
}

func TestSourceUnavailableError(t *testing.T) {
	err := NewSourceUnavailableError("webapi", "connection refused")
	assert.True(t, IsSourceUnavailable(err))
	assert.False(t, IsPlayerNotFound(err))
	assert.Contains(t, err.Error(), "SOURCE_UNAVAILABLE")
}

func TestErrorClassifiersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching: %w", NewPlayerNotFoundError("historical", "Nobody", 2020))
	assert.True(t, IsPlayerNotFound(wrapped))
	assert.False(t, IsPlayerNotFound(errors.New("plain")))
}
