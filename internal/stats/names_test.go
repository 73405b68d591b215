package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"patrick mahomes", "Patrick Mahomes"},
		{"  Patrick   Mahomes  ", "Patrick Mahomes"},
		{"pat mahomes", "Patrick Mahomes"},
		{"cmc", "Christian McCaffrey"},
		{"obj", "Odell Beckham Jr."},
		{"aaron rogers", "Aaron Rodgers"},
		{"aj brown", "A.J. Brown"},
		{"christian mccaffrey", "Christian McCaffrey"},
		{"terry mclaurin", "Terry McLaurin"},
		{"d'andre swift", "D'Andre Swift"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePlayerName(tt.input))
		})
	}
}

func TestNormalizePlayerNameIsStable(t *testing.T) {
	once := NormalizePlayerName("aj brown")
	twice := NormalizePlayerName(once)
	assert.Equal(t, once, twice)
}

func TestSearchPlayers(t *testing.T) {
	table := NewTable()
	table.Append(
		Row{PlayerName: "Patrick Mahomes"},
		Row{PlayerName: "Patrick Mahomes"},
		Row{PlayerName: "Josh Allen"},
		Row{PlayerName: "Keenan Allen"},
	)

	assert.Equal(t, []string{"Josh Allen", "Keenan Allen"}, table.SearchPlayers("allen"))
	assert.Equal(t, []string{"Patrick Mahomes"}, table.SearchPlayers("maho"))
	assert.Nil(t, table.SearchPlayers(""))
	assert.Empty(t, table.SearchPlayers("nobody"))
}
