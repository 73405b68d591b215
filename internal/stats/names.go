package stats

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// nameCorrections maps common nicknames and misspellings to the
// canonical roster name. Keys are lowercase.
var nameCorrections = map[string]string{
	"pat mahomes":     "Patrick Mahomes",
	"mahomes":         "Patrick Mahomes",
	"josh allen":      "Josh Allen",
	"cmc":             "Christian McCaffrey",
	"obj":             "Odell Beckham Jr.",
	"ceedee":          "CeeDee Lamb",
	"jamarr chase":    "Ja'Marr Chase",
	"ja'marr chase":   "Ja'Marr Chase",
	"tyreek":          "Tyreek Hill",
	"cheetah":         "Tyreek Hill",
	"king henry":      "Derrick Henry",
	"lamar":           "Lamar Jackson",
	"aaron rogers":    "Aaron Rodgers",
	"kelce":           "Travis Kelce",
	"justin jefferson": "Justin Jefferson",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	initialsRe   = regexp.MustCompile(`\b([a-z])([a-z])\b`)
	mcRe         = regexp.MustCompile(`Mc([a-z])`)
	// Title casing keeps "a.j" and "o'brien" as single words, so
	// letters after a period or apostrophe need uppercasing separately.
	separatorRe = regexp.MustCompile(`(['.])([a-z])`)
)

// NormalizePlayerName canonicalizes a player name for lookups and
// cache keys: whitespace collapse, title case, two-letter initial
// expansion ("aj" to "A.J."), and Mc/O' casing. Known nicknames map
// straight to the roster name. Every source applies this same
// normalization so keys and joins agree.
func NormalizePlayerName(name string) string {
	clean := strings.ToLower(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	if corrected, ok := nameCorrections[clean]; ok {
		return corrected
	}

	normalized := whitespaceRe.ReplaceAllString(clean, " ")
	normalized = initialsRe.ReplaceAllString(normalized, "$1.$2.")
	normalized = cases.Title(language.English).String(normalized)
	normalized = mcRe.ReplaceAllStringFunc(normalized, func(m string) string {
		return "Mc" + strings.ToUpper(m[len(m)-1:])
	})
	normalized = separatorRe.ReplaceAllStringFunc(normalized, func(m string) string {
		return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
	})
	return normalized
}

// SearchPlayers returns the sorted distinct player names in the table
// containing the partial name, case-insensitively.
func (t *Table) SearchPlayers(partial string) []string {
	needle := strings.ToLower(strings.TrimSpace(partial))
	if needle == "" {
		return nil
	}
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if strings.Contains(strings.ToLower(r.PlayerName), needle) {
			seen[r.PlayerName] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
