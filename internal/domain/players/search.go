package players

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/lutefd/navi-api/internal/domain/matches"
)

// Search keeps the roster entries whose name contains the characters of
// query in order, ignoring case and diacritics. Closer matches come first;
// a blank query returns the roster unchanged.
func Search(roster []matches.Player, query string) []matches.Player {
	query = strings.TrimSpace(query)
	if query == "" {
		return roster
	}
	names := make([]string, len(roster))
	for i, p := range roster {
		names[i] = p.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]matches.Player, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, roster[r.OriginalIndex])
	}
	return out
}

// Suggest returns up to limit roster names that look like a misspelling of
// name, nearest first.
func Suggest(names []string, name string, limit int) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || limit <= 0 {
		return []string{}
	}
	threshold := max(1, utf8.RuneCountInString(name)/2)

	type candidate struct {
		name     string
		distance int
	}
	candidates := make([]candidate, 0)
	for _, n := range names {
		lower := strings.ToLower(n)
		d := fuzzy.LevenshteinDistance(name, lower)
		if d <= threshold || fuzzy.Match(name, lower) {
			candidates = append(candidates, candidate{name: n, distance: d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].distance < candidates[j].distance })

	out := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(out) == limit {
			break
		}
		out = append(out, c.name)
	}
	return out
}
