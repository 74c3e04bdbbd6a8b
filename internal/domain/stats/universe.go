package stats

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NameCompare orders two player names, returning a negative number, zero or
// a positive number like strings.Compare.
type NameCompare func(a, b string) int

// NewCollator returns a locale-aware comparator for tag. The returned
// function holds a collator and must not be shared between goroutines.
func NewCollator(tag language.Tag) NameCompare {
	c := collate.New(tag)
	return c.CompareString
}

// ParseLocale falls back to Korean when raw is empty or not a valid BCP 47
// tag.
func ParseLocale(raw string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return language.Korean
	}
	return tag
}

// PlayerUniverse merges the names of every supplied ranking into one
// de-duplicated list ordered by cmp. A nil cmp orders by byte value.
func PlayerUniverse(cmp NameCompare, lists ...[]RankingEntry) []string {
	if cmp == nil {
		cmp = strings.Compare
	}
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, list := range lists {
		for _, row := range list {
			n := strings.TrimSpace(row.PlayerName)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			names = append(names, n)
		}
	}
	sort.SliceStable(names, func(i, j int) bool { return cmp(names[i], names[j]) < 0 })
	return names
}
