package stats

import (
	"sort"
	"strings"

	"github.com/lutefd/navi-api/internal/domain/matches"
)

type TiePolicy int

const (
	// TiesSequential gives every row the next integer, even on equal values.
	TiesSequential TiePolicy = iota
	// TiesShared gives equal values the same rank and skips the following
	// ranks (1, 1, 3).
	TiesShared
)

type rankConfig struct {
	ties TiePolicy
}

type RankOption func(*rankConfig)

func WithTiePolicy(p TiePolicy) RankOption {
	return func(c *rankConfig) { c.ties = p }
}

// ComputeRanking sums value per player name and orders the totals from
// highest to lowest. Entries with a blank name are skipped and negative
// values count as zero. Equal totals keep the order in which they were
// completed in entries, that is by the position of each player's last
// contributing entry, not by first appearance: A 2, B 3, A 1 ranks B
// ahead of A, where first appearance would give A, B.
func ComputeRanking[T any](entries []T, name func(T) string, value func(T) int, opts ...RankOption) []RankingEntry {
	cfg := rankConfig{ties: TiesSequential}
	for _, opt := range opts {
		opt(&cfg)
	}

	type total struct {
		name  string
		value int
		last  int
	}
	byName := make(map[string]*total)
	for i, e := range entries {
		n := strings.TrimSpace(name(e))
		if n == "" {
			continue
		}
		t, ok := byName[n]
		if !ok {
			t = &total{name: n}
			byName[n] = t
		}
		t.value += max(0, value(e))
		t.last = i
	}

	rows := make([]*total, 0, len(byName))
	for _, t := range byName {
		rows = append(rows, t)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].value != rows[j].value {
			return rows[i].value > rows[j].value
		}
		return rows[i].last < rows[j].last
	})

	out := make([]RankingEntry, 0, len(rows))
	for i, r := range rows {
		rank := i + 1
		if cfg.ties == TiesShared && i > 0 && r.value == out[i-1].Value {
			rank = out[i-1].Rank
		}
		out = append(out, RankingEntry{Rank: rank, PlayerName: r.name, Value: r.value})
	}
	return out
}

func GoalRanking(logs []matches.GoalAssistLog, opts ...RankOption) []RankingEntry {
	return ComputeRanking(logs,
		func(l matches.GoalAssistLog) string { return l.PlayerName },
		func(l matches.GoalAssistLog) int { return l.Goals },
		opts...)
}

func AssistRanking(logs []matches.GoalAssistLog, opts ...RankOption) []RankingEntry {
	return ComputeRanking(logs,
		func(l matches.GoalAssistLog) string { return l.PlayerName },
		func(l matches.GoalAssistLog) int { return l.Assists },
		opts...)
}

func AttendanceRanking(logs []matches.AttendanceLog, opts ...RankOption) []RankingEntry {
	return ComputeRanking(AttendanceEntries(logs),
		func(e AttendanceEntry) string { return e.PlayerName },
		func(AttendanceEntry) int { return 1 },
		opts...)
}

// AttendanceEntries flattens attendance logs into one entry per player per
// match. A name repeated within one match counts once.
func AttendanceEntries(logs []matches.AttendanceLog) []AttendanceEntry {
	out := make([]AttendanceEntry, 0)
	for _, l := range logs {
		seen := make(map[string]struct{}, len(l.AttendedPlayerNames))
		for _, raw := range l.AttendedPlayerNames {
			n := strings.TrimSpace(raw)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, AttendanceEntry{MatchID: l.MatchID, PlayerName: n})
		}
	}
	return out
}

// Top returns at most limit rows; limit <= 0 returns all of them.
func Top(rows []RankingEntry, limit int) []RankingEntry {
	if limit <= 0 || limit >= len(rows) {
		return rows
	}
	return rows[:limit]
}
