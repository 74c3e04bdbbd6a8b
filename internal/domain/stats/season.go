package stats

import (
	"math"
	"sort"

	"github.com/lutefd/navi-api/internal/domain/matches"
)

// ComputeSeasonStats counts results over items. TotalMatches is always
// len(items); a match with an unrecognised result is part of the total but
// of none of the three buckets.
func ComputeSeasonStats(items []matches.Summary, seasonYear int) SeasonStats {
	out := SeasonStats{SeasonYear: seasonYear, TotalMatches: len(items)}
	for _, m := range items {
		switch matches.ParseResult(string(m.Result)) {
		case matches.ResultWin:
			out.Wins++
		case matches.ResultDraw:
			out.Draws++
		case matches.ResultLoss:
			out.Losses++
		}
	}
	return out
}

// SeasonOf keeps the matches played in the given calendar year.
func SeasonOf(items []matches.Summary, year int) []matches.Summary {
	out := make([]matches.Summary, 0)
	for _, m := range items {
		if !m.MatchDate.IsZero() && m.MatchDate.Year() == year {
			out = append(out, m)
		}
	}
	return out
}

// SeasonYears lists the distinct years that have at least one dated match.
func SeasonYears(items []matches.Summary) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, m := range items {
		if m.MatchDate.IsZero() {
			continue
		}
		y := m.MatchDate.Year()
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ComputeMonthlyCounts returns the number of matches per calendar month,
// January first. Undated matches are not counted.
func ComputeMonthlyCounts(items []matches.Summary) [12]int {
	var counts [12]int
	for _, m := range items {
		if m.MatchDate.IsZero() {
			continue
		}
		counts[m.MatchDate.Month()-1]++
	}
	return counts
}

// ComputeAttendanceByDate gives the head count per dated match in
// ascending date order.
func ComputeAttendanceByDate(logs []matches.AttendanceLog) []AttendancePoint {
	out := make([]AttendancePoint, 0, len(logs))
	for _, l := range logs {
		if l.MatchDate.IsZero() {
			continue
		}
		out = append(out, AttendancePoint{Date: l.MatchDate.String(), Count: len(l.AttendedPlayerNames)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func ResultPercentages(s SeasonStats) Percentages {
	if s.TotalMatches <= 0 {
		return Percentages{}
	}
	pct := func(n int) int {
		return int(math.Round(float64(n) / float64(s.TotalMatches) * 100))
	}
	return Percentages{Win: pct(s.Wins), Draw: pct(s.Draws), Loss: pct(s.Losses)}
}

// ComputeGoalTotals sums goals scored and conceded. Scale is the larger of
// the two (at least 1) and is used as the bar chart's full width.
func ComputeGoalTotals(items []matches.Summary) GoalTotals {
	var out GoalTotals
	for _, m := range items {
		out.Scored += max(0, m.OurScore)
		out.Conceded += max(0, m.OpponentScore)
	}
	out.Scale = max(out.Scored, out.Conceded, 1)
	if len(items) > 0 {
		out.AvgScored = Round(float64(out.Scored) / float64(len(items)))
		out.AvgConceded = Round(float64(out.Conceded) / float64(len(items)))
	}
	return out
}

func Round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
