package stats

import (
	"testing"

	"github.com/lutefd/navi-api/internal/domain/matches"
	"golang.org/x/text/language"
)

func TestComputeSeasonStats(t *testing.T) {
	items := []matches.Summary{
		{OurScore: 3, OpponentScore: 1, Result: matches.ResultWin},
		{OurScore: 1, OpponentScore: 1, Result: matches.ResultDraw},
		{OurScore: 0, OpponentScore: 2, Result: matches.ResultLoss},
	}
	got := ComputeSeasonStats(items, 2026)
	want := SeasonStats{SeasonYear: 2026, TotalMatches: 3, Wins: 1, Draws: 1, Losses: 1}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeSeasonStatsCountsUnknownResultsInTotalOnly(t *testing.T) {
	items := []matches.Summary{
		{Result: "승"},
		{Result: "abandoned"},
		{Result: ""},
	}
	got := ComputeSeasonStats(items, 2026)
	if got.TotalMatches != 3 || got.Wins != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
	if got.Wins+got.Draws+got.Losses > got.TotalMatches {
		t.Fatalf("bucket sum exceeds total: %+v", got)
	}
}

func TestComputeMonthlyCounts(t *testing.T) {
	items := []matches.Summary{
		{MatchDate: matches.NewDate(2026, 1, 10)},
		{MatchDate: matches.NewDate(2026, 1, 24)},
		{MatchDate: matches.NewDate(2026, 12, 5)},
		{},
	}
	got := ComputeMonthlyCounts(items)
	if len(got) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got))
	}
	if got[0] != 2 || got[11] != 1 || got[5] != 0 {
		t.Fatalf("unexpected counts: %v", got)
	}
	sum := 0
	for _, c := range got {
		sum += c
	}
	if sum != 3 {
		t.Fatalf("expected 3 dated matches, got %d", sum)
	}

	if empty := ComputeMonthlyCounts(nil); len(empty) != 12 {
		t.Fatalf("expected 12 entries for empty input")
	}
}

func TestComputeAttendanceByDate(t *testing.T) {
	logs := []matches.AttendanceLog{
		{MatchDate: matches.NewDate(2026, 3, 1), AttendedPlayerNames: []string{"A", "B"}},
		{AttendedPlayerNames: []string{"C"}},
		{MatchDate: matches.NewDate(2026, 2, 1), AttendedPlayerNames: nil},
	}
	got := ComputeAttendanceByDate(logs)
	if len(got) != 2 {
		t.Fatalf("expected undated log to be dropped, got %+v", got)
	}
	if got[0].Date != "2026-02-01" || got[0].Count != 0 {
		t.Fatalf("unexpected first point: %+v", got[0])
	}
	if got[1].Date != "2026-03-01" || got[1].Count != 2 {
		t.Fatalf("unexpected second point: %+v", got[1])
	}
}

func TestSeasonOfAndSeasonYears(t *testing.T) {
	items := []matches.Summary{
		{ID: 1, MatchDate: matches.NewDate(2026, 5, 1)},
		{ID: 2, MatchDate: matches.NewDate(2025, 11, 1)},
		{ID: 3, MatchDate: matches.NewDate(2026, 6, 1)},
		{ID: 4},
	}
	if got := SeasonOf(items, 2026); len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("unexpected season filter: %+v", got)
	}
	years := SeasonYears(items)
	if len(years) != 2 || years[0] != 2025 || years[1] != 2026 {
		t.Fatalf("unexpected years: %v", years)
	}
}

func TestResultPercentages(t *testing.T) {
	got := ResultPercentages(SeasonStats{TotalMatches: 3, Wins: 2, Draws: 0, Losses: 1})
	if got.Win != 67 || got.Draw != 0 || got.Loss != 33 {
		t.Fatalf("unexpected percentages: %+v", got)
	}
	if zero := ResultPercentages(SeasonStats{}); zero != (Percentages{}) {
		t.Fatalf("expected zero percentages, got %+v", zero)
	}
}

func TestComputeGoalTotals(t *testing.T) {
	got := ComputeGoalTotals([]matches.Summary{
		{OurScore: 3, OpponentScore: 1},
		{OurScore: 0, OpponentScore: 4},
	})
	if got.Scored != 3 || got.Conceded != 5 || got.Scale != 5 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.AvgScored != 1.5 || got.AvgConceded != 2.5 {
		t.Fatalf("unexpected averages: %+v", got)
	}
	if empty := ComputeGoalTotals(nil); empty.Scale != 1 {
		t.Fatalf("expected scale 1 for no matches, got %d", empty.Scale)
	}
}

func TestPlayerUniverse(t *testing.T) {
	goals := []RankingEntry{{PlayerName: "이강인"}, {PlayerName: "김민재"}}
	assists := []RankingEntry{{PlayerName: "김민재"}, {PlayerName: "강인"}}
	attendance := []RankingEntry{{PlayerName: "박지성"}, {PlayerName: " "}}

	got := PlayerUniverse(NewCollator(language.Korean), goals, assists, attendance)
	want := []string{"강인", "김민재", "박지성", "이강인"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPlayerUniverseUsesSuppliedCollation(t *testing.T) {
	rows := []RankingEntry{{PlayerName: "Bob"}, {PlayerName: "alice"}}
	got := PlayerUniverse(NewCollator(language.English), rows)
	if got[0] != "alice" || got[1] != "Bob" {
		t.Fatalf("expected case-insensitive collation order, got %v", got)
	}
	bytewise := PlayerUniverse(nil, rows)
	if bytewise[0] != "Bob" {
		t.Fatalf("expected byte order with nil comparator, got %v", bytewise)
	}
}

func TestParseLocale(t *testing.T) {
	if ParseLocale("") != language.Korean {
		t.Fatalf("expected Korean fallback")
	}
	if ParseLocale("en") != language.English {
		t.Fatalf("expected English tag")
	}
}

func TestBuildPlayerDetail(t *testing.T) {
	items := []matches.Summary{
		{ID: 1, MatchDate: matches.NewDate(2026, 1, 10), Opponent: "Alpha"},
		{ID: 2, MatchDate: matches.NewDate(2026, 2, 10), Opponent: "Beta"},
		{ID: 3, MatchDate: matches.NewDate(2026, 3, 10), Opponent: "Gamma"},
	}
	goalLogs := []matches.GoalAssistLog{
		{MatchID: 1, PlayerName: "A", Goals: 1},
		{MatchID: 2, PlayerName: "A", Goals: 2, Assists: 1},
		{MatchID: 2, PlayerName: "B", Goals: 5},
	}
	attendance := []matches.AttendanceLog{
		{MatchID: 1, AttendedPlayerNames: []string{"A", "B"}},
		{MatchID: 2, AttendedPlayerNames: []string{"A"}},
		{MatchID: 3, AttendedPlayerNames: []string{"B"}},
	}
	phone := "010-0000-0000"
	got := BuildPlayerDetail(matches.Player{ID: 7, Name: "A", PhoneNumber: &phone}, items, goalLogs, attendance)
	if got.Goals != 3 || got.Assists != 1 || got.Attendance != 2 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if len(got.MatchRecords) != 2 {
		t.Fatalf("expected 2 match records, got %+v", got.MatchRecords)
	}
	if got.MatchRecords[0].MatchID != 2 || got.MatchRecords[0].Goals != 2 {
		t.Fatalf("expected newest match first, got %+v", got.MatchRecords[0])
	}
	if got.PhoneNumber == nil || *got.PhoneNumber != phone {
		t.Fatalf("expected phone number to be carried")
	}
}

func TestBuildPlayerDetailIgnoresOtherPlayers(t *testing.T) {
	got := BuildPlayerDetail(matches.Player{ID: 99, Name: "Z"}, nil, nil, nil)
	if got.Goals != 0 || got.Attendance != 0 || got.MatchRecords == nil {
		t.Fatalf("unexpected detail for unknown player: %+v", got)
	}
}
