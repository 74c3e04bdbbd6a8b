package stats

import (
	"testing"

	"github.com/lutefd/navi-api/internal/domain/matches"
)

func goalsOf(l matches.GoalAssistLog) int { return l.Goals }

func playerOf(l matches.GoalAssistLog) string { return l.PlayerName }

func rankingKey(rows []RankingEntry) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.PlayerName)
	}
	return out
}

func TestComputeRankingTieKeepsCompletionOrder(t *testing.T) {
	logs := []matches.GoalAssistLog{
		{PlayerName: "A", Goals: 2},
		{PlayerName: "B", Goals: 3},
		{PlayerName: "A", Goals: 1},
	}
	got := ComputeRanking(logs, playerOf, goalsOf)
	want := []RankingEntry{
		{Rank: 1, PlayerName: "B", Value: 3},
		{Rank: 2, PlayerName: "A", Value: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestComputeRankingEmpty(t *testing.T) {
	got := ComputeRanking([]matches.GoalAssistLog{}, playerOf, goalsOf)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil ranking, got %#v", got)
	}
}

func TestComputeRankingIsSortedWithSequentialRanks(t *testing.T) {
	logs := []matches.GoalAssistLog{
		{PlayerName: "C", Goals: 1},
		{PlayerName: "A", Goals: 4},
		{PlayerName: "B", Goals: 2},
		{PlayerName: "C", Goals: 1},
		{PlayerName: "D", Goals: 0},
		{PlayerName: "B", Goals: 1},
	}
	got := ComputeRanking(logs, playerOf, goalsOf)
	for i, row := range got {
		if row.Rank != i+1 {
			t.Fatalf("row %d has rank %d", i, row.Rank)
		}
		if i > 0 && got[i-1].Value < row.Value {
			t.Fatalf("ranking not non-increasing: %+v", got)
		}
	}
	keys := rankingKey(got)
	if keys[0] != "A" || keys[1] != "B" || keys[2] != "C" || keys[3] != "D" {
		t.Fatalf("unexpected order: %v", keys)
	}
}

func TestComputeRankingSkipsBlankNamesAndClampsNegatives(t *testing.T) {
	logs := []matches.GoalAssistLog{
		{PlayerName: "  ", Goals: 5},
		{PlayerName: "A", Goals: -2},
		{PlayerName: " A ", Goals: 1},
	}
	got := ComputeRanking(logs, playerOf, goalsOf)
	if len(got) != 1 || got[0].PlayerName != "A" || got[0].Value != 1 {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}

func TestComputeRankingSharedTies(t *testing.T) {
	logs := []matches.GoalAssistLog{
		{PlayerName: "A", Goals: 3},
		{PlayerName: "B", Goals: 3},
		{PlayerName: "C", Goals: 1},
	}
	got := ComputeRanking(logs, playerOf, goalsOf, WithTiePolicy(TiesShared))
	if got[0].Rank != 1 || got[1].Rank != 1 || got[2].Rank != 3 {
		t.Fatalf("expected competition ranks 1,1,3, got %+v", got)
	}
}

func TestAssistRanking(t *testing.T) {
	logs := []matches.GoalAssistLog{
		{PlayerName: "A", Goals: 2},
		{PlayerName: "B", Assists: 2},
		{PlayerName: "A", Assists: 1},
	}
	got := AssistRanking(logs)
	if len(got) != 2 || got[0].PlayerName != "B" || got[0].Value != 2 || got[1].Value != 1 {
		t.Fatalf("unexpected assist ranking: %+v", got)
	}
}

func TestAttendanceRankingCountsOncePerMatch(t *testing.T) {
	logs := []matches.AttendanceLog{
		{MatchID: 1, AttendedPlayerNames: []string{"A", "B", "A"}},
		{MatchID: 2, AttendedPlayerNames: []string{"B"}},
		{MatchID: 3, AttendedPlayerNames: nil},
	}
	got := AttendanceRanking(logs)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %+v", got)
	}
	if got[0].PlayerName != "B" || got[0].Value != 2 {
		t.Fatalf("expected B with 2, got %+v", got[0])
	}
	if got[1].PlayerName != "A" || got[1].Value != 1 {
		t.Fatalf("expected A with 1, got %+v", got[1])
	}
}

func TestTop(t *testing.T) {
	rows := []RankingEntry{{Rank: 1}, {Rank: 2}, {Rank: 3}}
	if len(Top(rows, 2)) != 2 {
		t.Fatalf("expected 2 rows")
	}
	if len(Top(rows, 0)) != 3 {
		t.Fatalf("expected all rows for limit 0")
	}
}
