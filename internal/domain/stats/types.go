package stats

import "github.com/lutefd/navi-api/internal/domain/matches"

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"playerName"`
	Value      int    `json:"value"`
}

type SeasonStats struct {
	SeasonYear   int `json:"seasonYear"`
	TotalMatches int `json:"totalMatches"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
}

type AttendancePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AttendanceEntry is a single player's presence at a single match.
type AttendanceEntry struct {
	MatchID    int64  `json:"matchId"`
	PlayerName string `json:"playerName"`
}

// Percentages are whole-number shares of the season's matches.
type Percentages struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

type GoalTotals struct {
	Scored      int     `json:"scored"`
	Conceded    int     `json:"conceded"`
	Scale       int     `json:"scale"`
	AvgScored   float64 `json:"avgScored"`
	AvgConceded float64 `json:"avgConceded"`
}

type PlayerMatchRecord struct {
	MatchID   int64        `json:"matchId"`
	MatchDate matches.Date `json:"matchDate"`
	Opponent  string       `json:"opponent"`
	Goals     int          `json:"goals"`
	Assists   int          `json:"assists"`
	Attended  bool         `json:"attended"`
}

type PlayerDetail struct {
	PlayerName   string              `json:"playerName"`
	Attendance   int                 `json:"attendance"`
	Goals        int                 `json:"goals"`
	Assists      int                 `json:"assists"`
	PhoneNumber  *string             `json:"phoneNumber,omitempty"`
	MatchRecords []PlayerMatchRecord `json:"matchRecords"`
}
