package stats

import (
	"sort"
	"strings"

	"github.com/lutefd/navi-api/internal/domain/matches"
)

// BuildPlayerDetail assembles the player page from the raw collections.
// Goals and assists count every match the player has a tally for; the
// match records list only attended matches, newest first.
func BuildPlayerDetail(player matches.Player, items []matches.Summary, goalLogs []matches.GoalAssistLog, attendance []matches.AttendanceLog) PlayerDetail {
	name := strings.TrimSpace(player.Name)
	out := PlayerDetail{
		PlayerName:   name,
		PhoneNumber:  player.PhoneNumber,
		MatchRecords: make([]PlayerMatchRecord, 0),
	}

	tallyByMatch := make(map[int64]matches.GoalAssistLog)
	for _, l := range goalLogs {
		if strings.TrimSpace(l.PlayerName) != name {
			continue
		}
		if _, ok := tallyByMatch[l.MatchID]; ok {
			continue
		}
		tallyByMatch[l.MatchID] = l
		out.Goals += max(0, l.Goals)
		out.Assists += max(0, l.Assists)
	}

	attended := make(map[int64]struct{})
	for _, e := range AttendanceEntries(attendance) {
		if e.PlayerName == name {
			attended[e.MatchID] = struct{}{}
		}
	}
	out.Attendance = len(attended)

	sorted := append([]matches.Summary(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MatchDate.After(sorted[j].MatchDate.Time) })
	for _, m := range sorted {
		if _, ok := attended[m.ID]; !ok {
			continue
		}
		tally := tallyByMatch[m.ID]
		out.MatchRecords = append(out.MatchRecords, PlayerMatchRecord{
			MatchID:   m.ID,
			MatchDate: m.MatchDate,
			Opponent:  m.Opponent,
			Goals:     max(0, tally.Goals),
			Assists:   max(0, tally.Assists),
			Attended:  true,
		})
	}
	return out
}
