package matches

import (
	"fmt"
	"strings"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// ResultFor derives the result from the final score.
func ResultFor(ourScore, opponentScore int) Result {
	switch {
	case ourScore > opponentScore:
		return ResultWin
	case ourScore < opponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// ParseResult maps the spellings found in stored rows and spreadsheet
// exports onto the three results. Unknown values are kept verbatim so
// that callers can count them as unrecognised.
func ParseResult(raw string) Result {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "win", "w", "승":
		return ResultWin
	case "draw", "d", "무":
		return ResultDraw
	case "loss", "l", "패":
		return ResultLoss
	}
	return Result(strings.TrimSpace(raw))
}

func (r Result) Valid() bool {
	return r == ResultWin || r == ResultDraw || r == ResultLoss
}

// Summary is one played match as listed on the results page.
type Summary struct {
	ID            int64   `json:"id"`
	MatchDate     Date    `json:"matchDate"`
	MatchTime     *string `json:"matchTime,omitempty"`
	Opponent      string  `json:"opponent"`
	OurScore      int     `json:"ourScore"`
	OpponentScore int     `json:"opponentScore"`
	Result        Result  `json:"result"`
}

type GoalAssistRecord struct {
	PlayerID int64 `json:"playerId"`
	Goals    int   `json:"goals"`
	Assists  int   `json:"assists"`
}

// Detail is a match together with its attendees and scorer records, as
// loaded into the admin edit form.
type Detail struct {
	Summary
	AttendeePlayerIDs []int64            `json:"attendeePlayerIds"`
	GoalAssistRecords []GoalAssistRecord `json:"goalAssistRecords"`
}

// Input is the admin payload for creating or updating a match.
type Input struct {
	MatchDate         Date               `json:"matchDate"`
	MatchTime         *string            `json:"matchTime,omitempty"`
	Opponent          string             `json:"opponent"`
	OurScore          int                `json:"ourScore"`
	OpponentScore     int                `json:"opponentScore"`
	AttendeePlayerIDs []int64            `json:"attendeePlayerIds"`
	GoalAssistRecords []GoalAssistRecord `json:"goalAssistRecords"`
}

// Normalize validates the payload and returns the cleaned copy that is
// persisted: trimmed opponent, canonical time, de-duplicated attendees and
// only the scorer records that carry a goal or an assist.
func (in Input) Normalize() (Input, error) {
	if in.MatchDate.IsZero() {
		return Input{}, fmt.Errorf("%w: matchDate is required", ErrInvalidInput)
	}
	if in.OurScore < 0 || in.OpponentScore < 0 {
		return Input{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}
	matchTime, err := NormalizeTime(in.MatchTime)
	if err != nil {
		return Input{}, err
	}

	out := Input{
		MatchDate:         in.MatchDate,
		MatchTime:         matchTime,
		Opponent:          strings.TrimSpace(in.Opponent),
		OurScore:          in.OurScore,
		OpponentScore:     in.OpponentScore,
		AttendeePlayerIDs: make([]int64, 0, len(in.AttendeePlayerIDs)),
		GoalAssistRecords: make([]GoalAssistRecord, 0, len(in.GoalAssistRecords)),
	}

	seen := make(map[int64]struct{}, len(in.AttendeePlayerIDs))
	for _, id := range in.AttendeePlayerIDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.AttendeePlayerIDs = append(out.AttendeePlayerIDs, id)
	}

	// one row per player; repeated rows for a player are summed
	recordIndex := make(map[int64]int, len(in.GoalAssistRecords))
	for _, rec := range in.GoalAssistRecords {
		if rec.PlayerID <= 0 {
			continue
		}
		rec.Goals = max(0, rec.Goals)
		rec.Assists = max(0, rec.Assists)
		if rec.Goals == 0 && rec.Assists == 0 {
			continue
		}
		if i, ok := recordIndex[rec.PlayerID]; ok {
			out.GoalAssistRecords[i].Goals += rec.Goals
			out.GoalAssistRecords[i].Assists += rec.Assists
			continue
		}
		recordIndex[rec.PlayerID] = len(out.GoalAssistRecords)
		out.GoalAssistRecords = append(out.GoalAssistRecords, rec)
	}
	return out, nil
}

func (in Input) Result() Result {
	return ResultFor(in.OurScore, in.OpponentScore)
}

// GoalAssistLog is one player's goal and assist tally in one match.
type GoalAssistLog struct {
	MatchID    int64  `json:"matchId"`
	MatchDate  Date   `json:"matchDate"`
	Opponent   string `json:"opponent"`
	PlayerName string `json:"playerName"`
	Goals      int    `json:"goals"`
	Assists    int    `json:"assists"`
}

// AttendanceLog lists who attended one match. Names are not guaranteed to
// be unique.
type AttendanceLog struct {
	MatchID             int64    `json:"matchId"`
	MatchDate           Date     `json:"matchDate"`
	Opponent            string   `json:"opponent"`
	AttendedPlayerNames []string `json:"attendedPlayerNames"`
}
