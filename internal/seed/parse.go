// Package seed loads the spreadsheet exports the team kept before the
// dashboard existed.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
)

const (
	PlayersFile    = "goal_assist.csv"
	MatchesFile    = "response.csv"
	AttendanceFile = "attendance.csv"
	DashboardFile  = "dashboard.csv"
)

// Placeholder values for the fixture derived from the attendance sheet.
const (
	PlaceholderTime     = "14:00"
	PlaceholderOpponent = "다음 상대팀"
	PlaceholderVenue    = "홈 경기장"
)

// Match is one row of the response sheet with names still unresolved.
type Match struct {
	MatchDate     matches.Date
	Opponent      string
	OurScore      int
	OpponentScore int
	// RecordedResult is the verdict column as typed in the sheet.
	RecordedResult matches.Result
	Attendees      []string
	Tallies        []Tally
}

type Tally struct {
	PlayerName string
	Goals      int
	Assists    int
}

// Dataset is everything found in a seed directory. Missing files leave
// their part empty.
type Dataset struct {
	Players   []string
	Matches   []Match
	NextMatch *matches.NextMatchInput
	// Declared holds the totals typed into the dashboard sheet.
	Declared *stats.SeasonStats
}

var (
	datePattern   = regexp.MustCompile(`^(\d{4})\.\s*(\d{1,2})\.\s*(\d{1,2})\.?$`)
	goalPattern   = regexp.MustCompile(`(\d+)골`)
	assistPattern = regexp.MustCompile(`(\d+)도움`)
	nonDigits     = regexp.MustCompile(`[^0-9-]`)
)

// Load reads every known file from dir.
func Load(dir fs.FS) (Dataset, error) {
	var out Dataset
	var err error

	if out.Players, err = withFile(dir, PlayersFile, parsePlayers); err != nil {
		return Dataset{}, err
	}
	if out.Matches, err = withFile(dir, MatchesFile, parseMatches); err != nil {
		return Dataset{}, err
	}
	if out.NextMatch, err = withFile(dir, AttendanceFile, parseNextMatch); err != nil {
		return Dataset{}, err
	}
	if out.Declared, err = withFile(dir, DashboardFile, parseDeclared); err != nil {
		return Dataset{}, err
	}
	return out, nil
}

func withFile[T any](dir fs.FS, name string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := dir.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// readHeaded returns the rows of a sheet with a header line as maps keyed
// by column name.
func readHeaded(r io.Reader) ([]map[string]string, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parsePlayers(r io.Reader) ([]string, error) {
	rows, err := readHeaded(r)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		name := row["선수명"]
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

func parseMatches(r io.Reader) ([]Match, error) {
	rows, err := readHeaded(r)
	if err != nil {
		return nil, err
	}
	out := make([]Match, 0, len(rows))
	for _, row := range rows {
		date, ok := ParseDate(row["경기일"])
		if !ok {
			continue
		}
		out = append(out, Match{
			MatchDate:      date,
			Opponent:       row["상대팀"],
			OurScore:       ParseInt(row["우리득점"]),
			OpponentScore:  ParseInt(row["상대득점"]),
			RecordedResult: matches.ParseResult(row["판정"]),
			Attendees:      splitNames(row["참석자"]),
			Tallies:        ParseTallies(row["골도움기록"]),
		})
	}
	return out, nil
}

// parseNextMatch takes the latest date found in the first row of the
// attendance sheet.
func parseNextMatch(r io.Reader) (*matches.NextMatchInput, error) {
	first, err := newReader(r).Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var latest matches.Date
	for _, cell := range first {
		d, ok := ParseDate(cell)
		if ok && d.After(latest.Time) {
			latest = d
		}
	}
	if latest.IsZero() {
		return nil, nil
	}
	at, venue := PlaceholderTime, PlaceholderVenue
	return &matches.NextMatchInput{
		MatchDate: latest,
		MatchTime: &at,
		Opponent:  PlaceholderOpponent,
		Venue:     &venue,
	}, nil
}

// parseDeclared reads the season totals from the fourth row: total, wins,
// draws and losses sit in columns 0, 2, 4 and 6.
func parseDeclared(r io.Reader) (*stats.SeasonStats, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 4 {
		return nil, nil
	}
	row := records[3]
	cell := func(i int) int {
		if i >= len(row) {
			return 0
		}
		return ParseInt(row[i])
	}
	return &stats.SeasonStats{
		TotalMatches: cell(0),
		Wins:         cell(2),
		Draws:        cell(4),
		Losses:       cell(6),
	}, nil
}

// ParseDate accepts "2026. 2. 15", "2026.2.15" and either with a trailing
// dot.
func ParseDate(raw string) (matches.Date, bool) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return matches.Date{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return matches.Date{}, false
	}
	date := matches.NewDate(y, time.Month(mo), d)
	// reject dates that normalised into another month, e.g. 2.30
	if date.Day() != d {
		return matches.Date{}, false
	}
	return date, true
}

// ParseInt drops everything but digits and '-' and returns 0 when nothing
// numeric remains.
func ParseInt(raw string) int {
	n, err := strconv.Atoi(nonDigits.ReplaceAllString(strings.TrimSpace(raw), ""))
	if err != nil {
		return 0
	}
	return n
}

// ParseTallies reads lines such as "장현규 1골" or "우형오 1도움". The name
// is everything before the last space.
func ParseTallies(text string) []Tally {
	out := make([]Tally, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.LastIndex(line, " ")
		if idx <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		rest := strings.TrimSpace(line[idx+1:])
		t := Tally{PlayerName: name}
		if m := goalPattern.FindStringSubmatch(rest); m != nil {
			t.Goals = ParseInt(m[1])
		}
		if m := assistPattern.FindStringSubmatch(rest); m != nil {
			t.Assists = ParseInt(m[1])
		}
		if name != "" && (t.Goals > 0 || t.Assists > 0) {
			out = append(out, t)
		}
	}
	return out
}

func splitNames(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if n := strings.TrimSpace(part); n != "" {
			out = append(out, n)
		}
	}
	return out
}
