// Package dashboard assembles the read-only views shared by the REST API
// and the MCP tool server.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lutefd/navi-api/internal/domain/chart"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/players"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"golang.org/x/text/language"
)

type Store interface {
	ListMatches(ctx context.Context) ([]matches.Summary, error)
	ListGoalAssistLogs(ctx context.Context) ([]matches.GoalAssistLog, error)
	ListAttendanceLogs(ctx context.Context) ([]matches.AttendanceLog, error)
	ListNextMatches(ctx context.Context) ([]matches.NextMatch, error)
	ListPlayers(ctx context.Context) ([]matches.Player, error)
	GetPlayerByName(ctx context.Context, name string) (matches.Player, error)
	GetLatestSeasonStats(ctx context.Context) (stats.SeasonStats, error)
}

type RankingKind string

const (
	RankGoals      RankingKind = "goals"
	RankAssists    RankingKind = "assists"
	RankAttendance RankingKind = "attendance"
)

type Home struct {
	SeasonStats       stats.SeasonStats    `json:"seasonStats"`
	NextMatches       []matches.NextMatch  `json:"nextMatches"`
	GoalRanking       []stats.RankingEntry `json:"goalRanking"`
	AssistRanking     []stats.RankingEntry `json:"assistRanking"`
	AttendanceRanking []stats.RankingEntry `json:"attendanceRanking"`
}

type Dashboard struct {
	SeasonStats     stats.SeasonStats       `json:"seasonStats"`
	Percentages     stats.Percentages       `json:"percentages"`
	GoalTotals      stats.GoalTotals        `json:"goalTotals"`
	MonthlyCounts   [12]int                 `json:"monthlyCounts"`
	MonthlyChart    chart.Line              `json:"monthlyChart"`
	AttendanceChart chart.Line              `json:"attendanceChart"`
	Attendance      []stats.AttendancePoint `json:"attendance"`
	Players         []string                `json:"players"`
}

type MonthlyMatches struct {
	Year   int     `json:"year"`
	Counts [12]int `json:"counts"`
	Total  int     `json:"total"`
}

// PlayerNotFoundError carries names that look like what the caller meant.
type PlayerNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %q not found", e.Name)
}

func (e *PlayerNotFoundError) Unwrap() error {
	return matches.ErrNotFound
}

type Options struct {
	Locale     language.Tag
	TiePolicy  stats.TiePolicy
	Chart      chart.Config
	Now        func() time.Time
	Location   *time.Location
	Suggestion int
}

type Service struct {
	store Store
	opts  Options

	// collators are not safe for concurrent use
	collMu sync.Mutex
	coll   stats.NameCompare
}

func NewService(store Store, opts Options) *Service {
	if opts.Chart == (chart.Config{}) {
		opts.Chart = chart.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Suggestion <= 0 {
		opts.Suggestion = 3
	}
	if opts.Locale == language.Und {
		opts.Locale = language.Korean
	}
	return &Service{store: store, opts: opts, coll: stats.NewCollator(opts.Locale)}
}

func (s *Service) rankOpts() []stats.RankOption {
	return []stats.RankOption{stats.WithTiePolicy(s.opts.TiePolicy)}
}

// SeasonStats returns the latest projected season, or an empty season for
// the current year when nothing has been projected yet.
func (s *Service) SeasonStats(ctx context.Context) (stats.SeasonStats, error) {
	out, err := s.store.GetLatestSeasonStats(ctx)
	if errors.Is(err, matches.ErrNotFound) {
		return stats.SeasonStats{SeasonYear: s.opts.Now().In(s.opts.Location).Year()}, nil
	}
	return out, err
}

func (s *Service) Home(ctx context.Context) (Home, error) {
	season, err := s.SeasonStats(ctx)
	if err != nil {
		return Home{}, err
	}
	next, err := s.store.ListNextMatches(ctx)
	if err != nil {
		return Home{}, err
	}
	goalLogs, err := s.store.ListGoalAssistLogs(ctx)
	if err != nil {
		return Home{}, err
	}
	attendance, err := s.store.ListAttendanceLogs(ctx)
	if err != nil {
		return Home{}, err
	}
	return Home{
		SeasonStats:       season,
		NextMatches:       next,
		GoalRanking:       stats.GoalRanking(goalLogs, s.rankOpts()...),
		AssistRanking:     stats.AssistRanking(goalLogs, s.rankOpts()...),
		AttendanceRanking: stats.AttendanceRanking(attendance, s.rankOpts()...),
	}, nil
}

// Dashboard derives the chart figures for the season returned by
// SeasonStats. Rankings and the player list cover every season.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	season, err := s.SeasonStats(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	items, err := s.store.ListMatches(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	goalLogs, err := s.store.ListGoalAssistLogs(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	attendance, err := s.store.ListAttendanceLogs(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	seasonItems := stats.SeasonOf(items, season.SeasonYear)
	monthly := stats.ComputeMonthlyCounts(seasonItems)

	seasonAttendance := make([]matches.AttendanceLog, 0, len(attendance))
	for _, l := range attendance {
		if !l.MatchDate.IsZero() && l.MatchDate.Year() == season.SeasonYear {
			seasonAttendance = append(seasonAttendance, l)
		}
	}
	points := stats.ComputeAttendanceByDate(seasonAttendance)
	series := make([]chart.Datum, 0, len(points))
	for _, p := range points {
		series = append(series, chart.Datum{Label: p.Date, Value: p.Count})
	}

	return Dashboard{
		SeasonStats:     season,
		Percentages:     stats.ResultPercentages(season),
		GoalTotals:      stats.ComputeGoalTotals(seasonItems),
		MonthlyCounts:   monthly,
		MonthlyChart:    s.opts.Chart.Line(chart.MonthlySeries(monthly)),
		AttendanceChart: s.opts.Chart.Line(series),
		Attendance:      points,
		Players: s.universe(
			stats.GoalRanking(goalLogs),
			stats.AssistRanking(goalLogs),
			stats.AttendanceRanking(attendance),
		),
	}, nil
}

func (s *Service) universe(lists ...[]stats.RankingEntry) []string {
	s.collMu.Lock()
	defer s.collMu.Unlock()
	return stats.PlayerUniverse(s.coll, lists...)
}

func (s *Service) Rankings(ctx context.Context, kind RankingKind, limit int) ([]stats.RankingEntry, error) {
	var rows []stats.RankingEntry
	switch kind {
	case RankGoals, RankAssists:
		logs, err := s.store.ListGoalAssistLogs(ctx)
		if err != nil {
			return nil, err
		}
		if kind == RankGoals {
			rows = stats.GoalRanking(logs, s.rankOpts()...)
		} else {
			rows = stats.AssistRanking(logs, s.rankOpts()...)
		}
	case RankAttendance:
		logs, err := s.store.ListAttendanceLogs(ctx)
		if err != nil {
			return nil, err
		}
		rows = stats.AttendanceRanking(logs, s.rankOpts()...)
	default:
		return nil, fmt.Errorf("%w: unknown ranking kind %q", matches.ErrInvalidInput, kind)
	}
	return stats.Top(rows, limit), nil
}

func (s *Service) MonthlyMatches(ctx context.Context, year int) (MonthlyMatches, error) {
	if year <= 0 {
		year = s.opts.Now().In(s.opts.Location).Year()
	}
	items, err := s.store.ListMatches(ctx)
	if err != nil {
		return MonthlyMatches{}, err
	}
	seasonItems := stats.SeasonOf(items, year)
	return MonthlyMatches{Year: year, Counts: stats.ComputeMonthlyCounts(seasonItems), Total: len(seasonItems)}, nil
}

// PlayerDetail returns a *PlayerNotFoundError, which wraps
// matches.ErrNotFound, when no player has that exact name.
func (s *Service) PlayerDetail(ctx context.Context, name string) (stats.PlayerDetail, error) {
	name = strings.TrimSpace(name)
	player, err := s.store.GetPlayerByName(ctx, name)
	if errors.Is(err, matches.ErrNotFound) {
		return stats.PlayerDetail{}, s.notFound(ctx, name)
	}
	if err != nil {
		return stats.PlayerDetail{}, err
	}
	items, err := s.store.ListMatches(ctx)
	if err != nil {
		return stats.PlayerDetail{}, err
	}
	goalLogs, err := s.store.ListGoalAssistLogs(ctx)
	if err != nil {
		return stats.PlayerDetail{}, err
	}
	attendance, err := s.store.ListAttendanceLogs(ctx)
	if err != nil {
		return stats.PlayerDetail{}, err
	}
	return stats.BuildPlayerDetail(player, items, goalLogs, attendance), nil
}

func (s *Service) notFound(ctx context.Context, name string) error {
	roster, err := s.store.ListPlayers(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, p.Name)
	}
	return &PlayerNotFoundError{Name: name, Suggestions: players.Suggest(names, name, s.opts.Suggestion)}
}

// Players lists the roster in collation order, filtered by a fuzzy query
// when one is given.
func (s *Service) Players(ctx context.Context, query string) ([]matches.Player, error) {
	roster, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) != "" {
		return players.Search(roster, query), nil
	}
	s.collMu.Lock()
	defer s.collMu.Unlock()
	sorted := append([]matches.Player(nil), roster...)
	sortPlayers(sorted, s.coll)
	return sorted, nil
}

func sortPlayers(roster []matches.Player, cmp stats.NameCompare) {
	sort.SliceStable(roster, func(i, j int) bool { return cmp(roster[i].Name, roster[j].Name) < 0 })
}
