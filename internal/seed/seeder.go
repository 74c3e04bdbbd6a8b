package seed

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/lutefd/navi-api/internal/events"
)

type Store interface {
	// InTx runs fn in one transaction; store calls made with the context
	// handed to fn are rolled back together when fn fails.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
	CountMatches(ctx context.Context) (int, error)
	CountNextMatches(ctx context.Context) (int, error)
	EnsurePlayer(ctx context.Context, name string) (matches.Player, error)
	CreateMatch(ctx context.Context, in matches.Input) (matches.Summary, error)
	CreateNextMatch(ctx context.Context, in matches.NextMatchInput) (matches.NextMatch, error)
}

type Result struct {
	Done      bool   `json:"done"`
	Message   string `json:"message"`
	Players   int    `json:"players"`
	Matches   int    `json:"matches"`
	Skipped   int    `json:"skipped"`
	NextMatch bool   `json:"nextMatch"`
}

type Seeder struct {
	store  Store
	dir    fs.FS
	bus    *events.Bus
	logger *slog.Logger
}

func NewSeeder(store Store, dir fs.FS, bus *events.Bus, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, dir: dir, bus: bus, logger: logger}
}

// SeedIfEmpty imports the seed directory unless a match already exists.
// The import is all or nothing. Attendees and scorers missing from the
// player sheet are skipped, and so are match rows that fail validation.
func (s *Seeder) SeedIfEmpty(ctx context.Context) (Result, error) {
	data, err := Load(s.dir)
	if err != nil {
		return Result{}, err
	}

	var out Result
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.importData(ctx, data)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("seed: %w", err)
	}
	if !out.Done {
		return out, nil
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.Event{Name: events.RosterSeeded}); err != nil {
			return Result{}, err
		}
	}
	s.logger.Info("seed complete",
		"players", out.Players,
		"matches", out.Matches,
		"skipped", out.Skipped,
		"next_match", out.NextMatch)
	return out, nil
}

func (s *Seeder) importData(ctx context.Context, data Dataset) (Result, error) {
	n, err := s.store.CountMatches(ctx)
	if err != nil {
		return Result{}, err
	}
	if n > 0 {
		s.logger.Info("seed skipped, matches already exist", "matches", n)
		return Result{Message: "database already has data"}, nil
	}

	ids := make(map[string]int64, len(data.Players))
	for _, name := range data.Players {
		p, err := s.store.EnsurePlayer(ctx, name)
		if err != nil {
			return Result{}, err
		}
		ids[p.Name] = p.ID
	}

	out := Result{Players: len(ids)}
	created := make([]matches.Summary, 0, len(data.Matches))
	for _, m := range data.Matches {
		in, err := toInput(m, ids).Normalize()
		if err != nil {
			s.logger.Warn("match row skipped",
				"date", m.MatchDate.String(),
				"opponent", m.Opponent,
				"error", err)
			out.Skipped++
			continue
		}
		if m.RecordedResult.Valid() && m.RecordedResult != in.Result() {
			s.logger.Warn("sheet verdict disagrees with score",
				"date", m.MatchDate.String(),
				"opponent", m.Opponent,
				"recorded", m.RecordedResult,
				"derived", in.Result())
		}
		summary, err := s.store.CreateMatch(ctx, in)
		if err != nil {
			return Result{}, fmt.Errorf("match on %s: %w", m.MatchDate, err)
		}
		created = append(created, summary)
	}
	out.Matches = len(created)

	if data.NextMatch != nil {
		count, err := s.store.CountNextMatches(ctx)
		if err != nil {
			return Result{}, err
		}
		if count == 0 {
			if _, err := s.store.CreateNextMatch(ctx, *data.NextMatch); err != nil {
				return Result{}, err
			}
			out.NextMatch = true
		}
	}

	if data.Declared != nil {
		s.checkDeclared(*data.Declared, created)
	}

	out.Done = true
	out.Message = fmt.Sprintf("seeded %d players and %d matches", out.Players, out.Matches)
	return out, nil
}

// checkDeclared compares the hand-typed dashboard totals with what the
// imported matches add up to.
func (s *Seeder) checkDeclared(declared stats.SeasonStats, created []matches.Summary) {
	derived := stats.ComputeSeasonStats(created, 0)
	if declared.TotalMatches == derived.TotalMatches &&
		declared.Wins == derived.Wins &&
		declared.Draws == derived.Draws &&
		declared.Losses == derived.Losses {
		return
	}
	s.logger.Warn("dashboard sheet totals differ from imported matches",
		"declared_total", declared.TotalMatches, "derived_total", derived.TotalMatches,
		"declared_wins", declared.Wins, "derived_wins", derived.Wins,
		"declared_draws", declared.Draws, "derived_draws", derived.Draws,
		"declared_losses", declared.Losses, "derived_losses", derived.Losses)
}

func toInput(m Match, ids map[string]int64) matches.Input {
	in := matches.Input{
		MatchDate:     m.MatchDate,
		Opponent:      m.Opponent,
		OurScore:      m.OurScore,
		OpponentScore: m.OpponentScore,
	}
	for _, name := range m.Attendees {
		if id, ok := ids[name]; ok {
			in.AttendeePlayerIDs = append(in.AttendeePlayerIDs, id)
		}
	}
	for _, t := range m.Tallies {
		if id, ok := ids[t.PlayerName]; ok {
			in.GoalAssistRecords = append(in.GoalAssistRecords, matches.GoalAssistRecord{
				PlayerID: id,
				Goals:    t.Goals,
				Assists:  t.Assists,
			})
		}
	}
	return in
}
