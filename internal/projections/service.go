package projections

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/lutefd/navi-api/internal/events"
)

type Store interface {
	ListMatches(ctx context.Context) ([]matches.Summary, error)
	ReplaceSeasonStats(ctx context.Context, rows []stats.SeasonStats, calculatedAt time.Time) error
}

// Service keeps the season_stats table in step with the matches table.
type Service struct {
	store Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RecomputeSeasons rebuilds one row per calendar year from every stored
// match and returns the rows written.
func (s *Service) RecomputeSeasons(ctx context.Context) ([]stats.SeasonStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.store.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	rows := computeSeasonRows(items)
	if err := s.store.ReplaceSeasonStats(ctx, rows, s.now().UTC()); err != nil {
		return nil, err
	}
	return rows, nil
}

// Subscribe recomputes after every match write.
func (s *Service) Subscribe(bus *events.Bus) {
	bus.SubscribeMany(func(ctx context.Context, e events.Event) error {
		rows, err := s.RecomputeSeasons(ctx)
		if err != nil {
			return err
		}
		slog.Debug("season stats recomputed", "event", e.Name, "seasons", len(rows))
		return nil
	}, events.MatchCreated, events.MatchUpdated, events.MatchDeleted, events.RosterSeeded)
}

func computeSeasonRows(items []matches.Summary) []stats.SeasonStats {
	years := stats.SeasonYears(items)
	rows := make([]stats.SeasonStats, 0, len(years))
	for _, year := range years {
		rows = append(rows, stats.ComputeSeasonStats(stats.SeasonOf(items, year), year))
	}
	return rows
}
