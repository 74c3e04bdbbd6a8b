package projections

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/lutefd/navi-api/internal/events"
)

type projectionStoreMock struct {
	matches []matches.Summary
	listErr error

	replaced     []stats.SeasonStats
	replacedAt   time.Time
	replaceCalls int
}

func (m *projectionStoreMock) ListMatches(_ context.Context) ([]matches.Summary, error) {
	return m.matches, m.listErr
}

func (m *projectionStoreMock) ReplaceSeasonStats(_ context.Context, rows []stats.SeasonStats, at time.Time) error {
	m.replaced = rows
	m.replacedAt = at
	m.replaceCalls++
	return nil
}

func match(y int, mo time.Month, d int, result matches.Result) matches.Summary {
	return matches.Summary{MatchDate: matches.NewDate(y, mo, d), Result: result}
}

func TestRecomputeSeasonsGroupsByYear(t *testing.T) {
	mock := &projectionStoreMock{matches: []matches.Summary{
		match(2026, 3, 1, matches.ResultWin),
		match(2026, 3, 8, matches.ResultLoss),
		match(2025, 11, 2, matches.ResultDraw),
		{Result: matches.ResultWin},
	}}
	fixed := time.Date(2026, 3, 9, 4, 0, 0, 0, time.UTC)
	svc := NewService(mock)
	svc.now = func() time.Time { return fixed }

	rows, err := svc.RecomputeSeasons(context.Background())
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if len(rows) != 2 || len(mock.replaced) != 2 {
		t.Fatalf("expected 2 seasons, got %+v", rows)
	}
	if rows[0].SeasonYear != 2025 || rows[0].Draws != 1 || rows[0].TotalMatches != 1 {
		t.Fatalf("unexpected 2025 row: %+v", rows[0])
	}
	if rows[1].SeasonYear != 2026 || rows[1].Wins != 1 || rows[1].Losses != 1 || rows[1].TotalMatches != 2 {
		t.Fatalf("unexpected 2026 row: %+v", rows[1])
	}
	if !mock.replacedAt.Equal(fixed) {
		t.Fatalf("expected calculation time %s, got %s", fixed, mock.replacedAt)
	}
}

func TestRecomputeSeasonsPropagatesListError(t *testing.T) {
	mock := &projectionStoreMock{listErr: errors.New("db down")}
	if _, err := NewService(mock).RecomputeSeasons(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if mock.replaceCalls != 0 {
		t.Fatalf("expected no write after a failed read")
	}
}

func TestSubscribeRecomputesOnMatchEvents(t *testing.T) {
	mock := &projectionStoreMock{matches: []matches.Summary{match(2026, 1, 5, matches.ResultWin)}}
	bus := events.NewBus()
	NewService(mock).Subscribe(bus)

	ctx := context.Background()
	for _, name := range []string{events.MatchCreated, events.MatchUpdated, events.MatchDeleted} {
		if err := bus.Publish(ctx, events.Event{Name: name}); err != nil {
			t.Fatalf("publish %s: %v", name, err)
		}
	}
	if mock.replaceCalls != 3 {
		t.Fatalf("expected 3 recomputations, got %d", mock.replaceCalls)
	}
}
