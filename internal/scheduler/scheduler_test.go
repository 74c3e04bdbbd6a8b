package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lutefd/navi-api/internal/config"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
)

type projectorFake struct {
	calls int
	err   error
}

func (f *projectorFake) RecomputeSeasons(context.Context) ([]stats.SeasonStats, error) {
	f.calls++
	return nil, f.err
}

type fixturesFake struct {
	next []matches.NextMatch
}

func (f fixturesFake) ListNextMatches(context.Context) ([]matches.NextMatch, error) {
	return f.next, nil
}

type notifierFake struct {
	texts []string
}

func (f *notifierFake) Notify(_ context.Context, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func newTestScheduler(t *testing.T, fixtures fixturesFake, n *notifierFake, p *projectorFake) *Scheduler {
	t.Helper()
	seoul := time.FixedZone("KST", 9*60*60)
	s, err := NewScheduler(Deps{
		Projector: p,
		Fixtures:  fixtures,
		Notifier:  n,
		Location:  seoul,
		Jobs:      config.Jobs{ProjectionAt: "04:00", ReminderAt: "09:00"},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	// 2026-05-01 23:30 UTC is already 2026-05-02 in Seoul
	s.now = func() time.Time { return time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC) }
	return s
}

func TestSendRemindersUsesLocalTomorrow(t *testing.T) {
	n := &notifierFake{}
	fixtures := fixturesFake{next: []matches.NextMatch{
		{ID: 1, MatchDate: matches.NewDate(2026, 5, 2), Opponent: "Today"},
		{ID: 2, MatchDate: matches.NewDate(2026, 5, 3), Opponent: "Tomorrow"},
	}}
	s := newTestScheduler(t, fixtures, n, &projectorFake{})

	count, err := s.SendReminders(context.Background())
	if err != nil {
		t.Fatalf("send reminders: %v", err)
	}
	if count != 1 || len(n.texts) != 1 || !strings.Contains(n.texts[0], "Tomorrow") {
		t.Fatalf("unexpected reminders: %d %+v", count, n.texts)
	}
}

func TestSendRemindersQuietWithoutFixtures(t *testing.T) {
	n := &notifierFake{}
	s := newTestScheduler(t, fixturesFake{}, n, &projectorFake{})
	if count, err := s.SendReminders(context.Background()); err != nil || count != 0 {
		t.Fatalf("expected nothing to send, got %d, %v", count, err)
	}
	if len(n.texts) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestRunProjectionLogsFailure(t *testing.T) {
	p := &projectorFake{err: errors.New("db down")}
	s := newTestScheduler(t, fixturesFake{}, &notifierFake{}, p)
	s.runProjection()
	if p.calls != 1 {
		t.Fatalf("expected one projection call, got %d", p.calls)
	}
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(t, fixturesFake{}, &notifierFake{}, &projectorFake{})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
