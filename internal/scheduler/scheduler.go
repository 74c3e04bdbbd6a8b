package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/lutefd/navi-api/internal/config"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
	"github.com/lutefd/navi-api/internal/notify"
)

type Projector interface {
	RecomputeSeasons(ctx context.Context) ([]stats.SeasonStats, error)
}

type NextMatchLister interface {
	ListNextMatches(ctx context.Context) ([]matches.NextMatch, error)
}

type Deps struct {
	Projector Projector
	Fixtures  NextMatchLister
	Notifier  notify.Notifier
	Location  *time.Location
	Jobs      config.Jobs
	Logger    *slog.Logger
}

type Scheduler struct {
	s         gocron.Scheduler
	projector Projector
	fixtures  NextMatchLister
	notifier  notify.Notifier
	loc       *time.Location
	jobs      config.Jobs
	logger    *slog.Logger
	now       func() time.Time
}

func NewScheduler(deps Deps) (*Scheduler, error) {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{
		s:         s,
		projector: deps.Projector,
		fixtures:  deps.Fixtures,
		notifier:  deps.Notifier,
		loc:       loc,
		jobs:      deps.Jobs,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *Scheduler) Start() error {
	projH, projM, err := config.ParseClock(s.jobs.ProjectionAt)
	if err != nil {
		return err
	}
	remH, remM, err := config.ParseClock(s.jobs.ReminderAt)
	if err != nil {
		return err
	}

	// Season projection rebuild, daily
	_, err = s.s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(projH, projM, 0))),
		gocron.NewTask(s.runProjection),
		gocron.WithName("season-projection"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create projection job: %w", err)
	}

	// Reminder for fixtures played tomorrow, daily
	if s.notifier != nil && s.fixtures != nil {
		_, err = s.s.NewJob(
			gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(remH, remM, 0))),
			gocron.NewTask(s.runReminders),
			gocron.WithName("next-match-reminder"),
		)
		if err != nil {
			return fmt.Errorf("failed to create reminder job: %w", err)
		}
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

func (s *Scheduler) runProjection() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	rows, err := s.projector.RecomputeSeasons(ctx)
	if err != nil {
		s.logger.Error("Failed to recompute season stats", "error", err)
		return
	}
	s.logger.Info("season stats recomputed", "seasons", len(rows))
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := s.SendReminders(ctx); err != nil {
		s.logger.Error("Failed to send reminders", "error", err)
	}
}

// SendReminders notifies about fixtures dated tomorrow in the scheduler's
// time zone and returns how many were announced.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	next, err := s.fixtures.ListNextMatches(ctx)
	if err != nil {
		return 0, err
	}
	tomorrow := matches.DateOf(s.now().In(s.loc).AddDate(0, 0, 1))
	due := notify.DueOn(next, tomorrow)
	if len(due) == 0 {
		return 0, nil
	}
	if err := s.notifier.Notify(ctx, notify.FormatReminder(due)); err != nil {
		return 0, err
	}
	return len(due), nil
}
