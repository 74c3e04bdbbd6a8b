package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/lutefd/navi-api/internal/seed"
)

type seederFake struct {
	calls int
	res   seed.Result
	err   error
}

func (f *seederFake) SeedIfEmpty(context.Context) (seed.Result, error) {
	f.calls++
	return f.res, f.err
}

func TestSeedOnStartup(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	seeder := &seederFake{res: seed.Result{Done: true, Message: "seeded 3 players and 2 matches"}}

	seedOnStartup(context.Background(), seeder, logger)

	if seeder.calls != 1 {
		t.Fatalf("expected one seed attempt, got %d", seeder.calls)
	}
	if !strings.Contains(logs.String(), "seeded 3 players") {
		t.Fatalf("expected the seed result to be logged, got %q", logs.String())
	}
}

func TestSeedOnStartupFailureIsNotFatal(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	seeder := &seederFake{err: errors.New("connection refused")}

	seedOnStartup(context.Background(), seeder, logger)

	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected a warning with the cause, got %q", logs.String())
	}
}
