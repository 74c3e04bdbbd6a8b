package events

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishCallsHandlersInOrder(t *testing.T) {
	bus := NewBus()
	calls := make([]int, 0, 2)

	bus.Subscribe(MatchCreated, func(_ context.Context, _ Event) error {
		calls = append(calls, 1)
		return nil
	})
	bus.Subscribe(MatchCreated, func(_ context.Context, _ Event) error {
		calls = append(calls, 2)
		return nil
	})

	if err := bus.Publish(context.Background(), Event{Name: MatchCreated}); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}

	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("unexpected handler call sequence: %+v", calls)
	}
}

func TestBusPublishStopsOnFirstError(t *testing.T) {
	bus := NewBus()
	var calledSecond bool
	expectedErr := errors.New("handler failed")

	bus.Subscribe(MatchUpdated, func(_ context.Context, _ Event) error {
		return expectedErr
	})
	bus.Subscribe(MatchUpdated, func(_ context.Context, _ Event) error {
		calledSecond = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Name: MatchUpdated})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected %v, got %v", expectedErr, err)
	}
	if calledSecond {
		t.Fatalf("expected second handler not to run")
	}
}

func TestSubscribeManyReceivesPayload(t *testing.T) {
	bus := NewBus()
	seen := make([]int64, 0)
	bus.SubscribeMany(func(_ context.Context, e Event) error {
		seen = append(seen, e.Payload.(MatchChanged).MatchID)
		return nil
	}, MatchCreated, MatchDeleted)

	ctx := context.Background()
	_ = bus.Publish(ctx, Event{Name: MatchCreated, Payload: MatchChanged{MatchID: 1}})
	_ = bus.Publish(ctx, Event{Name: MatchUpdated, Payload: MatchChanged{MatchID: 2}})
	_ = bus.Publish(ctx, Event{Name: MatchDeleted, Payload: MatchChanged{MatchID: 3}})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("unexpected payloads: %+v", seen)
	}
}
