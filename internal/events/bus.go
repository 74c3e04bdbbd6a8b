package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/lutefd/navi-api/internal/domain/matches"
)

const (
	MatchCreated = "MatchCreated"
	MatchUpdated = "MatchUpdated"
	MatchDeleted = "MatchDeleted"
	RosterSeeded = "RosterSeeded"
)

// MatchChanged is the payload of every match event. Summary is empty for
// MatchDeleted.
type MatchChanged struct {
	MatchID int64
	Summary matches.Summary
}

type Event struct {
	Name    string
	Payload any
}

type Handler func(context.Context, Event) error

type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// SubscribeMany registers handler for each of the given event names.
func (b *Bus) SubscribeMany(handler Handler, names ...string) {
	for _, name := range names {
		b.Subscribe(name, handler)
	}
}

// Publish runs the handlers synchronously and stops at the first failure.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[e.Name]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, e); err != nil {
			return fmt.Errorf("%s handler: %w", e.Name, err)
		}
	}
	return nil
}
