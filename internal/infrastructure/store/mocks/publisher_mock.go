package mocks

import (
	"context"
	"sync"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// MockPublisher records published events
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key   string
	Event store.Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

// Publish records the event. Non-envelope values are recorded with an empty Event.
func (m *MockPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev, _ := event.(store.Event)
	m.PublishCalls = append(m.PublishCalls, PublishCall{Key: key, Event: ev})
	return m.PublishErr
}

// EventTypes returns the event types published so far, in order
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.PublishCalls))
	for _, call := range m.PublishCalls {
		types = append(types, call.Event.EventType)
	}
	return types
}
