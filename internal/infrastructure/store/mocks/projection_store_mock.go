package mocks

import (
	"context"
	"sync"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// MockProjectionStore keeps projected rows in memory
type MockProjectionStore struct {
	mu sync.Mutex

	Levels     map[string]store.StockLevel
	Activities []store.Activity

	UpsertErr error
	AppendErr error
}

func NewMockProjectionStore() *MockProjectionStore {
	return &MockProjectionStore{Levels: make(map[string]store.StockLevel)}
}

func (m *MockProjectionStore) UpsertStockLevel(ctx context.Context, level store.StockLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if cur, ok := m.Levels[level.Code]; ok && cur.UpdatedAt.After(level.UpdatedAt) {
		return nil
	}
	m.Levels[level.Code] = level
	return nil
}

func (m *MockProjectionStore) AppendActivity(ctx context.Context, a store.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AppendErr != nil {
		return m.AppendErr
	}
	for _, existing := range m.Activities {
		if existing.ID == a.ID {
			return nil
		}
	}
	m.Activities = append(m.Activities, a)
	return nil
}
