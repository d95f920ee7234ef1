package mocks

import (
	"context"
	"sync"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// MockStateStore is a mock implementation of store.StateStore for testing
type MockStateStore struct {
	mu  sync.RWMutex
	doc *store.Document

	// For tracking calls in tests
	LoadCalls    int
	SaveCalls    []*store.Document
	LoadErr      error
	SaveErr      error
	SaveCallback func(ctx context.Context, doc *store.Document) error
}

// NewMockStateStore creates a MockStateStore holding the bootstrap document
func NewMockStateStore() *MockStateStore {
	return &MockStateStore{
		doc:       store.Bootstrap(),
		SaveCalls: make([]*store.Document, 0),
	}
}

// Load returns a copy of the held document
func (m *MockStateStore) Load(ctx context.Context) (*store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LoadCalls++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.doc.Clone(), nil
}

// Save records the call and replaces the held document unless an error is configured
func (m *MockStateStore) Save(ctx context.Context, doc *store.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls = append(m.SaveCalls, doc.Clone())

	if m.SaveCallback != nil {
		if err := m.SaveCallback(ctx, doc); err != nil {
			return err
		}
	}
	if m.SaveErr != nil {
		return m.SaveErr
	}

	m.doc = doc.Clone()
	return nil
}

// SetDocument sets the held document directly for testing
func (m *MockStateStore) SetDocument(doc *store.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc.Clone()
}

// Document returns a copy of the held document
func (m *MockStateStore) Document() *store.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Reset restores the bootstrap document and clears recorded calls
func (m *MockStateStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = store.Bootstrap()
	m.LoadCalls = 0
	m.SaveCalls = make([]*store.Document, 0)
	m.LoadErr = nil
	m.SaveErr = nil
	m.SaveCallback = nil
}
