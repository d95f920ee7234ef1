package store

import (
	"context"
	"sync"
)

// MemoryStore holds the encoded document in memory. It goes through the same codec
// as the durable stores so callers never share mutable state with it.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) Load(ctx context.Context) (*Document, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.data == nil {
		return Bootstrap(), nil
	}
	return Decode(ms.data)
}

func (ms *MemoryStore) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	ms.data = data
	ms.mu.Unlock()
	return nil
}

// Bytes returns the last saved encoding, or nil.
func (ms *MemoryStore) Bytes() []byte {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]byte(nil), ms.data...)
}
