package audit

import (
	"context"
	"sync"

	"github.com/JuanPaGargoo/pos-core-api/internal/ids"
)

// MemoryStore keeps the trail in memory. Used by tests and DSN-less runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = ids.New()
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryStore) List(_ context.Context, page, limit int) ([]Entry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := len(m.entries)

	// Newest first.
	reversed := make([]Entry, total)
	for i, e := range m.entries {
		reversed[total-1-i] = e
	}
	start := (page - 1) * limit
	if start >= total {
		return []Entry{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return reversed[start:end], total, nil
}
