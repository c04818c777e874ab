package history

import (
	"context"
	"sync"
)

// MemoryRepository keeps the list in process memory. It is a test helper for
// code that needs a Repository without SQLite.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...), nil
}

func (r *MemoryRepository) Save(_ context.Context, entries []Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]Entry(nil), entries...)
	return nil
}
