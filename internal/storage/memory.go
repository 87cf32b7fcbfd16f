package storage

import (
	"context"
	"sync"

	"submanager/internal/store"
)

// MemoryRepository keeps state in process memory only. Used for the
// memory backend and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	state store.State
	found bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (store.State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.found, nil
}

func (r *MemoryRepository) Save(_ context.Context, s store.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	r.found = true
	return nil
}
