package metadata

import (
	"context"
	"maps"
	"sync"
)

// InMemoryRepository keeps metadata in a map. It is used by tests and by
// the CLI when no database path is configured.
type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[string][]byte)}
}

func (r *InMemoryRepository) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (r *InMemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte{}, value...)
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *InMemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.data)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context) (map[string][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string][]byte, len(r.data))
	for k, v := range r.data {
		result[k] = append([]byte{}, v...)
	}
	return result, nil
}

// Update applies fn to a copy of the data and swaps it in only if fn succeeds.
func (r *InMemoryRepository) Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := &InMemoryRepository{data: maps.Clone(r.data)}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	r.data = staged.data
	return nil
}
