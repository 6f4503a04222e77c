package applications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu   sync.Mutex
	apps map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{apps: make(map[string]Application)}
}

func (r *MemoryRepo) Insert(ctx context.Context, a Application) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID] = a
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Application, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Application, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Application
	for _, a := range r.apps {
		if a.TaxpayerPIN == taxpayerPIN {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status, note string, updatedAt time.Time) (Application, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	a.Status = status
	a.StatusNote = note
	a.UpdatedAt = updatedAt
	r.apps[id] = a
	return a, nil
}
