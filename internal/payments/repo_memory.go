package payments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu       sync.Mutex
	payments map[string]Payment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{payments: make(map[string]Payment)}
}

func (r *MemoryRepo) Insert(ctx context.Context, p Payment) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = p
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) FindByIdempotency(ctx context.Context, taxpayerPIN, key string) (Payment, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.payments {
		if p.TaxpayerPIN == taxpayerPIN && p.IdempotencyKey == key {
			return p, true, nil
		}
	}
	return Payment{}, false, nil
}

func (r *MemoryRepo) ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Payment
	for _, p := range r.payments {
		if p.TaxpayerPIN == taxpayerPIN {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) UpdateSettlement(ctx context.Context, id string, status Status, receipt string, updatedAt time.Time) (Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	p.Status = status
	p.Receipt = receipt
	p.UpdatedAt = updatedAt
	r.payments[id] = p
	return p, nil
}

// ListAll returns every stored payment, unordered. Analytics reads through
// this rather than keeping its own copy of the data.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, nil
}
