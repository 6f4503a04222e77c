package returns

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	returns map[string]TaxReturn
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{returns: make(map[string]TaxReturn)}
}

func (r *MemoryRepo) Insert(ctx context.Context, t TaxReturn) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.returns[t.ID] = t
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (TaxReturn, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.returns[id]
	if !ok {
		return TaxReturn{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]TaxReturn, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []TaxReturn
	for _, t := range r.returns {
		if t.TaxpayerPIN == taxpayerPIN {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FiledAt.After(out[j].FiledAt)
	})
	return out, nil
}

func (r *MemoryRepo) FindByPeriod(ctx context.Context, taxpayerPIN string, typ ReturnType, p Period) (TaxReturn, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.returns {
		if t.TaxpayerPIN == taxpayerPIN && t.Type == typ && t.Period == p {
			return t, true, nil
		}
	}
	return TaxReturn{}, false, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status) (TaxReturn, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.returns[id]
	if !ok {
		return TaxReturn{}, ErrNotFound
	}
	t.Status = status
	r.returns[id] = t
	return t, nil
}

// ListAll returns every stored return, unordered. Analytics reads through
// this rather than keeping its own copy of the data.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]TaxReturn, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TaxReturn, 0, len(r.returns))
	for _, t := range r.returns {
		out = append(out, t)
	}
	return out, nil
}
