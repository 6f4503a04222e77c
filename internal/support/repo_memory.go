package support

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early development.
type MemoryRepo struct {
	mu      sync.Mutex
	tickets map[string]Ticket
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tickets: make(map[string]Ticket)}
}

func (r *MemoryRepo) Insert(ctx context.Context, t Ticket) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ID] = t
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Ticket
	for _, t := range r.tickets {
		if t.TaxpayerPIN == taxpayerPIN {
			out = append(out, t)
		}
	}
	sortNewest(out)
	return out, nil
}

func (r *MemoryRepo) ListByStatus(ctx context.Context, status Status) ([]Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Ticket
	for _, t := range r.tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sortNewest(out)
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tickets[id]
	if !ok {
		return Ticket{}, ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	r.tickets[id] = t
	return t, nil
}

func sortNewest(tickets []Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
}

// ListAll returns every stored ticket, unordered. Analytics reads through
// this rather than keeping its own copy of the data.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		out = append(out, t)
	}
	return out, nil
}
