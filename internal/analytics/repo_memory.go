package analytics

import (
	"context"
	"sync"
	"time"

	"gavalink/internal/payments"
	"gavalink/internal/returns"
	"gavalink/internal/support"
)

// MemoryRepo is a simple in-memory analytics repository for tests and early development.

type MemoryRepo struct {
	mu sync.Mutex

	Returns  []returns.TaxReturn
	Payments []payments.Payment
	Tickets  []support.Ticket
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListReturns(ctx context.Context, from, to time.Time) ([]returns.TaxReturn, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]returns.TaxReturn, 0)
	for _, t := range r.Returns {
		if inRange(t.FiledAt, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListPayments(ctx context.Context, from, to time.Time) ([]payments.Payment, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]payments.Payment, 0)
	for _, p := range r.Payments {
		if inRange(p.CreatedAt, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListTickets(ctx context.Context, from, to time.Time) ([]support.Ticket, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]support.Ticket, 0)
	for _, t := range r.Tickets {
		if inRange(t.CreatedAt, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func inRange(at, from, to time.Time) bool {
	if at.IsZero() {
		return true
	}
	return !at.Before(from) && at.Before(to)
}
