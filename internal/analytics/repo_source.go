package analytics

import (
	"context"
	"time"

	"gavalink/internal/payments"
	"gavalink/internal/returns"
	"gavalink/internal/support"
)

// ReturnsSource is the slice of the returns store analytics needs.
type ReturnsSource interface {
	ListAll(ctx context.Context) ([]returns.TaxReturn, error)
}

// PaymentsSource is the slice of the payments store analytics needs.
type PaymentsSource interface {
	ListAll(ctx context.Context) ([]payments.Payment, error)
}

// TicketsSource is the slice of the support store analytics needs.
type TicketsSource interface {
	ListAll(ctx context.Context) ([]support.Ticket, error)
}

// SourceRepo adapts the live portal stores to the analytics Repository.
// Summaries always reflect what citizens and officers actually did; there is
// no separate analytics copy to drift out of sync.
type SourceRepo struct {
	returns  ReturnsSource
	payments PaymentsSource
	tickets  TicketsSource
}

func NewSourceRepo(r ReturnsSource, p PaymentsSource, t TicketsSource) *SourceRepo {
	return &SourceRepo{returns: r, payments: p, tickets: t}
}

func (s *SourceRepo) ListReturns(ctx context.Context, from, to time.Time) ([]returns.TaxReturn, error) {
	all, err := s.returns.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]returns.TaxReturn, 0, len(all))
	for _, t := range all {
		if inRange(t.FiledAt, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *SourceRepo) ListPayments(ctx context.Context, from, to time.Time) ([]payments.Payment, error) {
	all, err := s.payments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]payments.Payment, 0, len(all))
	for _, p := range all {
		if inRange(p.CreatedAt, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *SourceRepo) ListTickets(ctx context.Context, from, to time.Time) ([]support.Ticket, error) {
	all, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]support.Ticket, 0, len(all))
	for _, t := range all {
		if inRange(t.CreatedAt, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}
