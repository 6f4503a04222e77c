package analytics

import (
	"context"
	"errors"
	"time"

	"gavalink/internal/payments"
	"gavalink/internal/returns"
	"gavalink/internal/support"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

// Repository abstracts data access for analytics.
//
// Implementations should query the source-of-truth tables directly; summaries
// are computed here, not stored.
type Repository interface {
	ListReturns(ctx context.Context, from, to time.Time) ([]returns.TaxReturn, error)
	ListPayments(ctx context.Context, from, to time.Time) ([]payments.Payment, error)
	ListTickets(ctx context.Context, from, to time.Time) ([]support.Ticket, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) ReturnsSummary(ctx context.Context, r TimeRange) (ReturnsSummary, error) {
	if err := s.check(r); err != nil {
		return ReturnsSummary{}, err
	}

	rows, err := s.repo.ListReturns(ctx, r.From, r.To)
	if err != nil {
		return ReturnsSummary{}, err
	}

	var out ReturnsSummary
	for _, t := range rows {
		out.TotalFiled++
		if t.Type == returns.TypeNil {
			out.NilReturns++
		}
		switch t.Status {
		case returns.StatusAccepted:
			out.Accepted++
		case returns.StatusRejected:
			out.Rejected++
		case returns.StatusProcessing:
			out.Processing++
		case returns.StatusFiled:
			// counted in total only
		}
	}
	return out, nil
}

func (s *Service) PaymentsSummary(ctx context.Context, r TimeRange) (PaymentsSummary, error) {
	if err := s.check(r); err != nil {
		return PaymentsSummary{}, err
	}

	rows, err := s.repo.ListPayments(ctx, r.From, r.To)
	if err != nil {
		return PaymentsSummary{}, err
	}

	var out PaymentsSummary
	for _, p := range rows {
		out.TotalPayments++
		switch p.Status {
		case payments.StatusCompleted:
			out.Completed++
			out.CompletedAmountMinor += p.AmountMinor
		case payments.StatusFailed:
			out.Failed++
		case payments.StatusPushed:
			out.Pending++
		}
	}
	return out, nil
}

func (s *Service) SupportSummary(ctx context.Context, r TimeRange) (SupportSummary, error) {
	if err := s.check(r); err != nil {
		return SupportSummary{}, err
	}

	rows, err := s.repo.ListTickets(ctx, r.From, r.To)
	if err != nil {
		return SupportSummary{}, err
	}

	out := SupportSummary{ByCategory: map[string]int{}}
	var resolvedTotal time.Duration
	var resolvedCount int
	for _, t := range rows {
		out.TotalTickets++
		out.ByCategory[t.Category]++
		switch t.Status {
		case support.StatusOpen, support.StatusInProgress:
			out.Open++
		case support.StatusResolved, support.StatusClosed:
			out.Resolved++
			resolvedTotal += t.UpdatedAt.Sub(t.CreatedAt)
			resolvedCount++
		}
	}
	if resolvedCount > 0 {
		out.AverageResolutionSeconds = int(resolvedTotal.Seconds()) / resolvedCount
	}
	return out, nil
}

// Overview computes the officer dashboard headline block in one call.
func (s *Service) Overview(ctx context.Context, r TimeRange) (Overview, error) {
	ret, err := s.ReturnsSummary(ctx, r)
	if err != nil {
		return Overview{}, err
	}
	pay, err := s.PaymentsSummary(ctx, r)
	if err != nil {
		return Overview{}, err
	}
	sup, err := s.SupportSummary(ctx, r)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Returns: ret, Payments: pay, Support: sup}, nil
}

func (s *Service) check(r TimeRange) error {
	if s.repo == nil {
		return errors.New("analytics: repository not configured")
	}
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	return nil
}
