package returns

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("returns: not found")
	ErrInvalidArgument = errors.New("returns: invalid argument")
	ErrDuplicatePeriod = errors.New("returns: return already filed for period")
)

// Repository is the persistence contract for tax returns.
type Repository interface {
	Insert(ctx context.Context, r TaxReturn) error
	Get(ctx context.Context, id string) (TaxReturn, error)
	// ListByTaxpayer returns the taxpayer's returns, newest first.
	ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]TaxReturn, error)
	// FindByPeriod reports whether the taxpayer already filed for the period.
	FindByPeriod(ctx context.Context, taxpayerPIN string, typ ReturnType, p Period) (TaxReturn, bool, error)
	UpdateStatus(ctx context.Context, id string, status Status) (TaxReturn, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type FileRequest struct {
	Type         ReturnType `json:"type"`
	Period       Period     `json:"period"`
	IncomeSource string     `json:"income_source"`
	AmountMinor  int64      `json:"amount_minor"`
}

// File records a return for the taxpayer. A period may only be filed once;
// re-filing returns ErrDuplicatePeriod.
func (s *Service) File(ctx context.Context, taxpayerPIN string, req FileRequest) (TaxReturn, error) {
	if taxpayerPIN == "" || req.IncomeSource == "" {
		return TaxReturn{}, ErrInvalidArgument
	}
	switch req.Type {
	case TypeNil, TypeAnnual:
	default:
		return TaxReturn{}, ErrInvalidArgument
	}
	if !req.Period.valid(req.Type) {
		return TaxReturn{}, ErrInvalidArgument
	}
	if req.Type == TypeNil && req.AmountMinor != 0 {
		return TaxReturn{}, ErrInvalidArgument
	}
	if req.AmountMinor < 0 {
		return TaxReturn{}, ErrInvalidArgument
	}

	if _, exists, err := s.repo.FindByPeriod(ctx, taxpayerPIN, req.Type, req.Period); err != nil {
		return TaxReturn{}, err
	} else if exists {
		return TaxReturn{}, ErrDuplicatePeriod
	}

	r := TaxReturn{
		ID:           uuid.NewString(),
		TaxpayerPIN:  taxpayerPIN,
		Type:         req.Type,
		Period:       req.Period,
		IncomeSource: req.IncomeSource,
		AmountMinor:  req.AmountMinor,
		Status:       StatusFiled,
		FiledAt:      s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return TaxReturn{}, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, taxpayerPIN string) ([]TaxReturn, error) {
	if taxpayerPIN == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByTaxpayer(ctx, taxpayerPIN)
}

func (s *Service) Get(ctx context.Context, id string) (TaxReturn, error) {
	if id == "" {
		return TaxReturn{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

// Advance moves a return along the processing pipeline. Only the forward
// transitions filed->processing->accepted|rejected are allowed.
func (s *Service) Advance(ctx context.Context, id string, next Status) (TaxReturn, error) {
	if id == "" {
		return TaxReturn{}, ErrInvalidArgument
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return TaxReturn{}, err
	}
	if !transitionAllowed(current.Status, next) {
		return TaxReturn{}, ErrInvalidArgument
	}
	return s.repo.UpdateStatus(ctx, id, next)
}

func transitionAllowed(from, to Status) bool {
	switch from {
	case StatusFiled:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusAccepted || to == StatusRejected
	default:
		return false
	}
}
