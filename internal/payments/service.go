package payments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("payments: not found")
	ErrInvalidArgument = errors.New("payments: invalid argument")
	ErrInvalidPhone    = errors.New("payments: invalid Kenyan phone number")
	ErrNotPending      = errors.New("payments: payment is not pending")
)

// kenyanPhone accepts Safaricom/Airtel numbers in +254 or 0 prefix form.
var kenyanPhone = regexp.MustCompile(`^(\+254|0)[17]\d{8}$`)

// Repository is the persistence contract for payments.
type Repository interface {
	Insert(ctx context.Context, p Payment) error
	Get(ctx context.Context, id string) (Payment, error)
	// FindByIdempotency returns the taxpayer's payment created with the key, if any.
	FindByIdempotency(ctx context.Context, taxpayerPIN, key string) (Payment, bool, error)
	// ListByTaxpayer returns the taxpayer's payments, newest first.
	ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Payment, error)
	UpdateSettlement(ctx context.Context, id string, status Status, receipt string, updatedAt time.Time) (Payment, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type InitiateRequest struct {
	Type           string `json:"type"`
	AmountMinor    int64  `json:"amount_minor"`
	Phone          string `json:"phone"`
	IdempotencyKey string `json:"idempotency_key"`
}

// Initiate sends a simulated M-Pesa STK push and records the pending payment.
// Replays with the same idempotency key return the original payment.
func (s *Service) Initiate(ctx context.Context, taxpayerPIN string, req InitiateRequest) (Payment, error) {
	if taxpayerPIN == "" || req.Type == "" || req.IdempotencyKey == "" {
		return Payment{}, ErrInvalidArgument
	}
	if req.AmountMinor <= 0 {
		return Payment{}, ErrInvalidArgument
	}
	if !kenyanPhone.MatchString(strings.TrimSpace(req.Phone)) {
		return Payment{}, ErrInvalidPhone
	}

	if existing, ok, err := s.repo.FindByIdempotency(ctx, taxpayerPIN, req.IdempotencyKey); err != nil {
		return Payment{}, err
	} else if ok {
		return existing, nil
	}

	now := s.clock().UTC()
	p := Payment{
		ID:             uuid.NewString(),
		TaxpayerPIN:    taxpayerPIN,
		Type:           req.Type,
		AmountMinor:    req.AmountMinor,
		Currency:       "KES",
		Method:         MethodMpesa,
		Phone:          strings.TrimSpace(req.Phone),
		Status:         StatusPushed,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// Confirm settles a pushed payment. Receipt references look like the M-Pesa
// confirmation codes citizens see on their phones.
func (s *Service) Confirm(ctx context.Context, id string) (Payment, error) {
	if id == "" {
		return Payment{}, ErrInvalidArgument
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.Status != StatusPushed {
		return Payment{}, ErrNotPending
	}
	receipt := receiptRef(s.clock().UTC())
	return s.repo.UpdateSettlement(ctx, id, StatusCompleted, receipt, s.clock().UTC())
}

// Fail marks a pushed payment as failed (PIN timeout, cancelled prompt).
func (s *Service) Fail(ctx context.Context, id string) (Payment, error) {
	if id == "" {
		return Payment{}, ErrInvalidArgument
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if p.Status != StatusPushed {
		return Payment{}, ErrNotPending
	}
	return s.repo.UpdateSettlement(ctx, id, StatusFailed, "", s.clock().UTC())
}

func (s *Service) List(ctx context.Context, taxpayerPIN string) ([]Payment, error) {
	if taxpayerPIN == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByTaxpayer(ctx, taxpayerPIN)
}

func (s *Service) Get(ctx context.Context, id string) (Payment, error) {
	if id == "" {
		return Payment{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

func receiptRef(at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("QR%d%s", at.Year(), short)
}
