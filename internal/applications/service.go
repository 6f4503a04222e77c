package applications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("applications: not found")
	ErrInvalidArgument = errors.New("applications: invalid argument")
	ErrClosed          = errors.New("applications: application already closed")
)

// Repository is the persistence contract for applications.
type Repository interface {
	Insert(ctx context.Context, a Application) error
	Get(ctx context.Context, id string) (Application, error)
	// ListByTaxpayer returns the taxpayer's applications, newest first.
	ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Application, error)
	UpdateStatus(ctx context.Context, id string, status Status, note string, updatedAt time.Time) (Application, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type SubmitRequest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (s *Service) Submit(ctx context.Context, taxpayerPIN string, req SubmitRequest) (Application, error) {
	if taxpayerPIN == "" || req.Type == "" || req.Description == "" {
		return Application{}, ErrInvalidArgument
	}
	now := s.clock().UTC()
	a := Application{
		ID:          uuid.NewString(),
		TaxpayerPIN: taxpayerPIN,
		Type:        req.Type,
		Description: req.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, taxpayerPIN string) ([]Application, error) {
	if taxpayerPIN == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByTaxpayer(ctx, taxpayerPIN)
}

func (s *Service) Get(ctx context.Context, id string) (Application, error) {
	if id == "" {
		return Application{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

// Transition moves an application to the next processing status.
// Approved and rejected are terminal.
func (s *Service) Transition(ctx context.Context, id string, next Status, note string) (Application, error) {
	if id == "" {
		return Application{}, ErrInvalidArgument
	}
	switch next {
	case StatusPending, StatusActionRequired, StatusApproved, StatusRejected:
	default:
		return Application{}, ErrInvalidArgument
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if current.Status == StatusApproved || current.Status == StatusRejected {
		return Application{}, ErrClosed
	}
	return s.repo.UpdateStatus(ctx, id, next, note, s.clock().UTC())
}
