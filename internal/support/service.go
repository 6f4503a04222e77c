package support

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("support: not found")
	ErrInvalidArgument = errors.New("support: invalid argument")
	ErrTicketClosed    = errors.New("support: ticket is closed")
)

// Repository is the persistence contract for support tickets.
type Repository interface {
	Insert(ctx context.Context, t Ticket) error
	Get(ctx context.Context, id string) (Ticket, error)
	// ListByTaxpayer returns the taxpayer's tickets, newest first.
	ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Ticket, error)
	// ListByStatus returns all tickets with the status, newest first.
	ListByStatus(ctx context.Context, status Status) ([]Ticket, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) (Ticket, error)
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

func (s *Service) Create(ctx context.Context, taxpayerPIN string, req CreateRequest) (Ticket, error) {
	if taxpayerPIN == "" || req.Category == "" || req.Subject == "" || req.Message == "" {
		return Ticket{}, ErrInvalidArgument
	}
	now := s.clock().UTC()
	t := Ticket{
		ID:          uuid.NewString(),
		TaxpayerPIN: taxpayerPIN,
		Category:    req.Category,
		Subject:     req.Subject,
		Message:     req.Message,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, taxpayerPIN string) ([]Ticket, error) {
	if taxpayerPIN == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByTaxpayer(ctx, taxpayerPIN)
}

// ListOpen returns the officer work queue.
func (s *Service) ListOpen(ctx context.Context) ([]Ticket, error) {
	return s.repo.ListByStatus(ctx, StatusOpen)
}

func (s *Service) Get(ctx context.Context, id string) (Ticket, error) {
	if id == "" {
		return Ticket{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves a ticket along open -> in_progress -> resolved -> closed.
// Closed tickets are immutable.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (Ticket, error) {
	if id == "" {
		return Ticket{}, ErrInvalidArgument
	}
	switch next {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
	default:
		return Ticket{}, ErrInvalidArgument
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	if current.Status == StatusClosed {
		return Ticket{}, ErrTicketClosed
	}
	return s.repo.UpdateStatus(ctx, id, next, s.clock().UTC())
}
