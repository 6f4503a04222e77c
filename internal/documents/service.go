package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gavalink/internal/audit"
	"gavalink/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("documents: not found")
	ErrInvalidArgument = errors.New("documents: invalid argument")
	ErrAlreadyStamped  = errors.New("documents: document already stamped")
)

// Repository is the persistence contract for document metadata.
type Repository interface {
	Insert(ctx context.Context, d Document) error
	Get(ctx context.Context, id string) (Document, error)
	// ListByTaxpayer returns the taxpayer's documents, newest first.
	ListByTaxpayer(ctx context.Context, taxpayerPIN string) ([]Document, error)
	// ListByStatus returns all documents with the status, newest first.
	ListByStatus(ctx context.Context, status Status) ([]Document, error)
	UpdateStamp(ctx context.Context, id, stampType, serial string, stampedAt time.Time) (Document, error)
}

// Service manages document uploads and officer stamping. Every stamp is
// recorded in the audit trail with its serial.
type Service struct {
	repo  Repository
	audit *audit.Service
	clock func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc, clock: time.Now}
}

type UploadRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (s *Service) Upload(ctx context.Context, taxpayerPIN string, req UploadRequest) (Document, error) {
	if taxpayerPIN == "" || req.Name == "" || req.Type == "" {
		return Document{}, ErrInvalidArgument
	}
	d := Document{
		ID:          uuid.NewString(),
		TaxpayerPIN: taxpayerPIN,
		Name:        req.Name,
		Type:        req.Type,
		Status:      StatusPending,
		UploadedAt:  s.clock().UTC(),
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, taxpayerPIN string) ([]Document, error) {
	if taxpayerPIN == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByTaxpayer(ctx, taxpayerPIN)
}

// ListPending returns the officer work queue.
func (s *Service) ListPending(ctx context.Context) ([]Document, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

// Stamp certifies a pending document with the given stamp type. The serial is
// generated here and is the verification reference printed on the document.
func (s *Service) Stamp(ctx context.Context, id, officerID, officerRole, stampType string) (Document, error) {
	if id == "" || officerID == "" || stampType == "" {
		return Document{}, ErrInvalidArgument
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Document{}, err
	}
	if current.Status != StatusPending {
		return Document{}, ErrAlreadyStamped
	}

	now := s.clock().UTC()
	serial := stampSerial(now)
	updated, err := s.repo.UpdateStamp(ctx, id, stampType, serial, now)
	if err != nil {
		return Document{}, err
	}

	if s.audit != nil {
		if aerr := s.audit.LogStamp(ctx, officerID, officerRole, id, serial); aerr != nil {
			logger.From(ctx).Warn("audit append failed", "err", aerr)
		}
	}
	return updated, nil
}

// StampAllPending applies one stamp type across the whole pending queue.
// Returns the documents stamped; a partial failure stops the sweep.
func (s *Service) StampAllPending(ctx context.Context, officerID, officerRole, stampType string) ([]Document, error) {
	if officerID == "" || stampType == "" {
		return nil, ErrInvalidArgument
	}
	pending, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}

	out := make([]Document, 0, len(pending))
	for _, d := range pending {
		stamped, err := s.Stamp(ctx, d.ID, officerID, officerRole, stampType)
		if err != nil {
			return out, err
		}
		out = append(out, stamped)
	}
	return out, nil
}

// Verify checks a stamp serial against a document.
func (s *Service) Verify(ctx context.Context, id, serial string) (bool, error) {
	if id == "" || serial == "" {
		return false, ErrInvalidArgument
	}
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return d.Status == StatusStamped && d.StampSerial == serial, nil
}

func stampSerial(at time.Time) string {
	short := uuid.NewString()[:6]
	return fmt.Sprintf("KRA-%d-%s", at.Year(), short)
}
