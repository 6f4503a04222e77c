package voicerequests

import (
	"context"
	"errors"
	"time"

	"gavalink/internal/audit"
	"gavalink/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("voicerequests: not found")
	ErrInvalidArgument = errors.New("voicerequests: invalid argument")
	ErrAlreadyDecided  = errors.New("voicerequests: request already decided")
)

// Repository is the persistence contract for voice agent requests.
type Repository interface {
	Insert(ctx context.Context, r VoiceRequest) error
	Get(ctx context.Context, id string) (VoiceRequest, error)
	// List returns requests ordered by created_at descending.
	List(ctx context.Context, status Status) ([]VoiceRequest, error)
	UpdateDecision(ctx context.Context, id string, status Status, officerNotes string, updatedAt time.Time) (VoiceRequest, error)
}

// Notifier broadcasts change events to any subscribed dashboard.
// Publishing is best-effort; a failed publish never fails the operation.
type Notifier interface {
	Publish(ctx context.Context, e ChangeEvent) error
}

// Service owns the voice agent request moderation flow: citizens (through the
// voice assistant) create requests, officers approve or reject them.
type Service struct {
	repo     Repository
	notifier Notifier
	audit    *audit.Service
	clock    func() time.Time
}

func NewService(repo Repository, notifier Notifier, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, notifier: notifier, audit: auditSvc, clock: time.Now}
}

type CreateRequest struct {
	UserID      string   `json:"user_id"`
	RequestType string   `json:"request_type"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority,omitempty"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (VoiceRequest, error) {
	if req.UserID == "" || req.RequestType == "" || req.Description == "" {
		return VoiceRequest{}, ErrInvalidArgument
	}
	priority := req.Priority
	switch priority {
	case "":
		priority = PriorityNormal
	case PriorityLow, PriorityNormal, PriorityHigh:
	default:
		return VoiceRequest{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	r := VoiceRequest{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		RequestType: req.RequestType,
		Description: req.Description,
		Status:      StatusPending,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return VoiceRequest{}, err
	}

	s.publish(ctx, ChangeEvent{RequestID: r.ID, Kind: "created", Status: r.Status})
	return r, nil
}

func (s *Service) List(ctx context.Context, status Status) ([]VoiceRequest, error) {
	switch status {
	case "", StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, status)
}

func (s *Service) Get(ctx context.Context, id string) (VoiceRequest, error) {
	if id == "" {
		return VoiceRequest{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, id)
}

type Decision struct {
	Approve      bool   `json:"approve"`
	OfficerNotes string `json:"officer_notes,omitempty"`
}

// Decide approves or rejects a pending request. The deciding officer's
// identity is recorded in the audit trail, never on the request itself.
func (s *Service) Decide(ctx context.Context, id, officerID, officerRole string, d Decision) (VoiceRequest, error) {
	if id == "" || officerID == "" {
		return VoiceRequest{}, ErrInvalidArgument
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return VoiceRequest{}, err
	}
	if current.Status != StatusPending {
		return VoiceRequest{}, ErrAlreadyDecided
	}

	status := StatusRejected
	if d.Approve {
		status = StatusApproved
	}

	updated, err := s.repo.UpdateDecision(ctx, id, status, d.OfficerNotes, s.clock().UTC())
	if err != nil {
		return VoiceRequest{}, err
	}

	if s.audit != nil {
		if aerr := s.audit.LogDecision(ctx, officerID, officerRole, "voice_request", id, string(status), d.OfficerNotes); aerr != nil {
			logger.From(ctx).Warn("audit append failed", "err", aerr)
		}
	}

	s.publish(ctx, ChangeEvent{RequestID: updated.ID, Kind: "decided", Status: updated.Status})
	return updated, nil
}

func (s *Service) publish(ctx context.Context, e ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, e); err != nil {
		logger.From(ctx).Warn("voice request notify failed", "err", err, "request_id", e.RequestID)
	}
}
