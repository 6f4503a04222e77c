package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only. Do not expose these records to citizens.
// Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}
	if e.ActorUserID == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogDecision records a moderation decision on a citizen-submitted record.
func (s *Service) LogDecision(ctx context.Context, officerID, officerRole, targetKind, targetID, outcome, message string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeDecision,
		ActorUserID: officerID,
		ActorRole:   officerRole,
		TargetKind:  targetKind,
		TargetID:    targetID,
		Outcome:     outcome,
		Message:     message,
	})
}

// LogStamp records an official document stamping.
func (s *Service) LogStamp(ctx context.Context, officerID, officerRole, documentID, serial string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeStamp,
		ActorUserID: officerID,
		ActorRole:   officerRole,
		TargetKind:  "document",
		TargetID:    documentID,
		Outcome:     "stamped",
		Message:     serial,
	})
}

// LogBroadcast records an officer broadcast.
func (s *Service) LogBroadcast(ctx context.Context, officerID, officerRole, broadcastID, audience string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeBroadcast,
		ActorUserID: officerID,
		ActorRole:   officerRole,
		TargetKind:  "broadcast",
		TargetID:    broadcastID,
		Outcome:     "sent",
		Message:     audience,
	})
}
