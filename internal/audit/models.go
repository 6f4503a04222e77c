package audit

import "time"

// Event is an immutable, append-only audit record of an officer action.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor capture is best-effort; do not block critical flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: trigger to prevent UPDATE/DELETE.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated officer causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// TargetKind/TargetID identify the record acted on
	// (voice_request, document, broadcast, ...).
	TargetKind string `json:"target_kind,omitempty" db:"target_kind"`
	TargetID   string `json:"target_id,omitempty" db:"target_id"`

	// Outcome is a short machine-friendly result (approved, rejected, stamped).
	Outcome string `json:"outcome,omitempty" db:"outcome"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeDecision  EventType = "moderation_decision"
	EventTypeStamp     EventType = "document_stamp"
	EventTypeBroadcast EventType = "broadcast_sent"
)
