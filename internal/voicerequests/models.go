package voicerequests

import "time"

// VoiceRequest is a citizen request captured by the voice assistant and queued
// for officer review.
//
// Invariants:
// - Status transitions: pending -> approved|rejected. No other transitions.
// - OfficerNotes may only be written by the deciding officer.
type VoiceRequest struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	RequestType string `json:"request_type" db:"request_type"`
	Description string `json:"description" db:"description"`

	Status   Status   `json:"status" db:"status"`
	Priority Priority `json:"priority" db:"priority"`

	OfficerNotes string `json:"officer_notes,omitempty" db:"officer_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ChangeEvent is broadcast whenever a request is created or decided, so
// mounted officer dashboards can refresh live.
type ChangeEvent struct {
	RequestID string `json:"request_id"`
	Kind      string `json:"kind"` // created | decided
	Status    Status `json:"status"`
}
