package applications

import "time"

// Application is a taxpayer service request handled by KRA back office
// (PIN rectification, TCC application, business registration, ...).
type Application struct {
	ID          string `json:"id" db:"id"`
	TaxpayerPIN string `json:"taxpayer_pin" db:"taxpayer_pin"`

	Type        string `json:"type" db:"type"`
	Description string `json:"description" db:"description"`

	Status Status `json:"status" db:"status"`
	// StatusNote explains an action_required or rejected status to the citizen.
	StatusNote string `json:"status_note,omitempty" db:"status_note"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending        Status = "pending"
	StatusActionRequired Status = "action_required"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)
