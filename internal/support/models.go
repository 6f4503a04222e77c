package support

import "time"

// Ticket is a citizen support request.
type Ticket struct {
	ID          string `json:"id" db:"id"`
	TaxpayerPIN string `json:"taxpayer_pin" db:"taxpayer_pin"`

	// Category groups tickets for routing (returns, payments, pin, technical, other).
	Category string `json:"category" db:"category"`
	Subject  string `json:"subject" db:"subject"`
	Message  string `json:"message" db:"message"`

	Status Status `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)
