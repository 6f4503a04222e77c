package payments

import "time"

// Payment is a tax payment initiated by a citizen. The only live channel is
// an M-Pesa STK push; bank payments arrive as already-settled records.
type Payment struct {
	ID          string `json:"id" db:"id"`
	TaxpayerPIN string `json:"taxpayer_pin" db:"taxpayer_pin"`

	// Type is the tax head being paid (income_tax, vat, penalty, withholding).
	Type string `json:"type" db:"type"`

	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	Currency    string `json:"currency" db:"currency"`

	Method Method `json:"method" db:"method"`
	// Phone is the M-Pesa number the STK push was sent to.
	Phone string `json:"phone,omitempty" db:"phone"`

	Status Status `json:"status" db:"status"`
	// Receipt is the settlement reference, set when the payment completes.
	Receipt string `json:"receipt,omitempty" db:"receipt"`

	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Method string

const (
	MethodMpesa Method = "mpesa"
	MethodBank  Method = "bank"
)

type Status string

const (
	// StatusPushed means the STK push was sent and we await the PIN entry.
	StatusPushed    Status = "pushed"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)
