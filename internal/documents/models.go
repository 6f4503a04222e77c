package documents

import "time"

// Document is uploaded citizen paperwork awaiting officer certification.
// Only metadata is stored here; file bytes live in object storage keyed by ID.
type Document struct {
	ID          string `json:"id" db:"id"`
	TaxpayerPIN string `json:"taxpayer_pin" db:"taxpayer_pin"`

	Name string `json:"name" db:"name"`
	// Type is the document category (TCC, PIN Cert, Letter).
	Type string `json:"type" db:"type"`

	Status Status `json:"status" db:"status"`

	// StampType and StampSerial are set when an officer certifies the document.
	StampType   string `json:"stamp_type,omitempty" db:"stamp_type"`
	StampSerial string `json:"stamp_serial,omitempty" db:"stamp_serial"`

	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
	StampedAt  time.Time `json:"stamped_at,omitempty" db:"stamped_at"`
}

type Status string

const (
	StatusPending Status = "pending"
	StatusStamped Status = "stamped"
)
