package returns

import "time"

// TaxReturn is a filed citizen tax return. NIL returns are the common case:
// a declaration of zero taxable income for the period.
type TaxReturn struct {
	ID          string `json:"id" db:"id"`
	TaxpayerPIN string `json:"taxpayer_pin" db:"taxpayer_pin"`

	Type   ReturnType `json:"type" db:"type"`
	Period Period     `json:"period" db:"period"`

	// IncomeSource is the declared source category (employment, business, none).
	IncomeSource string `json:"income_source" db:"income_source"`

	// AmountMinor is tax due in minor units (cents). Always zero for NIL returns.
	AmountMinor int64 `json:"amount_minor" db:"amount_minor"`

	Status  Status    `json:"status" db:"status"`
	FiledAt time.Time `json:"filed_at" db:"filed_at"`
}

type ReturnType string

const (
	TypeNil    ReturnType = "nil"
	TypeAnnual ReturnType = "annual"
)

type Status string

const (
	StatusFiled      Status = "filed"
	StatusProcessing Status = "processing"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
)

// Period identifies the tax period. Month is 0 for annual returns.
type Period struct {
	Year  int `json:"year" db:"period_year"`
	Month int `json:"month,omitempty" db:"period_month"`
}

func (p Period) valid(typ ReturnType) bool {
	if p.Year < 2000 || p.Year > 2100 {
		return false
	}
	if typ == TypeAnnual {
		return p.Month == 0
	}
	return p.Month >= 1 && p.Month <= 12
}
