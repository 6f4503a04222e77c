package analytics

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ReturnsSummary aggregates filing activity in a range.
type ReturnsSummary struct {
	TotalFiled int `json:"total_filed"`
	NilReturns int `json:"nil_returns"`
	Accepted   int `json:"accepted"`
	Rejected   int `json:"rejected"`
	Processing int `json:"processing"`
}

// PaymentsSummary aggregates settled and pending payment volumes.
type PaymentsSummary struct {
	TotalPayments int `json:"total_payments"`
	Completed     int `json:"completed"`
	Failed        int `json:"failed"`
	Pending       int `json:"pending"`

	// Amounts are in minor units (KES cents) and cover completed payments only.
	CompletedAmountMinor int64 `json:"completed_amount_minor"`
}

// SupportSummary aggregates ticket volumes and resolution.
type SupportSummary struct {
	TotalTickets int            `json:"total_tickets"`
	Open         int            `json:"open"`
	Resolved     int            `json:"resolved"`
	ByCategory   map[string]int `json:"by_category"`

	// AverageResolutionSeconds covers resolved and closed tickets.
	AverageResolutionSeconds int `json:"average_resolution_seconds"`
}

// Overview is the officer dashboard headline block.
type Overview struct {
	Returns  ReturnsSummary  `json:"returns"`
	Payments PaymentsSummary `json:"payments"`
	Support  SupportSummary  `json:"support"`
}
