package returns

import (
	"context"
	"errors"
	"testing"
)

const testPIN = "A123456789Z"

func TestService_FileNilReturn(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	r, err := svc.File(context.Background(), testPIN, FileRequest{
		Type:         TypeNil,
		Period:       Period{Year: 2026, Month: 7},
		IncomeSource: "none",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if r.Status != StatusFiled {
		t.Fatalf("expected filed, got %s", r.Status)
	}
	if r.AmountMinor != 0 {
		t.Fatalf("expected zero amount for nil return")
	}
}

func TestService_FileValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	cases := []struct {
		name string
		pin  string
		req  FileRequest
	}{
		{"missing pin", "", FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 7}, IncomeSource: "none"}},
		{"missing income source", testPIN, FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 7}}},
		{"bad type", testPIN, FileRequest{Type: "quarterly", Period: Period{Year: 2026, Month: 7}, IncomeSource: "none"}},
		{"month on annual", testPIN, FileRequest{Type: TypeAnnual, Period: Period{Year: 2025, Month: 3}, IncomeSource: "business"}},
		{"missing month on nil", testPIN, FileRequest{Type: TypeNil, Period: Period{Year: 2026}, IncomeSource: "none"}},
		{"month out of range", testPIN, FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 13}, IncomeSource: "none"}},
		{"nonzero nil amount", testPIN, FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 7}, IncomeSource: "none", AmountMinor: 100}},
		{"negative amount", testPIN, FileRequest{Type: TypeAnnual, Period: Period{Year: 2025}, IncomeSource: "business", AmountMinor: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.File(context.Background(), tc.pin, tc.req); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestService_FileRejectsDuplicatePeriod(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	req := FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 7}, IncomeSource: "none"}
	if _, err := svc.File(context.Background(), testPIN, req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.File(context.Background(), testPIN, req); !errors.Is(err, ErrDuplicatePeriod) {
		t.Fatalf("expected ErrDuplicatePeriod, got %v", err)
	}

	// A different taxpayer can file the same period.
	if _, err := svc.File(context.Background(), "P987654321B", req); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestService_AdvanceTransitions(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	r, err := svc.File(context.Background(), testPIN, FileRequest{
		Type:         TypeAnnual,
		Period:       Period{Year: 2025},
		IncomeSource: "employment",
		AmountMinor:  1500000,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := svc.Advance(context.Background(), r.ID, StatusAccepted); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected filed->accepted to be rejected, got %v", err)
	}

	updated, err := svc.Advance(context.Background(), r.ID, StatusProcessing)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != StatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}

	updated, err = svc.Advance(context.Background(), r.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}

	if _, err := svc.Advance(context.Background(), r.ID, StatusRejected); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected accepted to be terminal, got %v", err)
	}
}

func TestService_ListScopedToTaxpayer(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.File(context.Background(), testPIN, FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 6}, IncomeSource: "none"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.File(context.Background(), "P987654321B", FileRequest{Type: TypeNil, Period: Period{Year: 2026, Month: 6}, IncomeSource: "none"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	got, err := svc.List(context.Background(), testPIN)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].TaxpayerPIN != testPIN {
		t.Fatalf("expected only the taxpayer's returns, got %+v", got)
	}
}
