package applications

import (
	"context"
	"errors"
	"testing"
)

const testPIN = "A123456789Z"

func TestService_SubmitAndList(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	a, err := svc.Submit(context.Background(), testPIN, SubmitRequest{
		Type:        "TCC Application",
		Description: "Tax Compliance Certificate for tender application",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Status != StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}

	apps, err := svc.List(context.Background(), testPIN)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(apps) != 1 || apps[0].ID != a.ID {
		t.Fatalf("expected the submitted application, got %+v", apps)
	}
}

func TestService_SubmitValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Submit(context.Background(), "", SubmitRequest{Type: "t", Description: "d"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), testPIN, SubmitRequest{Description: "d"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.Submit(context.Background(), testPIN, SubmitRequest{Type: "t"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestService_TransitionLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	a, err := svc.Submit(context.Background(), testPIN, SubmitRequest{
		Type:        "PIN Rectification",
		Description: "Correct name spelling",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	updated, err := svc.Transition(context.Background(), a.ID, StatusActionRequired, "Upload ID copy")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != StatusActionRequired || updated.StatusNote != "Upload ID copy" {
		t.Fatalf("unexpected state: %+v", updated)
	}

	updated, err = svc.Transition(context.Background(), a.ID, StatusApproved, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", updated.Status)
	}

	if _, err := svc.Transition(context.Background(), a.ID, StatusRejected, ""); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	if _, err := svc.Transition(context.Background(), a.ID, "archived", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}
