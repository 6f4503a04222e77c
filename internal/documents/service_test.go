package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gavalink/internal/audit"
)

const testPIN = "A123456789Z"

func newTestService() (*Service, *audit.MemoryRepo) {
	auditRepo := audit.NewMemoryRepo()
	svc := NewService(NewMemoryRepo(), audit.NewService(auditRepo))
	return svc, auditRepo
}

func TestService_UploadAndList(t *testing.T) {
	svc, _ := newTestService()

	d, err := svc.Upload(context.Background(), testPIN, UploadRequest{
		Name: "Tax Clearance Certificate - A001234567X.pdf",
		Type: "TCC",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Status != StatusPending {
		t.Fatalf("expected pending, got %s", d.Status)
	}

	docs, err := svc.List(context.Background(), testPIN)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != d.ID {
		t.Fatalf("expected the uploaded document, got %+v", docs)
	}
}

func TestService_StampOnceAndAudit(t *testing.T) {
	svc, auditRepo := newTestService()

	d, err := svc.Upload(context.Background(), testPIN, UploadRequest{Name: "pin.pdf", Type: "PIN Cert"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	stamped, err := svc.Stamp(context.Background(), d.ID, "officer-1", "officer", "official")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if stamped.Status != StatusStamped {
		t.Fatalf("expected stamped, got %s", stamped.Status)
	}
	if !strings.HasPrefix(stamped.StampSerial, "KRA-") {
		t.Fatalf("expected serial, got %q", stamped.StampSerial)
	}

	if _, err := svc.Stamp(context.Background(), d.ID, "officer-2", "officer", "official"); !errors.Is(err, ErrAlreadyStamped) {
		t.Fatalf("expected ErrAlreadyStamped, got %v", err)
	}

	evs := auditRepo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected one audit event, got %d", len(evs))
	}
	if evs[0].Type != audit.EventTypeStamp || evs[0].Message != stamped.StampSerial {
		t.Fatalf("unexpected audit event: %+v", evs[0])
	}
}

func TestService_StampAllPending(t *testing.T) {
	svc, auditRepo := newTestService()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := svc.Upload(context.Background(), testPIN, UploadRequest{Name: name, Type: "Letter"}); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}

	stamped, err := svc.StampAllPending(context.Background(), "officer-1", "officer", "received")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(stamped) != 3 {
		t.Fatalf("expected 3 stamped, got %d", len(stamped))
	}

	pending, err := svc.ListPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty queue, got %d", len(pending))
	}
	if len(auditRepo.Events()) != 3 {
		t.Fatalf("expected 3 audit events")
	}
}

func TestService_Verify(t *testing.T) {
	svc, _ := newTestService()

	d, err := svc.Upload(context.Background(), testPIN, UploadRequest{Name: "letter.pdf", Type: "Letter"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if ok, err := svc.Verify(context.Background(), d.ID, "KRA-2026-abc123"); err != nil || ok {
		t.Fatalf("expected unstamped document to fail verification")
	}

	stamped, err := svc.Stamp(context.Background(), d.ID, "officer-1", "officer", "official")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if ok, err := svc.Verify(context.Background(), d.ID, stamped.StampSerial); err != nil || !ok {
		t.Fatalf("expected verification to pass, ok=%v err=%v", ok, err)
	}
	if ok, _ := svc.Verify(context.Background(), d.ID, "KRA-2026-wrong1"); ok {
		t.Fatalf("expected wrong serial to fail")
	}
}
