package workerproc

import (
	"context"
	"errors"
	"testing"

	"sow-backend/internal/bootstrap"
	"sow-backend/internal/queue"
)

type stubProcessor struct {
	ids []string
	err error
}

func (s *stubProcessor) ProcessAudit(ctx context.Context, auditID string) error {
	_ = ctx
	s.ids = append(s.ids, auditID)
	return s.err
}

func TestParseMessage(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		_, _, err := ParseMessage("   ")
		var emptyErr ErrEmptyBody
		if !errors.As(err, &emptyErr) {
			t.Fatalf("expected ErrEmptyBody, got %v", err)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		_, meta, err := ParseMessage("{bad-json")
		var decodeErr ErrDecode
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected ErrDecode, got %v", err)
		}
		if meta.BodyLen == 0 || meta.BodySHA == "" {
			t.Errorf("expected populated meta, got %+v", meta)
		}
	})

	t.Run("missing audit id", func(t *testing.T) {
		body, _ := queue.EncodeMessage(queue.Message{RequestID: "req-9"})
		_, _, err := ParseMessage(string(body))
		var missingErr ErrMissingAuditID
		if !errors.As(err, &missingErr) {
			t.Fatalf("expected ErrMissingAuditID, got %v", err)
		}
		if missingErr.RequestID != "req-9" {
			t.Errorf("expected request id carried through, got %q", missingErr.RequestID)
		}
	})

	t.Run("valid", func(t *testing.T) {
		body, _ := queue.EncodeMessage(queue.Message{AuditID: "audit-1", RequestID: "req-1"})
		msg, _, err := ParseMessage(string(body))
		if err != nil {
			t.Fatalf("ParseMessage: %v", err)
		}
		if msg.AuditID != "audit-1" {
			t.Errorf("unexpected message: %+v", msg)
		}
	})
}

func TestHandleMessageProcessesAudit(t *testing.T) {
	proc := &stubProcessor{}
	app := &bootstrap.App{AuditProcessor: proc}

	body, _ := queue.EncodeMessage(queue.Message{AuditID: "audit-2", RequestID: "req-2"})
	if err := HandleMessage(context.Background(), app, string(body)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "audit-2" {
		t.Fatalf("expected audit-2 processed, got %v", proc.ids)
	}
}

func TestHandleMessageReusesParsedMessage(t *testing.T) {
	proc := &stubProcessor{}
	app := &bootstrap.App{AuditProcessor: proc}

	ctx := WithParsedMessage(context.Background(), queue.Message{AuditID: "audit-3"})
	if err := HandleMessage(ctx, app, "ignored"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(proc.ids) != 1 || proc.ids[0] != "audit-3" {
		t.Fatalf("expected parsed message reused, got %v", proc.ids)
	}
}

func TestHandleMessageWrapsProcessError(t *testing.T) {
	proc := &stubProcessor{err: errors.New("boom")}
	app := &bootstrap.App{AuditProcessor: proc}

	body, _ := queue.EncodeMessage(queue.Message{AuditID: "audit-4", RequestID: "req-4"})
	err := HandleMessage(context.Background(), app, string(body))
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
	if procErr.AuditID != "audit-4" || procErr.RequestID != "req-4" {
		t.Errorf("unexpected error detail: %+v", procErr)
	}
}

func TestHandleMessageWithoutProcessor(t *testing.T) {
	if err := HandleMessage(context.Background(), nil, "{}"); err == nil {
		t.Fatal("expected error for nil app")
	}
	if err := HandleMessage(context.Background(), &bootstrap.App{}, "{}"); err == nil {
		t.Fatal("expected error for missing processor")
	}
}
