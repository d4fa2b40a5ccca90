package notification

import (
	"context"
	"strings"
	"testing"
)

func newTestManager() (*Manager, *MockEmailSender, *MockSMSSender) {
	email := &MockEmailSender{}
	sms := &MockSMSSender{}
	return NewManager(email, sms, NewTemplateEngine()), email, sms
}

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("appointment-reminder", map[string]string{
		"patient_name": "Alice Dupont",
		"date":         "2026-03-02",
		"time":         "09:30",
		"doctor":       "Dr. Martin",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(subject, "Alice Dupont") {
		t.Errorf("subject not rendered: %s", subject)
	}
	if !strings.Contains(body, "2026-03-02") || !strings.Contains(body, "Dr. Martin") {
		t.Errorf("body not rendered: %s", body)
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	_, body, err := e.Render("recall-due", map[string]string{"patient_name": "Bob"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(body, "{{recall_type}}") {
		t.Errorf("expected unrendered placeholder to remain, got: %s", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_RegisterTemplate(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{
		ID:   "custom",
		Body: "Hello {{name}}",
		Type: TypeSMS,
	})
	_, body, err := e.Render("custom", map[string]string{"name": "Eve"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if body != "Hello Eve" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestManager_SendEmail(t *testing.T) {
	mgr, email, _ := newTestManager()
	n := &Notification{
		Type:      TypeEmail,
		Recipient: "alice@example.com",
		Subject:   "Hello",
		Body:      "Body",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if n.Status != "sent" {
		t.Errorf("expected status sent, got %s", n.Status)
	}
	if n.SentAt == nil {
		t.Error("expected SentAt to be set")
	}
	calls := email.Calls()
	if len(calls) != 1 || calls[0].To != "alice@example.com" {
		t.Errorf("unexpected email calls: %+v", calls)
	}
}

func TestManager_SendSMS(t *testing.T) {
	mgr, _, sms := newTestManager()
	n := &Notification{
		Type:      TypeSMS,
		Recipient: "+33600000001",
		Body:      "Reminder",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	calls := sms.Calls()
	if len(calls) != 1 || calls[0].Body != "Reminder" {
		t.Errorf("unexpected sms calls: %+v", calls)
	}
}

func TestManager_SendFailure(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "a@b.c", Body: "x"}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected send error")
	}
	if n.Status != "failed" {
		t.Errorf("expected status failed, got %s", n.Status)
	}
	if n.Error != "smtp down" {
		t.Errorf("expected error recorded, got %q", n.Error)
	}
}

func TestManager_SendFromTemplate(t *testing.T) {
	mgr, email, _ := newTestManager()
	n, err := mgr.SendFromTemplate(context.Background(), "recall-due", map[string]string{
		"patient_name": "Alice",
		"recall_type":  "routine checkup",
		"due_date":     "2026-09-15",
	}, "alice@example.com")
	if err != nil {
		t.Fatalf("SendFromTemplate() error: %v", err)
	}
	if n.Status != "sent" {
		t.Errorf("expected sent, got %s", n.Status)
	}
	calls := email.Calls()
	if len(calls) != 1 || !strings.Contains(calls[0].Body, "routine checkup") {
		t.Errorf("unexpected calls: %+v", calls)
	}
}

func TestManager_Retry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "a@b.c", Body: "x"}
	_ = mgr.Send(context.Background(), n)

	// Sender recovers
	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("Retry() error: %v", err)
	}

	got, err := mgr.Get(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Status != "sent" || got.Error != "" {
		t.Errorf("expected sent with no error, got %s / %q", got.Status, got.Error)
	}
}

func TestManager_RetryNonFailed(t *testing.T) {
	mgr, _, _ := newTestManager()
	n := &Notification{Type: TypeEmail, Recipient: "a@b.c", Body: "x"}
	_ = mgr.Send(context.Background(), n)

	if err := mgr.Retry(context.Background(), n.ID); err == nil {
		t.Error("expected error retrying a sent notification")
	}
}

func TestManager_Stats(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@b.c", Body: "x"})
	email.ShouldFail = true
	email.FailError = "down"
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "d@e.f", Body: "y"})

	stats := mgr.Stats(context.Background())
	if stats["sent"] != 1 || stats["failed"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
