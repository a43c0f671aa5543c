package messaging

import (
	"context"
	"testing"

	"primus_backend/internal/automation"
	"primus_backend/internal/leads/domain"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
)

type recordingEmail struct {
	to, subject, body string
	calls             int
}

func (r *recordingEmail) SendEmail(_ context.Context, to, subject, body string) error {
	r.calls++
	r.to, r.subject, r.body = to, subject, body
	return nil
}

type recordingSMS struct {
	phone, message string
	calls          int
}

func (r *recordingSMS) SendSMS(_ context.Context, phone, message string) error {
	r.calls++
	r.phone, r.message = phone, message
	return nil
}

func leadWithContact() *domain.Lead {
	email := "lead@example.com"
	phone := "+15551234567"
	return &domain.Lead{Name: "Sam", Email: &email, Phone: &phone}
}

func TestDispatcherRoutesEmail(t *testing.T) {
	email := &recordingEmail{}
	sms := &recordingSMS{}
	d := NewDispatcher(email, sms, logger.New("test"))

	if err := d.Send(context.Background(), leadWithContact(), automation.ChannelEmail, "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if email.calls != 1 || sms.calls != 0 {
		t.Fatal("email channel must route to the email deliverer only")
	}
	if email.to != "lead@example.com" || email.body != "hello" {
		t.Errorf("got to=%q body=%q", email.to, email.body)
	}
	if email.subject == "" {
		t.Error("email should carry a subject")
	}
}

func TestDispatcherRoutesSMS(t *testing.T) {
	sms := &recordingSMS{}
	d := NewDispatcher(&recordingEmail{}, sms, logger.New("test"))

	if err := d.Send(context.Background(), leadWithContact(), automation.ChannelSMS, "ping"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if sms.calls != 1 || sms.phone != "+15551234567" {
		t.Fatalf("sms not delivered: %+v", sms)
	}
}

func TestDispatcherUnconfiguredChannel(t *testing.T) {
	d := NewDispatcher(&recordingEmail{}, nil, logger.New("test"))

	err := d.Send(context.Background(), leadWithContact(), automation.ChannelSMS, "ping")
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestDispatcherMissingContact(t *testing.T) {
	d := NewDispatcher(&recordingEmail{}, &recordingSMS{}, logger.New("test"))

	err := d.Send(context.Background(), &domain.Lead{Name: "No Contact"}, automation.ChannelEmail, "x")
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
