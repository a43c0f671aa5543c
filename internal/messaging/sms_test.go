package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"primus_backend/platform/logger"
)

type smsTestConfig struct {
	url string
	key string
}

func (c smsTestConfig) GetSMSGatewayURL() string { return c.url }
func (c smsTestConfig) GetSMSGatewayKey() string { return c.key }
func (c smsTestConfig) IsSMSEnabled() bool       { return c.url != "" }

func TestSMSSenderPostsNormalizedNumber(t *testing.T) {
	var got smsRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewSMSSender(smsTestConfig{url: srv.URL + "/", key: "secret"}, logger.New("test"))
	if err := s.SendSMS(context.Background(), "(555) 123-4567", "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Phone != "+15551234567" {
		t.Errorf("phone should be E.164 normalized, got %q", got.Phone)
	}
	if got.Message != "hello" {
		t.Errorf("message: got %q", got.Message)
	}
	if auth != "Bearer secret" {
		t.Errorf("authorization: got %q", auth)
	}
}

func TestSMSSenderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid recipient", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	s := NewSMSSender(smsTestConfig{url: srv.URL}, logger.New("test"))
	if err := s.SendSMS(context.Background(), "+15551234567", "x"); err == nil {
		t.Fatal("expected gateway error")
	}
}

func TestNewSMSSenderDisabled(t *testing.T) {
	if s := NewSMSSender(smsTestConfig{}, logger.New("test")); s != nil {
		t.Fatal("no gateway URL should produce a nil sender")
	}
}
