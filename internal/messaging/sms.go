package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"primus_backend/platform/config"
	"primus_backend/platform/logger"
	"primus_backend/platform/phone"
)

// SMSSender delivers automation messages through an HTTP SMS gateway.
type SMSSender struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

type smsRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewSMSSender creates an SMS gateway client. Returns nil when no gateway is
// configured.
func NewSMSSender(cfg config.SMSConfig, log *logger.Logger) *SMSSender {
	if !cfg.IsSMSEnabled() {
		return nil
	}
	return &SMSSender{
		baseURL: strings.TrimRight(cfg.GetSMSGatewayURL(), "/"),
		apiKey:  cfg.GetSMSGatewayKey(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// SendSMS delivers a text message to the given phone number.
func (s *SMSSender) SendSMS(ctx context.Context, phoneNumber, message string) error {
	normalized := phone.NormalizeE164(phoneNumber)

	body, err := json.Marshal(smsRequest{Phone: normalized, Message: message})
	if err != nil {
		return fmt.Errorf("marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	s.log.Info("sms sent", "phone", normalized)
	return nil
}
