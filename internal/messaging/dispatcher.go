// Package messaging delivers rendered automation messages to leads over the
// configured outbound channels.
package messaging

import (
	"context"
	"fmt"

	"primus_backend/internal/automation"
	"primus_backend/internal/leads/domain"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
)

const defaultEmailSubject = "Update from Primus Home Pro"

// EmailDeliverer sends an email message.
type EmailDeliverer interface {
	SendEmail(ctx context.Context, toEmail, subject, body string) error
}

// SMSDeliverer sends a text message.
type SMSDeliverer interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// Dispatcher routes an automation message to the channel's deliverer. Either
// deliverer may be nil when that channel is not configured.
type Dispatcher struct {
	email   EmailDeliverer
	sms     SMSDeliverer
	subject string
	log     *logger.Logger
}

func NewDispatcher(email EmailDeliverer, sms SMSDeliverer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, subject: defaultEmailSubject, log: log}
}

// Send delivers the message to the lead over the requested channel.
func (d *Dispatcher) Send(ctx context.Context, lead *domain.Lead, channel automation.Channel, body string) error {
	switch channel {
	case automation.ChannelEmail:
		if d.email == nil {
			return apperr.Unavailable("email delivery is not configured")
		}
		if !lead.HasEmail() {
			return apperr.Validation("lead has no email address")
		}
		return d.email.SendEmail(ctx, *lead.Email, d.subject, body)
	case automation.ChannelSMS:
		if d.sms == nil {
			return apperr.Unavailable("sms delivery is not configured")
		}
		if !lead.HasPhone() {
			return apperr.Validation("lead has no phone number")
		}
		return d.sms.SendSMS(ctx, *lead.Phone, body)
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
}
