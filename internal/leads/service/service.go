// Package service implements lead intake and inbound message handling.
package service

import (
	"context"
	"strings"

	"primus_backend/internal/events"
	"primus_backend/internal/leads/domain"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"
	"primus_backend/platform/phone"

	"github.com/google/uuid"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, leadID uuid.UUID) (*domain.Lead, error)
	CreateEvent(ctx context.Context, event *domain.LeadEvent) error
	UpdateAnalysis(ctx context.Context, leadID uuid.UUID, intent string, score int, sentiment string) error
}

// MessageAnalyzer scores an inbound message. May be nil when not configured.
type MessageAnalyzer interface {
	Analyze(ctx context.Context, message string) (*domain.AnalysisSnapshot, error)
}

// Service handles lead intake and inbound replies.
type Service struct {
	repo     Repository
	bus      events.Bus
	analyzer MessageAnalyzer
	log      *logger.Logger
}

func New(repo Repository, bus events.Bus, analyzer MessageAnalyzer, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, analyzer: analyzer, log: log}
}

// IntakeInput is the normalized form submission for a new lead.
type IntakeInput struct {
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Phone          string
	Address        string
	Source         string
	Message        string
}

// Intake creates a lead from a form submission, records the FORM_SUBMIT event
// and publishes LeadCreated so automations fire.
func (s *Service) Intake(ctx context.Context, in IntakeInput) (*domain.Lead, error) {
	if in.Email == "" && in.Phone == "" {
		return nil, apperr.Validation("lead needs an email address or phone number")
	}

	lead := &domain.Lead{
		OrganizationID: in.OrganizationID,
		Name:           strings.TrimSpace(in.Name),
		Stage:          domain.StageNew,
	}
	if in.Email != "" {
		email := strings.ToLower(strings.TrimSpace(in.Email))
		lead.Email = &email
	}
	if in.Phone != "" {
		normalized := phone.NormalizeE164(in.Phone)
		lead.Phone = &normalized
	}
	if addr := strings.TrimSpace(in.Address); addr != "" {
		lead.Address = &addr
	}
	if in.Source != "" {
		lead.Source = &in.Source
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	event := &domain.LeadEvent{
		LeadID:  lead.ID,
		Type:    domain.EventFormSubmit,
		Content: in.Message,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.log.DatabaseError("create form submit event", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		Source:         in.Source,
		HasAddress:     lead.HasAddress(),
	})

	s.log.Info("lead created", "lead_id", lead.ID.String(), "source", in.Source)
	return lead, nil
}

// InboundInput is a message received from an existing lead.
type InboundInput struct {
	LeadID  uuid.UUID
	Channel string // "email" or "sms"
	Body    string
}

// RecordInbound stores an inbound reply, scores it when the analyzer is
// configured, and publishes LeadReplied. Analyzer failures degrade to an
// unscored event rather than dropping the message.
func (s *Service) RecordInbound(ctx context.Context, in InboundInput) (*domain.LeadEvent, error) {
	lead, err := s.repo.GetByID(ctx, in.LeadID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperr.Validation("message body is required")
	}

	eventType := domain.EventEmailReceived
	if in.Channel == "sms" {
		eventType = domain.EventSMSReceived
	}

	event := &domain.LeadEvent{
		LeadID:  lead.ID,
		Type:    eventType,
		Content: in.Body,
	}

	if s.analyzer != nil {
		if snapshot, err := s.analyzer.Analyze(ctx, in.Body); err != nil {
			s.log.Warn("message analysis failed", "lead_id", lead.ID.String(), "error", err.Error())
		} else if snapshot != nil {
			event.Metadata = map[string]any{
				"intent":    snapshot.Intent,
				"score":     snapshot.Score,
				"sentiment": snapshot.Sentiment,
			}
			if err := s.repo.UpdateAnalysis(ctx, lead.ID, snapshot.Intent, snapshot.Score, snapshot.Sentiment); err != nil {
				s.log.DatabaseError("update lead analysis", err)
			}
		}
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadReplied{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		Channel:        in.Channel,
	})

	return event, nil
}
