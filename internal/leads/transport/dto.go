package transport

import (
	"time"

	"primus_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// IntakeLeadRequest is the public lead intake form submission.
type IntakeLeadRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"omitempty,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,min=7,max=32"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Source  string `json:"source" validate:"omitempty,max=100"`
	Message string `json:"message" validate:"omitempty,max=5000"`
}

// InboundMessageRequest records a reply received from a lead.
type InboundMessageRequest struct {
	Channel string `json:"channel" validate:"required,oneof=email sms"`
	Body    string `json:"body" validate:"required,min=1,max=10000"`
}

// UpdateStageRequest moves a lead to a new pipeline stage.
type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=New Contacted Qualified Won Lost"`
}

// TriggerAutomationsRequest manually fires a trigger for a lead.
type TriggerAutomationsRequest struct {
	Trigger string `json:"trigger" validate:"required,oneof=lead.created lead.replied solar.analyzed cron.daily"`
}

// LeadResponse is the API shape of a lead.
type LeadResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	Address             *string    `json:"address,omitempty"`
	Source              *string    `json:"source,omitempty"`
	Stage               string     `json:"stage"`
	Intent              *string    `json:"intent,omitempty"`
	Score               *int       `json:"score,omitempty"`
	Sentiment           *string    `json:"sentiment,omitempty"`
	SiteSuitability     *string    `json:"siteSuitability,omitempty"`
	MaxPanelsCount      *int       `json:"maxPanelsCount,omitempty"`
	AnnualKwhProduction *float64   `json:"annualKwhProduction,omitempty"`
	SolarEnriched       bool       `json:"solarEnriched"`
	SolarEnrichedAt     *time.Time `json:"solarEnrichedAt,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// EventResponse is the API shape of a lead timeline event.
type EventResponse struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ToLeadResponse maps a domain lead to its API shape.
func ToLeadResponse(lead *domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                  lead.ID,
		Name:                lead.Name,
		Email:               lead.Email,
		Phone:               lead.Phone,
		Address:             lead.Address,
		Source:              lead.Source,
		Stage:               lead.Stage,
		Intent:              lead.Intent,
		Score:               lead.Score,
		Sentiment:           lead.Sentiment,
		MaxPanelsCount:      lead.MaxPanelsCount,
		AnnualKwhProduction: lead.AnnualKwhProduction,
		SolarEnriched:       lead.SolarEnriched,
		SolarEnrichedAt:     lead.SolarEnrichedAt,
		CreatedAt:           lead.CreatedAt,
	}
	if lead.SiteSuitability != nil {
		s := string(*lead.SiteSuitability)
		resp.SiteSuitability = &s
	}
	return resp
}

// ToEventResponse maps a domain event to its API shape.
func ToEventResponse(ev *domain.LeadEvent) EventResponse {
	return EventResponse{
		ID:        ev.ID,
		Type:      ev.Type,
		Content:   ev.Content,
		Metadata:  ev.Metadata,
		CreatedAt: ev.CreatedAt,
	}
}
