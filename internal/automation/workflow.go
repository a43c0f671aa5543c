// Package automation implements the workflow engine that reacts to lead
// lifecycle triggers: it evaluates tenant-configured workflows against a lead,
// optionally enriches the lead with solar site data, renders the configured
// message template, and dispatches the message over the configured channel.
package automation

import (
	"time"

	"primus_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Triggers workflows can subscribe to.
const (
	TriggerLeadCreated   = "lead.created"
	TriggerLeadReplied   = "lead.replied"
	TriggerSolarAnalyzed = "solar.analyzed"
	TriggerCronDaily     = "cron.daily"
)

// Channel is the outbound message channel for a workflow.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Workflow is a tenant-scoped configured automation rule. The engine treats
// workflows as read-only; they are created and edited elsewhere.
type Workflow struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Trigger        string
	Enabled        bool
	Template       string
	Config         WorkflowConfig
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WorkflowConfig is the JSON configuration blob attached to a workflow.
type WorkflowConfig struct {
	Channel      Channel     `json:"channel,omitempty"`
	DelaySeconds int         `json:"delay,omitempty"`
	Conditions   *Conditions `json:"conditions,omitempty"`
	Actions      Actions     `json:"actions,omitempty"`
}

// Conditions is an optional predicate set. Every declared predicate must hold
// (logical AND); an absent predicate means that dimension is not checked.
type Conditions struct {
	MinScore          *int                     `json:"minScore,omitempty"`
	MaxScore          *int                     `json:"maxScore,omitempty"`
	IntentIn          []string                 `json:"intentIn,omitempty"`
	StageIn           []string                 `json:"stageIn,omitempty"`
	SiteSuitabilityIn []domain.SiteSuitability `json:"siteSuitabilityIn,omitempty"`
	SolarEnriched     *bool                    `json:"solarEnriched,omitempty"`
}

// Actions configures side effects a workflow may perform before sending.
type Actions struct {
	// EnrichSolar requests solar site enrichment before the message is rendered.
	EnrichSolar bool `json:"enrichSolar,omitempty"`
	// NotifyOnViable is accepted from configuration but currently has no effect.
	NotifyOnViable bool `json:"notifyOnViable,omitempty"`
}

// EffectiveChannel returns the configured channel, defaulting to email.
func (c WorkflowConfig) EffectiveChannel() Channel {
	if c.Channel == ChannelSMS {
		return ChannelSMS
	}
	return ChannelEmail
}

// Delay returns the configured execution delay as a duration.
func (c WorkflowConfig) Delay() time.Duration {
	if c.DelaySeconds <= 0 {
		return 0
	}
	return time.Duration(c.DelaySeconds) * time.Second
}
