// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"primus_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadCreated is published when a new lead is created through intake.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Source         string    `json:"source,omitempty"`
	HasAddress     bool      `json:"hasAddress"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadReplied is published when an inbound message from a lead is recorded.
type LeadReplied struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Channel        string    `json:"channel"`
}

func (e LeadReplied) EventName() string { return "leads.lead.replied" }

// SolarAnalyzed is published when a site analysis finishes for a lead.
type SolarAnalyzed struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	SiteSuitability string    `json:"siteSuitability"`
}

func (e SolarAnalyzed) EventName() string { return "leads.solar.analyzed" }
