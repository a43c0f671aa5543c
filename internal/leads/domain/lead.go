// Package domain holds the lead bounded context's core types. No persistence
// or transport concerns live here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SiteSuitability is the three-tier classification of a property's viability
// for a solar installation.
type SiteSuitability string

const (
	SuitabilityViable      SiteSuitability = "VIABLE"
	SuitabilityChallenging SiteSuitability = "CHALLENGING"
	SuitabilityNotViable   SiteSuitability = "NOT_VIABLE"
)

// Lead lifecycle stages.
const (
	StageNew       = "New"
	StageContacted = "Contacted"
	StageQualified = "Qualified"
	StageWon       = "Won"
	StageLost      = "Lost"
)

// Lead is a prospective customer record. The automation engine reads a
// snapshot and writes back the solar enrichment subset; the rest of the
// record's lifecycle belongs to the management surface.
type Lead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          *string
	Phone          *string
	Address        *string
	Source         *string
	Stage          string

	// Most recent AI-derived signals, mirrored from analysis events.
	Intent    *string
	Score     *int
	Sentiment *string

	// Solar enrichment subset. SolarEnriched true implies SiteSuitability
	// and SolarEnrichedAt are both set.
	SiteSuitability      *SiteSuitability
	MaxPanelsCount       *int
	MaxSunshineHoursYear *float64
	AnnualKwhProduction  *float64
	RoofPitch            *float64
	CarbonOffsetKg       *float64
	SolarEnriched        bool
	SolarEnrichedAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEmail reports whether the lead can be reached over email.
func (l Lead) HasEmail() bool {
	return l.Email != nil && *l.Email != ""
}

// HasPhone reports whether the lead can be reached over SMS.
func (l Lead) HasPhone() bool {
	return l.Phone != nil && *l.Phone != ""
}

// HasAddress reports whether the lead carries an address usable for enrichment.
func (l Lead) HasAddress() bool {
	return l.Address != nil && *l.Address != ""
}

// LeadEvent types.
const (
	EventEmailReceived = "EMAIL_RECEIVED"
	EventSMSReceived   = "SMS_RECEIVED"
	EventFormSubmit    = "FORM_SUBMIT"
	EventSolarAnalysis = "SOLAR_ANALYSIS"
	EventNoteAdded     = "NOTE_ADDED"
)

// LeadEvent is an immutable append-only audit entry tied to a lead. Events are
// created by the engine or its collaborators and never mutated or deleted.
type LeadEvent struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Type      string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
}
