package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SiteSurvey is the detailed record of one solar site analysis. A lead keeps
// only the headline numbers; the survey preserves the full API payload for
// later proposal work.
type SiteSurvey struct {
	ID                    uuid.UUID
	LeadID                uuid.UUID
	Latitude              float64
	Longitude             float64
	ImageryDate           *time.Time
	ImageryQuality        string
	RoofSegmentCount      int
	TotalRoofAreaSqM      *float64
	UsableRoofAreaSqM     *float64
	AzimuthDegrees        *float64
	SystemSizeKW          float64
	PanelCapacityW        int
	RecommendedPanels     int
	EstimatedCostUSD      *float64
	EstimatedSavingsYear  *float64
	PaybackYears          *float64
	BuildingInsightsJSON  json.RawMessage
	ModuleLayoutJSON      json.RawMessage
	FinancialAnalysisJSON json.RawMessage
	APIVersion            string
	CreatedAt             time.Time
}

// SolarEnrichmentUpdate carries the lead-level fields written after a
// successful site analysis.
type SolarEnrichmentUpdate struct {
	SiteSuitability      SiteSuitability
	MaxPanelsCount       int
	MaxSunshineHoursYear float64
	AnnualKwhProduction  float64
	RoofPitch            *float64
	CarbonOffsetKg       float64
	EnrichedAt           time.Time
}
