// Package service implements solar site enrichment for leads.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"primus_backend/internal/events"
	"primus_backend/internal/leads/domain"
	"primus_backend/internal/solar/client"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"

	"github.com/google/uuid"
)

// Panel defaults used when computing system size from a panel count.
const panelCapacityW = 400

// Suitability thresholds. Both the panel count and the yearly sunshine hours
// must clear a tier's minimum for the site to classify into it.
const (
	viableMinPanels           = 10
	viableMinSunshineHours    = 1200
	challengingMinPanels      = 5
	challengingMinSunshineHours = 800
)

const minAddressLength = 5

// InsightsFetcher is the Solar API surface the service consumes.
type InsightsFetcher interface {
	Geocode(ctx context.Context, address string) (client.LatLng, error)
	FindClosestBuilding(ctx context.Context, location client.LatLng) (*client.BuildingInsights, error)
}

// LeadStore is the persistence surface enrichment writes through.
type LeadStore interface {
	UpdateSolarEnrichment(ctx context.Context, leadID uuid.UUID, update domain.SolarEnrichmentUpdate) error
	MarkEnrichmentFailed(ctx context.Context, leadID uuid.UUID) error
	CreateSiteSurvey(ctx context.Context, survey *domain.SiteSurvey) error
	CreateEvent(ctx context.Context, event *domain.LeadEvent) error
}

// Service runs solar site analysis for lead addresses and persists the
// results.
type Service struct {
	client  InsightsFetcher
	leads   LeadStore
	bus     events.Bus
	log     *logger.Logger
	enabled bool
}

// New creates a solar enrichment service. When enabled is false the engine
// skips enrichment entirely. The bus may be nil.
func New(client InsightsFetcher, leads LeadStore, bus events.Bus, enabled bool, log *logger.Logger) *Service {
	return &Service{client: client, leads: leads, bus: bus, log: log, enabled: enabled}
}

// Enabled reports whether the Solar API is configured.
func (s *Service) Enabled() bool {
	return s.enabled
}

// Enrich geocodes the address, fetches building insights and writes the
// analysis to the lead. Any failure marks the lead as analyzed-but-failed
// (NOT_VIABLE, not enriched) so workflows stop retrying it.
func (s *Service) Enrich(ctx context.Context, leadID uuid.UUID, address string) error {
	if len(strings.TrimSpace(address)) < minAddressLength {
		return s.fail(ctx, leadID, apperr.Validation("address too short for solar lookup"))
	}

	location, err := s.client.Geocode(ctx, address)
	if err != nil {
		return s.fail(ctx, leadID, fmt.Errorf("geocode address: %w", err))
	}

	insights, err := s.client.FindClosestBuilding(ctx, location)
	if err != nil {
		return s.fail(ctx, leadID, fmt.Errorf("fetch building insights: %w", err))
	}

	analysis := analyze(insights)

	update := domain.SolarEnrichmentUpdate{
		SiteSuitability:      analysis.suitability,
		MaxPanelsCount:       analysis.maxPanels,
		MaxSunshineHoursYear: analysis.sunshineHours,
		AnnualKwhProduction:  analysis.annualKwh,
		RoofPitch:            analysis.roofPitch,
		CarbonOffsetKg:       analysis.carbonOffsetKg,
		EnrichedAt:           time.Now(),
	}
	if err := s.leads.UpdateSolarEnrichment(ctx, leadID, update); err != nil {
		return fmt.Errorf("persist solar enrichment: %w", err)
	}

	if err := s.leads.CreateSiteSurvey(ctx, s.buildSurvey(leadID, insights, analysis)); err != nil {
		// The lead already carries the headline numbers; losing the detailed
		// survey is logged but does not fail the enrichment.
		s.log.DatabaseError("create site survey", err)
	}

	event := &domain.LeadEvent{
		LeadID: leadID,
		Type:   domain.EventSolarAnalysis,
		Content: fmt.Sprintf("Solar site analysis complete: %s. Max %d panels, %.1fkW system potential.",
			analysis.suitability, analysis.maxPanels, analysis.systemSizeKW),
		Metadata: map[string]any{
			"siteSuitability":   string(analysis.suitability),
			"maxPanelsCount":    analysis.maxPanels,
			"systemSizeKW":      analysis.systemSizeKW,
			"sunshineHoursYear": analysis.sunshineHours,
		},
	}
	if err := s.leads.CreateEvent(ctx, event); err != nil {
		s.log.DatabaseError("create solar analysis event", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.SolarAnalyzed{
			BaseEvent:       events.NewBaseEvent(),
			LeadID:          leadID,
			SiteSuitability: string(analysis.suitability),
		})
	}

	s.log.Info("solar enrichment complete",
		"lead_id", leadID.String(), "suitability", string(analysis.suitability), "max_panels", analysis.maxPanels)
	return nil
}

// fail records a failed analysis on the lead before returning the cause.
func (s *Service) fail(ctx context.Context, leadID uuid.UUID, cause error) error {
	if err := s.leads.MarkEnrichmentFailed(ctx, leadID); err != nil {
		s.log.DatabaseError("mark enrichment failed", err)
	}
	return cause
}

// siteAnalysis is the derived result of one building insights payload.
type siteAnalysis struct {
	suitability    domain.SiteSuitability
	maxPanels      int
	sunshineHours  float64
	annualKwh      float64
	systemSizeKW   float64
	roofPitch      *float64
	carbonOffsetKg float64
	bestConfig     *client.SolarPanelConfig
	financial      *client.FinancialAnalysis
}

func analyze(insights *client.BuildingInsights) siteAnalysis {
	potential := insights.SolarPotential

	a := siteAnalysis{
		maxPanels:     potential.MaxArrayPanelsCount,
		sunshineHours: potential.MaxSunshineHoursPerYear,
		suitability:   Classify(potential.MaxArrayPanelsCount, potential.MaxSunshineHoursPerYear),
	}

	// The config list is ordered by panel count; the last entry is the
	// maximum layout and is used as the recommendation.
	if n := len(potential.SolarPanelConfigs); n > 0 {
		a.bestConfig = &potential.SolarPanelConfigs[n-1]
		a.annualKwh = a.bestConfig.YearlyEnergyDcKwh
	}

	panels := a.maxPanels
	if a.bestConfig != nil && a.bestConfig.PanelsCount > 0 {
		panels = a.bestConfig.PanelsCount
	}
	a.systemSizeKW = SystemSizeKW(panels)

	if len(potential.RoofSegmentStats) > 0 {
		pitch := potential.RoofSegmentStats[0].PitchDegrees
		a.roofPitch = &pitch
	}

	a.carbonOffsetKg = a.annualKwh * potential.CarbonOffsetFactorKgPerMwh / 1000

	if len(potential.FinancialAnalyses) > 0 {
		a.financial = &potential.FinancialAnalyses[0]
	}
	return a
}

func (s *Service) buildSurvey(leadID uuid.UUID, insights *client.BuildingInsights, a siteAnalysis) *domain.SiteSurvey {
	survey := &domain.SiteSurvey{
		LeadID:           leadID,
		Latitude:         insights.Center.Latitude,
		Longitude:        insights.Center.Longitude,
		ImageryQuality:   insights.ImageryQuality,
		RoofSegmentCount: len(insights.SolarPotential.RoofSegmentStats),
		SystemSizeKW:     a.systemSizeKW,
		PanelCapacityW:   panelCapacityW,
		APIVersion:       "v1",
	}

	if d := insights.ImageryDate; d != nil {
		imageryDate := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		survey.ImageryDate = &imageryDate
	}
	if area := insights.SolarPotential.WholeRoofStats.AreaMeters2; area > 0 {
		survey.TotalRoofAreaSqM = &area
	}
	if area := insights.SolarPotential.MaxArrayAreaMeters2; area > 0 {
		survey.UsableRoofAreaSqM = &area
	}
	if len(insights.SolarPotential.RoofSegmentStats) > 0 {
		azimuth := insights.SolarPotential.RoofSegmentStats[0].AzimuthDegrees
		survey.AzimuthDegrees = &azimuth
	}

	survey.RecommendedPanels = a.maxPanels
	if a.bestConfig != nil && a.bestConfig.PanelsCount > 0 {
		survey.RecommendedPanels = a.bestConfig.PanelsCount
	}

	if a.financial != nil && a.financial.CashPurchaseSavings != nil {
		cash := a.financial.CashPurchaseSavings
		if v, ok := parseMoney(cash.Savings.SavingsYear1); ok {
			survey.EstimatedSavingsYear = &v
		}
		if v, ok := parseMoney(cash.OutOfPocketCost); ok {
			survey.EstimatedCostUSD = &v
		}
		if cash.PaybackYears > 0 {
			payback := cash.PaybackYears
			survey.PaybackYears = &payback
		}
	}

	if raw, err := json.Marshal(insights); err == nil {
		survey.BuildingInsightsJSON = raw
	}
	if a.bestConfig != nil {
		if raw, err := json.Marshal(a.bestConfig.RoofSegmentSummaries); err == nil {
			survey.ModuleLayoutJSON = raw
		}
	}
	if a.financial != nil {
		if raw, err := json.Marshal(a.financial); err == nil {
			survey.FinancialAnalysisJSON = raw
		}
	}

	return survey
}

// Classify maps panel capacity and sunshine exposure to a suitability tier.
func Classify(maxPanels int, sunshineHours float64) domain.SiteSuitability {
	if maxPanels >= viableMinPanels && sunshineHours >= viableMinSunshineHours {
		return domain.SuitabilityViable
	}
	if maxPanels >= challengingMinPanels && sunshineHours >= challengingMinSunshineHours {
		return domain.SuitabilityChallenging
	}
	return domain.SuitabilityNotViable
}

// SystemSizeKW converts a panel count to system capacity in kW.
func SystemSizeKW(panelCount int) float64 {
	return float64(panelCount*panelCapacityW) / 1000
}

func parseMoney(m client.Money) (float64, bool) {
	if m.Units == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m.Units, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
