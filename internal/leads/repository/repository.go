package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"primus_backend/internal/leads/domain"
	"primus_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// recentEventLimit bounds the analysis window loaded with a lead.
const recentEventLimit = 5

// Repository provides database operations for leads and their events
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Stage == "" {
		lead.Stage = domain.StageNew
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	query := `
		INSERT INTO PRM_leads (
			id, organization_id, name, email, phone, address, source, stage,
			intent, score, sentiment, solar_enriched, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE, $12, $12)`

	if _, err := r.pool.Exec(ctx, query,
		lead.ID, lead.OrganizationID, lead.Name, lead.Email, lead.Phone, lead.Address,
		lead.Source, lead.Stage, lead.Intent, lead.Score, lead.Sentiment, now,
	); err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	return nil
}

const leadColumns = `
	id, organization_id, name, email, phone, address, source, stage,
	intent, score, sentiment,
	site_suitability, max_panels_count, max_sunshine_hours_year,
	annual_kwh_production, roof_pitch, carbon_offset_kg,
	solar_enriched, solar_enriched_at, created_at, updated_at`

// GetByID fetches a single lead.
func (r *Repository) GetByID(ctx context.Context, leadID uuid.UUID) (*domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM PRM_leads WHERE id = $1`, leadID)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// GetWithRecentEvents fetches a lead together with its most recent events,
// newest first.
func (r *Repository) GetWithRecentEvents(ctx context.Context, leadID uuid.UUID) (*domain.Lead, []domain.LeadEvent, error) {
	lead, err := r.GetByID(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, content, metadata, created_at
		FROM PRM_lead_events
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, leadID, recentEventLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list lead events: %w", err)
	}
	defer rows.Close()

	var events []domain.LeadEvent
	for rows.Next() {
		var (
			ev           domain.LeadEvent
			metadataJSON []byte
		)
		if err := rows.Scan(&ev.ID, &ev.LeadID, &ev.Type, &ev.Content, &metadataJSON, &ev.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("failed to scan lead event: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &ev.Metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to decode event metadata: %w", err)
			}
		}
		events = append(events, ev)
	}
	return lead, events, rows.Err()
}

// CreateEvent appends an event to a lead's timeline.
func (r *Repository) CreateEvent(ctx context.Context, event *domain.LeadEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now()

	var metadataJSON []byte
	if event.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
	}

	if _, err := r.pool.Exec(ctx, `
		INSERT INTO PRM_lead_events (id, lead_id, type, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.LeadID, event.Type, event.Content, metadataJSON, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert lead event: %w", err)
	}
	return nil
}

// UpdateAnalysis writes the latest message analysis onto the lead.
func (r *Repository) UpdateAnalysis(ctx context.Context, leadID uuid.UUID, intent string, score int, sentiment string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE PRM_leads
		SET intent = $2, score = $3, sentiment = $4, updated_at = NOW()
		WHERE id = $1`, leadID, intent, score, sentiment)
	if err != nil {
		return fmt.Errorf("failed to update lead analysis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// UpdateStage moves a lead to a new pipeline stage.
func (r *Repository) UpdateStage(ctx context.Context, orgID, leadID uuid.UUID, stage string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE PRM_leads SET stage = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2`, leadID, orgID, stage)
	if err != nil {
		return fmt.Errorf("failed to update lead stage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// UpdateSolarEnrichment writes a successful site analysis onto the lead.
func (r *Repository) UpdateSolarEnrichment(ctx context.Context, leadID uuid.UUID, update domain.SolarEnrichmentUpdate) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE PRM_leads SET
			site_suitability = $2,
			max_panels_count = $3,
			max_sunshine_hours_year = $4,
			annual_kwh_production = $5,
			roof_pitch = $6,
			carbon_offset_kg = $7,
			solar_enriched = TRUE,
			solar_enriched_at = $8,
			updated_at = NOW()
		WHERE id = $1`,
		leadID, update.SiteSuitability, update.MaxPanelsCount, update.MaxSunshineHoursYear,
		update.AnnualKwhProduction, update.RoofPitch, update.CarbonOffsetKg, update.EnrichedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update solar enrichment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// MarkEnrichmentFailed records a failed site analysis: the lead classifies as
// NOT_VIABLE but stays un-enriched so the failure is distinguishable from a
// real negative analysis.
func (r *Repository) MarkEnrichmentFailed(ctx context.Context, leadID uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE PRM_leads SET
			site_suitability = $2,
			solar_enriched = FALSE,
			updated_at = NOW()
		WHERE id = $1`, leadID, domain.SuitabilityNotViable)
	if err != nil {
		return fmt.Errorf("failed to mark enrichment failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// CreateSiteSurvey stores the detailed result of one site analysis.
func (r *Repository) CreateSiteSurvey(ctx context.Context, survey *domain.SiteSurvey) error {
	if survey.ID == uuid.Nil {
		survey.ID = uuid.New()
	}
	survey.CreatedAt = time.Now()

	query := `
		INSERT INTO PRM_site_surveys (
			id, lead_id, latitude, longitude, imagery_date, imagery_quality,
			roof_segment_count, total_roof_area_sqm, usable_roof_area_sqm,
			azimuth_degrees, system_size_kw, panel_capacity_w, recommended_panels,
			estimated_cost_usd, estimated_savings_year, payback_years,
			building_insights_json, module_layout_json, financial_analysis_json,
			api_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	if _, err := r.pool.Exec(ctx, query,
		survey.ID, survey.LeadID, survey.Latitude, survey.Longitude, survey.ImageryDate,
		survey.ImageryQuality, survey.RoofSegmentCount, survey.TotalRoofAreaSqM,
		survey.UsableRoofAreaSqM, survey.AzimuthDegrees, survey.SystemSizeKW,
		survey.PanelCapacityW, survey.RecommendedPanels, survey.EstimatedCostUSD,
		survey.EstimatedSavingsYear, survey.PaybackYears,
		survey.BuildingInsightsJSON, survey.ModuleLayoutJSON, survey.FinancialAnalysisJSON,
		survey.APIVersion, survey.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert site survey: %w", err)
	}
	return nil
}

// ListIDsForDailySweep returns leads still in an open stage, for the daily
// cron trigger.
func (r *Repository) ListIDsForDailySweep(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM PRM_leads
		WHERE stage NOT IN ($1, $2)
		ORDER BY created_at ASC`, domain.StageWon, domain.StageLost)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads for sweep: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lead id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUnenrichedWithAddress returns leads that have an address but no solar
// analysis yet. Used by the backfill tool.
func (r *Repository) ListUnenrichedWithAddress(ctx context.Context, limit int) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM PRM_leads
		WHERE address IS NOT NULL AND address <> ''
		  AND solar_enriched = FALSE AND site_suitability IS NULL
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unenriched leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var lead domain.Lead
	if err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Name, &lead.Email, &lead.Phone,
		&lead.Address, &lead.Source, &lead.Stage,
		&lead.Intent, &lead.Score, &lead.Sentiment,
		&lead.SiteSuitability, &lead.MaxPanelsCount, &lead.MaxSunshineHoursYear,
		&lead.AnnualKwhProduction, &lead.RoofPitch, &lead.CarbonOffsetKg,
		&lead.SolarEnriched, &lead.SolarEnrichedAt, &lead.CreatedAt, &lead.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
