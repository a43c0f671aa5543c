package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"primus_backend/internal/automation"
	"primus_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workflowNotFoundMsg = "workflow not found"

// Repository provides database operations for automation workflows
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new automation workflow repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListEnabledByTrigger returns the enabled workflows subscribed to a trigger,
// oldest first so execution order is stable.
func (r *Repository) ListEnabledByTrigger(ctx context.Context, orgID uuid.UUID, trigger string) ([]automation.Workflow, error) {
	query := `
		SELECT id, organization_id, name, trigger, enabled, template, config, created_at, updated_at
		FROM PRM_automation_workflows
		WHERE organization_id = $1 AND trigger = $2 AND enabled = TRUE
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, orgID, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []automation.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

// GetByID fetches a single workflow.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*automation.Workflow, error) {
	query := `
		SELECT id, organization_id, name, trigger, enabled, template, config, created_at, updated_at
		FROM PRM_automation_workflows
		WHERE id = $1`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get workflow: %w", err)
		}
		return nil, apperr.NotFound(workflowNotFoundMsg)
	}
	wf, err := scanWorkflow(rows)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// Upsert inserts a workflow or updates an existing one with the same name in
// the organization. Used by seeding and the management API.
func (r *Repository) Upsert(ctx context.Context, wf *automation.Workflow) error {
	configJSON, err := json.Marshal(wf.Config)
	if err != nil {
		return fmt.Errorf("failed to encode workflow config: %w", err)
	}

	now := time.Now()
	if wf.ID == uuid.Nil {
		wf.ID = uuid.New()
	}

	query := `
		INSERT INTO PRM_automation_workflows (
			id, organization_id, name, trigger, enabled, template, config, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (organization_id, name) DO UPDATE SET
			trigger = EXCLUDED.trigger,
			enabled = EXCLUDED.enabled,
			template = EXCLUDED.template,
			config = EXCLUDED.config,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`

	if err := r.pool.QueryRow(ctx, query,
		wf.ID, wf.OrganizationID, wf.Name, wf.Trigger, wf.Enabled, wf.Template, configJSON, now,
	).Scan(&wf.ID, &wf.CreatedAt); err != nil {
		return fmt.Errorf("failed to upsert workflow: %w", err)
	}
	wf.UpdatedAt = now
	return nil
}

// SetEnabled toggles a workflow without touching its configuration.
func (r *Repository) SetEnabled(ctx context.Context, orgID, id uuid.UUID, enabled bool) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE PRM_automation_workflows SET enabled = $3, updated_at = NOW() WHERE id = $1 AND organization_id = $2`,
		id, orgID, enabled)
	if err != nil {
		return fmt.Errorf("failed to toggle workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(workflowNotFoundMsg)
	}
	return nil
}

// ListByOrganization returns all workflows for an organization.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]automation.Workflow, error) {
	query := `
		SELECT id, organization_id, name, trigger, enabled, template, config, created_at, updated_at
		FROM PRM_automation_workflows
		WHERE organization_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []automation.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

func scanWorkflow(rows pgx.Rows) (automation.Workflow, error) {
	var (
		wf         automation.Workflow
		configJSON []byte
	)
	if err := rows.Scan(&wf.ID, &wf.OrganizationID, &wf.Name, &wf.Trigger, &wf.Enabled,
		&wf.Template, &configJSON, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wf, apperr.NotFound(workflowNotFoundMsg)
		}
		return wf, fmt.Errorf("failed to scan workflow: %w", err)
	}
	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &wf.Config); err != nil {
			return wf, fmt.Errorf("failed to decode workflow config: %w", err)
		}
	}
	return wf, nil
}
