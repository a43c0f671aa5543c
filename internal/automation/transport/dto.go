// Package transport defines the workflow management wire types.
package transport

import (
	"time"

	"primus_backend/internal/automation"

	"github.com/google/uuid"
)

// UpdateWorkflowRequest toggles a workflow on or off.
type UpdateWorkflowRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// WorkflowResponse is the API representation of an automation workflow.
type WorkflowResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Trigger   string    `json:"trigger"`
	Enabled   bool      `json:"enabled"`
	Channel   string    `json:"channel"`
	Template  string    `json:"template"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToWorkflowResponse converts a domain workflow to its API representation.
func ToWorkflowResponse(wf *automation.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:        wf.ID,
		Name:      wf.Name,
		Trigger:   wf.Trigger,
		Enabled:   wf.Enabled,
		Channel:   string(wf.Config.EffectiveChannel()),
		Template:  wf.Template,
		CreatedAt: wf.CreatedAt,
		UpdatedAt: wf.UpdatedAt,
	}
}
