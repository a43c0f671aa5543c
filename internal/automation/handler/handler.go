// Package handler exposes the workflow management HTTP endpoints.
package handler

import (
	"context"
	"net/http"

	"primus_backend/internal/automation"
	"primus_backend/internal/automation/transport"
	"primus_backend/platform/httpkit"
	"primus_backend/platform/logger"
	"primus_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "Invalid request"
	msgValidationFailed = "Validation failed"
)

// WorkflowStore is the repository surface the handler needs.
type WorkflowStore interface {
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]automation.Workflow, error)
	SetEnabled(ctx context.Context, orgID, id uuid.UUID, enabled bool) error
}

// Handler handles HTTP requests for workflow management.
type Handler struct {
	workflows    WorkflowStore
	val          *validator.Validator
	defaultOrgID uuid.UUID
	log          *logger.Logger
}

// New creates the workflow management handler.
func New(workflows WorkflowStore, val *validator.Validator, defaultOrgID uuid.UUID, log *logger.Logger) *Handler {
	return &Handler{workflows: workflows, val: val, defaultOrgID: defaultOrgID, log: log}
}

// ListWorkflows returns every workflow in the caller's organization.
func (h *Handler) ListWorkflows(c *gin.Context) {
	workflows, err := h.workflows.ListByOrganization(c.Request.Context(), h.orgScope(c))
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.WorkflowResponse, 0, len(workflows))
	for i := range workflows {
		responses = append(responses, transport.ToWorkflowResponse(&workflows[i]))
	}
	httpkit.OK(c, gin.H{"workflows": responses})
}

// SetEnabled toggles a workflow without touching its configuration.
func (h *Handler) SetEnabled(c *gin.Context) {
	workflowID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.workflows.SetEnabled(c.Request.Context(), h.orgScope(c), workflowID, *req.Enabled); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"id": workflowID, "enabled": *req.Enabled})
}

// orgScope resolves the caller's organization from the access token, falling
// back to the configured default for tokens without a tenant claim.
func (h *Handler) orgScope(c *gin.Context) uuid.UUID {
	if orgID, ok := httpkit.GetTenantID(c); ok {
		return orgID
	}
	return h.defaultOrgID
}
