// Package handler exposes the lead HTTP endpoints.
package handler

import (
	"context"
	"net/http"

	"primus_backend/internal/automation"
	"primus_backend/internal/leads/domain"
	"primus_backend/internal/leads/service"
	"primus_backend/internal/leads/transport"
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

// LeadStore is the repository surface the handler needs beyond the service.
type LeadStore interface {
	GetWithRecentEvents(ctx context.Context, leadID uuid.UUID) (*domain.Lead, []domain.LeadEvent, error)
	UpdateStage(ctx context.Context, orgID, leadID uuid.UUID, stage string) error
}

// Handler handles HTTP requests for leads and their automations.
type Handler struct {
	svc          *service.Service
	store        LeadStore
	engine       *automation.Engine
	val          *validator.Validator
	defaultOrgID uuid.UUID
	log          *logger.Logger
}

// New creates the lead handler.
func New(svc *service.Service, store LeadStore, engine *automation.Engine, val *validator.Validator, defaultOrgID uuid.UUID, log *logger.Logger) *Handler {
	return &Handler{svc: svc, store: store, engine: engine, val: val, defaultOrgID: defaultOrgID, log: log}
}

// Intake handles the public lead intake form. It is rate limited at the
// router level.
func (h *Handler) Intake(c *gin.Context) {
	var req transport.IntakeLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Intake(c.Request.Context(), service.IntakeInput{
		OrganizationID: h.defaultOrgID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Source:         req.Source,
		Message:        req.Message,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToLeadResponse(lead))
}

// RecordMessage records an inbound reply from a lead and fires the reply
// automations.
func (h *Handler) RecordMessage(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	event, err := h.svc.RecordInbound(c.Request.Context(), service.InboundInput{
		LeadID:  leadID,
		Channel: req.Channel,
		Body:    req.Body,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToEventResponse(event))
}

// GetLead returns a lead with its most recent timeline events.
func (h *Handler) GetLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, events, err := h.store.GetWithRecentEvents(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	eventResponses := make([]transport.EventResponse, 0, len(events))
	for i := range events {
		eventResponses = append(eventResponses, transport.ToEventResponse(&events[i]))
	}

	httpkit.OK(c, gin.H{
		"lead":   transport.ToLeadResponse(lead),
		"events": eventResponses,
	})
}

// UpdateStage moves a lead through the pipeline. Protected endpoint.
func (h *Handler) UpdateStage(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.store.UpdateStage(c.Request.Context(), h.orgScope(c), leadID, req.Stage); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"id": leadID, "stage": req.Stage})
}

// RunAutomations manually fires a trigger for a lead. Protected endpoint.
func (h *Handler) RunAutomations(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TriggerAutomationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.engine.Run(c.Request.Context(), leadID, req.Trigger); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": "completed"})
}

// orgScope resolves the caller's organization from the access token, falling
// back to the configured default for tokens without a tenant claim.
func (h *Handler) orgScope(c *gin.Context) uuid.UUID {
	if orgID, ok := httpkit.GetTenantID(c); ok {
		return orgID
	}
	return h.defaultOrgID
}
