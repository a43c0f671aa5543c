// This file defines the workflow management module. It lives alongside the
// handler because the automation package root holds the engine, which the
// workflow repository depends on.
package handler

import (
	apphttp "primus_backend/internal/http"
	"primus_backend/platform/logger"
	"primus_backend/platform/validator"

	"github.com/google/uuid"
)

// Module is the workflow management module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the workflow management module.
func NewModule(workflows WorkflowStore, val *validator.Validator, defaultOrgID uuid.UUID, log *logger.Logger) *Module {
	return &Module{handler: New(workflows, val, defaultOrgID, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "automation"
}

// RegisterRoutes mounts the workflow management routes. All of them require
// authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	protected := ctx.Protected.Group("/automations")
	protected.GET("", m.handler.ListWorkflows)
	protected.PATCH("/:id", m.handler.SetEnabled)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
