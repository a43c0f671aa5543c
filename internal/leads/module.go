// Package leads provides the lead intake and timeline bounded context.
// This file defines the module that encapsulates all leads setup and route
// registration.
package leads

import (
	"context"

	"primus_backend/internal/automation"
	"primus_backend/internal/events"
	apphttp "primus_backend/internal/http"
	"primus_backend/internal/leads/analyzer"
	"primus_backend/internal/leads/handler"
	"primus_backend/internal/leads/repository"
	"primus_backend/internal/leads/service"
	"primus_backend/platform/config"
	"primus_backend/platform/logger"
	"primus_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo    *repository.Repository
	service *service.Service
	handler *handler.Handler
	scorer  service.MessageAnalyzer

	val          *validator.Validator
	defaultOrgID uuid.UUID
	log          *logger.Logger
}

// ModuleConfig combines the config interfaces the leads module needs.
type ModuleConfig interface {
	config.AnalyzerConfig
	config.AutomationConfig
}

// NewModule creates and initializes the leads module with all its
// dependencies. The automation engine is attached afterwards with SetEngine
// because it depends on this module's repository.
func NewModule(ctx context.Context, pool *pgxpool.Pool, val *validator.Validator, cfg ModuleConfig, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	m := &Module{
		repo: repo,
		val:  val,
		log:  log,
	}

	// The analyzer is optional; a typed-nil pointer must not end up inside
	// the MessageAnalyzer interface.
	scorer, err := analyzer.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if scorer != nil {
		m.scorer = scorer
	}

	m.defaultOrgID, err = uuid.Parse(cfg.GetDefaultOrgID())
	if err != nil {
		return nil, err
	}

	return m, nil
}

// SetEngine attaches the automation engine, builds the service and handler,
// and subscribes the automation triggers to the event bus. Must be called
// before RegisterRoutes.
func (m *Module) SetEngine(engine *automation.Engine, eventBus events.Bus) {
	m.service = service.New(m.repo, eventBus, m.scorer, m.log)
	m.handler = handler.New(m.service, m.repo, engine, m.val, m.defaultOrgID, m.log)

	subscribeTrigger := func(eventName, trigger string, leadID func(events.Event) (uuid.UUID, bool)) {
		eventBus.Subscribe(eventName, events.HandlerFunc(func(ctx context.Context, event events.Event) error {
			id, ok := leadID(event)
			if !ok {
				return nil
			}
			go func() {
				if err := engine.Run(context.Background(), id, trigger); err != nil {
					m.log.Error("automation run failed", "error", err, "lead_id", id.String(), "trigger", trigger)
				}
			}()
			return nil
		}))
	}

	subscribeTrigger(events.LeadCreated{}.EventName(), automation.TriggerLeadCreated, func(event events.Event) (uuid.UUID, bool) {
		e, ok := event.(events.LeadCreated)
		return e.LeadID, ok
	})
	subscribeTrigger(events.LeadReplied{}.EventName(), automation.TriggerLeadReplied, func(event events.Event) (uuid.UUID, bool) {
		e, ok := event.(events.LeadReplied)
		return e.LeadID, ok
	})
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Repository returns the leads repository for cross-module wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public intake, behind the stricter rate limiter.
	public := ctx.V1.Group("/leads")
	public.Use(ctx.IntakeRateLimiter.RateLimit())
	public.POST("", m.handler.Intake)
	public.POST("/:id/messages", m.handler.RecordMessage)

	protected := ctx.Protected.Group("/leads")
	protected.GET("/:id", m.handler.GetLead)
	protected.PATCH("/:id/stage", m.handler.UpdateStage)
	protected.POST("/:id/automations/run", m.handler.RunAutomations)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
