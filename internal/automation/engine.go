package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"primus_backend/internal/leads/domain"
	"primus_backend/platform/apperr"
	"primus_backend/platform/logger"

	"github.com/google/uuid"
)

// maxChainDepth bounds trigger chaining: a sweep started by an external
// trigger may dispatch at most one nested solar.analyzed sweep. This keeps
// enrichment-triggered workflows from re-entering the engine indefinitely.
const maxChainDepth = 1

// LeadStore is the lead persistence surface the engine needs.
type LeadStore interface {
	GetWithRecentEvents(ctx context.Context, leadID uuid.UUID) (*domain.Lead, []domain.LeadEvent, error)
	CreateEvent(ctx context.Context, event *domain.LeadEvent) error
}

// WorkflowStore loads workflow configuration.
type WorkflowStore interface {
	ListEnabledByTrigger(ctx context.Context, orgID uuid.UUID, trigger string) ([]Workflow, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Workflow, error)
}

// SolarEnricher performs solar site enrichment for a lead address.
type SolarEnricher interface {
	Enrich(ctx context.Context, leadID uuid.UUID, address string) error
	Enabled() bool
}

// Sender dispatches a rendered message to a lead over a channel.
type Sender interface {
	Send(ctx context.Context, lead *domain.Lead, channel Channel, body string) error
}

// Scheduler enqueues a single workflow execution for later processing.
type Scheduler interface {
	EnqueueWorkflowRun(ctx context.Context, leadID, workflowID uuid.UUID, trigger string, delay time.Duration) error
}

// Engine evaluates and executes automation workflows for lead triggers.
// SolarEnricher and Scheduler are optional; a nil scheduler means delayed
// workflows run immediately.
type Engine struct {
	leads     LeadStore
	workflows WorkflowStore
	solar     SolarEnricher
	sender    Sender
	scheduler Scheduler
	agentName string
	log       *logger.Logger
}

func NewEngine(leads LeadStore, workflows WorkflowStore, solar SolarEnricher, sender Sender, scheduler Scheduler, agentName string, log *logger.Logger) *Engine {
	return &Engine{
		leads:     leads,
		workflows: workflows,
		solar:     solar,
		sender:    sender,
		scheduler: scheduler,
		agentName: agentName,
		log:       log,
	}
}

// Run executes all enabled workflows subscribed to the trigger against the
// lead. A missing lead is a no-op. Failures in one workflow never block the
// rest; the first error encountered is returned after the sweep completes.
func (e *Engine) Run(ctx context.Context, leadID uuid.UUID, trigger string) error {
	return e.run(ctx, leadID, trigger, 0)
}

// RunWorkflow executes a single workflow against a lead. It is the entry
// point for delayed executions: conditions are re-evaluated against the
// lead's current state, and a workflow disabled since enqueue is skipped.
func (e *Engine) RunWorkflow(ctx context.Context, leadID, workflowID uuid.UUID, trigger string) error {
	lead, events, err := e.leads.GetWithRecentEvents(ctx, leadID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			e.log.Debug("lead gone before delayed workflow ran", "lead_id", leadID.String())
			return nil
		}
		return fmt.Errorf("load lead %s: %w", leadID, err)
	}

	wf, err := e.workflows.GetByID(ctx, workflowID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			e.log.Debug("workflow gone before delayed run", "workflow_id", workflowID.String())
			return nil
		}
		return fmt.Errorf("load workflow %s: %w", workflowID, err)
	}
	if !wf.Enabled {
		e.log.AutomationSkipped(wf.Name, "disabled since enqueue", leadID.String())
		return nil
	}

	analysis := domain.ResolveAnalysis(*lead, events)
	return e.execute(ctx, wf, lead, analysis, trigger, 0, true)
}

func (e *Engine) run(ctx context.Context, leadID uuid.UUID, trigger string, depth int) error {
	e.log.Debug("running automations", "trigger", trigger, "lead_id", leadID.String(), "depth", depth)

	lead, events, err := e.leads.GetWithRecentEvents(ctx, leadID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			e.log.Debug("lead not found for automation run", "lead_id", leadID.String())
			return nil
		}
		return fmt.Errorf("load lead %s: %w", leadID, err)
	}

	workflows, err := e.workflows.ListEnabledByTrigger(ctx, lead.OrganizationID, trigger)
	if err != nil {
		return fmt.Errorf("list workflows for trigger %s: %w", trigger, err)
	}
	if len(workflows) == 0 {
		return nil
	}

	analysis := domain.ResolveAnalysis(*lead, events)

	var errs []error
	for i := range workflows {
		wf := &workflows[i]
		if err := e.execute(ctx, wf, lead, analysis, trigger, depth, false); err != nil {
			e.log.Error("workflow execution failed",
				"workflow", wf.Name, "lead_id", lead.ID.String(), "error", err.Error())
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// execute runs one workflow end to end. When immediate is false and the
// workflow configures a delay, execution is handed to the scheduler instead.
func (e *Engine) execute(ctx context.Context, wf *Workflow, lead *domain.Lead, analysis *domain.AnalysisSnapshot, trigger string, depth int, immediate bool) error {
	if !immediate && wf.Config.Delay() > 0 {
		if e.scheduler == nil {
			e.log.Debug("no scheduler configured, ignoring workflow delay", "workflow", wf.Name)
		} else {
			err := e.scheduler.EnqueueWorkflowRun(ctx, lead.ID, wf.ID, trigger, wf.Config.Delay())
			if err == nil {
				e.log.Debug("workflow deferred",
					"workflow", wf.Name, "lead_id", lead.ID.String(), "delay", wf.Config.Delay().String())
				return nil
			}
			// Degrade to immediate execution rather than dropping the workflow.
			e.log.Error("workflow enqueue failed, executing immediately",
				"workflow", wf.Name, "error", err.Error())
		}
	}

	if !EvaluateConditions(wf.Config.Conditions, lead, analysis) {
		e.log.AutomationSkipped(wf.Name, "conditions not met", lead.ID.String())
		return nil
	}

	if wf.Config.Actions.EnrichSolar && lead.HasAddress() && !lead.SolarEnriched && e.solar != nil && e.solar.Enabled() {
		if err := e.solar.Enrich(ctx, lead.ID, *lead.Address); err != nil {
			e.log.EnrichmentFailed(lead.ID.String(), *lead.Address, err)
		} else {
			// Reload in place so the rendered template and the remaining
			// workflows in this sweep all see the enrichment results.
			fresh, _, err := e.leads.GetWithRecentEvents(ctx, lead.ID)
			if err == nil {
				*lead = *fresh
			}
			if depth < maxChainDepth {
				if err := e.run(ctx, lead.ID, TriggerSolarAnalyzed, depth+1); err != nil {
					e.log.Error("solar.analyzed chain failed", "lead_id", lead.ID.String(), "error", err.Error())
				}
			}
		}
	}

	if wf.Config.Actions.NotifyOnViable {
		// Parsed for forward compatibility; no internal notification channel
		// exists yet.
		e.log.Debug("notifyOnViable is not implemented, ignoring", "workflow", wf.Name)
	}

	message := RenderTemplate(wf.Template, TemplateVars(lead, e.agentName))
	channel := wf.Config.EffectiveChannel()

	switch channel {
	case ChannelEmail:
		if !lead.HasEmail() {
			e.log.AutomationSkipped(wf.Name, "no email on file", lead.ID.String())
			return nil
		}
	case ChannelSMS:
		if !lead.HasPhone() {
			e.log.AutomationSkipped(wf.Name, "no phone on file", lead.ID.String())
			return nil
		}
	}

	if err := e.sender.Send(ctx, lead, channel, message); err != nil {
		return fmt.Errorf("send %s for workflow %q: %w", channel, wf.Name, err)
	}

	e.log.AutomationExecuted(wf.Name, trigger, string(channel), lead.ID.String())

	event := &domain.LeadEvent{
		LeadID:  lead.ID,
		Type:    domain.EventNoteAdded,
		Content: fmt.Sprintf("Automation %q executed", wf.Name),
		Metadata: map[string]any{
			"automationId": wf.ID.String(),
			"trigger":      trigger,
			"channel":      string(channel),
		},
	}
	if err := e.leads.CreateEvent(ctx, event); err != nil {
		// The message already went out; a missing audit entry is not fatal.
		e.log.DatabaseError("create automation event", err)
	}
	return nil
}
