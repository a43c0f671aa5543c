package scheduler

import (
	"context"
	"fmt"

	"primus_backend/internal/automation"
	"primus_backend/platform/config"
	"primus_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// dailySweepCron fires the daily workflow sweep at 09:00 server time, when
// follow-up messages are most likely to be read.
const dailySweepCron = "0 9 * * *"

// SweepLeadLister returns the leads the daily cron trigger should visit.
type SweepLeadLister interface {
	ListIDsForDailySweep(ctx context.Context) ([]uuid.UUID, error)
}

// Worker consumes automation tasks: deferred workflow executions and the
// daily cron sweep.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	engine    *automation.Engine
	leads     SweepLeadLister
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, engine *automation.Engine, leads SweepLeadLister, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, nil)
	if _, err := periodic.Register(dailySweepCron, NewDailySweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register daily sweep: %w", err)
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		engine:    engine,
		leads:     leads,
		log:       log,
	}

	mux.HandleFunc(TaskWorkflowRun, w.handleWorkflowRun)
	mux.HandleFunc(TaskDailySweep, w.handleDailySweep)

	return w, nil
}

func (w *Worker) handleWorkflowRun(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseWorkflowRunPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}
	workflowID, err := uuid.Parse(payload.WorkflowID)
	if err != nil {
		return err
	}

	return w.engine.RunWorkflow(ctx, leadID, workflowID, payload.Trigger)
}

// handleDailySweep runs cron.daily workflows against every active lead. A
// failure on one lead is logged and does not abort the sweep.
func (w *Worker) handleDailySweep(ctx context.Context, _ *asynq.Task) error {
	leadIDs, err := w.leads.ListIDsForDailySweep(ctx)
	if err != nil {
		return fmt.Errorf("list leads for daily sweep: %w", err)
	}

	w.log.Info("daily automation sweep started", "leads", len(leadIDs))
	for _, leadID := range leadIDs {
		if err := w.engine.Run(ctx, leadID, automation.TriggerCronDaily); err != nil {
			w.log.Error("daily sweep failed for lead", "lead_id", leadID.String(), "error", err.Error())
		}
	}
	return nil
}

// Run starts the task server and the periodic scheduler. It blocks until the
// context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	go func() {
		if err := w.scheduler.Run(); err != nil {
			w.log.Error("periodic scheduler stopped", "error", err)
		}
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
