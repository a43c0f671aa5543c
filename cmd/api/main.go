package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primus_backend/internal/automation"
	automationhandler "primus_backend/internal/automation/handler"
	automationrepo "primus_backend/internal/automation/repository"
	"primus_backend/internal/events"
	apphttp "primus_backend/internal/http"
	"primus_backend/internal/http/router"
	"primus_backend/internal/leads"
	"primus_backend/internal/messaging"
	"primus_backend/internal/scheduler"
	"primus_backend/internal/solar"
	"primus_backend/migrations"
	"primus_backend/platform/config"
	"primus_backend/platform/db"
	"primus_backend/platform/logger"
	"primus_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	workflowScheduler, closeScheduler := initWorkflowScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule, err := leads.NewModule(ctx, pool, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	solarModule := solar.NewModule(cfg, leadsModule.Repository(), eventBus, log)

	dispatcher := messaging.NewDispatcher(emailDeliverer(cfg), smsDeliverer(cfg, log), log)

	workflowRepo := automationrepo.New(pool)
	engine := automation.NewEngine(
		leadsModule.Repository(),
		workflowRepo,
		solarModule.Service(),
		dispatcher,
		workflowScheduler,
		cfg.GetAgentName(),
		log,
	)
	leadsModule.SetEngine(engine, eventBus)

	defaultOrgID, err := uuid.Parse(cfg.GetDefaultOrgID())
	if err != nil {
		panic("invalid DEFAULT_ORG_ID: " + err.Error())
	}
	automationModule := automationhandler.NewModule(workflowRepo, val, defaultOrgID, log)

	if path := cfg.GetWorkflowSeedPath(); path != "" {
		count, err := automation.SeedWorkflows(ctx, workflowRepo, defaultOrgID, path)
		if err != nil {
			log.Error("failed to seed workflows", "error", err, "path", path)
			panic("failed to seed workflows: " + err.Error())
		}
		log.Info("workflow seeds applied", "count", count, "path", path)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			automationModule,
		},
	}

	engineHTTP := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engineHTTP.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// emailDeliverer returns nil when SMTP is not configured so the dispatcher
// sees a truly nil interface.
func emailDeliverer(cfg config.EmailConfig) messaging.EmailDeliverer {
	if sender := messaging.NewEmailSender(cfg); sender != nil {
		return sender
	}
	return nil
}

func smsDeliverer(cfg config.SMSConfig, log *logger.Logger) messaging.SMSDeliverer {
	if sender := messaging.NewSMSSender(cfg, log); sender != nil {
		return sender
	}
	return nil
}

func initWorkflowScheduler(cfg config.SchedulerConfig, log *logger.Logger) (automation.Scheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; delayed workflows run immediately")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize workflow scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < attempts {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			log.Warn("retrying", "operation", name, "attempt", attempt, "delay", delay.String(), "error", lastErr.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, lastErr)
}
