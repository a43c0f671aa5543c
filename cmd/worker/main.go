package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primus_backend/internal/automation"
	automationrepo "primus_backend/internal/automation/repository"
	"primus_backend/internal/events"
	leadsrepo "primus_backend/internal/leads/repository"
	"primus_backend/internal/messaging"
	"primus_backend/internal/scheduler"
	"primus_backend/internal/solar"
	"primus_backend/platform/config"
	"primus_backend/platform/db"
	"primus_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The worker consumes deferred workflow executions and runs the daily cron
// sweep. Migrations are owned by the API binary; the worker only connects.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting automation worker", "env", cfg.Env)

	if cfg.GetRedisURL() == "" {
		panic("REDIS_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	leadsRepo := leadsrepo.New(pool)
	solarModule := solar.NewModule(cfg, leadsRepo, eventBus, log)

	dispatcher := messaging.NewDispatcher(emailDeliverer(cfg), smsDeliverer(cfg, log), log)

	// Delayed workflows discovered during a sweep are re-enqueued through the
	// same client the API uses.
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer client.Close()

	engine := automation.NewEngine(
		leadsRepo,
		automationrepo.New(pool),
		solarModule.Service(),
		dispatcher,
		client,
		cfg.GetAgentName(),
		log,
	)

	worker, err := scheduler.NewWorker(cfg, engine, leadsRepo, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("automation worker listening", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
	log.Info("automation worker stopped")
}

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
