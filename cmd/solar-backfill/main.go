package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"primus_backend/internal/events"
	"primus_backend/internal/leads/repository"
	"primus_backend/internal/solar"
	"primus_backend/platform/config"
	"primus_backend/platform/db"
	"primus_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

// Backfills solar site analysis for leads that were created before the
// enrichment pipeline existed, or whose automation runs never requested it.
func main() {
	limit := flag.Int("limit", 100, "maximum number of leads to enrich")
	workers := flag.Int("workers", 4, "concurrent enrichment calls")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting solar backfill", "limit", *limit, "workers", *workers)

	if !cfg.IsSolarEnabled() {
		log.Warn("GOOGLE_MAPS_API_KEY not configured, nothing to do")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := repository.New(pool)
	eventBus := events.NewInMemoryBus(log)
	enricher := solar.NewModule(cfg, repo, eventBus, log).Service()

	leads, err := repo.ListUnenrichedWithAddress(ctx, *limit)
	if err != nil {
		log.Error("failed to list leads", "error", err)
		panic("failed to list leads: " + err.Error())
	}
	if len(leads) == 0 {
		log.Info("no leads left to backfill")
		return
	}

	var succeeded, failed atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(*workers)

	for i := range leads {
		lead := leads[i]
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			if err := enricher.Enrich(groupCtx, lead.ID, *lead.Address); err != nil {
				// The lead is already marked failed; keep going.
				failed.Add(1)
				log.Error("enrichment failed", "lead_id", lead.ID.String(), "error", err.Error())
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Warn("backfill interrupted", "error", err.Error())
	}

	log.Info("solar backfill completed",
		"total", len(leads), "succeeded", succeeded.Load(), "failed", failed.Load())
}
