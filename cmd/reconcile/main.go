// Command reconcile re-drives media records stuck in processing. Finalize
// events can be lost or the scorer can be down for a while; this tool
// re-scores anything older than the configured cutoff and applies the
// automatic decision. Safe to run repeatedly, for example from cron.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/LanderBuys/strivon-sub004/internal/config"
	"github.com/LanderBuys/strivon-sub004/internal/db"
	"github.com/LanderBuys/strivon-sub004/internal/repositories"
	"github.com/LanderBuys/strivon-sub004/internal/scorer"
	"github.com/LanderBuys/strivon-sub004/internal/services"
)

func main() {
	limit := flag.Int("limit", 100, "Maximum records to reconcile per run")
	dryRun := flag.Bool("dry-run", false, "List stuck records without re-scoring")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx := context.Background()

	pool := db.Connect(cfg)
	defer pool.Close()

	storage := buildStorage(ctx, cfg)

	var sc scorer.Scorer
	if cfg.Scorer.Provider == "hive" {
		sc = scorer.NewHiveScorer(cfg.Scorer.HiveAPIToken)
	} else {
		sc = scorer.NewStaticScorer(cfg.Scorer.StaticScore)
	}

	mediaRepo := repositories.NewMediaRepository(pool)
	mover := services.NewMover(storage, cfg.Storage.PublicBaseURL)
	ingestion := services.NewIngestionService(mediaRepo, storage, sc, mover)

	cutoff := services.StuckCutoff(cfg.Ingest.ReconcileCutoffMinutes)
	stuck, err := mediaRepo.ListStuckProcessing(ctx, cutoff, *limit)
	if err != nil {
		log.Fatalf("Failed to list stuck records: %v", err)
	}
	log.Printf("[Reconcile] Found %d records stuck in processing since before %s", len(stuck), cutoff.Format(time.RFC3339))

	if *dryRun {
		for _, rec := range stuck {
			log.Printf("[Reconcile] Would re-score mediaId=%s owner=%s created=%s", rec.ID, rec.OwnerUID, rec.CreatedAt.Format(time.RFC3339))
		}
		return
	}

	reconciled, failed := 0, 0
	for i := range stuck {
		if err := ingestion.Reingest(ctx, &stuck[i]); err != nil {
			log.Printf("[Reconcile] Failed mediaId=%s: %v", stuck[i].ID, err)
			failed++
			continue
		}
		reconciled++
	}
	log.Printf("[Reconcile] Done: %d reconciled, %d failed", reconciled, failed)
}

func buildStorage(ctx context.Context, cfg config.Config) services.ObjectStorage {
	if cfg.Storage.Endpoint == "" {
		return services.NewLocalBackend(cfg.Storage.LocalDir)
	}
	backend, err := services.NewS3Backend(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	return backend
}
