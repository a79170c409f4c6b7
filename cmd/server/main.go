package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/LanderBuys/strivon-sub004/internal/config"
	"github.com/LanderBuys/strivon-sub004/internal/database"
	"github.com/LanderBuys/strivon-sub004/internal/db"
	"github.com/LanderBuys/strivon-sub004/internal/handlers"
	"github.com/LanderBuys/strivon-sub004/internal/health"
	httprouter "github.com/LanderBuys/strivon-sub004/internal/http"
	"github.com/LanderBuys/strivon-sub004/internal/middleware"
	"github.com/LanderBuys/strivon-sub004/internal/repositories"
	"github.com/LanderBuys/strivon-sub004/internal/scorer"
	"github.com/LanderBuys/strivon-sub004/internal/services"
	"github.com/LanderBuys/strivon-sub004/migrations"
)

func main() {
	// Optional in production; local dev keeps secrets in .env.
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

	migrator := database.NewMigrator(pool, migrations.FS)
	if err := migrator.Run(ctx); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	storage := buildStorage(ctx, cfg)
	scoringProvider := buildScorer(cfg)

	mediaRepo := repositories.NewMediaRepository(pool)
	queueRepo := repositories.NewQueueRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	adminRepo := repositories.NewAdminRepository(pool)

	mover := services.NewMover(storage, cfg.Storage.PublicBaseURL)
	ingestion := services.NewIngestionService(mediaRepo, storage, scoringProvider, mover)
	moderation := services.NewModerationService(mediaRepo, userRepo, queueRepo, mediaRepo, mover)

	checker := health.NewHealthChecker(pool, storage)

	finalizeHandler := handlers.NewFinalizeHandler(ingestion, cfg.Auth.WebhookSecret)
	moderationHandler := handlers.NewModerationHandler(moderation)
	queueWSHandler := handlers.NewQueueWSHandler(moderation)
	healthHandler := handlers.NewHealthHandler(checker)

	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	router := httprouter.NewRouter(&cfg, finalizeHandler, moderationHandler, queueWSHandler, healthHandler, authMiddleware, adminRepo)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Listening on %s (storage=%s, scorer=%s)", addr, storage.Name(), cfg.Scorer.Provider)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func buildStorage(ctx context.Context, cfg config.Config) services.ObjectStorage {
	if cfg.Storage.Endpoint == "" {
		log.Printf("[Server] No S3 endpoint configured, using local storage at %s", cfg.Storage.LocalDir)
		return services.NewLocalBackend(cfg.Storage.LocalDir)
	}
	backend, err := services.NewS3Backend(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	return backend
}

func buildScorer(cfg config.Config) scorer.Scorer {
	if cfg.Scorer.Provider == "hive" {
		return scorer.NewHiveScorer(cfg.Scorer.HiveAPIToken)
	}
	return scorer.NewStaticScorer(cfg.Scorer.StaticScore)
}
