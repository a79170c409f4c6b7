package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/LanderBuys/strivon-sub004/internal/config"
	"github.com/LanderBuys/strivon-sub004/internal/handlers"
	"github.com/LanderBuys/strivon-sub004/internal/middleware"
	"github.com/LanderBuys/strivon-sub004/internal/monitoring"
)

// NewRouter wires the full HTTP surface: storage webhook, admin moderation
// API, health and metrics.
func NewRouter(
	cfg *config.Config,
	finalizeHandler *handlers.FinalizeHandler,
	moderationHandler *handlers.ModerationHandler,
	queueWSHandler *handlers.QueueWSHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	admins middleware.AdminDirectory,
) http.Handler {
	r := mux.NewRouter()
	r.Use(monitoring.Middleware)

	r.HandleFunc("/health", healthHandler.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Storage provider webhook. Authenticated by shared secret, not JWT,
	// and rate limited separately from the admin API.
	hookLimiter := middleware.NewRateLimiter(300, time.Minute)
	hooks := r.PathPrefix("/hooks").Subrouter()
	hooks.Use(hookLimiter.Middleware)
	hooks.HandleFunc("/storage/finalize", finalizeHandler.HandleFinalize).Methods(http.MethodPost)

	apiLimiter := middleware.NewRateLimiter(100, time.Minute)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(apiLimiter.Middleware)
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin(admins))

	admin.HandleFunc("/moderation/approve", moderationHandler.HandleApprove).Methods(http.MethodPost)
	admin.HandleFunc("/moderation/reject", moderationHandler.HandleReject).Methods(http.MethodPost)
	admin.HandleFunc("/moderation/queue", moderationHandler.HandleQueue).Methods(http.MethodGet)
	admin.HandleFunc("/moderation/queue/ws", queueWSHandler.HandleQueueWS).Methods(http.MethodGet)
	admin.HandleFunc("/moderation/stats", moderationHandler.HandleStats).Methods(http.MethodGet)
	admin.HandleFunc("/users/{uid}/ban", moderationHandler.HandleBanUser).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Webhook-Secret"},
		AllowCredentials: true,
	})

	return middleware.SecurityHeaders(c.Handler(r))
}
