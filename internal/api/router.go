package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/prismchat/prism/internal/database"
	"github.com/prismchat/prism/internal/events"
	mw "github.com/prismchat/prism/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Guest    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Chat handlers
	SendMessage  http.HandlerFunc
	ListChats    http.HandlerFunc
	ListMessages http.HandlerFunc
	ListModels   http.HandlerFunc

	// Provider key handlers
	SaveKey   http.HandlerFunc
	ListKeys  http.HandlerFunc
	DeleteKey http.HandlerFunc

	// Provider discovery
	ListProviders http.HandlerFunc

	// Usage + audit handlers
	GetUsage  http.HandlerFunc
	ListAudit http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, redisClient *goredis.Client, natsClient *events.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()
	startedAt := time.Now()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Basic health — no dependency checks, reports process uptime.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(startedAt).Round(time.Second).String(),
		})
	})

	// Liveness probe — always 200.
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB, Redis, NATS.
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if err := redisClient.Ping(r.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient == nil {
			health["nats"] = "not configured"
		} else if !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, health)
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Model catalog (public)
		r.Get("/models", h.ListModels)

		// Auth routes (public) — optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/guest", h.Guest)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Post("/chat", h.SendMessage)
			r.Route("/chats", func(r chi.Router) {
				r.Get("/", h.ListChats)
				r.Get("/{chatID}/messages", h.ListMessages)
			})

			r.Route("/keys", func(r chi.Router) {
				r.Post("/", h.SaveKey)
				r.Get("/", h.ListKeys)
				r.Delete("/{provider}", h.DeleteKey)
			})
			r.Get("/providers", h.ListProviders)

			r.Get("/usage", h.GetUsage)
			r.Get("/audit", h.ListAudit)
		})
	})

	return r
}
