package rest

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nivobank/backoffice/internal/api/rest/handlers"
	customMiddleware "github.com/nivobank/backoffice/internal/api/rest/middleware"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/services"
	"github.com/nivobank/backoffice/internal/websocket"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/metrics"
)

// Router holds the HTTP router and dependencies
type Router struct {
	router      *chi.Mux
	logger      *logger.Logger
	handlers    *handlers.Handlers
	authService *services.AuthService
	wsHandler   *websocket.Handler
	metrics     *metrics.Metrics
}

// NewRouter creates a new HTTP router
func NewRouter(log *logger.Logger, h *handlers.Handlers, authService *services.AuthService, wsHandler *websocket.Handler, m *metrics.Metrics) *Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Metrics middleware
	r.Use(customMiddleware.Metrics(m))

	// Security middleware
	r.Use(customMiddleware.SecurityHeaders())
	r.Use(customMiddleware.RequestSizeLimit(customMiddleware.GetMaxRequestSize()))

	// CORS - Configure allowed origins from environment
	allowedOrigins := []string{"http://localhost:3000"} // Default for development
	if originsEnv := os.Getenv("ALLOWED_ORIGINS"); originsEnv != "" {
		allowedOrigins = strings.Split(originsEnv, ",")
		// Trim whitespace from each origin
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	}

	// Security: Never allow "*" with credentials enabled
	allowCredentials := true
	for _, origin := range allowedOrigins {
		if origin == "*" {
			log.Warn("CORS: Wildcard origin '*' detected with credentials enabled. Disabling credentials for security.")
			allowCredentials = false
			break
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	return &Router{
		router:      r,
		logger:      log,
		handlers:    h,
		authService: authService,
		wsHandler:   wsHandler,
		metrics:     m,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	// Prometheus metrics endpoint (no auth required)
	r.router.Handle("/metrics", promhttp.Handler())

	// Health endpoints (no auth required)
	r.router.Get("/health", r.handlers.Health.Health)
	r.router.Get("/ready", r.handlers.Health.Ready)

	// API v1
	r.router.Route("/api/v1", func(router chi.Router) {
		// Auth endpoints (public)
		router.Route("/auth", func(router chi.Router) {
			router.Post("/register", r.handlers.Auth.Register)
			router.Post("/login", r.handlers.Auth.Login)
			router.Post("/refresh", r.handlers.Auth.RefreshToken)
			router.Post("/logout", r.handlers.Auth.Logout)

			// Protected auth endpoints (require authentication)
			router.Group(func(router chi.Router) {
				router.Use(customMiddleware.JWTAuth(r.authService, r.logger))
				router.Get("/me", r.handlers.Auth.Me)
				router.Post("/change-password", r.handlers.Auth.ChangePassword)
				router.Post("/api-keys", r.handlers.Auth.CreateAPIKey)
				router.Delete("/api-keys/{id}", r.handlers.Auth.RevokeAPIKey)
			})
		})

		// Protected routes (require authentication)
		router.Group(func(router chi.Router) {
			// Apply optional auth (JWT or API key)
			router.Use(customMiddleware.OptionalAuth(r.authService, r.logger))

			// Apply rate limiting (100 requests per minute per user)
			router.Use(customMiddleware.RateLimitWithConfig(100, 200, r.logger))

			// Onboarding requests
			router.Route("/requests", func(router chi.Router) {
				// Read operations
				router.With(customMiddleware.RequirePermission("request:read", r.logger)).Get("/", r.handlers.Request.List)
				router.With(customMiddleware.RequirePermission("request:read", r.logger)).Get("/{id}", r.handlers.Request.Get)
				router.With(customMiddleware.RequirePermission("request:read", r.logger)).Get("/{id}/history", r.handlers.Request.GetHistory)
				router.With(customMiddleware.RequirePermission("request:read", r.logger)).Get("/{id}/feedback", r.handlers.Request.CurrentFeedback)

				// Write operations
				router.With(customMiddleware.RequirePermission("request:create", r.logger)).Post("/", r.handlers.Request.Create)
				router.With(customMiddleware.RequirePermission("request:update", r.logger)).Put("/{id}/payload", r.handlers.Request.UpdatePayload)
				router.With(customMiddleware.RequirePermission("request:update", r.logger)).Post("/{id}/documents", r.handlers.Request.AttachDocument)
				router.With(customMiddleware.RequirePermission("request:submit", r.logger)).Post("/{id}/submit", r.handlers.Request.Submit)

				// Transitions and review feedback are back-office operations.
				// The lifecycle guards enforce the per-status role rules on top.
				router.With(customMiddleware.RequirePermission("request:transition", r.logger)).Post("/{id}/transition", r.handlers.Request.Transition)
				router.With(customMiddleware.RequirePermission("request:review", r.logger)).Post("/{id}/feedback", r.handlers.Request.RecordFeedback)
			})

			// Status catalog
			router.Route("/statuses", func(router chi.Router) {
				router.With(customMiddleware.RequirePermission("status:read", r.logger)).Get("/", r.handlers.Status.List)
				router.With(customMiddleware.RequirePermission("status:read", r.logger)).Get("/{code}", r.handlers.Status.Get)
				router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Put("/{code}/active", r.handlers.Status.SetActive)
			})

			// Banks and agencies
			router.Route("/banks", func(router chi.Router) {
				router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Get("/", r.handlers.Tenant.ListBanks)
				router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Post("/", r.handlers.Tenant.CreateBank)

				router.Route("/{bankID}", func(router chi.Router) {
					router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Get("/", r.handlers.Tenant.GetBank)
					router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Delete("/", r.handlers.Tenant.DeactivateBank)

					// Agencies are managed by the bank's own staff too; the
					// handler enforces the bank boundary.
					router.Route("/agencies", func(router chi.Router) {
						router.With(customMiddleware.RequirePermission("tenant:read", r.logger)).Get("/", r.handlers.Tenant.ListAgencies)
						router.With(customMiddleware.RequirePermission("tenant:read", r.logger)).Get("/{agencyID}", r.handlers.Tenant.GetAgency)
						router.With(customMiddleware.RequirePermission("tenant:manage", r.logger)).Post("/", r.handlers.Tenant.CreateAgency)
						router.With(customMiddleware.RequirePermission("tenant:manage", r.logger)).Delete("/{agencyID}", r.handlers.Tenant.DeactivateAgency)
					})
				})
			})

			// Dashboard stats
			router.Route("/stats", func(router chi.Router) {
				router.With(customMiddleware.RequirePermission("stats:read", r.logger)).Get("/dashboard", r.handlers.Stats.GetDashboard)
				router.With(customMiddleware.RequirePermission("stats:read", r.logger)).Get("/statuses", r.handlers.Stats.GetStatusBreakdown)
			})

			// WebSocket live feed
			if r.wsHandler != nil {
				router.Get("/ws", r.wsHandler.HandleWebSocket)
				router.With(customMiddleware.RequireRole(models.RoleSuperAdmin, r.logger)).Get("/ws/stats", r.wsHandler.HandleStats)
			}
		})
	})
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r.router
}
