package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/plannerhq/planner/internal/api/handlers"
	"github.com/plannerhq/planner/internal/api/middleware"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/pkg/logger"
	"github.com/plannerhq/planner/internal/pkg/metrics"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Billing *handlers.BillingHandler
	Task    *handlers.TaskHandler
	Habit   *handlers.HabitHandler
}

func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(middleware.RateLimit(100, 200)) // 100 req/sec, burst of 200
	r.Use(metrics.Middleware)

	// Public routes
	r.Group(func(r chi.Router) {
		// Swagger documentation
		r.Get("/swagger/*", httpSwagger.WrapHandler)

		// Prometheus metrics
		r.Handle("/metrics", metrics.Handler())

		// Health checks
		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		// Billing provider webhook; authenticated by signature, not session
		r.Post("/api/v1/webhooks/billing", h.Billing.Webhook)

		// Auth endpoints with tight per-IP limits
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(3.0/60.0, 3))
			r.Post("/api/v1/auth/register", h.Auth.Register)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(5.0/60.0, 5))
			r.Post("/api/v1/auth/login", h.Auth.Login)
		})
		r.Post("/api/v1/auth/refresh", h.Auth.Refresh)
		r.Post("/api/v1/auth/logout", h.Auth.Logout)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		// Auth
		r.Get("/api/v1/auth/me", h.Auth.Me)
		r.Patch("/api/v1/auth/me", h.Auth.UpdateMe)

		// Billing
		r.Route("/api/v1/billing", func(r chi.Router) {
			r.Get("/subscription", h.Billing.Subscription)
			r.Group(func(r chi.Router) {
				// Sync hits the billing provider; throttle per user
				r.Use(middleware.UserRateLimit(10.0/60.0, 3))
				r.Post("/sync", h.Billing.Sync)
			})
			r.Get("/plans", h.Billing.Plans)
			r.Post("/checkout", h.Billing.Checkout)
			r.Get("/portal", h.Billing.Portal)
		})

		// Tasks
		r.Route("/api/v1/tasks", func(r chi.Router) {
			r.Get("/", h.Task.List)
			r.Post("/", h.Task.Create)
			r.Get("/{id}", h.Task.Get)
			r.Put("/{id}", h.Task.Update)
			r.Delete("/{id}", h.Task.Delete)
		})

		// Habits
		r.Route("/api/v1/habits", func(r chi.Router) {
			r.Get("/", h.Habit.List)
			r.Post("/", h.Habit.Create)
			r.Get("/{id}", h.Habit.Get)
			r.Put("/{id}", h.Habit.Update)
			r.Delete("/{id}", h.Habit.Delete)
			r.Post("/{id}/checkin", h.Habit.CheckIn)
		})
	})

	return r
}
