/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/punches/*             Punch recording and correction
  /api/reports/*             Day reports and month batch runs
  /api/employees/*           Employee master data
  /api/positions/*           Position master data
  /api/shifts/*              Per-day shift schedules
  /api/settings/*            Allowance settings and rounding config
  /metrics                   Prometheus metrics (when enabled)

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions tweaks router construction.
type RouterOptions struct {
	// MetricsRegistry exposes /metrics when non-nil.
	MetricsRegistry *prometheus.Registry
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		// Punch routes
		r.Route("/punches", func(r chi.Router) {
			r.Post("/", h.RecordPunch)
			r.Put("/{employeeID}/{date}", h.ReplaceDay)
		})

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/day/{employeeID}/{date}", h.GetDayReport)
			r.Post("/month", h.RunMonthReport)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)
		})

		// Position routes
		r.Route("/positions", func(r chi.Router) {
			r.Post("/", h.SavePosition)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Put("/{employeeID}/{date}", h.SaveShift)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/allowances", h.ListAllowanceSettings)
			r.Put("/allowances", h.SaveAllowanceSetting)
			r.Get("/rounding", h.GetRounding)
			r.Put("/rounding", h.SaveRounding)
		})
	})

	if opts.MetricsRegistry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	return r
}
