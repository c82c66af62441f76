/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the calendar/results UIs

ROUTE GROUPS:
  /api/shift-codes/*    Shift-code reference table
  /api/lines/*          Lines and their computed views
  /api/settings         Bid-period parameters
  /api/holidays/*       Holiday calendar
  /api/scenarios/*      Demo scenarios

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultCORSOrigins are the local UI dev servers.
var DefaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured. Empty origins
// fall back to DefaultCORSOrigins.
func NewRouter(h *Handler, origins ...string) *chi.Mux {
	if len(origins) == 0 {
		origins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/shift-codes", func(r chi.Router) {
			r.Get("/", h.ListShiftCodes)
			r.Post("/", h.CreateShiftCode)
		})

		r.Route("/lines", func(r chi.Router) {
			r.Get("/", h.ListLines)
			r.Post("/", h.CreateLine)
			r.Get("/{id}", h.GetLine)
			r.Delete("/{id}", h.DeleteLine)
			r.Get("/{id}/schedule", h.GetSchedule)
			r.Get("/{id}/statistics", h.GetStatistics)
			r.Get("/{id}/mirrors", h.GetMirrors)
			r.Get("/{id}/compare/{otherID}", h.CompareLines)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
