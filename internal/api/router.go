// Package api exposes the funnel view over HTTP for the dashboard.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router. allowedOrigins feeds the CORS layer;
// an empty list falls back to localhost dev origins.
func NewRouter(h *Handlers, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/funnel", func(r chi.Router) {
			r.Get("/", h.GetFunnel)
			r.Get("/insights", h.GetInsights)
			r.Get("/status", h.GetStatus)
			r.Get("/export", h.ExportFunnel)
			r.Post("/refresh", h.Refresh)
		})

		r.Post("/prospects", h.UploadProspects)
		r.Post("/accounts/{accountID}/default", h.SetDefaultAccount)
		r.Post("/campaigns/{campaignID}/default", h.SetDefaultCampaign)
	})

	return r
}
