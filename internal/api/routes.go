package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/files", h.GetFiles)
		r.Post("/select_files", h.SelectFiles)

		r.Get("/summary", h.GetSummary)
		r.Get("/daily", h.GetDaily)
		r.Get("/hourly_heatmap", h.GetHourlyHeatmap)
		r.Get("/top_users", h.GetTopUsers)
		r.Get("/message_types", h.GetMessageTypes)
		r.Get("/token_histogram", h.GetTokenHistogram)
		r.Get("/redpackets", h.GetRedpackets)
		r.Get("/source_ratio", h.GetSourceRatio)
		r.Get("/user_trend/{userID}", h.GetUserTrend)
	})

	return r
}
