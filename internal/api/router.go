// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dossierd/dossierd/internal/audit"
	"github.com/dossierd/dossierd/internal/auth"
	"github.com/dossierd/dossierd/internal/config"
	"github.com/dossierd/dossierd/internal/middleware"
	"github.com/dossierd/dossierd/internal/models"
)

// NewRouter assembles the full route tree. Authenticated routes run the
// audit middleware, so every mutating request inside /api/v1 lands exactly
// one audit row regardless of outcome.
func NewRouter(cfg *config.Config, h *Handlers, authMW *auth.Middleware, auditMW *audit.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", "X-Request-ID"},
		ExposedHeaders:   []string{"ETag", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Audit sits outside authentication so login attempts and rejected
		// anonymous requests are recorded too, without an actor.
		r.Use(auditMW.Record)

		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			elevated := authMW.RequireRole(models.RoleAdmin, models.RoleHeadAdmin)
			headAdmin := authMW.RequireRole(models.RoleHeadAdmin)

			r.Route("/users", func(r chi.Router) {
				r.Use(elevated)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{user_id}", h.GetUser)
				r.Patch("/{user_id}", h.UpdateUser)
				r.Delete("/{user_id}", h.DeleteUser)
			})

			// Person records and their dependents are read-open but
			// write-restricted to elevated roles.
			r.Route("/persons", func(r chi.Router) {
				r.Get("/", h.ListPersons)
				r.With(elevated).Post("/", h.CreatePerson)

				r.Route("/{person_id}", func(r chi.Router) {
					r.Get("/", h.GetPerson)
					r.With(elevated).Patch("/", h.UpdatePerson)
					r.With(elevated).Delete("/", h.DeletePerson)

					r.Route("/notes", func(r chi.Router) {
						r.Get("/", h.ListNotes)
						r.With(elevated).Post("/", h.CreateNote)
						r.Get("/{note_id}", h.GetNote)
						r.With(elevated).Patch("/{note_id}", h.UpdateNote)
						r.With(elevated).Delete("/{note_id}", h.DeleteNote)
					})

					r.Route("/profiles", func(r chi.Router) {
						r.Get("/", h.ListLinkedProfiles)
						r.With(elevated).Post("/", h.LinkProfile)
						r.With(elevated).Delete("/{profile_id}", h.UnlinkProfile)
					})

					r.Get("/dossier", h.GetDossier)
					r.Get("/dossier.pdf", h.GetDossierPDF)
				})
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Get("/", h.ListProfiles)
				r.Post("/", h.CreateProfile)
				r.Get("/{profile_id}", h.GetProfile)
				r.Patch("/{profile_id}", h.UpdateProfile)
				r.Delete("/{profile_id}", h.DeleteProfile)
			})

			r.Route("/platforms", func(r chi.Router) {
				r.Get("/", h.ListPlatforms)
				r.Post("/", h.CreatePlatform)
				r.Get("/{platform_id}", h.GetPlatform)
				r.Patch("/{platform_id}", h.UpdatePlatform)
				r.Delete("/{platform_id}", h.DeletePlatform)
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", h.ListVehicles)
				r.Post("/", h.CreateVehicle)
				r.Get("/{vehicle_id}", h.GetVehicle)
				r.Patch("/{vehicle_id}", h.UpdateVehicle)
				r.Delete("/{vehicle_id}", h.DeleteVehicle)
			})

			r.Route("/activities", func(r chi.Router) {
				r.Get("/", h.ListActivities)
				r.Post("/", h.CreateActivity)
				r.Get("/{activity_id}", h.GetActivity)
				r.Patch("/{activity_id}", h.UpdateActivity)
				r.Delete("/{activity_id}", h.DeleteActivity)
			})

			r.Get("/stats/overview", h.GetStatsOverview)

			r.Route("/audit/logs", func(r chi.Router) {
				r.With(elevated).Get("/", h.ListAuditLogs)
				r.With(headAdmin).Delete("/", h.ClearAuditLogs)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	return r
}
