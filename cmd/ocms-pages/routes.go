// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-pages/internal/handler"
	"github.com/olegiv/ocms-pages/internal/handler/api"
	"github.com/olegiv/ocms-pages/internal/middleware"
)

// routerDeps holds everything the HTTP router dispatches to.
type routerDeps struct {
	sessions        *scs.SessionManager
	users           middleware.UserLoader
	pages           *api.PagesHandler
	auth            *api.AuthHandler
	health          *handler.HealthHandler
	rateLimiter     *middleware.GlobalRateLimiter
	loginProtection *middleware.LoginProtection
	csrfKey         []byte
	isDev           bool
}

func newRouter(d routerDeps) http.Handler {
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig(d.csrfKey, d.isDev))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(d.isDev)))
	r.Use(d.sessions.LoadAndSave)
	r.Use(middleware.LoadCaller(d.sessions, d.users))

	r.Get("/health", d.health.Health)
	r.Get("/health/live", d.health.Liveness)
	r.Get("/health/ready", d.health.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", d.auth.Me)
			r.Group(func(r chi.Router) {
				r.Use(csrfMiddleware)
				r.With(d.loginProtection.Middleware()).Post("/login", d.auth.Login)
				r.Post("/logout", d.auth.Logout)
			})
		})

		r.Route("/pages", func(r chi.Router) {
			// Public reads, visibility decided per caller
			r.Group(func(r chi.Router) {
				r.Use(d.rateLimiter.Middleware())
				r.Get("/", d.pages.ListPages)
				r.Get("/config/formats", d.pages.ListFormats)
				r.Get("/config/sections", d.pages.ListSections)
				r.Get("/config/status", d.pages.ListStatuses)
				r.Get("/{language}/{pageId}", d.pages.GetPage)
				r.Get("/{language}/{pageId}/content", d.pages.GetPageContent)
			})

			// Mutations (administrators only)
			r.Group(func(r chi.Router) {
				r.Use(csrfMiddleware)
				r.Use(middleware.RequireAdmin())
				r.Post("/", d.pages.CreatePage)
				r.Post("/{language}/{pageId}", d.pages.UpdatePage)
				r.Delete("/{language}/{pageId}", d.pages.DeletePage)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}
