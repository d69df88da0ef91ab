// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/colorpro/colorpro/internal/analysis"
	"github.com/colorpro/colorpro/internal/payment"
	"github.com/colorpro/colorpro/internal/platform/config"
	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/middleware"
	"github.com/colorpro/colorpro/internal/users/account"
	"github.com/colorpro/colorpro/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Auth handles the authentication lifecycle routes.
	Auth *auth.Handler

	// Account handles profile and security settings.
	Account *account.Handler

	// Analysis handles color-analysis consultations.
	Analysis *analysis.Handler

	// Payment handles billing and the gateway webhook.
	Payment *payment.Handler
}

// Limiters groups the two rate limiters the server installs. Both are
// constructed in main so their lifecycles (cleanup goroutines) are explicit.
type Limiters struct {
	// Global throttles every /api route per client IP.
	Global *middleware.RateLimiter

	// AuthAttempts counts observed 401 responses on the auth routes.
	AuthAttempts *middleware.AuthAttemptLimiter
}

// # Server Initialization

// routes installs the full middleware chain and registers all route groups.
//
// Middleware order is load-bearing: the logger needs the request ID, panic
// recovery must sit inside the logger so crashes are logged with context,
// and the locale detector runs before any handler reads it.
func (s *Server) routes(cfg *config.Config, authn *middleware.Authenticator, limiters Limiters, h Handlers, staticUploadsDir string) {
	r := s.router

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(s.log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.PanicRecovery(s.log))
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.IsDevelopment()))
	r.Use(middleware.Locale())
	r.Use(chimw.CleanPath)

	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	// # Infrastructure Endpoints
	// Unauthenticated health probe for container orchestration.
	r.Get("/health", h.Liveness)

	// Development-only static mount backing the local upload backend.
	if staticUploadsDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(staticUploadsDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(limiters.Global.Handler)

		// Auth routes: no principal yet, failed attempts counted per IP.
		api.Group(func(g chi.Router) {
			g.Use(limiters.AuthAttempts.Handler)
			g.Mount("/auth", h.Auth.Routes())
		})

		// Everything below resolves a principal. Provider tokens are
		// tried first, then internal tokens; both absent leaves the
		// request anonymous for the gate middleware to reject.
		api.Group(func(g chi.Router) {
			g.Use(authn.Optional)
			g.Mount("/users", h.Account.Routes())
			g.Mount("/analysis", h.Analysis.Routes())
			g.Mount("/payments", h.Payment.Routes())

			// Admin surface, gated on the configured allow-list.
			g.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireAuth)
				admin.Use(middleware.RequireAdmin(cfg.AdminEmails))
				admin.Get("/admin/payments", h.Payment.AdminList)
			})
		})
	})
}

// NewServer builds a fully wired Server ready to listen.
func NewServer(cfg *config.Config, log *slog.Logger, authn *middleware.Authenticator, limiters Limiters, h Handlers, staticUploadsDir string) *Server {
	router := chi.NewRouter()

	server := &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}

	server.routes(cfg, authn, limiters, h, staticUploadsDir)
	return server
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
