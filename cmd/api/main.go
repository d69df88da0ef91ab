// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

// Command api is the entry point for the ColorPro HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire platform services (tokens, identity, storage, payments, email).
//  7. Wire domain services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colorpro/colorpro/internal/analysis"
	"github.com/colorpro/colorpro/internal/api"
	"github.com/colorpro/colorpro/internal/identity"
	"github.com/colorpro/colorpro/internal/mailer"
	"github.com/colorpro/colorpro/internal/payment"
	"github.com/colorpro/colorpro/internal/platform/config"
	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/middleware"
	"github.com/colorpro/colorpro/internal/platform/migration"
	pgstore "github.com/colorpro/colorpro/internal/platform/postgres"
	redisstore "github.com/colorpro/colorpro/internal/platform/redis"
	"github.com/colorpro/colorpro/internal/platform/respond"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/internal/users/account"
	"github.com/colorpro/colorpro/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "colorpro"))
	slog.SetDefault(log)

	log.Info("[ColorPro] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "colorpro"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Error payload shaping follows the environment: development responses
	// carry stack context, production responses never leak internals.
	respond.SetDevelopmentMode(cfg.IsDevelopment())

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Tokens & Identity ──────────────────────────────────────────────
	tokenService := sec.NewTokenService(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret,
		cfg.JWTAccessTTL, cfg.JWTRefreshTTL,
	)

	firebaseVerifier, err := identity.NewFirebaseVerifier(startupCtx, cfg.FirebaseProjectID)
	must(log, err, "initialize firebase verifier")

	// ── 7. Object Storage & Upload Pipelines ──────────────────────────────
	// Production uses S3; everything else writes to local disk and serves
	// the files back through the dev-only /uploads static mount.
	var storageBackend upload.Backend
	staticUploadsDir := ""
	if cfg.IsProduction() {
		s3Backend, s3Err := upload.NewS3Backend(upload.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
		must(log, s3Err, "initialize s3 backend")
		storageBackend = s3Backend
	} else {
		localBackend, localErr := upload.NewLocalBackend(cfg.LocalUploadDir, "/uploads")
		must(log, localErr, "initialize local upload dir")
		storageBackend = localBackend
		staticUploadsDir = localBackend.BaseDir()
	}

	profileUploads := upload.NewProcessor(storageBackend, cfg.MaxUploadBytes, cfg.AllowedMimeTypes,
		upload.WithMetadataValidation(),
	)
	analysisUploads := upload.NewProcessor(storageBackend, cfg.MaxUploadBytes, cfg.AllowedMimeTypes,
		upload.WithMetadataValidation(),
		upload.WithResize(upload.DefaultResizeSpec),
	)

	// ── 8. Email & Payments ───────────────────────────────────────────────
	mail := mailer.NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)

	stripeGateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	tierPrices := map[sec.Tier]string{
		sec.TierBronze: cfg.StripePriceBronze,
		sec.TierSilver: cfg.StripePriceSilver,
		sec.TierGold:   cfg.StripePriceGold,
	}

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(rdb)
	sessionRepository := auth.NewSessionRepository(rdb)
	authService := auth.NewService(userRepository, resetTokenRepository, sessionRepository, tokenService, mail)
	authHandler := auth.NewHandler(authService)

	accountService := account.NewService(userRepository, profileUploads)
	accountHandler := account.NewHandler(accountService, profileUploads)

	analysisRepository := analysis.NewRepository(pool)
	analysisEngine := analysis.NewHTTPAnalyzer(cfg.AnalysisServiceURL)
	analysisService := analysis.NewService(analysisRepository, analysisEngine, analysisUploads, mail)
	analysisHandler := analysis.NewHandler(analysisService, analysisUploads)

	paymentRepository := payment.NewRepository(pool)
	paymentService := payment.NewService(paymentRepository, userRepository, stripeGateway, tierPrices)
	paymentHandler := payment.NewHandler(paymentService)

	// ── 10. Middleware ────────────────────────────────────────────────────
	authenticator := middleware.NewAuthenticator(firebaseVerifier, tokenService, authService)

	globalLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	globalLimiter.StartCleanup(context.Background())

	authAttemptLimiter := middleware.NewAuthAttemptLimiter(cfg.AuthAttemptMax, cfg.AuthAttemptWindow)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness: api.NewHealthHandler(cfg.Environment),
		Auth:     authHandler,
		Account:  accountHandler,
		Analysis: analysisHandler,
		Payment:  paymentHandler,
	}
	limiters := api.Limiters{
		Global:       globalLimiter,
		AuthAttempts: authAttemptLimiter,
	}

	server := api.NewServer(cfg, log, authenticator, limiters, handlers, staticUploadsDir)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
