// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, S3, Stripe) via constructors.
  - Fail-Fast: Every violation is collected and reported at once; the process
    never starts on a partially valid environment.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the ColorPro API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL"`

	// Internal token signing. Access and refresh secrets are deliberately
	// distinct so one compromised secret cannot mint the other token kind.
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL"  envDefault:"168h"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"720h"`

	// Identity provider (Firebase Authentication)
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`

	// Payment gateway (Stripe)
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceBronze   string `env:"STRIPE_PRICE_BRONZE"`
	StripePriceSilver   string `env:"STRIPE_PRICE_SILVER"`
	StripePriceGold     string `env:"STRIPE_PRICE_GOLD"`

	// Email delivery (SendGrid)
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	EmailFrom      string `env:"EMAIL_FROM" envDefault:"noreply@colorpro.app"`
	EmailFromName  string `env:"EMAIL_FROM_NAME" envDefault:"ColorPro"`

	// Object Storage (AWS S3 / any S3-compatible endpoint)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"true"`

	// LocalUploadDir backs the upload pipeline outside production.
	LocalUploadDir string `env:"LOCAL_UPLOAD_DIR" envDefault:"./uploads"`

	// Upload limits
	MaxUploadBytes   int64    `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	AllowedMimeTypes []string `env:"ALLOWED_MIME_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/webp"`

	// Global API rate limiting
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"    envDefault:"100"`

	// Auth-attempt limiting (failed logins per IP)
	AuthAttemptMax    int           `env:"AUTH_ATTEMPT_MAX"    envDefault:"5"`
	AuthAttemptWindow time.Duration `env:"AUTH_ATTEMPT_WINDOW" envDefault:"15m"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"https://colorpro.app"`

	// AdminEmails is the admin-gate allow-list. Kept as configuration rather
	// than a role model on purpose; see DESIGN.md.
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	// AnalysisServiceURL is the external color-analysis engine endpoint.
	AnalysisServiceURL string `env:"ANALYSIS_SERVICE_URL"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
//
// On failure the returned error enumerates every violation, one per line,
// so an operator can fix the whole environment in a single pass.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if violations := cfg.Validate(); len(violations) > 0 {
		return nil, errors.New("config: invalid configuration:\n  - " + strings.Join(violations, "\n  - "))
	}

	return cfg, nil
}

// Validate checks every cross-field and required-value rule, collecting all
// violations instead of stopping at the first.
func (c *Config) Validate() []string {
	var violations []string

	required := []struct {
		name  string
		value string
	}{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_ACCESS_SECRET", c.JWTAccessSecret},
		{"JWT_REFRESH_SECRET", c.JWTRefreshSecret},
		{"FIREBASE_PROJECT_ID", c.FirebaseProjectID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			violations = append(violations, r.name+" is required")
		}
	}

	if c.JWTAccessSecret != "" && c.JWTAccessSecret == c.JWTRefreshSecret {
		violations = append(violations, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	switch c.Environment {
	case "development", "test", "production":
	default:
		violations = append(violations, fmt.Sprintf("ENVIRONMENT must be one of development, test, production (got %q)", c.Environment))
	}

	// Production tightens the screws: payments, email, and object storage
	// must be fully configured before the process is allowed to serve.
	if c.IsProduction() {
		productionRequired := []struct {
			name  string
			value string
		}{
			{"STRIPE_SECRET_KEY", c.StripeSecretKey},
			{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
			{"SENDGRID_API_KEY", c.SendGridAPIKey},
			{"S3_ENDPOINT", c.S3Endpoint},
			{"S3_ACCESS_KEY", c.S3AccessKey},
			{"S3_SECRET_KEY", c.S3SecretKey},
			{"S3_BUCKET", c.S3Bucket},
		}
		for _, r := range productionRequired {
			if strings.TrimSpace(r.value) == "" {
				violations = append(violations, r.name+" is required in production")
			}
		}
	}

	if c.MaxUploadBytes <= 0 {
		violations = append(violations, "MAX_UPLOAD_BYTES must be positive")
	}
	if len(c.AllowedMimeTypes) == 0 {
		violations = append(violations, "ALLOWED_MIME_TYPES must not be empty")
	}
	if c.RateLimitMax <= 0 {
		violations = append(violations, "RATE_LIMIT_MAX must be positive")
	}
	if c.RateLimitWindow <= 0 {
		violations = append(violations, "RATE_LIMIT_WINDOW must be positive")
	}
	if c.AuthAttemptMax <= 0 {
		violations = append(violations, "AUTH_ATTEMPT_MAX must be positive")
	}
	if c.AuthAttemptWindow <= 0 {
		violations = append(violations, "AUTH_ATTEMPT_WINDOW must be positive")
	}

	return violations
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
