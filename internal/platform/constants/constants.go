// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Window sizes and attempt budgets.
  - Security: Token issuers and claim defaults.
  - Uploads: Size ceilings, dimension floors, photo slot names.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "colorpro-api"
	AppVersion = "1.0.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Uploads with object-storage round-trips need more headroom than plain CRUD.
	GlobalRequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// DefaultAuthAttemptMax is the number of failed authentications allowed per window.
	DefaultAuthAttemptMax = 5

	// DefaultAuthAttemptWindow is the duration of the failed-authentication window.
	DefaultAuthAttemptWindow = 15 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in internally issued JWTs.
	AuthIssuer = "colorpro.app"

	// AuthAudience is the standard 'aud' claim in internally issued JWTs.
	AuthAudience = "colorpro-clients"

	// DefaultAccessTokenTTL is the lifetime of an access token when not configured.
	DefaultAccessTokenTTL = 7 * 24 * time.Hour

	// DefaultRefreshTokenTTL is the lifetime of a refresh token when not configured.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour

	// ResetTokenTTL is the lifetime of a password-reset token in Redis.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random reset token.
	ResetTokenLength = 32
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # Localization

const (
	// DefaultLanguage is assigned to accounts when Accept-Language yields nothing usable.
	DefaultLanguage = "en"
)

// SupportedLanguages lists the locales the platform ships translations for.
var SupportedLanguages = []string{"en", "es", "pt"}

// # Uploads

const (
	// DefaultMaxUploadBytes caps a single uploaded file at 10 MiB.
	DefaultMaxUploadBytes = 10 << 20

	// MinImageDimension is the smallest acceptable width/height for analysis photos.
	MinImageDimension = 200

	// SignedURLTTL is the validity window of presigned object-storage URLs.
	SignedURLTTL = 1 * time.Hour

	// UploadCategoryProfiles partitions profile images in object storage.
	UploadCategoryProfiles = "profiles"

	// UploadCategoryAnalysis partitions analysis photos in object storage.
	UploadCategoryAnalysis = "analysis"
)

// AnalysisPhotoSlots are the named multipart fields accepted by the
// analysis photo uploader, in declaration order.
var AnalysisPhotoSlots = []string{"selfie", "full_body", "natural_light", "style_inspiration"}

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixResetToken = "auth:reset_token:"
	RedisPrefixSession    = "auth:session:"
)
