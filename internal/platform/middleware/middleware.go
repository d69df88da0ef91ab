// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured activity logging (slog).
  - Guard: Rate limiting, CORS validation, security headers.
  - Locale: Accept-Language detection for localized defaults.
  - Safe: Panic recovery to prevent server crashes.

Authentication strategies and authorization gates live in authz.go; the
failed-login attempt limiter lives in attemptlimit.go.
*/
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/respond"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check if the client already provided an ID
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Generate a new one if missing (using UUID v7 for time-sortable properties)
			if requestID == "" {
				uuidV7, err := uuid.NewV7()
				if err != nil {
					requestID = uuid.New().String()
				} else {
					requestID = uuidV7.String()
				}
			}

			// 3. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// StructuredLogger logs every request status and performance metrics.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			rid := ctxutil.GetRequestID(request.Context())
			ip := RealIP(request)

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				slog.String("request_id", rid),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", ip),
			)

			// 2. Inject this logger into the context for downstream use
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			// 3. Proceed to downstream handlers with the enriched context
			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 4. Final log entry after the request is finished
			latency := time.Since(startTime).Milliseconds()
			logLevel := slog.LevelInfo

			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			logAttrs := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", latency),
				slog.String("user_agent", request.UserAgent()),
			}

			// Add user_id if the request is authenticated
			if principal := ctxutil.GetPrincipal(ctx); principal != nil {
				logAttrs = append(logAttrs, slog.String("user_id", principal.UserID))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", logAttrs...)
		})
	}
}

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token-bucket limit per client IP across all API
// routes. It is an explicitly constructed object (no package-level state)
// so tests can run isolated instances.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient

	limit rate.Limit
	burst int
	// retryAfter is the hint returned on rejection, derived from the window.
	retryAfter int
}

// NewRateLimiter derives a per-second refill rate from "max requests per
// window" configuration.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	perSecond := float64(maxRequests) / window.Seconds()

	retryAfter := int(window.Seconds()) / maxRequests
	if retryAfter < 1 {
		retryAfter = 1
	}

	return &RateLimiter{
		clients:    make(map[string]*rateLimitClient),
		limit:      rate.Limit(perSecond),
		burst:      maxRequests,
		retryAfter: retryAfter,
	}
}

// StartCleanup launches the background eviction of idle IP entries. It
// stops when the provided context is cancelled.
func (rl *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.mu.Lock()
				for ip, clientInfo := range rl.clients {
					if time.Since(clientInfo.lastSeen) > constants.RateLimitClientTTL {
						delete(rl.clients, ip)
					}
				}
				rl.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Handler is the middleware entry point.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		clientIP := RealIP(request)

		rl.mu.Lock()
		clientInfo, found := rl.clients[clientIP]
		if !found {
			clientInfo = &rateLimitClient{limiter: rate.NewLimiter(rl.limit, rl.burst)}
			rl.clients[clientIP] = clientInfo
		}
		clientInfo.lastSeen = time.Now()
		allowed := clientInfo.limiter.Allow()
		rl.mu.Unlock()

		if !allowed {
			respond.Error(writer, request, apperr.RateLimited(rl.retryAfter))
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs the stack trace, and returns 500.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			defer func() {
				if recovered := recover(); recovered != nil {

					stackTrace := make([]byte, 4096)
					length := runtime.Stack(stackTrace, false)

					reqLogger := ctxutil.GetLogger(request.Context())
					reqLogger.ErrorContext(request.Context(), "panic_recovered",
						slog.Any("error", recovered),
						slog.String("stack", string(stackTrace[:length])),
					)

					// Non-operational by definition: generic body only.
					respond.Error(writer, request, apperr.Internal(panicError{value: recovered}))
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// panicError adapts a recovered value into an error for classification.
type panicError struct{ value any }

func (p panicError) Error() string { return "panic: " + stringify(p.value) }

func stringify(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	if s, ok := value.(string); ok {
		return s
	}
	return "unknown"
}

// # Cross-Origin Resource Sharing & Security Headers

// CORS handles Cross-Origin Resource Sharing against a configured origin
// allow-list and stamps baseline security headers on every response.
func CORS(allowedOrigins []string, isDevelopment bool) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Baseline security headers for every response.
			header := writer.Header()
			header.Set("X-Content-Type-Options", "nosniff")
			header.Set("X-Frame-Options", "DENY")
			header.Set("Referrer-Policy", "no-referrer")

			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			_, isAllowed := allowed[origin]
			if isDevelopment {
				isAllowed = true
			}

			if isAllowed {
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID, Retry-After")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
			}

			// Handle pre-flight requests (OPTIONS)
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Localization

// supportedLocales drives Accept-Language matching for the platform's
// shipped translations.
var supportedLocales = language.NewMatcher([]language.Tag{
	language.English,             // en (first tag is the fallback)
	language.Spanish,             // es
	language.BrazilianPortuguese, // pt
})

// Locale detects the request language from Accept-Language and stores the
// matched base language ("en", "es", "pt") in the context. New accounts
// created during provider authentication inherit it.
func Locale() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tags, _, err := language.ParseAcceptLanguage(request.Header.Get("Accept-Language"))

			locale := constants.DefaultLanguage
			if err == nil && len(tags) > 0 {
				tag, _, _ := supportedLocales.Match(tags...)
				base, _ := tag.Base()
				locale = base.String()
			}

			ctx := ctxutil.WithLocale(request.Context(), locale)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Terminal Handlers

// NotFound synthesizes the operational 404 for unmatched routes. Mounted
// as the router's NotFound handler. It is never produced by a throw.
func NotFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFoundRoute(request.URL.Path))
}

// MethodNotAllowed mirrors NotFound for unmatched methods on known routes.
func MethodNotAllowed(writer http.ResponseWriter, request *http.Request) {
	ae := apperr.BadRequest("Method " + request.Method + " not allowed")
	ae.HTTPStatus = http.StatusMethodNotAllowed
	respond.Error(writer, request, ae)
}

// # Middleware Helpers

// RealIP extracts client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {

	// Check standard proxy headers first
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	// Fallback to the direct connection's address
	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return host
}
