// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/colorpro/colorpro/internal/identity"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/respond"
	"github.com/colorpro/colorpro/internal/platform/sec"
)

// # Contracts

// PrincipalResolver turns a verified credential into a request principal.
//
// # Why an interface?
//
// Defining PrincipalResolver here decouples the middleware from the user
// service implementation, allowing mocks during unit testing.
type PrincipalResolver interface {
	// ResolveProviderIdentity looks up the user for a provider identity,
	// creating the account on first sign-in, and stamps last-login time.
	// The language is used as the default for newly created accounts.
	ResolveProviderIdentity(ctx context.Context, ident *identity.Identity, language string) (*sec.Principal, error)

	// ResolveUserID loads the principal for an internal-token subject.
	ResolveUserID(ctx context.Context, userID string) (*sec.Principal, error)
}

// TokenVerifier verifies internally issued access tokens.
type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*sec.AccessClaims, error)
}

// Authenticator bundles the two credential verifiers with the resolver.
// Routes pick one of three strategies: Provider, Token, or Optional.
type Authenticator struct {
	provider identity.Verifier
	tokens   TokenVerifier
	resolver PrincipalResolver
}

// NewAuthenticator constructs the authentication middleware set.
func NewAuthenticator(provider identity.Verifier, tokens TokenVerifier, resolver PrincipalResolver) *Authenticator {
	return &Authenticator{provider: provider, tokens: tokens, resolver: resolver}
}

// # Authentication Strategies

// Provider authenticates via the identity provider (Firebase ID token).
//
// # Flow
//  1. Extract 'Authorization: Bearer <token>'; absent → 401.
//  2. Verify with the provider. The provider's error is never surfaced to
//     the client; a medium-severity security event is logged instead.
//  3. Resolve the principal (creating the account on first sign-in, with
//     name defaulted from the email local-part and language from the
//     detected request locale).
//  4. Inject [*sec.Principal] into the request context.
func (a *Authenticator) Provider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, err := a.authenticateProvider(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		ctx := ctxutil.WithPrincipal(request.Context(), principal)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Token authenticates via an internally issued access token.
//
// # Flow
//  1. Extract bearer token; absent → 401.
//  2. Verify signature and expiry against the access secret.
//  3. Load the user; inactive or missing accounts are rejected.
func (a *Authenticator) Token(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, err := a.authenticateToken(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		ctx := ctxutil.WithPrincipal(request.Context(), principal)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Optional tries the provider strategy, falls back to the internal-token
// strategy, and proceeds unauthenticated when both fail. Used for routes
// with tiered behavior. Strategy failures are swallowed only here, at the
// outermost layer.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if bearerToken(request) == "" {
			next.ServeHTTP(writer, request)
			return
		}

		principal, err := a.authenticateProvider(request)
		if err != nil {
			principal, err = a.authenticateToken(request)
		}
		if err != nil {
			next.ServeHTTP(writer, request)
			return
		}

		ctx := ctxutil.WithPrincipal(request.Context(), principal)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// authenticateProvider runs the identity-provider strategy for one request.
func (a *Authenticator) authenticateProvider(request *http.Request) (*sec.Principal, error) {
	token := bearerToken(request)
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	ident, err := a.provider.Verify(request.Context(), token)
	if err != nil {
		logSecurityEvent(request, severityMedium, "provider_token_rejected", err)
		// The verifier's error is an implementation detail; clients get a
		// single stable message.
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	principal, err := a.resolver.ResolveProviderIdentity(
		request.Context(), ident, ctxutil.GetLocale(request.Context()))
	if err != nil {
		return nil, err
	}
	return principal, nil
}

// authenticateToken runs the internal-token strategy for one request.
func (a *Authenticator) authenticateToken(request *http.Request) (*sec.Principal, error) {
	token := bearerToken(request)
	if token == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}

	claims, err := a.tokens.VerifyAccessToken(token)
	if err != nil {
		logSecurityEvent(request, severityMedium, "access_token_rejected", err)
		return nil, err
	}

	principal, err := a.resolver.ResolveUserID(request.Context(), claims.UserID)
	if err != nil || principal == nil || !principal.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}
	return principal, nil
}

// bearerToken extracts the credential from the Authorization header.
// Returns "" when the header is absent or malformed.
func bearerToken(request *http.Request) string {
	header := request.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// # Authorization Gates

// RequireAuth blocks requests that are not authenticated. Mounted after an
// authentication strategy (typically Optional).
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireSubscription gates routes on an active, unexpired subscription.
//
// # Responses
//   - 401 when unauthenticated.
//   - 403 when the subscription is absent or not currently active; the
//     message carries the current status and an upgrade hint.
func RequireSubscription(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal := ctxutil.GetPrincipal(request.Context())
		if principal == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !sec.HasActiveSubscription(principal.Subscription) {
			status := "none"
			if principal.Subscription != nil {
				status = string(principal.Subscription.Status)
			}
			ae := apperr.Forbidden(
				"Active subscription required (current status: " + status + "). Upgrade your plan to continue.")
			ae.Code = "SUBSCRIPTION_REQUIRED"
			respond.Error(writer, request, ae)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireFeature gates a route on the principal's subscription tier
// including the named feature. Tiers form a lattice (bronze ⊆ silver ⊆
// gold); unknown or missing tiers grant nothing.
func RequireFeature(feature sec.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			var tier sec.Tier
			if sec.HasActiveSubscription(principal.Subscription) {
				tier = principal.Subscription.Tier
			}

			if !sec.TierHasFeature(tier, feature) {
				ae := apperr.Forbidden("Your plan does not include " + string(feature) + ". Upgrade your plan to continue.")
				ae.Code = "FEATURE_NOT_AVAILABLE"
				respond.Error(writer, request, ae)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireAdmin gates a route on the configured admin allow-list. Every
// denied attempt is logged as a high-severity security event with
// identifying context.
func RequireAdmin(adminEmails []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		allowed[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())
			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if _, ok := allowed[strings.ToLower(principal.Email)]; !ok {
				logSecurityEvent(request, severityHigh, "admin_access_denied", nil,
					slog.String("user_id", principal.UserID),
					slog.String("email", principal.Email),
				)
				respond.Error(writer, request, apperr.Forbidden("Admin access required"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Security Event Logging

const (
	severityMedium = "medium"
	severityHigh   = "high"
)

// logSecurityEvent records an auth-relevant incident with client context.
func logSecurityEvent(request *http.Request, severity, event string, cause error, extra ...any) {
	logger := ctxutil.GetLogger(request.Context())

	attrs := []any{
		slog.String("severity", severity),
		slog.String("ip", RealIP(request)),
		slog.String("user_agent", request.UserAgent()),
		slog.String("path", request.URL.Path),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
	}
	attrs = append(attrs, extra...)

	logger.Warn("security_event_"+event, attrs...)
}
