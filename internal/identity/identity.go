// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package identity integrates the external identity provider (Firebase
Authentication) behind a narrow verification interface.

Architecture:

  - Verifier: The only contract the authentication middleware depends on.
  - FirebaseVerifier: OIDC-based implementation against Firebase's
    securetoken issuer. Token internals never leak past this boundary;
    callers receive either an [Identity] or an error that the middleware
    maps to a single client-facing 401.
*/
package identity

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Identity is the verified subject returned by the provider.
type Identity struct {
	// SubjectID is the provider's stable user identifier (Firebase UID).
	SubjectID string

	// Email is the account email registered with the provider.
	Email string

	// Name is the display name, empty when the provider has none.
	Name string

	// PictureURL is the avatar URL, empty when the provider has none.
	PictureURL string

	// EmailVerified reports whether the provider confirmed the address.
	EmailVerified bool
}

// Verifier validates a raw bearer credential with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// # Firebase Implementation

// firebaseIssuerFormat is the securetoken OIDC issuer for a Firebase project.
const firebaseIssuerFormat = "https://securetoken.google.com/%s"

// FirebaseVerifier verifies Firebase ID tokens via their OIDC discovery
// document and JWKS endpoint.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewFirebaseVerifier performs OIDC discovery for the given Firebase
// project. Discovery requires network access and is done once at startup.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	issuer := fmt.Sprintf(firebaseIssuerFormat, projectID)

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("identity: OIDC discovery failed for %s: %w", issuer, err)
	}

	// Firebase ID tokens carry the project ID as their audience.
	return &FirebaseVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: projectID}),
	}, nil
}

// Verify checks the token signature, expiry, issuer, and audience, then
// extracts the profile claims.
func (f *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := f.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("identity: token verification failed: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("identity: failed to decode claims: %w", err)
	}

	return &Identity{
		SubjectID:     idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		PictureURL:    claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}
