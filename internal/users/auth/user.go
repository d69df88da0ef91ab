// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package auth implements account identity and session management.

It defines the core User entity and logic for the full authentication
lifecycle: registration, credential and provider-token login, refresh
token rotation, and password recovery.

# Architecture

This layer is the "Truth" of the system. The User entity has no external
dependencies; subscription and feature rules live as free functions in
the sec package and operate on the plain data carried here.
*/
package auth

import (
	"time"

	"github.com/colorpro/colorpro/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the ColorPro platform.
//
// Accounts can originate from two places: direct registration (password
// set) or first sign-in with a Firebase credential (no password, linked
// via FirebaseUID). Both kinds converge on the same row.
type User struct {
	ID               string            `json:"id"`
	FirebaseUID      string            `json:"-"` // Provider subject. Internal linkage only.
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	PasswordHash     string            `json:"-"` // Explicitly omitted from JSON for security.
	ProfileImageURL  string            `json:"profile_image_url,omitempty"`
	ProfileImageKey  string            `json:"-"` // Storage key backing the profile image.
	Language         string            `json:"language"`
	IsActive         bool              `json:"is_active"`
	StripeCustomerID string            `json:"-"`
	Subscription     *sec.Subscription `json:"subscription,omitempty"`
	LastLoginAt      *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Principal projects the user into the request-scoped authorization view.
func (user *User) Principal() *sec.Principal {
	return &sec.Principal{
		UserID:       user.ID,
		ProviderUID:  user.FirebaseUID,
		Email:        user.Email,
		Name:         user.Name,
		IsActive:     user.IsActive,
		Subscription: user.Subscription,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldPasswordConfirm = "passwordConfirm"
	FieldToken           = "token"
	FieldRefreshToken    = "refresh_token"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldLanguage        = "language"
	FieldMessage         = "message"
	FieldUser            = "user"
)
