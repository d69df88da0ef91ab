// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package auth

import (
	"context"
	"time"

	"github.com/colorpro/colorpro/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByFirebaseUID returns the account linked to a provider subject.

		Parameters:
		  - context: context.Context
		  - firebaseUID: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByFirebaseUID(context context.Context, firebaseUID string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		LinkFirebaseUID attaches a provider subject to an existing account.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - firebaseUID: string

		Returns:
		  - error: Persistence failures
	*/
	LinkFirebaseUID(context context.Context, userID, firebaseUID string) error

	/*
		TouchLastLogin records the current time as the user's last login.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchLastLogin(context context.Context, userID string) error

	/*
		UpdateStripeCustomer stores the payment-gateway customer handle.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - customerID: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateStripeCustomer(context context.Context, userID, customerID string) error

	/*
		UpdateSubscription replaces the user's subscription state.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - subscription: *sec.Subscription (nil clears it)

		Returns:
		  - error: Persistence failures
	*/
	UpdateSubscription(context context.Context, userID string, subscription *sec.Subscription) error

	/*
		SoftDelete marks the account as deleted without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// SessionRepository tracks revoked refresh tokens until natural expiry.
//
// Refresh tokens are stateless JWTs, so logout cannot delete them. Instead
// the token is denylisted for its remaining lifetime and the refresh flow
// checks the denylist before rotating.
type SessionRepository interface {

	/*
		Deny records a refresh token as revoked until its natural expiry.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Deny(context context.Context, tokenHash string, ttl time.Duration) error

	/*
		IsDenied reports whether a refresh token has been revoked.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - bool: True when revoked
		  - error: Retrieval failures
	*/
	IsDenied(context context.Context, tokenHash string) (bool, error)
}
