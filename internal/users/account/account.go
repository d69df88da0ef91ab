// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package account handles user profile management and security settings.

It provides functionalities for users to view and update their private
identity data, replace their profile image, change their password, and
close their account.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Storage: Reuses the auth package's Postgres repository through the
    narrower [AccountRepository] contract.
  - Uploads: Profile images flow through the shared upload processor.
*/
package account

import (
	"context"

	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract the account domain
// needs. The auth package's Postgres repository satisfies it.
type AccountRepository interface {
	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.User: Hydrated entity
		  - error: Retrieval failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *auth.User

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, user *auth.User) error

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
		UpdateSubscription replaces the user's subscription state.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - subscription: *sec.Subscription

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
