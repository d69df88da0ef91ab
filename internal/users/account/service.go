// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package account

import (
	"context"
	"fmt"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for profile and security settings.
type Service struct {
	accountRepository AccountRepository
	uploads           *upload.Processor
}

// NewService constructs a new [Service] with its dependencies.
func NewService(accountRepo AccountRepository, uploads *upload.Processor) *Service {
	return &Service{
		accountRepository: accountRepo,
		uploads:           uploads,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	return service.accountRepository.FindByID(context, userID)
}

// UpdateProfileInput defines the mutable subset of user profile fields.
// Nil pointers leave the current value untouched.
type UpdateProfileInput struct {
	Name     *string
	Language *string
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing user state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated profile
  - error: Not found or persistence failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Language != nil {
		user.Language = *input.Language
	}

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

/*
SetProfileImage records a freshly stored profile image on the account.

Description: The previous image object, if any, is removed from storage as
a best-effort cleanup so orphaned objects do not accumulate.

Parameters:
  - context: context.Context
  - userID: string
  - descriptor: *upload.Descriptor (already persisted by the upload pipeline)

Returns:
  - *auth.User: The updated profile
  - error: Not found or persistence failures
*/
func (service *Service) SetProfileImage(context context.Context, userID string, descriptor *upload.Descriptor) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	previousKey := user.ProfileImageKey
	user.ProfileImageURL = descriptor.URL
	user.ProfileImageKey = descriptor.StorageKey

	if err := service.accountRepository.Update(context, user); err != nil {
		return nil, err
	}

	if previousKey != "" && previousKey != descriptor.StorageKey {
		if err := service.uploads.Remove(context, previousKey); err != nil {
			ctxutil.GetLogger(context).Warn("profile_image_cleanup_failed",
				"user_id", userID, "key", previousKey, "error", err)
		}
	}

	return user, nil
}

// # Security Settings

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before applying the new one.
Provider-managed accounts (no local password) cannot change a password here.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == "" {
		return apperr.BadRequest("This account uses provider sign-in and has no password")
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("account_service_change_password_hash_failed: %w", err)
	}

	return service.accountRepository.UpdatePassword(context, userID, hashedPassword)
}

/*
DeleteAccount closes a user account.

Description: Soft-deletes the row for retention and removes the profile
image object from storage as a best-effort cleanup.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Not found or persistence failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if err := service.accountRepository.SoftDelete(context, userID); err != nil {
		return err
	}

	if user.ProfileImageKey != "" {
		if err := service.uploads.Remove(context, user.ProfileImageKey); err != nil {
			ctxutil.GetLogger(context).Warn("profile_image_cleanup_failed",
				"user_id", userID, "key", user.ProfileImageKey, "error", err)
		}
	}

	return nil
}
