// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/colorpro/colorpro/internal/identity"
	"github.com/colorpro/colorpro/internal/mailer"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, email, providerUID string) (string, error)

	// GenerateRefreshToken creates a signed refresh token and its expiry.
	GenerateRefreshToken(userID string) (string, time.Time, error)

	// VerifyRefreshToken validates a refresh token and returns its claims.
	VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error)

	// AccessTTL reports the configured access-token lifetime.
	AccessTTL() time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merge.
type Service struct {
	userRepository       UserRepository
	resetTokenRepository ResetTokenRepository
	sessionRepository    SessionRepository
	tokenProvider        TokenProvider
	mail                 mailer.Mailer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	resetRepo ResetTokenRepository,
	sessionRepo SessionRepository,
	tokenProv TokenProvider,
	mail mailer.Mailer,
) *Service {
	return &Service{
		userRepository:       userRepo,
		resetTokenRepository: resetRepo,
		sessionRepository:    sessionRepo,
		tokenProvider:        tokenProv,
		mail:                 mail,
	}
}

// isNotFound reports whether the classified error is a missing-row result.
func isNotFound(err error) bool {
	appError := apperr.As(err)
	return appError != nil && appError.HTTPStatus == http.StatusNotFound
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Language string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Pre-checks email uniqueness for a clean Conflict response; a
concurrent duplicate still surfaces safely through the storage boundary's
unique-violation classification.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}
	if !isNotFound(err) {
		return nil, err
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	language := input.Language
	if language == "" {
		language = constants.DefaultLanguage
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		Language:     language,
		IsActive:     true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	// Welcome email is a side effect, never a registration failure.
	if err := service.mail.SendWelcome(context, user.Email, user.Name); err != nil {
		ctxutil.GetLogger(context).Warn("welcome_email_failed", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
and issues a fresh access/refresh token pair.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.userRepository.FindByEmail(context, input.Email)

	// Generic message on every failure path to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.IsActive || user.PasswordHash == "" {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issueSession(user)
	if err != nil {
		return nil, err
	}

	// Best-effort login bookkeeping.
	_ = service.userRepository.TouchLastLogin(context, user.ID)

	return session, nil
}

// issueSession generates a fresh access/refresh pair for the user.
func (service *Service) issueSession(user *User) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, user.FirebaseUID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, expiresAt, err := service.tokenProvider.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the presented refresh token.

Description: Refresh tokens are stateless JWTs, so revocation is a denylist
entry held until the token's natural expiry. Logout with an invalid token is
still a successful logout (idempotent operation).

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := service.sessionRepository.Deny(context, sec.HashToken(refreshToken), remaining); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the refresh token, rejects denylisted tokens, revokes
the presented token to prevent reuse, and issues a fresh rotated pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string) (*LoginSession, error) {
	claims, err := service.tokenProvider.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, sec.WrapTokenError(err)
	}

	denied, err := service.sessionRepository.IsDenied(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_denylist_failed: %w", err)
	}
	if denied {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}

	// Rotation: deny the old token to prevent replay attacks.
	remaining := time.Until(claims.ExpiresAt.Time)
	if err := service.sessionRepository.Deny(context, sec.HashToken(refreshToken), remaining); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	return service.issueSession(user)
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token, saves it to Redis, and emails it to
the account. Unknown emails return success to prevent user enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Generation or storage errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil
	}

	token, err := sec.GenerateSecureToken(constants.ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, constants.ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	if err := service.mail.SendPasswordReset(context, user.Email, user.Name, token); err != nil {
		ctxutil.GetLogger(context).Warn("reset_email_failed", "user_id", user.ID, "error", err)
	}

	return nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and consumes the token so it cannot be replayed.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

// # Principal Resolution

/*
ResolveProviderIdentity maps a verified provider identity to a local account.

Description: First sign-in with a Firebase credential provisions an account
on the fly; later sign-ins resolve by provider subject. An existing
email-registered account is linked to the subject instead of duplicated.

Parameters:
  - context: context.Context
  - ident: *identity.Identity
  - language: string (preferred locale for a provisioned account)

Returns:
  - *sec.Principal: Request-scoped authorization view
  - err: Unauthorized (inactive account) or storage failures
*/
func (service *Service) ResolveProviderIdentity(context context.Context, ident *identity.Identity, language string) (*sec.Principal, error) {
	user, err := service.userRepository.FindByFirebaseUID(context, ident.SubjectID)

	if err != nil && isNotFound(err) && ident.Email != "" {
		// Link by email before provisioning a duplicate account.
		user, err = service.userRepository.FindByEmail(context, ident.Email)
		if err == nil {
			if linkErr := service.userRepository.LinkFirebaseUID(context, user.ID, ident.SubjectID); linkErr != nil {
				return nil, linkErr
			}
			user.FirebaseUID = ident.SubjectID
		}
	}

	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		user, err = service.provisionFromIdentity(context, ident, language)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}

	_ = service.userRepository.TouchLastLogin(context, user.ID)

	return user.Principal(), nil
}

// provisionFromIdentity creates a local account for a first provider sign-in.
func (service *Service) provisionFromIdentity(context context.Context, ident *identity.Identity, language string) (*User, error) {
	if language == "" {
		language = constants.DefaultLanguage
	}

	name := ident.Name
	if name == "" {
		// Providers are not required to carry a display name; fall back to
		// the email local-part rather than exposing the full address.
		name = ident.Email
		if at := strings.Index(name, "@"); at > 0 {
			name = name[:at]
		}
	}

	user := &User{
		ID:              uuid.New(),
		FirebaseUID:     ident.SubjectID,
		Email:           ident.Email,
		Name:            name,
		ProfileImageURL: ident.PictureURL,
		Language:        language,
		IsActive:        true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).Info("user_provisioned_from_provider",
		"user_id", user.ID,
		"provider_uid", ident.SubjectID,
	)

	return user, nil
}

/*
ResolveUserID loads the principal for an internal-token subject.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.Principal: Request-scoped authorization view
  - err: Storage failures or missing account
*/
func (service *Service) ResolveUserID(context context.Context, userID string) (*sec.Principal, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}
