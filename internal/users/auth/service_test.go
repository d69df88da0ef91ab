// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/identity"
	"github.com/colorpro/colorpro/internal/mailer"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/users/auth"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository keyed by user ID.
type fakeUserRepository struct {
	users map[string]*auth.User
}

func newFakeUserRepository(users ...*auth.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: map[string]*auth.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) FindByFirebaseUID(_ context.Context, firebaseUID string) (*auth.User, error) {
	for _, user := range r.users {
		if user.FirebaseUID == firebaseUID {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (r *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) Update(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (r *fakeUserRepository) LinkFirebaseUID(_ context.Context, userID, firebaseUID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.FirebaseUID = firebaseUID
	return nil
}

func (r *fakeUserRepository) TouchLastLogin(_ context.Context, userID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepository) UpdateStripeCustomer(_ context.Context, userID, customerID string) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.StripeCustomerID = customerID
	return nil
}

func (r *fakeUserRepository) UpdateSubscription(_ context.Context, userID string, subscription *sec.Subscription) error {
	user, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Subscription = subscription
	return nil
}

func (r *fakeUserRepository) SoftDelete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

// fakeResetTokenRepository is an in-memory reset-token store.
type fakeResetTokenRepository struct {
	tokens map[string]string
}

func newFakeResetTokenRepository() *fakeResetTokenRepository {
	return &fakeResetTokenRepository{tokens: map[string]string{}}
}

func (r *fakeResetTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	r.tokens[token] = userID
	return nil
}

func (r *fakeResetTokenRepository) Get(_ context.Context, token string) (string, error) {
	userID, ok := r.tokens[token]
	if !ok {
		return "", apperr.BadRequest("Reset token is invalid or expired")
	}
	return userID, nil
}

func (r *fakeResetTokenRepository) Delete(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

// fakeSessionRepository is an in-memory refresh-token denylist.
type fakeSessionRepository struct {
	denied map[string]bool
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{denied: map[string]bool{}}
}

func (r *fakeSessionRepository) Deny(_ context.Context, tokenHash string, _ time.Duration) error {
	r.denied[tokenHash] = true
	return nil
}

func (r *fakeSessionRepository) IsDenied(_ context.Context, tokenHash string) (bool, error) {
	return r.denied[tokenHash], nil
}

// fakeMailer records outgoing mail instead of sending it.
type fakeMailer struct {
	welcomes []string
	resets   []string
	analyses []string
}

func (m *fakeMailer) SendWelcome(_ context.Context, toEmail, _ string) error {
	m.welcomes = append(m.welcomes, toEmail)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, toEmail, _, resetToken string) error {
	m.resets = append(m.resets, toEmail+":"+resetToken)
	return nil
}

func (m *fakeMailer) SendAnalysisComplete(_ context.Context, toEmail, _, _ string) error {
	m.analyses = append(m.analyses, toEmail)
	return nil
}

// # Fixtures

type serviceFixture struct {
	service  *auth.Service
	users    *fakeUserRepository
	resets   *fakeResetTokenRepository
	sessions *fakeSessionRepository
	tokens   *sec.TokenService
	mail     *fakeMailer
}

func newServiceFixture(t *testing.T, users ...*auth.User) *serviceFixture {
	t.Helper()
	fixture := &serviceFixture{
		users:    newFakeUserRepository(users...),
		resets:   newFakeResetTokenRepository(),
		sessions: newFakeSessionRepository(),
		tokens:   sec.NewTokenService("access-secret", "refresh-secret", time.Hour, 24*time.Hour),
		mail:     &fakeMailer{},
	}
	fixture.service = auth.NewService(fixture.users, fixture.resets, fixture.sessions, fixture.tokens, fixture.mail)
	return fixture
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return &auth.User{
		ID:           "user-1",
		Email:        "ana@colorpro.app",
		Name:         "Ana Costa",
		PasswordHash: hash,
		Language:     "pt",
		IsActive:     true,
	}
}

// # Registration

/*
TestRegister covers enrollment: hashing, defaults, duplicate rejection, and
the welcome email side effect.
*/
func TestRegister(t *testing.T) {
	t.Run("creates_account", func(t *testing.T) {
		fixture := newServiceFixture(t)

		user, err := fixture.service.Register(context.Background(), auth.RegisterInput{
			Name:     "Ana Costa",
			Email:    "ana@colorpro.app",
			Password: "secret-password",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, user.ID)
		assert.True(t, user.IsActive)
		assert.Equal(t, "en", user.Language, "language defaults when unset")
		assert.NotEqual(t, "secret-password", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("secret-password", user.PasswordHash))
		assert.Equal(t, []string{"ana@colorpro.app"}, fixture.mail.welcomes)
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		fixture := newServiceFixture(t, activeUser(t, "whatever"))

		_, err := fixture.service.Register(context.Background(), auth.RegisterInput{
			Name:     "Second Ana",
			Email:    "ana@colorpro.app",
			Password: "another-password",
		})
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, http.StatusConflict, ae.HTTPStatus)
		assert.Equal(t, "Email is already registered", ae.Message)
	})
}

// # Login & Sessions

/*
TestLogin covers credential verification and the uniform rejection message
on every failure path.
*/
func TestLogin(t *testing.T) {
	t.Run("issues_session", func(t *testing.T) {
		fixture := newServiceFixture(t, activeUser(t, "secret-password"))

		session, err := fixture.service.Login(context.Background(), auth.LoginInput{
			Email:    "ana@colorpro.app",
			Password: "secret-password",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, session.AccessToken)
		assert.NotEmpty(t, session.RefreshToken)
		assert.Equal(t, "user-1", session.User.ID)
		require.NotNil(t, fixture.users.users["user-1"].LastLoginAt)

		claims, err := fixture.tokens.VerifyAccessToken(session.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
	})

	t.Run("uniform_rejection", func(t *testing.T) {
		inactive := activeUser(t, "secret-password")
		inactive.ID = "user-2"
		inactive.Email = "inactive@colorpro.app"
		inactive.IsActive = false

		providerOnly := activeUser(t, "irrelevant")
		providerOnly.ID = "user-3"
		providerOnly.Email = "firebase@colorpro.app"
		providerOnly.PasswordHash = ""

		fixture := newServiceFixture(t, activeUser(t, "secret-password"), inactive, providerOnly)

		tests := []struct {
			name  string
			input auth.LoginInput
		}{
			{"unknown_email", auth.LoginInput{Email: "ghost@colorpro.app", Password: "x"}},
			{"wrong_password", auth.LoginInput{Email: "ana@colorpro.app", Password: "wrong"}},
			{"inactive_account", auth.LoginInput{Email: "inactive@colorpro.app", Password: "secret-password"}},
			{"provider_only_account", auth.LoginInput{Email: "firebase@colorpro.app", Password: "irrelevant"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := fixture.service.Login(context.Background(), tt.input)
				require.Error(t, err)
				assert.Equal(t, "Invalid login credentials", apperr.As(err).Message)
			})
		}
	})
}

/*
TestRefreshSession covers rotation: the old token is revoked, a new pair is
issued, and replaying the old token fails.
*/
func TestRefreshSession(t *testing.T) {
	fixture := newServiceFixture(t, activeUser(t, "secret-password"))

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "ana@colorpro.app",
		Password: "secret-password",
	})
	require.NoError(t, err)

	rotated, err := fixture.service.RefreshSession(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// Replaying the revoked token must fail.
	_, err = fixture.service.RefreshSession(context.Background(), session.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired refresh token", apperr.As(err).Message)
}

/*
TestRefreshSession_Garbage checks structurally invalid refresh tokens.
*/
func TestRefreshSession_Garbage(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.RefreshSession(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperr.As(err).HTTPStatus)
}

/*
TestLogout checks revocation and idempotency.
*/
func TestLogout(t *testing.T) {
	fixture := newServiceFixture(t, activeUser(t, "secret-password"))

	session, err := fixture.service.Login(context.Background(), auth.LoginInput{
		Email:    "ana@colorpro.app",
		Password: "secret-password",
	})
	require.NoError(t, err)

	require.NoError(t, fixture.service.Logout(context.Background(), session.RefreshToken))

	denied, err := fixture.sessions.IsDenied(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.True(t, denied)

	// Logging out with garbage is still a successful logout.
	assert.NoError(t, fixture.service.Logout(context.Background(), "garbage"))
}

// # Password Recovery

/*
TestPasswordResetFlow covers the full forgot/reset loop including token
consumption and the anti-enumeration response for unknown emails.
*/
func TestPasswordResetFlow(t *testing.T) {
	fixture := newServiceFixture(t, activeUser(t, "old-password"))

	require.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "ana@colorpro.app"))
	require.Len(t, fixture.mail.resets, 1)
	require.Len(t, fixture.resets.tokens, 1)

	var token string
	for stored := range fixture.resets.tokens {
		token = stored
	}

	require.NoError(t, fixture.service.ResetPassword(context.Background(), token, "new-password"))
	assert.True(t, sec.CheckPasswordHash("new-password", fixture.users.users["user-1"].PasswordHash))
	assert.Empty(t, fixture.resets.tokens, "token is consumed on use")

	// Replaying the consumed token fails.
	err := fixture.service.ResetPassword(context.Background(), token, "another-password")
	require.Error(t, err)
	assert.Equal(t, "Reset token is invalid or expired", apperr.As(err).Message)

	t.Run("unknown_email_silently_succeeds", func(t *testing.T) {
		assert.NoError(t, fixture.service.RequestPasswordReset(context.Background(), "ghost@colorpro.app"))
		assert.Len(t, fixture.mail.resets, 1, "no email sent for unknown accounts")
	})
}

// # Principal Resolution

func providerIdentity() *identity.Identity {
	return &identity.Identity{
		SubjectID:  "firebase-uid-1",
		Email:      "ana@colorpro.app",
		Name:       "Ana Costa",
		PictureURL: "https://lh3.example/photo.jpg",
	}
}

/*
TestResolveProviderIdentity covers the three provider paths: existing
subject, email linking, and first-sign-in provisioning.
*/
func TestResolveProviderIdentity(t *testing.T) {
	t.Run("provisions_on_first_sign_in", func(t *testing.T) {
		fixture := newServiceFixture(t)

		principal, err := fixture.service.ResolveProviderIdentity(context.Background(), providerIdentity(), "pt")
		require.NoError(t, err)

		assert.Equal(t, "firebase-uid-1", principal.ProviderUID)
		assert.Equal(t, "ana@colorpro.app", principal.Email)
		assert.True(t, principal.IsActive)

		created, err := fixture.users.FindByFirebaseUID(context.Background(), "firebase-uid-1")
		require.NoError(t, err)
		assert.Equal(t, "pt", created.Language)
		assert.Empty(t, created.PasswordHash)
	})

	t.Run("defaults_name_to_email_local_part", func(t *testing.T) {
		fixture := newServiceFixture(t)

		ident := providerIdentity()
		ident.Name = ""
		ident.Email = "jane.doe@example.com"

		principal, err := fixture.service.ResolveProviderIdentity(context.Background(), ident, "en")
		require.NoError(t, err)
		assert.Equal(t, "jane.doe", principal.Name)
	})

	t.Run("links_existing_email_account", func(t *testing.T) {
		existing := activeUser(t, "secret-password")
		fixture := newServiceFixture(t, existing)

		principal, err := fixture.service.ResolveProviderIdentity(context.Background(), providerIdentity(), "en")
		require.NoError(t, err)

		assert.Equal(t, "user-1", principal.UserID, "no duplicate account is created")
		assert.Equal(t, "firebase-uid-1", fixture.users.users["user-1"].FirebaseUID)
		assert.Len(t, fixture.users.users, 1)
	})

	t.Run("resolves_existing_subject", func(t *testing.T) {
		existing := activeUser(t, "secret-password")
		existing.FirebaseUID = "firebase-uid-1"
		fixture := newServiceFixture(t, existing)

		principal, err := fixture.service.ResolveProviderIdentity(context.Background(), providerIdentity(), "en")
		require.NoError(t, err)
		assert.Equal(t, "user-1", principal.UserID)
	})

	t.Run("inactive_account_rejected", func(t *testing.T) {
		existing := activeUser(t, "secret-password")
		existing.FirebaseUID = "firebase-uid-1"
		existing.IsActive = false
		fixture := newServiceFixture(t, existing)

		_, err := fixture.service.ResolveProviderIdentity(context.Background(), providerIdentity(), "en")
		require.Error(t, err)
		assert.Equal(t, "User not found or inactive", apperr.As(err).Message)
	})
}

/*
TestResolveUserID checks internal-token principal loading.
*/
func TestResolveUserID(t *testing.T) {
	user := activeUser(t, "secret-password")
	user.Subscription = &sec.Subscription{
		Tier:             sec.TierGold,
		Status:           sec.StatusActive,
		CurrentPeriodEnd: time.Now().Add(time.Hour),
	}
	fixture := newServiceFixture(t, user)

	principal, err := fixture.service.ResolveUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	require.NotNil(t, principal.Subscription)
	assert.Equal(t, sec.TierGold, principal.Subscription.Tier)

	_, err = fixture.service.ResolveUserID(context.Background(), "ghost")
	require.Error(t, err)
}

// Compile-time checks that the fakes satisfy the service contracts.
var (
	_ auth.UserRepository       = (*fakeUserRepository)(nil)
	_ auth.ResetTokenRepository = (*fakeResetTokenRepository)(nil)
	_ auth.SessionRepository    = (*fakeSessionRepository)(nil)
	_ mailer.Mailer             = (*fakeMailer)(nil)
)
