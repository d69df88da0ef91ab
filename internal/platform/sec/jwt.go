// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/constants"
)

// AccessClaims is the payload embedded inside a JWT access token.
//
// # Why custom claims?
//
// By embedding the UserID, Email, and provider subject directly inside the
// JWT, the authentication middleware can establish most of the principal
// WITHOUT querying the database on every API request.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID      string `json:"uid"`
	Email       string `json:"eml"`
	ProviderUID string `json:"pvd,omitempty"`
}

// RefreshClaims is the payload embedded inside a JWT refresh token.
// It deliberately carries only the user ID and a type marker so that a
// leaked refresh token reveals nothing about the account.
type RefreshClaims struct {
	jwt.RegisteredClaims

	UserID    string `json:"uid"`
	TokenType string `json:"type"`
}

// refreshTokenType is the fixed 'type' claim on refresh tokens.
const refreshTokenType = "refresh"

// TokenService signs and verifies access and refresh tokens using HS256
// with two distinct secrets. A compromised access secret therefore cannot
// be used to mint refresh tokens, and vice versa.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
}

// NewTokenService creates a TokenService with the given secrets and TTLs.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = constants.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = constants.DefaultRefreshTokenTTL
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        constants.AuthIssuer,
		audience:      constants.AuthAudience,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (service *TokenService) AccessTTL() time.Duration { return service.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (service *TokenService) RefreshTTL() time.Duration { return service.refreshTTL }

// # Issuance

// GenerateAccessToken creates a signed access token for a user.
func (service *TokenService) GenerateAccessToken(userID, email, providerUID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTTL)),
		},
		UserID:      userID,
		Email:       email,
		ProviderUID: providerUID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(service.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}
	return signed, nil
}

// GenerateRefreshToken creates a signed refresh token for a user.
func (service *TokenService) GenerateRefreshToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(service.refreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		TokenType: refreshTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(service.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

// # Verification

// VerifyAccessToken checks the signature and validity of an access token.
// Failures are classified at this boundary (see [WrapTokenError]).
func (service *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.parse(tokenString, claims, service.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks the signature, validity, and type marker of a
// refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.parse(tokenString, claims, service.refreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, apperr.Unauthorized("Invalid token. Please log in again.")
	}
	return claims, nil
}

// parse runs the shared HS256 verification path for both token kinds.
func (service *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
	)
	if err != nil {
		return WrapTokenError(err)
	}
	if !token.Valid {
		return apperr.Unauthorized("Invalid token. Please log in again.")
	}
	return nil
}

// WrapTokenError converts a jwt verification failure into its operational
// classification. Expired tokens get their own message so that clients can
// trigger a silent refresh instead of a full re-login.
func WrapTokenError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		ae := apperr.Unauthorized("Token expired. Please log in again.")
		ae.Cause = err
		return ae
	}
	ae := apperr.Unauthorized("Invalid token. Please log in again.")
	ae.Cause = err
	return ae
}
