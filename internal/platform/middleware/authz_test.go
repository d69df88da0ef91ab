// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func doAuthorizedRequest(t *testing.T, handler http.Handler, principal *sec.Principal) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/analysis", nil)
	if principal != nil {
		request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func activeSubscription(tier sec.Tier) *sec.Subscription {
	return &sec.Subscription{
		Tier:             tier,
		Status:           sec.StatusActive,
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour),
	}
}

/*
TestRequireAuth checks the authenticated gate.
*/
func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(okHandler)

	assert.Equal(t, http.StatusUnauthorized, doAuthorizedRequest(t, handler, nil).Code)

	principal := &sec.Principal{UserID: "user-1", IsActive: true}
	assert.Equal(t, http.StatusOK, doAuthorizedRequest(t, handler, principal).Code)
}

/*
TestRequireSubscription covers the full access decision: status and period
must both hold.
*/
func TestRequireSubscription(t *testing.T) {
	handler := RequireSubscription(okHandler)

	tests := []struct {
		name         string
		subscription *sec.Subscription
		wantStatus   int
	}{
		{"active_unexpired", activeSubscription(sec.TierBronze), http.StatusOK},
		{"no_subscription", nil, http.StatusForbidden},
		{"expired_period", &sec.Subscription{
			Tier: sec.TierGold, Status: sec.StatusActive,
			CurrentPeriodEnd: time.Now().Add(-time.Hour),
		}, http.StatusForbidden},
		{"cancelled", &sec.Subscription{
			Tier: sec.TierGold, Status: sec.StatusCancelled,
			CurrentPeriodEnd: time.Now().Add(time.Hour),
		}, http.StatusForbidden},
		{"pending", &sec.Subscription{
			Tier: sec.TierSilver, Status: sec.StatusPending,
			CurrentPeriodEnd: time.Now().Add(time.Hour),
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			principal := &sec.Principal{UserID: "user-1", IsActive: true, Subscription: tt.subscription}
			recorder := doAuthorizedRequest(t, handler, principal)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doAuthorizedRequest(t, handler, nil).Code)
	})

	t.Run("denial_carries_current_status", func(t *testing.T) {
		principal := &sec.Principal{UserID: "user-1", IsActive: true, Subscription: &sec.Subscription{
			Status:           sec.StatusCancelled,
			CurrentPeriodEnd: time.Now().Add(time.Hour),
		}}
		recorder := doAuthorizedRequest(t, handler, principal)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Contains(t, body.Message, "cancelled")
	})
}

/*
TestRequireFeature checks tier-based feature gating, including the denial
of higher-tier features to lower tiers.
*/
func TestRequireFeature(t *testing.T) {
	handler := RequireFeature(sec.FeatureDetailedReport)(okHandler)

	tests := []struct {
		name       string
		principal  *sec.Principal
		wantStatus int
	}{
		{"unauthenticated", nil, http.StatusUnauthorized},
		{"bronze_denied", &sec.Principal{
			UserID: "u", IsActive: true, Subscription: activeSubscription(sec.TierBronze),
		}, http.StatusForbidden},
		{"silver_granted", &sec.Principal{
			UserID: "u", IsActive: true, Subscription: activeSubscription(sec.TierSilver),
		}, http.StatusOK},
		{"gold_granted", &sec.Principal{
			UserID: "u", IsActive: true, Subscription: activeSubscription(sec.TierGold),
		}, http.StatusOK},
		{"expired_silver_denied", &sec.Principal{
			UserID: "u", IsActive: true, Subscription: &sec.Subscription{
				Tier: sec.TierSilver, Status: sec.StatusActive,
				CurrentPeriodEnd: time.Now().Add(-time.Hour),
			},
		}, http.StatusForbidden},
		{"no_subscription_denied", &sec.Principal{UserID: "u", IsActive: true}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doAuthorizedRequest(t, handler, tt.principal)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

/*
TestRequireAdmin checks the allow-list gate with case-insensitive matching.
*/
func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin([]string{"Admin@ColorPro.app", " ops@colorpro.app "})(okHandler)

	tests := []struct {
		name       string
		principal  *sec.Principal
		wantStatus int
	}{
		{"unauthenticated", nil, http.StatusUnauthorized},
		{"listed", &sec.Principal{UserID: "u", Email: "admin@colorpro.app", IsActive: true}, http.StatusOK},
		{"listed_trimmed", &sec.Principal{UserID: "u", Email: "ops@colorpro.app", IsActive: true}, http.StatusOK},
		{"unlisted", &sec.Principal{UserID: "u", Email: "user@colorpro.app", IsActive: true}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doAuthorizedRequest(t, handler, tt.principal)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
