// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingHandler simulates a login endpoint rejecting every credential.
var failingHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusUnauthorized)
})

// succeedingHandler simulates a login endpoint accepting every credential.
var succeedingHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func doRequest(t *testing.T, handler http.Handler, ip string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	request.Header.Set("X-Real-IP", ip)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestAuthAttemptLimiter_LocksAfterBudget verifies that the budget's worth of
failures pass through and the next attempt is rejected with 429 before the
handler runs.
*/
func TestAuthAttemptLimiter_LocksAfterBudget(t *testing.T) {
	limiter := NewAuthAttemptLimiter(5, 15*time.Minute)
	handler := limiter.Handler(failingHandler)

	for i := 0; i < 5; i++ {
		recorder := doRequest(t, handler, "10.0.0.1")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "attempt %d should reach the handler", i+1)
	}

	recorder := doRequest(t, handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("Retry-After"))
}

/*
TestAuthAttemptLimiter_SuccessNotCounted verifies only 401 responses count
against the budget.
*/
func TestAuthAttemptLimiter_SuccessNotCounted(t *testing.T) {
	limiter := NewAuthAttemptLimiter(2, 15*time.Minute)
	handler := limiter.Handler(succeedingHandler)

	for i := 0; i < 10; i++ {
		recorder := doRequest(t, handler, "10.0.0.1")
		assert.Equal(t, http.StatusOK, recorder.Code)
	}
}

/*
TestAuthAttemptLimiter_PerIP verifies one client's lockout never affects
another client.
*/
func TestAuthAttemptLimiter_PerIP(t *testing.T) {
	limiter := NewAuthAttemptLimiter(2, 15*time.Minute)
	handler := limiter.Handler(failingHandler)

	doRequest(t, handler, "10.0.0.1")
	doRequest(t, handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "10.0.0.1").Code)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, handler, "10.0.0.2").Code)
}

/*
TestAuthAttemptLimiter_WindowReset verifies the counter resets once the
window elapses, using an injected clock.
*/
func TestAuthAttemptLimiter_WindowReset(t *testing.T) {
	current := time.Now()
	limiter := NewAuthAttemptLimiter(2, 15*time.Minute)
	limiter.now = func() time.Time { return current }

	handler := limiter.Handler(failingHandler)

	doRequest(t, handler, "10.0.0.1")
	doRequest(t, handler, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "10.0.0.1").Code)

	// Advance past the window: the budget is fresh again.
	current = current.Add(15*time.Minute + time.Second)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, handler, "10.0.0.1").Code)
}

/*
TestAuthAttemptLimiter_RetryAfterShrinks verifies the retry hint reflects
the remaining window time.
*/
func TestAuthAttemptLimiter_RetryAfterShrinks(t *testing.T) {
	current := time.Now()
	limiter := NewAuthAttemptLimiter(1, 10*time.Minute)
	limiter.now = func() time.Time { return current }

	handler := limiter.Handler(failingHandler)
	doRequest(t, handler, "10.0.0.1")

	first := doRequest(t, handler, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, first.Code)
	assert.Equal(t, "600", first.Header().Get("Retry-After"))

	current = current.Add(9 * time.Minute)
	second := doRequest(t, handler, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
