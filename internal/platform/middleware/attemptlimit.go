// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/respond"
)

// attemptState tracks failed authentications for one client IP inside the
// current window.
type attemptState struct {
	failedCount   int
	windowResetAt time.Time
}

// AuthAttemptLimiter throttles brute-force credential guessing. It is
// distinct from the general API rate limiter: it counts only FAILED
// authentications (observed as 401 responses after the handler runs), per
// client IP, in a fixed window.
//
// # State
//
// Entries are created lazily on the first failure per window and reset when
// the window elapses. State is process-local and guarded by a mutex;
// handlers run on arbitrary goroutines.
type AuthAttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptState

	maxAttempts int
	window      time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewAuthAttemptLimiter constructs a limiter with the given budget.
func NewAuthAttemptLimiter(maxAttempts int, window time.Duration) *AuthAttemptLimiter {
	return &AuthAttemptLimiter{
		attempts:    make(map[string]*attemptState),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Handler wraps authentication routes.
//
// # Flow
//  1. If the client already exhausted the window's budget, reject with 429
//     and a computed retryAfter. The handler never runs.
//  2. Otherwise run the handler and observe the response status; a 401
//     increments the client's failure count.
//
// The limiter itself performs no authentication.
func (l *AuthAttemptLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		clientIP := RealIP(request)

		if retryAfter, limited := l.check(clientIP); limited {
			respond.Error(writer, request, apperr.RateLimited(retryAfter))
			return
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(recorder, request)

		if recorder.status == http.StatusUnauthorized {
			l.recordFailure(clientIP)
		}
	})
}

// check reports whether the client is currently locked out and, if so, the
// seconds until the window resets.
func (l *AuthAttemptLimiter) check(clientIP string) (retryAfter int, limited bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, found := l.attempts[clientIP]
	if !found {
		return 0, false
	}

	now := l.now()
	if now.After(state.windowResetAt) || now.Equal(state.windowResetAt) {
		// Window elapsed: the counter resets.
		delete(l.attempts, clientIP)
		return 0, false
	}

	if state.failedCount >= l.maxAttempts {
		seconds := int(state.windowResetAt.Sub(now).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return seconds, true
	}

	return 0, false
}

// recordFailure increments the per-IP counter, creating the window entry
// lazily on the first failure.
func (l *AuthAttemptLimiter) recordFailure(clientIP string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, found := l.attempts[clientIP]
	if !found || now.After(state.windowResetAt) {
		l.attempts[clientIP] = &attemptState{
			failedCount:   1,
			windowResetAt: now.Add(l.window),
		}
		return
	}

	state.failedCount++
}
