// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package apperr defines the centralized error handling framework for ColorPro.

It provides a rich error type that bridges the gap between low-level
collaborator failures (storage driver, token verifier, upload pipeline,
payment gateway) and high-level HTTP responses.

Architecture:

  - AppError: A struct carrying HTTP status, machine-readable code,
    client-safe message, and per-field validation details.
  - Operational flag: distinguishes expected failures (message safe to
    return verbatim) from programming/dependency faults (message suppressed
    in production, full detail logged server-side).
  - Boundary conversion: every external collaborator's call site converts
    its native failure into an AppError (see dberr, upload, payment), so
    the terminal responder switches on one closed type instead of
    duck-typing ad hoc error shapes.

Every error that leaves a service or middleware should be wrapped as an
[AppError] to ensure consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the ColorPro API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to
// clients to avoid leaking internal implementation details (SQL text,
// gateway payloads, verifier internals).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "UPLOAD_ERROR").
	Code string `json:"code"`
	// Message is a human-readable description. Safe for clients only when
	// Operational is true.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Operational marks errors whose message may be returned to the client
	// verbatim. Non-operational errors are masked in production.
	Operational bool `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors, in rule declaration order.
	Details []FieldError `json:"errors,omitempty"`
	// RetryAfter is the client back-off hint in seconds, set on 429 responses.
	RetryAfter int `json:"-"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
	// Value is the offending input value, when it is safe to echo back.
	Value any `json:"value,omitempty"`
}

// Error implements the error interface. It returns the message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// StatusString derives the response status label: "fail" for 4xx,
// "error" otherwise.
func (e *AppError) StatusString() string {
	if e.HTTPStatus >= 400 && e.HTTPStatus < 500 {
		return "fail"
	}
	return "error"
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Analysis") // Returns "Analysis not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:        "NOT_FOUND",
		Message:     resource + " not found",
		HTTPStatus:  http.StatusNotFound,
		Operational: true,
	}
}

// NotFoundRoute creates the synthesized 404 for unmatched routes.
func NotFoundRoute(path string) *AppError {
	return &AppError{
		Code:        "ROUTE_NOT_FOUND",
		Message:     fmt.Sprintf("Route %s not found", path),
		HTTPStatus:  http.StatusNotFound,
		Operational: true,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:        "UNAUTHORIZED",
		Message:     msg,
		HTTPStatus:  http.StatusUnauthorized,
		Operational: true,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:        "FORBIDDEN",
		Message:     msg,
		HTTPStatus:  http.StatusForbidden,
		Operational: true,
	}
}

// Conflict creates a 409 [AppError] for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Code:        "CONFLICT",
		Message:     msg,
		HTTPStatus:  http.StatusConflict,
		Operational: true,
	}
}

// BadRequest creates a generic 400 [AppError].
func BadRequest(msg string) *AppError {
	return &AppError{
		Code:        "BAD_REQUEST",
		Message:     msg,
		HTTPStatus:  http.StatusBadRequest,
		Operational: true,
	}
}

// Validation creates a 400 [AppError] with per-field details. The top-level
// message is fixed so that clients key off the details slice.
func Validation(details ...FieldError) *AppError {
	return &AppError{
		Code:        "VALIDATION_ERROR",
		Message:     "Validation failed",
		HTTPStatus:  http.StatusBadRequest,
		Operational: true,
		Details:     details,
	}
}

// RateLimited creates a 429 [AppError] carrying the retry hint.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:        "RATE_LIMITED",
		Message:     fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus:  http.StatusTooManyRequests,
		Operational: true,
		RetryAfter:  retryAfterSeconds,
	}
}

// # Server Errors (5xx)

// Internal creates a non-operational 500 [AppError] wrapping an unexpected
// server-side error. The cause is stored for logging but is never sent to
// the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Something went wrong!",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Unavailable creates a 503 [AppError] for unreachable dependencies.
func Unavailable(msg string) *AppError {
	return &AppError{
		Code:        "SERVICE_UNAVAILABLE",
		Message:     msg,
		HTTPStatus:  http.StatusServiceUnavailable,
		Operational: true,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
