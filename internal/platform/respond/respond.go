// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) across the entire
// application follows a strict, predictable JSON envelope:
//
//	{success, message?, data?, errors?, meta?}
//
// It is also the single terminal point where error responses are
// constructed: middleware and services forward classified errors here and
// never write error bodies themselves.
package respond

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// development switches error shaping between full-detail (debugging) and
// production (operational messages only). Set exactly once at startup.
var development atomic.Bool

// SetDevelopmentMode configures error shaping for the process. Development
// responses include causes and stack traces and must never run in production.
func SetDevelopmentMode(enabled bool) {
	development.Store(enabled)
}

// Envelope is the uniform JSON shape of all non-webhook API responses.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Meta    *pagination.Meta    `json:"meta,omitempty"`
}

// developmentEnvelope extends the envelope with debugging fields. It is
// only ever emitted in development mode.
type developmentEnvelope struct {
	Envelope
	Status string `json:"status"`
	Cause  string `json:"cause,omitempty"`
	Stack  string `json:"stack,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMessage writes a 200 OK response carrying only a message.
func OKMessage(writer http.ResponseWriter, message string) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Message: message})
}

// Created writes a 201 Created response with data wrapped in the standard envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, data any, meta pagination.Meta) {
	JSON(writer, http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into the standardized JSON error response.
//
// # Contract
//
// Every error is logged exactly once, unconditionally, with request context
// (method, URL, client IP, user agent) before response shaping. Shaping
// depends on the process mode:
//
//   - Development: full object including status string, cause, and a stack
//     snapshot of the responding goroutine.
//   - Production: operational errors return their message and field errors;
//     non-operational errors return a fixed generic 500 body and the full
//     original error stays server-side.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		// Unclassified failure: default to a non-operational 500.
		appError = apperr.Internal(err)
	}

	logError(request, appError)

	if appError.RetryAfter > 0 {
		// Give clients a machine-readable retry hint alongside the body.
		writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(appError.RetryAfter))
	}

	if development.Load() {
		JSON(writer, appError.HTTPStatus, developmentEnvelope{
			Envelope: Envelope{
				Success: false,
				Message: appError.Message,
				Errors:  appError.Details,
			},
			Status: appError.StatusString(),
			Cause:  causeString(appError),
			Stack:  stackSnapshot(),
		})
		return
	}

	if appError.Operational {
		JSON(writer, appError.HTTPStatus, Envelope{
			Success: false,
			Message: appError.Message,
			Errors:  appError.Details,
		})
		return
	}

	// Non-operational: never leak internals to the client.
	JSON(writer, http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "Something went wrong!",
	})
}

// logError emits the single unconditional log entry for a classified error.
func logError(request *http.Request, appError *apperr.AppError) {
	logger := ctxutil.GetLogger(request.Context())

	level := slog.LevelWarn
	if appError.HTTPStatus >= 500 || !appError.Operational {
		level = slog.LevelError
	}
	if appError.Code == "VALIDATION_ERROR" {
		// Field-level validation noise is a debug trace, not an incident.
		level = slog.LevelDebug
	}

	attrs := []any{
		slog.String("code", appError.Code),
		slog.Int("status", appError.HTTPStatus),
		slog.String("message", appError.Message),
		slog.String("method", request.Method),
		slog.String("url", request.URL.String()),
		slog.String("ip", clientIP(request)),
		slog.String("user_agent", request.UserAgent()),
		slog.Bool("operational", appError.Operational),
	}
	if appError.Cause != nil {
		attrs = append(attrs, slog.String("cause", appError.Cause.Error()))
	}

	logger.Log(request.Context(), level, "request_error", attrs...)
}

// causeString renders the wrapped cause for development responses.
func causeString(appError *apperr.AppError) string {
	if appError.Cause == nil {
		return ""
	}
	return appError.Cause.Error()
}

// stackSnapshot captures the current goroutine stack for development output.
func stackSnapshot() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// clientIP extracts the client address, respecting common proxy headers.
// Duplicated from the middleware layer to avoid an import cycle.
func clientIP(request *http.Request) string {
	if ip := request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if forwarded := request.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return host
}
