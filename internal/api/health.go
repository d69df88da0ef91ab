// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package api

import (
	"net/http"
	"time"

	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/respond"
)

// NewHealthHandler creates the GET /health http.HandlerFunc.
//
// The probe reports process identity only; it deliberately avoids touching
// dependencies so orchestrators never restart the process because a
// downstream system is slow.
func NewHealthHandler(environment string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		respond.OK(writer, map[string]string{
			"status":      "ok",
			"message":     "ColorPro API is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": environment,
			"version":     constants.AppVersion,
		})
	}
}
