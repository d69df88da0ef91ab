// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/colorpro/colorpro/internal/platform/apperr"
)

// Analyzer computes color-analysis results for a set of photos.
//
// The production implementation is an HTTP client for the external ML
// engine; tests substitute a canned implementation.
type Analyzer interface {
	// Analyze submits the photo URLs and returns the engine's verdict.
	Analyze(ctx context.Context, photos []Photo) (*Results, error)
}

// engineTimeout bounds one analysis round-trip. The engine does real
// inference work, so this is generous compared to plain CRUD calls.
const engineTimeout = 45 * time.Second

// HTTPAnalyzer calls the external color-analysis engine over HTTP.
type HTTPAnalyzer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAnalyzer creates an analyzer targeting the engine at baseURL.
func NewHTTPAnalyzer(baseURL string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: engineTimeout},
	}
}

type analyzeRequest struct {
	Photos []analyzePhoto `json:"photos"`
}

type analyzePhoto struct {
	Slot string `json:"slot"`
	URL  string `json:"url"`
}

/*
Analyze submits the photo URLs and returns the engine's verdict.

Description: POSTs to {baseURL}/v1/analyze. The engine fetches the photos
through their signed URLs, so no image bytes cross this hop.

Parameters:
  - ctx: context.Context
  - photos: []Photo (signed URLs)

Returns:
  - *Results: Engine verdict
  - error: apperr.Unavailable on connectivity failure, Internal otherwise
*/
func (a *HTTPAnalyzer) Analyze(ctx context.Context, photos []Photo) (*Results, error) {
	payload := analyzeRequest{Photos: make([]analyzePhoto, 0, len(photos))}
	for _, photo := range photos {
		payload.Photos = append(payload.Photos, analyzePhoto{Slot: photo.Slot, URL: photo.URL})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("analyzer_marshal_failed: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("analyzer_request_failed: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := a.client.Do(request)
	if err != nil {
		return nil, apperr.Unavailable("Analysis service is temporarily unavailable")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, apperr.Internal(fmt.Errorf("analyzer returned status %d", response.StatusCode))
	}

	var results Results
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		return nil, apperr.Internal(fmt.Errorf("analyzer_decode_failed: %w", err))
	}

	return &results, nil
}
