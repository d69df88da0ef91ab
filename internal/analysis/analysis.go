// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package analysis implements the color-analysis consultation domain.

A ColorAnalysis record tracks one consultation through its lifecycle:
created empty, populated with up to four photos, submitted to the external
analysis engine, and finally holding the computed results.

# Architecture

  - Entities: ColorAnalysis, Results (engine output).
  - Analyzer: HTTP client for the external color-analysis engine.
  - Storage: Postgres with JSONB columns for photos and results.
*/
package analysis

import (
	"context"
	"time"

	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Domain Entities

// Status enumerates the lifecycle states of a consultation.
type Status string

const (
	StatusPending    Status = "pending"    // Created, awaiting photos.
	StatusProcessing Status = "processing" // Submitted to the analysis engine.
	StatusCompleted  Status = "completed"  // Results available.
	StatusFailed     Status = "failed"     // Engine rejected or errored.
)

// Photo records one uploaded consultation photo by slot.
type Photo struct {
	Slot       string `json:"slot"`
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// PaletteColor is one recommended color in the personal palette.
type PaletteColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Results is the engine's verdict for a consultation.
type Results struct {
	Season          string         `json:"season"`    // e.g. "deep_winter"
	Undertone       string         `json:"undertone"` // "warm", "cool", "neutral"
	Confidence      float64        `json:"confidence"`
	Palette         []PaletteColor `json:"palette"`
	AvoidColors     []PaletteColor `json:"avoid_colors,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// ColorAnalysis is one consultation owned by a user.
type ColorAnalysis struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	Photos      []Photo    `json:"photos"`
	Results     *Results   `json:"results,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldNotes    = "notes"
	FieldAnalysis = "analysis"
	FieldID       = "id"
)

// # Repository Contract

// Repository defines the persistence contract for consultations.
type Repository interface {

	/*
		Create persists a new consultation record.

		Parameters:
		  - context: context.Context
		  - record: *ColorAnalysis

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, record *ColorAnalysis) error

	/*
		FindByID returns a consultation by primary key.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *ColorAnalysis: Hydrated record
		  - error: Retrieval failures
	*/
	FindByID(context context.Context, id string) (*ColorAnalysis, error)

	/*
		ListByUser returns a page of the user's consultations, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []*ColorAnalysis: Page of records
		  - int: Total record count for the user
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string, params pagination.Params) ([]*ColorAnalysis, int, error)

	/*
		Update persists status, photos, and results changes.

		Parameters:
		  - context: context.Context
		  - record: *ColorAnalysis

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, record *ColorAnalysis) error

	/*
		Delete removes a consultation record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}
