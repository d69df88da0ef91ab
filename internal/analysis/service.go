// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package analysis

import (
	"context"
	"time"

	"github.com/colorpro/colorpro/internal/mailer"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/ctxutil"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/pkg/pagination"
	"github.com/colorpro/colorpro/pkg/uuid"
)

// # Service Layer

// Service orchestrates the consultation lifecycle.
type Service struct {
	repository Repository
	analyzer   Analyzer
	uploads    *upload.Processor
	mail       mailer.Mailer
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, analyzer Analyzer, uploads *upload.Processor, mail mailer.Mailer) *Service {
	return &Service{
		repository: repository,
		analyzer:   analyzer,
		uploads:    uploads,
		mail:       mail,
	}
}

// # Consultation Lifecycle

/*
Create opens a new pending consultation for the user.

Parameters:
  - context: context.Context
  - userID: string
  - notes: string (optional client context for the stylist)

Returns:
  - *ColorAnalysis: The created record
  - error: Persistence failures
*/
func (service *Service) Create(context context.Context, userID, notes string) (*ColorAnalysis, error) {
	record := &ColorAnalysis{
		ID:     uuid.New(),
		UserID: userID,
		Status: StatusPending,
		Notes:  notes,
		Photos: []Photo{},
	}

	if err := service.repository.Create(context, record); err != nil {
		return nil, err
	}

	return record, nil
}

/*
AttachPhotos records uploaded photos on a consultation and runs the engine.

Description: Stores the descriptors, flips the record to processing, calls
the analysis engine synchronously, and persists the verdict. Engine failure
marks the record failed rather than losing the photos; the client can
retry by re-posting photos.

Parameters:
  - context: context.Context
  - principal: *sec.Principal (ownership check)
  - analysisID: string
  - descriptors: []*upload.Descriptor (already stored by the upload pipeline)

Returns:
  - *ColorAnalysis: The record with results when the engine succeeds
  - error: Not found, Forbidden, or persistence failures
*/
func (service *Service) AttachPhotos(context context.Context, principal *sec.Principal, analysisID string, descriptors []*upload.Descriptor) (*ColorAnalysis, error) {
	record, err := service.ownedRecord(context, principal, analysisID)
	if err != nil {
		return nil, err
	}

	if record.Status == StatusProcessing {
		return nil, apperr.Conflict("Analysis is already being processed")
	}

	photos := make([]Photo, 0, len(descriptors))
	for _, descriptor := range descriptors {
		photo := Photo{
			Slot:       descriptor.FieldName,
			StorageKey: descriptor.StorageKey,
			URL:        descriptor.URL,
		}
		if descriptor.Metadata != nil {
			photo.Width = descriptor.Metadata.Width
			photo.Height = descriptor.Metadata.Height
		}
		photos = append(photos, photo)
	}

	record.Photos = photos
	record.Status = StatusProcessing
	record.Results = nil
	record.CompletedAt = nil

	if err := service.repository.Update(context, record); err != nil {
		return nil, err
	}

	results, err := service.analyzer.Analyze(context, record.Photos)
	if err != nil {
		record.Status = StatusFailed
		if updateErr := service.repository.Update(context, record); updateErr != nil {
			ctxutil.GetLogger(context).Error("analysis_fail_state_persist_failed",
				"analysis_id", record.ID, "error", updateErr)
		}
		return nil, err
	}

	now := time.Now()
	record.Status = StatusCompleted
	record.Results = results
	record.CompletedAt = &now

	if err := service.repository.Update(context, record); err != nil {
		return nil, err
	}

	if err := service.mail.SendAnalysisComplete(context, principal.Email, principal.Name, record.ID); err != nil {
		ctxutil.GetLogger(context).Warn("analysis_email_failed", "analysis_id", record.ID, "error", err)
	}

	return record, nil
}

/*
Get returns one consultation owned by the principal.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - analysisID: string

Returns:
  - *ColorAnalysis: The record
  - error: Not found or Forbidden
*/
func (service *Service) Get(context context.Context, principal *sec.Principal, analysisID string) (*ColorAnalysis, error) {
	return service.ownedRecord(context, principal, analysisID)
}

/*
List returns a page of the principal's consultations, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - params: pagination.Params

Returns:
  - []*ColorAnalysis: Page of records
  - pagination.Meta: Paging metadata
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string, params pagination.Params) ([]*ColorAnalysis, pagination.Meta, error) {
	records, total, err := service.repository.ListByUser(context, userID, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return records, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Report describes the full consultation verdict for subscribers whose
// tier includes detailed reports.
type Report struct {
	AnalysisID      string         `json:"analysis_id"`
	Season          string         `json:"season"`
	Undertone       string         `json:"undertone"`
	Confidence      float64        `json:"confidence"`
	Palette         []PaletteColor `json:"palette"`
	AvoidColors     []PaletteColor `json:"avoid_colors"`
	Recommendations []string       `json:"recommendations"`
	CompletedAt     *time.Time     `json:"completed_at"`
}

/*
BuildReport assembles the detailed report for a completed consultation.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - analysisID: string

Returns:
  - *Report: The detailed verdict
  - error: Not found, Forbidden, or BadRequest when not completed
*/
func (service *Service) BuildReport(context context.Context, principal *sec.Principal, analysisID string) (*Report, error) {
	record, err := service.ownedRecord(context, principal, analysisID)
	if err != nil {
		return nil, err
	}

	if record.Status != StatusCompleted || record.Results == nil {
		return nil, apperr.BadRequest("Analysis is not completed yet")
	}

	return &Report{
		AnalysisID:      record.ID,
		Season:          record.Results.Season,
		Undertone:       record.Results.Undertone,
		Confidence:      record.Results.Confidence,
		Palette:         record.Results.Palette,
		AvoidColors:     record.Results.AvoidColors,
		Recommendations: record.Results.Recommendations,
		CompletedAt:     record.CompletedAt,
	}, nil
}

/*
Delete removes a consultation and its stored photos.

Description: Photo objects are removed best-effort after the row; an
orphaned object is preferable to a dangling record.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - analysisID: string

Returns:
  - error: Not found, Forbidden, or persistence failures
*/
func (service *Service) Delete(context context.Context, principal *sec.Principal, analysisID string) error {
	record, err := service.ownedRecord(context, principal, analysisID)
	if err != nil {
		return err
	}

	if err := service.repository.Delete(context, record.ID); err != nil {
		return err
	}

	for _, photo := range record.Photos {
		if err := service.uploads.Remove(context, photo.StorageKey); err != nil {
			ctxutil.GetLogger(context).Warn("analysis_photo_cleanup_failed",
				"analysis_id", record.ID, "key", photo.StorageKey, "error", err)
		}
	}

	return nil
}

// ownedRecord loads a consultation and enforces ownership.
func (service *Service) ownedRecord(context context.Context, principal *sec.Principal, analysisID string) (*ColorAnalysis, error) {
	record, err := service.repository.FindByID(context, analysisID)
	if err != nil {
		return nil, err
	}
	if record.UserID != principal.UserID {
		return nil, apperr.Forbidden("You do not have access to this analysis")
	}
	return record, nil
}
