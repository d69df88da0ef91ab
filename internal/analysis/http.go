// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package analysis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/middleware"
	requestutil "github.com/colorpro/colorpro/internal/platform/request"
	"github.com/colorpro/colorpro/internal/platform/respond"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/platform/validate"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements consultation HTTP endpoints.
type Handler struct {
	analysisService *Service
	uploads         *upload.Processor
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, uploads *upload.Processor) *Handler {
	return &Handler{analysisService: service, uploads: uploads}
}

// Routes returns a [chi.Router] with consultation routes.
//
// # Gates
//   - All routes require authentication.
//   - Creation requires an active subscription.
//   - The detailed report requires the detailed_report tier feature.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.With(middleware.RequireSubscription).Post("/", handler.create)

	router.Route("/{id}", func(r chi.Router) {
		r.Get("/", handler.get)
		r.Post("/photos", handler.uploadPhotos)
		r.With(middleware.RequireFeature(sec.FeatureDetailedReport)).Get("/report", handler.report)
		r.Delete("/", handler.remove)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Notes string `json:"notes"`
}

/*
Create opens a new pending consultation.

POST /api/v1/analysis

Request:
  - Body: createRequest (Notes?)

Response:
  - 201: ColorAnalysis: The created record
  - 403: ErrForbidden: No active subscription
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.MaxLen(FieldNotes, input.Notes, 2000)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.analysisService.Create(request.Context(), principal.UserID, input.Notes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
UploadPhotos attaches consultation photos and runs the analysis engine.

POST /api/v1/analysis/{id}/photos

Description: Accepts up to one file per slot (selfie, full_body,
natural_light, style_inspiration). At least one slot must be populated.
On success the record comes back completed with results.

Request:
  - Multipart: any subset of the four photo slots

Response:
  - 200: ColorAnalysis: Record with engine results
  - 400: ErrBadRequest: No photo, bad type/size, or undersized image
  - 403: ErrForbidden: Record belongs to another user
  - 409: ErrConflict: Record is mid-processing
*/
func (handler *Handler) uploadPhotos(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	analysisID := requestutil.Param(request, FieldID)
	validator := &validate.Validator{}
	validator.UUID(FieldID, analysisID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	descriptors, err := handler.uploads.Slots(
		request.Context(), request, constants.AnalysisPhotoSlots,
		constants.UploadCategoryAnalysis, principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.analysisService.AttachPhotos(request.Context(), principal, analysisID, descriptors)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
List returns a page of the authenticated user's consultations.

GET /api/v1/analysis?page=&limit=

Response:
  - 200: []ColorAnalysis with pagination meta
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	records, meta, err := handler.analysisService.List(request.Context(), principal.UserID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, meta)
}

/*
Get returns one consultation.

GET /api/v1/analysis/{id}

Response:
  - 200: ColorAnalysis
  - 403: ErrForbidden: Record belongs to another user
  - 404: ErrNotFound: Unknown record
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.analysisService.Get(request.Context(), principal, requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
Report returns the detailed verdict for a completed consultation.

GET /api/v1/analysis/{id}/report

Response:
  - 200: Report
  - 400: ErrBadRequest: Analysis not completed yet
  - 403: ErrForbidden: Tier lacks the detailed_report feature
*/
func (handler *Handler) report(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.analysisService.BuildReport(request.Context(), principal, requestutil.Param(request, FieldID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}

/*
Remove deletes a consultation and its stored photos.

DELETE /api/v1/analysis/{id}

Response:
  - 204: No Content
  - 403: ErrForbidden: Record belongs to another user
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.analysisService.Delete(request.Context(), principal, requestutil.Param(request, FieldID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
