// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colorpro/colorpro/internal/platform/constants"
	"github.com/colorpro/colorpro/internal/platform/middleware"
	requestutil "github.com/colorpro/colorpro/internal/platform/request"
	"github.com/colorpro/colorpro/internal/platform/respond"
	"github.com/colorpro/colorpro/internal/platform/validate"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/internal/users/auth"
)

// # Definitions & Constructors

// Handler implements profile and security settings HTTP endpoints.
type Handler struct {
	accountService *Service
	uploads        *upload.Processor
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, uploads *upload.Processor) *Handler {
	return &Handler{accountService: service, uploads: uploads}
}

// Routes returns a [chi.Router] with profile management routes.
// Every route requires an authenticated principal.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/profile", handler.getProfile)
	router.Put("/profile", handler.updateProfile)
	router.Post("/profile/image", handler.uploadProfileImage)
	router.Put("/password", handler.changePassword)
	router.Delete("/account", handler.deleteAccount)

	return router
}

// # Request Payloads

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Language *string `json:"language"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
GetProfile returns the authenticated user's private profile.

GET /api/v1/users/profile

Response:
  - 200: User: The full profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateProfile applies partial changes to the authenticated user's profile.

PUT /api/v1/users/profile

Request:
  - Body: updateProfileRequest (Name?, Language?)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(auth.FieldName, *input.Name).MinLen(auth.FieldName, *input.Name, 3)
	}
	if input.Language != nil {
		validator.OneOf(auth.FieldLanguage, *input.Language, constants.SupportedLanguages...)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), principal.UserID, UpdateProfileInput{
		Name:     input.Name,
		Language: input.Language,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UploadProfileImage replaces the authenticated user's profile image.

POST /api/v1/users/profile/image

Description: Accepts one multipart file under the "image" field, validates
type, size, and dimensions, stores it, and swaps it onto the profile.

Request:
  - Multipart: image (single file)

Response:
  - 200: User: Profile with the new image URL
  - 400: ErrBadRequest: Missing file, disallowed type, or too large
*/
func (handler *Handler) uploadProfileImage(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	descriptor, err := handler.uploads.Single(
		request.Context(), request, "image", constants.UploadCategoryProfiles, principal.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.SetProfileImage(request.Context(), principal.UserID, descriptor)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ChangePassword updates the authenticated user's password.

PUT /api/v1/users/password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Current password wrong
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("current_password", input.CurrentPassword).
		Required("new_password", input.NewPassword).
		MinLen("new_password", input.NewPassword, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.accountService.ChangePassword(
		request.Context(), principal.UserID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OKMessage(writer, "Password changed successfully")
}

/*
DeleteAccount closes the authenticated user's account.

DELETE /api/v1/users/account

Response:
  - 204: No Content: Account closed
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), principal.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
