// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/constants"
)

// LimitCode identifies which multipart limit a rejected upload violated.
// Parsing failures are converted into one of these at the boundary so the
// error normalizer switches on a closed set instead of sniffing messages.
type LimitCode string

const (
	LimitFileSize        LimitCode = "LIMIT_FILE_SIZE"
	LimitFileCount       LimitCode = "LIMIT_FILE_COUNT"
	LimitFieldNameLen    LimitCode = "LIMIT_FIELD_NAME"
	LimitFieldValueLen   LimitCode = "LIMIT_FIELD_VALUE"
	LimitFieldCount      LimitCode = "LIMIT_FIELD_COUNT"
	LimitUnexpectedField LimitCode = "LIMIT_UNEXPECTED_FILE"
	LimitPartCount       LimitCode = "LIMIT_PART_COUNT"
)

// limitMessages is the fixed response-message table per violated limit.
var limitMessages = map[LimitCode]string{
	LimitFileSize:        "File too large",
	LimitFileCount:       "Too many files",
	LimitFieldNameLen:    "Field name too long",
	LimitFieldValueLen:   "Field value too long",
	LimitFieldCount:      "Too many fields",
	LimitUnexpectedField: "Unexpected file field",
	LimitPartCount:       "Too many parts",
}

// WrapLimit converts a limit violation into an operational 400.
// Unrecognized codes get the generic upload failure message.
func WrapLimit(code LimitCode) *apperr.AppError {
	message, ok := limitMessages[code]
	if !ok {
		message = "File upload error"
	}
	err := apperr.BadRequest(message)
	err.Code = string(code)
	return err
}

// ImageMetadata carries the decoded properties of an accepted image.
type ImageMetadata struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Descriptor describes one accepted and stored upload. Rejected files never
// produce a descriptor; they short-circuit the request with a classified error.
type Descriptor struct {
	FieldName    string         `json:"field_name"`
	OriginalName string         `json:"original_name"`
	MimeType     string         `json:"mime_type"`
	SizeBytes    int64          `json:"size_bytes"`
	StorageKey   string         `json:"storage_key"`
	URL          string         `json:"url"`
	Metadata     *ImageMetadata `json:"metadata,omitempty"`
}

// Processor validates incoming multipart files and writes accepted ones to
// the configured backend. Validation happens entirely in memory before any
// storage call.
type Processor struct {
	backend      Backend
	maxBytes     int64
	allowedMime  map[string]struct{}
	checkMinDims bool
	resize       *ResizeSpec
}

// Option tunes a Processor.
type Option func(*Processor)

// WithMetadataValidation enables the image dimension floor check and
// attaches decoded metadata to descriptors.
func WithMetadataValidation() Option {
	return func(p *Processor) { p.checkMinDims = true }
}

// WithResize enables bounding-box resize and re-encode of accepted images.
func WithResize(spec ResizeSpec) Option {
	return func(p *Processor) { p.resize = &spec }
}

// NewProcessor builds an upload processor.
//
// Parameters:
//   - backend: Where accepted files are written
//   - maxBytes: Per-file size ceiling
//   - allowedMimeTypes: MIME allow-list, e.g. ["image/jpeg", "image/png"]
func NewProcessor(backend Backend, maxBytes int64, allowedMimeTypes []string, opts ...Option) *Processor {
	allowed := make(map[string]struct{}, len(allowedMimeTypes))
	for _, mimeType := range allowedMimeTypes {
		allowed[strings.ToLower(strings.TrimSpace(mimeType))] = struct{}{}
	}

	processor := &Processor{
		backend:     backend,
		maxBytes:    maxBytes,
		allowedMime: allowed,
	}
	for _, opt := range opts {
		opt(processor)
	}
	return processor
}

// Single reads, validates, and stores the one file expected under fieldName.
//
// Returns:
//   - *Descriptor: The stored file's descriptor
//   - error: Classified *apperr.AppError on any rejection
func (p *Processor) Single(ctx context.Context, request *http.Request, fieldName, category, ownerID string) (*Descriptor, error) {
	if err := p.parseForm(request); err != nil {
		return nil, err
	}

	files := request.MultipartForm.File[fieldName]
	if len(files) == 0 {
		return nil, apperr.BadRequest(fmt.Sprintf("File field '%s' is required", fieldName))
	}
	if len(files) > 1 {
		return nil, WrapLimit(LimitFileCount)
	}

	if err := p.rejectUnexpected(request, []string{fieldName}); err != nil {
		return nil, err
	}

	return p.accept(ctx, files[0], fieldName, category, ownerID)
}

// Slots reads up to one file per named slot. At least one slot must be
// populated. Used by the analysis-photo uploader.
func (p *Processor) Slots(ctx context.Context, request *http.Request, slots []string, category, ownerID string) ([]*Descriptor, error) {
	if err := p.parseForm(request); err != nil {
		return nil, err
	}

	if err := p.rejectUnexpected(request, slots); err != nil {
		return nil, err
	}

	var descriptors []*Descriptor
	for _, slot := range slots {
		files := request.MultipartForm.File[slot]
		if len(files) == 0 {
			continue
		}
		if len(files) > 1 {
			return nil, WrapLimit(LimitFileCount)
		}

		descriptor, err := p.accept(ctx, files[0], slot, category, ownerID)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, descriptor)
	}

	if len(descriptors) == 0 {
		return nil, apperr.BadRequest("At least one photo is required for analysis")
	}
	return descriptors, nil
}

// parseForm parses the multipart body with a ceiling slightly above the
// per-file limit so oversize files are detected by our own check rather
// than an opaque parser failure. The ceiling is enforced on the wire via
// [http.MaxBytesReader] so an oversize body stops streaming at the cap
// instead of being read to completion first.
func (p *Processor) parseForm(request *http.Request) error {
	formCeiling := p.maxBytes*int64(len(constants.AnalysisPhotoSlots)) + (1 << 20)
	request.Body = http.MaxBytesReader(nil, request.Body, formCeiling)
	if err := request.ParseMultipartForm(formCeiling); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return WrapLimit(LimitFileSize)
		}
		return apperr.BadRequest("Invalid multipart form data")
	}
	return nil
}

// rejectUnexpected fails the request if a file arrived under a field name
// outside the expected set.
func (p *Processor) rejectUnexpected(request *http.Request, expected []string) error {
	allowed := make(map[string]struct{}, len(expected))
	for _, name := range expected {
		allowed[name] = struct{}{}
	}
	for fieldName := range request.MultipartForm.File {
		if _, ok := allowed[fieldName]; !ok {
			return WrapLimit(LimitUnexpectedField)
		}
	}
	return nil
}

// accept runs the filter stage and, only if every check passes, writes the
// file to the backend.
func (p *Processor) accept(ctx context.Context, header *multipart.FileHeader, fieldName, category, ownerID string) (*Descriptor, error) {
	if header.Size > p.maxBytes {
		return nil, WrapLimit(LimitFileSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("open multipart file %q: %w", fieldName, err))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, p.maxBytes+1))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("read multipart file %q: %w", fieldName, err))
	}
	if int64(len(content)) > p.maxBytes {
		return nil, WrapLimit(LimitFileSize)
	}

	mimeType := p.detectMime(header, content)
	if _, ok := p.allowedMime[mimeType]; !ok {
		return nil, apperr.BadRequest(fmt.Sprintf("File type '%s' is not allowed", mimeType))
	}

	var metadata *ImageMetadata
	if p.checkMinDims || p.resize != nil {
		metadata, err = inspectImage(content)
		if err != nil {
			return nil, err
		}
		if p.checkMinDims && (metadata.Width < constants.MinImageDimension || metadata.Height < constants.MinImageDimension) {
			return nil, apperr.BadRequest(fmt.Sprintf(
				"Image must be at least %dx%d pixels", constants.MinImageDimension, constants.MinImageDimension))
		}
	}

	key := ObjectKey(category, ownerID, header.Filename)
	stored, err := p.backend.Put(ctx, key, bytes.NewReader(content), int64(len(content)), mimeType)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("store upload %q: %w", key, err))
	}

	descriptor := &Descriptor{
		FieldName:    fieldName,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		SizeBytes:    stored.Size,
		StorageKey:   stored.Key,
		URL:          stored.URL,
		Metadata:     metadata,
	}

	if p.resize != nil {
		if err := p.applyResize(ctx, descriptor, content); err != nil {
			return nil, err
		}
	}

	if descriptor.URL == "" {
		signed, err := p.backend.SignedURL(ctx, descriptor.StorageKey, constants.SignedURLTTL)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("sign url for %q: %w", descriptor.StorageKey, err))
		}
		descriptor.URL = signed
	}

	return descriptor, nil
}

// applyResize transforms the stored image and overwrites the same key, so
// the object stays a single logical file.
func (p *Processor) applyResize(ctx context.Context, descriptor *Descriptor, content []byte) error {
	transformed, metadata, err := resizeToBoundingBox(content, *p.resize)
	if err != nil {
		return err
	}
	if transformed == nil {
		return nil // already within bounds, nothing to rewrite
	}

	stored, err := p.backend.Put(ctx, descriptor.StorageKey, bytes.NewReader(transformed), int64(len(transformed)), "image/jpeg")
	if err != nil {
		return apperr.Internal(fmt.Errorf("store transformed %q: %w", descriptor.StorageKey, err))
	}

	descriptor.MimeType = "image/jpeg"
	descriptor.SizeBytes = stored.Size
	descriptor.Metadata = metadata
	return nil
}

// detectMime prefers content sniffing over the client-declared header.
func (p *Processor) detectMime(header *multipart.FileHeader, content []byte) string {
	sniffed := http.DetectContentType(content)
	if sniffed != "application/octet-stream" {
		return strings.ToLower(strings.Split(sniffed, ";")[0])
	}
	declared := header.Header.Get("Content-Type")
	return strings.ToLower(strings.Split(declared, ";")[0])
}

// SignedURL re-signs a stored key for read access.
func (p *Processor) SignedURL(ctx context.Context, key string) (string, error) {
	return p.backend.SignedURL(ctx, key, constants.SignedURLTTL)
}

// Remove deletes a stored object, tolerating absence.
func (p *Processor) Remove(ctx context.Context, key string) error {
	return p.backend.Remove(ctx, key)
}
