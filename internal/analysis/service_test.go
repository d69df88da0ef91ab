// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package analysis_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/analysis"
	"github.com/colorpro/colorpro/internal/mailer"
	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/sec"
	"github.com/colorpro/colorpro/internal/upload"
	"github.com/colorpro/colorpro/pkg/pagination"
)

// # Test Fakes

type fakeRepository struct {
	records map[string]*analysis.ColorAnalysis
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]*analysis.ColorAnalysis)}
}

func (r *fakeRepository) Create(_ context.Context, record *analysis.ColorAnalysis) error {
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeRepository) FindByID(_ context.Context, id string) (*analysis.ColorAnalysis, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, apperr.NotFound("Analysis")
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRepository) ListByUser(_ context.Context, userID string, params pagination.Params) ([]*analysis.ColorAnalysis, int, error) {
	var matched []*analysis.ColorAnalysis
	for _, record := range r.records {
		if record.UserID == userID {
			copied := *record
			matched = append(matched, &copied)
		}
	}
	return matched, len(matched), nil
}

func (r *fakeRepository) Update(_ context.Context, record *analysis.ColorAnalysis) error {
	if _, ok := r.records[record.ID]; !ok {
		return apperr.NotFound("Analysis")
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return apperr.NotFound("Analysis")
	}
	delete(r.records, id)
	return nil
}

// fakeAnalyzer returns a canned verdict or a configured failure.
type fakeAnalyzer struct {
	results *analysis.Results
	err     error
	calls   int
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ []analysis.Photo) (*analysis.Results, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.results, nil
}

type fakeNotifier struct {
	completions []string
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, _, _, _ string) error { return nil }

func (n *fakeNotifier) SendAnalysisComplete(_ context.Context, _, _ string, analysisID string) error {
	n.completions = append(n.completions, analysisID)
	return nil
}

func (n *fakeNotifier) SendWelcome(_ context.Context, _, _ string) error { return nil }

type fakePhotoBackend struct {
	removed []string
}

func (b *fakePhotoBackend) Put(_ context.Context, key string, _ io.Reader, size int64, contentType string) (*upload.Object, error) {
	return &upload.Object{Key: key, URL: "https://cdn.test/" + key, ContentType: contentType, Size: size}, nil
}

func (b *fakePhotoBackend) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.test/" + key, nil
}

func (b *fakePhotoBackend) Remove(_ context.Context, key string) error {
	b.removed = append(b.removed, key)
	return nil
}

var (
	_ analysis.Repository = (*fakeRepository)(nil)
	_ analysis.Analyzer   = (*fakeAnalyzer)(nil)
	_ mailer.Mailer       = (*fakeNotifier)(nil)
	_ upload.Backend      = (*fakePhotoBackend)(nil)
)

// # Fixtures

type serviceFixture struct {
	repository *fakeRepository
	analyzer   *fakeAnalyzer
	notifier   *fakeNotifier
	backend    *fakePhotoBackend
	service    *analysis.Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repository := newFakeRepository()
	analyzer := &fakeAnalyzer{results: deepWinterResults()}
	notifier := &fakeNotifier{}
	backend := &fakePhotoBackend{}
	uploads := upload.NewProcessor(backend, 1<<20, []string{"image/jpeg", "image/png"})

	return &serviceFixture{
		repository: repository,
		analyzer:   analyzer,
		notifier:   notifier,
		backend:    backend,
		service:    analysis.NewService(repository, analyzer, uploads, notifier),
	}
}

func ownerPrincipal() *sec.Principal {
	return &sec.Principal{UserID: "user-1", Email: "ana@colorpro.app", Name: "Ana"}
}

func deepWinterResults() *analysis.Results {
	return &analysis.Results{
		Season:     "deep_winter",
		Undertone:  "cool",
		Confidence: 0.91,
		Palette: []analysis.PaletteColor{
			{Name: "Emerald", Hex: "#046307"},
			{Name: "Royal Blue", Hex: "#4169E1"},
		},
		AvoidColors:     []analysis.PaletteColor{{Name: "Camel", Hex: "#C19A6B"}},
		Recommendations: []string{"High-contrast outfits suit you best"},
	}
}

func selfieDescriptors() []*upload.Descriptor {
	return []*upload.Descriptor{
		{
			FieldName:  "selfie",
			StorageKey: "analyses/user-1/selfie.jpg",
			URL:        "https://cdn.test/analyses/user-1/selfie.jpg",
			Metadata:   &upload.ImageMetadata{Width: 800, Height: 600, Format: "jpeg"},
		},
		{
			FieldName:  "natural_light",
			StorageKey: "analyses/user-1/natural.jpg",
			URL:        "https://cdn.test/analyses/user-1/natural.jpg",
		},
	}
}

// # Tests

/*
TestCreate verifies a new consultation starts pending with no photos.
*/
func TestCreate(t *testing.T) {
	fixture := newServiceFixture(t)

	record, err := fixture.service.Create(context.Background(), "user-1", "prefer autumn palettes")
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "user-1", record.UserID)
	assert.Equal(t, analysis.StatusPending, record.Status)
	assert.Equal(t, "prefer autumn palettes", record.Notes)
	assert.Empty(t, record.Photos)

	stored, err := fixture.repository.FindByID(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusPending, stored.Status)
}

/*
TestAttachPhotos verifies the happy path runs the engine and completes the
record, carrying photo slots and dimensions through.
*/
func TestAttachPhotos(t *testing.T) {
	fixture := newServiceFixture(t)
	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	record, err := fixture.service.AttachPhotos(context.Background(), ownerPrincipal(), created.ID, selfieDescriptors())
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusCompleted, record.Status)
	require.NotNil(t, record.Results)
	assert.Equal(t, "deep_winter", record.Results.Season)
	require.NotNil(t, record.CompletedAt)
	assert.Equal(t, 1, fixture.analyzer.calls)
	assert.Equal(t, []string{created.ID}, fixture.notifier.completions)

	require.Len(t, record.Photos, 2)
	assert.Equal(t, "selfie", record.Photos[0].Slot)
	assert.Equal(t, 800, record.Photos[0].Width)
	assert.Equal(t, "natural_light", record.Photos[1].Slot)
}

/*
TestAttachPhotos_EngineFailure verifies an engine error marks the record
failed while keeping the photos so the client can retry.
*/
func TestAttachPhotos_EngineFailure(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.analyzer.err = errors.New("engine unavailable")

	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = fixture.service.AttachPhotos(context.Background(), ownerPrincipal(), created.ID, selfieDescriptors())
	require.Error(t, err)

	stored, findErr := fixture.repository.FindByID(context.Background(), created.ID)
	require.NoError(t, findErr)
	assert.Equal(t, analysis.StatusFailed, stored.Status)
	assert.Len(t, stored.Photos, 2)
	assert.Nil(t, stored.Results)
	assert.Empty(t, fixture.notifier.completions)
}

/*
TestAttachPhotos_Concurrent verifies a processing record rejects a second
submission with a conflict.
*/
func TestAttachPhotos_Concurrent(t *testing.T) {
	fixture := newServiceFixture(t)
	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	inFlight := fixture.repository.records[created.ID]
	inFlight.Status = analysis.StatusProcessing

	_, err = fixture.service.AttachPhotos(context.Background(), ownerPrincipal(), created.ID, selfieDescriptors())
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 409, appError.HTTPStatus)
}

/*
TestOwnership verifies every record operation rejects principals who do
not own the consultation.
*/
func TestOwnership(t *testing.T) {
	fixture := newServiceFixture(t)
	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	stranger := &sec.Principal{UserID: "user-2", Email: "bob@colorpro.app"}

	_, err = fixture.service.Get(context.Background(), stranger, created.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	_, err = fixture.service.AttachPhotos(context.Background(), stranger, created.ID, selfieDescriptors())
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)

	err = fixture.service.Delete(context.Background(), stranger, created.ID)
	appError = apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 403, appError.HTTPStatus)
}

/*
TestBuildReport verifies the detailed report mirrors the engine verdict and
that incomplete records are rejected.
*/
func TestBuildReport(t *testing.T) {
	fixture := newServiceFixture(t)
	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = fixture.service.BuildReport(context.Background(), ownerPrincipal(), created.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 400, appError.HTTPStatus)
	assert.Equal(t, "Analysis is not completed yet", appError.Message)

	_, err = fixture.service.AttachPhotos(context.Background(), ownerPrincipal(), created.ID, selfieDescriptors())
	require.NoError(t, err)

	report, err := fixture.service.BuildReport(context.Background(), ownerPrincipal(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, report.AnalysisID)
	assert.Equal(t, "deep_winter", report.Season)
	assert.Equal(t, "cool", report.Undertone)
	assert.InDelta(t, 0.91, report.Confidence, 0.0001)
	assert.Len(t, report.Palette, 2)
	assert.Equal(t, []string{"High-contrast outfits suit you best"}, report.Recommendations)
	require.NotNil(t, report.CompletedAt)
}

/*
TestDelete verifies the record goes away and its photo objects are removed
from storage.
*/
func TestDelete(t *testing.T) {
	fixture := newServiceFixture(t)
	created, err := fixture.service.Create(context.Background(), "user-1", "")
	require.NoError(t, err)

	_, err = fixture.service.AttachPhotos(context.Background(), ownerPrincipal(), created.ID, selfieDescriptors())
	require.NoError(t, err)

	err = fixture.service.Delete(context.Background(), ownerPrincipal(), created.ID)
	require.NoError(t, err)

	_, err = fixture.service.Get(context.Background(), ownerPrincipal(), created.ID)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, 404, appError.HTTPStatus)

	assert.ElementsMatch(t, []string{
		"analyses/user-1/selfie.jpg",
		"analyses/user-1/natural.jpg",
	}, fixture.backend.removed)
}

/*
TestList verifies only the requesting user's consultations come back with
matching paging metadata.
*/
func TestList(t *testing.T) {
	fixture := newServiceFixture(t)

	for range 3 {
		_, err := fixture.service.Create(context.Background(), "user-1", "")
		require.NoError(t, err)
	}
	_, err := fixture.service.Create(context.Background(), "user-2", "")
	require.NoError(t, err)

	records, meta, err := fixture.service.List(context.Background(), "user-1", pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}
