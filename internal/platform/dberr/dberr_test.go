// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package dberr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/dberr"
)

/*
TestWrap_NoRows checks that a missing row becomes a 404 carrying the
resource name.
*/
func TestWrap_NoRows(t *testing.T) {
	err := dberr.Wrap(pgx.ErrNoRows, "Analysis")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusNotFound, ae.HTTPStatus)
	assert.Equal(t, "Analysis not found", ae.Message)
}

/*
TestWrap_UniqueViolation checks the duplicate-key message derived from the
constraint detail text.
*/
func TestWrap_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:   pgerrcode.UniqueViolation,
		Detail: "Key (email)=(a@b.com) already exists.",
	}

	ae := apperr.As(dberr.Wrap(pgErr, "User"))
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
	assert.Equal(t, "DUPLICATE_VALUE", ae.Code)
	assert.Equal(t, "Email 'a@b.com' already exists", ae.Message)
	assert.True(t, ae.Operational)
}

/*
TestWrap_UniqueViolationNoDetail checks the fallback when the driver omits
the key detail.
*/
func TestWrap_UniqueViolationNoDetail(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation}

	ae := apperr.As(dberr.Wrap(pgErr, "User"))
	require.NotNil(t, ae)
	assert.Equal(t, "Value '' already exists", ae.Message)
}

/*
TestWrap_CastFailure checks that malformed identifiers surface as
"Invalid <field>: <value>" rather than a 500.
*/
func TestWrap_CastFailure(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:    pgerrcode.InvalidTextRepresentation,
		Message: `invalid input syntax for type uuid: "not-a-uuid"`,
	}

	ae := apperr.As(dberr.Wrap(pgErr, "Analysis"))
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus)
	assert.Equal(t, "INVALID_VALUE", ae.Code)
	assert.Equal(t, "Invalid uuid: not-a-uuid", ae.Message)
}

/*
TestWrap_NotNullViolation checks schema violations aggregate into a field-level
validation error.
*/
func TestWrap_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:       pgerrcode.NotNullViolation,
		ColumnName: "email",
	}

	ae := apperr.As(dberr.Wrap(pgErr, "User"))
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "email", ae.Details[0].Field)
	assert.Equal(t, "This field is required", ae.Details[0].Message)
}

/*
TestWrap_Unclassified checks that unknown driver errors become
non-operational 500s with the cause preserved.
*/
func TestWrap_Unclassified(t *testing.T) {
	cause := errors.New("connection reset by peer")

	ae := apperr.As(dberr.Wrap(cause, "User"))
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus)
	assert.False(t, ae.Operational)
	assert.ErrorIs(t, ae, cause)
}

/*
TestWrap_Nil checks the nil passthrough.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "User"))
}
