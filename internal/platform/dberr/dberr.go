// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

/*
Package dberr provides a bridge between low-level database errors and
higher-level application errors.

Classification happens at the storage boundary so that the terminal
responder never inspects driver-specific error shapes. The order of checks
is significant: a malformed identifier (cast failure) and a duplicate key
can surface overlapping fields, so cast errors are matched first, then
duplicates, then schema violations.
*/
package dberr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/colorpro/colorpro/internal/platform/apperr"
)

// keyDetailRegex extracts field and value from a unique-violation detail:
// `Key (email)=(a@b.com) already exists.`
var keyDetailRegex = regexp.MustCompile(`Key \(([^)]+)\)=\(([^)]*)\)`)

// castDetailRegex extracts type and value from a cast-failure message:
// `invalid input syntax for type uuid: "abc"`
var castDetailRegex = regexp.MustCompile(`invalid input syntax for type (\S+): "([^"]*)"`)

// Wrap inspects a database error and converts it into a meaningful
// [apperr.AppError]. The resource name is used for not-found messages.
//
// # Classification (first match wins)
//
//  1. Cast/type failure        → 400 "Invalid <field>: <value>"
//  2. Unique violation         → 400 "<Field> '<value>' already exists"
//  3. Schema violation         → 400 "Validation failed" + field details
//  4. Missing row              → 404 "<resource> not found"
//  5. Anything else            → non-operational 500
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperr.Internal(err)
	}

	switch pgErr.Code {
	case pgerrcode.InvalidTextRepresentation,
		pgerrcode.InvalidDatetimeFormat,
		pgerrcode.DatetimeFieldOverflow:
		return wrapCast(pgErr)

	case pgerrcode.UniqueViolation:
		return wrapDuplicate(pgErr)

	case pgerrcode.NotNullViolation, pgerrcode.CheckViolation:
		return wrapSchema(pgErr)

	default:
		return apperr.Internal(err)
	}
}

// wrapCast maps a malformed-value failure to `Invalid <field>: <value>`.
func wrapCast(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName
	value := ""

	if match := castDetailRegex.FindStringSubmatch(pgErr.Message); match != nil {
		if field == "" {
			field = match[1]
		}
		value = match[2]
	}
	if field == "" {
		field = "value"
	}

	ae := apperr.BadRequest(fmt.Sprintf("Invalid %s: %s", field, value))
	ae.Code = "INVALID_VALUE"
	ae.Cause = pgErr
	return ae
}

// wrapDuplicate maps a unique-index violation to
// `<Field> '<value>' already exists`, with the field name capitalized.
func wrapDuplicate(pgErr *pgconn.PgError) error {
	field := "Value"
	value := ""

	if match := keyDetailRegex.FindStringSubmatch(pgErr.Detail); match != nil {
		field = capitalize(match[1])
		value = match[2]
	}

	ae := apperr.BadRequest(fmt.Sprintf("%s '%s' already exists", field, value))
	ae.Code = "DUPLICATE_VALUE"
	ae.Cause = pgErr
	return ae
}

// wrapSchema maps constraint violations to one aggregated validation error.
func wrapSchema(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName
	if field == "" {
		field = pgErr.ConstraintName
	}
	if field == "" {
		field = "value"
	}

	message := "Invalid value"
	if pgErr.Code == pgerrcode.NotNullViolation {
		message = "This field is required"
	}

	ae := apperr.Validation(apperr.FieldError{Field: field, Message: message})
	ae.Cause = pgErr
	return ae
}

// capitalize upper-cases the first rune of a column name ("email" → "Email").
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
