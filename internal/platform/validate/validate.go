// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// Validation is "collect-all": every rule in a chain is evaluated and every
// failure is aggregated, in declaration order, into one 400 response. Rule
// violation messages are data (the message table below), not control flow.
//
// Handlers decode request bodies into typed structs first (unknown input
// fields are stripped by the decode itself), then run a chain over the
// decoded values. Downstream code never re-validates.
package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/colorpro/colorpro/internal/platform/apperr"
)

// # Rule Message Table

// Violation messages keyed by rule. Centralized so wording changes never
// touch validation logic.
const (
	MsgRequired     = "This field is required"
	MsgEmail        = "Must be a valid email address"
	MsgUUID         = "Must be a valid UUID"
	MsgDate         = "Must be a valid date (YYYY-MM-DD)"
	MsgEqualsFmt    = "Must match %s"
	MsgMinLenFmt    = "Minimum %d characters"
	MsgMaxLenFmt    = "Maximum %d characters"
	MsgRangeFmt     = "Must be between %d and %d"
	MsgOneOfFmt     = "Must be one of: %s"
	MsgPatternValue = "Invalid format"
)

var (
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	// ErrInvalidJSON is returned when the request body cannot be decoded.
	ErrInvalidJSON = apperr.BadRequest("Invalid JSON payload")
)

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, MsgRequired, nil)
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, fmt.Sprintf(MsgMinLenFmt, min), value)
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf(MsgMaxLenFmt, max), value)
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, fmt.Sprintf(MsgRangeFmt, min, max), value)
	}
	return v
}

// Email fails if the value is not a valid RFC 5322 email address.
func (v *Validator) Email(field, value string) *Validator {
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, MsgEmail, value)
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	if !uuidRegex.MatchString(strings.ToLower(value)) {
		v.add(field, MsgUUID, value)
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, fmt.Sprintf(MsgOneOfFmt, strings.Join(allowed, ", ")), value)
	return v
}

// Pattern fails if the value does not match the compiled expression.
// The message parameter describes the expected format to the client.
func (v *Validator) Pattern(field, value string, pattern *regexp.Regexp, message string) *Validator {
	if message == "" {
		message = MsgPatternValue
	}
	if !pattern.MatchString(value) {
		v.add(field, message, value)
	}
	return v
}

// Equals is the cross-field confirmation rule: it fails when value does not
// equal the primary field's value, reported under the confirmation field's
// own name.
func (v *Validator) Equals(field, value, primaryField, primaryValue string) *Validator {
	if value != primaryValue {
		v.add(field, fmt.Sprintf(MsgEqualsFmt, primaryField), nil)
	}
	return v
}

// Date fails if the value is not a parseable YYYY-MM-DD date.
func (v *Validator) Date(field, value string) *Validator {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v.add(field, MsgDate, value)
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
//
// # Example
//
//	v.Custom("amount", amount <= 0, "Must be a positive amount")
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message, nil)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.Validation(v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, message string, value any) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message, Value: value})
}

// # Defaults

// DefaultString returns fallback when value is blank. Schema defaults are
// applied after decode, before the rule chain runs.
func DefaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// DefaultInt returns fallback when value is zero.
func DefaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
