// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorpro/colorpro/internal/platform/apperr"
	"github.com/colorpro/colorpro/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "name", "ColorPro", false},
		{"empty_string", "name", "", true},
		{"whitespace_only", "name", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Email checks the email format validation rule.
*/
func TestValidator_Email(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		isValid bool
	}{
		{"valid_email", "test@example.com", true},
		{"invalid_format", "invalid-email", false},
		{"missing_domain", "test@", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Email("email", tt.email)

			if tt.isValid {
				assert.False(t, v.HasErrors())
			} else {
				assert.True(t, v.HasErrors())
			}
		})
	}
}

/*
TestValidator_Lengths checks the Unicode-aware length rules.
*/
func TestValidator_Lengths(t *testing.T) {
	t.Run("min_len_counts_runes", func(t *testing.T) {
		v := &validate.Validator{}
		// Three runes even though more than three bytes.
		v.MinLen("name", "日本語", 3)
		assert.False(t, v.HasErrors())
	})

	t.Run("min_len_fails_short", func(t *testing.T) {
		v := &validate.Validator{}
		v.MinLen("name", "ab", 3)
		assert.True(t, v.HasErrors())
	})

	t.Run("max_len_fails_long", func(t *testing.T) {
		v := &validate.Validator{}
		v.MaxLen("notes", "abcdef", 5)
		assert.True(t, v.HasErrors())
	})
}

/*
TestValidator_OneOf checks membership validation against an allowed set.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("language", "pt", "en", "pt", "es")
	assert.False(t, v.HasErrors())

	v2 := &validate.Validator{}
	v2.OneOf("language", "fr", "en", "pt", "es")
	require.True(t, v2.HasErrors())

	ae := apperr.As(v2.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "Must be one of: en, pt, es", ae.Details[0].Message)
}

/*
TestValidator_UUID checks the UUID syntax rule is case-insensitive.
*/
func TestValidator_UUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"lowercase", "0190a1b2-3c4d-7e5f-8a9b-0c1d2e3f4a5b", true},
		{"uppercase", "0190A1B2-3C4D-7E5F-8A9B-0C1D2E3F4A5B", true},
		{"not_a_uuid", "abc", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.UUID("id", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Equals checks the cross-field confirmation rule reports under
the confirmation field's own name.
*/
func TestValidator_Equals(t *testing.T) {
	v := &validate.Validator{}
	v.Equals("passwordConfirm", "different", "password", "secret123")

	require.True(t, v.HasErrors())
	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "passwordConfirm", ae.Details[0].Field)
	assert.Equal(t, "Must match password", ae.Details[0].Message)
}

/*
TestValidator_CollectAll verifies that every failed rule in a chain is
reported, in declaration order, inside one aggregated error. This mirrors
the registration payload with four simultaneous violations.
*/
func TestValidator_CollectAll(t *testing.T) {
	v := &validate.Validator{}
	err := v.
		Required("name", "").
		Email("email", "not-an-email").
		MinLen("password", "short", 8).
		Equals("passwordConfirm", "other", "password", "short").
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 4)
	assert.Equal(t, "name", ae.Details[0].Field)
	assert.Equal(t, "email", ae.Details[1].Field)
	assert.Equal(t, "password", ae.Details[2].Field)
	assert.Equal(t, "passwordConfirm", ae.Details[3].Field)
}

/*
TestValidator_Chain tests the fluent API with all rules passing.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("name", "Ana Costa").
		MinLen("name", "Ana Costa", 3).
		Email("email", "ana@colorpro.app").
		MinLen("password", "longenough", 8).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Custom checks the ad hoc rule helper.
*/
func TestValidator_Custom(t *testing.T) {
	v := &validate.Validator{}
	v.Custom("amount_cents", 10 < 50, "Amount must be at least 50 cents")

	require.True(t, v.HasErrors())
	ae := apperr.As(v.Err())
	require.NotNil(t, ae)
	assert.Equal(t, "Amount must be at least 50 cents", ae.Details[0].Message)
}

/*
TestDefaults checks the post-decode default helpers.
*/
func TestDefaults(t *testing.T) {
	assert.Equal(t, "en", validate.DefaultString("", "en"))
	assert.Equal(t, "pt", validate.DefaultString("pt", "en"))
	assert.Equal(t, 20, validate.DefaultInt(0, 20))
	assert.Equal(t, 5, validate.DefaultInt(5, 20))
}
