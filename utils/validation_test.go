package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type submitRequest struct {
		PostID  int64  `validate:"required"`
		Section int    `validate:"required,min=1,max=3"`
		Text    string `validate:"required"`
		Kind    string `validate:"omitempty,oneof=like hate"`
	}

	t.Run("valid struct", func(t *testing.T) {
		req := submitRequest{PostID: 1, Section: 2, Text: "hello"}
		assert.NoError(t, ValidateStruct(req))
	})

	t.Run("missing required fields", func(t *testing.T) {
		err := ValidateStruct(submitRequest{Section: 2})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Contains(t, fields, "PostID")
		assert.Contains(t, fields, "Text")
		assert.NotContains(t, fields, "Section")
	})

	t.Run("range violation", func(t *testing.T) {
		err := ValidateStruct(submitRequest{PostID: 1, Section: 4, Text: "hello"})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "Section must be at most 3", fields["Section"])
	})

	t.Run("oneof violation", func(t *testing.T) {
		err := ValidateStruct(submitRequest{PostID: 1, Section: 1, Text: "hello", Kind: "meh"})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "Kind must be one of: like hate", fields["Kind"])
	})
}

func TestValidationError(t *testing.T) {
	t.Run("error message", func(t *testing.T) {
		err := &ValidationError{Message: "Validation failed", Fields: map[string]string{"a": "b"}}
		assert.Equal(t, "Validation failed", err.Error())
	})

	t.Run("IsValidationError on plain error", func(t *testing.T) {
		assert.False(t, IsValidationError(errors.New("boom")))
	})

	t.Run("GetValidationFields on plain error", func(t *testing.T) {
		assert.Nil(t, GetValidationFields(errors.New("boom")))
	})
}
