package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsAndStatus(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{NotFound("course %s not found", "x"), KindNotFound, http.StatusNotFound},
		{Forbidden("unauthorized user"), KindForbidden, http.StatusForbidden},
		{Validation("bad input", FieldError{Field: "name", Message: "required"}), KindValidation, http.StatusBadRequest},
		{Internal(errors.New("boom"), "failed"), KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.kind))
			assert.True(t, IsKnown(tt.err))

			var appErr *Error
			require.True(t, errors.As(tt.err, &appErr))
			assert.Equal(t, tt.status, appErr.Status())
		})
	}
}

func TestForeignErrors(t *testing.T) {
	err := errors.New("driver: bad connection")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, IsKnown(err))
	assert.False(t, Is(err, KindNotFound))
}

func TestWrappedKindSurvives(t *testing.T) {
	err := fmt.Errorf("loading lesson: %w", NotFound("lesson not found"))

	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "loading lesson: lesson not found", err.Error())
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause, "An error occurred while trying to save.")

	assert.Equal(t, cause, Cause(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, Internal(nil, "ignored"))
}

func TestValidationFields(t *testing.T) {
	var appErr *Error
	require.True(t, errors.As(Validation("bad", FieldError{Field: "email", Message: "invalid"}), &appErr))
	assert.Equal(t, "bad", appErr.Error())
	assert.Equal(t, []FieldError{{Field: "email", Message: "invalid"}}, appErr.Fields)
}
