package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithMessage(t *testing.T) {
	err := ErrConflict.WithMessage("This ID is already in use")

	assert.Equal(t, "conflict", err.Code)
	assert.Equal(t, "This ID is already in use", err.Message)
	assert.Equal(t, http.StatusConflict, err.StatusCode)

	// The sentinel itself must stay untouched.
	assert.NotEqual(t, "This ID is already in use", ErrConflict.Message)
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(ErrAuthFailed, "auth_failed"))
	assert.True(t, IsCode(ErrConflict.WithMessage("taken"), "conflict"))
	assert.False(t, IsCode(ErrAuthFailed, "conflict"))
	assert.False(t, IsCode(errors.New("boom"), "auth_failed"))
	assert.False(t, IsCode(nil, "auth_failed"))
}

func TestAsError(t *testing.T) {
	t.Run("app error passes through", func(t *testing.T) {
		err := AsError(ErrForbidden)
		assert.Equal(t, http.StatusForbidden, err.StatusCode)
		assert.Equal(t, "forbidden", err.Code)
	})

	t.Run("wrapped app error unwraps", func(t *testing.T) {
		wrapped := fmt.Errorf("during update: %w", ErrNotFound)
		err := AsError(wrapped)
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
	})

	t.Run("unknown error maps to internal", func(t *testing.T) {
		err := AsError(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
		assert.Equal(t, "internal_error", err.Code)
		// Raw error text must not leak into the user-facing message.
		assert.NotContains(t, err.Message, "pq:")
	})
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("task")
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Contains(t, err.Message, "task")
}
