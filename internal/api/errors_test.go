package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/service"
	"github.com/phrazzld/account-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("handle", "is required", domain.ErrEmptyContent), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("outer: %w", domain.NewValidationError("role", "bad", domain.ErrInvalidRole)), http.StatusBadRequest},
		{"not found", service.ErrAccountNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", service.ErrAccountNotFound), http.StatusNotFound},
		{"duplicate handle", service.ErrDuplicateHandle, http.StatusConflict},
		{"duplicate email", service.ErrDuplicateEmail, http.StatusConflict},
		{"store failure", service.NewAccountServiceError("list", "failed", store.ErrTransactionFailed), http.StatusInternalServerError},
		{"hashing failure", fmt.Errorf("%w: bcrypt", service.ErrCredentialHashing), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid email: is not a valid email address",
		GetSafeErrorMessage(domain.NewValidationError("email", "is not a valid email address", domain.ErrInvalidEmail)))
	assert.Equal(t, "Invalid request: missing",
		GetSafeErrorMessage(domain.NewValidationError("", "missing", domain.ErrValidation)))
	assert.Equal(t, "Account not found", GetSafeErrorMessage(service.ErrAccountNotFound))
	assert.Equal(t, "Handle already taken", GetSafeErrorMessage(service.ErrDuplicateHandle))
	assert.Equal(t, "Email already registered", GetSafeErrorMessage(service.ErrDuplicateEmail))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("dial tcp 10.0.0.1:5432")))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("default message only for 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		HandleAPIError(w, r, errors.New("connection refused"), "Failed to get account")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to get account")
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	t.Run("mapped message kept", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		HandleAPIError(w, r, service.ErrAccountNotFound, "Failed to get account")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Account not found")
	})
}

func TestSanitizeValidationError(t *testing.T) {
	err := requestValidator.Struct(LoginRequest{Secret: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Invalid handleOrEmail: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
	assert.Equal(t, "invalid email format", getValidationTagMessage("email"))
	assert.Equal(t, "validation failed", getValidationTagMessage("uuid4"))
}
