package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/account-service/internal/domain"
	"github.com/phrazzld/account-service/internal/store"
)

// Sentinel errors returned by the account service.
// Callers check them with errors.Is; the API layer maps each to a status code.
//
// Error handling principles:
// 1. Expected outcomes (not found, duplicates, invalid input) are sentinel
//    errors or *domain.ValidationError
// 2. Persistence failures the service cannot interpret are wrapped in
//    *AccountServiceError, which matches ErrStoreFailure
// 3. Credential mismatches are boolean results, never errors
// 4. Hasher failures wrap ErrCredentialHashing and never match ErrStoreFailure
var (
	// ErrAccountNotFound indicates no account matches the given id, handle or email.
	// API layer should map this to HTTP 404 Not Found.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateHandle indicates another account already uses the handle.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateHandle = errors.New("handle is already taken")

	// ErrDuplicateEmail indicates another account already uses the email.
	// API layer should map this to HTTP 409 Conflict.
	ErrDuplicateEmail = errors.New("email is already registered")

	// ErrStoreFailure is matched by every *AccountServiceError.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrStoreFailure = errors.New("account store failure")

	// ErrCredentialHashing indicates the credential hasher could not hash a secret.
	// API layer should map this to HTTP 500 Internal Server Error.
	ErrCredentialHashing = errors.New("credential hashing failed")
)

// AccountServiceError wraps an uninterpreted store failure with context.
type AccountServiceError struct {
	// Operation is the operation that failed (e.g., "register", "set_role")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for AccountServiceError.
func (e *AccountServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("account service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("account service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *AccountServiceError) Unwrap() error {
	return e.Err
}

// Is reports ErrStoreFailure as a match.
func (e *AccountServiceError) Is(target error) bool {
	return target == ErrStoreFailure
}

// NewAccountServiceError translates err for callers of the service.
// Known conditions come back as the service sentinels or as the original
// validation error; anything else is wrapped in an *AccountServiceError.
func NewAccountServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, store.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, ErrDuplicateHandle), errors.Is(err, store.ErrHandleExists):
		return ErrDuplicateHandle
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, store.ErrEmailExists):
		return ErrDuplicateEmail
	case errors.Is(err, domain.ErrValidation), errors.Is(err, ErrCredentialHashing):
		return err
	}

	return &AccountServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
