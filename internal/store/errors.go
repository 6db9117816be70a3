package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by every AccountStore implementation. Entity
// specific errors wrap the generic ones, so errors.Is works at either level.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrDuplicate         = errors.New("entity already exists")
	ErrInvalidEntity     = errors.New("invalid entity")
	ErrTransactionFailed = errors.New("transaction failed")

	ErrAccountNotFound = fmt.Errorf("%w: account", ErrNotFound)
	ErrHandleExists    = fmt.Errorf("%w: handle", ErrDuplicate)
	ErrEmailExists     = fmt.Errorf("%w: email", ErrDuplicate)
)

func IsNotFoundError(err error) bool { return errors.Is(err, ErrNotFound) }

// IsDuplicateError reports a uniqueness conflict on any column.
func IsDuplicateError(err error) bool { return errors.Is(err, ErrDuplicate) }

// StoreError records which storage operation failed and why.
type StoreError struct {
	Entity    string
	Operation string
	Message   string
	Err       error
}

func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Message: message, Err: err}
}

func (e *StoreError) Error() string {
	parts := []string{e.Entity + " " + e.Operation, e.Message}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *StoreError) Unwrap() error { return e.Err }
