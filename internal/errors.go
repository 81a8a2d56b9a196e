package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Business rules surfaced with a specific reason.
var (
	ErrDefaultGoalDelete = NewBusinessRuleError("cannot delete a default goal")
	ErrDefaultGoalFields = NewBusinessRuleError("only the value of a default goal can be changed")
	ErrCurrentPassword   = NewBusinessRuleError("current password incorrect")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

type BusinessRuleError struct {
	Reason string
}

func NewBusinessRuleError(reason string) *BusinessRuleError {
	return &BusinessRuleError{Reason: reason}
}

func (e *BusinessRuleError) Error() string { return e.Reason }

// StorageError wraps a persistence failure. Its detail is logged, never returned to clients.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string { return "storage: " + e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// AppError is the error body of an API response.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

func (e *AppError) Error() string { return e.Message }
