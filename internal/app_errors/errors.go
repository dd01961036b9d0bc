package app_errors

import (
	"errors"
	"fmt"
)

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrIncorrectPassword = errors.New("incorrect password")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")
var ErrNotImage = errors.New("not image")
var ErrFileSize = errors.New("file size error")
var ErrNotReporter = errors.New("you are not the reporter of this report")

// ValidationError names the first failing field of an input. Field ordering
// is fixed by the service performing the validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type PermissionDeniedError struct {
	Action       string
	RequiredRole string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s requires role %s", e.Action, e.RequiredRole)
}

func NewPermissionDenied(action, requiredRole string) *PermissionDeniedError {
	return &PermissionDeniedError{Action: action, RequiredRole: requiredRole}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func NewConflict(reason string) *ConflictError {
	return &ConflictError{Reason: reason}
}

// TransientError marks a failure that is safe to retry (network, backend
// unavailability). It wraps the underlying cause.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return "transient failure: " + e.Cause.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

func NewTransient(cause error) *TransientError {
	return &TransientError{Cause: cause}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsPermissionDenied(err error) bool {
	var pe *PermissionDeniedError
	return errors.As(err, &pe)
}

func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
