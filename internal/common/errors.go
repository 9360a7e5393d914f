// Package common defines shared constants and sentinel errors used across
// client and server layers of coursekeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Draft validation. Never reaches the network.
	ErrValidation = errors.New("validation failed")

	// Identity / ordering errors.
	ErrParentNotPersisted = errors.New("parent section is not saved yet")
	ErrCourseNotPersisted = errors.New("course is not saved yet")
	ErrAlreadyPersisted   = errors.New("node is already persisted")
	ErrOrderConflict      = errors.New("order number conflict")

	// Save coordination.
	ErrBusy      = errors.New("already saving, please wait")
	ErrCancelled = errors.New("cancelled")

	// Backend / transport errors. Every failed backend call matches ErrNetwork.
	ErrNetwork      = errors.New("network error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")

	// Asset lifecycle errors.
	ErrUpload  = errors.New("upload failed")
	ErrRelease = errors.New("release failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError describes a rejected draft field. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
