// Package common defines shared constants and sentinel errors used across
// the sync agent and the document gateway. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors for records and documents.
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrForbidden is returned when a caller touches another owner's documents.
	ErrForbidden = errors.New("forbidden")
)
