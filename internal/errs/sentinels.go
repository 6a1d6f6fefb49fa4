// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication. Token failures wrap it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotOwner indicates the caller does not own the resource it tried to mutate.
	ErrNotOwner = errors.New("not owner")

	// ErrForbidden indicates the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation is the class of all input validation failures.
	ErrValidation = errors.New("validation")
)

// Token verification failures.
var (
	ErrTokenInvalid    = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrSubjectMismatch = fmt.Errorf("%w: subject mismatch", ErrUnauthorized)
)

// Upload validation failures, checked in this order.
var (
	ErrEmptyFile      = fmt.Errorf("%w: empty file", ErrValidation)
	ErrFileTooLarge   = fmt.Errorf("%w: file too large", ErrValidation)
	ErrBadContentType = fmt.Errorf("%w: unsupported content type", ErrValidation)
)

// Validation wraps a message into the ErrValidation class.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
