package cache

import (
	"github.com/kengibson1111/go-readthrough-cache/internal"
)

// CacheError is the typed error used for cache-side failures. Execute never
// returns one; they surface through logs, health results and the errors of
// administrative operations.
type CacheError = internal.CacheError

// CacheErrorType classifies a CacheError.
type CacheErrorType = internal.ErrorType

// Error type constants for classifying cache failures.
const (
	CacheErrorTypeConnection    = internal.ErrorTypeConnection
	CacheErrorTypeKeyInvalid    = internal.ErrorTypeKeyInvalid
	CacheErrorTypeNotFound      = internal.ErrorTypeNotFound
	CacheErrorTypeSerialization = internal.ErrorTypeSerialization
	CacheErrorTypeTimeout       = internal.ErrorTypeTimeout
	CacheErrorTypeValidation    = internal.ErrorTypeValidation
)

// NewConnectionError creates a backend communication error.
func NewConnectionError(message string, cause error) *CacheError {
	return internal.NewConnectionError(message, cause)
}

// NewKeyInvalidError creates an error for a key the backend cannot store.
func NewKeyInvalidError(key, message string) *CacheError {
	return internal.NewKeyInvalidError(key, message)
}

// NewNotFoundError creates an error marking a missing key.
func NewNotFoundError(key string) *CacheError {
	return internal.NewNotFoundError(key)
}

// NewSerializationError creates a payload codec error.
func NewSerializationError(key, message string, cause error) *CacheError {
	return internal.NewSerializationError(key, message, cause)
}

// NewTimeoutError creates a backend timeout error.
func NewTimeoutError(key, message string, cause error) *CacheError {
	return internal.NewTimeoutError(key, message, cause)
}

// NewValidationError creates an input validation error.
func NewValidationError(message string, cause error) *CacheError {
	return internal.NewValidationError(message, cause)
}

// IsConnectionError reports whether err is a backend communication failure.
func IsConnectionError(err error) bool {
	return internal.IsConnectionError(err)
}

// IsKeyInvalidError reports whether err marks a key the backend cannot store.
func IsKeyInvalidError(err error) bool {
	return internal.IsKeyInvalidError(err)
}

// IsNotFoundError reports whether err marks a missing key.
func IsNotFoundError(err error) bool {
	return internal.IsNotFoundError(err)
}

// IsSerializationError reports whether err is a payload codec failure.
func IsSerializationError(err error) bool {
	return internal.IsSerializationError(err)
}

// IsTimeoutError reports whether err is a backend timeout.
func IsTimeoutError(err error) bool {
	return internal.IsTimeoutError(err)
}

// IsValidationError reports whether err is an input validation failure.
func IsValidationError(err error) bool {
	return internal.IsValidationError(err)
}
