package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// InputValidator guards the public entry points of the cache. It rejects
// input that would corrupt the keyspace or silently widen an invalidation
// far beyond the caller's intent.
type InputValidator struct {
	maxPrefixLength  int
	maxPatternLength int
	maxTTL           time.Duration
}

// NewInputValidator creates a new input validator with default settings
func NewInputValidator() *InputValidator {
	return &InputValidator{
		maxPrefixLength:  100,
		maxPatternLength: 250,
		maxTTL:           365 * 24 * time.Hour,
	}
}

// ValidateContext validates context for timeout and cancellation
func (v *InputValidator) ValidateContext(ctx context.Context) error {
	if ctx == nil {
		return NewValidationError("context cannot be nil", nil)
	}

	select {
	case <-ctx.Done():
		return NewValidationError("context is already cancelled", ctx.Err())
	default:
		return nil
	}
}

// ValidateTTL reports whether a time-to-live is usable for a cache entry.
// Callers fall back to the configured default when it is not.
func (v *InputValidator) ValidateTTL(ttl time.Duration, allowZero bool) error {
	if ttl < 0 {
		return NewValidationError("TTL cannot be negative", nil)
	}

	if !allowZero && ttl == 0 {
		return NewValidationError("TTL cannot be zero", nil)
	}

	if ttl > v.maxTTL {
		return NewValidationError(fmt.Sprintf("TTL exceeds maximum allowed duration of %v", v.maxTTL), nil)
	}

	return nil
}

// ValidateInvalidationScope validates the prefix and pattern of a bulk
// invalidation. The prefix bounds the blast radius, so it must be a real
// identifier; the pattern may be any Redis glob within it.
func (v *InputValidator) ValidateInvalidationScope(prefix, pattern string) error {
	if prefix == "" {
		return NewValidationError("invalidation prefix cannot be empty", nil)
	}

	if len(prefix) > v.maxPrefixLength {
		return NewValidationError(fmt.Sprintf("invalidation prefix exceeds maximum length of %d characters", v.maxPrefixLength), nil)
	}

	if !utf8.ValidString(prefix) {
		return NewValidationError("invalidation prefix contains invalid UTF-8 characters", nil)
	}

	// A glob in the prefix would widen the match beyond one logical
	// namespace. "item*" must not erase "items" and "item_audit" too.
	if strings.ContainsAny(prefix, "*?[]") {
		return NewValidationError(fmt.Sprintf("invalidation prefix '%s' must not contain glob characters", prefix), nil)
	}

	for i, r := range prefix {
		if unicode.IsControl(r) {
			return NewValidationError(fmt.Sprintf("invalidation prefix contains control character at position %d", i), nil)
		}
	}

	if len(pattern) > v.maxPatternLength {
		return NewValidationError(fmt.Sprintf("invalidation pattern exceeds maximum length of %d characters", v.maxPatternLength), nil)
	}

	for i, r := range pattern {
		if unicode.IsControl(r) {
			return NewValidationError(fmt.Sprintf("invalidation pattern contains control character at position %d", i), nil)
		}
	}

	return nil
}
