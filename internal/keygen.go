package internal

import (
	"fmt"
	"sort"
	"strings"
)

// KeyBuilder defines the interface for deriving and validating cache keys
// from service operations and their arguments.
type KeyBuilder interface {
	BuildKey(operation string, args []any, named map[string]any) string
	ValidateKey(key string) error
}

// DefaultKeyBuilder implements the KeyBuilder interface
type DefaultKeyBuilder struct{}

// NewKeyBuilder creates a new DefaultKeyBuilder instance
func NewKeyBuilder() KeyBuilder {
	return &DefaultKeyBuilder{}
}

// BuildKey derives a deterministic cache key from an operation identifier and
// its arguments.
// Format: <operation>[:<arg>...][:<name>:<value>...]
//
// Positional arguments appear in call order. Named arguments follow as
// "name:value" pairs sorted lexicographically by name, so callers that pass
// the same values through a map get the same key regardless of insertion
// order. The operation's leading segment (up to the first ':') doubles as the
// invalidation prefix; operations touching the same entity must share it for
// prefix-scoped invalidation to find their entries.
//
// Only scalar arguments (strings, booleans, integers, floats) contribute to
// the key. Slices, maps, structs and other composite values are skipped
// silently, which means two calls differing only in a composite argument
// derive the same key and collide. Callers with composite-sensitive
// operations should fold the distinguishing value into a scalar themselves.
func (kb *DefaultKeyBuilder) BuildKey(operation string, args []any, named map[string]any) string {
	parts := make([]string, 0, 1+len(args)+len(named))
	parts = append(parts, operation)

	for _, arg := range args {
		if s, ok := scalarString(arg); ok {
			parts = append(parts, s)
		}
	}

	if len(named) > 0 {
		names := make([]string, 0, len(named))
		for name := range named {
			if _, ok := scalarString(named[name]); ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			s, _ := scalarString(named[name])
			parts = append(parts, fmt.Sprintf("%s:%s", name, s))
		}
	}

	return strings.Join(parts, ":")
}

// scalarString renders a scalar argument in its canonical string form.
// The bool result reports whether the value participates in key derivation.
func scalarString(v any) (string, bool) {
	switch v.(type) {
	case string,
		bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprint(v), true
	default:
		return "", false
	}
}

// ValidateKey validates that a derived key is safe to send to Redis. Keys
// embed raw argument values, so validation stays permissive about charset;
// it rejects only what would corrupt the keyspace or the wire protocol.
func (kb *DefaultKeyBuilder) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if strings.HasPrefix(key, ":") {
		return fmt.Errorf("key has empty operation segment: %s", key)
	}

	// Control characters and null bytes corrupt RESP framing
	for i, r := range key {
		if r < 32 || r == 127 {
			return fmt.Errorf("key contains control character at position %d", i)
		}
	}

	// Conservative bound; Redis itself allows far larger keys
	if len(key) > 512 {
		return fmt.Errorf("key exceeds maximum length of 512 bytes")
	}

	return nil
}
