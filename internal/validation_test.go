package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputValidator_ValidateContext(t *testing.T) {
	v := NewInputValidator()

	t.Run("nil context rejected", func(t *testing.T) {
		//nolint:staticcheck // passing nil is the case under test
		err := v.ValidateContext(nil)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("live context accepted", func(t *testing.T) {
		assert.NoError(t, v.ValidateContext(context.Background()))
	})

	t.Run("cancelled context rejected", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := v.ValidateContext(ctx)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestInputValidator_ValidateTTL(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name        string
		ttl         time.Duration
		allowZero   bool
		expectError bool
	}{
		{"positive TTL accepted", 5 * time.Minute, false, false},
		{"negative TTL rejected", -1 * time.Second, false, true},
		{"zero TTL rejected when not allowed", 0, false, true},
		{"zero TTL accepted when allowed", 0, true, false},
		{"TTL above one year rejected", 366 * 24 * time.Hour, false, true},
		{"TTL at one year accepted", 365 * 24 * time.Hour, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTTL(tt.ttl, tt.allowZero)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInputValidator_ValidateInvalidationScope(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name        string
		prefix      string
		pattern     string
		expectError bool
	}{
		{"simple prefix with wildcard", "item", "*", false},
		{"prefix with scoped pattern", "orders", "42:*", false},
		{"empty pattern allowed", "item", "", false},
		{"empty prefix rejected", "", "*", true},
		{"glob star in prefix rejected", "item*", "*", true},
		{"glob question mark in prefix rejected", "item?", "*", true},
		{"glob brackets in prefix rejected", "item[ab]", "*", true},
		{"control character in prefix rejected", "item\n", "*", true},
		{"control character in pattern rejected", "item", "4\x002", true},
		{"overlong prefix rejected", strings.Repeat("p", 101), "*", true},
		{"overlong pattern rejected", "item", strings.Repeat("x", 251), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInvalidationScope(tt.prefix, tt.pattern)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, IsValidationError(err), "scope failures should classify as validation errors")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
