package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockRedisClient is a mock implementation of the RedisClientInterface for testing
type MockRedisClient struct {
	mock.Mock
}

// NewMockRedisClient creates a new mock Redis client
func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{}
}

// Health mocks the Health method
func (m *MockRedisClient) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// HealthWithRetry mocks the HealthWithRetry method
func (m *MockRedisClient) HealthWithRetry(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// SetWithRetry mocks the SetWithRetry method
func (m *MockRedisClient) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

// GetWithRetry mocks the GetWithRetry method
func (m *MockRedisClient) GetWithRetry(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// DelWithRetry mocks the DelWithRetry method
func (m *MockRedisClient) DelWithRetry(ctx context.Context, keys ...string) (int64, error) {
	args := m.Called(ctx, keys)
	return args.Get(0).(int64), args.Error(1)
}

// KeysWithRetry mocks the KeysWithRetry method
func (m *MockRedisClient) KeysWithRetry(ctx context.Context, pattern string) ([]string, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// FlushDBWithRetry mocks the FlushDBWithRetry method
func (m *MockRedisClient) FlushDBWithRetry(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Client mocks the Client method
func (m *MockRedisClient) Client() *redis.Client {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.Client)
}

// Config mocks the Config method
func (m *MockRedisClient) Config() *RedisConfig {
	args := m.Called()
	return args.Get(0).(*RedisConfig)
}

// Close mocks the Close method
func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockKeyBuilder is a mock implementation of the KeyBuilder for testing
type MockKeyBuilder struct {
	mock.Mock
}

// NewMockKeyBuilder creates a new mock key builder
func NewMockKeyBuilder() *MockKeyBuilder {
	return &MockKeyBuilder{}
}

// BuildKey mocks the BuildKey method
func (m *MockKeyBuilder) BuildKey(operation string, args []any, named map[string]any) string {
	callArgs := m.Called(operation, args, named)
	return callArgs.String(0)
}

// ValidateKey mocks the ValidateKey method
func (m *MockKeyBuilder) ValidateKey(key string) error {
	args := m.Called(key)
	return args.Error(0)
}
