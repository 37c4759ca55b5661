package cache

import (
	"github.com/kengibson1111/go-readthrough-cache/internal"
)

// RedisConfig configures the backend connection, pooling, retry behavior,
// the default entry TTL and the logger. Aliased so callers never import
// the internal package.
type RedisConfig = internal.Config

// RedisRetryConfig configures per-operation retries with exponential
// backoff and jitter.
type RedisRetryConfig = internal.RetryConfig

// DefaultRedisConfig returns a RedisConfig with sensible defaults:
// localhost:6379, database 0, a pool of 10 connections and a five minute
// default TTL.
func DefaultRedisConfig() *RedisConfig {
	return internal.DefaultConfig()
}

// DefaultRedisRetryConfig returns the default retry policy.
func DefaultRedisRetryConfig() *RedisRetryConfig {
	return internal.DefaultRetryConfig()
}

// RedisConfigFromEnv returns DefaultRedisConfig overridden by the REDIS_HOST,
// REDIS_PORT, REDIS_PASSWORD, REDIS_DB and REDIS_TTL environment variables.
func RedisConfigFromEnv() *RedisConfig {
	return internal.ConfigFromEnv()
}
