package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kengibson1111/go-readthrough-cache/internal"
)

// RedisCache implements the Cache interface using Redis as the backend
type RedisCache struct {
	client     internal.RedisClientInterface
	keyBuilder internal.KeyBuilder
	codec      Codec
	validator  *internal.InputValidator
	config     *RedisConfig
	logger     *logrus.Logger
	telemetry  *instruments
}

// NewRedisCache creates a new Redis-backed read-through cache. A nil config
// selects DefaultRedisConfig.
func NewRedisCache(config *RedisConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client, err := internal.NewRedisClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis client: %w", err)
	}

	return NewRedisCacheWithDependencies(client, internal.NewKeyBuilder(), config), nil
}

// NewRedisCacheWithDependencies creates a new Redis cache with injected
// dependencies for testing.
func NewRedisCacheWithDependencies(client internal.RedisClientInterface, keyBuilder internal.KeyBuilder, config *RedisConfig) *RedisCache {
	if config == nil {
		config = DefaultRedisConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &RedisCache{
		client:     client,
		keyBuilder: keyBuilder,
		codec:      NewJSONCodec(logger),
		validator:  internal.NewInputValidator(),
		config:     config,
		logger:     logger,
		telemetry:  newInstruments(),
	}
}

// Execute satisfies op from the cache when a usable entry exists, and
// otherwise runs produce and stores its result best-effort.
//
// Only the producer's error ever reaches the caller. Backend and codec
// failures are logged, counted, and treated as misses; a failed population
// leaves the fresh result unaffected. On a hit the producer does not run
// and the backend is not written. A producer error is returned unchanged
// and nothing is stored.
func (rc *RedisCache) Execute(ctx context.Context, op Operation, produce Producer) (any, error) {
	if produce == nil {
		return nil, internal.NewValidationError("producer cannot be nil", nil)
	}

	key := rc.keyBuilder.BuildKey(op.Name, op.Args, op.Named)
	if err := rc.keyBuilder.ValidateKey(key); err != nil {
		// A key this operation cannot express safely disables caching
		// for the call, not the call itself.
		rc.logger.WithFields(logrus.Fields{
			"operation": op.Name,
			"key":       key,
			"error":     err.Error(),
		}).Warn("derived cache key invalid, bypassing cache")
		rc.telemetry.recordError(ctx, op.Name, "key")
		return produce(ctx)
	}

	ctx, span := rc.telemetry.startSpan(ctx, "cache.execute",
		attribute.String("cache.operation", op.Name),
		attribute.String("cache.key", key),
	)

	value, hit := rc.lookup(ctx, op, key)
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if hit {
		rc.telemetry.endSpan(span, nil)
		return value, nil
	}

	result, err := produce(ctx)
	if err != nil {
		// The producer's error belongs to the caller, unwrapped.
		rc.telemetry.endSpan(span, err)
		return nil, err
	}

	rc.populate(ctx, op, key, result)
	rc.telemetry.endSpan(span, nil)
	return result, nil
}

// lookup fetches and decodes the entry for key. It reports a usable value
// only when the backend returned a non-empty payload that decodes cleanly;
// every failure along the way degrades to a miss.
func (rc *RedisCache) lookup(ctx context.Context, op Operation, key string) (any, bool) {
	fields := logrus.Fields{"operation": op.Name, "key": key}

	start := time.Now()
	payload, err := rc.client.GetWithRetry(ctx, key)
	lookupTime := time.Since(start)

	if err != nil {
		if errors.Is(err, redis.Nil) {
			rc.logger.WithFields(fields).Debug("cache miss")
		} else {
			cacheErr := classifyBackendError(key, "lookup failed", err)
			rc.logger.WithFields(fields).WithError(cacheErr).Error("cache lookup failed, treating as miss")
			rc.telemetry.recordError(ctx, op.Name, "lookup")
		}
		rc.telemetry.recordLookup(ctx, op.Name, false, lookupTime)
		return nil, false
	}

	// An empty payload cannot round-trip through the codec; treat it as
	// absent rather than serving an empty result.
	if payload == "" {
		rc.logger.WithFields(fields).Debug("cache miss")
		rc.telemetry.recordLookup(ctx, op.Name, false, lookupTime)
		return nil, false
	}

	value, err := rc.codec.Decode([]byte(payload), op.Shape)
	if err != nil {
		rc.logger.WithFields(fields).WithError(err).Warn("cached payload undecodable, refreshing entry")
		rc.telemetry.recordError(ctx, op.Name, "decode")
		rc.telemetry.recordLookup(ctx, op.Name, false, lookupTime)
		return nil, false
	}

	rc.logger.WithFields(fields).Debug("cache hit")
	rc.telemetry.recordLookup(ctx, op.Name, true, lookupTime)
	return value, true
}

// populate stores a fresh producer result under key, best-effort.
func (rc *RedisCache) populate(ctx context.Context, op Operation, key string, result any) {
	fields := logrus.Fields{"operation": op.Name, "key": key}

	data, err := rc.codec.Encode(result)
	if err != nil {
		rc.logger.WithFields(fields).WithError(err).Warn("result not encodable, skipping cache population")
		rc.telemetry.recordError(ctx, op.Name, "encode")
		return
	}

	ttl := rc.effectiveTTL(op.TTL)
	if err := rc.client.SetWithRetry(ctx, key, data, ttl); err != nil {
		cacheErr := classifyBackendError(key, "population failed", err)
		rc.logger.WithFields(fields).WithError(cacheErr).Warn("failed to populate cache")
		rc.telemetry.recordError(ctx, op.Name, "populate")
		return
	}

	rc.logger.WithFields(fields).WithField("ttl", ttl.String()).Debug("cached result")
}

// effectiveTTL resolves the entry lifetime for one operation: the caller's
// TTL when usable, the configured default otherwise.
func (rc *RedisCache) effectiveTTL(ttl time.Duration) time.Duration {
	if err := rc.validator.ValidateTTL(ttl, false); err != nil {
		return rc.config.DefaultTTL
	}
	return ttl
}

// Invalidate removes all entries under prefix matching pattern and reports
// how many were removed. An empty pattern widens to the whole prefix.
//
// Invalidation is best-effort: a failure is logged and reported as zero
// removals, and staleness stays bounded by the entry TTLs.
func (rc *RedisCache) Invalidate(ctx context.Context, prefix, pattern string) int64 {
	if pattern == "" {
		pattern = "*"
	}

	fields := logrus.Fields{"prefix": prefix, "pattern": pattern}

	if err := rc.validator.ValidateContext(ctx); err != nil {
		rc.logger.WithFields(fields).WithError(err).Warn("invalidation skipped")
		return 0
	}

	if err := rc.validator.ValidateInvalidationScope(prefix, pattern); err != nil {
		rc.logger.WithFields(fields).WithError(err).Warn("invalidation scope rejected")
		return 0
	}

	ctx, span := rc.telemetry.startSpan(ctx, "cache.invalidate",
		attribute.String("cache.prefix", prefix),
		attribute.String("cache.pattern", pattern),
	)
	defer rc.telemetry.endSpan(span, nil)

	match := prefix + ":" + pattern

	keys, err := rc.client.KeysWithRetry(ctx, match)
	if err != nil {
		cacheErr := classifyBackendError("", "invalidation scan failed", err)
		rc.logger.WithFields(fields).WithError(cacheErr).Error("invalidation scan failed")
		rc.telemetry.recordError(ctx, prefix, "invalidate-scan")
		return 0
	}

	if len(keys) == 0 {
		rc.logger.WithFields(fields).Debug("no cache entries matched")
		return 0
	}

	deleted, err := rc.client.DelWithRetry(ctx, keys...)
	if err != nil {
		cacheErr := classifyBackendError("", "invalidation delete failed", err)
		rc.logger.WithFields(fields).WithError(cacheErr).Error("invalidation delete failed")
		rc.telemetry.recordError(ctx, prefix, "invalidate-delete")
		return 0
	}

	span.SetAttributes(attribute.Int64("cache.removed", deleted))
	rc.telemetry.recordInvalidation(ctx, prefix, deleted)
	rc.logger.WithFields(fields).WithField("count", deleted).Debug("invalidated cache entries")
	return deleted
}

// Clear removes every entry in the configured logical database and reports
// whether the flush happened. Failures are logged, never raised.
func (rc *RedisCache) Clear(ctx context.Context) bool {
	if err := rc.validator.ValidateContext(ctx); err != nil {
		rc.logger.WithError(err).Warn("cache clear skipped")
		return false
	}

	if err := rc.client.FlushDBWithRetry(ctx); err != nil {
		cacheErr := classifyBackendError("", "clear failed", err)
		rc.logger.WithError(cacheErr).Error("failed to clear cache")
		return false
	}

	rc.logger.Info("cleared all cache entries")
	return true
}

// Health performs a liveness check against the backend.
func (rc *RedisCache) Health(ctx context.Context) error {
	return rc.client.HealthWithRetry(ctx)
}

// Close closes the cache connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// classifyBackendError folds a raw client error into the cache error
// taxonomy for logs and metrics.
func classifyBackendError(key, message string, err error) *internal.CacheError {
	switch {
	case errors.Is(err, redis.Nil):
		return internal.NewNotFoundError(key)
	case isTimeoutError(err):
		return internal.NewTimeoutError(key, message, err)
	case isConnectionError(err):
		return internal.NewConnectionError(message, err)
	default:
		return internal.NewCacheError(internal.ErrorTypeConnection, key, message, err)
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errorStr := strings.ToLower(err.Error())
	return strings.Contains(errorStr, "connection refused") ||
		strings.Contains(errorStr, "connection reset") ||
		strings.Contains(errorStr, "network is unreachable") ||
		strings.Contains(errorStr, "no route to host") ||
		strings.Contains(errorStr, "broken pipe")
}
