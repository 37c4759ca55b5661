// Package cache provides a Redis-based read-through caching layer for
// service-layer operations.
//
// This package wraps expensive operations behind a single Execute call that
// serves repeat requests from Redis:
//   - Deterministic cache keys derived from operation names and arguments
//   - JSON serialization with a stable envelope for service responses
//   - Fail-open semantics: cache failures never break the wrapped operation
//   - Prefix-scoped invalidation for entity mutations
//   - Configurable retry logic with exponential backoff
//   - Health probing with a sentinel write/read round trip
//   - Thread-safe concurrent access
//
// # Architecture
//
// Cache keys mirror the call that produced the entry:
//   - Operation only:       item:list_items
//   - Positional arguments: item:get_item:42
//   - Named arguments:      orders:list:active:true:limit:10
//
// The leading segment of the operation name (up to the first ':') doubles as
// the invalidation prefix, so a mutation of "item" entities can drop every
// cached read in one call.
//
// # Basic Usage
//
// Create a cache instance with default configuration:
//
//	config := cache.DefaultRedisConfig()
//	config.RedisAddr = "localhost:6379"
//
//	redisCache, err := cache.NewRedisCache(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer redisCache.Close()
//
// Wrap an expensive operation:
//
//	ctx := context.Background()
//
//	op := cache.Operation{
//	    Name: "item:get_item",
//	    Args: []any{42},
//	    TTL:  time.Hour,
//	}
//
//	result, err := redisCache.Execute(ctx, op, func(ctx context.Context) (any, error) {
//	    return loadItemFromDatabase(ctx, 42)
//	})
//	if err != nil {
//	    // Only the producer's own error ever lands here.
//	    log.Fatal(err)
//	}
//
// The first call runs the producer and stores its result; later calls with
// the same operation are served from Redis until the entry expires or is
// invalidated.
//
// # Configuration
//
// The package provides flexible configuration through RedisConfig:
//
//	config := &cache.RedisConfig{
//	    RedisAddr:    "localhost:6379",  // Redis server address
//	    RedisPassword: "",               // Redis password (optional)
//	    RedisDB:      0,                 // Redis database number
//	    MaxRetries:   3,                 // Maximum retry attempts
//	    DialTimeout:  5 * time.Second,   // Connection timeout
//	    ReadTimeout:  3 * time.Second,   // Read operation timeout
//	    WriteTimeout: 3 * time.Second,   // Write operation timeout
//	    PoolSize:     10,                // Connection pool size
//	    DefaultTTL:   5 * time.Minute,   // Default TTL for cache entries
//	    RetryConfig:  cache.DefaultRedisRetryConfig(), // Retry configuration
//	}
//
// RedisConfigFromEnv reads the same settings from the REDIS_HOST, REDIS_PORT,
// REDIS_PASSWORD, REDIS_DB and REDIS_TTL environment variables.
//
// # Error Handling
//
// Execute is fail-open: a Redis outage, an undecodable payload or an invalid
// derived key degrades the call to a plain producer invocation, logged but
// never raised. Typed errors surface through logs and the administrative
// surface, where the helper predicates classify them:
//
//	err := redisCache.Health(ctx)
//	if err != nil {
//	    switch {
//	    case cache.IsConnectionError(err):
//	        log.Println("Redis connection error:", err)
//	    case cache.IsTimeoutError(err):
//	        log.Println("Redis timed out:", err)
//	    default:
//	        log.Println("Unexpected error:", err)
//	    }
//	}
//
// # Response Envelopes
//
// Producers that return *Response get stable round trips. The envelope is
// stored via its canonical map form and rebuilt field by field on a hit:
//
//	op := cache.Operation{
//	    Name:  "order:status",
//	    Args:  []any{orderID},
//	    Shape: cache.ShapeResponse,
//	}
//
//	result, err := redisCache.Execute(ctx, op, func(ctx context.Context) (any, error) {
//	    return cache.NewResponse(map[string]any{"state": "shipped"}), nil
//	})
//
// # Invalidation
//
// Mutations drop the cached reads of the entity they touched:
//
//	// After updating item 42, remove its cached reads.
//	removed := redisCache.Invalidate(ctx, "item", "get_item:*")
//	log.Printf("removed %d entries", removed)
//
//	// An empty pattern widens to the whole prefix.
//	redisCache.Invalidate(ctx, "item", "")
//
//	// Clear drops every entry in the configured database.
//	redisCache.Clear(ctx)
//
// Invalidation is prefix-scoped and best-effort: a failure is logged and
// reported as zero removals, and staleness stays bounded by the entry TTLs.
//
// # Health Monitoring
//
// Monitor cache health:
//
//	// Basic liveness check.
//	err = redisCache.Health(ctx)
//	if err != nil {
//	    log.Println("Cache is unhealthy:", err)
//	}
//
//	// Sentinel write/read round trip with details.
//	status := redisCache.CheckHealth(ctx)
//	fmt.Printf("Healthy: %v\n", status.Healthy)
//	fmt.Printf("Message: %s\n", status.Message)
//	fmt.Printf("Latency: %v\n", status.Latency)
//
// # Retry Behavior
//
// The package includes built-in retry logic with exponential backoff:
//
//	retryConfig := &cache.RedisRetryConfig{
//	    MaxAttempts:  5,                      // Maximum retry attempts
//	    InitialDelay: 100 * time.Millisecond, // Initial delay
//	    MaxDelay:     5 * time.Second,        // Maximum delay
//	    Multiplier:   2.0,                    // Backoff multiplier
//	    Jitter:       true,                   // Add random jitter
//	    RetryableOps: []string{"get", "set", "del"}, // Operations to retry
//	}
//
//	config := cache.DefaultRedisConfig()
//	config.RetryConfig = retryConfig
//
// # Thread Safety
//
// All cache operations are thread-safe and support concurrent access:
//
//	// Safe to call from multiple goroutines
//	go func() {
//	    redisCache.Execute(ctx, op1, produceItem)
//	}()
//
//	go func() {
//	    redisCache.Execute(ctx, op2, produceOrder)
//	}()
//
// Concurrent misses for the same key each run their own producer; the last
// population wins. The cache deliberately avoids cross-caller coordination.
//
// # Observability
//
// The package emits OpenTelemetry traces and metrics through the global
// providers. Without an SDK installed every instrument is a no-op; with one,
// Execute and Invalidate produce spans, and hit/miss/error counters plus a
// lookup latency histogram appear under the cache.* namespace. Structured
// logs go to the logrus logger carried in RedisConfig.
//
// # API Separation
//
// The package maintains a clear separation between public and internal APIs:
//
// Public API (cache package):
//   - Cache interface and RedisCache implementation
//   - Operation, Producer, Response and ResultShape types
//   - Configuration types (RedisConfig, RedisRetryConfig)
//   - Error types and utility functions
//   - Health monitoring types
//
// Internal API (internal package):
//   - Low-level Redis client wrapper
//   - Key derivation and validation
//   - Input validation
//
// Users should only import and use the public cache package. The internal
// package is for implementation details and may change without notice.
//
// # Examples
//
// See the examples directory for complete usage examples:
//   - examples/readthrough_example/ - Basic read-through caching
//   - examples/invalidation_example/ - Prefix-scoped invalidation and clearing
//   - examples/health_monitoring_example/ - Health monitoring
//   - examples/error_handling_example/ - Fail-open behavior and typed errors
//
// # Testing
//
// The package includes comprehensive test coverage:
//   - Unit tests for all components (no Redis required)
//   - Integration tests with real Redis instances
//   - Performance and stress tests
//   - Concurrent access tests
//
// Run tests with:
//
//	go test ./cache -v                    # Unit tests
//	go test ./test/integration -v         # Integration tests (requires Redis)
//
// # Dependencies
//
// The package depends on:
//   - github.com/redis/go-redis/v9 - Redis client library
//   - github.com/sirupsen/logrus - Structured logging
//   - go.opentelemetry.io/otel - Traces and metrics
package cache
