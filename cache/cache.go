package cache

import (
	"context"
	"time"
)

// ResultShape tells the cache how to rebuild a producer result from its
// stored JSON form. The shape travels with the operation instead of being
// inferred from the value, so decoding stays explicit and testable.
type ResultShape int

const (
	// ShapeGeneric returns the parsed JSON value as-is: maps, slices,
	// strings and numbers come back exactly as encoding/json produces them.
	ShapeGeneric ResultShape = iota
	// ShapeResponse rebuilds the payload into a *Response envelope,
	// wrapping bare strings and scalars from older entries along the way.
	ShapeResponse
)

// String returns the string representation of ResultShape
func (s ResultShape) String() string {
	switch s {
	case ShapeGeneric:
		return "generic"
	case ShapeResponse:
		return "response"
	default:
		return "unknown"
	}
}

// Operation identifies one cacheable service call. Name plus the scalar
// arguments determine the cache key; TTL and Shape control storage and
// decoding for this call only.
type Operation struct {
	// Name is the operation identifier, e.g. "item:get_item". Its leading
	// segment (up to the first ':') is the invalidation prefix for the
	// entity this operation reads.
	Name string

	// Args are the positional arguments of the call, in call order. Only
	// scalars contribute to the key; composites are skipped.
	Args []any

	// Named are the keyword-style arguments. They are appended to the key
	// as "name:value" pairs sorted by name.
	Named map[string]any

	// TTL overrides the configured default entry lifetime when positive.
	TTL time.Duration

	// Shape selects how a cached payload is rebuilt on a hit.
	Shape ResultShape
}

// Producer computes the value on a cache miss. It receives the caller's
// context and its error, if any, is returned to the caller unchanged.
type Producer func(ctx context.Context) (any, error)

// MapConvertible is implemented by values that carry a canonical dictionary
// form. The cache prefers this form when storing a result, so an entry
// written from a rich type and one written from its plain map agree.
type MapConvertible interface {
	ToMap() map[string]any
}

// Response is the standard service envelope. Producers that return one get
// stable round trips: the envelope is stored via its map form and rebuilt
// field by field on a hit.
type Response struct {
	Data    map[string]any `json:"data"`
	Status  string         `json:"status"`
	Message string         `json:"message"`
}

// NewResponse creates a successful Response wrapping the given data.
func NewResponse(data map[string]any) *Response {
	return &Response{
		Data:   data,
		Status: StatusSuccess,
	}
}

// StatusSuccess is the status a Response reports when nothing set one.
const StatusSuccess = "success"

// ToMap returns the canonical dictionary form of the response. All three
// fields are always present so stored payloads have a stable shape.
func (r *Response) ToMap() map[string]any {
	return map[string]any{
		"data":    r.Data,
		"status":  r.Status,
		"message": r.Message,
	}
}

// Cache is the read-through caching interface for service-layer operations.
//
// The cache is a fail-open optimization: every failure of the cache itself
// (backend communication, payload codec, key validation) is logged and
// absorbed, and the producer result is served instead. The only errors that
// cross this boundary are the producer's own.
type Cache interface {
	// Execute satisfies the operation from the cache when possible, and
	// otherwise runs the producer and populates the cache best-effort.
	Execute(ctx context.Context, op Operation, produce Producer) (any, error)

	// Invalidate removes all entries under prefix matching pattern and
	// reports how many entries were removed. An empty pattern means the
	// whole prefix. Failures are logged and reported as zero.
	Invalidate(ctx context.Context, prefix, pattern string) int64

	// Clear removes every entry in the configured logical database and
	// reports whether the flush happened.
	Clear(ctx context.Context) bool

	// Health performs a liveness check against the backend.
	Health(ctx context.Context) error

	// CheckHealth performs a sentinel write/read round trip and reports
	// the outcome without error semantics.
	CheckHealth(ctx context.Context) HealthStatus

	// Close releases the backend connection pool.
	Close() error
}
