package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kengibson1111/go-readthrough-cache/internal"
)

// newDerivingTestCache wires a real key builder so tests observe the exact
// keys the backend would see.
func newDerivingTestCache(client *MockRedisClient) *RedisCache {
	config := &RedisConfig{
		DefaultTTL: 5 * time.Minute,
		Logger:     quietLogger(),
	}
	return NewRedisCacheWithDependencies(client, internal.NewKeyBuilder(), config)
}

func TestExecute_KeyDerivationEndToEnd(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		op      Operation
		wantKey string
	}{
		{
			name:    "operation only",
			op:      Operation{Name: "item:list_items"},
			wantKey: "item:list_items",
		},
		{
			name:    "positional arguments in call order",
			op:      Operation{Name: "orders:list", Args: []any{"eu", 25}},
			wantKey: "orders:list:eu:25",
		},
		{
			name:    "named arguments sorted by name",
			op:      Operation{Name: "orders:list", Named: map[string]any{"limit": 10, "active": true}},
			wantKey: "orders:list:active:true:limit:10",
		},
		{
			name:    "positional before named",
			op:      Operation{Name: "orders:list", Args: []any{"eu"}, Named: map[string]any{"limit": 10}},
			wantKey: "orders:list:eu:limit:10",
		},
		{
			name:    "composite arguments skipped",
			op:      Operation{Name: "orders:list", Args: []any{"eu", []string{"a", "b"}, 7}},
			wantKey: "orders:list:eu:7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := NewMockRedisClient()
			mockClient.On("GetWithRetry", mock.Anything, tt.wantKey).Return(`{"ok":true}`, nil)

			cache := newDerivingTestCache(mockClient)

			result, err := cache.Execute(ctx, tt.op, func(ctx context.Context) (any, error) {
				t.Fatal("producer must not run on a hit")
				return nil, nil
			})

			require.NoError(t, err)
			assert.Equal(t, map[string]any{"ok": true}, result)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestExecute_NilProducerResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	op := Operation{Name: "item:get_item", Args: []any{404}}

	// First call: miss, nil result stored as JSON null.
	mockClient := NewMockRedisClient()
	mockClient.On("GetWithRetry", mock.Anything, "item:get_item:404").Return("", redis.Nil)
	mockClient.On("SetWithRetry", mock.Anything, "item:get_item:404", []byte(`null`), 5*time.Minute).Return(nil)

	cache := newDerivingTestCache(mockClient)

	result, err := cache.Execute(ctx, op, func(ctx context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	mockClient.AssertExpectations(t)

	// Second call: the stored null is a hit, the producer stays idle.
	mockClient = NewMockRedisClient()
	mockClient.On("GetWithRetry", mock.Anything, "item:get_item:404").Return(`null`, nil)

	cache = newDerivingTestCache(mockClient)

	result, err = cache.Execute(ctx, op, func(ctx context.Context) (any, error) {
		t.Fatal("producer must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	mockClient.AssertNotCalled(t, "SetWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockClient.AssertExpectations(t)
}

func TestExecute_ConcurrentCallers(t *testing.T) {
	ctx := context.Background()

	mockClient := NewMockRedisClient()
	mockClient.On("GetWithRetry", mock.Anything, "item:get_item:1").Return(`{"id":1}`, nil)

	cache := newDerivingTestCache(mockClient)
	op := Operation{Name: "item:get_item", Args: []any{1}}

	const workers = 16
	const callsPerWorker = 25

	var wg sync.WaitGroup
	errs := make(chan error, workers*callsPerWorker)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerWorker; j++ {
				result, err := cache.Execute(ctx, op, func(ctx context.Context) (any, error) {
					return map[string]any{"id": 1}, nil
				})
				if err != nil {
					errs <- err
					continue
				}
				if m, ok := result.(map[string]any); !ok || m["id"] != float64(1) {
					errs <- assert.AnError
				}
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Execute failed: %v", err)
	}
}

func TestCodec_DeepNestingRoundTrip(t *testing.T) {
	codec := NewJSONCodec(quietLogger())

	original := map[string]any{
		"page": float64(1),
		"items": []any{
			map[string]any{
				"id":   float64(1),
				"tags": []any{"new", "featured"},
				"dimensions": map[string]any{
					"width":  2.5,
					"height": 10.25,
				},
			},
		},
		"cursor": nil,
	}

	data, err := codec.Encode(original)
	require.NoError(t, err)

	decoded, err := codec.Decode(data, ShapeGeneric)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestInvalidate_UnicodeScope(t *testing.T) {
	ctx := context.Background()

	mockClient := NewMockRedisClient()
	mockClient.On("KeysWithRetry", mock.Anything, "café:*").Return([]string{"café:menu"}, nil)
	mockClient.On("DelWithRetry", mock.Anything, []string{"café:menu"}).Return(int64(1), nil)

	cache := newDerivingTestCache(mockClient)

	removed := cache.Invalidate(ctx, "café", "")

	assert.Equal(t, int64(1), removed)
	mockClient.AssertExpectations(t)
}

func TestInvalidate_PrefixScopingStaysExact(t *testing.T) {
	ctx := context.Background()

	// "item" must only ever expand to "item:*", never swallow "items:*".
	mockClient := NewMockRedisClient()
	mockClient.On("KeysWithRetry", mock.Anything, "item:*").Return([]string{"item:get_item:1"}, nil)
	mockClient.On("DelWithRetry", mock.Anything, []string{"item:get_item:1"}).Return(int64(1), nil)

	cache := newDerivingTestCache(mockClient)

	removed := cache.Invalidate(ctx, "item", "")

	assert.Equal(t, int64(1), removed)
	mockClient.AssertNotCalled(t, "KeysWithRetry", mock.Anything, "item*")
	mockClient.AssertExpectations(t)
}
